package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/Qualis/internal/config"
	"github.com/MikeSquared-Agency/Qualis/internal/hermes"
	"github.com/MikeSquared-Agency/Qualis/internal/metrics"
	"github.com/MikeSquared-Agency/Qualis/internal/store"
)

// processTimeout bounds one submission, including those drained on Stop.
const processTimeout = 30 * time.Second

// Worker consumes submissions published on hermes and feeds them through
// the Service using a fixed pool of goroutines.
type Worker struct {
	service *Service
	hermes  hermes.Client
	workers int
	logger  *slog.Logger

	queue chan []byte
	ctx   context.Context

	// mu guards stopped; enqueue holds it for reading across the send so
	// nothing lands in the queue after the drain has started.
	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewWorker(svc *Service, h hermes.Client, cfg config.IntakeConfig, logger *slog.Logger) *Worker {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Worker{
		service: svc,
		hermes:  h,
		workers: workers,
		logger:  logger,
		queue:   make(chan []byte, cfg.QueueSize),
		ctx:     context.Background(),
		stopCh:  make(chan struct{}),
	}
}

// Start subscribes to the submission subject and launches the pool.
// Cancelling ctx does not abandon accepted submissions; call Stop to drain.
func (w *Worker) Start(ctx context.Context) error {
	w.ctx = context.WithoutCancel(ctx)
	if err := w.hermes.QueueSubscribe(hermes.SubjectAssessmentSubmitted, hermes.QueueIntake, w.enqueue); err != nil {
		return fmt.Errorf("subscribe %s: %w", hermes.SubjectAssessmentSubmitted, err)
	}
	w.wg.Add(w.workers)
	for i := 0; i < w.workers; i++ {
		go w.loop()
	}
	return nil
}

// Stop refuses new submissions, processes everything already queued and
// waits for the pool to exit.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		w.mu.Unlock()
		close(w.stopCh)
	})
	w.wg.Wait()
}

// enqueue blocks while the queue is full so NATS slow-consumer handling
// applies backpressure instead of silently dropping submissions. Once
// stopped, submissions are rejected so the gateway can resend them.
func (w *Worker) enqueue(_ string, data []byte) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		w.rejectShutdown(data)
		return
	}
	w.queue <- data
	metrics.IntakeQueueDepth.Inc()
}

func (w *Worker) rejectShutdown(data []byte) {
	var ev hermes.AssessmentSubmittedEvent
	_ = json.Unmarshal(data, &ev)
	w.logger.Warn("intake stopped, submission rejected",
		"submission_id", ev.SubmissionID,
		"participant_id", ev.ParticipantID,
	)
	metrics.AssessmentsRejected.WithLabelValues(store.SourceHermes, ReasonShuttingDown).Inc()
	w.service.publishRejected(ev.SubmissionID, ev.ParticipantID, ReasonShuttingDown)
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case data := <-w.queue:
			w.handle(data)
		case <-w.stopCh:
			w.drain()
			return
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case data := <-w.queue:
			w.handle(data)
		default:
			return
		}
	}
}

func (w *Worker) handle(data []byte) {
	metrics.IntakeQueueDepth.Dec()
	ctx, cancel := context.WithTimeout(w.ctx, processTimeout)
	defer cancel()
	w.process(ctx, data)
}

func (w *Worker) process(ctx context.Context, data []byte) {
	var ev hermes.AssessmentSubmittedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		w.logger.Warn("malformed submission", "error", err)
		metrics.AssessmentsRejected.WithLabelValues(store.SourceHermes, ReasonMalformed).Inc()
		w.service.publishRejected("", "", ReasonMalformed)
		return
	}

	_, err := w.service.Submit(ctx, Submission{
		SubmissionID:  ev.SubmissionID,
		ParticipantID: ev.ParticipantID,
		Questionnaire: ev.Questionnaire,
		Timepoint:     ev.Timepoint,
		Answers:       ev.Answers,
		Source:        store.SourceHermes,
		SubmittedBy:   ev.SubmittedBy,
	})
	if err == nil {
		return
	}

	var invalid *InvalidError
	if errors.As(err, &invalid) {
		w.logger.Warn("submission rejected",
			"submission_id", ev.SubmissionID,
			"participant_id", ev.ParticipantID,
			"reason", invalid.Reason,
			"error", err,
		)
		w.service.publishRejected(ev.SubmissionID, ev.ParticipantID, invalid.Reason)
		return
	}
	w.logger.Error("failed to record submission", "submission_id", ev.SubmissionID, "error", err)
}
