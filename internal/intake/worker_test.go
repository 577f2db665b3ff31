package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Qualis/internal/config"
	"github.com/MikeSquared-Agency/Qualis/internal/hermes"
	"github.com/MikeSquared-Agency/Qualis/internal/store"
)

func startWorker(t *testing.T, ms *MockStore, fh *fakeHermes) *Worker {
	t.Helper()
	svc := newTestService(ms, fh)
	w := NewWorker(svc, fh, config.IntakeConfig{Workers: 2, QueueSize: 4}, discardLogger())
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(w.Stop)
	return w
}

func waitPublished(t *testing.T, fh *fakeHermes) published {
	t.Helper()
	select {
	case p := <-fh.out:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for publish")
		return published{}
	}
}

func TestWorkerSubscribesWithQueueGroup(t *testing.T) {
	fh := newFakeHermes()
	startWorker(t, &MockStore{}, fh)

	assert.Equal(t, hermes.SubjectAssessmentSubmitted, fh.subject)
	assert.Equal(t, hermes.QueueIntake, fh.queue)
}

func TestWorkerScoresSubmission(t *testing.T) {
	ms := &MockStore{}
	ms.On("CreateAssessment", mock.Anything, mock.MatchedBy(func(a *store.Assessment) bool {
		return a.Source == store.SourceHermes && a.ParticipantID == "P-9"
	})).Return(nil)
	fh := newFakeHermes()
	startWorker(t, ms, fh)

	fh.deliver([]byte(`{"submission_id":"s-1","participant_id":"P-9","timepoint":"week-2",
		"answers":{"GP1":1,"GP2":1,"GP3":1,"GP4":1,"GP5":1,"GP6":1,"GP7":1}}`))

	p := waitPublished(t, fh)
	ev, ok := p.data.(hermes.AssessmentScoredEvent)
	require.True(t, ok, "expected scored event, got %T", p.data)
	assert.Equal(t, "s-1", ev.SubmissionID)
	assert.Equal(t, 21, ev.Scores["PWB"])
	assert.Equal(t, 21, ev.Scores["TOTAL"])
	assert.Equal(t, store.SourceHermes, ev.Source)
	ms.AssertExpectations(t)
}

func TestWorkerRejectsInvalidSubmission(t *testing.T) {
	fh := newFakeHermes()
	ms := &MockStore{}
	startWorker(t, ms, fh)

	fh.deliver([]byte(`{"submission_id":"s-2","participant_id":"P-1","answers":{"GF1":7}}`))

	p := waitPublished(t, fh)
	assert.Equal(t, hermes.SubjectAssessmentRejected, p.subject)
	ev := p.data.(hermes.AssessmentRejectedEvent)
	assert.Equal(t, "s-2", ev.SubmissionID)
	assert.Equal(t, ReasonOutOfRange, ev.Reason)
	ms.AssertNotCalled(t, "CreateAssessment", mock.Anything, mock.Anything)
}

func TestWorkerRejectsMalformedPayload(t *testing.T) {
	fh := newFakeHermes()
	startWorker(t, &MockStore{}, fh)

	fh.deliver([]byte(`{not json`))

	p := waitPublished(t, fh)
	assert.Equal(t, hermes.SubjectAssessmentRejected, p.subject)
	assert.Equal(t, ReasonMalformed, p.data.(hermes.AssessmentRejectedEvent).Reason)
}

func TestWorkerStartSubscribeError(t *testing.T) {
	fh := newFakeHermes()
	fh.subErr = errors.New("no connection")
	w := NewWorker(newTestService(&MockStore{}, fh), fh, config.IntakeConfig{Workers: 1}, discardLogger())

	assert.Error(t, w.Start(context.Background()))
}

func TestWorkerStopIsIdempotent(t *testing.T) {
	fh := newFakeHermes()
	w := NewWorker(newTestService(&MockStore{}, fh), fh, config.IntakeConfig{Workers: 0}, discardLogger())
	require.NoError(t, w.Start(context.Background()))

	w.Stop()
	w.Stop()

	// after stop, submissions are rejected instead of queued
	done := make(chan struct{})
	go func() {
		fh.deliver([]byte(`{"submission_id":"late","participant_id":"P-3"}`))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked after Stop")
	}

	p := waitPublished(t, fh)
	assert.Equal(t, hermes.SubjectAssessmentRejected, p.subject)
	ev := p.data.(hermes.AssessmentRejectedEvent)
	assert.Equal(t, "late", ev.SubmissionID)
	assert.Equal(t, ReasonShuttingDown, ev.Reason)
}

func TestWorkerStopDrainsQueuedSubmissions(t *testing.T) {
	gate := make(chan struct{})
	started := make(chan struct{}, 8)

	var mu sync.Mutex
	var ctxErrs []error
	ms := &MockStore{}
	ms.On("CreateAssessment", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		started <- struct{}{}
		<-gate
		mu.Lock()
		ctxErrs = append(ctxErrs, args.Get(0).(context.Context).Err())
		mu.Unlock()
	}).Return(nil)

	fh := newFakeHermes()
	w := NewWorker(newTestService(ms, fh), fh, config.IntakeConfig{Workers: 1, QueueSize: 4}, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))

	submit := func(i int) {
		fh.deliver([]byte(fmt.Sprintf(`{"submission_id":"s-%d","participant_id":"P-%d","answers":{"GP1":1}}`, i, i)))
	}

	// first submission is in flight, the next four fill the queue
	submit(0)
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first submission never reached the store")
	}
	for i := 1; i <= 4; i++ {
		submit(i)
	}

	// root context cancelled before Stop
	cancel()
	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()
	close(gate)

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}

	ms.AssertNumberOfCalls(t, "CreateAssessment", 5)
	mu.Lock()
	for _, err := range ctxErrs {
		assert.NoError(t, err, "store write ran on a cancelled context")
	}
	mu.Unlock()

	scored := map[string]bool{}
	for i := 0; i < 5; i++ {
		p := waitPublished(t, fh)
		ev, ok := p.data.(hermes.AssessmentScoredEvent)
		require.True(t, ok, "expected scored event, got %T", p.data)
		scored[ev.SubmissionID] = true
	}
	assert.Len(t, scored, 5)
}
