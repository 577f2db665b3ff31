package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/Qualis/internal/hermes"
	"github.com/MikeSquared-Agency/Qualis/internal/metrics"
	"github.com/MikeSquared-Agency/Qualis/internal/scoring"
	"github.com/MikeSquared-Agency/Qualis/internal/store"
)

// Rejection reasons, also used as metric labels.
const (
	ReasonMissingParticipant = "missing_participant"
	ReasonWrongQuestionnaire = "questionnaire_mismatch"
	ReasonOutOfRange         = "answer_out_of_range"
	ReasonMalformed          = "malformed"
	ReasonShuttingDown       = "shutting_down"
)

// InvalidError is returned for submissions that fail input validation.
// Nothing is persisted for them.
type InvalidError struct {
	Reason string
	Err    error
}

func (e *InvalidError) Error() string { return e.Err.Error() }
func (e *InvalidError) Unwrap() error { return e.Err }

// Submission is one completed questionnaire awaiting scoring.
type Submission struct {
	SubmissionID  string
	ParticipantID string
	Questionnaire string
	Timepoint     string
	Answers       scoring.Answers
	Source        string
	SubmittedBy   string
}

// Service validates, scores, persists and announces submissions. It is
// shared by the HTTP API and the hermes worker.
type Service struct {
	engine *scoring.Engine
	store  store.Store
	hermes hermes.Client
	logger *slog.Logger
}

// NewService creates a Service. h may be nil, in which case no events are
// published.
func NewService(e *scoring.Engine, s store.Store, h hermes.Client, logger *slog.Logger) *Service {
	return &Service{engine: e, store: s, hermes: h, logger: logger}
}

func (s *Service) Engine() *scoring.Engine { return s.engine }

func (s *Service) validate(sub Submission) error {
	if sub.ParticipantID == "" {
		return &InvalidError{Reason: ReasonMissingParticipant, Err: errors.New("participant_id required")}
	}
	name := s.engine.Catalogue().Name()
	if sub.Questionnaire != "" && sub.Questionnaire != name {
		return &InvalidError{
			Reason: ReasonWrongQuestionnaire,
			Err:    fmt.Errorf("questionnaire %q not served here (scoring %s)", sub.Questionnaire, name),
		}
	}
	if err := scoring.ValidateAnswers(sub.Answers); err != nil {
		return &InvalidError{Reason: ReasonOutOfRange, Err: err}
	}
	return nil
}

// Submit scores one submission and stores the result.
func (s *Service) Submit(ctx context.Context, sub Submission) (*store.Assessment, error) {
	if err := s.validate(sub); err != nil {
		var invalid *InvalidError
		if errors.As(err, &invalid) {
			metrics.AssessmentsRejected.WithLabelValues(sub.Source, invalid.Reason).Inc()
		}
		return nil, err
	}

	answers := sub.Answers.Clone()
	scores := s.engine.ComputeAll(answers)
	prorated := s.engine.ProratedSubscales(answers)
	catalogue := s.engine.Catalogue()

	a := &store.Assessment{
		ParticipantID:        sub.ParticipantID,
		Questionnaire:        catalogue.Name(),
		QuestionnaireVersion: catalogue.Version(),
		Timepoint:            sub.Timepoint,
		Answers:              answers,
		Scores:               scores,
		Total:                scores.Total(),
		Prorated:             prorated,
		Source:               sub.Source,
		SubmittedBy:          sub.SubmittedBy,
	}
	if err := s.store.CreateAssessment(ctx, a); err != nil {
		return nil, fmt.Errorf("persist assessment: %w", err)
	}

	metrics.AssessmentsScored.WithLabelValues(sub.Source).Inc()
	metrics.TotalScore.Observe(float64(a.Total))
	for _, key := range prorated {
		metrics.SubscalesProrated.WithLabelValues(key).Inc()
	}

	s.logger.Info("assessment scored",
		"assessment_id", a.ID,
		"participant_id", a.ParticipantID,
		"timepoint", a.Timepoint,
		"total", a.Total,
		"prorated", prorated,
		"source", a.Source,
	)

	if s.hermes != nil {
		ev := hermes.AssessmentScoredEvent{
			AssessmentID:  a.ID.String(),
			SubmissionID:  sub.SubmissionID,
			ParticipantID: a.ParticipantID,
			Questionnaire: a.Questionnaire,
			Timepoint:     a.Timepoint,
			Scores:        a.Scores,
			Prorated:      a.Prorated,
			Source:        a.Source,
			ScoredAt:      time.Now().UTC(),
		}
		if err := s.hermes.Publish(hermes.SubjectAssessmentScored(a.ID.String()), ev); err != nil {
			s.logger.Warn("failed to publish scored event", "assessment_id", a.ID, "error", err)
		}
	}

	return a, nil
}

func (s *Service) publishRejected(submissionID, participantID, reason string) {
	if s.hermes == nil {
		return
	}
	ev := hermes.AssessmentRejectedEvent{
		SubmissionID:  submissionID,
		ParticipantID: participantID,
		Reason:        reason,
		RejectedAt:    time.Now().UTC(),
	}
	if err := s.hermes.Publish(hermes.SubjectAssessmentRejected, ev); err != nil {
		s.logger.Warn("failed to publish rejected event", "submission_id", submissionID, "error", err)
	}
}
