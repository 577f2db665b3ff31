package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	SourceAPI    = "api"
	SourceHermes = "hermes"
)

// Assessment is one scored questionnaire administration.
type Assessment struct {
	ID                   uuid.UUID `json:"id"`
	ParticipantID        string    `json:"participant_id"`
	Questionnaire        string    `json:"questionnaire"`
	QuestionnaireVersion string    `json:"questionnaire_version,omitempty"`
	Timepoint            string    `json:"timepoint,omitempty"`

	// Raw responses as submitted; nil means skipped.
	Answers map[string]*int `json:"answers"`

	// Scoring outputs
	Scores   map[string]int `json:"scores"`
	Total    int            `json:"total"`
	Prorated []string       `json:"prorated,omitempty"`

	// Provenance
	Source      string    `json:"source"`
	SubmittedBy string    `json:"submitted_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type AssessmentFilter struct {
	ParticipantID string
	Questionnaire string
	Timepoint     string
	Limit         int
	Offset        int
}

type AssessmentStats struct {
	TotalAssessments     int        `json:"total_assessments"`
	DistinctParticipants int        `json:"distinct_participants"`
	MeanTotal            float64    `json:"mean_total"`
	LastSubmittedAt      *time.Time `json:"last_submitted_at,omitempty"`
}

const defaultListLimit = 100

func (f AssessmentFilter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}

// Store persists scored assessments. GetAssessment returns nil, nil when the
// id does not exist.
type Store interface {
	CreateAssessment(ctx context.Context, a *Assessment) error
	GetAssessment(ctx context.Context, id uuid.UUID) (*Assessment, error)
	ListAssessments(ctx context.Context, filter AssessmentFilter) ([]*Assessment, error)
	GetStats(ctx context.Context) (*AssessmentStats, error)
	Close() error
}
