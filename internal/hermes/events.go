package hermes

import "time"

// AssessmentSubmittedEvent is published by the mobile submission gateway
// once a participant finishes a questionnaire.
type AssessmentSubmittedEvent struct {
	SubmissionID  string          `json:"submission_id,omitempty"`
	ParticipantID string          `json:"participant_id"`
	Questionnaire string          `json:"questionnaire,omitempty"`
	Timepoint     string          `json:"timepoint,omitempty"`
	Answers       map[string]*int `json:"answers"`
	SubmittedBy   string          `json:"submitted_by,omitempty"`
}

type AssessmentScoredEvent struct {
	AssessmentID  string         `json:"assessment_id"`
	SubmissionID  string         `json:"submission_id,omitempty"`
	ParticipantID string         `json:"participant_id"`
	Questionnaire string         `json:"questionnaire"`
	Timepoint     string         `json:"timepoint,omitempty"`
	Scores        map[string]int `json:"scores"`
	Prorated      []string       `json:"prorated,omitempty"`
	Source        string         `json:"source"`
	ScoredAt      time.Time      `json:"scored_at"`
}

type AssessmentRejectedEvent struct {
	SubmissionID  string    `json:"submission_id,omitempty"`
	ParticipantID string    `json:"participant_id,omitempty"`
	Reason        string    `json:"reason"`
	RejectedAt    time.Time `json:"rejected_at"`
}
