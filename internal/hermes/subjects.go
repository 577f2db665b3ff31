package hermes

const (
	SubjectAssessmentSubmitted = "trial.assessment.submitted"
	SubjectAssessmentRejected  = "trial.assessment.rejected"

	QueueIntake = "qualis-intake"

	StreamName     = "QUALIS_EVENTS"
	StreamSubjects = "trial.assessment.>"
	StreamMaxAge   = "2160h" // 90 days
)

func SubjectAssessmentScored(assessmentID string) string {
	return "trial.assessment." + assessmentID + ".scored"
}
