package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssessmentsScored = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qualis",
		Name:      "assessments_scored_total",
		Help:      "Assessments scored and persisted, by submission source.",
	}, []string{"source"})

	AssessmentsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qualis",
		Name:      "assessments_rejected_total",
		Help:      "Submissions rejected before scoring, by source and reason.",
	}, []string{"source", "reason"})

	SubscalesProrated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qualis",
		Name:      "subscales_prorated_total",
		Help:      "Subscale scores derived from incomplete responses.",
	}, []string{"subscale"})

	TotalScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "qualis",
		Name:      "total_score",
		Help:      "Distribution of questionnaire total scores.",
		Buckets:   prometheus.LinearBuckets(0, 12, 10),
	})

	IntakeQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "qualis",
		Name:      "intake_queue_depth",
		Help:      "Submissions waiting for an intake worker.",
	})
)
