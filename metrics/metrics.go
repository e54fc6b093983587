package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var SubmissionsCreatedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fed_submissions_created_total",
	Help: "Number of submissions created, by kind",
}, []string{"kind"})

var SubmissionReviewCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fed_submission_reviews_total",
	Help: "Number of completed review transitions, by resulting status",
}, []string{"status"})

var ReviewConflictCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "fed_submission_review_conflicts_total",
	Help: "Number of review calls that lost the transition race or hit a non-pending submission",
})

var NotificationErrorCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "fed_notification_errors_total",
	Help: "Number of lifecycle notification emissions that failed",
})

var ReconcileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "fed_reconcile_duration_seconds",
	Help: "Duration of result reconciliation per athlete read",
})
