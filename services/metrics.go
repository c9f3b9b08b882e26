package services

import "github.com/prometheus/client_golang/prometheus"

var (
	goalsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "goals_completed_total",
			Help: "Total number of goal completions",
		},
	)
	credentialsIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "credentials_issued_total",
			Help: "Total number of credentials issued",
		},
	)
	credentialIssueFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "credential_issue_failures_total",
			Help: "Credential issuances that failed and were left to the repair job",
		},
	)
	celebrationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "celebrations_created_total",
			Help: "Total number of celebrations created",
		},
	)
)

// InitMetrics registers the engine metrics. Call once from main.go.
func InitMetrics() {
	prometheus.MustRegister(goalsCompleted)
	prometheus.MustRegister(credentialsIssued)
	prometheus.MustRegister(credentialIssueFailures)
	prometheus.MustRegister(celebrationsCreated)
}
