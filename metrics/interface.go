package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncRosterEvent(outcome string)
	IncRosterEventFailure()
	IncBracketsGenerated()
	IncEventPublishFailure()
	IncBracketArchiveFailure()
	ObserveBracketPersistDuration(seconds float64)
}
