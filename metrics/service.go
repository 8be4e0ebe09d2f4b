package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		RosterEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tournament_roster_events_total",
			Help: "The total number of roster change events handled, by outcome.",
		}, []string{"outcome"}),
		RosterEventFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tournament_roster_event_failures_total",
			Help: "The total number of roster change events that ended in an error.",
		}),
		BracketsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tournament_brackets_generated_total",
			Help: "The total number of double elimination brackets generated.",
		}),
		EventPublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tournament_event_publish_failures_total",
			Help: "The total number of roster events that could not be published.",
		}),
		BracketArchiveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tournament_bracket_archive_failures_total",
			Help: "The total number of bracket snapshots that could not be archived.",
		}),
		BracketPersistDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tournament_bracket_persist_duration_seconds",
			Help:    "The duration of persisting a full generated bracket.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}

	reg.MustRegister(
		s.RosterEvents,
		s.RosterEventFailures,
		s.BracketsGenerated,
		s.EventPublishFailures,
		s.BracketArchiveFailures,
		s.BracketPersistDuration,
	)

	return s
}

func (s *Service) IncRosterEvent(outcome string) {
	s.RosterEvents.WithLabelValues(outcome).Inc()
}

func (s *Service) IncRosterEventFailure() {
	s.RosterEventFailures.Inc()
}

func (s *Service) IncBracketsGenerated() {
	s.BracketsGenerated.Inc()
}

func (s *Service) IncEventPublishFailure() {
	s.EventPublishFailures.Inc()
}

func (s *Service) IncBracketArchiveFailure() {
	s.BracketArchiveFailures.Inc()
}

func (s *Service) ObserveBracketPersistDuration(seconds float64) {
	s.BracketPersistDuration.Observe(seconds)
}
