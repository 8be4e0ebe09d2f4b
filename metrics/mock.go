package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                     sync.Mutex
	rosterEvents           map[string]int
	rosterEventFailures    int
	bracketsGenerated      int
	eventPublishFailures   int
	bracketArchiveFailures int
	persistDurations       []float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		rosterEvents:     make(map[string]int),
		persistDurations: make([]float64, 0),
	}
}

func (m *Mock) IncRosterEvent(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rosterEvents[outcome]++
}

func (m *Mock) IncRosterEventFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rosterEventFailures++
}

func (m *Mock) IncBracketsGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bracketsGenerated++
}

func (m *Mock) IncEventPublishFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventPublishFailures++
}

func (m *Mock) IncBracketArchiveFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bracketArchiveFailures++
}

func (m *Mock) ObserveBracketPersistDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persistDurations = append(m.persistDurations, seconds)
}

// RosterEvents returns how many times IncRosterEvent was called with the outcome.
func (m *Mock) RosterEvents(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rosterEvents[outcome]
}

// RosterEventFailures returns the number of times IncRosterEventFailure was called.
func (m *Mock) RosterEventFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rosterEventFailures
}

// BracketsGenerated returns the number of times IncBracketsGenerated was called.
func (m *Mock) BracketsGenerated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bracketsGenerated
}

// EventPublishFailures returns the number of times IncEventPublishFailure was called.
func (m *Mock) EventPublishFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventPublishFailures
}

// BracketArchiveFailures returns the number of times IncBracketArchiveFailure was called.
func (m *Mock) BracketArchiveFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bracketArchiveFailures
}

// PersistDurations returns the observed persist durations.
func (m *Mock) PersistDurations() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float64, len(m.persistDurations))
	copy(out, m.persistDurations)
	return out
}
