package observability

import "sync"

// Metrics provides basic in-memory counters for the message pipeline.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
}

// Counter names recorded by the pipeline.
const (
	MessagesProcessed = "messages_processed"
	RepliesSent       = "replies_sent"
	TicketsCreated    = "tickets_created"
	TicketsFollowedUp = "tickets_followed_up"
	TicketsClosed     = "tickets_closed"
	SessionFailures   = "session_failures"
	CreateFailures    = "create_failures"
	FollowupFailures  = "followup_failures"
	CloseFailures     = "close_failures"
	SendFailures      = "send_failures"
)

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{counters: make(map[string]int64)}
}

// Inc increments the named counter.
func (m *Metrics) Inc(name string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
}

// Snapshot returns a copy of all counters for the status endpoint.
func (m *Metrics) Snapshot() map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out
}
