package ticket

import "sync"

// Record associates a customer with the last ticket created for them. The
// ticket identifier is assigned by the helpdesk and never interpreted here.
type Record struct {
	TicketID int      `json:"ticket_id"`
	Owner    Identity `json:"owner"`
}

// Outcome is the result of processing one inbound message.
type Outcome struct {
	TicketID int    `json:"ticket_id,omitempty"`
	Reply    string `json:"reply"`
}

// Store keeps at most one ticket record per customer, plus markers for
// messages whose processing already completed (the replay guard). The
// orchestrator owns no storage itself; callers inject an implementation.
type Store interface {
	Get(owner Identity) (Record, bool, error)
	Put(rec Record) error
	Delete(owner Identity) error

	SeenMessage(messageID string) (Outcome, bool, error)
	MarkMessage(messageID string, out Outcome) error

	Close() error
}

// MemoryStore is a process-lifetime Store backed by maps. Safe for
// concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	records map[Identity]Record
	seen    map[string]Outcome
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[Identity]Record),
		seen:    make(map[string]Outcome),
	}
}

func (s *MemoryStore) Get(owner Identity) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[owner]
	return rec, ok, nil
}

func (s *MemoryStore) Put(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Owner] = rec
	return nil
}

func (s *MemoryStore) Delete(owner Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, owner)
	return nil
}

func (s *MemoryStore) SeenMessage(messageID string) (Outcome, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, ok := s.seen[messageID]
	return out, ok, nil
}

func (s *MemoryStore) MarkMessage(messageID string, out Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[messageID] = out
	return nil
}

func (s *MemoryStore) Close() error { return nil }
