package session

import (
	"sync"
	"time"

	"github.com/chandrakumar-sys/bank-support-bot/internal/ticket"
)

// Manager serializes message processing per customer. Two rapid messages
// from the same customer must not interleave the read-then-write of the
// ticket state machine, or two tickets could be created for one customer,
// or a follow-up could race a close. Different customers run in parallel.
type Manager struct {
	mu    sync.Mutex
	locks map[ticket.Identity]*customerLock
}

type customerLock struct {
	mu       sync.Mutex
	lastUsed time.Time
}

func NewManager() *Manager {
	return &Manager{
		locks: make(map[ticket.Identity]*customerLock),
	}
}

// Do executes fn while holding the customer's mutex.
func (m *Manager) Do(customer ticket.Identity, fn func()) {
	m.mu.Lock()
	cl, ok := m.locks[customer]
	if !ok {
		cl = &customerLock{}
		m.locks[customer] = cl
	}
	m.mu.Unlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	cl.lastUsed = time.Now()
	fn()
}

// Cleanup removes locks not used within maxAge to prevent unbounded growth
// as customers come and go.
func (m *Manager) Cleanup(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for customer, cl := range m.locks {
		if now.Sub(cl.lastUsed) > maxAge {
			delete(m.locks, customer)
		}
	}
}
