package ticket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/chandrakumar-sys/bank-support-bot/internal/observability"
)

type followupCall struct {
	ticketID int
	note     string
}

type fakeHelpdesk struct {
	sessionErr  error
	createErr   error
	followupErr error
	closeErr    error

	nextTicketID int

	initCalls   int
	killCalls   int
	createCalls int
	closeCalls  []int
	followups   []followupCall
}

func (f *fakeHelpdesk) InitSession(context.Context) (string, error) {
	f.initCalls++
	if f.sessionErr != nil {
		return "", f.sessionErr
	}
	return "session-token", nil
}

func (f *fakeHelpdesk) KillSession(context.Context, string) error {
	f.killCalls++
	return nil
}

func (f *fakeHelpdesk) CreateTicket(_ context.Context, _, _, _ string) (int, error) {
	f.createCalls++
	if f.createErr != nil {
		return 0, f.createErr
	}
	return f.nextTicketID, nil
}

func (f *fakeHelpdesk) AddFollowup(_ context.Context, _ string, ticketID int, note string) error {
	if f.followupErr != nil {
		return f.followupErr
	}
	f.followups = append(f.followups, followupCall{ticketID: ticketID, note: note})
	return nil
}

func (f *fakeHelpdesk) CloseTicket(_ context.Context, _ string, ticketID int) error {
	f.closeCalls = append(f.closeCalls, ticketID)
	return f.closeErr
}

func newTestOrchestrator(h *fakeHelpdesk, s Store) *Orchestrator {
	return NewOrchestrator(h, s, DefaultDetector(), observability.NewMetrics(), zap.NewNop())
}

func input(msgID, from, message string) Input {
	return Input{
		MessageID: msgID,
		From:      Identity(from),
		Message:   message,
		AIReply:   "Your EMI is due on the 5th.",
		Intents:   []string{"emi_due_date"},
	}
}

func TestProcessNewCustomerCreatesTicket(t *testing.T) {
	h := &fakeHelpdesk{nextTicketID: 42}
	s := NewMemoryStore()
	o := newTestOrchestrator(h, s)

	out := o.Process(context.Background(), input("m1", "jane@bank.com", "When is my EMI due?"))

	if h.createCalls != 1 {
		t.Errorf("createCalls = %d, want 1", h.createCalls)
	}
	if len(h.followups) != 1 {
		t.Fatalf("followups = %d, want 1", len(h.followups))
	}
	if h.followups[0].ticketID != 42 {
		t.Errorf("followup ticket = %d, want 42", h.followups[0].ticketID)
	}
	if !strings.HasPrefix(h.followups[0].note, "AI Response:") {
		t.Errorf("followup note = %q, want AI Response prefix", h.followups[0].note)
	}
	if out.TicketID != 42 {
		t.Errorf("TicketID = %d, want 42", out.TicketID)
	}
	if !strings.Contains(out.Reply, "Ticket Reference ID: #42") {
		t.Errorf("reply missing ticket reference: %q", out.Reply)
	}

	rec, ok, err := s.Get("jane@bank.com")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v; want record", ok, err)
	}
	if rec.TicketID != 42 {
		t.Errorf("stored ticket = %d, want 42", rec.TicketID)
	}
}

func TestProcessOpenTicketFollowsUp(t *testing.T) {
	h := &fakeHelpdesk{}
	s := NewMemoryStore()
	s.Put(Record{TicketID: 42, Owner: "jane@bank.com"})
	o := newTestOrchestrator(h, s)

	out := o.Process(context.Background(), input("m2", "jane@bank.com", "What about the processing fee?"))

	if h.createCalls != 0 {
		t.Errorf("createCalls = %d, want 0", h.createCalls)
	}
	if len(h.followups) != 2 {
		t.Fatalf("followups = %d, want 2", len(h.followups))
	}
	for i, want := range []string{"Customer reply:", "AI reply:"} {
		if h.followups[i].ticketID != 42 {
			t.Errorf("followup[%d] ticket = %d, want 42", i, h.followups[i].ticketID)
		}
		if !strings.HasPrefix(h.followups[i].note, want) {
			t.Errorf("followup[%d] note = %q, want prefix %q", i, h.followups[i].note, want)
		}
	}
	if !strings.Contains(out.Reply, "Ticket Reference ID: #42") {
		t.Errorf("reply missing ticket reference: %q", out.Reply)
	}

	rec, ok, _ := s.Get("jane@bank.com")
	if !ok || rec.TicketID != 42 {
		t.Errorf("record = %+v, %v; want Open(42) retained", rec, ok)
	}
}

func TestProcessCloseConfirmation(t *testing.T) {
	h := &fakeHelpdesk{}
	s := NewMemoryStore()
	s.Put(Record{TicketID: 42, Owner: "jane@bank.com"})
	o := newTestOrchestrator(h, s)

	out := o.Process(context.Background(), input("m3", "jane@bank.com", "Issue resolved, thank you"))

	if len(h.closeCalls) != 1 || h.closeCalls[0] != 42 {
		t.Fatalf("closeCalls = %v, want [42]", h.closeCalls)
	}
	if h.createCalls != 0 || len(h.followups) != 0 {
		t.Errorf("unexpected create/followup calls: %d/%d", h.createCalls, len(h.followups))
	}
	if !strings.Contains(out.Reply, "#42") || !strings.Contains(out.Reply, "closed") {
		t.Errorf("reply = %q, want closure acknowledgement with #42", out.Reply)
	}

	if _, ok, _ := s.Get("jane@bank.com"); ok {
		t.Error("record retained after successful close, want cleared")
	}
}

func TestProcessCloseWithNoTicket(t *testing.T) {
	h := &fakeHelpdesk{}
	s := NewMemoryStore()
	o := newTestOrchestrator(h, s)

	out := o.Process(context.Background(), input("m4", "jane@bank.com", "issue resolved"))

	if h.initCalls != 0 {
		t.Errorf("initCalls = %d, want 0", h.initCalls)
	}
	if h.createCalls != 0 || len(h.followups) != 0 || len(h.closeCalls) != 0 {
		t.Error("helpdesk called for close with no ticket on record")
	}
	if strings.Contains(out.Reply, "#") {
		t.Errorf("reply contains a ticket number: %q", out.Reply)
	}
	if !strings.Contains(out.Reply, "resolved") {
		t.Errorf("reply = %q, want generic resolution acknowledgement", out.Reply)
	}
}

func TestProcessSessionFailureTouchesNothing(t *testing.T) {
	for name, setup := range map[string]func(s Store){
		"no ticket":   func(Store) {},
		"open ticket": func(s Store) { s.Put(Record{TicketID: 42, Owner: "jane@bank.com"}) },
	} {
		t.Run(name, func(t *testing.T) {
			h := &fakeHelpdesk{sessionErr: errors.New("initSession: status 500")}
			s := NewMemoryStore()
			setup(s)
			before, hadBefore, _ := s.Get("jane@bank.com")

			o := newTestOrchestrator(h, s)
			out := o.Process(context.Background(), input("m5", "jane@bank.com", "Need my loan statement"))

			if h.createCalls != 0 || len(h.followups) != 0 || len(h.closeCalls) != 0 {
				t.Error("helpdesk operations attempted without a session")
			}
			after, hadAfter, _ := s.Get("jane@bank.com")
			if hadBefore != hadAfter || before != after {
				t.Errorf("store changed: %+v/%v -> %+v/%v", before, hadBefore, after, hadAfter)
			}
			if !strings.Contains(out.Reply, "Ticketing system unavailable") {
				t.Errorf("reply = %q, want degraded note", out.Reply)
			}
		})
	}
}

func TestProcessCreateFailureLeavesStoreUntouched(t *testing.T) {
	h := &fakeHelpdesk{createErr: errors.New("createTicket: status 400")}
	s := NewMemoryStore()
	o := newTestOrchestrator(h, s)

	out := o.Process(context.Background(), input("m6", "jane@bank.com", "My EMI bounced"))

	if _, ok, _ := s.Get("jane@bank.com"); ok {
		t.Error("record saved despite failed create")
	}
	if !strings.Contains(out.Reply, "Could not create ticket") {
		t.Errorf("reply = %q, want create-failure note", out.Reply)
	}
}

func TestProcessFollowupFailureKeepsNewMapping(t *testing.T) {
	h := &fakeHelpdesk{nextTicketID: 7, followupErr: errors.New("addFollowup: status 500")}
	s := NewMemoryStore()
	o := newTestOrchestrator(h, s)

	out := o.Process(context.Background(), input("m7", "jane@bank.com", "My EMI bounced"))

	rec, ok, _ := s.Get("jane@bank.com")
	if !ok || rec.TicketID != 7 {
		t.Errorf("record = %+v, %v; a failed note must not roll back the ticket", rec, ok)
	}
	if !strings.Contains(out.Reply, "#7") {
		t.Errorf("reply = %q, want ticket reference", out.Reply)
	}
}

func TestProcessCloseFailureRetainsRecord(t *testing.T) {
	h := &fakeHelpdesk{closeErr: errors.New("closeTicket: status 500")}
	s := NewMemoryStore()
	s.Put(Record{TicketID: 42, Owner: "jane@bank.com"})
	o := newTestOrchestrator(h, s)

	out := o.Process(context.Background(), input("m8", "jane@bank.com", "please close the ticket"))

	// Soft success toward the customer, record kept for a later retry.
	if !strings.Contains(out.Reply, "#42") {
		t.Errorf("reply = %q, want soft closure acknowledgement", out.Reply)
	}
	if _, ok, _ := s.Get("jane@bank.com"); !ok {
		t.Error("record cleared despite failed close")
	}
}

func TestProcessReplayDoesNotCreateTwice(t *testing.T) {
	h := &fakeHelpdesk{nextTicketID: 42}
	s := NewMemoryStore()
	o := newTestOrchestrator(h, s)

	in := input("msg-abc", "jane@bank.com", "When is my EMI due?")
	first := o.Process(context.Background(), in)
	second := o.Process(context.Background(), in)

	if h.createCalls != 1 {
		t.Errorf("createCalls = %d, want 1 across a replayed request", h.createCalls)
	}
	if first != second {
		t.Errorf("replay outcome = %+v, want recorded %+v", second, first)
	}
}

func TestProcessFailedCreateMayBeRedelivered(t *testing.T) {
	h := &fakeHelpdesk{createErr: errors.New("createTicket: status 503")}
	s := NewMemoryStore()
	o := newTestOrchestrator(h, s)

	in := input("msg-retry", "jane@bank.com", "My EMI bounced")
	o.Process(context.Background(), in)

	// The first attempt created nothing, so a re-delivery must be allowed
	// to do the real work.
	h.createErr = nil
	h.nextTicketID = 9
	out := o.Process(context.Background(), in)

	if h.createCalls != 2 {
		t.Errorf("createCalls = %d, want 2", h.createCalls)
	}
	if out.TicketID != 9 {
		t.Errorf("TicketID = %d, want 9", out.TicketID)
	}
}

func TestProcessSessionsNeverReused(t *testing.T) {
	h := &fakeHelpdesk{nextTicketID: 1}
	s := NewMemoryStore()
	o := newTestOrchestrator(h, s)

	for i := 0; i < 3; i++ {
		o.Process(context.Background(), input(fmt.Sprintf("m-%d", i), "jane@bank.com", "follow up please"))
	}

	if h.initCalls != 3 {
		t.Errorf("initCalls = %d, want a fresh session per invocation", h.initCalls)
	}
	if h.killCalls != 3 {
		t.Errorf("killCalls = %d, want each session ended", h.killCalls)
	}
}
