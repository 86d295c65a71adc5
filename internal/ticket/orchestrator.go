package ticket

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chandrakumar-sys/bank-support-bot/internal/observability"
)

// Helpdesk is the narrow contract the orchestrator needs from the external
// ticketing system. Every call is side-effecting and never retried here.
type Helpdesk interface {
	InitSession(ctx context.Context) (string, error)
	KillSession(ctx context.Context, sessionToken string) error
	CreateTicket(ctx context.Context, sessionToken, title, content string) (int, error)
	AddFollowup(ctx context.Context, sessionToken string, ticketID int, content string) error
	CloseTicket(ctx context.Context, sessionToken string, ticketID int) error
}

// Input is one inbound customer message plus the collaborator-generated
// reply and intent tags. Intents only enrich the ticket description; they
// never branch the lifecycle.
type Input struct {
	MessageID string
	From      Identity
	Message   string
	AIReply   string
	Intents   []string
}

// Orchestrator decides, per message, whether to open a ticket, attach a
// follow-up, or close, and keeps the customer's ticket association
// consistent with that decision. It never surfaces a hard failure to the
// caller; the worst outcome is a degraded reply text.
type Orchestrator struct {
	helpdesk Helpdesk
	store    Store
	detector *Detector
	metrics  *observability.Metrics
	log      *zap.Logger
}

func NewOrchestrator(h Helpdesk, s Store, d *Detector, m *observability.Metrics, log *zap.Logger) *Orchestrator {
	return &Orchestrator{helpdesk: h, store: s, detector: d, metrics: m, log: log}
}

// Process runs the lifecycle machine for one message and returns the final
// customer-facing reply. An invocation whose message ID was already fully
// processed returns the recorded outcome without touching the helpdesk:
// the helpdesk API has no idempotency key, so a replayed create must be
// stopped here rather than retried remotely.
func (o *Orchestrator) Process(ctx context.Context, in Input) Outcome {
	if in.MessageID == "" {
		in.MessageID = uuid.NewString()
	}
	log := o.log.With(zap.String("customer", string(in.From)), zap.String("message_id", in.MessageID))

	if out, seen, err := o.store.SeenMessage(in.MessageID); err != nil {
		log.Warn("replay lookup failed", zap.Error(err))
	} else if seen {
		log.Info("replayed message, returning recorded outcome", zap.Int("ticket_id", out.TicketID))
		return out
	}

	state := State{Kind: NoTicket}
	rec, exists, err := o.store.Get(in.From)
	if err != nil {
		log.Error("ticket store read failed", zap.Error(err))
	} else if exists {
		state = State{Kind: Open, TicketID: rec.TicketID}
	}

	action, _ := Plan(state, o.detector.IsCloseConfirmation(in.Message))

	var out Outcome
	var completed bool
	switch action {
	case ActionAcknowledge:
		// Close confirmed but no ticket is known: nothing to close.
		// A logical condition, not an error.
		log.Info("close confirmed with no ticket on record")
		out = Outcome{Reply: "Your issue is marked as resolved.\n\nRegards,\nBank Support Team"}
		completed = true
	case ActionClose:
		out, completed = o.closeTicket(ctx, log, in, state.TicketID)
	case ActionFollowup:
		out, completed = o.followUp(ctx, log, in, state.TicketID)
	case ActionCreate:
		out, completed = o.createTicket(ctx, log, in)
	}

	// Degraded outcomes with no side effect stay unmarked so the caller may
	// legitimately re-deliver the message later.
	if completed {
		if err := o.store.MarkMessage(in.MessageID, out); err != nil {
			log.Warn("marking message processed failed", zap.Error(err))
		}
	}
	return out
}

func (o *Orchestrator) closeTicket(ctx context.Context, log *zap.Logger, in Input, ticketID int) (Outcome, bool) {
	token, err := o.helpdesk.InitSession(ctx)
	if err != nil {
		o.metrics.Inc(observability.SessionFailures)
		log.Error("session acquisition failed on close", zap.Error(err))
		return Outcome{Reply: "Your ticket is resolved. (But auto-close failed.)"}, false
	}
	defer o.helpdesk.KillSession(ctx, token)

	if err := o.helpdesk.CloseTicket(ctx, token, ticketID); err != nil {
		// Soft success toward the customer; the record stays so the next
		// close attempt still knows the ticket.
		o.metrics.Inc(observability.CloseFailures)
		log.Error("close failed", zap.Int("ticket_id", ticketID), zap.Error(err))
	} else {
		o.metrics.Inc(observability.TicketsClosed)
		log.Info("ticket closed", zap.Int("ticket_id", ticketID))
		if err := o.store.Delete(in.From); err != nil {
			log.Error("clearing ticket record failed", zap.Int("ticket_id", ticketID), zap.Error(err))
		}
	}

	reply := fmt.Sprintf("Your ticket #%d has been closed.\n\n"+
		"If you need anything else, feel free to contact us again.\n\n"+
		"Regards,\nBank Support Team", ticketID)
	return Outcome{TicketID: ticketID, Reply: reply}, true
}

func (o *Orchestrator) followUp(ctx context.Context, log *zap.Logger, in Input, ticketID int) (Outcome, bool) {
	token, err := o.helpdesk.InitSession(ctx)
	if err != nil {
		o.metrics.Inc(observability.SessionFailures)
		log.Error("session acquisition failed on follow-up", zap.Error(err))
		return Outcome{Reply: in.AIReply + "\n\n(Note: Ticketing system unavailable.)"}, false
	}
	defer o.helpdesk.KillSession(ctx, token)

	for _, note := range []string{
		"Customer reply:\n" + in.Message,
		"AI reply:\n" + in.AIReply,
	} {
		if err := o.helpdesk.AddFollowup(ctx, token, ticketID, note); err != nil {
			o.metrics.Inc(observability.FollowupFailures)
			log.Error("follow-up failed", zap.Int("ticket_id", ticketID), zap.Error(err))
		}
	}
	o.metrics.Inc(observability.TicketsFollowedUp)
	log.Info("follow-up added", zap.Int("ticket_id", ticketID))

	reply := in.AIReply + fmt.Sprintf("\n\nTicket Reference ID: #%d\n(Your message has been added as a follow-up)", ticketID)
	return Outcome{TicketID: ticketID, Reply: reply}, true
}

func (o *Orchestrator) createTicket(ctx context.Context, log *zap.Logger, in Input) (Outcome, bool) {
	token, err := o.helpdesk.InitSession(ctx)
	if err != nil {
		o.metrics.Inc(observability.SessionFailures)
		log.Error("session acquisition failed on create", zap.Error(err))
		return Outcome{Reply: in.AIReply + "\n\n(Note: Ticketing system unavailable.)"}, false
	}
	defer o.helpdesk.KillSession(ctx, token)

	title := fmt.Sprintf("Loan Support Request - %s", in.From)
	ticketID, err := o.helpdesk.CreateTicket(ctx, token, title, buildDescription(in))
	if err != nil {
		o.metrics.Inc(observability.CreateFailures)
		log.Error("create failed", zap.Error(err))
		return Outcome{Reply: in.AIReply + "\n\n(Note: Could not create ticket.)"}, false
	}

	// The mapping is the critical step: save it before the AI-reply note so
	// a failed note cannot roll back an existing ticket.
	if err := o.store.Put(Record{TicketID: ticketID, Owner: in.From}); err != nil {
		log.Error("saving ticket record failed", zap.Int("ticket_id", ticketID), zap.Error(err))
	}
	o.metrics.Inc(observability.TicketsCreated)
	log.Info("ticket created", zap.Int("ticket_id", ticketID))

	if err := o.helpdesk.AddFollowup(ctx, token, ticketID, "AI Response:\n"+in.AIReply); err != nil {
		o.metrics.Inc(observability.FollowupFailures)
		log.Error("follow-up after create failed", zap.Int("ticket_id", ticketID), zap.Error(err))
	}

	reply := in.AIReply + fmt.Sprintf("\n\nTicket Reference ID: #%d\n(Use this ID for any follow-up queries)", ticketID)
	return Outcome{TicketID: ticketID, Reply: reply}, true
}

func buildDescription(in Input) string {
	return fmt.Sprintf("Customer Email: %s\n\nMessage:\n%s\n\nIntents: %s\n\nAI Reply:\n%s",
		in.From, in.Message, strings.Join(in.Intents, ", "), in.AIReply)
}
