package bot

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chandrakumar-sys/bank-support-bot/internal/ai"
	"github.com/chandrakumar-sys/bank-support-bot/internal/mail"
	"github.com/chandrakumar-sys/bank-support-bot/internal/observability"
	"github.com/chandrakumar-sys/bank-support-bot/internal/session"
	"github.com/chandrakumar-sys/bank-support-bot/internal/ticket"
)

// ReplyGenerator produces the AI answer for one customer message.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, email, message string) string
}

// ReplySender delivers the final reply text back to the customer.
type ReplySender interface {
	SendReply(ctx context.Context, to, subject, body string) error
}

// TicketFlow runs the ticket lifecycle for one message.
type TicketFlow interface {
	Process(ctx context.Context, in ticket.Input) ticket.Outcome
}

// Handler runs the full per-message pipeline: generate the AI reply, tag
// intents, drive the ticket lifecycle, send the final text. Processing is
// serialized per customer through the lock manager.
type Handler struct {
	replier ReplyGenerator
	sender  ReplySender
	flow    TicketFlow
	locks   *session.Manager
	metrics *observability.Metrics
	log     *zap.Logger
}

func NewHandler(r ReplyGenerator, s ReplySender, flow TicketFlow, locks *session.Manager, m *observability.Metrics, log *zap.Logger) *Handler {
	return &Handler{replier: r, sender: s, flow: flow, locks: locks, metrics: m, log: log}
}

// HandleMessage processes one inbound message end to end. Nothing here is
// fatal; every failure is logged and the loop moves on.
func (h *Handler) HandleMessage(ctx context.Context, msg mail.Inbound) {
	log := h.log.With(
		zap.String("correlation_id", uuid.NewString()),
		zap.String("from", msg.From),
		zap.String("subject", msg.Subject),
	)

	customer := ticket.NormalizeIdentity(msg.From)
	if customer == "" {
		log.Warn("dropping message with unusable sender address")
		return
	}
	h.metrics.Inc(observability.MessagesProcessed)
	log.Info("handling message")

	h.locks.Do(customer, func() {
		aiReply := h.replier.GenerateReply(ctx, string(customer), msg.Body)

		out := h.flow.Process(ctx, ticket.Input{
			MessageID: msg.MessageID,
			From:      customer,
			Message:   msg.Body,
			AIReply:   aiReply,
			Intents:   ai.TagIntents(msg.Body),
		})

		if err := h.sender.SendReply(ctx, string(customer), replySubject(msg.Subject), out.Reply); err != nil {
			h.metrics.Inc(observability.SendFailures)
			log.Error("sending reply failed", zap.Error(err))
			return
		}
		h.metrics.Inc(observability.RepliesSent)
		log.Info("reply sent", zap.Int("ticket_id", out.TicketID))
	})
}

func replySubject(subject string) string {
	s := strings.TrimSpace(subject)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(s), "re:") {
		return s
	}
	return "Re: " + s
}
