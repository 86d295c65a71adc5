package bot

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chandrakumar-sys/bank-support-bot/internal/mail"
)

// MailSource yields unread inbox messages.
type MailSource interface {
	FetchUnseen() ([]mail.Inbound, error)
}

// MessageHandler processes one inbound message.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg mail.Inbound)
}

// Poller drives the inbox loop: fetch unread messages, dispatch them, sleep.
// A batch is dispatched concurrently; the handler's per-customer locks keep
// that safe. Fetch errors are logged and retried on the next tick.
type Poller struct {
	source   MailSource
	handler  MessageHandler
	interval time.Duration
	log      *zap.Logger
}

func NewPoller(source MailSource, handler MessageHandler, interval time.Duration, log *zap.Logger) *Poller {
	return &Poller{source: source, handler: handler, interval: interval, log: log}
}

// Run polls until ctx is canceled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.poll(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	msgs, err := p.source.FetchUnseen()
	if err != nil {
		// Messages fetched before the error are still processed; their
		// seen-flag may not be set, so replay protection has to hold.
		p.log.Error("mail fetch failed", zap.Error(err))
	}
	if len(msgs) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, m := range msgs {
		wg.Add(1)
		go func(msg mail.Inbound) {
			defer wg.Done()
			p.handler.HandleMessage(ctx, msg)
		}(m)
	}
	wg.Wait()
}
