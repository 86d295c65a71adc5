package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/chandrakumar-sys/bank-support-bot/internal/config"
)

// Sender delivers the bot's replies over SMTP with STARTTLS.
type Sender struct {
	host     string
	port     int
	account  string
	password string
}

func NewSender(cfg config.MailConfig) *Sender {
	return &Sender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		account:  cfg.Account,
		password: cfg.Password,
	}
}

// SendReply sends one plain-text reply to the customer. An empty subject
// becomes the stock "Re: Your Query".
func (s *Sender) SendReply(ctx context.Context, to, subject, body string) error {
	if subject == "" {
		subject = "Re: Your Query"
	}

	m := gomail.NewMsg()
	if err := m.From(s.account); err != nil {
		return fmt.Errorf("setting from: %w", err)
	}
	if err := m.To(to); err != nil {
		return fmt.Errorf("setting to: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(gomail.TypeTextPlain, body)

	c, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.account),
		gomail.WithPassword(s.password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer c.Close()

	return c.DialAndSendWithContext(ctx, m)
}
