package mail

// Inbound is one unread customer message pulled from the support mailbox.
// MessageID is the RFC 5322 Message-ID when the sender set one.
type Inbound struct {
	MessageID string
	From      string
	Subject   string
	Body      string
}
