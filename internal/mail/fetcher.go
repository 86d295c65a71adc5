package mail

import (
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/chandrakumar-sys/bank-support-bot/internal/config"
)

const dialTimeout = 30 * time.Second

// Fetcher pulls unread messages from the support inbox over IMAP. Each
// FetchUnseen dials a fresh connection; the poll cadence is slow enough
// that holding one open buys nothing and reconnecting heals dropped links.
type Fetcher struct {
	addr     string
	account  string
	password string
}

func NewFetcher(cfg config.MailConfig) *Fetcher {
	return &Fetcher{
		addr:     cfg.IMAPAddr,
		account:  cfg.Account,
		password: cfg.Password,
	}
}

// FetchUnseen returns all unread inbox messages and marks them seen, so a
// crash between fetch and reply re-delivers rather than drops. The
// orchestrator's replay guard absorbs any resulting duplicates.
func (f *Fetcher) FetchUnseen() ([]Inbound, error) {
	conn, err := (&net.Dialer{Timeout: dialTimeout}).Dial("tcp", f.addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", f.addr, err)
	}
	host := f.addr
	if h, _, err := net.SplitHostPort(f.addr); err == nil {
		host = h
	}
	tlsConn := tls.Client(conn, &tls.Config{ServerName: host})

	c := imapclient.New(tlsConn, nil)
	defer c.Close()

	if err := c.Login(f.account, f.password).Wait(); err != nil {
		return nil, fmt.Errorf("imap login: %w", err)
	}
	defer c.Logout()

	if _, err := c.Select("INBOX", nil).Wait(); err != nil {
		return nil, fmt.Errorf("selecting inbox: %w", err)
	}

	search, err := c.Search(&imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching unseen: %w", err)
	}

	nums := search.AllSeqNums()
	if len(nums) == 0 {
		return nil, nil
	}
	seqSet := imap.SeqSetNum(nums...)

	bodySection := &imap.FetchItemBodySection{}
	msgs, err := c.Fetch(seqSet, &imap.FetchOptions{
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}).Collect()
	if err != nil {
		return nil, fmt.Errorf("fetching messages: %w", err)
	}

	inbound := make([]Inbound, 0, len(msgs))
	for _, m := range msgs {
		if m.Envelope == nil || len(m.Envelope.From) == 0 {
			continue
		}
		inbound = append(inbound, Inbound{
			MessageID: strings.Trim(m.Envelope.MessageID, "<>"),
			From:      m.Envelope.From[0].Addr(),
			Subject:   m.Envelope.Subject,
			Body:      extractBody(m.FindBodySection(bodySection)),
		})
	}

	if err := c.Store(seqSet, &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil).Close(); err != nil {
		return inbound, fmt.Errorf("marking seen: %w", err)
	}

	return inbound, nil
}
