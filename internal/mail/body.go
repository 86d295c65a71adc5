package mail

import (
	"bytes"
	"html"
	"io"
	"strings"

	_ "github.com/emersion/go-message/charset"
	gomail "github.com/emersion/go-message/mail"
)

// extractBody pulls a plain-text body out of a raw RFC 822 message,
// skipping attachments. Preference order: text/plain part, then tag-stripped
// text/html, then "no body".
func extractBody(raw []byte) string {
	mr, err := gomail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return "no body"
	}

	var plain, htmlBody string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		h, ok := p.Header.(*gomail.InlineHeader)
		if !ok {
			continue
		}

		content, err := io.ReadAll(p.Body)
		if err != nil {
			continue
		}

		ct, _, _ := h.ContentType()
		switch ct {
		case "text/plain":
			if plain == "" {
				plain = string(content)
			}
		case "text/html":
			if htmlBody == "" {
				htmlBody = string(content)
			}
		}
	}

	if s := strings.TrimSpace(plain); s != "" {
		return s
	}
	if s := strings.TrimSpace(stripHTML(htmlBody)); s != "" {
		return s
	}
	return "no body"
}

// stripHTML drops tags and collapses whitespace, keeping the visible text.
func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
			b.WriteByte(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(html.UnescapeString(b.String())), " ")
}
