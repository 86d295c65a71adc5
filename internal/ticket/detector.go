package ticket

import "strings"

// defaultClosePhrases only matches when the customer clearly confirms
// resolution. False negatives are acceptable here; false positives
// (accidentally closing an open issue) are not, so matching stays
// substring-exact with no stemming or negation handling.
var defaultClosePhrases = []string{
	"issue resolved",
	"this is resolved",
	"problem solved",
	"you can close the ticket",
	"please close the ticket",
	"the issue is fixed",
	"yes resolved",
	"now it's resolved",
	"everything is fixed",
}

// Detector classifies a customer message as a close-confirmation or not.
// Rules are an ordered list of phrases evaluated with logical OR against
// the lower-cased, trimmed message.
type Detector struct {
	phrases []string
}

// NewDetector builds a detector with the given phrase rules. Phrases are
// matched case-insensitively as exact substrings.
func NewDetector(phrases []string) *Detector {
	lowered := make([]string, len(phrases))
	for i, p := range phrases {
		lowered[i] = strings.ToLower(p)
	}
	return &Detector{phrases: lowered}
}

// DefaultDetector returns a detector with the stock confirmation phrases.
func DefaultDetector() *Detector {
	return NewDetector(defaultClosePhrases)
}

// IsCloseConfirmation reports whether the message explicitly confirms that
// the customer's issue is resolved.
func (d *Detector) IsCloseConfirmation(text string) bool {
	msg := strings.ToLower(strings.TrimSpace(text))
	for _, phrase := range d.phrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
