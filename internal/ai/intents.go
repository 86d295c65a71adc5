package ai

import "strings"

// GeneralQuery is the fallback intent when nothing topical matches.
const GeneralQuery = "general_query"

// intentRules map topical keywords to the fixed intent vocabulary. Tags
// only enrich ticket descriptions; nothing branches on them.
var intentRules = []struct {
	tag      string
	keywords []string
}{
	{"emi_due_date", []string{"due date", "due on", "when is my emi"}},
	{"emi_amount", []string{"emi amount", "installment amount", "how much is my emi"}},
	{"emi_status", []string{"emi status", "payment status", "last payment"}},
	{"fee_details", []string{"fee", "charge", "penalty"}},
	{"loan_statement", []string{"statement", "account summary"}},
}

// TagIntents returns the intent tags for a message, in rule order, or
// [general_query] when no keyword matches.
func TagIntents(message string) []string {
	msg := strings.ToLower(message)

	var tags []string
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(msg, kw) {
				tags = append(tags, rule.tag)
				break
			}
		}
	}
	if len(tags) == 0 {
		tags = []string{GeneralQuery}
	}
	return tags
}
