package ticket

import (
	"net/mail"
	"strings"
)

// Identity is a normalized customer email address. It is the sole key for
// ticket association: two raw addresses that normalize equal are the same
// customer.
type Identity string

// NormalizeIdentity trims the raw address, strips any display-name and
// angle-bracket form ("Jane Doe <jane@bank.com>" -> "jane@bank.com") and
// lower-cases the result.
func NormalizeIdentity(raw string) Identity {
	s := strings.TrimSpace(raw)
	if addr, err := mail.ParseAddress(s); err == nil {
		s = addr.Address
	} else if i := strings.LastIndexByte(s, '<'); i >= 0 {
		if j := strings.IndexByte(s[i:], '>'); j > 0 {
			s = s[i+1 : i+j]
		}
	}
	return Identity(strings.ToLower(strings.TrimSpace(s)))
}
