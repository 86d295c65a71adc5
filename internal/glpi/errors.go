package glpi

import (
	"errors"
	"fmt"
)

// Op names the helpdesk operation that failed, so callers can distinguish
// a session failure (skip everything) from, say, a follow-up failure
// (keep the ticket mapping).
type Op string

const (
	OpInitSession Op = "initSession"
	OpCreate      Op = "createTicket"
	OpFollowup    Op = "addFollowup"
	OpClose       Op = "closeTicket"
)

// APIError reports a failed helpdesk call. Status is zero when the request
// never reached the remote (network error, timeout).
type APIError struct {
	Op     Op
	Status int
	Body   string
	Err    error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("glpi %s: status %d: %s", e.Op, e.Status, e.Body)
	}
	return fmt.Sprintf("glpi %s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// IsOp reports whether err is an APIError for the given operation.
func IsOp(err error, op Op) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Op == op
}
