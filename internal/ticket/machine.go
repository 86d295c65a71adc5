package ticket

// StateKind tags the per-customer ticket state.
type StateKind int

const (
	// NoTicket means no ticket is believed to exist for the customer.
	NoTicket StateKind = iota
	// Open means a ticket with State.TicketID is believed to be open.
	Open
)

// State is the per-customer state of the ticket lifecycle machine.
type State struct {
	Kind     StateKind
	TicketID int
}

// Action is what the orchestrator must do for one inbound message.
type Action int

const (
	// ActionAcknowledge replies with a generic resolution acknowledgement.
	// No helpdesk call is made.
	ActionAcknowledge Action = iota
	// ActionClose closes the open ticket and clears the association.
	ActionClose
	// ActionFollowup appends the customer message and the AI reply to the
	// open ticket.
	ActionFollowup
	// ActionCreate opens a new ticket and records the association.
	ActionCreate
)

// Plan is the pure transition function: given the current state and the
// close-confirmation decision it returns the action to execute and the
// state that results if the action succeeds. For ActionCreate the next
// state's TicketID is zero until the helpdesk assigns one.
func Plan(s State, closeConfirmed bool) (Action, State) {
	switch {
	case closeConfirmed && s.Kind == Open:
		return ActionClose, State{Kind: NoTicket}
	case closeConfirmed:
		return ActionAcknowledge, State{Kind: NoTicket}
	case s.Kind == Open:
		return ActionFollowup, s
	default:
		return ActionCreate, State{Kind: Open}
	}
}
