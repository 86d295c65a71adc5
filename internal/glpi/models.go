package glpi

// GLPI ticket status and request-type constants used by the bot.
// Reference: GLPI REST API — apirest.php
const (
	StatusNew    = 1
	StatusClosed = 6

	RequestTypeEmail = 2
)

type initSessionResponse struct {
	SessionToken string `json:"session_token"`
}

type createdResource struct {
	ID int `json:"id"`
}

// CreateTicketInput is the payload for POST /apirest.php/Ticket.
type CreateTicketInput struct {
	Name           string `json:"name"`
	Content        string `json:"content"`
	Status         int    `json:"status"`
	RequestTypesID int    `json:"requesttypes_id"`
}

// FollowupInput is the payload for POST /apirest.php/Ticket/:id/ITILFollowup.
type FollowupInput struct {
	ItemType string `json:"itemtype"`
	ItemsID  int    `json:"items_id"`
	Content  string `json:"content"`
}

// UpdateTicketInput is the payload for PUT /apirest.php/Ticket/:id.
type UpdateTicketInput struct {
	ID     int `json:"id"`
	Status int `json:"status"`
}

// glpiInput wraps a value in the {"input": ...} envelope required by GLPI POST/PUT.
type glpiInput[T any] struct {
	Input T `json:"input"`
}
