package glpi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a typed adapter over the GLPI REST API. It authenticates with a
// fixed application token and service-account user token; a fresh session is
// acquired per InitSession call and never cached inside the client.
type Client struct {
	baseURL   string
	appToken  string
	userToken string
	http      *http.Client
}

func NewClient(baseURL, appToken, userToken string) *Client {
	return &Client{
		baseURL:   baseURL,
		appToken:  appToken,
		userToken: userToken,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

// InitSession acquires a session token for the service account.
// Reference: GET /apirest.php/initSession
func (c *Client) InitSession(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/apirest.php/initSession", nil)
	if err != nil {
		return "", &APIError{Op: OpInitSession, Err: err}
	}
	req.Header.Set("Authorization", "user_token "+c.userToken)
	req.Header.Set("App-Token", c.appToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &APIError{Op: OpInitSession, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apiStatusError(OpInitSession, resp)
	}

	var result initSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &APIError{Op: OpInitSession, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if result.SessionToken == "" {
		return "", &APIError{Op: OpInitSession, Err: fmt.Errorf("no session_token in response")}
	}
	return result.SessionToken, nil
}

// KillSession ends a session. Best effort; the token expires server-side anyway.
// Reference: GET /apirest.php/killSession
func (c *Client) KillSession(ctx context.Context, sessionToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/apirest.php/killSession", nil)
	if err != nil {
		return err
	}
	c.setSessionHeaders(req, sessionToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("killSession request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("killSession status %d: %s", resp.StatusCode, body)
	}
	return nil
}

// CreateTicket opens a new ticket and returns its identifier. Success is a
// 201 with an id; anything else is a failure and no id is assumed.
// Reference: POST /apirest.php/Ticket
func (c *Client) CreateTicket(ctx context.Context, sessionToken, title, content string) (int, error) {
	input := CreateTicketInput{
		Name:           title,
		Content:        content,
		Status:         StatusNew,
		RequestTypesID: RequestTypeEmail,
	}

	resp, err := c.post(ctx, sessionToken, "/apirest.php/Ticket", glpiInput[CreateTicketInput]{Input: input})
	if err != nil {
		return 0, &APIError{Op: OpCreate, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return 0, apiStatusError(OpCreate, resp)
	}

	var created createdResource
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return 0, &APIError{Op: OpCreate, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if created.ID == 0 {
		return 0, &APIError{Op: OpCreate, Err: fmt.Errorf("no id in response")}
	}
	return created.ID, nil
}

// AddFollowup appends a free-text note to an existing ticket. The ticket's
// status is not changed.
// Reference: POST /apirest.php/Ticket/:id/ITILFollowup
func (c *Client) AddFollowup(ctx context.Context, sessionToken string, ticketID int, content string) error {
	input := FollowupInput{
		ItemType: "Ticket",
		ItemsID:  ticketID,
		Content:  content,
	}

	path := fmt.Sprintf("/apirest.php/Ticket/%d/ITILFollowup", ticketID)
	resp, err := c.post(ctx, sessionToken, path, glpiInput[FollowupInput]{Input: input})
	if err != nil {
		return &APIError{Op: OpFollowup, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return apiStatusError(OpFollowup, resp)
	}
	return nil
}

// CloseTicket sets the ticket status to closed.
// Reference: PUT /apirest.php/Ticket/:id
func (c *Client) CloseTicket(ctx context.Context, sessionToken string, ticketID int) error {
	payload, err := json.Marshal(glpiInput[UpdateTicketInput]{
		Input: UpdateTicketInput{ID: ticketID, Status: StatusClosed},
	})
	if err != nil {
		return &APIError{Op: OpClose, Err: err}
	}

	url := fmt.Sprintf("%s/apirest.php/Ticket/%d", c.baseURL, ticketID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return &APIError{Op: OpClose, Err: err}
	}
	c.setSessionHeaders(req, sessionToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Op: OpClose, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return apiStatusError(OpClose, resp)
	}
	return nil
}

func (c *Client) post(ctx context.Context, sessionToken, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.setSessionHeaders(req, sessionToken)

	return c.http.Do(req)
}

func (c *Client) setSessionHeaders(req *http.Request, sessionToken string) {
	req.Header.Set("Session-Token", sessionToken)
	req.Header.Set("App-Token", c.appToken)
	req.Header.Set("Content-Type", "application/json")
}

func apiStatusError(op Op, resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &APIError{Op: op, Status: resp.StatusCode, Body: string(body)}
}
