package glpi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "app-token", "user-token")
}

func TestInitSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/apirest.php/initSession" {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "user_token user-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("App-Token"); got != "app-token" {
			t.Errorf("App-Token = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]string{"session_token": "abc123"})
	})

	token, err := c.InitSession(context.Background())
	if err != nil {
		t.Fatalf("InitSession: %v", err)
	}
	if token != "abc123" {
		t.Errorf("token = %q, want abc123", token)
	}
}

func TestInitSessionFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	})

	_, err := c.InitSession(context.Background())
	if err == nil {
		t.Fatal("want error on 401")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Op != OpInitSession || apiErr.Status != http.StatusUnauthorized {
		t.Errorf("err = %v, want initSession APIError with status 401", err)
	}
}

func TestInitSessionEmptyToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	})

	if _, err := c.InitSession(context.Background()); !IsOp(err, OpInitSession) {
		t.Errorf("err = %v, want initSession failure without a usable token", err)
	}
}

func TestCreateTicket(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/apirest.php/Ticket" {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Session-Token"); got != "sess" {
			t.Errorf("Session-Token = %q", got)
		}

		var body glpiInput[CreateTicketInput]
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body.Input.Name != "Loan Support Request - jane@bank.com" {
			t.Errorf("name = %q", body.Input.Name)
		}
		if body.Input.Status != StatusNew || body.Input.RequestTypesID != RequestTypeEmail {
			t.Errorf("status/requesttype = %d/%d", body.Input.Status, body.Input.RequestTypesID)
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]int{"id": 77})
	})

	id, err := c.CreateTicket(context.Background(), "sess", "Loan Support Request - jane@bank.com", "details")
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if id != 77 {
		t.Errorf("id = %d, want 77", id)
	}
}

func TestCreateTicketRequires201(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// 200 with an id is still not a created-resource status.
		json.NewEncoder(w).Encode(map[string]int{"id": 77})
	})

	if _, err := c.CreateTicket(context.Background(), "sess", "t", "d"); !IsOp(err, OpCreate) {
		t.Errorf("err = %v, want createTicket failure on non-201", err)
	}
}

func TestAddFollowup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/apirest.php/Ticket/77/ITILFollowup" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body glpiInput[FollowupInput]
		json.NewDecoder(r.Body).Decode(&body)
		if body.Input.ItemType != "Ticket" || body.Input.ItemsID != 77 {
			t.Errorf("input = %+v", body.Input)
		}
		w.WriteHeader(http.StatusCreated)
	})

	if err := c.AddFollowup(context.Background(), "sess", 77, "note"); err != nil {
		t.Fatalf("AddFollowup: %v", err)
	}
}

func TestCloseTicket(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/apirest.php/Ticket/77" {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		var body glpiInput[UpdateTicketInput]
		json.NewDecoder(r.Body).Decode(&body)
		if body.Input.ID != 77 || body.Input.Status != StatusClosed {
			t.Errorf("input = %+v", body.Input)
		}
	})

	if err := c.CloseTicket(context.Background(), "sess", 77); err != nil {
		t.Fatalf("CloseTicket: %v", err)
	}
}

func TestCloseTicketFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	})

	if err := c.CloseTicket(context.Background(), "sess", 77); !IsOp(err, OpClose) {
		t.Errorf("err = %v, want closeTicket failure", err)
	}
}
