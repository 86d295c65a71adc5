package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/chandrakumar-sys/bank-support-bot/internal/config"
	"github.com/chandrakumar-sys/bank-support-bot/internal/dataset"
)

const fallbackReply = "We're unable to process your request right now."

// Replier generates the customer-facing answer for one message using an
// OpenAI-compatible chat completions endpoint. It never fails the pipeline:
// lookup misses and LLM errors all degrade to a canned reply.
type Replier struct {
	apiKey   string
	model    string
	endpoint string
	tables   *dataset.Tables
	http     *http.Client
	log      *zap.Logger
}

func NewReplier(cfg config.LLMConfig, tables *dataset.Tables, log *zap.Logger) *Replier {
	return &Replier{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		endpoint: cfg.Endpoint,
		tables:   tables,
		http:     &http.Client{Timeout: 60 * time.Second},
		log:      log,
	}
}

// GenerateReply finds the customer and their loan, then asks the model for
// a short factual reply grounded in that data.
func (r *Replier) GenerateReply(ctx context.Context, email, message string) string {
	customer, ok := r.tables.CustomerByEmail(email)
	if !ok {
		return "Your email is not registered in our system.\n\nRegards,\nBank Support Team"
	}

	loan, ok := r.tables.LoanForCustomer(customer.CustomerID)
	if !ok {
		return "We could not find any loan details for your account.\n\nRegards,\nBank Support Team"
	}

	text, err := r.chatCompletion(ctx, BuildPrompt(customer, loan, message))
	if err != nil {
		r.log.Error("reply generation failed", zap.String("customer", email), zap.Error(err))
		return fallbackReply
	}
	return text
}

// --- chat completions API types ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

func (r *Replier) chatCompletion(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       r.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0,
		MaxTokens:   500,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm: status %d: %s", resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("llm: unmarshal: %w", err)
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("llm: empty completion")
	}
	return chatResp.Choices[0].Message.Content, nil
}
