// Package llm implements the generative explanation capability against an
// OpenAI-compatible chat completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/cargosense-risk/internal/domain"
)

const systemPrompt = `You are a logistics operations assistant. Given a scored freight shipment as JSON, respond with exactly one JSON object with two keys: "summary" (one sentence naming the shipment id, the delay probability as a percentage, and the main risk drivers) and "actions" (an ordered list of recommended actions). No other keys, no prose outside the JSON.`

// Client implements domain.ExplanationModel. Any transport error or a
// response that is not the required two-key JSON object is an error; the
// Explainer converts it into a fallback transition.
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
	model      string
	logger     *slog.Logger
}

// NewClient creates a generative explanation client.
func NewClient(endpointURL, apiKey, model string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		url:    endpointURL,
		apiKey: apiKey,
		model:  model,
		logger: logger,
	}
}

// Explain submits the shipment and parses the structured two-key response.
func (c *Client) Explain(ctx context.Context, shipment domain.Shipment) (domain.Explanation, error) {
	shipmentJSON, err := json.Marshal(shipment)
	if err != nil {
		return domain.Explanation{}, fmt.Errorf("serialize shipment: %w", err)
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(shipmentJSON)},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return domain.Explanation{}, fmt.Errorf("serialize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return domain.Explanation{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Explanation{}, fmt.Errorf("explanation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Warn("explanation API error", "status", resp.StatusCode, "model", c.model)
		return domain.Explanation{}, fmt.Errorf("explanation API error: status %d: %s", resp.StatusCode, body)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return domain.Explanation{}, fmt.Errorf("decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return domain.Explanation{}, fmt.Errorf("explanation response has no choices")
	}

	var exp domain.Explanation
	if err := json.Unmarshal([]byte(cr.Choices[0].Message.Content), &exp); err != nil {
		return domain.Explanation{}, fmt.Errorf("explanation content is not valid JSON: %w", err)
	}
	if exp.Summary == "" || len(exp.Actions) == 0 {
		return domain.Explanation{}, fmt.Errorf("explanation content missing summary or actions")
	}
	return exp, nil
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
