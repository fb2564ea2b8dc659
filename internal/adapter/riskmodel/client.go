// Package riskmodel implements the learned-risk capability against a
// remote model-serving endpoint.
package riskmodel

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

// Client implements domain.RiskModel by POSTing the feature vector to a
// remote inference endpoint. Unreachability or a malformed response is an
// error; the fusion stage converts it into a null score.
type Client struct {
	httpClient *http.Client
	url        string
	logger     *slog.Logger
}

// NewClient creates a remote risk model client.
func NewClient(modelURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		url:    modelURL,
		logger: logger,
	}
}

// Score submits the feature vector and returns the predicted delay
// probability.
func (c *Client) Score(ctx context.Context, features domain.FeatureVector) (float64, error) {
	payload, err := json.Marshal(scoreRequest{Inputs: features})
	if err != nil {
		return 0, fmt.Errorf("serialize features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("risk model request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Warn("risk model API error", "status", resp.StatusCode)
		return 0, fmt.Errorf("risk model API error: status %d: %s", resp.StatusCode, body)
	}

	var sr scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if sr.DelayProb == nil {
		return 0, fmt.Errorf("risk model response missing delay_prob")
	}
	p := *sr.DelayProb
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("risk model probability out of range: %g", p)
	}
	return p, nil
}

type scoreRequest struct {
	Inputs domain.FeatureVector `json:"inputs"`
}

type scoreResponse struct {
	DelayProb *float64 `json:"delay_prob"`
	RiskLevel string   `json:"risk_level"`
}
