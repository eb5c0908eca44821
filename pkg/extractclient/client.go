/**
 * @description
 * This package provides a client for the hosted text-extraction model. It
 * sends truncated page content with an instruction prompt and parses the
 * model's JSON reply into candidate ledger entries.
 *
 * The model wraps its JSON in markdown fences more often than not, so the
 * client strips them before decoding. A reply that still fails to decode is
 * reported as ErrMalformedResponse; callers surface that as an upstream
 * parse failure rather than an internal error.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, net/http, time: Standard Go libraries.
 */
package extractclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cashtide/wallet-service/internal/domain"
)

// ErrMalformedResponse means the model replied, but not with decodable
// candidate entries.
var ErrMalformedResponse = errors.New("extraction model returned a malformed response")

// Client is a client for the extraction model API.
type Client struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

// NewClient creates a new extraction model client.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

const extractionPrompt = `You are a financial data extraction assistant. Analyze the following web page content and extract any financial entries (purchases, subscriptions, free trials, incomes).
Respond with JSON only, in the form {"entries": [{"kind": "...", "name": "...", "amount": ..., "currency": "...", "notes": "...", "date": "YYYY-MM-DD"}]}.
kind must be one of: income, expense, transfer, subscription, free_trial. Omit fields you cannot determine. Respond with {"entries": []} if the page contains no financial information.

Page URL: %s

Page content:
%s`

type modelPart struct {
	Text string `json:"text"`
}

type modelContent struct {
	Parts []modelPart `json:"parts"`
}

type generateRequest struct {
	Contents []modelContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content modelContent `json:"content"`
	} `json:"candidates"`
}

// Extract sends the page content to the model and decodes the candidate
// entries from its reply.
func (c *Client) Extract(ctx context.Context, content, pageURL string) (*domain.ExtractionPayload, error) {
	reqPayload := generateRequest{
		Contents: []modelContent{
			{Parts: []modelPart{{Text: fmt.Sprintf(extractionPrompt, pageURL, content)}}},
		},
	}

	body, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, c.Model, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction model request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction model returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no candidates", ErrMalformedResponse)
	}

	return ParsePayload(genResp.Candidates[0].Content.Parts[0].Text)
}

// ParsePayload decodes a model reply into an ExtractionPayload, tolerating
// markdown code fences around the JSON.
func ParsePayload(text string) (*domain.ExtractionPayload, error) {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	var payload domain.ExtractionPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Entries == nil {
		payload.Entries = []domain.ExtractionEntry{}
	}
	return &payload, nil
}
