// Package pangram wraps the Pangram AI-content-detection API.
package pangram

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
)

// ErrDetectionFailed is the single failure condition of the adapter: any
// network, auth, quota, or decoding problem wraps it, carrying the
// underlying message. Callers never retry.
var ErrDetectionFailed = errors.New("detection failed")

// ScanRequest is the outbound call contract.
type ScanRequest struct {
	Text                string `json:"text"`
	ReturnDashboardLink bool   `json:"return_dashboard_link,omitempty"`
}

// Window is one per-window sub-result. Its contents are opaque to this
// service beyond the classification fields below.
type Window struct {
	Text         string  `json:"text"`
	Prediction   string  `json:"prediction"`
	AILikelihood float64 `json:"ai_likelihood"`
}

// ScanResult is the normalized detection response. Every field has a
// defined zero default; absent response fields degrade to it rather than
// erroring. Fractions come from the external system as-is and are not
// clamped or required to sum to 1.
type ScanResult struct {
	Headline           string   `json:"headline"`
	Prediction         string   `json:"prediction"`
	PredictionShort    string   `json:"prediction_short"`
	FractionAI         float64  `json:"fraction_ai"`
	FractionAIAssisted float64  `json:"fraction_ai_assisted"`
	FractionHuman      float64  `json:"fraction_human"`
	AISegments         int      `json:"ai_segments"`
	AIAssistedSegments int      `json:"ai_assisted_segments"`
	HumanSegments      int      `json:"human_segments"`
	Windows            []Window `json:"windows"`
	DashboardLink      string   `json:"dashboard_link,omitempty"`
}

// Client is the interface for submitting text to the detection API.
type Client interface {
	DeepScan(ctx context.Context, req ScanRequest) (*ScanResult, error)
}

// HTTPClient implements Client against the Pangram HTTP API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient creates a new Pangram HTTP client.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

var _ Client = (*HTTPClient)(nil)

// DeepScan submits text for analysis and normalizes the response.
func (c *HTTPClient) DeepScan(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %v", ErrDetectionFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrDetectionFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDetectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrDetectionFailed, resp.StatusCode, errorMessage(resp.Body))
	}

	var result ScanResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrDetectionFailed, err)
	}

	if result.Windows == nil {
		result.Windows = []Window{}
	}
	return &result, nil
}

// errorMessage extracts a failure message from an error response body,
// falling back to the raw body text.
func errorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "unreadable response body"
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(raw))
}
