// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/promptcheck/promptcheck/internal/logging"
)

// Client issues HTTP requests to the test-suite service.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient constructs a Client for the given server base URL. The timeout
// bounds every request except the run stream, which is only bounded by the
// server's response lifecycle or explicit cancellation.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Transport: &http.Transport{ForceAttemptHTTP2: false},
			Timeout:   timeout,
		},
	}
}

// streamClient is the client used for run requests. No Timeout: a streaming
// run may legitimately outlive any fixed client-side deadline.
func (c *Client) streamClient() *http.Client {
	return &http.Client{Transport: c.client.Transport}
}

// StartRun issues the execution request for one suite. The caller owns the
// returned response and must close its body on every path.
func (c *Client) StartRun(ctx context.Context, suiteID string, req RunRequest, stream bool) (*http.Response, error) {
	if strings.TrimSpace(suiteID) == "" {
		return nil, fmt.Errorf("suite id is required")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	streamFlag := "0"
	if stream {
		streamFlag = "1"
	}
	endpoint := fmt.Sprintf("%s/api/test-suites/%s/run?stream=%s", c.baseURL, suiteID, streamFlag)
	logging.LogRequest("CLIENT->API", endpoint, overrideLabel(req.ModelOverride), body)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	return c.streamClient().Do(httpReq)
}

// comparisonSessionRequest is the body for the comparison-session store.
// RequestID is client-generated so retried submissions stay idempotent.
type comparisonSessionRequest struct {
	RequestID string           `json:"requestId"`
	Models    []ModelSelection `json:"models"`
	Runs      []TestRun        `json:"runs"`
}

// CreateComparisonSession persists the model set and runs produced by a
// multi-model execution.
func (c *Client) CreateComparisonSession(ctx context.Context, models []ModelSelection, runs []TestRun) error {
	payload := comparisonSessionRequest{
		RequestID: uuid.NewString(),
		Models:    models,
		Runs:      runs,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := c.baseURL + "/api/comparison-sessions"
	logging.LogRequest("CLIENT->API", endpoint, "", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("comparison-sessions returned %s: %s", resp.Status, ReadError(raw, resp.Status))
	}
	return nil
}

// SaveComparisonModels persists the user's last-used model set on the suite.
func (c *Client) SaveComparisonModels(ctx context.Context, suiteID string, models []ModelSelection) error {
	if strings.TrimSpace(suiteID) == "" {
		return fmt.Errorf("suite id is required")
	}

	body, err := json.Marshal(map[string]any{"comparisonModels": models})
	if err != nil {
		return err
	}

	endpoint := c.baseURL + "/api/test-suites/" + suiteID
	logging.LogRequest("CLIENT->API", endpoint, "", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("test-suites patch returned %s: %s", resp.Status, ReadError(raw, resp.Status))
	}
	return nil
}

// ListSuites returns the suites visible to the client.
func (c *Client) ListSuites(ctx context.Context) ([]TestSuite, error) {
	var suites []TestSuite
	if err := c.getJSON(ctx, c.baseURL+"/api/test-suites", &suites); err != nil {
		return nil, err
	}
	return suites, nil
}

// GetSuite returns a single suite record.
func (c *Client) GetSuite(ctx context.Context, suiteID string) (*TestSuite, error) {
	if strings.TrimSpace(suiteID) == "" {
		return nil, fmt.Errorf("suite id is required")
	}
	var suite TestSuite
	if err := c.getJSON(ctx, c.baseURL+"/api/test-suites/"+suiteID, &suite); err != nil {
		return nil, err
	}
	return &suite, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	logging.LogRequest("API->CLIENT", endpoint, "", raw)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %s: %s", endpoint, resp.Status, ReadError(raw, resp.Status))
	}
	return json.Unmarshal(raw, out)
}

// ReadError extracts the server's error message from a response body,
// falling back to the raw text and finally the HTTP status.
func ReadError(body []byte, status string) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		return payload.Error
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return status
}

func overrideLabel(override *ModelOverride) string {
	if override == nil {
		return ""
	}
	return string(override.Provider) + "/" + override.Model
}
