package scanapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/syahmiabbas/scangate/pkg/engine"
)

// Client talks to the scan backend. One instance serves both orchestrator
// variants. Every call takes the caller's context, which carries the overall
// run deadline; the client sets no timeout of its own so an event stream can
// stay open for the whole budget.
type Client struct {
	BaseURL string

	http *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// Initiate registers the repository for scanning and returns the group id
func (c *Client) Initiate(ctx context.Context, repoURL string) (string, error) {
	payload, err := json.Marshal(initiateRequest{URL: repoURL})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInitiation, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/initiate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInitiation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: backend returned %s: %s", ErrInitiation, resp.Status, bodySnippet(resp.Body))
	}

	var out initiateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding initiate response: %v", ErrMalformedResponse, err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: backend error: %s", ErrInitiation, out.Error)
	}
	if out.GroupID == "" {
		return "", fmt.Errorf("%w: initiate response carries no groupId", ErrInitiation)
	}
	return out.GroupID, nil
}

// GroupResults fetches the current polling snapshot for a scan group
func (c *Client) GroupResults(ctx context.Context, groupID string) (*groupResults, error) {
	url := fmt.Sprintf("%s/parser/groups/%s/results", c.BaseURL, groupID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: results endpoint returned %s: %s", ErrConnectivity, resp.Status, bodySnippet(resp.Body))
	}

	var out groupResults
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decoding group results: %v", ErrMalformedResponse, err)
	}
	if out.Summary == nil {
		return nil, fmt.Errorf("%w: group results carry no summary", ErrMalformedResponse)
	}
	return &out, nil
}

// JobFindings fetches stored findings for a finished streaming job
func (c *Client) JobFindings(ctx context.Context, jobID string) ([]engine.Finding, error) {
	url := fmt.Sprintf("%s/results/%s", c.BaseURL, jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: job results endpoint returned %s: %s", ErrConnectivity, resp.Status, bodySnippet(resp.Body))
	}

	var out jobResults
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decoding job results: %v", ErrMalformedResponse, err)
	}
	findings := make([]engine.Finding, 0, len(out.Findings))
	for _, w := range out.Findings {
		findings = append(findings, w.toFinding())
	}
	return findings, nil
}

// OpenStream starts a streaming scan and hands back the raw event body.
// The caller owns the body and must close it.
func (c *Client) OpenStream(ctx context.Context, repoURL string) (io.ReadCloser, error) {
	payload, err := json.Marshal(chatRequest{Content: repoURL})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInitiation, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat?stream=true", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInitiation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, fmt.Errorf("%w: backend returned %s: %s", ErrInitiation, resp.Status, bodySnippet(resp.Body))
	}
	return resp.Body, nil
}

// classifyTransport separates budget expiry from plain connectivity loss
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrConnectivity, err)
}

func bodySnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(b))
}
