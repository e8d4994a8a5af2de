// Package contentstore publishes rendered formulas to the study content
// store, an HTTP key/value service that the course pages read from.
package contentstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/studyhub/internal/sheet"
)

// Root is the key prefix all formulas are stored under.
const Root = "formulas/topics"

// Record is the value stored for one formula.
type Record struct {
	ID        string           `json:"formula_id"`
	TopicID   string           `json:"topic_id"`
	Text      string           `json:"formula_text"`
	Label     string           `json:"formula_label,omitempty"`
	Variables []sheet.Variable `json:"variables,omitempty"`
	HTML      string           `json:"html"`
	Plain     string           `json:"plain"`
	Size      string           `json:"size"`
	JobID     string           `json:"job_id,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	msg := e.Message
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, msg)
}

// IsRetryable reports whether err wraps a *RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Client talks to the content store HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Key returns the store path of a formula.
func Key(topicID, formulaID string) string {
	return TopicKey(topicID) + "/" + url.PathEscape(formulaID)
}

// TopicKey returns the store path of a topic.
func TopicKey(topicID string) string {
	return Root + "/" + url.PathEscape(topicID)
}

type putRequest struct {
	Value  Record `json:"value"`
	Source string `json:"source,omitempty"`
}

type node struct {
	Key   string          `json:"key_path"`
	Value json.RawMessage `json:"value"`
}

// PutFormula stores or replaces a formula record.
func (c *Client) PutFormula(ctx context.Context, rec Record) error {
	if rec.TopicID == "" || rec.ID == "" {
		return fmt.Errorf("put formula: topic and id are required")
	}
	body, err := json.Marshal(putRequest{Value: rec, Source: "studyhub"})
	if err != nil {
		return fmt.Errorf("marshal formula: %w", err)
	}
	key := Key(rec.TopicID, rec.ID)
	resp, err := c.do(ctx, http.MethodPut, "/kv/"+key, body)
	if err != nil {
		return fmt.Errorf("put formula %s: %w", key, err)
	}
	defer resp.Body.Close()
	if err := expect(resp, http.StatusOK, http.StatusCreated); err != nil {
		return fmt.Errorf("put formula %s: %w", key, err)
	}
	return nil
}

// GetFormula fetches one formula. It returns nil, nil when it does not exist.
func (c *Client) GetFormula(ctx context.Context, topicID, formulaID string) (*Record, error) {
	key := Key(topicID, formulaID)
	resp, err := c.do(ctx, http.MethodGet, "/kv/"+key, nil)
	if err != nil {
		return nil, fmt.Errorf("get formula %s: %w", key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err := expect(resp, http.StatusOK); err != nil {
		return nil, fmt.Errorf("get formula %s: %w", key, err)
	}

	var n node
	if err := json.NewDecoder(resp.Body).Decode(&n); err != nil {
		return nil, fmt.Errorf("decode formula: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(n.Value, &rec); err != nil {
		return nil, fmt.Errorf("decode formula value: %w", err)
	}
	return &rec, nil
}

// ListTopic returns the formulas stored under a topic. A limit of zero means
// the store default.
func (c *Client) ListTopic(ctx context.Context, topicID string, limit int) ([]Record, error) {
	path := "/kv/" + TopicKey(topicID) + "/*"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("list topic %s: %w", topicID, err)
	}
	defer resp.Body.Close()
	if err := expect(resp, http.StatusOK); err != nil {
		return nil, fmt.Errorf("list topic %s: %w", topicID, err)
	}

	var result struct {
		Nodes []node `json:"nodes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode topic: %w", err)
	}
	recs := make([]Record, 0, len(result.Nodes))
	for _, n := range result.Nodes {
		var rec Record
		if err := json.Unmarshal(n.Value, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", n.Key, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// DeleteFormula removes one formula. Deleting a missing formula succeeds.
func (c *Client) DeleteFormula(ctx context.Context, topicID, formulaID string) error {
	return c.delete(ctx, Key(topicID, formulaID), false)
}

// DeleteTopic removes a topic and every formula under it.
func (c *Client) DeleteTopic(ctx context.Context, topicID string) error {
	return c.delete(ctx, TopicKey(topicID), true)
}

func (c *Client) delete(ctx context.Context, key string, recursive bool) error {
	path := "/kv/" + key
	if recursive {
		path += "?children=true"
	}
	resp, err := c.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	defer resp.Body.Close()
	if err := expect(resp, http.StatusOK, http.StatusNoContent, http.StatusNotFound); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return c.httpClient.Do(req)
}

// expect checks the status code. 429 and 5xx become *RetryableError.
func expect(resp *http.Response, codes ...int) error {
	for _, code := range codes {
		if resp.StatusCode == code {
			return nil
		}
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &RetryableError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
