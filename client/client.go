// Package client is a Go consumer of the todo backend REST surface.
// It bundles the wire mapper, a remote client with a typed error
// taxonomy, an observable task list store with optimistic mutations,
// a drag reorder controller, and the auth and profile gates.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// TaskPatch carries a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Remote is the surface the Store needs from a backend. *Client is the
// production implementation; tests substitute their own.
type Remote interface {
	List(ctx context.Context) ([]Task, error)
	Get(ctx context.Context, id string) (Task, error)
	Create(ctx context.Context, title string) (Task, error)
	Update(ctx context.Context, id string, patch TaskPatch) (Task, error)
	Delete(ctx context.Context, id string) error
}

// Client talks to the backend over HTTP. It does no caching; holding
// state is the Store's job.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient builds a client for a base URL that includes the API
// prefix, e.g. "http://localhost:8080/api".
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken swaps the bearer token used on subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) List(ctx context.Context) ([]Task, error) {
	var records []Record
	if err := c.do(ctx, http.MethodGet, "/todos", nil, &records); err != nil {
		return nil, err
	}

	tasks := make([]Task, 0, len(records))
	for _, record := range records {
		tasks = append(tasks, ToTask(record))
	}
	return tasks, nil
}

func (c *Client) Get(ctx context.Context, id string) (Task, error) {
	var record Record
	if err := c.do(ctx, http.MethodGet, "/todos/"+id, nil, &record); err != nil {
		return Task{}, err
	}
	return ToTask(record), nil
}

func (c *Client) Create(ctx context.Context, title string) (Task, error) {
	body := map[string]string{"title": title}

	var record Record
	if err := c.do(ctx, http.MethodPost, "/todos", body, &record); err != nil {
		return Task{}, err
	}
	return ToTask(record), nil
}

func (c *Client) Update(ctx context.Context, id string, patch TaskPatch) (Task, error) {
	var record Record
	if err := c.do(ctx, http.MethodPatch, "/todos/"+id, patch, &record); err != nil {
		return Task{}, err
	}
	return ToTask(record), nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/todos/"+id, nil, nil)
}

// CheckAuth reports whether the current token names a live session.
func (c *Client) CheckAuth(ctx context.Context) (bool, error) {
	err := c.do(ctx, http.MethodGet, "/check-auth", nil, nil)
	if err == ErrUnauthorized {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// HasProfile reports whether the principal completed their profile.
func (c *Client) HasProfile(ctx context.Context) (bool, error) {
	var result struct {
		HasProfile bool `json:"has_profile"`
	}
	if err := c.do(ctx, http.MethodGet, "/profile/check", nil, &result); err != nil {
		return false, err
	}
	return result.HasProfile, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return translateError(resp)
	}

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
