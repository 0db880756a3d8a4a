// Package client is the HTTP client for the todo API, used by the terminal
// frontend and the view model.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"todoapp/internal/domain"
)

// DefaultTimeout bounds every request; a timeout surfaces as an ordinary
// error and is treated like any other storage failure.
const DefaultTimeout = 10 * time.Second

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Status == http.StatusNotFound
	}
	return false
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

func (c *Client) List(ctx context.Context) ([]domain.Todo, error) {
	var todos []domain.Todo
	if err := c.do(ctx, http.MethodGet, "/api/todos", nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

func (c *Client) Create(ctx context.Context, text, detail string) (domain.Todo, error) {
	body := map[string]string{"text": text, "detail": detail}
	var todo domain.Todo
	err := c.do(ctx, http.MethodPost, "/api/todos", body, &todo)
	return todo, err
}

func (c *Client) Get(ctx context.Context, id int64) (domain.Todo, error) {
	var todo domain.Todo
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/todos/%d", id), nil, &todo)
	return todo, err
}

func (c *Client) Update(ctx context.Context, id int64, changes domain.Changes) (domain.Todo, error) {
	var todo domain.Todo
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/todos/%d", id), changes, &todo)
	return todo, err
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/todos/%d", id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
