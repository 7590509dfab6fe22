// Package apiclient is a typed client for the catalog API, used by the
// bookctl command.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bookcatalog/internal/catalog"

	"golang.org/x/time/rate"
)

// APIError carries a non-2xx response: its status code and decoded body.
type APIError struct {
	StatusCode int
	Body       map[string]any
}

func (e *APIError) Error() string {
	if msg, ok := e.Body["error"].(string); ok {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// ListResponse matches GET /books.
type ListResponse struct {
	Count int            `json:"count"`
	Books []catalog.Book `json:"books"`
}

// BookResponse matches the create/update success bodies.
type BookResponse struct {
	Message string       `json:"message"`
	Book    catalog.Book `json:"book"`
}

// DeleteResponse matches the delete success body.
type DeleteResponse struct {
	Message     string       `json:"message"`
	DeletedBook catalog.Book `json:"deleted_book"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
}

func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		maxRetries: 2,
	}
}

func (c *Client) List(ctx context.Context, author, search string) (*ListResponse, error) {
	q := url.Values{}
	if author != "" {
		q.Set("author", author)
	}
	if search != "" {
		q.Set("search", search)
	}
	path := "/books"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var res ListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Get(ctx context.Context, id int) (*catalog.Book, error) {
	var res catalog.Book
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/books/%d", id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Create(ctx context.Context, title, author string, year *int) (*BookResponse, error) {
	body := map[string]any{"title": title, "author": author}
	if year != nil {
		body["year"] = *year
	}

	var res BookResponse
	if err := c.do(ctx, http.MethodPost, "/books", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Update(ctx context.Context, id int, fields map[string]any) (*BookResponse, error) {
	var res BookResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/books/%d", id), fields, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Delete(ctx context.Context, id int) (*DeleteResponse, error) {
	var res DeleteResponse
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/books/%d", id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Status(ctx context.Context) (*catalog.Status, error) {
	var res catalog.Status
	if err := c.do(ctx, http.MethodGet, "/status", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// do sends one API request, retrying transient failures with backoff.
// Client and server errors below 500 are returned as *APIError without
// retrying, except 429.
func (c *Client) do(ctx context.Context, method, path string, body, target any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		var reqBody *bytes.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		} else {
			reqBody = bytes.NewReader(nil)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := &APIError{StatusCode: resp.StatusCode}
			_ = json.NewDecoder(resp.Body).Decode(&apiErr.Body)
			resp.Body.Close()
			return apiErr
		}

		err = json.NewDecoder(resp.Body).Decode(target)
		resp.Body.Close()
		return err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}
