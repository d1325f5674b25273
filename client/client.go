// Package client is a typed HTTP client for the catalog API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-catalog-cache/item"
)

// Catalog is implemented by *Client and can be used for testing.
type Catalog interface {
	FetchItems(ctx context.Context, q item.Query) (item.Page, error)
	FetchItem(ctx context.Context, id int64) (item.Item, error)
	CreateItem(ctx context.Context, in NewItem) (item.Item, error)
	FetchStats(ctx context.Context) (item.Stats, error)
}

var _ Catalog = (*Client)(nil)

const (
	defaultBaseURL   = "127.0.0.1:3001"
	defaultUserAgent = "catalog-client/0.1"
	// DefaultTimeout bounds every request.
	DefaultTimeout = 10 * time.Second
)

// NewItem is the payload of CreateItem.
type NewItem struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// ItemsResponse is the body of GET /items.
type ItemsResponse struct {
	Items   []item.Item `json:"items"`
	Total   int         `json:"total"`
	Showing int         `json:"showing"`
	Offset  int         `json:"offset"`
}

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("api returned status %d", e.Status)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+": "+e.Fields[name])
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	return msg
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsInvalid reports whether err is an APIError with status 400.
func IsInvalid(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest
}

// Client talks to the catalog HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New builds a Client for baseURL, which may be a bare host:port.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: DefaultTimeout},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchItems retrieves one page of items matching q.Search.
func (c *Client) FetchItems(ctx context.Context, q item.Query) (item.Page, error) {
	values := url.Values{}
	if q.Search != "" {
		values.Set("q", q.Search)
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}
	rel := &url.URL{Path: "items", RawQuery: values.Encode()}

	var payload ItemsResponse
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return item.Page{}, err
	}
	if payload.Items == nil {
		payload.Items = []item.Item{}
	}
	return item.Page{Items: payload.Items, Total: payload.Total, Offset: payload.Offset}, nil
}

// FetchItem retrieves a single item. A missing item yields an error for which
// IsNotFound is true.
func (c *Client) FetchItem(ctx context.Context, id int64) (item.Item, error) {
	var payload item.Item
	if err := c.do(ctx, http.MethodGet, "items/"+strconv.FormatInt(id, 10), nil, &payload); err != nil {
		return item.Item{}, err
	}
	return payload, nil
}

// CreateItem posts a new item and returns it with its assigned id.
func (c *Client) CreateItem(ctx context.Context, in NewItem) (item.Item, error) {
	var payload item.Item
	if err := c.do(ctx, http.MethodPost, "items", in, &payload); err != nil {
		return item.Item{}, err
	}
	return payload, nil
}

// FetchStats retrieves the dataset aggregate.
func (c *Client) FetchStats(ctx context.Context) (item.Stats, error) {
	var payload item.Stats
	if err := c.do(ctx, http.MethodGet, "stats", nil, &payload); err != nil {
		return item.Stats{}, err
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var payload struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &payload); err == nil {
		apiErr.Message = payload.Error
		apiErr.Fields = payload.Fields
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}

// parseBaseURL keeps any path prefix so the API can be mounted below "/".
func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
