// Package api is a client for the osu! v1 web API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/levigross/grequests"
)

const DefaultBaseURL = "https://osu.ppy.sh/api"

var (
	ErrMissingAPIKey = errors.New("osu! API key is required")
	ErrNotFound      = errors.New("not found")
)

// APIError is a non-2xx response, or a 2xx response whose body is an
// {"error": ...} object.
type APIError struct {
	Endpoint string
	Status   int
	Message  string
	Body     string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("osu! API %s: status %d: %s", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("osu! API %s: status %d", e.Endpoint, e.Status)
}

type Client struct {
	key        string
	baseURL    string
	userAgent  string
	httpClient *http.Client
	slots      chan struct{}
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxConcurrent caps the number of requests in flight.
func WithMaxConcurrent(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.slots = make(chan struct{}, n)
		}
	}
}

func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		key:        apiKey,
		baseURL:    DefaultBaseURL,
		userAgent:  "osubridge",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		slots:      make(chan struct{}, 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) GetBeatmaps(ctx context.Context, q BeatmapsQuery) ([]Beatmap, error) {
	var out []Beatmap
	if err := c.get(ctx, "get_beatmaps", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser returns ErrNotFound when the API knows no such user.
func (c *Client) GetUser(ctx context.Context, q UserQuery) (*User, error) {
	var out []User
	if err := c.get(ctx, "get_user", q, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("user %q: %w", q.User, ErrNotFound)
	}
	return &out[0], nil
}

func (c *Client) GetScores(ctx context.Context, q ScoresQuery) ([]Score, error) {
	var out []Score
	if err := c.get(ctx, "get_scores", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetUserBest(ctx context.Context, q UserScoresQuery) ([]Score, error) {
	var out []Score
	if err := c.get(ctx, "get_user_best", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetUserRecent(ctx context.Context, q UserScoresQuery) ([]Score, error) {
	var out []Score
	if err := c.get(ctx, "get_user_recent", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetMatch(ctx context.Context, matchID int) (*Match, error) {
	var out Match
	q := struct {
		ID int `url:"mp"`
	}{matchID}
	if err := c.get(ctx, "get_match", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetReplay(ctx context.Context, q ReplayQuery) (*Replay, error) {
	var out Replay
	if err := c.get(ctx, "get_replay", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, endpoint string, q any, out any) error {
	values, err := query.Values(q)
	if err != nil {
		return fmt.Errorf("encoding %s query: %w", endpoint, err)
	}
	params := make(map[string]string, len(values)+1)
	for k := range values {
		params[k] = values.Get(k)
	}
	params["k"] = c.key

	select {
	case c.slots <- struct{}{}:
		defer func() { <-c.slots }()
	case <-ctx.Done():
		return ctx.Err()
	}

	resp, err := grequests.Get(c.baseURL+"/"+endpoint, grequests.FromRequestOptions(&grequests.RequestOptions{
		Params:     params,
		UserAgent:  c.userAgent,
		HTTPClient: c.httpClient,
		Context:    ctx,
		Headers:    map[string]string{"Accept": "application/json"},
	}))
	if err != nil {
		return fmt.Errorf("calling %s: %w", endpoint, err)
	}
	defer resp.Close()

	body := resp.Bytes()
	if !resp.Ok {
		return &APIError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Message:  errorMessage(body),
			Body:     string(body),
		}
	}
	// Bad keys and similar come back as an object even where a list is
	// expected.
	if msg := errorMessage(body); msg != "" {
		return &APIError{Endpoint: endpoint, Status: resp.StatusCode, Message: msg, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", endpoint, err)
	}
	return nil
}

func errorMessage(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return ""
	}
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	return e.Error
}
