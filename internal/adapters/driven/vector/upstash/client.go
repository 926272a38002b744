package upstash

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/twinsync/internal/core/domain"
	"github.com/custodia-labs/twinsync/internal/core/ports/driven"
	"github.com/custodia-labs/twinsync/internal/logger"
)

// Ensure Client implements the interfaces.
var (
	_ driven.VectorStore    = (*Client)(nil)
	_ driven.VectorLister   = (*Client)(nil)
	_ driven.VectorResetter = (*Client)(nil)
)

// Default configuration values.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	rangePageSize     = 1000
)

// Config holds configuration for the Upstash Vector client.
type Config struct {
	// URL is the index REST endpoint (required).
	URL string

	// Token is the REST bearer token (required).
	Token string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// MaxRetries bounds retries after 429 responses (default: 3).
	MaxRetries int

	// RateLimit configures client-side pacing. Zero uses DefaultRateLimit.
	RateLimit RateLimitConfig

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to an Upstash Vector index whose embedding model is
// configured server side, so vectors are sent and queried as raw text.
type Client struct {
	client     *http.Client
	baseURL    string
	token      string
	maxRetries int
	limiter    *RateLimiter
}

// envelope is the common response wrapper.
type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error,omitempty"`
	Status int             `json:"status,omitempty"`
}

type upsertItem struct {
	ID       string         `json:"id"`
	Data     string         `json:"data"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type queryRequest struct {
	Data            string `json:"data"`
	TopK            int    `json:"topK"`
	IncludeMetadata bool   `json:"includeMetadata"`
	Filter          string `json:"filter,omitempty"`
}

type queryHit struct {
	ID       string         `json:"id"`
	Score    *float64       `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type infoResult struct {
	VectorCount        int    `json:"vectorCount"`
	PendingVectorCount int    `json:"pendingVectorCount"`
	Dimension          int    `json:"dimension"`
	SimilarityFunction string `json:"similarityFunction"`
}

type rangeRequest struct {
	Cursor string `json:"cursor"`
	Limit  int    `json:"limit"`
}

type rangeResult struct {
	NextCursor string `json:"nextCursor"`
	Vectors    []struct {
		ID string `json:"id"`
	} `json:"vectors"`
}

// NewClient creates a new Upstash Vector client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("upstash: URL is required")
	}
	if cfg.Token == "" {
		return nil, errors.New("upstash: token is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RateLimit == (RateLimitConfig{}) {
		cfg.RateLimit = DefaultRateLimit
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		client:     client,
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		token:      cfg.Token,
		maxRetries: max(cfg.MaxRetries, 0),
		limiter:    NewRateLimiter(cfg.RateLimit),
	}, nil
}

// Upsert sends a batch of text vectors in one request.
func (c *Client) Upsert(ctx context.Context, vectors []domain.IndexedVector) error {
	if len(vectors) == 0 {
		return nil
	}
	items := make([]upsertItem, len(vectors))
	for i, v := range vectors {
		items[i] = upsertItem{ID: v.ID, Data: v.Data, Metadata: v.Metadata}
	}
	_, err := c.call(ctx, "/upsert-data", items)
	return err
}

// Query runs a text query and validates every hit.
func (c *Client) Query(ctx context.Context, q domain.VectorQuery) ([]domain.VectorHit, error) {
	req := queryRequest{
		Data:            q.Text,
		TopK:            q.TopK,
		IncludeMetadata: q.IncludeMetadata,
	}
	if req.TopK <= 0 {
		req.TopK = domain.DefaultTopK
	}
	if q.Filter != nil {
		if err := q.Filter.Validate(); err != nil {
			return nil, fmt.Errorf("upstash: filter: %w", err)
		}
		req.Filter = q.Filter.Expression()
	}

	raw, err := c.call(ctx, "/query-data", req)
	if err != nil {
		return nil, err
	}

	var hits []queryHit
	if err := json.Unmarshal(raw, &hits); err != nil {
		return nil, fmt.Errorf("upstash: decode query result: %w", err)
	}

	out := make([]domain.VectorHit, 0, len(hits))
	for i, h := range hits {
		if h.ID == "" || h.Score == nil {
			return nil, fmt.Errorf("upstash: malformed hit %d: missing id or score", i)
		}
		out = append(out, domain.VectorHit{ID: h.ID, Score: *h.Score, Metadata: h.Metadata})
	}
	return out, nil
}

// Info reports the index dimension, vector count and similarity function.
// Pending vectors are included in the count.
func (c *Client) Info(ctx context.Context) (domain.VectorInfo, error) {
	raw, err := c.call(ctx, "/info", nil)
	if err != nil {
		return domain.VectorInfo{}, err
	}

	var info infoResult
	if err := json.Unmarshal(raw, &info); err != nil {
		return domain.VectorInfo{}, fmt.Errorf("upstash: decode info: %w", err)
	}
	return domain.VectorInfo{
		Dimension:          info.Dimension,
		VectorCount:        info.VectorCount + info.PendingVectorCount,
		SimilarityFunction: info.SimilarityFunction,
	}, nil
}

// ListIDs pages through the whole index with the range endpoint.
func (c *Client) ListIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	cursor := "0"
	for {
		raw, err := c.call(ctx, "/range", rangeRequest{Cursor: cursor, Limit: rangePageSize})
		if err != nil {
			return nil, err
		}

		var page rangeResult
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("upstash: decode range: %w", err)
		}
		for _, v := range page.Vectors {
			ids = append(ids, v.ID)
		}

		if page.NextCursor == "" || page.NextCursor == cursor {
			return ids, nil
		}
		cursor = page.NextCursor
	}
}

// Reset deletes every vector in the index.
func (c *Client) Reset(ctx context.Context) error {
	_, err := c.call(ctx, "/reset", nil)
	return err
}

// call posts body to path, retrying 429 responses after the advertised
// backoff, and returns the unwrapped result.
func (c *Client) call(ctx context.Context, path string, body any) (json.RawMessage, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		result, retryAfter, err := c.do(ctx, path, payload)
		if !errors.Is(err, domain.ErrRateLimited) {
			return result, err
		}

		c.limiter.RecordRateLimitError(retryAfter)
		if attempt >= c.maxRetries {
			return nil, err
		}
		logger.Warn("Upstash rate limited on %s, retrying (attempt %d/%d)", path, attempt+1, c.maxRetries)
	}
}

func (c *Client) do(ctx context.Context, path string, payload []byte) (json.RawMessage, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("upstash %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, retryAfter(resp.Header.Get("Retry-After")),
			fmt.Errorf("upstash %s: %w", path, domain.ErrRateLimited)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, 0, fmt.Errorf("upstash %s (status %d): %s", path, resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return nil, 0, fmt.Errorf("upstash %s: decode response: %w", path, err)
	}
	if env.Error != "" {
		return nil, 0, fmt.Errorf("upstash %s (status %d): %s", path, resp.StatusCode, env.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("upstash %s: unexpected status %d", path, resp.StatusCode)
	}
	return env.Result, 0, nil
}

// retryAfter parses a Retry-After header in seconds, returning -1 when
// the header is missing or not a number of seconds.
func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs < 0 {
		return -1
	}
	return time.Duration(secs) * time.Second
}
