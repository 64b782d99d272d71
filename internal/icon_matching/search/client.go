// Package search is the adapter over the Freepik icon search API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
	"github.com/iconsmith/iconsmith-backend/internal/logger"
	"github.com/iconsmith/iconsmith-backend/internal/metrics"
)

const (
	// SecondPagePerPage is the page size of the follow-up request made when
	// the first page does not cover the reported total.
	SecondPagePerPage = 50

	DefaultTimeout = 30 * time.Second
	apiKeyHeader   = "x-freepik-api-key"
	serviceName    = "freepik"
)

type Config struct {
	APIKey         string
	BaseURL        string
	RequestsPerSec float64
	Burst          int
	HTTPClient     *http.Client
}

// Client issues icon searches. It is safe for concurrent use.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		limiter: rate.NewLimiter(limit, burst),
	}
}

type response struct {
	Data []struct {
		ID         flexibleID `json:"id"`
		Thumbnails []struct {
			URL string `json:"url"`
		} `json:"thumbnails"`
	} `json:"data"`
	Meta struct {
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	} `json:"meta"`
}

// flexibleID accepts both numeric and string ids.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

// Search fetches the first page and, when the reported total exceeds it, a
// second page of SecondPagePerPage results appended after the first. A
// failed second page keeps the first page's icons.
func (c *Client) Search(ctx context.Context, req domain.SearchRequest) ([]domain.IconResult, error) {
	log := logger.FromContext(ctx)
	if req.Page <= 0 {
		req.Page = 1
	}

	first, err := c.fetch(ctx, req)
	if err != nil {
		metrics.SearchPages.WithLabelValues("1", "error").Inc()
		return nil, domain.External("icon search failed", err)
	}
	metrics.SearchPages.WithLabelValues("1", "ok").Inc()
	icons := collect(first)

	if first.Meta.Pagination.Total <= req.PerPage {
		return icons, nil
	}

	next := req
	next.Page = req.Page + 1
	next.PerPage = SecondPagePerPage
	second, err := c.fetch(ctx, next)
	if err != nil {
		metrics.SearchPages.WithLabelValues("2", "error").Inc()
		log.Warn("icon search second page failed, keeping first page",
			"term", req.Term, "icons", len(icons), "error", err)
		return icons, nil
	}
	metrics.SearchPages.WithLabelValues("2", "ok").Inc()
	return append(icons, collect(second)...), nil
}

func (c *Client) fetch(ctx context.Context, req domain.SearchRequest) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	start := time.Now()
	out, err := c.do(ctx, req)
	metrics.ObserveExternal(serviceName, start, err)
	return out, err
}

func (c *Client) do(ctx context.Context, req domain.SearchRequest) (*response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/icons?"+encode(req), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set(apiKeyHeader, c.apiKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func encode(req domain.SearchRequest) string {
	q := url.Values{}
	q.Set("term", req.Term)
	q.Set("page", strconv.Itoa(req.Page))
	if req.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(req.PerPage))
	}
	if req.ThumbnailSize > 0 {
		q.Set("thumbnail_size", strconv.Itoa(req.ThumbnailSize))
	}
	if req.Order != "" {
		q.Set("order", req.Order)
	}
	if req.Color != "" {
		q.Set("filters[color]", req.Color)
	}
	if req.Shape != "" {
		q.Set("filters[shape]", req.Shape)
	}
	return q.Encode()
}

func collect(r *response) []domain.IconResult {
	icons := make([]domain.IconResult, 0, len(r.Data))
	for _, d := range r.Data {
		if len(d.Thumbnails) == 0 || d.Thumbnails[0].URL == "" {
			continue
		}
		icons = append(icons, domain.IconResult{ID: string(d.ID), URL: d.Thumbnails[0].URL})
	}
	return icons
}
