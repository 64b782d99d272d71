package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iconsmith/iconsmith-backend/internal/metrics"
)

const maxThumbnailBytes = 5 << 20

// Fetcher downloads icon thumbnails.
type Fetcher struct {
	http *http.Client
}

func NewFetcher(hc *http.Client) *Fetcher {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{http: hc}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	data, err := f.fetch(ctx, url)
	metrics.ObserveExternal("thumbnail", start, err)
	return data, err
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxThumbnailBytes))
}
