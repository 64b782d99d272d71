package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
)

type fakeFreepik struct {
	mu       sync.Mutex
	requests []*http.Request
	total    int
	pages    map[string][]map[string]any
	status   map[string]int
}

func (f *fakeFreepik) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.mu.Unlock()

	page := r.URL.Query().Get("page")
	if code, ok := f.status[page]; ok {
		w.WriteHeader(code)
		_, _ = w.Write([]byte(`{"message":"nope"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": f.pages[page],
		"meta": map[string]any{"pagination": map[string]any{"total": f.total}},
	})
}

func icons(prefix string, n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{
			"id":         fmt.Sprintf("%s%d", prefix, i),
			"thumbnails": []map[string]any{{"url": fmt.Sprintf("https://cdn/%s%d.png", prefix, i)}},
		}
	}
	return out
}

func newTestClient(t *testing.T, f *fakeFreepik) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "secret", BaseURL: srv.URL + "/"})
}

func firstPage() domain.SearchRequest {
	return domain.SearchRequest{
		Term: "blue flat", Color: "blue", Shape: "outline",
		Order: "relevance", Page: 1, PerPage: 100, ThumbnailSize: 256,
	}
}

func TestSearch_SinglePageWhenTotalFits(t *testing.T) {
	f := &fakeFreepik{total: 40, pages: map[string][]map[string]any{"1": icons("a", 40)}}
	c := newTestClient(t, f)

	got, err := c.Search(context.Background(), firstPage())
	require.NoError(t, err)

	assert.Len(t, got, 40)
	require.Len(t, f.requests, 1)

	r := f.requests[0]
	assert.Equal(t, "/v1/icons", r.URL.Path)
	assert.Equal(t, "secret", r.Header.Get("x-freepik-api-key"))
	q := r.URL.Query()
	assert.Equal(t, "blue flat", q.Get("term"))
	assert.Equal(t, "100", q.Get("per_page"))
	assert.Equal(t, "256", q.Get("thumbnail_size"))
	assert.Equal(t, "relevance", q.Get("order"))
	assert.Equal(t, "blue", q.Get("filters[color]"))
	assert.Equal(t, "outline", q.Get("filters[shape]"))
}

func TestSearch_SecondPageAppended(t *testing.T) {
	f := &fakeFreepik{total: 420, pages: map[string][]map[string]any{
		"1": icons("a", 100),
		"2": icons("b", 50),
	}}
	c := newTestClient(t, f)

	got, err := c.Search(context.Background(), firstPage())
	require.NoError(t, err)

	require.Len(t, f.requests, 2)
	assert.Equal(t, "2", f.requests[1].URL.Query().Get("page"))
	assert.Equal(t, "50", f.requests[1].URL.Query().Get("per_page"))
	require.Len(t, got, 150)
	assert.Equal(t, "a0", got[0].ID)
	assert.Equal(t, "a99", got[99].ID)
	assert.Equal(t, "b0", got[100].ID)
	assert.Equal(t, "b49", got[149].ID)
}

func TestSearch_SecondPageFailureKeepsFirst(t *testing.T) {
	f := &fakeFreepik{
		total:  300,
		pages:  map[string][]map[string]any{"1": icons("a", 100)},
		status: map[string]int{"2": http.StatusTooManyRequests},
	}
	c := newTestClient(t, f)

	got, err := c.Search(context.Background(), firstPage())
	require.NoError(t, err)
	assert.Len(t, got, 100)
	assert.Len(t, f.requests, 2)
}

func TestSearch_FirstPageFailureIsExternal(t *testing.T) {
	f := &fakeFreepik{status: map[string]int{"1": http.StatusUnauthorized}}
	c := newTestClient(t, f)

	got, err := c.Search(context.Background(), firstPage())
	assert.Nil(t, got)
	assert.True(t, domain.IsKind(err, domain.KindExternalService))
}

func TestSearch_MalformedPayloadIsExternal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": "nope"`))
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Search(context.Background(), firstPage())
	assert.True(t, domain.IsKind(err, domain.KindExternalService))
}

func TestSearch_SkipsEntriesWithoutThumbnails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"data": [
				{"id": 101, "thumbnails": [{"url": "https://cdn/101.png"}]},
				{"id": 102, "thumbnails": []},
				{"id": "abc", "thumbnails": [{"url": "https://cdn/abc.png"}, {"url": "https://cdn/abc-2.png"}]}
			],
			"meta": {"pagination": {"total": 3}}
		}`))
	}))
	defer srv.Close()

	got, err := NewClient(Config{BaseURL: srv.URL}).Search(context.Background(), firstPage())
	require.NoError(t, err)
	assert.Equal(t, []domain.IconResult{
		{ID: "101", URL: "https://cdn/101.png"},
		{ID: "abc", URL: "https://cdn/abc.png"},
	}, got)
}

func TestSearch_OmitsEmptyFilters(t *testing.T) {
	f := &fakeFreepik{total: 0}
	c := newTestClient(t, f)

	req := firstPage()
	req.Color, req.Shape = "", ""
	_, err := c.Search(context.Background(), req)
	require.NoError(t, err)

	q := f.requests[0].URL.Query()
	assert.False(t, q.Has("filters[color]"))
	assert.False(t, q.Has("filters[shape]"))
}
