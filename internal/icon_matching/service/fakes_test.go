package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
)

type fakeExtractor struct {
	raw   map[string]string
	err   error
	calls int
}

func (f *fakeExtractor) Extract(context.Context, []byte, string) (map[string]string, error) {
	f.calls++
	return f.raw, f.err
}

type fakeWriter struct {
	desc string
	err  error
	got  []string
}

func (f *fakeWriter) Describe(_ context.Context, attrs string) (string, error) {
	f.got = append(f.got, attrs)
	return f.desc, f.err
}

type fakeMatcher struct {
	match domain.ColorShapeMatch
	err   error
	calls int
}

func (f *fakeMatcher) MatchColorShape(context.Context, string) (domain.ColorShapeMatch, error) {
	f.calls++
	return f.match, f.err
}

type fakeRewriter struct {
	raw         map[string]string
	explanation string
	err         error
	got         domain.AttributeRecord
}

func (f *fakeRewriter) Rewrite(_ context.Context, attrs domain.AttributeRecord, _ string) (map[string]string, string, error) {
	f.got = attrs
	return f.raw, f.explanation, f.err
}

type fakeSearcher struct {
	icons    []domain.IconResult
	err      error
	requests []domain.SearchRequest
}

func (f *fakeSearcher) Search(_ context.Context, req domain.SearchRequest) ([]domain.IconResult, error) {
	f.requests = append(f.requests, req)
	return f.icons, f.err
}

type fakeArchive struct {
	link string
	err  error
}

func (f *fakeArchive) PutDesign(context.Context, string, []byte, string) (string, error) {
	return f.link, f.err
}

type fakeRenderer struct {
	img domain.DesignImage
	err error
}

func (f *fakeRenderer) Render(context.Context, string) (domain.DesignImage, error) {
	return f.img, f.err
}

type fakeFetcher struct {
	data map[string][]byte
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if d, ok := f.data[url]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("404 %s", url)
}

// memStore keeps projects in memory with the same bounds as the Postgres
// store.
type memStore struct {
	mu       sync.Mutex
	seq      int
	projects map[string]*domain.Project
	history  map[string][]domain.HistorySnapshot
	commits  int
}

func newMemStore() *memStore {
	return &memStore{projects: map[string]*domain.Project{}, history: map[string][]domain.HistorySnapshot{}}
}

func (m *memStore) CreateProject(_ context.Context, p domain.Project) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	p.ID = fmt.Sprintf("p%d", m.seq)
	if p.Name == "" {
		p.Name = domain.DefaultProjectName
	}
	p.CreatedAt = time.Unix(int64(m.seq), 0)
	cp := p
	m.projects[p.ID] = &cp
	return &p, nil
}

func (m *memStore) CommitWithHistory(_ context.Context, p domain.Project) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.projects[p.ID]
	if !ok || cur.Owner != p.Owner {
		return nil, domain.NotFound("project not found")
	}
	m.commits++
	m.seq++
	m.history[p.ID] = append(m.history[p.ID], domain.HistorySnapshot{
		ID: fmt.Sprintf("h%d", m.seq), ProjectID: p.ID, Name: cur.Name,
		Attributes: cur.Attributes, Filters: cur.Filters, Icons: cur.Icons,
	})
	cur.Attributes, cur.Filters, cur.Icons = p.Attributes, p.Filters, p.Icons
	out := *cur
	return &out, nil
}

func (m *memStore) Get(_ context.Context, owner, id string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok || p.Owner != owner {
		return nil, domain.NotFound("project not found")
	}
	out := *p
	return &out, nil
}

func (m *memStore) List(_ context.Context, owner string) ([]domain.ProjectSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ProjectSummary
	for _, p := range m.projects {
		if p.Owner == owner {
			out = append(out, domain.ProjectSummary{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt})
		}
	}
	return out, nil
}

func (m *memStore) Rename(ctx context.Context, owner, id, name string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok || p.Owner != owner {
		return nil, domain.NotFound("project not found")
	}
	p.Name = name
	out := *p
	return &out, nil
}

func (m *memStore) ListHistory(_ context.Context, owner, projectID string) ([]domain.HistorySnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.projects[projectID]; !ok || p.Owner != owner {
		return nil, domain.NotFound("project not found")
	}
	return m.history[projectID], nil
}

func (m *memStore) GetHistory(_ context.Context, owner, historyID string) (*domain.HistorySnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for pid, hs := range m.history {
		if m.projects[pid].Owner != owner {
			continue
		}
		for _, h := range hs {
			if h.ID == historyID {
				out := h
				return &out, nil
			}
		}
	}
	return nil, domain.NotFound("history not found")
}
