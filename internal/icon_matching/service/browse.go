package service

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
	"github.com/iconsmith/iconsmith-backend/internal/logger"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is one page of a stored icon list. Count is the size of the whole
// list.
type Page struct {
	Count   int                 `json:"count"`
	Results []domain.IconResult `json:"results"`
}

// Paginate slices icons into 1-based pages. Pages past the end are empty.
func Paginate(icons []domain.IconResult, page, size int) Page {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	out := Page{Count: len(icons), Results: []domain.IconResult{}}
	start := (page - 1) * size
	if start >= len(icons) {
		return out
	}
	end := start + size
	if end > len(icons) {
		end = len(icons)
	}
	out.Results = append(out.Results, icons[start:end]...)
	return out
}

func (s *Service) ListProjects(ctx context.Context, owner string) ([]domain.ProjectSummary, error) {
	return s.store.List(ctx, owner)
}

func (s *Service) GetProject(ctx context.Context, owner, id string) (*domain.Project, error) {
	return s.store.Get(ctx, owner, id)
}

// RenameProject changes a project's name. History is not touched.
func (s *Service) RenameProject(ctx context.Context, owner, id, name string) (*domain.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.InvalidInput("name required")
	}
	return s.store.Rename(ctx, owner, id, name)
}

func (s *Service) ProjectIcons(ctx context.Context, owner, id string, page, size int) (Page, error) {
	p, err := s.store.Get(ctx, owner, id)
	if err != nil {
		return Page{}, err
	}
	return Paginate(p.Icons, page, size), nil
}

func (s *Service) ListHistory(ctx context.Context, owner, projectID string) ([]domain.HistorySnapshot, error) {
	return s.store.ListHistory(ctx, owner, projectID)
}

func (s *Service) HistoryIcons(ctx context.Context, owner, historyID string, page, size int) (Page, error) {
	h, err := s.store.GetHistory(ctx, owner, historyID)
	if err != nil {
		return Page{}, err
	}
	return Paginate(h.Icons, page, size), nil
}

// DownloadHistoryIcons writes a zip of one page of a snapshot's icons to w,
// one <id>.png entry per icon. Icons that fail to download are skipped.
// The snapshot is looked up before anything is written.
func (s *Service) DownloadHistoryIcons(ctx context.Context, owner, historyID string, page, size int, w io.Writer) (int, error) {
	if s.fetcher == nil {
		return 0, fmt.Errorf("icon downloads not configured")
	}
	p, err := s.HistoryIcons(ctx, owner, historyID, page, size)
	if err != nil {
		return 0, err
	}

	log := logger.FromContext(ctx)
	zw := zip.NewWriter(w)
	written := 0
	for _, icon := range p.Results {
		data, err := s.fetcher.Fetch(ctx, icon.URL)
		if err != nil {
			log.Warn("icon download skipped", "icon_id", icon.ID, "error", err)
			continue
		}
		f, err := zw.Create(entryName(icon.ID))
		if err != nil {
			return written, fmt.Errorf("zip entry: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			return written, fmt.Errorf("zip write: %w", err)
		}
		written++
	}
	if err := zw.Close(); err != nil {
		return written, fmt.Errorf("zip close: %w", err)
	}
	return written, nil
}

// DefaultIconHosts are the CDN domains the icon search serves thumbnails
// from.
var DefaultIconHosts = []string{"flaticon.com", "freepik.com"}

// DownloadIcon fetches one icon thumbnail by URL and returns it with a file
// name for the attachment. Only https URLs on the configured icon hosts are
// fetched.
func (s *Service) DownloadIcon(ctx context.Context, rawURL string) ([]byte, string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, "", domain.InvalidInput("no download url provided")
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "https" || !s.iconHost(u.Hostname()) {
		return nil, "", domain.InvalidInput("download url is not an icon url")
	}
	if s.fetcher == nil {
		return nil, "", fmt.Errorf("icon downloads not configured")
	}
	data, err := s.fetcher.Fetch(ctx, u.String())
	if err != nil {
		return nil, "", external("icon download failed", err)
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" {
		name = "icon.png"
	}
	return data, name, nil
}

func (s *Service) iconHost(host string) bool {
	host = strings.ToLower(host)
	for _, h := range s.iconHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func entryName(id string) string {
	id = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(id)
	if id == "" {
		id = "icon"
	}
	return id + ".png"
}
