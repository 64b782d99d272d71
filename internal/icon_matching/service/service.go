// Package service wires the icon matching pipeline: extraction,
// normalization, query building, search and the bounded project store.
package service

import (
	"context"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/query"
)

// AttributeExtractor reads raw visual attributes from a design image.
type AttributeExtractor interface {
	Extract(ctx context.Context, image []byte, contentType string) (map[string]string, error)
}

// QueryWriter condenses attributes into a short search description.
type QueryWriter interface {
	Describe(ctx context.Context, attributes string) (string, error)
}

// ColorShapeMatcher extracts a vocabulary color and shape from a follow-up
// query.
type ColorShapeMatcher interface {
	MatchColorShape(ctx context.Context, query string) (domain.ColorShapeMatch, error)
}

// AttributeRewriter applies a free-text request to a full attribute record.
type AttributeRewriter interface {
	Rewrite(ctx context.Context, attrs domain.AttributeRecord, query string) (map[string]string, string, error)
}

type IconSearcher interface {
	Search(ctx context.Context, req domain.SearchRequest) ([]domain.IconResult, error)
}

type ColorResolver interface {
	Resolve(ctx context.Context, input string) domain.ColorResolution
}

type ProjectStore interface {
	CreateProject(ctx context.Context, p domain.Project) (*domain.Project, error)
	CommitWithHistory(ctx context.Context, p domain.Project) (*domain.Project, error)
	Get(ctx context.Context, owner, id string) (*domain.Project, error)
	List(ctx context.Context, owner string) ([]domain.ProjectSummary, error)
	Rename(ctx context.Context, owner, id, name string) (*domain.Project, error)
	ListHistory(ctx context.Context, owner, projectID string) ([]domain.HistorySnapshot, error)
	GetHistory(ctx context.Context, owner, historyID string) (*domain.HistorySnapshot, error)
}

// DesignArchive stores uploaded designs and returns a link to them.
type DesignArchive interface {
	PutDesign(ctx context.Context, owner string, data []byte, contentType string) (string, error)
}

// DesignRenderer turns a design tool link into an image.
type DesignRenderer interface {
	Render(ctx context.Context, link string) (domain.DesignImage, error)
}

// IconFetcher downloads one icon thumbnail.
type IconFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Deps are the collaborators of Service. Writer, Archive, Renderer and
// Fetcher are optional.
type Deps struct {
	Extractor AttributeExtractor
	Writer    QueryWriter
	Matcher   ColorShapeMatcher
	Rewriter  AttributeRewriter
	Colors    ColorResolver
	Searcher  IconSearcher
	Store     ProjectStore
	Archive   DesignArchive
	Renderer  DesignRenderer
	Fetcher   IconFetcher

	// IconHosts limits single icon downloads. Empty means DefaultIconHosts.
	IconHosts []string
}

type Service struct {
	extractor AttributeExtractor
	writer    QueryWriter
	matcher   ColorShapeMatcher
	rewriter  AttributeRewriter
	colors    ColorResolver
	searcher  IconSearcher
	store     ProjectStore
	archive   DesignArchive
	renderer  DesignRenderer
	fetcher   IconFetcher
	iconHosts []string
	builder   *query.Builder
}

func New(d Deps) *Service {
	if len(d.IconHosts) == 0 {
		d.IconHosts = DefaultIconHosts
	}
	return &Service{
		extractor: d.Extractor,
		writer:    d.Writer,
		matcher:   d.Matcher,
		rewriter:  d.Rewriter,
		colors:    d.Colors,
		searcher:  d.Searcher,
		store:     d.Store,
		archive:   d.Archive,
		renderer:  d.Renderer,
		fetcher:   d.Fetcher,
		iconHosts: d.IconHosts,
		builder:   query.NewBuilder(d.Colors),
	}
}

// external tags untagged collaborator failures as external service errors.
func external(msg string, err error) error {
	if domain.KindOf(err) != domain.KindInternal {
		return err
	}
	return domain.External(msg, err)
}

func (s *Service) search(ctx context.Context, attrs domain.AttributeRecord, filters domain.Filters) ([]domain.IconResult, error) {
	req := s.builder.Build(ctx, attrs, filters.Overrides())
	icons, err := s.searcher.Search(ctx, req)
	if err != nil {
		return nil, external("icon search failed", err)
	}
	return icons, nil
}
