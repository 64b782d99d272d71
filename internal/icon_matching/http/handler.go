package http

import (
	"context"
	"io"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/service"
)

// Pipeline is the part of *service.Service the handlers call.
type Pipeline interface {
	SubmitImage(ctx context.Context, owner string, img domain.DesignImage, opts service.SubmitOptions) (*domain.Project, error)
	SubmitFigmaLink(ctx context.Context, owner, link string, opts service.SubmitOptions) (*domain.Project, error)
	Refine(ctx context.Context, owner, projectID, query string) (*service.RefineResult, error)
	ListProjects(ctx context.Context, owner string) ([]domain.ProjectSummary, error)
	RenameProject(ctx context.Context, owner, id, name string) (*domain.Project, error)
	ProjectIcons(ctx context.Context, owner, id string, page, size int) (service.Page, error)
	ListHistory(ctx context.Context, owner, projectID string) ([]domain.HistorySnapshot, error)
	HistoryIcons(ctx context.Context, owner, historyID string, page, size int) (service.Page, error)
	DownloadHistoryIcons(ctx context.Context, owner, historyID string, page, size int, w io.Writer) (int, error)
	DownloadIcon(ctx context.Context, rawURL string) ([]byte, string, error)
}

// Handler bundles the dependencies for icon matching HTTP endpoints.
type Handler struct {
	svc       Pipeline
	maxUpload int64
}

// DefaultMaxUpload caps uploaded design images.
const DefaultMaxUpload = 10 << 20

func New(svc Pipeline) *Handler {
	return &Handler{svc: svc, maxUpload: DefaultMaxUpload}
}
