package service

import (
	"context"
	"strings"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/attributes"
	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/intent"
	"github.com/iconsmith/iconsmith-backend/internal/logger"
	"github.com/iconsmith/iconsmith-backend/internal/metrics"
)

// RefineResult is the outcome of a follow-up query. Color is set on the
// color path only; its IsExactMatch tells whether the requested color was a
// vocabulary color.
type RefineResult struct {
	Path        intent.Path             `json:"path"`
	Explanation string                  `json:"explanation,omitempty"`
	Color       *domain.ColorResolution `json:"color,omitempty"`
	Project     *domain.Project         `json:"project"`
}

// Refine classifies query, updates the project's attributes or filters for
// the chosen path, searches again and commits with history. A failing step
// leaves the project untouched.
func (s *Service) Refine(ctx context.Context, owner, projectID, query string) (*RefineResult, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, domain.InvalidInput("owner required")
	}
	if strings.TrimSpace(projectID) == "" {
		return nil, domain.InvalidInput("project id required")
	}
	cls, err := intent.Classify(query)
	if err != nil {
		return nil, err
	}

	p, err := s.store.Get(ctx, owner, projectID)
	if err != nil {
		return nil, err
	}
	metrics.RefineRequests.WithLabelValues(string(cls.Path)).Inc()
	logger.FromContext(ctx).Info("refining project", "project_id", p.ID, "path", cls.Path)

	res := &RefineResult{Path: cls.Path}
	attrs, filters := p.Attributes, p.Filters

	switch cls.Path {
	case intent.PathColor:
		m, err := s.matcher.MatchColorShape(ctx, query)
		if err != nil {
			return nil, external("color matching failed", err)
		}
		resolution := domain.ColorResolution{
			ResolvedColor: m.Color,
			IsExactMatch:  strings.EqualFold(cls.ColorHint, m.Color),
		}
		if m.Color == "" {
			resolution = s.colors.Resolve(ctx, cls.ColorHint)
		}
		res.Color = &resolution
		attrs.ColorPalette = resolution.ResolvedColor
		filters.Color = resolution.ResolvedColor

	case intent.PathShape:
		m, err := s.matcher.MatchColorShape(ctx, query)
		if err != nil {
			return nil, external("shape matching failed", err)
		}
		shape := m.Shape
		if shape == "" {
			shape = cls.ShapeHint
		}
		filters.Shape = shape

	default:
		raw, explanation, err := s.rewriter.Rewrite(ctx, attrs, query)
		if err != nil {
			return nil, external("attribute rewrite failed", err)
		}
		attrs = attributes.Merge(attrs, attributes.Normalize(raw))
		filters = domain.Filters{}
		res.Explanation = explanation
	}

	icons, err := s.search(ctx, attrs, filters)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.CommitWithHistory(ctx, domain.Project{
		ID:         p.ID,
		Owner:      owner,
		Attributes: attrs,
		Filters:    filters,
		Icons:      icons,
	})
	if err != nil {
		return nil, err
	}
	res.Project = updated
	return res, nil
}
