package service

import (
	"context"
	"strings"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/attributes"
	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/color"
	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
	"github.com/iconsmith/iconsmith-backend/internal/logger"
)

// SubmitOptions are the optional inputs of a submission.
type SubmitOptions struct {
	Name         string
	IconColorHex string
	IconStyle    string
}

// filters turns the options into the filters the first search uses. A hex
// color only counts when its CSS name is a vocabulary color.
func (o SubmitOptions) filters(ctx context.Context) (domain.Filters, error) {
	var f domain.Filters
	if style := strings.TrimSpace(o.IconStyle); style != "" {
		shape, ok := domain.LookupShape(style)
		if !ok {
			return f, domain.InvalidInput("icon_style must be one of " + strings.Join(domain.ShapeVocabulary, ", "))
		}
		f.Shape = shape
	}
	if hex := strings.TrimSpace(o.IconColorHex); hex != "" {
		if res, ok := color.FromHex(hex); ok {
			f.Color = res.ResolvedColor
		} else {
			logger.FromContext(ctx).Debug("icon color ignored", "icon_color", hex)
		}
	}
	return f, nil
}

// SubmitImage creates a project from a design image.
func (s *Service) SubmitImage(ctx context.Context, owner string, img domain.DesignImage, opts SubmitOptions) (*domain.Project, error) {
	log := logger.FromContext(ctx)
	if strings.TrimSpace(owner) == "" {
		return nil, domain.InvalidInput("owner required")
	}
	if len(img.Data) == 0 {
		return nil, domain.InvalidInput("image is required")
	}
	filters, err := opts.filters(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := s.extractor.Extract(ctx, img.Data, img.ContentType)
	if err != nil {
		return nil, external("attribute extraction failed", err)
	}
	attrs := attributes.Normalize(raw)

	if attrs.Description == "" && s.writer != nil {
		if visual := attrs.Visual(); visual != "" {
			desc, err := s.writer.Describe(ctx, visual)
			if err != nil {
				return nil, external("query writer failed", err)
			}
			attrs.Description = strings.TrimSpace(desc)
		}
	}

	icons, err := s.search(ctx, attrs, filters)
	if err != nil {
		return nil, err
	}

	screenLink := img.SourceURL
	if s.archive != nil {
		link, err := s.archive.PutDesign(ctx, owner, img.Data, img.ContentType)
		if err != nil {
			log.Warn("design archive failed", "error", err)
		} else {
			screenLink = link
		}
	}

	p, err := s.store.CreateProject(ctx, domain.Project{
		Owner:      owner,
		Name:       opts.Name,
		Attributes: attrs,
		Filters:    filters,
		Icons:      icons,
		ScreenLink: screenLink,
	})
	if err != nil {
		return nil, err
	}
	log.Info("project created", "project_id", p.ID, "icons", len(p.Icons))
	return p, nil
}

// SubmitFigmaLink renders a Figma frame and submits it as an image.
func (s *Service) SubmitFigmaLink(ctx context.Context, owner, link string, opts SubmitOptions) (*domain.Project, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, domain.InvalidInput("owner required")
	}
	if strings.TrimSpace(link) == "" {
		return nil, domain.InvalidInput("no link provided")
	}
	if s.renderer == nil {
		return nil, domain.InvalidInput("figma links are not supported")
	}
	img, err := s.renderer.Render(ctx, link)
	if err != nil {
		return nil, external("figma render failed", err)
	}
	return s.SubmitImage(ctx, owner, img, opts)
}
