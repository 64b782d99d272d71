// Package query turns canonical attributes plus overrides into a search
// request.
package query

import (
	"context"
	"strings"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
)

// Defaults for the first page of a search.
const (
	OrderRelevance       = "relevance"
	DefaultPerPage       = 100
	DefaultThumbnailSize = 256
)

// ColorResolver maps a free-text color onto the color vocabulary.
type ColorResolver interface {
	Resolve(ctx context.Context, input string) domain.ColorResolution
}

type Builder struct {
	colors ColorResolver
}

func NewBuilder(colors ColorResolver) *Builder {
	return &Builder{colors: colors}
}

// Build assembles the search request. The only I/O is resolving
// attrs.ColorPalette when no color override is given.
func (b *Builder) Build(ctx context.Context, attrs domain.AttributeRecord, ov domain.Overrides) domain.SearchRequest {
	req := domain.SearchRequest{
		Term:          Term(attrs),
		Order:         OrderRelevance,
		Page:          1,
		PerPage:       DefaultPerPage,
		ThumbnailSize: DefaultThumbnailSize,
		Shape:         strings.TrimSpace(ov.Shape),
	}

	switch {
	case ov.Color != nil && ov.Color.ResolvedColor != "":
		req.Color = strings.ToLower(ov.Color.ResolvedColor)
	case attrs.ColorPalette != "" && b.colors != nil:
		req.Color = strings.ToLower(b.colors.Resolve(ctx, attrs.ColorPalette).ResolvedColor)
	}
	return req
}

// Term is the description when present, otherwise the visual fields joined
// in their fixed order.
func Term(attrs domain.AttributeRecord) string {
	if d := strings.TrimSpace(attrs.Description); d != "" {
		return d
	}
	return attrs.Visual()
}
