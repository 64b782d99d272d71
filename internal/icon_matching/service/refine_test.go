package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/intent"
)

func seedProject(t *testing.T, h *harness, filters domain.Filters) *domain.Project {
	t.Helper()
	p, err := h.store.CreateProject(context.Background(), domain.Project{
		Owner: owner,
		Attributes: domain.AttributeRecord{
			ColorPalette: "Blue",
			Iconography:  "Flat",
			BrandStyle:   "Corporate",
		},
		Filters: filters,
		Icons:   makeIcons(3),
	})
	require.NoError(t, err)
	return p
}

func TestRefine_ColorPathNonVocabularyColor(t *testing.T) {
	h := newHarness()
	h.matcher.match = domain.ColorShapeMatch{Color: "rose"}
	p := seedProject(t, h, domain.Filters{})

	res, err := h.service().Refine(context.Background(), owner, p.ID, "make it pink")
	require.NoError(t, err)

	assert.Equal(t, intent.PathColor, res.Path)
	require.NotNil(t, res.Color)
	assert.Equal(t, domain.ColorResolution{ResolvedColor: "rose", IsExactMatch: false}, *res.Color)

	assert.Equal(t, "rose", res.Project.Attributes.ColorPalette)
	assert.Equal(t, "Flat", res.Project.Attributes.Iconography)
	assert.Equal(t, "Corporate", res.Project.Attributes.BrandStyle)
	assert.Equal(t, "rose", res.Project.Filters.Color)

	require.Len(t, h.searcher.requests, 1)
	assert.Equal(t, "rose", h.searcher.requests[0].Color)
	assert.Equal(t, "rose Flat Corporate", h.searcher.requests[0].Term)
	assert.Len(t, res.Project.Icons, 40)

	hist, err := h.service().ListHistory(context.Background(), owner, p.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "Blue", hist[0].Attributes.ColorPalette)
	assert.Len(t, hist[0].Icons, 3)
}

func TestRefine_ColorPathExactMatch(t *testing.T) {
	h := newHarness()
	h.matcher.match = domain.ColorShapeMatch{Color: "red"}
	p := seedProject(t, h, domain.Filters{})

	res, err := h.service().Refine(context.Background(), owner, p.ID, "red")
	require.NoError(t, err)
	assert.True(t, res.Color.IsExactMatch)
	assert.Equal(t, "red", res.Color.ResolvedColor)
}

func TestRefine_ColorPathExactWhenVocabularyColorFollowsModifier(t *testing.T) {
	h := newHarness()
	h.matcher.match = domain.ColorShapeMatch{Color: "blue"}
	p := seedProject(t, h, domain.Filters{})

	res, err := h.service().Refine(context.Background(), owner, p.ID, "make it sky blue")
	require.NoError(t, err)
	assert.Equal(t, intent.PathColor, res.Path)
	assert.Equal(t, domain.ColorResolution{ResolvedColor: "blue", IsExactMatch: true}, *res.Color)
}

func TestRefine_ColorPathFallsBackToResolver(t *testing.T) {
	h := newHarness()
	p := seedProject(t, h, domain.Filters{})

	res, err := h.service().Refine(context.Background(), owner, p.ID, "make it grey")
	require.NoError(t, err)
	assert.Equal(t, domain.ColorResolution{ResolvedColor: "gray", IsExactMatch: false}, *res.Color)
	assert.Equal(t, "gray", h.searcher.requests[0].Color)
}

func TestRefine_ShapePathKeepsColorFilter(t *testing.T) {
	h := newHarness()
	p := seedProject(t, h, domain.Filters{Color: "red"})

	res, err := h.service().Refine(context.Background(), owner, p.ID, "make them outlined")
	require.NoError(t, err)

	assert.Equal(t, intent.PathShape, res.Path)
	assert.Nil(t, res.Color)
	assert.Equal(t, domain.Filters{Color: "red", Shape: "outline"}, res.Project.Filters)
	assert.Equal(t, "Blue", res.Project.Attributes.ColorPalette)

	req := h.searcher.requests[0]
	assert.Equal(t, "red", req.Color)
	assert.Equal(t, "outline", req.Shape)
}

func TestRefine_ShapePathUsesMatcherShape(t *testing.T) {
	h := newHarness()
	h.matcher.match = domain.ColorShapeMatch{Shape: "fill"}
	p := seedProject(t, h, domain.Filters{})

	res, err := h.service().Refine(context.Background(), owner, p.ID, "filled")
	require.NoError(t, err)
	assert.Equal(t, "fill", res.Project.Filters.Shape)
}

func TestRefine_GeneralPathMergesAndClearsFilters(t *testing.T) {
	h := newHarness()
	h.rewriter.raw = map[string]string{
		"iconography": "Isometric",
		"brand_style": "",
		"description": "isometric finance icons",
	}
	h.rewriter.explanation = "Switched to isometric icons."
	p := seedProject(t, h, domain.Filters{Color: "red", Shape: "fill"})

	res, err := h.service().Refine(context.Background(), owner, p.ID, "make the icons isometric for a bank")
	require.NoError(t, err)

	assert.Equal(t, intent.PathGeneral, res.Path)
	assert.Equal(t, "Switched to isometric icons.", res.Explanation)
	assert.Equal(t, "Blue", h.rewriter.got.ColorPalette)

	attrs := res.Project.Attributes
	assert.Equal(t, "Isometric", attrs.Iconography)
	assert.Equal(t, "Corporate", attrs.BrandStyle)
	assert.Equal(t, "Blue", attrs.ColorPalette)
	assert.Equal(t, domain.Filters{}, res.Project.Filters)

	req := h.searcher.requests[0]
	assert.Equal(t, "isometric finance icons", req.Term)
	assert.Equal(t, "blue", req.Color)
	assert.Empty(t, req.Shape)
	assert.Zero(t, h.matcher.calls)
}

func TestRefine_FailuresLeaveProjectUntouched(t *testing.T) {
	t.Run("search failure", func(t *testing.T) {
		h := newHarness()
		h.matcher.match = domain.ColorShapeMatch{Color: "red"}
		h.searcher.err = errors.New("connection reset")
		p := seedProject(t, h, domain.Filters{})

		_, err := h.service().Refine(context.Background(), owner, p.ID, "red")
		assert.True(t, domain.IsKind(err, domain.KindExternalService))
		assert.Zero(t, h.store.commits)

		got, err := h.store.Get(context.Background(), owner, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Blue", got.Attributes.ColorPalette)
	})

	t.Run("matcher failure", func(t *testing.T) {
		h := newHarness()
		h.matcher.err = errors.New("model overloaded")
		p := seedProject(t, h, domain.Filters{})

		_, err := h.service().Refine(context.Background(), owner, p.ID, "pink")
		assert.True(t, domain.IsKind(err, domain.KindExternalService))
		assert.Empty(t, h.searcher.requests)
		assert.Zero(t, h.store.commits)
	})

	t.Run("rewriter failure", func(t *testing.T) {
		h := newHarness()
		h.rewriter.err = errors.New("bad json")
		p := seedProject(t, h, domain.Filters{})

		_, err := h.service().Refine(context.Background(), owner, p.ID, "something playful")
		assert.True(t, domain.IsKind(err, domain.KindExternalService))
		assert.Zero(t, h.store.commits)
	})
}

func TestRefine_InvalidInputAndNotFound(t *testing.T) {
	h := newHarness()
	p := seedProject(t, h, domain.Filters{})
	svc := h.service()
	ctx := context.Background()

	_, err := svc.Refine(ctx, owner, p.ID, "   ")
	assert.True(t, domain.IsKind(err, domain.KindInvalidInput))

	_, err = svc.Refine(ctx, owner, "", "red")
	assert.True(t, domain.IsKind(err, domain.KindInvalidInput))

	_, err = svc.Refine(ctx, owner, "missing", "red")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	_, err = svc.Refine(ctx, "someone-else", p.ID, "red")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	assert.Zero(t, h.matcher.calls)
	assert.Empty(t, h.searcher.requests)
}
