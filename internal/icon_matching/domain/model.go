package domain

import (
	"strings"
	"time"
)

// Attribute field keys, shared by the extractor payload, the JSON column and
// the LLM schemas.
const (
	FieldColorPalette   = "color_palette"
	FieldIconography    = "iconography"
	FieldBrandStyle     = "brand_style"
	FieldGradientUsage  = "gradient_usage"
	FieldImagery        = "imagery"
	FieldShadowAndDepth = "shadow_and_depth"
	FieldLineThickness  = "line_thickness"
	FieldCornerRounding = "corner_rounding"
	FieldDescription    = "description"
)

// VisualFields lists the visual attribute keys in the fixed order used to
// build search terms. Description is not part of it.
var VisualFields = []string{
	FieldColorPalette,
	FieldIconography,
	FieldBrandStyle,
	FieldGradientUsage,
	FieldImagery,
	FieldShadowAndDepth,
	FieldLineThickness,
	FieldCornerRounding,
}

// AttributeRecord is the canonical set of design attributes of a project.
// Absent values are empty strings.
type AttributeRecord struct {
	ColorPalette   string `json:"color_palette"`
	Iconography    string `json:"iconography"`
	BrandStyle     string `json:"brand_style"`
	GradientUsage  string `json:"gradient_usage"`
	Imagery        string `json:"imagery"`
	ShadowAndDepth string `json:"shadow_and_depth"`
	LineThickness  string `json:"line_thickness"`
	CornerRounding string `json:"corner_rounding"`
	Description    string `json:"description"`
}

// Get returns the value stored under a field key.
func (a AttributeRecord) Get(field string) string {
	switch field {
	case FieldColorPalette:
		return a.ColorPalette
	case FieldIconography:
		return a.Iconography
	case FieldBrandStyle:
		return a.BrandStyle
	case FieldGradientUsage:
		return a.GradientUsage
	case FieldImagery:
		return a.Imagery
	case FieldShadowAndDepth:
		return a.ShadowAndDepth
	case FieldLineThickness:
		return a.LineThickness
	case FieldCornerRounding:
		return a.CornerRounding
	case FieldDescription:
		return a.Description
	}
	return ""
}

// Set stores value under a field key. Unknown keys are ignored.
func (a *AttributeRecord) Set(field, value string) {
	switch field {
	case FieldColorPalette:
		a.ColorPalette = value
	case FieldIconography:
		a.Iconography = value
	case FieldBrandStyle:
		a.BrandStyle = value
	case FieldGradientUsage:
		a.GradientUsage = value
	case FieldImagery:
		a.Imagery = value
	case FieldShadowAndDepth:
		a.ShadowAndDepth = value
	case FieldLineThickness:
		a.LineThickness = value
	case FieldCornerRounding:
		a.CornerRounding = value
	case FieldDescription:
		a.Description = value
	}
}

// Visual joins the non-empty visual fields in VisualFields order.
func (a AttributeRecord) Visual() string {
	parts := make([]string, 0, len(VisualFields))
	for _, f := range VisualFields {
		if v := a.Get(f); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// ColorResolution is the outcome of mapping a free-text color onto the
// color vocabulary.
type ColorResolution struct {
	ResolvedColor string `json:"resolved_color"`
	IsExactMatch  bool   `json:"is_exact_match"`
}

// ColorShapeMatch is the answer of the color/shape extraction call. Either
// field may be empty when the query does not mention it.
type ColorShapeMatch struct {
	Color string `json:"color"`
	Shape string `json:"shape"`
}

// Overrides carries filter values that take precedence over the ones
// derived from an AttributeRecord.
type Overrides struct {
	Color *ColorResolution
	Shape string
}

// Filters is the persisted form of the overrides a project's icons were
// fetched with.
type Filters struct {
	Color string `json:"color,omitempty"`
	Shape string `json:"shape,omitempty"`
}

// Overrides converts persisted filters back into query overrides.
func (f Filters) Overrides() Overrides {
	ov := Overrides{Shape: f.Shape}
	if f.Color != "" {
		ov.Color = &ColorResolution{ResolvedColor: f.Color, IsExactMatch: true}
	}
	return ov
}

// SearchRequest is a single query against the icon search service.
type SearchRequest struct {
	Term          string
	Color         string
	Shape         string
	Order         string
	Page          int
	PerPage       int
	ThumbnailSize int
}

// IconResult is one icon returned by the search service.
type IconResult struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Project is the top-level entity a user works on.
type Project struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Owner      string          `json:"-"`
	Attributes AttributeRecord `json:"attributes"`
	Filters    Filters         `json:"filters"`
	Icons      []IconResult    `json:"f_icons"`
	ScreenLink string          `json:"screen_link"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ProjectSummary is the list view of a project.
type ProjectSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// HistorySnapshot is an immutable copy of a project's state taken before an
// update.
type HistorySnapshot struct {
	ID         string          `json:"history_id"`
	ProjectID  string          `json:"id"`
	Name       string          `json:"name"`
	Attributes AttributeRecord `json:"attributes"`
	Filters    Filters         `json:"filters"`
	Icons      []IconResult    `json:"f_icons"`
	CapturedAt time.Time       `json:"history_date"`
}

// Capacity bounds enforced by the project store.
const (
	MaxProjectsPerOwner    = 5
	MaxSnapshotsPerProject = 5
)

// DefaultProjectName is the base for auto-generated project names.
const DefaultProjectName = "Untitled"

// DesignImage is a design to extract attributes from. SourceURL is set when
// the image was fetched from a remote design tool.
type DesignImage struct {
	Data        []byte
	ContentType string
	SourceURL   string
}
