// Package intent sorts follow-up queries into color, shape or general
// refinements.
package intent

import (
	"strings"
	"unicode"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
)

type Path string

const (
	PathColor   Path = "color"
	PathShape   Path = "shape"
	PathGeneral Path = "general"
)

// Result is the outcome of Classify. ColorHint is the first vocabulary color
// in the query, or its first color word when it names none ("sky blue" gives
// "blue"). ShapeHint is the first canonical shape. Both are set whatever the
// path.
type Result struct {
	Path      Path   `json:"path"`
	ColorHint string `json:"color_hint,omitempty"`
	ShapeHint string `json:"shape_hint,omitempty"`
}

// Classify inspects the words of query. A query that names both a color and
// a shape, or says anything beyond a bare color or shape, is general.
func Classify(query string) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, domain.InvalidInput("query is required")
	}

	var (
		res         Result
		descriptive bool
	)
	for _, w := range words(query) {
		switch {
		case colorWords[w]:
			if res.ColorHint == "" || (!inVocabulary(res.ColorHint) && inVocabulary(w)) {
				res.ColorHint = w
			}
		case shapeTerms[w] != "":
			if res.ShapeHint == "" {
				res.ShapeHint = shapeTerms[w]
			}
		case fillerWords[w]:
		default:
			descriptive = true
		}
	}

	switch {
	case descriptive, res.ColorHint != "" && res.ShapeHint != "":
		res.Path = PathGeneral
	case res.ColorHint != "":
		res.Path = PathColor
	case res.ShapeHint != "":
		res.Path = PathShape
	default:
		res.Path = PathGeneral
	}
	return res, nil
}

// CanonicalShape maps a shape word to its vocabulary entry.
func CanonicalShape(word string) (string, bool) {
	s, ok := shapeTerms[strings.ToLower(strings.TrimSpace(word))]
	return s, ok
}

func inVocabulary(color string) bool {
	_, ok := domain.LookupColor(color)
	return ok
}

var quotes = strings.NewReplacer("\u2019", "'", "\u2018", "'")

func words(query string) []string {
	query = quotes.Replace(query)
	for _, p := range phrases {
		query = p.re.ReplaceAllString(query, p.repl)
	}
	return strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-' && r != '\''
	})
}
