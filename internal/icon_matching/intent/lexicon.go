package intent

import (
	"regexp"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
)

// phrases joins multi-word terms into single hyphenated tokens before the
// query is split.
var phrases = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)\bhand[\s_]+drawn\b`), "hand-drawn"},
	{regexp.MustCompile(`(?i)\blineal[\s_]+colou?r(ed)?\b`), "lineal-color"},
	{regexp.MustCompile(`(?i)\bspring[\s_]+green\b`), "spring-green"},
	{regexp.MustCompile(`(?i)\bsolid[\s_]+black\b`), "solid-black"},
	{regexp.MustCompile(`(?i)\bmulti[\s_-]+colou?r(ed)?\b`), "multicolor"},
}

// extraColors are color words outside the vocabulary that still mark a
// color request.
var extraColors = []string{
	"grey", "pink", "purple", "magenta", "brown", "beige", "navy", "teal",
	"turquoise", "maroon", "gold", "golden", "silver", "lime", "indigo",
	"lavender", "peach", "coral", "olive", "tan", "salmon", "crimson", "aqua",
	"mint", "amber", "scarlet", "cream", "ivory", "charcoal", "emerald",
	"sky", "monochrome", "colorful", "colourful", "pastel", "neon",
}

// shapeTerms maps shape words to their vocabulary entry.
var shapeTerms = map[string]string{
	"outline":      "outline",
	"outlined":     "outline",
	"outlines":     "outline",
	"fill":         "fill",
	"filled":       "fill",
	"fills":        "fill",
	"solid-fill":   "fill",
	"lineal":       "lineal-color",
	"lineal-color": "lineal-color",
	"hand-drawn":   "hand-drawn",
	"handdrawn":    "hand-drawn",
	"sketched":     "hand-drawn",
	"sketchy":      "hand-drawn",
	"doodle":       "hand-drawn",
}

// fillers carry no attribute meaning on their own.
var fillers = []string{
	"make", "it", "its", "them", "they", "the", "icon", "icons", "a", "an",
	"to", "in", "into", "be", "is", "are", "color", "colour", "colors",
	"colours", "colored", "coloured", "change", "set", "turn", "use", "switch",
	"please", "style", "styled", "shape", "shapes", "more", "all", "with",
	"want", "i", "would", "like", "me", "show", "give", "can", "you", "could",
	"instead", "only", "just", "version", "versions", "same", "but", "look",
	"looking", "and", "of", "now", "some", "these", "those", "this", "that",
	"light", "dark", "bright", "pale", "deep", "soft", "ones", "one", "let",
	"lets", "try", "should", "do", "go", "for", "tone", "shade", "hue",
	"it's", "that's", "let's", "they're", "i'd", "i'm", "we're", "you're",
}

var (
	colorWords  = map[string]bool{}
	fillerWords = map[string]bool{}
)

func init() {
	for _, c := range domain.ColorVocabulary {
		colorWords[c] = true
	}
	for _, c := range extraColors {
		colorWords[c] = true
	}
	for _, f := range fillers {
		fillerWords[f] = true
	}
	for _, s := range domain.ShapeVocabulary {
		shapeTerms[s] = s
	}
}
