package color

import (
	"context"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
	"github.com/iconsmith/iconsmith-backend/internal/logger"
)

// Classifier picks one of allowed for text. Implementations must only
// return members of allowed.
type Classifier interface {
	Classify(ctx context.Context, text string, allowed []string) (string, error)
}

// ExactStage matches the whole input against the vocabulary, ignoring case.
func ExactStage() Stage {
	return Named("exact", func(_ context.Context, input string) (domain.ColorResolution, bool) {
		if v, ok := domain.LookupColor(input); ok {
			return domain.ColorResolution{ResolvedColor: v, IsExactMatch: true}, true
		}
		return domain.ColorResolution{}, false
	})
}

// FuzzyStage looks for vocabulary entries in the words of input: whole
// words first, then hyphen parts and modifier compounds, then small edit
// distances. Results are never exact.
func FuzzyStage() Stage {
	return Named("fuzzy", func(_ context.Context, input string) (domain.ColorResolution, bool) {
		if v, ok := closest(candidates(input)); ok {
			return domain.ColorResolution{ResolvedColor: v}, true
		}
		return domain.ColorResolution{}, false
	})
}

// ClassifierStage asks an external classifier to choose a vocabulary entry.
// Classifier failures and out-of-vocabulary answers are swallowed.
func ClassifierStage(c Classifier) Stage {
	return Named("classifier", func(ctx context.Context, input string) (domain.ColorResolution, bool) {
		answer, err := c.Classify(ctx, input, domain.ColorVocabulary)
		if err != nil {
			logger.FromContext(ctx).Warn("color classifier failed", "input", input, "error", err)
			return domain.ColorResolution{}, false
		}
		v, ok := domain.LookupColor(answer)
		if !ok {
			logger.FromContext(ctx).Warn("color classifier answered outside vocabulary",
				"input", input, "answer", answer)
			return domain.ColorResolution{}, false
		}
		return domain.ColorResolution{
			ResolvedColor: v,
			IsExactMatch:  strings.EqualFold(strings.TrimSpace(input), v),
		}, true
	})
}

// candidates splits input into lower-case words, with adjacent pairs
// joined by a hyphen ahead of the single words ("spring green" →
// "spring-green").
func candidates(input string) []string {
	words := strings.FieldsFunc(strings.ToLower(input), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	})
	out := make([]string, 0, len(words)*2)
	for i := 0; i+1 < len(words); i++ {
		out = append(out, words[i]+"-"+words[i+1])
	}
	return append(out, words...)
}

func closest(words []string) (string, bool) {
	for _, w := range words {
		if v, ok := domain.LookupColor(w); ok {
			return v, true
		}
	}

	for _, w := range words {
		if v, ok := contained(w); ok {
			return v, true
		}
	}

	best, bestDist := "", -1
	for _, w := range words {
		limit := maxDistance(w)
		if limit == 0 {
			continue
		}
		for _, v := range domain.ColorVocabulary {
			d := levenshtein.ComputeDistance(w, v)
			if d <= limit && (bestDist < 0 || d < bestDist) {
				best, bestDist = v, d
			}
		}
	}
	return best, bestDist >= 0
}

// Modifiers that may be glued onto a color word ("lightblue", "reddish").
var (
	colorPrefixes = []string{"light", "dark", "deep", "pale", "bright", "soft", "pastel", "neon", "sky"}
	colorSuffixes = []string{"ish", "dish"}
)

// contained finds a vocabulary entry that is a hyphen part of w, or a part
// glued to a known modifier. The longest entry wins.
func contained(w string) (string, bool) {
	best := ""
	for _, part := range strings.Split(w, "-") {
		for _, v := range domain.ColorVocabulary {
			if len(v) > len(best) && isModified(part, v) {
				best = v
			}
		}
	}
	return best, best != ""
}

func isModified(part, color string) bool {
	if part == color {
		return true
	}
	for _, p := range colorPrefixes {
		if part == p+color {
			return true
		}
	}
	for _, s := range colorSuffixes {
		if part == color+s {
			return true
		}
	}
	return false
}

func maxDistance(word string) int {
	switch n := len(word); {
	case n < 4:
		return 0
	case n <= 6:
		return 1
	default:
		return 2
	}
}
