package domain

import "strings"

// FallbackColor is returned when no resolver stage matches.
const FallbackColor = "gray"

// ColorVocabulary is the closed set of color filter values accepted by the
// icon search service. The first entry is the fallback.
var ColorVocabulary = []string{
	FallbackColor,
	"gradient",
	"solid-black",
	"multicolor",
	"azure",
	"black",
	"blue",
	"chartreuse",
	"cyan",
	"green",
	"orange",
	"red",
	"rose",
	"spring-green",
	"violet",
	"white",
	"yellow",
}

// ShapeVocabulary is the closed set of shape filter values.
var ShapeVocabulary = []string{
	"outline",
	"fill",
	"lineal-color",
	"hand-drawn",
}

// LookupColor returns the vocabulary entry equal to s ignoring case.
func LookupColor(s string) (string, bool) {
	return lookup(ColorVocabulary, s)
}

// LookupShape returns the vocabulary entry equal to s ignoring case.
func LookupShape(s string) (string, bool) {
	return lookup(ShapeVocabulary, s)
}

func lookup(vocab []string, s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, v := range vocab {
		if strings.EqualFold(v, s) {
			return v, true
		}
	}
	return "", false
}
