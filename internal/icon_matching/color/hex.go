package color

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
)

// HexToName returns the CSS color name whose value equals hex exactly
// ("#00f", "0000ff" and "#0000FF" are accepted). Vocabulary names win when a
// value has several names.
func HexToName(hex string) (string, bool) {
	c, err := parseHex(hex)
	if err != nil {
		return "", false
	}

	var names []string
	for name, v := range colornames.Map {
		if v == c {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", false
	}
	sort.Strings(names)
	for _, n := range names {
		if _, ok := domain.LookupColor(n); ok {
			return n, true
		}
	}
	return names[0], true
}

// FromHex turns a hex color into an exact resolution when its CSS name is a
// vocabulary member.
func FromHex(hex string) (domain.ColorResolution, bool) {
	name, ok := HexToName(hex)
	if !ok {
		return domain.ColorResolution{}, false
	}
	v, ok := domain.LookupColor(name)
	if !ok {
		return domain.ColorResolution{}, false
	}
	return domain.ColorResolution{ResolvedColor: v, IsExactMatch: true}, true
}

func parseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(strings.ToLower(s)), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
