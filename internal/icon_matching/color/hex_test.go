package color

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
)

func TestHexToName(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"#0000FF", "blue", true},
		{"0000ff", "blue", true},
		{"#fff", "white", true},
		{"#00ffff", "cyan", true},
		{"#800080", "purple", true},
		{"#123456", "", false},
		{"#zzzzzz", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := HexToName(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFromHex(t *testing.T) {
	got, ok := FromHex("#FF0000")
	assert.True(t, ok)
	assert.Equal(t, domain.ColorResolution{ResolvedColor: "red", IsExactMatch: true}, got)

	_, ok = FromHex("#800080")
	assert.False(t, ok, "purple is not a vocabulary color")
}
