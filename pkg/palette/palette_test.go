package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPalette_KnownDiscriminators(t *testing.T) {
	p := Default()

	tests := []struct {
		discriminator string
		expected      string
	}{
		{"revenue", Indigo},
		{"sales", Emerald},
		{"2024", Indigo},
		{"2023", Emerald},
		{"2022", Amber},
		{"Referral", Blue},
	}

	for _, tt := range tests {
		t.Run(tt.discriminator, func(t *testing.T) {
			assert.True(t, p.Known(tt.discriminator))
			assert.Equal(t, tt.expected, p.Color(tt.discriminator))
		})
	}
}

func TestPalette_UnknownFallsBack(t *testing.T) {
	p := Default()
	assert.False(t, p.Known("2019"))
	assert.Equal(t, DefaultColor, p.Color("2019"))
	assert.Equal(t, DefaultColor, p.Color(""))
}

func TestPalette_CustomFallback(t *testing.T) {
	p := New(map[string]string{"a": Rose}, "#000000")
	assert.Equal(t, Rose, p.Color("a"))
	assert.Equal(t, "#000000", p.Color("b"))
	assert.Equal(t, "#000000", p.Fallback())
}

func TestNew_CopiesInput(t *testing.T) {
	colors := map[string]string{"a": Rose}
	p := New(colors, "")
	colors["a"] = Blue

	assert.Equal(t, Rose, p.Color("a"))
	assert.Equal(t, DefaultColor, p.Fallback())
}
