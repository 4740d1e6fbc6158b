// Package palette assigns stable display colors to metric discriminators.
package palette

// DefaultColor is used for discriminators the palette does not know
const DefaultColor = "#94a3b8"

const (
	Indigo  = "#6366f1"
	Emerald = "#10b981"
	Amber   = "#f59e0b"
	Blue    = "#3b82f6"
	Rose    = "#f43f5e"
	Slate   = "#64748b"
)

// Palette is a fixed mapping from discriminator to color
type Palette struct {
	colors   map[string]string
	fallback string
}

// New creates a palette from a discriminator -> color map.
// The map is copied; later changes to it do not affect the palette.
func New(colors map[string]string, fallback string) *Palette {
	if fallback == "" {
		fallback = DefaultColor
	}
	c := make(map[string]string, len(colors))
	for k, v := range colors {
		c[k] = v
	}
	return &Palette{colors: c, fallback: fallback}
}

// Default returns the dashboard palette covering every built-in discriminator
func Default() *Palette {
	return New(map[string]string{
		// sales/revenue rows
		"revenue": Indigo,
		"sales":   Emerald,
		"target":  Slate,
		// year-over-year groups
		"2024": Indigo,
		"2023": Emerald,
		"2022": Amber,
		// acquisition channels
		"Direct":   Indigo,
		"Social":   Emerald,
		"Ads":      Amber,
		"Referral": Blue,
	}, DefaultColor)
}

// Color returns the color for a discriminator, or the fallback color
func (p *Palette) Color(discriminator string) string {
	if c, ok := p.colors[discriminator]; ok {
		return c
	}
	return p.fallback
}

// Known reports whether the discriminator has an assigned color
func (p *Palette) Known(discriminator string) bool {
	_, ok := p.colors[discriminator]
	return ok
}

// Fallback returns the color used for unknown discriminators
func (p *Palette) Fallback() string {
	return p.fallback
}
