package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// DefaultPalette is the slice colour cycle.
var DefaultPalette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#F9A52B", "#9B5DE5",
	"#F15BB5", "#00BBF9", "#00F5D4", "#FEE440", "#E56B6F",
}

// Style controls wheel colours and label placement.
type Style struct {
	Palette      []color.Color
	Divider      color.Color
	DividerWidth float64
	Label        color.Color
	LabelShadow  color.Color
	LabelInset   float64
}

// NewStyle builds the default style with the given palette. An empty palette
// keeps DefaultPalette.
func NewStyle(palette []string) (Style, error) {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	colors := make([]color.Color, 0, len(palette))
	for _, hex := range palette {
		c, err := ParseHex(hex)
		if err != nil {
			return Style{}, err
		}
		colors = append(colors, c)
	}
	return Style{
		Palette:      colors,
		Divider:      color.NRGBA{R: 255, G: 255, B: 255, A: 38},
		DividerWidth: 2,
		Label:        color.White,
		LabelShadow:  color.NRGBA{A: 102},
		LabelInset:   30,
	}, nil
}

// DefaultStyle is NewStyle(DefaultPalette).
func DefaultStyle() Style {
	s, err := NewStyle(DefaultPalette)
	if err != nil {
		panic(err)
	}
	return s
}

// SliceColor returns the palette colour for slice i.
func (s Style) SliceColor(i int) color.Color {
	if len(s.Palette) == 0 {
		return color.Black
	}
	return s.Palette[i%len(s.Palette)]
}

// ParseHex parses #RGB or #RRGGBB.
func ParseHex(hex string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
