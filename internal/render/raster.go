package render

import (
	"fmt"
	"image/color"
	"io"

	"github.com/fogleman/gg"
)

const (
	// referenceSize is the canvas size the label font size is tuned for.
	referenceSize = 500
	labelPoints   = 24
)

// Raster is a Surface backed by an in-memory RGBA image.
type Raster struct {
	dc     *gg.Context
	fill   color.Color
	stroke color.Color
}

// NewRaster creates a size×size raster. fontPath points at a TrueType font;
// empty keeps gg's built-in bitmap face, which only covers ASCII.
func NewRaster(size int, fontPath string) (*Raster, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid raster size %d", size)
	}
	dc := gg.NewContext(size, size)
	if fontPath != "" {
		points := float64(labelPoints) * float64(size) / referenceSize
		if err := dc.LoadFontFace(fontPath, points); err != nil {
			return nil, fmt.Errorf("load font %s: %w", fontPath, err)
		}
	}
	return &Raster{dc: dc, fill: color.Black, stroke: color.Black}, nil
}

func (r *Raster) Width() int  { return r.dc.Width() }
func (r *Raster) Height() int { return r.dc.Height() }

func (r *Raster) Clear() {
	r.dc.ClearPath()
	r.dc.SetColor(color.Transparent)
	r.dc.Clear()
}

func (r *Raster) MoveTo(x, y float64) { r.dc.MoveTo(x, y) }
func (r *Raster) LineTo(x, y float64) { r.dc.LineTo(x, y) }
func (r *Raster) ClosePath()          { r.dc.ClosePath() }

func (r *Raster) Arc(x, y, radius, start, end float64) {
	r.dc.DrawArc(x, y, radius, start, end)
}

func (r *Raster) SetFillColor(c color.Color)   { r.fill = c }
func (r *Raster) SetStrokeColor(c color.Color) { r.stroke = c }
func (r *Raster) SetLineWidth(w float64)       { r.dc.SetLineWidth(w) }

func (r *Raster) FillPreserve() {
	r.dc.SetFillStyle(gg.NewSolidPattern(r.fill))
	r.dc.FillPreserve()
}

func (r *Raster) Stroke() {
	r.dc.SetStrokeStyle(gg.NewSolidPattern(r.stroke))
	r.dc.Stroke()
}

func (r *Raster) Push()                  { r.dc.Push() }
func (r *Raster) Pop()                   { r.dc.Pop() }
func (r *Raster) Translate(x, y float64) { r.dc.Translate(x, y) }
func (r *Raster) Rotate(angle float64)   { r.dc.Rotate(angle) }

func (r *Raster) FillTextRight(text string, x, y float64) {
	r.dc.SetColor(r.fill)
	r.dc.DrawStringAnchored(text, x, y, 1, 0.5)
}

// EncodePNG writes the raster as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return r.dc.EncodePNG(w)
}

// Renderer draws wheels at request time.
type Renderer struct {
	Style    Style
	FontPath string
}

// RenderPNG draws labels on a fresh size×size raster and writes it as PNG.
func (rd Renderer) RenderPNG(w io.Writer, labels []string, size int) error {
	raster, err := NewRaster(size, rd.FontPath)
	if err != nil {
		return err
	}
	Draw(raster, labels, rd.Style)
	return raster.EncodePNG(w)
}
