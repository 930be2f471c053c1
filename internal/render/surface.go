// Package render paints the wheel onto a 2D drawing surface.
package render

import "image/color"

// Surface is a canvas-like drawing target with fixed pixel dimensions.
// Angles are in radians, zero on the positive x-axis, growing clockwise with
// y pointing down.
type Surface interface {
	Width() int
	Height() int
	Clear()

	MoveTo(x, y float64)
	LineTo(x, y float64)
	Arc(x, y, r, start, end float64)
	ClosePath()

	SetFillColor(c color.Color)
	SetStrokeColor(c color.Color)
	SetLineWidth(w float64)
	FillPreserve()
	Stroke()

	Push()
	Pop()
	Translate(x, y float64)
	Rotate(angle float64)

	// FillTextRight draws text right-aligned at x and vertically centred on y.
	FillTextRight(text string, x, y float64)
}
