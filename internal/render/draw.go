package render

import (
	"math"

	"spinwheel/internal/wheel"
)

// Draw repaints the surface with one wedge per label. Slices follow the wheel
// package's geometry so the pointer lookup and the picture agree.
func Draw(s Surface, labels []string, style Style) {
	s.Clear()
	n := len(labels)
	if n == 0 {
		return
	}

	cx := float64(s.Width()) / 2
	cy := float64(s.Height()) / 2
	radius := math.Min(cx, cy)

	for i, label := range labels {
		startDeg, endDeg := wheel.SliceBounds(i, n)
		start, end := wheel.Radians(startDeg), wheel.Radians(endDeg)

		s.MoveTo(cx, cy)
		s.Arc(cx, cy, radius, start, end)
		s.LineTo(cx, cy)
		s.ClosePath()
		s.SetFillColor(style.SliceColor(i))
		s.FillPreserve()
		s.SetLineWidth(style.DividerWidth)
		s.SetStrokeColor(style.Divider)
		s.Stroke()

		s.Push()
		s.Translate(cx, cy)
		s.Rotate(wheel.Radians(wheel.SliceMidpoint(i, n)))
		text := wheel.Truncate(label)
		x := radius - style.LabelInset
		if style.LabelShadow != nil {
			s.SetFillColor(style.LabelShadow)
			s.FillTextRight(text, x+1, 1)
		}
		s.SetFillColor(style.Label)
		s.FillTextRight(text, x, 0)
		s.Pop()
	}
}
