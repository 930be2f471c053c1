package wheel

import "math"

// Angles are in degrees. Zero is the positive x-axis and angles grow
// clockwise in screen space (y down), which is also how the renderer lays
// slices out. Slice i of n covers [i*span, (i+1)*span).
//
// The pointer sits at the top of the wheel, i.e. PointerAngle in that same
// frame. Drawing order, rotation sign and PointerAngle are coupled: change
// one and winners are looked up against the wrong slice. Both the renderer
// and WinnerIndex go through this file so there is a single definition.
const (
	FullTurn     = 360.0
	PointerAngle = 270.0
)

// SliceSpan returns the angular width of one slice.
func SliceSpan(count int) float64 {
	if count <= 0 {
		return 0
	}
	return FullTurn / float64(count)
}

// SliceBounds returns the start and end angle of slice i.
func SliceBounds(i, count int) (start, end float64) {
	span := SliceSpan(count)
	start = float64(i) * span
	return start, start + span
}

// SliceMidpoint returns the angle halfway through slice i.
func SliceMidpoint(i, count int) float64 {
	start, end := SliceBounds(i, count)
	return (start + end) / 2
}

// Normalize maps any angle into [0, 360).
func Normalize(angle float64) float64 {
	a := math.Mod(angle, FullTurn)
	if a < 0 {
		a += FullTurn
	}
	if a >= FullTurn {
		// math.Mod of a tiny negative value can round up to exactly 360.
		a = 0
	}
	return a
}

// SliceIndexForAngle returns the slice containing angle on an unrotated
// wheel. The result is clamped to [0, count-1] so rounding at the 360/0
// boundary never yields count.
func SliceIndexForAngle(angle float64, count int) int {
	if count <= 0 {
		return 0
	}
	idx := int(math.Floor(Normalize(angle) / SliceSpan(count)))
	if idx < 0 {
		return 0
	}
	if idx > count-1 {
		return count - 1
	}
	return idx
}

// EffectivePointerAngle returns where the fixed pointer lands on the
// unrotated wheel after it has turned rotation degrees clockwise.
func EffectivePointerAngle(rotation float64) float64 {
	return Normalize(PointerAngle - Normalize(rotation))
}

// WinnerIndex returns the slice under the pointer for a cumulative rotation.
func WinnerIndex(rotation float64, count int) int {
	return SliceIndexForAngle(EffectivePointerAngle(rotation), count)
}

// Radians converts degrees for drawing APIs.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}
