package geometry

import "math"

// Snap steps in degrees applied while Ctrl (and optionally Shift) is held.
const (
	SnapStep      = 5.0
	SnapStepShift = 10.0
)

// CalcBearing returns the bearing from center to point in degrees, clockwise
// from +Y (north), normalized to [0, 360).
//
// When point equals center the direction is undefined and 0 is returned;
// callers must not rely on the value in that case.
func CalcBearing(center, point Point) float64 {
	dx := point.X - center.X
	dy := point.Y - center.Y
	az := math.Atan2(dx, dy) * 180 / math.Pi

	return math.Mod(az+360, 360)
}

// SnapBearing rounds bearing to the nearest multiple of the snap step when
// ctrl is held: 5 degrees, or 10 degrees with shift. Ties round half to even
// (7.5 -> 10, 12.5 -> 10).
//
// The result is not wrapped: 358 snaps to 360. Use NormalizeBearing when the
// value has to stay inside [0, 360).
func SnapBearing(bearing float64, ctrl, shift bool) float64 {
	if !ctrl {
		return bearing
	}
	step := SnapStep
	if shift {
		step = SnapStepShift
	}

	return math.RoundToEven(bearing/step) * step
}

// NormalizeBearing wraps any angle into [0, 360).
func NormalizeBearing(bearing float64) float64 {
	b := math.Mod(bearing, 360)
	if b < 0 {
		b += 360
	}
	if b == 360 { // -0.0000001 + 360 rounds up
		b = 0
	}

	return b
}

// SnapToStep rounds value to the nearest multiple of step. Non-positive
// steps leave the value unchanged.
func SnapToStep(value, step float64) float64 {
	if step <= 0 {
		return value
	}

	return math.RoundToEven(value/step) * step
}
