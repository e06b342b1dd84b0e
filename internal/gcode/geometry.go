package gcode

import (
	"iter"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/piwi3910/kcalibrator/internal/model"
)

// DefaultArcSegments is the number of samples per rounded brim corner.
const DefaultArcSegments = 50

// Rectangle returns the corners of a rectangle centered on center, in the
// order bottom-left, top-left, top-right, bottom-right.
func Rectangle(center mgl64.Vec2, size model.Size2D) [4]mgl64.Vec2 {
	hx, hy := size.X/2, size.Y/2
	return [4]mgl64.Vec2{
		{center.X() - hx, center.Y() - hy},
		{center.X() - hx, center.Y() + hy},
		{center.X() + hx, center.Y() + hy},
		{center.X() + hx, center.Y() - hy},
	}
}

// Distance is the Euclidean distance between two positions.
func Distance(a, b mgl64.Vec3) float64 {
	return b.Sub(a).Len()
}

// MoveAbsolute returns pos with its leading axes overwritten by coords
// (X, then Y, then Z). Coordinates beyond Z are ignored.
func MoveAbsolute(pos mgl64.Vec3, coords ...float64) mgl64.Vec3 {
	for i, c := range coords {
		if i >= len(pos) {
			break
		}
		pos[i] = c
	}
	return pos
}

// MoveRelative returns pos with deltas added to its leading axes.
// Deltas beyond Z are ignored.
func MoveRelative(pos mgl64.Vec3, deltas ...float64) mgl64.Vec3 {
	for i, d := range deltas {
		if i >= len(pos) {
			break
		}
		pos[i] += d
	}
	return pos
}

// FloatRange yields start, start+step, ... up to but excluding stop.
// A positive step counts up, a negative step counts down. The caller must
// pick the sign of step to match stop-start: a mismatched or zero step
// never terminates.
func FloatRange(start, stop, step float64) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		for v := start; ; v += step {
			if (step > 0 && v >= stop) || (step < 0 && v <= stop) {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// CornerArc samples a quarter circle of the given radius clockwise from
// startAngle. The arc's end point is not included.
func CornerArc(startAngle, radius float64, center mgl64.Vec2, segments int) []mgl64.Vec2 {
	points := make([]mgl64.Vec2, 0, segments)
	for k := 0; k < segments; k++ {
		angle := startAngle - (float64(k)/float64(segments))*math.Pi/2
		points = append(points, mgl64.Vec2{
			center.X() + math.Cos(angle)*radius,
			center.Y() + math.Sin(angle)*radius,
		})
	}
	return points
}
