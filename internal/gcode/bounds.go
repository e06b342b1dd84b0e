package gcode

import (
	"fmt"
	"math"

	"github.com/piwi3910/kcalibrator/internal/model"
)

// BoundsViolation is a printing move that ends outside the printable bed.
type BoundsViolation struct {
	Line      int // source line of the move
	X, Y, Z   float64
	K         float64 // pressure advance in effect
	Overshoot float64 // distance outside the bed, mm
}

// CheckBedBounds reports printing moves that leave the bed: the rectangle
// [0,BedSize.X]x[0,BedSize.Y] for cartesian printers, or the circle of
// diameter min(BedSize) around the origin for deltas. At most one violation
// per layer height is reported.
func CheckBedBounds(moves []Move, cfg model.Config) []BoundsViolation {
	var violations []BoundsViolation

	for _, m := range moves {
		if m.Type != MovePrint {
			continue
		}
		x, y := m.To.X(), m.To.Y()
		var out float64
		if cfg.IsDelta() {
			out = distanceOutsideCircle(x, y, math.Min(cfg.BedSize.X, cfg.BedSize.Y)/2)
		} else {
			out = distanceOutsideRect(x, y, cfg.BedSize.X, cfg.BedSize.Y)
		}
		if out > 1e-9 {
			violations = append(violations, BoundsViolation{
				Line:      m.Line,
				X:         x,
				Y:         y,
				Z:         m.To.Z(),
				K:         m.K,
				Overshoot: out,
			})
		}
	}

	return deduplicateViolations(violations)
}

// distanceOutsideRect computes the distance from (px, py) to the rectangle
// spanning (0,0)-(w,h). Returns 0 if the point is inside.
func distanceOutsideRect(px, py, w, h float64) float64 {
	nearestX := math.Max(0, math.Min(px, w))
	nearestY := math.Max(0, math.Min(py, h))

	dx := px - nearestX
	dy := py - nearestY

	return math.Sqrt(dx*dx + dy*dy)
}

// distanceOutsideCircle computes how far (px, py) lies outside the circle of
// radius r around the origin.
func distanceOutsideCircle(px, py, r float64) float64 {
	return math.Max(0, math.Hypot(px, py)-r)
}

// deduplicateViolations keeps the first violation of every layer height.
func deduplicateViolations(violations []BoundsViolation) []BoundsViolation {
	seen := make(map[int64]bool)
	var result []BoundsViolation

	for _, v := range violations {
		key := int64(math.Round(v.Z * 1e4))
		if !seen[key] {
			seen[key] = true
			result = append(result, v)
		}
	}
	return result
}

// FormatViolations produces human-readable warning messages.
func FormatViolations(violations []BoundsViolation) []string {
	var warnings []string
	for _, v := range violations {
		warnings = append(warnings, fmt.Sprintf(
			"line %d: print move at Z=%.3f (K=%.3f) ends outside the bed at (%.2f, %.2f), %.2f mm over",
			v.Line, v.Z, v.K, v.X, v.Y, v.Overshoot,
		))
	}
	return warnings
}
