package gcode

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/piwi3910/kcalibrator/internal/model"
)

// BrimLineFactor scales the line width to get the spacing of first layer rings.
const BrimLineFactor = 0.9

// Segment is one straight printed move of a pass.
type Segment struct {
	To    mgl64.Vec2
	Speed float64 // mm/s
}

// Pass is one closed perimeter of a test tower layer.
type Pass struct {
	Entry    mgl64.Vec2
	Segments []Segment
}

// BedCenter returns the center of the print area: the middle of the bed for
// cartesian printers and the origin for deltas.
func BedCenter(cfg model.Config) mgl64.Vec2 {
	if cfg.IsDelta() {
		return mgl64.Vec2{0, 0}
	}
	return mgl64.Vec2{cfg.BedSize.X / 2, cfg.BedSize.Y / 2}
}

// Purge line placement, in mm.
const (
	purgeX      = 1.0
	purgeMargin = 10.0
)

// PurgeLine returns the ends of the first purge line and the offset of the
// second one, which is printed back from to+offset to from+offset.
// Cartesian beds purge along the left edge. Deltas purge along a chord near
// the front of the round bed, clear of the pattern and purgeMargin/2 inside
// the edge.
func PurgeLine(cfg model.Config) (from, to, offset mgl64.Vec2) {
	if !cfg.IsDelta() {
		return mgl64.Vec2{purgeX, purgeMargin},
			mgl64.Vec2{purgeX, cfg.BedSize.Y - purgeMargin},
			mgl64.Vec2{cfg.LineWidth, 0}
	}

	r := math.Min(cfg.BedSize.X, cfg.BedSize.Y) / 2
	y := -math.Max(0, r-purgeMargin)
	inner := math.Max(0, r-purgeMargin/2)
	half := math.Sqrt(math.Max(0, inner*inner-y*y))
	return mgl64.Vec2{-half, y}, mgl64.Vec2{half, y}, mgl64.Vec2{0, cfg.LineWidth}
}

// BrimRing returns the closed loop of first layer ring index around the
// rectangle of the given size. Positive indices lie outside the rectangle
// and get corners rounded with a radius of index*ringWidth; index 0 and
// below are plain rectangles inset by the same step.
//
// The loop is printed by traveling to its last point and then visiting every
// point in order.
func BrimRing(center mgl64.Vec2, size model.Size2D, index int, ringWidth float64) []mgl64.Vec2 {
	grow := 2 * float64(index) * ringWidth
	rect := Rectangle(center, model.Size2D{X: size.X + grow, Y: size.Y + grow})
	if index <= 0 {
		return rect[:]
	}

	r := float64(index) * ringWidth
	loop := []mgl64.Vec2{{rect[3].X() - r, rect[3].Y()}}
	loop = append(loop, CornerArc(-math.Pi/2, r, mgl64.Vec2{rect[0].X() + r, rect[0].Y() + r}, DefaultArcSegments)...)
	loop = append(loop, CornerArc(math.Pi, r, mgl64.Vec2{rect[1].X() + r, rect[1].Y() - r}, DefaultArcSegments)...)
	loop = append(loop, CornerArc(math.Pi/2, r, mgl64.Vec2{rect[2].X() - r, rect[2].Y() - r}, DefaultArcSegments)...)
	loop = append(loop, CornerArc(0, r, mgl64.Vec2{rect[3].X() - r, rect[3].Y() + r}, DefaultArcSegments)...)
	return loop
}

// FirstLayerRings returns the rings of the first layer from the outermost
// brim ring inwards.
func FirstLayerRings(cfg model.Config) [][]mgl64.Vec2 {
	center := BedCenter(cfg)
	ringWidth := cfg.LineWidth * BrimLineFactor

	var rings [][]mgl64.Vec2
	for i := cfg.BrimRings; i > -cfg.InnerRings-1; i-- {
		rings = append(rings, BrimRing(center, cfg.PatternSize, i, ringWidth))
	}
	return rings
}

// TowerPass builds one perimeter of the test tower. The pass starts at the
// middle of the top edge and runs counter-clockwise, alternating between the
// slow and fast speeds so the speed changes and corners show pressure
// artefacts.
func TowerPass(center mgl64.Vec2, size model.Size2D, cfg model.Config) Pass {
	c := Rectangle(center, size)
	left, right := c[0].X(), c[2].X()
	bottom, top := c[0].Y(), c[1].Y()
	midY := bottom + size.Y/2

	fr := cfg.PathSpeedFractions
	slow, fast := cfg.SpeedSlow, cfg.SpeedFast

	return Pass{
		Entry: mgl64.Vec2{center.X(), center.Y() + size.Y/2},
		Segments: []Segment{
			{mgl64.Vec2{left + size.X*fr[0], top}, slow},
			{mgl64.Vec2{left, top}, fast},
			{mgl64.Vec2{left, midY}, fast},
			{mgl64.Vec2{left, bottom}, slow},
			{mgl64.Vec2{left + size.X*fr[0], bottom}, slow},
			{mgl64.Vec2{right - size.X*fr[2], bottom}, fast},
			{mgl64.Vec2{right, bottom}, slow},
			{mgl64.Vec2{right, midY}, slow},
			{mgl64.Vec2{right, top}, fast},
			{mgl64.Vec2{right - size.X*fr[2], top}, fast},
			{mgl64.Vec2{center.X() + cfg.LineWidth/2, top}, slow},
		},
	}
}

// TowerPasses returns the perimeters printed on every tower layer: the
// nominal outline and, with DoublePerimeter, a second one a line width
// further out.
func TowerPasses(cfg model.Config) []Pass {
	n := 1
	if cfg.DoublePerimeter {
		n = 2
	}
	center := BedCenter(cfg)
	passes := make([]Pass, 0, n)
	for i := 0; i < n; i++ {
		grow := 2 * float64(i) * cfg.LineWidth
		size := model.Size2D{X: cfg.PatternSize.X + grow, Y: cfg.PatternSize.Y + grow}
		passes = append(passes, TowerPass(center, size, cfg))
	}
	return passes
}

// Outline returns the pass as a closed polyline starting at the entry point.
func (p Pass) Outline() []mgl64.Vec2 {
	pts := make([]mgl64.Vec2, 0, len(p.Segments)+1)
	pts = append(pts, p.Entry)
	for _, s := range p.Segments {
		pts = append(pts, s.To)
	}
	return pts
}
