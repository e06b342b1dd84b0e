package gcode

import (
	"math"

	"github.com/piwi3910/kcalibrator/internal/model"
)

// Section describes the cross-section of an extruded line. Zero fields fall
// back to the extruder's defaults.
type Section struct {
	Width            float64
	Height           float64
	Flow             float64
	FilamentDiameter float64
}

// Extruder tracks the cumulative filament length fed into the hotend.
type Extruder struct {
	E float64 // cumulative length in filament mm

	LineWidth        float64
	LayerHeight      float64
	Flow             float64
	FilamentDiameter float64
}

// NewExtruder returns an extruder at E=0 using the line geometry of cfg and
// a flow multiplier of 1.
func NewExtruder(cfg model.Config) *Extruder {
	return &Extruder{
		LineWidth:        cfg.LineWidth,
		LayerHeight:      cfg.LayerHeight,
		Flow:             1.0,
		FilamentDiameter: cfg.FilamentDiameter,
	}
}

// Extrude advances E by the filament needed to lay a default line of the
// given length and returns the new cumulative value.
func (e *Extruder) Extrude(distance float64) float64 {
	return e.ExtrudeSection(distance, Section{})
}

// ExtrudeSection is Extrude with an explicit cross-section.
func (e *Extruder) ExtrudeSection(distance float64, s Section) float64 {
	w := orDefault(s.Width, e.LineWidth)
	h := orDefault(s.Height, e.LayerHeight)
	f := orDefault(s.Flow, e.Flow)
	d := orDefault(s.FilamentDiameter, e.FilamentDiameter)

	volume := f * w * distance * h
	e.E += volume * 4 / (math.Pi * d * d)
	return e.E
}

// Reset zeroes E, matching a G92 E0 sent to the firmware.
func (e *Extruder) Reset() {
	e.E = 0
}

// Retract does nothing: retractions are emitted as explicit negative moves
// and never change the tracked length.
func (e *Extruder) Retract() {}

// Deretract does nothing, see Retract.
func (e *Extruder) Deretract() {}

func orDefault(v, def float64) float64 {
	if v != 0 {
		return v
	}
	return def
}
