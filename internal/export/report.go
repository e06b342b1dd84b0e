// Package export writes companion artefacts for a generated calibration
// program: a printable PDF sheet, an XLSX height table and a DXF footprint.
package export

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/kcalibrator/internal/gcode"
	"github.com/piwi3910/kcalibrator/internal/model"
)

// Report is everything the artefacts show about one generated program.
type Report struct {
	JobID     string
	Version   string
	FileName  string
	CreatedAt time.Time

	Config  model.Config
	Bands   []gcode.Band
	Summary gcode.Summary
}

// NewReport analyses prog, generated from cfg, into a Report.
func NewReport(cfg model.Config, prog gcode.Program, version string) Report {
	return Report{
		JobID:     uuid.New().String()[:8],
		Version:   version,
		FileName:  cfg.FileName(),
		CreatedAt: time.Now().UTC(),
		Config:    cfg,
		Bands:     gcode.Schedule(cfg),
		Summary:   gcode.Summarize(gcode.ParseGCode(prog.String())),
	}
}

// parameter is one labelled configuration value shown in the artefacts.
type parameter struct {
	Name  string
	Value string
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// parameters lists the settings a user needs to reproduce or read the print.
func parameters(cfg model.Config) []parameter {
	abl := onOff(cfg.UseABL)
	if cfg.UseABL && cfg.ABLCommand != "" {
		abl = cfg.ABLCommand
	}
	return []parameter{
		{"Firmware", string(cfg.Firmware)},
		{"Kinematics", string(cfg.Kinematics)},
		{"Bed size", fmt.Sprintf("%g x %g mm", cfg.BedSize.X, cfg.BedSize.Y)},
		{"Pattern size", fmt.Sprintf("%g x %g mm", cfg.PatternSize.X, cfg.PatternSize.Y)},
		{"Temperatures", fmt.Sprintf("hotend %g / bed %g °C", cfg.Temperature.Hotend, cfg.Temperature.Bed)},
		{"K range", fmt.Sprintf("%g to %g, step %g", cfg.KStart, cfg.KEnd, cfg.KStep)},
		{"Layers per K", fmt.Sprintf("%d", cfg.LayersPerK)},
		{"Slow / fast speed", fmt.Sprintf("%g / %g mm/s", cfg.SpeedSlow, cfg.SpeedFast)},
		{"Print / travel speed", fmt.Sprintf("%g / %g mm/s", cfg.SpeedPrint, cfg.SpeedTravel)},
		{"Layer height", fmt.Sprintf("%g mm", cfg.LayerHeight)},
		{"Line width", fmt.Sprintf("%g mm", cfg.LineWidth)},
		{"Filament", fmt.Sprintf("%g mm", cfg.FilamentDiameter)},
		{"Z offset", fmt.Sprintf("%g mm", cfg.ZOffset)},
		{"Retraction", fmt.Sprintf("%g mm @ %g mm/s, layer change %s", cfg.Retract.Length, cfg.Retract.Speed, onOff(cfg.RetractAtLayerChange))},
		{"Double perimeter", onOff(cfg.DoublePerimeter)},
		{"Bed leveling", abl},
		{"Cooling", fmt.Sprintf("%g %%", cfg.CoolingPercent)},
	}
}
