package gcode

import (
	"fmt"

	"github.com/piwi3910/kcalibrator/internal/model"
)

// Dialect holds the firmware-specific commands of a pattern.
type Dialect struct {
	Firmware model.Firmware
	// PressureAdvance returns the lines setting the K-factor.
	PressureAdvance func(k float64) []string
	// BedLevel is the auto bed-leveling command.
	BedLevel string
}

var dialects = map[model.Firmware]Dialect{
	model.FirmwareMarlin: {
		Firmware: model.FirmwareMarlin,
		PressureAdvance: func(k float64) []string {
			return []string{fmt.Sprintf("M900 K%.3f", k), fmt.Sprintf("M117 K=%.3f", k)}
		},
		BedLevel: "G29",
	},
	model.FirmwareKlipper: {
		Firmware: model.FirmwareKlipper,
		PressureAdvance: func(k float64) []string {
			return []string{fmt.Sprintf("SET_PRESSURE_ADVANCE ADVANCE=%.3f", k)}
		},
		BedLevel: "BED_MESH_CALIBRATE",
	},
	model.FirmwareRepRap: {
		Firmware: model.FirmwareRepRap,
		PressureAdvance: func(k float64) []string {
			return []string{fmt.Sprintf("M572 D0 S%.3f", k)}
		},
		BedLevel: "G29",
	},
}

// GetDialect returns the dialect for fw, or the Marlin dialect if fw is not
// recognized.
func GetDialect(fw model.Firmware) Dialect {
	if d, ok := dialects[fw]; ok {
		return d
	}
	return dialects[model.FirmwareMarlin]
}
