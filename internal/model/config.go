package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Firmware identifies the printer firmware dialect used for pressure-advance
// and bed-leveling commands.
type Firmware string

const (
	FirmwareMarlin  Firmware = "Marlin/Lerdge"  // M900 K / M117
	FirmwareKlipper Firmware = "Klipper"        // SET_PRESSURE_ADVANCE
	FirmwareRepRap  Firmware = "RepRapFirmware" // M572 D0 S
)

// Firmwares lists the supported dialects in display order.
var Firmwares = []Firmware{FirmwareMarlin, FirmwareKlipper, FirmwareRepRap}

// ErrUnknownFirmware is returned by ParseFirmware for unrecognised names.
var ErrUnknownFirmware = errors.New("unknown firmware")

// ParseFirmware accepts a dialect's full name or a short alias (marlin,
// lerdge, klipper, reprap, rrf), case-insensitively.
func ParseFirmware(name string) (Firmware, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "marlin", "lerdge", "marlin/lerdge":
		return FirmwareMarlin, nil
	case "klipper":
		return FirmwareKlipper, nil
	case "reprap", "rrf", "reprapfirmware":
		return FirmwareRepRap, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFirmware, name)
}

// Kinematics describes the printer geometry. Delta printers have their origin
// at the bed center.
type Kinematics string

const (
	KinematicsCartesian Kinematics = "Cartesian"
	KinematicsDelta     Kinematics = "Delta"
)

// Size2D is an (X, Y) extent in mm.
type Size2D struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Temperatures holds the hotend and bed targets in °C.
type Temperatures struct {
	Hotend float64 `json:"hotend" yaml:"hotend"`
	Bed    float64 `json:"bed" yaml:"bed"`
}

// Retraction is a (length, speed) pair; speed is in mm/s.
type Retraction struct {
	Length float64 `json:"length" yaml:"length"`
	Speed  float64 `json:"speed" yaml:"speed"`
}

// Config holds every parameter of a calibration pattern. It is passed by
// value into the generator and never modified there.
type Config struct {
	Firmware   Firmware   `json:"firmware" yaml:"firmware"`
	Kinematics Kinematics `json:"kinematics" yaml:"kinematics"`

	BedSize     Size2D       `json:"bed_size" yaml:"bed_size"`         // mm
	PatternSize Size2D       `json:"pattern_size" yaml:"pattern_size"` // mm, test tower outline
	Temperature Temperatures `json:"temperature" yaml:"temperature"`

	// Speeds in mm/s
	SpeedSlow   float64 `json:"speed_slow" yaml:"speed_slow"`     // slow calibration segments
	SpeedFast   float64 `json:"speed_fast" yaml:"speed_fast"`     // fast calibration segments
	SpeedPrint  float64 `json:"speed_print" yaml:"speed_print"`   // purge line and brim
	SpeedTravel float64 `json:"speed_travel" yaml:"speed_travel"` // non-printing moves

	LayerHeight      float64    `json:"layer_height" yaml:"layer_height"`
	LineWidth        float64    `json:"line_width" yaml:"line_width"`
	FilamentDiameter float64    `json:"filament_diameter" yaml:"filament_diameter"`
	ZOffset          float64    `json:"z_offset" yaml:"z_offset"`
	Retract          Retraction `json:"retract" yaml:"retract"`

	// K-factor sweep. KEnd may be below KStart; the sign of KStep is ignored.
	KStart     float64 `json:"k_start" yaml:"k_start"`
	KEnd       float64 `json:"k_end" yaml:"k_end"`
	KStep      float64 `json:"k_step" yaml:"k_step"`
	LayersPerK int     `json:"layers_per_k" yaml:"layers_per_k"`

	// Fractions of the pattern width printed slow, fast and slow along
	// the long edges.
	PathSpeedFractions [3]float64 `json:"path_speed_fractions" yaml:"path_speed_fractions"`

	UseABL               bool   `json:"use_abl" yaml:"use_abl"`
	ABLCommand           string `json:"abl_command,omitempty" yaml:"abl_command,omitempty"` // overrides the firmware default
	RetractAtLayerChange bool   `json:"retract_at_layer_change" yaml:"retract_at_layer_change"`
	DoublePerimeter      bool   `json:"double_perimeter" yaml:"double_perimeter"`

	CoolingPercent float64 `json:"cooling_percent" yaml:"cooling_percent"` // part fan, 0-100

	// First layer rings around (positive) and inside (negative) the tower outline
	BrimRings  int `json:"brim_rings" yaml:"brim_rings"`
	InnerRings int `json:"inner_rings" yaml:"inner_rings"`
}

// DefaultConfig returns the reference calibration setup: a 120x60 mm tower on
// a 235x180 mm bed sweeping K from 0.2 to 0.6.
func DefaultConfig() Config {
	return Config{
		Firmware:             FirmwareMarlin,
		Kinematics:           KinematicsCartesian,
		BedSize:              Size2D{X: 235, Y: 180},
		PatternSize:          Size2D{X: 120, Y: 60},
		Temperature:          Temperatures{Hotend: 250, Bed: 80},
		SpeedSlow:            20,
		SpeedFast:            90,
		SpeedPrint:           60,
		SpeedTravel:          160,
		LayerHeight:          0.2,
		LineWidth:            0.5,
		FilamentDiameter:     1.75,
		ZOffset:              0.16,
		Retract:              Retraction{Length: 4, Speed: 30},
		KStart:               0.2,
		KEnd:                 0.6,
		KStep:                0.02,
		LayersPerK:           5,
		PathSpeedFractions:   [3]float64{0.2, 0.6, 0.2},
		UseABL:               true,
		RetractAtLayerChange: true,
		DoublePerimeter:      true,
		CoolingPercent:       50,
		BrimRings:            10,
		InnerRings:           9,
	}
}

// FileName returns the conventional output name, e.g. KF_0.2_0.6_0.02.gcode.
func (c Config) FileName() string {
	return fmt.Sprintf("KF_%s_%s_%s.gcode", formatNumber(c.KStart), formatNumber(c.KEnd), formatNumber(c.KStep))
}

// IsDelta reports whether the printer uses delta kinematics.
func (c Config) IsDelta() bool {
	return c.Kinematics == KinematicsDelta
}

// Validate checks the configuration for values that would produce degenerate
// G-code. The generator itself never calls it.
func (c Config) Validate() error {
	var errs []error
	positive := []struct {
		name  string
		value float64
	}{
		{"bed_size.x", c.BedSize.X},
		{"bed_size.y", c.BedSize.Y},
		{"pattern_size.x", c.PatternSize.X},
		{"pattern_size.y", c.PatternSize.Y},
		{"speed_slow", c.SpeedSlow},
		{"speed_fast", c.SpeedFast},
		{"speed_print", c.SpeedPrint},
		{"speed_travel", c.SpeedTravel},
		{"layer_height", c.LayerHeight},
		{"line_width", c.LineWidth},
		{"filament_diameter", c.FilamentDiameter},
		{"k_step", c.KStep},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0, got %g", p.name, p.value))
		}
	}
	if c.LayersPerK < 1 {
		errs = append(errs, fmt.Errorf("layers_per_k must be >= 1, got %d", c.LayersPerK))
	}
	if c.KStart < 0 || c.KEnd < 0 {
		errs = append(errs, errors.New("k_start and k_end must not be negative"))
	}
	var sum float64
	for i, f := range c.PathSpeedFractions {
		if f <= 0 || f >= 1 {
			errs = append(errs, fmt.Errorf("path_speed_fractions[%d] must be in (0,1), got %g", i, f))
		}
		sum += f
	}
	if sum > 1+1e-9 {
		errs = append(errs, fmt.Errorf("path_speed_fractions must not sum above 1, got %g", sum))
	}
	if c.CoolingPercent < 0 || c.CoolingPercent > 100 {
		errs = append(errs, fmt.Errorf("cooling_percent must be in [0,100], got %g", c.CoolingPercent))
	}
	if c.BrimRings < 0 || c.InnerRings < 0 {
		errs = append(errs, errors.New("brim_rings and inner_rings must not be negative"))
	}
	return errors.Join(errs...)
}

// formatNumber prints a float in its shortest form (0.2, not 0.200000).
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
