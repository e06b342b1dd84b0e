package gcode

import (
	"fmt"
	"iter"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/piwi3910/kcalibrator/internal/model"
)

// Generator produces the pressure-advance calibration G-code for a Config.
type Generator struct {
	Config  model.Config
	Version string

	dialect Dialect
	logger  *slog.Logger

	// per-run state
	ex  *Extruder
	pos mgl64.Vec3
	out Program
}

// Option configures a Generator.
type Option func(*Generator)

// WithVersion sets the program name written in the header comment.
func WithVersion(v string) Option {
	return func(g *Generator) { g.Version = v }
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

func New(cfg model.Config, opts ...Option) *Generator {
	g := &Generator{
		Config:  cfg,
		Version: "kcalibrator",
		dialect: GetDialect(cfg.Firmware),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds the complete program: start code, first layer, the
// K-factor tower and end code. Each call starts from a fresh extruder and
// position, so a Generator can be reused.
func (g *Generator) Generate() Program {
	cfg := g.Config
	g.logger.Debug("generation started",
		"firmware", g.dialect.Firmware,
		"k_start", cfg.KStart, "k_end", cfg.KEnd, "k_step", cfg.KStep,
		"layers_per_k", cfg.LayersPerK, "double_perimeter", cfg.DoublePerimeter)

	g.ex = NewExtruder(cfg)
	g.pos = mgl64.Vec3{}
	g.out = nil

	g.writeHeader()
	g.writeFirstLayer()
	g.writeTower()
	g.writeFooter()

	g.logger.Debug("generation finished", "lines", len(g.out))
	return g.out
}

func (g *Generator) emit(lines ...string) {
	g.out = append(g.out, lines...)
}

func (g *Generator) travel(to mgl64.Vec3) {
	g.emit(TravelMove(to, g.Config.SpeedTravel))
	g.pos = to
}

func (g *Generator) printTo(to mgl64.Vec3, speed float64) {
	e := g.ex.Extrude(Distance(g.pos, to))
	g.emit(PrintMove(to, e, speed))
	g.pos = to
}

func (g *Generator) retract() {
	g.ex.Retract()
	g.emit(RetractMove(g.Config.Retract.Length, g.Config.Retract.Speed))
}

func (g *Generator) resetExtruder() {
	g.ex.Reset()
	g.emit(ResetExtruder)
}

func (g *Generator) writeHeader() {
	cfg := g.Config

	g.emit(
		";Generated with "+g.Version,
		"M190 S"+num(cfg.Temperature.Bed),
		"M109 S"+num(cfg.Temperature.Hotend),
		"G28",
	)
	if cfg.UseABL {
		g.emit(g.bedLevelCommand())
	}
	g.emit("G90", "M82")
	g.emit(g.dialect.PressureAdvance(0)...)
	g.emit(
		ResetExtruder,
		fmt.Sprintf("G0 Z%.3f F300", cfg.LayerHeight+cfg.ZOffset),
		fmt.Sprintf("G92 Z%.3f", cfg.LayerHeight),
		"G0 Z2 F600",
	)

	// Purge: two parallel lines, out and back
	z := cfg.LayerHeight
	from, to, offset := PurgeLine(cfg)
	g.ex.Reset()
	g.travel(mgl64.Vec3{from.X(), from.Y(), z})
	g.printTo(mgl64.Vec3{to.X(), to.Y(), z}, cfg.SpeedPrint)
	back, end := to.Add(offset), from.Add(offset)
	g.travel(mgl64.Vec3{back.X(), back.Y(), z})
	g.printTo(mgl64.Vec3{end.X(), end.Y(), z}, cfg.SpeedPrint)
	g.resetExtruder()
	g.emit("G0 Z2 F600")

	g.emit(fmt.Sprintf("M106 S%d", int(cfg.CoolingPercent/100*255)))
}

func (g *Generator) bedLevelCommand() string {
	if g.Config.ABLCommand != "" {
		return g.Config.ABLCommand
	}
	return g.dialect.BedLevel
}

// writeFirstLayer prints the brim and inner rings as one continuous
// extrusion, reset only once all rings are done.
func (g *Generator) writeFirstLayer() {
	cfg := g.Config
	g.ex.Reset()

	for _, ring := range FirstLayerRings(cfg) {
		last := ring[len(ring)-1]
		g.travel(MoveAbsolute(g.pos, last.X(), last.Y()))
		for _, p := range ring {
			g.printTo(MoveAbsolute(g.pos, p.X(), p.Y()), cfg.SpeedPrint)
		}
	}

	g.resetExtruder()
	if cfg.RetractAtLayerChange {
		g.retract()
	}
}

func (g *Generator) writeTower() {
	cfg := g.Config
	passes := TowerPasses(cfg)
	z := g.pos.Z()

	for k := range KValues(cfg) {
		g.logger.Debug("k block", "k", k, "z", z+cfg.LayerHeight)
		g.emit(g.dialect.PressureAdvance(k)...)
		for i := 0; i < cfg.LayersPerK; i++ {
			z += cfg.LayerHeight
			for n, pass := range passes {
				g.writePass(pass, z, n == 0, n == len(passes)-1)
			}
		}
	}
}

// writePass prints one perimeter at height z. Only the first pass of a layer
// primes after the previous retraction and only the last one retracts.
func (g *Generator) writePass(pass Pass, z float64, first, last bool) {
	cfg := g.Config
	g.ex.Reset()

	g.travel(MoveAbsolute(g.pos, pass.Entry.X(), pass.Entry.Y(), z))
	if cfg.RetractAtLayerChange && first {
		g.ex.Deretract()
		g.emit(PrimeMove(cfg.Retract.Speed))
	}
	for _, s := range pass.Segments {
		g.printTo(s.To.Vec3(z), s.Speed)
	}

	g.resetExtruder()
	if cfg.RetractAtLayerChange && last {
		g.retract()
	}
}

func (g *Generator) writeFooter() {
	cfg := g.Config
	g.emit("M104 S0", "M140 S0", "M107", "G91")
	if !cfg.RetractAtLayerChange {
		g.emit(RetractMove(cfg.Retract.Length, cfg.Retract.Speed))
	}
	g.emit("G0 Z5 F600", "G90", "G0 X0 Y0 F"+feed(cfg.SpeedTravel))
}

// KValues yields the K-factors of the sweep from KStart towards KEnd,
// inclusive. The step direction follows the bounds, whatever the sign of
// KStep; a zero step yields KStart alone. The sweep stops half a step past
// KEnd so accumulated rounding can neither drop KEnd nor overshoot it, and
// values are snapped to 1e-9 so a sweep through zero never prints -0.000.
func KValues(cfg model.Config) iter.Seq[float64] {
	step := math.Abs(cfg.KStep)
	var seq iter.Seq[float64]
	switch {
	case step == 0:
		return func(yield func(float64) bool) { yield(cfg.KStart) }
	case cfg.KStart <= cfg.KEnd:
		seq = FloatRange(cfg.KStart, cfg.KEnd+step/2, step)
	default:
		seq = FloatRange(cfg.KStart, cfg.KEnd-step/2, -step)
	}
	return func(yield func(float64) bool) {
		for k := range seq {
			k = math.Round(k*1e9) / 1e9
			if k == 0 {
				k = 0 // drop the sign of -0
			}
			if !yield(k) {
				return
			}
		}
	}
}

// Band is the slice of the tower printed with one K-factor.
type Band struct {
	K          float64 `json:"k"`
	FirstLayer int     `json:"first_layer"` // 1 is the first layer (brim)
	LastLayer  int     `json:"last_layer"`
	ZStart     float64 `json:"z_start"` // nozzle height of FirstLayer, mm
	ZEnd       float64 `json:"z_end"`   // nozzle height of LastLayer, mm
}

// Schedule lists the K-factor bands of the tower bottom to top, with the
// same layer heights the generator uses.
func Schedule(cfg model.Config) []Band {
	var bands []Band
	z := cfg.LayerHeight
	layer := 1
	for k := range KValues(cfg) {
		b := Band{K: k, FirstLayer: layer + 1}
		for i := 0; i < cfg.LayersPerK; i++ {
			z += cfg.LayerHeight
			layer++
			if i == 0 {
				b.ZStart = z
			}
		}
		b.LastLayer = layer
		b.ZEnd = z
		bands = append(bands, b)
	}
	return bands
}

// KAtHeight returns the K-factor printed at nozzle height z, or false when z
// lies outside the tower.
func KAtHeight(bands []Band, z, layerHeight float64) (float64, bool) {
	const eps = 1e-9
	for _, b := range bands {
		if z > b.ZStart-layerHeight+eps && z <= b.ZEnd+eps {
			return b.K, true
		}
	}
	return 0, false
}
