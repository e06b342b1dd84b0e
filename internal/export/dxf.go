package export

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/kcalibrator/internal/gcode"
	"github.com/piwi3910/kcalibrator/internal/model"
)

// DXF layer names.
const (
	LayerBed   = "BED"
	LayerBrim  = "BRIM"
	LayerTower = "TOWER"
)

// ExportDXF writes the first layer footprint in machine coordinates: the bed
// outline, every brim and inner ring, and the tower perimeters, each as
// closed chains of LINE entities on their own layer.
func ExportDXF(path string, cfg model.Config) error {
	d := dxf.NewDrawing()

	if _, err := d.AddLayer(LayerBed, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add layer %s: %w", LayerBed, err)
	}
	if cfg.IsDelta() {
		r := math.Min(cfg.BedSize.X, cfg.BedSize.Y) / 2
		if _, err := d.Circle(0, 0, 0, r); err != nil {
			return err
		}
	} else {
		bed := gcode.Rectangle(mgl64.Vec2{cfg.BedSize.X / 2, cfg.BedSize.Y / 2}, cfg.BedSize)
		if err := closedChain(d, bed[:]); err != nil {
			return err
		}
	}

	if _, err := d.AddLayer(LayerBrim, color.Blue, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add layer %s: %w", LayerBrim, err)
	}
	for _, ring := range gcode.FirstLayerRings(cfg) {
		if err := closedChain(d, ring); err != nil {
			return err
		}
	}

	if _, err := d.AddLayer(LayerTower, color.Red, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add layer %s: %w", LayerTower, err)
	}
	for _, pass := range gcode.TowerPasses(cfg) {
		if err := closedChain(d, pass.Outline()); err != nil {
			return err
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save DXF: %w", err)
	}
	return nil
}

// closedChain adds one LINE per edge of the closed polygon pts.
func closedChain(d *drawing.Drawing, pts []mgl64.Vec2) error {
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		if _, err := d.Line(p.X(), p.Y(), 0, q.X(), q.Y(), 0); err != nil {
			return err
		}
	}
	return nil
}
