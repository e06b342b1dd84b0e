package export

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/kcalibrator/internal/gcode"
	"github.com/piwi3910/kcalibrator/internal/model"
)

// Page layout constants (A4 portrait in mm).
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 10.0
	rowHeight    = 5.5
	drawHeight   = 80.0
)

// Band table columns: title and width in mm.
var bandColumns = []struct {
	title string
	width float64
}{
	{"#", 12},
	{"K", 25},
	{"Layers", 30},
	{"Z from (mm)", 30},
	{"Z to (mm)", 30},
	{"Notes", 53},
}

// ExportPDF writes the calibration sheet: settings, a job label with a QR
// code, a drawing of the first layer and tower footprint, and the table of
// K-factor bands for reading the printed tower.
func ExportPDF(path string, r Report) error {
	if len(r.Bands) == 0 {
		return fmt.Errorf("no K-factor bands to export")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetTitle("K-factor calibration "+r.FileName, true)
	pdf.SetCreator(r.Version, true)
	pdf.SetCreationDate(r.CreatedAt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	renderHeader(pdf, r)

	y := marginTop + headerHeight + 8
	if err := renderLabel(pdf, pageWidth-marginRight-labelWidth, y, CollectLabelInfo(r)); err != nil {
		return err
	}
	y = renderParameters(pdf, tr, parameters(r.Config), y)
	y = math.Max(y, marginTop+headerHeight+8+labelHeight) + 6

	renderFootprint(pdf, r.Config, y)
	y += drawHeight + 4
	y = renderSummary(pdf, r.Summary, y) + 4

	renderBandTable(pdf, r.Bands, y)

	return pdf.OutputFileAndClose(path)
}

func renderHeader(pdf *fpdf.Fpdf, r Report) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, "K-Factor Calibration", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(80, 80, 80)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	info := fmt.Sprintf("%s | job %s | %s | %s", r.FileName, r.JobID, r.CreatedAt.Format("2006-01-02 15:04 MST"), r.Version)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, info, "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// renderParameters draws the settings as a two-column list and returns the
// Y position below it.
func renderParameters(pdf *fpdf.Fpdf, tr func(string) string, params []parameter, y float64) float64 {
	const nameW, valueW, h = 35.0, 60.0, 4.5
	for _, p := range params {
		pdf.SetXY(marginLeft, y)
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(nameW, h, p.Name, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(valueW, h, tr(p.Value), "", 0, "L", false, 0, "")
		y += h
	}
	return y
}

// renderFootprint draws the bed, the first layer rings and the tower
// perimeters to scale, Y axis pointing up.
func renderFootprint(pdf *fpdf.Fpdf, cfg model.Config, top float64) {
	drawWidth := pageWidth - marginLeft - marginRight
	minB, maxB := bedExtents(cfg)
	bedW, bedH := maxB.X()-minB.X(), maxB.Y()-minB.Y()

	scale := math.Min(drawWidth/bedW, drawHeight/bedH)
	offsetX := marginLeft + (drawWidth-bedW*scale)/2
	offsetY := top + (drawHeight-bedH*scale)/2

	toPage := func(p mgl64.Vec2) fpdf.PointType {
		return fpdf.PointType{
			X: offsetX + (p.X()-minB.X())*scale,
			Y: offsetY + (maxB.Y()-p.Y())*scale,
		}
	}

	// Bed
	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.4)
	if cfg.IsDelta() {
		c := toPage(mgl64.Vec2{0, 0})
		pdf.Circle(c.X, c.Y, bedW/2*scale, "FD")
	} else {
		pdf.Rect(offsetX, offsetY, bedW*scale, bedH*scale, "FD")
	}

	// First layer rings
	pdf.SetDrawColor(33, 150, 243)
	pdf.SetLineWidth(0.1)
	for _, ring := range gcode.FirstLayerRings(cfg) {
		pts := make([]fpdf.PointType, len(ring))
		for i, p := range ring {
			pts[i] = toPage(p)
		}
		pdf.Polygon(pts, "D")
	}

	// Tower perimeters
	pdf.SetDrawColor(244, 67, 54)
	pdf.SetLineWidth(0.3)
	for _, pass := range gcode.TowerPasses(cfg) {
		outline := pass.Outline()
		pts := make([]fpdf.PointType, len(outline))
		for i, p := range outline {
			pts[i] = toPage(p)
		}
		pdf.Polygon(pts, "D")

		entry := toPage(pass.Entry)
		pdf.SetFillColor(244, 67, 54)
		pdf.Circle(entry.X, entry.Y, 0.8, "F")
	}

	// Dimension annotation
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(marginLeft, top+drawHeight-3)
	pdf.CellFormat(drawWidth, 3,
		fmt.Sprintf("Bed %.0f x %.0f mm, tower %.0f x %.0f mm", cfg.BedSize.X, cfg.BedSize.Y, cfg.PatternSize.X, cfg.PatternSize.Y),
		"", 0, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// bedExtents returns the bed's bounding box in machine coordinates.
func bedExtents(cfg model.Config) (mgl64.Vec2, mgl64.Vec2) {
	if cfg.IsDelta() {
		r := math.Min(cfg.BedSize.X, cfg.BedSize.Y) / 2
		return mgl64.Vec2{-r, -r}, mgl64.Vec2{r, r}
	}
	return mgl64.Vec2{0, 0}, mgl64.Vec2{cfg.BedSize.X, cfg.BedSize.Y}
}

func renderSummary(pdf *fpdf.Fpdf, s gcode.Summary, y float64) float64 {
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(marginLeft, y)
	stats := fmt.Sprintf("Layers: %d | Print moves: %d | Filament: %.0f mm | Print path: %.1f m | Travel: %.1f m",
		s.Layers, s.PrintMoves, s.FilamentMM, s.PrintDistance/1000, s.TravelDistance/1000)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")
	return y + 5
}

// renderBandTable draws one row per K band, continuing on new pages as
// needed.
func renderBandTable(pdf *fpdf.Fpdf, bands []gcode.Band, y float64) {
	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(220, 220, 220)
		pdf.SetXY(marginLeft, y)
		for _, c := range bandColumns {
			pdf.CellFormat(c.width, rowHeight+1, c.title, "1", 0, "C", true, 0, "")
		}
		y += rowHeight + 1
		pdf.SetFont("Helvetica", "", 9)
	}
	header()

	// Highest band first, in the order the tower is read
	for i := len(bands) - 1; i >= 0; i-- {
		if y+rowHeight > pageHeight-marginBottom {
			pdf.AddPage()
			y = marginTop
			header()
		}
		b := bands[i]
		cells := []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.3f", b.K),
			fmt.Sprintf("%d-%d", b.FirstLayer, b.LastLayer),
			fmt.Sprintf("%.2f", b.ZStart),
			fmt.Sprintf("%.2f", b.ZEnd),
			"",
		}
		fill := i%2 == 1
		pdf.SetFillColor(245, 245, 245)
		pdf.SetXY(marginLeft, y)
		for j, c := range bandColumns {
			pdf.CellFormat(c.width, rowHeight, cells[j], "1", 0, "C", fill, 0, "")
		}
		y += rowHeight
	}
}
