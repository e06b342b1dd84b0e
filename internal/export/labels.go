package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/kcalibrator/internal/model"
)

// LabelInfo holds the data encoded into the job label's QR code: enough to
// regenerate the same program later.
type LabelInfo struct {
	JobID    string       `json:"job"`
	File     string       `json:"file"`
	Firmware string       `json:"firmware"`
	KStart   float64      `json:"k_start"`
	KEnd     float64      `json:"k_end"`
	KStep    float64      `json:"k_step"`
	Layers   int          `json:"layers_per_k"`
	Config   model.Config `json:"config"`
}

// Job label layout, in mm.
const (
	labelWidth   = 90.0
	labelHeight  = 34.0
	qrSize       = 30.0
	labelPadding = 2.0
)

// CollectLabelInfo extracts the label data of a report.
func CollectLabelInfo(r Report) LabelInfo {
	return LabelInfo{
		JobID:    r.JobID,
		File:     r.FileName,
		Firmware: string(r.Config.Firmware),
		KStart:   r.Config.KStart,
		KEnd:     r.Config.KEnd,
		KStep:    r.Config.KStep,
		Layers:   r.Config.LayersPerK,
		Config:   r.Config,
	}
}

// renderLabel draws the job label with its QR code at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Draw light border for cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Low, 512)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := "qr_" + info.JobID
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	// QR code on the right side of the label
	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, "Job "+info.JobID, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	lines := []string{
		info.File,
		info.Firmware,
		fmt.Sprintf("K %g to %g, step %g", info.KStart, info.KEnd, info.KStep),
		fmt.Sprintf("%d layers per K", info.Layers),
	}
	for i, line := range lines {
		pdf.SetXY(textX, y+labelPadding+6+float64(i)*4)
		pdf.CellFormat(textW, 3.5, line, "", 1, "L", false, 0, "")
	}

	pdf.SetFont("Helvetica", "I", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelHeight-labelPadding-3)
	pdf.CellFormat(textW, 3, "Scan to restore settings", "", 0, "L", false, 0, "")

	// Reset text color
	pdf.SetTextColor(0, 0, 0)

	return nil
}
