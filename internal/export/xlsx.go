package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	bandsSheet  = "Bands"
	paramsSheet = "Settings"
)

var bandHeader = []interface{}{"Band", "K", "First layer", "Last layer", "Z from (mm)", "Z to (mm)", "Notes"}

// ExportXLSX writes the K-factor band table and the settings to a workbook,
// so heights measured on the printed tower can be looked up and annotated.
func ExportXLSX(path string, r Report) error {
	if len(r.Bands) == 0 {
		return fmt.Errorf("no K-factor bands to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), bandsSheet); err != nil {
		return err
	}
	if err := writeBands(f, r); err != nil {
		return fmt.Errorf("failed to write bands: %w", err)
	}

	if _, err := f.NewSheet(paramsSheet); err != nil {
		return err
	}
	if err := writeSettings(f, r); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeBands(f *excelize.File, r Report) error {
	if err := f.SetSheetRow(bandsSheet, "A1", &bandHeader); err != nil {
		return err
	}
	for i, b := range r.Bands {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{i + 1, b.K, b.FirstLayer, b.LastLayer, b.ZStart, b.ZEnd}
		if err := f.SetSheetRow(bandsSheet, cell, &row); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDDDDD"}},
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(bandsSheet, "A1", "G1", bold); err != nil {
		return err
	}

	kFormat := "0.000"
	zFormat := "0.00"
	kStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &kFormat})
	if err != nil {
		return err
	}
	zStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &zFormat})
	if err != nil {
		return err
	}
	last := len(r.Bands) + 1
	if err := f.SetCellStyle(bandsSheet, "B2", fmt.Sprintf("B%d", last), kStyle); err != nil {
		return err
	}
	if err := f.SetCellStyle(bandsSheet, "E2", fmt.Sprintf("F%d", last), zStyle); err != nil {
		return err
	}

	if err := f.SetColWidth(bandsSheet, "A", "F", 13); err != nil {
		return err
	}
	if err := f.SetColWidth(bandsSheet, "G", "G", 40); err != nil {
		return err
	}
	return f.SetPanes(bandsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSettings(f *excelize.File, r Report) error {
	rows := [][]interface{}{
		{"Job", r.JobID},
		{"File", r.FileName},
		{"Generated", r.CreatedAt.Format("2006-01-02 15:04:05 MST")},
		{"Generator", r.Version},
	}
	for _, p := range parameters(r.Config) {
		rows = append(rows, []interface{}{p.Name, p.Value})
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(paramsSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(paramsSheet, "A", "B", 30)
}
