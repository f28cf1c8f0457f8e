package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// TemplateFileName is the canonical download name for the sample CSV.
const TemplateFileName = "applications_template.csv"

var templateHeaders = []string{
	"Name", "Phone", "Email", "Date of Birth", "State",
	"Carrier", "Product", "Policy Number", "Face Amount", "Monthly Premium",
	"Submit Date", "Effective Date", "Notes",
}

// Sample values stay free of commas and quotes so the template needs no
// escaping.
var templateRows = [][]string{
	{"John Smith", "(555) 123-4567", "john.smith@email.com", "4/12/1958", "TX",
		"Americo", "Term Life", "AMC-100234", "15000", "45.99",
		"3/5/2026", "4/1/2026", "Referred by daughter"},
	{"Mary Johnson", "555-867-5309", "mary.j@email.com", "11/3/1962", "FL",
		"Mutual of Omaha", "Whole Life", "MOO-558812", "10000", "38.50",
		"3/6/2026", "", "Left voicemail about draft date"},
}

// TemplateCSV renders the sample file offered to first-time importers.
func TemplateCSV() []byte {
	lines := make([]string, 0, len(templateRows)+1)
	lines = append(lines, strings.Join(templateHeaders, ","))
	for _, row := range templateRows {
		lines = append(lines, strings.Join(row, ","))
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

func WriteTemplateCSV(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, TemplateFileName)
	if err := os.WriteFile(path, TemplateCSV(), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func WriteTemplateXLSX(dir string) (string, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range templateHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for r, row := range templateRows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, strings.TrimSuffix(TemplateFileName, ".csv")+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", err
	}
	return path, nil
}
