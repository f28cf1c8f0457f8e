package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"agentdesk/internal"
	"agentdesk/internal/storage"
)

// ExportImportReportXLSX writes the per-row outcome of a recorded import run
// to a workbook: one summary sheet, one rows sheet.
func ExportImportReportXLSX(db *storage.DB, importID int, outputPath string) error {
	run, err := db.GetImport(importID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("import %d not found", importID)
	}
	rows, err := db.GetImportRows(importID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetName(sheet, "Summary")

	summaryRows := [][]any{
		{"import_id", run.ID},
		{"source", run.Source},
		{"origin", run.Origin},
		{"status", run.Status},
		{"total_rows", run.TotalRows},
		{"valid_rows", run.ValidRows},
		{"invalid_rows", run.InvalidRows},
		{"succeeded", run.Succeeded},
		{"failed", run.Failed},
		{"created_at", run.CreatedAt},
	}
	for i, pair := range summaryRows {
		for c, v := range pair {
			cell, _ := excelize.CoordinatesToCellName(c+1, i+1)
			_ = f.SetCellValue("Summary", cell, v)
		}
	}

	rowsSheet := "Rows"
	if _, err := f.NewSheet(rowsSheet); err != nil {
		return err
	}

	headers := []string{"row_number", "status", "reasons", "proposed_insured", "carrier", "product", "monthly_premium", "record_json"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(rowsSheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(rowsSheet, cell, value)
		}

		set(1, row.RowNumber)
		set(2, row.Status)
		set(3, joinedReasons(row.ReasonsJSON))
		record := decodedRecord(row.RecordJSON)
		set(4, recordText(record, "proposed_insured"))
		set(5, recordText(record, "carrier"))
		set(6, recordText(record, "product"))
		set(7, recordText(record, "monthly_premium"))
		set(8, row.RecordJSON)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func joinedReasons(blob string) string {
	var reasons []string
	if err := json.Unmarshal([]byte(blob), &reasons); err != nil {
		return blob
	}
	out := ""
	for i, r := range reasons {
		if i > 0 {
			out += "; "
		}
		out += r
	}
	return out
}

func decodedRecord(blob string) internal.ApplicationRecord {
	var record internal.ApplicationRecord
	if err := json.Unmarshal([]byte(blob), &record); err != nil {
		return internal.ApplicationRecord{}
	}
	return record
}

func recordText(record internal.ApplicationRecord, field string) any {
	v, ok := record[field]
	if !ok {
		return ""
	}
	return v
}
