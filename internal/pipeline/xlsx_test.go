package pipeline

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"agentdesk/internal"
)

func workbookBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestParseXLSX(t *testing.T) {
	blob := workbookBytes(t, [][]any{
		{"Name", "Carrier", "Monthly Premium"},
		{"John Smith", "Americo", "$45.99"},
		{"Mary Johnson", "Mutual of Omaha", "38.50"},
	})

	table, err := ParseXLSX(blob)
	if err != nil {
		t.Fatal(err)
	}
	if table.Source != internal.SourceXLSX {
		t.Fatalf("source=%s", table.Source)
	}
	if len(table.Headers) != 3 || len(table.Rows) != 2 {
		t.Fatalf("headers=%d rows=%d", len(table.Headers), len(table.Rows))
	}
	if v, ok := table.Rows[0]["Monthly Premium"].(float64); !ok || v != 45.99 {
		t.Fatalf("premium=%v", table.Rows[0]["Monthly Premium"])
	}
}

func TestParseXLSXHeaderOnly(t *testing.T) {
	blob := workbookBytes(t, [][]any{{"Name", "Carrier"}})
	if _, err := ParseXLSX(blob); err == nil {
		t.Fatal("expected error for header-only workbook")
	}
}

func TestParseXLSXRaggedRows(t *testing.T) {
	blob := workbookBytes(t, [][]any{
		{"a", "b", "c"},
		{"1"},
	})
	table, err := ParseXLSX(blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("rows=%d", len(table.Rows))
	}
	if table.Rows[0]["c"] != "" {
		t.Fatalf("pad=%v", table.Rows[0]["c"])
	}
}
