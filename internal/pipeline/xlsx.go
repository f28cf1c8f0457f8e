package pipeline

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"

	"agentdesk/internal"
)

// ParseXLSX reads the first non-empty sheet of a workbook into a RawTable.
// Row one is the header row; the table goes through the same mapping and
// normalization as text input.
func ParseXLSX(content []byte) (internal.RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return internal.RawTable{}, err
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		if len(rows) < 2 {
			continue
		}
		return tableFromCells(rows, internal.SourceXLSX)
	}

	return internal.RawTable{}, ErrEmptyInput
}

// tableFromCells builds a RawTable from pre-split cell rows (xlsx sheets,
// HTML tables), applying the same header placeholders, width invariant, and
// cell inference as the text parser.
func tableFromCells(cells [][]string, source internal.ImportSource) (internal.RawTable, error) {
	if len(cells) < 2 {
		return internal.RawTable{}, ErrEmptyInput
	}

	headers := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = positionalHeader(i)
		}
		headers[i] = h
	}
	if len(headers) < 2 {
		return internal.RawTable{}, ErrHeaderParse
	}

	table := internal.RawTable{
		Headers: headers,
		Rows:    make([]map[string]any, 0, len(cells)-1),
		Source:  source,
	}

	for _, rowCells := range cells[1:] {
		if allBlank(rowCells) {
			table.SkippedLines++
			continue
		}
		for len(rowCells) < len(headers) {
			rowCells = append(rowCells, "")
		}
		rowCells = rowCells[:len(headers)]

		row := make(map[string]any, len(headers))
		for i, h := range headers {
			row[h] = inferCell(rowCells[i])
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
