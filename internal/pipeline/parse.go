package pipeline

import (
	"errors"
	"strconv"
	"strings"

	"agentdesk/internal"
	"agentdesk/internal/util"
)

var (
	// ErrEmptyInput means the input has no header row plus data row.
	ErrEmptyInput = errors.New("need a header row and at least one data row")
	// ErrHeaderParse means the header line produced fewer than two columns.
	ErrHeaderParse = errors.New("could not detect at least two columns in the header row")
)

var delimiterCandidates = []rune{',', '\t', ';', '|'}

// ParseTable turns one pasted or uploaded text blob into a RawTable: line
// endings normalized, delimiter detected, headers cleaned, every row padded
// or truncated to the header width, and best-effort cell type inference
// applied. Pure function of its input.
func ParseTable(text string, source internal.ImportSource) (internal.RawTable, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return internal.RawTable{}, ErrEmptyInput
	}

	delim := detectDelimiter(lines, source)

	headers := splitFields(lines[0], delim)
	for i, h := range headers {
		if h == "" {
			headers[i] = positionalHeader(i)
		}
	}
	if len(headers) < 2 {
		return internal.RawTable{}, ErrHeaderParse
	}

	table := internal.RawTable{
		Headers:   headers,
		Rows:      make([]map[string]any, 0, len(lines)-1),
		Source:    source,
		Delimiter: delim,
	}

	for _, line := range lines[1:] {
		fields := splitFields(line, delim)
		if allBlank(fields) {
			table.SkippedLines++
			continue
		}
		for len(fields) < len(headers) {
			fields = append(fields, "")
		}
		fields = fields[:len(headers)]

		row := make(map[string]any, len(headers))
		for i, h := range headers {
			row[h] = inferCell(fields[i])
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// detectDelimiter prefers tab when the input looks like a spreadsheet paste
// (first two lines share the same non-zero tab count), otherwise picks the
// most frequent candidate in the header line, comma winning ties.
func detectDelimiter(lines []string, source internal.ImportSource) rune {
	if source == internal.SourcePaste && len(lines) >= 2 {
		tabs := strings.Count(lines[0], "\t")
		if tabs > 0 && tabs == strings.Count(lines[1], "\t") {
			return '\t'
		}
	}

	best := ','
	bestCount := strings.Count(lines[0], ",")
	for _, candidate := range delimiterCandidates[1:] {
		if count := strings.Count(lines[0], string(candidate)); count > bestCount {
			best = candidate
			bestCount = count
		}
	}
	return best
}

// splitFields is quote-aware for comma input ("..." fields may contain commas
// and escaped "" quotes); other delimiters split directly.
func splitFields(line string, delim rune) []string {
	if delim != ',' {
		parts := strings.Split(line, string(delim))
		out := make([]string, len(parts))
		for i, p := range parts {
			out[i] = strings.TrimSpace(p)
		}
		return out
	}

	fields := make([]string, 0, 8)
	var b strings.Builder
	inQuotes := false
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				b.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case r == delim && !inQuotes:
			fields = append(fields, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(b.String()))
	return fields
}

// inferCell applies light per-cell inference: currency-style numbers become
// float64, common date shapes become ISO strings, anything else stays a
// trimmed string. Failures fall back to the original text, never error.
func inferCell(value string) any {
	v := strings.TrimSpace(value)
	if util.LooksNumeric(v) {
		if parsed, ok := util.ParseMoney(v); ok {
			return parsed
		}
	}
	if iso, ok := util.ParseCommonDate(v); ok {
		return iso
	}
	return v
}

func positionalHeader(index int) string {
	return "Column_" + strconv.Itoa(index+1)
}

func allBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
