package pipeline

import (
	"fmt"
	"strings"

	"agentdesk/internal"
	"agentdesk/internal/schema"
)

// DisplayRowNumber converts a zero-based data row index to the row number an
// operator sees in the source spreadsheet (header row is row 1).
func DisplayRowNumber(index int) int {
	return index + 2
}

// Validate partitions normalized rows into committable records and per-row
// error reports against the required-field contract. A row may accumulate
// several reasons.
func Validate(rows []internal.NormalizedRow, requiredFields []string) ([]internal.NormalizedRow, []internal.RowError) {
	if len(requiredFields) == 0 {
		requiredFields = schema.DefaultRequiredFields
	}

	valid := make([]internal.NormalizedRow, 0, len(rows))
	var invalid []internal.RowError

	for _, row := range rows {
		var reasons []string
		for _, field := range requiredFields {
			if !present(row.Record[field]) {
				reasons = append(reasons, fmt.Sprintf("missing %s", schema.LabelFor(field)))
			}
		}
		if len(reasons) == 0 {
			valid = append(valid, row)
			continue
		}
		invalid = append(invalid, internal.RowError{Row: DisplayRowNumber(row.Index), Reasons: reasons})
	}

	return valid, invalid
}

func present(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	default:
		return true
	}
}

// FormatRowErrors renders the aggregated validation report shown before any
// commit attempt.
func FormatRowErrors(errs []internal.RowError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("row %d: %s", e.Row, strings.Join(e.Reasons, ", ")))
	}
	return strings.Join(parts, "; ")
}
