package pipeline

import (
	"strings"
	"testing"

	"agentdesk/internal"
)

func row(index int, fields map[string]any) internal.NormalizedRow {
	record := internal.ApplicationRecord{}
	for k, v := range fields {
		record[k] = v
	}
	return internal.NormalizedRow{Index: index, Record: record}
}

func TestValidatePartitions(t *testing.T) {
	rows := []internal.NormalizedRow{
		row(0, map[string]any{"proposed_insured": "John", "client_phone_number": "555", "carrier": "Americo", "product": "Term"}),
		row(1, map[string]any{"proposed_insured": "Mary"}),
	}

	valid, invalid := Validate(rows, nil)
	if len(valid) != 1 || len(invalid) != 1 {
		t.Fatalf("valid=%d invalid=%d", len(valid), len(invalid))
	}
	if invalid[0].Row != 3 {
		t.Fatalf("row=%d want=3", invalid[0].Row)
	}
	joined := strings.Join(invalid[0].Reasons, ", ")
	for _, want := range []string{"missing phone number", "missing carrier", "missing product"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("reasons=%q missing %q", joined, want)
		}
	}
}

func TestValidateBlankStringIsMissing(t *testing.T) {
	rows := []internal.NormalizedRow{
		row(0, map[string]any{"proposed_insured": "  ", "client_phone_number": "555", "carrier": "A", "product": "B"}),
	}
	valid, invalid := Validate(rows, nil)
	if len(valid) != 0 || len(invalid) != 1 {
		t.Fatalf("valid=%d invalid=%d", len(valid), len(invalid))
	}
	if invalid[0].Reasons[0] != "missing client name" {
		t.Fatalf("reason=%q", invalid[0].Reasons[0])
	}
}

func TestValidateCustomRequiredFields(t *testing.T) {
	rows := []internal.NormalizedRow{
		row(0, map[string]any{"carrier": "Americo"}),
	}
	valid, invalid := Validate(rows, []string{"carrier"})
	if len(valid) != 1 || len(invalid) != 0 {
		t.Fatalf("valid=%d invalid=%d", len(valid), len(invalid))
	}
}

func TestDisplayRowNumber(t *testing.T) {
	if DisplayRowNumber(0) != 2 {
		t.Fatalf("got %d", DisplayRowNumber(0))
	}
	if DisplayRowNumber(9) != 11 {
		t.Fatalf("got %d", DisplayRowNumber(9))
	}
}

func TestFormatRowErrors(t *testing.T) {
	errs := []internal.RowError{
		{Row: 2, Reasons: []string{"missing carrier"}},
		{Row: 5, Reasons: []string{"missing client name", "missing product"}},
	}
	got := FormatRowErrors(errs)
	want := "row 2: missing carrier; row 5: missing client name, missing product"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
