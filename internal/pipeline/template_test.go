package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"agentdesk/internal"
	"agentdesk/internal/schema"
)

func TestTemplateCSVRoundTrip(t *testing.T) {
	table, err := ParseTable(string(TemplateCSV()), internal.SourceCSVFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows=%d", len(table.Rows))
	}

	// Every template header must auto-map; shipping a sample that needs
	// manual mapping defeats its purpose.
	mapping := NewMapper(schema.DefaultDictionary()).AutoMap(table.Headers)
	for header, target := range mapping {
		if target == schema.Unmapped {
			t.Fatalf("template header %q does not auto-map", header)
		}
	}

	required := map[string]bool{}
	for _, target := range mapping {
		required[target] = true
	}
	for _, field := range schema.DefaultRequiredFields {
		if !required[field] {
			t.Fatalf("template misses required field %s", field)
		}
	}
}

func TestWriteTemplateCSV(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteTemplateCSV(dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != TemplateFileName {
		t.Fatalf("path=%s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
}

func TestWriteTemplateXLSX(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteTemplateXLSX(dir)
	if err != nil {
		t.Fatal(err)
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	table, err := ParseXLSX(blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows=%d", len(table.Rows))
	}
}
