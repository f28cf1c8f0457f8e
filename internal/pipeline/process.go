package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"agentdesk/internal"
	"agentdesk/internal/config"
	"agentdesk/internal/schema"
	"agentdesk/internal/storage"
)

// ErrNoValidRows aborts an import before any commit attempt when validation
// rejects every record.
var ErrNoValidRows = errors.New("no valid records to import")

// ImportService runs the whole pipeline for one input: parse, map,
// normalize, validate, commit, and record the run in the local store.
type ImportService struct {
	db     *storage.DB
	cfg    config.Config
	sink   RecordSink
	mapper *Mapper
}

func NewImportService(db *storage.DB, cfg config.Config, sink RecordSink) *ImportService {
	return &ImportService{
		db:     db,
		cfg:    cfg,
		sink:   sink,
		mapper: NewMapper(schema.DefaultDictionary()),
	}
}

// ImportOptions carries the per-run knobs the surrounding surface (CLI or
// mail intake) controls.
type ImportOptions struct {
	Source    internal.ImportSource
	Origin    string
	EmailID   *int
	Overrides map[string]string
	DryRun    bool
	Progress  func(percent int)
}

// ImportReport is the terminal artifact of one import attempt.
type ImportReport struct {
	ImportID  int
	Headers   []string
	Mapping   internal.FieldMapping
	TotalRows int
	RowErrors []internal.RowError
	Summary   internal.CommitSummary
	Outcome   internal.ImportOutcome
	Aborted   bool
	DryRun    bool
}

// ImportFile dispatches on the file's shape: xlsx workbooks, HTML table
// markup, or delimited text.
func (s *ImportService) ImportFile(ctx context.Context, path string, opts ImportOptions) (ImportReport, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return ImportReport{}, err
	}
	if opts.Origin == "" {
		opts.Origin = filepath.Base(path)
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		opts.Source = internal.SourceXLSX
		table, err := ParseXLSX(blob)
		if err != nil {
			return ImportReport{}, err
		}
		return s.ImportTable(ctx, table, opts)
	}

	if opts.Source == "" {
		opts.Source = internal.SourceCSVFile
	}
	return s.ImportText(ctx, string(blob), opts)
}

// ImportText handles pasted or file-read text, including HTML table paste.
func (s *ImportService) ImportText(ctx context.Context, text string, opts ImportOptions) (ImportReport, error) {
	if opts.Source == "" {
		opts.Source = internal.SourcePaste
	}

	var table internal.RawTable
	var err error
	if LooksLikeHTMLTable(text) {
		table, err = ParseHTMLTable(text)
	} else {
		table, err = ParseTable(text, opts.Source)
	}
	if err != nil {
		return ImportReport{}, err
	}
	return s.ImportTable(ctx, table, opts)
}

// ImportTable runs mapping through commitment for an already-parsed table.
func (s *ImportService) ImportTable(ctx context.Context, table internal.RawTable, opts ImportOptions) (ImportReport, error) {
	importID, err := s.db.InsertImport(table.Source, opts.Origin, opts.EmailID)
	if err != nil {
		return ImportReport{}, err
	}

	mapping := s.mapper.AutoMap(table.Headers)
	for header, target := range opts.Overrides {
		if err := Override(mapping, header, target); err != nil {
			return ImportReport{}, err
		}
	}

	if err := s.db.UpdateImportParse(importID, table.Headers, mapping, len(table.Rows), table.SkippedLines); err != nil {
		return ImportReport{}, err
	}

	report := ImportReport{
		ImportID:  importID,
		Headers:   table.Headers,
		Mapping:   mapping,
		TotalRows: len(table.Rows),
		DryRun:    opts.DryRun,
	}

	normalized := NewNormalizer(s.cfg).Normalize(table, mapping)
	valid, rowErrors := Validate(normalized, s.cfg.ImportRequiredFields)
	report.RowErrors = rowErrors

	if len(valid) == 0 {
		report.Aborted = true
		report.Outcome = internal.OutcomeFailed
		_ = s.db.InsertImportRows(importID, invalidRowRecords(importID, rowErrors))
		_ = s.db.UpdateImportResult(importID, "aborted", 0, len(rowErrors), 0, 0)
		return report, fmt.Errorf("%w: %s", ErrNoValidRows, FormatRowErrors(rowErrors))
	}

	if opts.DryRun {
		rows := invalidRowRecords(importID, rowErrors)
		rows = append(rows, committedRowRecords(importID, valid, nil)...)
		_ = s.db.InsertImportRows(importID, rows)
		err := s.db.UpdateImportResult(importID, "dry_run", len(valid), len(rowErrors), 0, 0)
		return report, err
	}

	delay := time.Duration(s.cfg.ImportBatchDelayMs) * time.Millisecond
	committer := NewCommitter(s.sink, s.cfg.ImportBatchSize, delay).WithProgress(opts.Progress)
	summary := committer.Commit(ctx, valid)
	report.Summary = summary
	report.Outcome = summary.Outcome()

	rows := invalidRowRecords(importID, rowErrors)
	rows = append(rows, committedRowRecords(importID, valid, summary.Batches)...)
	if err := s.db.InsertImportRows(importID, rows); err != nil {
		return report, err
	}
	if err := s.db.InsertImportBatches(importID, summary.Batches); err != nil {
		return report, err
	}
	err = s.db.UpdateImportResult(importID, string(report.Outcome), len(valid), len(rowErrors), summary.Succeeded, summary.Failed)
	return report, err
}

func invalidRowRecords(importID int, rowErrors []internal.RowError) []internal.ImportRowRecord {
	out := make([]internal.ImportRowRecord, 0, len(rowErrors))
	for _, e := range rowErrors {
		reasons, _ := json.Marshal(e.Reasons)
		out = append(out, internal.ImportRowRecord{
			ImportID:    importID,
			RowNumber:   e.Row,
			Status:      "invalid",
			ReasonsJSON: string(reasons),
			RecordJSON:  "{}",
		})
	}
	return out
}

// committedRowRecords maps each valid row to the outcome of the batch it was
// committed in. With nil batches (dry run) every row is recorded as valid.
func committedRowRecords(importID int, valid []internal.NormalizedRow, batches []internal.ImportBatchResult) []internal.ImportRowRecord {
	out := make([]internal.ImportRowRecord, 0, len(valid))
	for i, row := range valid {
		status := "valid"
		if batches != nil {
			status = "committed"
			batchIndex := 0
			attempted := 0
			for bi, b := range batches {
				attempted += b.Attempted
				if i < attempted {
					batchIndex = bi
					break
				}
			}
			if batches[batchIndex].Failed {
				status = "failed"
			}
		}
		blob, _ := json.Marshal(row.Record)
		out = append(out, internal.ImportRowRecord{
			ImportID:    importID,
			RowNumber:   DisplayRowNumber(row.Index),
			Status:      status,
			ReasonsJSON: "[]",
			RecordJSON:  string(blob),
		})
	}
	return out
}
