package intake

import (
	"context"
	"errors"
	"fmt"
	"os"

	"agentdesk/internal"
	"agentdesk/internal/config"
	"agentdesk/internal/pipeline"
	"agentdesk/internal/storage"
	"agentdesk/internal/util"
)

// ProcessService turns stored intake messages into import runs.
type ProcessService struct {
	db       *storage.DB
	cfg      config.Config
	importer *pipeline.ImportService
}

func NewProcessService(db *storage.DB, cfg config.Config, sink pipeline.RecordSink) *ProcessService {
	return &ProcessService{
		db:       db,
		cfg:      cfg,
		importer: pipeline.NewImportService(db, cfg, sink),
	}
}

type ProcessResult struct {
	EmailID   int
	ImportIDs []int
	Skipped   bool
}

func (s *ProcessService) ProcessByProviderMessageID(ctx context.Context, provider, messageID string) (ProcessResult, error) {
	email, err := s.db.MustEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessEmail(ctx, email)
}

// ProcessPending runs every fetched message, oldest first, up to limit.
// A message that fails to import is marked failed and does not stop the rest.
func (s *ProcessService) ProcessPending(ctx context.Context, limit int, provider string) (int, int, error) {
	pending, err := s.db.ListEmailsByStatus("fetched", limit)
	if err != nil {
		return 0, 0, err
	}

	processedEmails := 0
	processedImports := 0
	for _, email := range pending {
		if provider != "" && email.Provider != provider {
			continue
		}
		res, err := s.ProcessEmail(ctx, email)
		if err != nil {
			fmt.Printf("intake process error emailId=%d err=%v\n", email.ID, err)
			_ = s.db.UpdateEmailStatus(email.ID, "failed")
			continue
		}
		processedEmails++
		processedImports += len(res.ImportIDs)
	}
	return processedEmails, processedImports, nil
}

// ProcessEmail extracts tabular payloads, gates them through detection, and
// imports each one. Messages the detector rejects are marked skipped.
func (s *ProcessService) ProcessEmail(ctx context.Context, email internal.IntakeMailRow) (ProcessResult, error) {
	raw, err := os.ReadFile(email.RawRef)
	if err != nil {
		return ProcessResult{}, err
	}

	payloads, subject, text, attachmentNames, err := ExtractPayloads(raw)
	if err != nil {
		return ProcessResult{}, err
	}
	detect := pipeline.DetectImportPayload(util.FirstNonEmpty(subject, email.Subject), text, attachmentNames)
	if !detect.IsImport || len(payloads) == 0 {
		_ = s.db.UpdateEmailStatus(email.ID, "skipped")
		return ProcessResult{EmailID: email.ID, Skipped: true}, nil
	}

	result := ProcessResult{EmailID: email.ID}
	var lastErr error
	for _, payload := range payloads {
		report, err := s.importPayload(ctx, email.ID, payload)
		if err != nil {
			// Empty or headerless payloads are expected for body candidates.
			if errors.Is(err, pipeline.ErrEmptyInput) || errors.Is(err, pipeline.ErrHeaderParse) {
				continue
			}
			lastErr = err
			continue
		}
		result.ImportIDs = append(result.ImportIDs, report.ImportID)
	}

	if len(result.ImportIDs) == 0 {
		_ = s.db.UpdateEmailStatus(email.ID, "failed")
		if lastErr != nil {
			return result, lastErr
		}
		return result, fmt.Errorf("no importable payload in message %s", email.MessageID)
	}

	if err := s.db.UpdateEmailStatus(email.ID, "processed"); err != nil {
		return result, err
	}
	return result, nil
}

func (s *ProcessService) importPayload(ctx context.Context, emailID int, payload MailPayload) (pipeline.ImportReport, error) {
	opts := pipeline.ImportOptions{
		Source:  payload.Source,
		Origin:  payload.Origin,
		EmailID: &emailID,
	}

	if payload.XLSX != nil {
		table, err := pipeline.ParseXLSX(payload.XLSX)
		if err != nil {
			return pipeline.ImportReport{}, err
		}
		table.Source = internal.SourceEmail
		return s.importer.ImportTable(ctx, table, opts)
	}
	return s.importer.ImportText(ctx, payload.Text, opts)
}
