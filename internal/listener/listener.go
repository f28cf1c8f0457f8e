package listener

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"agentdesk/internal/config"
	"agentdesk/internal/intake"
	gmailconnector "agentdesk/internal/intake/gmail"
	imapconnector "agentdesk/internal/intake/imap"
	"agentdesk/internal/pipeline"
	"agentdesk/internal/storage"
)

// Service polls the intake mailbox on an interval, imports what it finds,
// and optionally drops an xlsx report per processed message.
type Service struct {
	db   *storage.DB
	cfg  config.Config
	sink pipeline.RecordSink
}

func NewService(db *storage.DB, cfg config.Config, sink pipeline.RecordSink) *Service {
	return &Service{db: db, cfg: cfg, sink: sink}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			fmt.Printf("intake cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.IntakeIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.IntakeProvider))
	mailConnector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetchService := intake.NewFetchService(s.db, s.cfg.RawMailDir, mailConnector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.IntakeLabel, s.cfg.IntakeFetchMax)
	if err != nil {
		return err
	}

	processor := intake.NewProcessService(s.db, s.cfg, s.sink)
	processedEmails, processedImports, err := processor.ProcessPending(ctx, s.cfg.IntakeProcessBatch, provider)
	if err != nil {
		return err
	}

	if s.cfg.IntakeAutoReport {
		if err := s.reportProcessed(provider); err != nil {
			return err
		}
	}

	fmt.Printf("intake cycle done provider=%s fetched=%d stored=%d processed=%d imports=%d\n", provider, fetchResult.Fetched, fetchResult.Stored, processedEmails, processedImports)
	return nil
}

func (s *Service) reportProcessed(provider string) error {
	emails, err := s.db.ListEmailsByStatus("processed", 200)
	if err != nil {
		return err
	}

	for _, email := range emails {
		if email.Provider != provider {
			continue
		}
		runs, err := s.db.ListImportsByEmail(email.ID)
		if err != nil {
			return err
		}
		for _, run := range runs {
			filename := fmt.Sprintf("%d_%d_%s.xlsx", email.ID, run.ID, sanitizeMessageID(email.MessageID))
			outputPath := filepath.Join(s.cfg.OutputDir, "intake", filename)
			if err := pipeline.ExportImportReportXLSX(s.db, run.ID, outputPath); err != nil {
				return err
			}
		}
		_ = s.db.UpdateEmailStatus(email.ID, "reported")
	}
	return nil
}

func (s *Service) makeConnector(provider string) (intake.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported intake provider: %s", provider)
	}
}

func sanitizeMessageID(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}
