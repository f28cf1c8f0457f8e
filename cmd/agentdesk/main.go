package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"agentdesk/internal/config"
	"agentdesk/internal/crm"
	"agentdesk/internal/intake"
	gmailconnector "agentdesk/internal/intake/gmail"
	imapconnector "agentdesk/internal/intake/imap"
	"agentdesk/internal/listener"
	"agentdesk/internal/pipeline"
	"agentdesk/internal/schema"
	"agentdesk/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "import:run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path (csv/tsv/txt/xlsx/html)")
		mapFlags := fs.String("map", "", "manual overrides header=field,header=field")
		dryRun := fs.Bool("dry-run", false, "validate without committing")
		local := fs.Bool("local", false, "commit to the local store instead of the agency API")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}

		overrides, err := parseOverrides(*mapFlags)
		must(err)

		svc := pipeline.NewImportService(db, cfg, makeSink(db, cfg, *local))
		report, err := svc.ImportFile(context.Background(), *input, pipeline.ImportOptions{
			Overrides: overrides,
			DryRun:    *dryRun,
			Progress: func(percent int) {
				fmt.Printf("import progress %d%%\n", percent)
			},
		})
		must(err)
		printReport(report)
	case "template:write":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dir := fs.String("dir", cfg.OutputDir, "output directory")
		asXLSX := fs.Bool("xlsx", false, "write an xlsx template instead of csv")
		_ = fs.Parse(os.Args[2:])
		var path string
		if *asXLSX {
			path, err = pipeline.WriteTemplateXLSX(*dir)
		} else {
			path, err = pipeline.WriteTemplateCSV(*dir)
		}
		must(err)
		fmt.Printf("template written to %s\n", path)
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", cfg.IntakeProvider, "gmail|imap")
		label := fs.String("label", cfg.IntakeLabel, "mailbox/label")
		max := fs.Int("max", cfg.IntakeFetchMax, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := intake.NewFetchService(db, cfg.RawMailDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d\n", *provider, result.Fetched, result.Stored)
	case "mail:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", cfg.IntakeProvider, "gmail|imap")
		messageID := fs.String("messageId", "", "specific message-id")
		batch := fs.Int("batch", cfg.IntakeProcessBatch, "batch size")
		local := fs.Bool("local", false, "commit to the local store instead of the agency API")
		_ = fs.Parse(os.Args[2:])
		processor := intake.NewProcessService(db, cfg, makeSink(db, cfg, *local))
		if strings.TrimSpace(*messageID) != "" {
			res, err := processor.ProcessByProviderMessageID(context.Background(), *provider, *messageID)
			must(err)
			fmt.Printf("processed email id=%d imports=%d skipped=%t\n", res.EmailID, len(res.ImportIDs), res.Skipped)
			return
		}
		processedEmails, processedImports, err := processor.ProcessPending(context.Background(), *batch, *provider)
		must(err)
		fmt.Printf("processed pending emails=%d imports=%d\n", processedEmails, processedImports)
	case "mail:listen":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		local := fs.Bool("local", false, "commit to the local store instead of the agency API")
		_ = fs.Parse(os.Args[2:])
		s := listener.NewService(db, cfg, makeSink(db, cfg, *local))
		must(s.Run(context.Background()))
	case "report:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		importID := fs.Int("importId", 0, "internal import id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *importID == 0 {
			must(fmt.Errorf("--importId is required"))
		}
		path := *out
		if strings.TrimSpace(path) == "" {
			path = filepath.Join(cfg.OutputDir, fmt.Sprintf("import_%d.xlsx", *importID))
		}
		must(pipeline.ExportImportReportXLSX(db, *importID, path))
		fmt.Printf("report written to %s\n", path)
	default:
		usage()
		os.Exit(1)
	}
}

// makeSink picks where committed records land: the agency CRM API when a
// token is configured, the local store when forced or unconfigured.
func makeSink(db *storage.DB, cfg config.Config, forceLocal bool) pipeline.RecordSink {
	if forceLocal || strings.TrimSpace(cfg.AgencyAPIToken) == "" {
		return db
	}
	return crm.NewClient(cfg)
}

func makeConnector(cfg config.Config, provider string) (intake.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func parseOverrides(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	out := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 || strings.TrimSpace(kv[0]) == "" {
			return nil, fmt.Errorf("bad --map entry: %q (want header=field)", part)
		}
		out[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return out, nil
}

func printReport(report pipeline.ImportReport) {
	fmt.Printf("import %d: %d row(s), %d header(s)\n", report.ImportID, report.TotalRows, len(report.Headers))
	for _, header := range report.Headers {
		target := report.Mapping[header]
		if target == schema.Unmapped {
			fmt.Printf("  %-28s -> (unmapped)\n", header)
			continue
		}
		fmt.Printf("  %-28s -> %s\n", header, target)
	}
	if len(report.RowErrors) > 0 {
		fmt.Printf("invalid rows: %s\n", pipeline.FormatRowErrors(report.RowErrors))
	}
	if report.DryRun {
		fmt.Printf("dry run: %d valid, %d invalid\n", report.TotalRows-len(report.RowErrors), len(report.RowErrors))
		return
	}
	for _, line := range report.Summary.Feedback {
		fmt.Println(line)
	}
	fmt.Printf("outcome=%s succeeded=%d failed=%d\n", report.Outcome, report.Summary.Succeeded, report.Summary.Failed)
}

func usage() {
	fmt.Println("usage: agentdesk <command>")
	fmt.Println("commands:")
	fmt.Println("  import:run --input=./apps.csv [--map=\"Phone #=client_phone_number\"] [--dry-run] [--local]")
	fmt.Println("  template:write [--dir=./out] [--xlsx]")
	fmt.Println("  mail:fetch --provider=gmail|imap --label=INBOX --max=20")
	fmt.Println("  mail:process --provider=gmail|imap [--messageId=...] [--batch=20] [--local]")
	fmt.Println("  mail:listen [--local]")
	fmt.Println("  report:xlsx --importId=1 [--out=./out/import_1.xlsx]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
