package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"agentdesk/internal/config"
	"agentdesk/internal/crm"
	"agentdesk/internal/listener"
	"agentdesk/internal/pipeline"
	"agentdesk/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	var sink pipeline.RecordSink = db
	if strings.TrimSpace(cfg.AgencyAPIToken) != "" {
		sink = crm.NewClient(cfg)
	}

	svc := listener.NewService(db, cfg, sink)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
