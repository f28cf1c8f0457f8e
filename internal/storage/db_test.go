package storage

import (
	"context"
	"path/filepath"
	"testing"

	"agentdesk/internal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUpsertEmailIdempotent(t *testing.T) {
	db := openTestDB(t)

	first, err := db.UpsertEmail("gmail", "<m1@example.com>", "subj", "a@example.com", "2026-03-02T15:00:00Z", "h1", "/tmp/h1.eml", "fetched")
	if err != nil {
		t.Fatal(err)
	}
	second, err := db.UpsertEmail("gmail", "<m1@example.com>", "subj updated", "a@example.com", "2026-03-02T15:00:00Z", "h1", "/tmp/h1.eml", "fetched")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Fatalf("ids differ: %d vs %d", first.ID, second.ID)
	}
	if second.Subject != "subj updated" {
		t.Fatalf("subject=%q", second.Subject)
	}

	if err := db.UpdateEmailStatus(first.ID, "processed"); err != nil {
		t.Fatal(err)
	}
	fetched, err := db.ListEmailsByStatus("fetched", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(fetched) != 0 {
		t.Fatalf("fetched=%d", len(fetched))
	}
}

func TestImportLifecycle(t *testing.T) {
	db := openTestDB(t)

	id, err := db.InsertImport(internal.SourceCSVFile, "apps.csv", nil)
	if err != nil {
		t.Fatal(err)
	}

	headers := []string{"Name", "Carrier"}
	mapping := internal.FieldMapping{"Name": "proposed_insured", "Carrier": "carrier"}
	if err := db.UpdateImportParse(id, headers, mapping, 3, 1); err != nil {
		t.Fatal(err)
	}

	rows := []internal.ImportRowRecord{
		{RowNumber: 4, Status: "invalid", ReasonsJSON: `["missing carrier"]`, RecordJSON: "{}"},
		{RowNumber: 2, Status: "committed", ReasonsJSON: "[]", RecordJSON: `{"proposed_insured":"John"}`},
		{RowNumber: 3, Status: "failed", ReasonsJSON: "[]", RecordJSON: `{"proposed_insured":"Mary"}`},
	}
	if err := db.InsertImportRows(id, rows); err != nil {
		t.Fatal(err)
	}

	batches := []internal.ImportBatchResult{
		{BatchIndex: 1, Attempted: 1, Succeeded: 1, Message: "batch 1: inserted 1 record(s)"},
		{BatchIndex: 2, Attempted: 1, Failed: true, Message: "batch 2 failed: boom"},
	}
	if err := db.InsertImportBatches(id, batches); err != nil {
		t.Fatal(err)
	}

	if err := db.UpdateImportResult(id, "partial", 2, 1, 1, 1); err != nil {
		t.Fatal(err)
	}

	run, err := db.GetImport(id)
	if err != nil {
		t.Fatal(err)
	}
	if run == nil || run.Status != "partial" || run.TotalRows != 3 || run.Succeeded != 1 {
		t.Fatalf("run=%+v", run)
	}

	got, err := db.GetImportRows(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("rows=%d", len(got))
	}
	// Committed rows sort first, then failed, then the rest.
	if got[0].Status != "committed" || got[1].Status != "failed" || got[2].Status != "invalid" {
		t.Fatalf("order=%s/%s/%s", got[0].Status, got[1].Status, got[2].Status)
	}
}

func TestListImportsByEmail(t *testing.T) {
	db := openTestDB(t)

	email, err := db.UpsertEmail("imap", "<m2@example.com>", "s", "a@example.com", "2026-03-02T15:00:00Z", "h", "/tmp/h.eml", "fetched")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := db.InsertImport(internal.SourceEmail, "a.csv", &email.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := db.InsertImport(internal.SourceEmail, "b.csv", &email.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := db.InsertImport(internal.SourceCSVFile, "other.csv", nil); err != nil {
		t.Fatal(err)
	}

	runs, err := db.ListImportsByEmail(email.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs=%d", len(runs))
	}
	if runs[0].Origin != "a.csv" || runs[1].Origin != "b.csv" {
		t.Fatalf("origins=%s/%s", runs[0].Origin, runs[1].Origin)
	}
}

func TestLocalBulkInsert(t *testing.T) {
	db := openTestDB(t)

	records := []internal.ApplicationRecord{
		{"agent_id": "agent-1", "proposed_insured": "John Smith", "carrier": "Americo", "product": "Term Life", "monthly_premium": 45.99},
		{"agent_id": "agent-1", "proposed_insured": "Mary Johnson"},
	}
	inserted, err := db.BulkInsert(context.Background(), records)
	if err != nil {
		t.Fatal(err)
	}
	if inserted != 2 {
		t.Fatalf("inserted=%d", inserted)
	}

	count, err := db.CountApplications()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("count=%d", count)
	}
}

func TestMetadata(t *testing.T) {
	db := openTestDB(t)

	missing, err := db.GetMetadata("schema_version")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Fatalf("missing=%v", *missing)
	}

	if err := db.SetMetadata("schema_version", "1"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMetadata("schema_version", "2"); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetMetadata("schema_version")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || *got != "2" {
		t.Fatalf("got=%v", got)
	}
}
