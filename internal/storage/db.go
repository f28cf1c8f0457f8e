package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"agentdesk/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS emails (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS imports (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  source TEXT NOT NULL,
  origin TEXT,
  emailId INTEGER,
  status TEXT NOT NULL DEFAULT 'pending',
  headersJson TEXT NOT NULL DEFAULT '[]',
  mappingJson TEXT NOT NULL DEFAULT '{}',
  totalRows INTEGER NOT NULL DEFAULT 0,
  validRows INTEGER NOT NULL DEFAULT 0,
  invalidRows INTEGER NOT NULL DEFAULT 0,
  skippedLines INTEGER NOT NULL DEFAULT 0,
  succeeded INTEGER NOT NULL DEFAULT 0,
  failed INTEGER NOT NULL DEFAULT 0,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(emailId) REFERENCES emails(id)
);

CREATE TABLE IF NOT EXISTS import_rows (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  importId INTEGER NOT NULL,
  rowNumber INTEGER NOT NULL,
  status TEXT NOT NULL,
  reasonsJson TEXT NOT NULL DEFAULT '[]',
  recordJson TEXT NOT NULL DEFAULT '{}',
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(importId) REFERENCES imports(id)
);
CREATE INDEX IF NOT EXISTS idx_import_rows_import ON import_rows(importId);

CREATE TABLE IF NOT EXISTS import_batches (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  importId INTEGER NOT NULL,
  batchIndex INTEGER NOT NULL,
  attempted INTEGER NOT NULL,
  succeeded INTEGER NOT NULL,
  failed INTEGER NOT NULL DEFAULT 0,
  message TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(importId) REFERENCES imports(id)
);

CREATE TABLE IF NOT EXISTS applications (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  agentId TEXT,
  proposedInsured TEXT,
  carrier TEXT,
  product TEXT,
  monthlyPremium REAL,
  recordJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_applications_agent ON applications(agentId);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// ---- intake mail ----

func (d *DB) UpsertEmail(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.IntakeMailRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO emails (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.IntakeMailRow{}, err
	}

	row, err := d.GetEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.IntakeMailRow{}, err
	}
	if row == nil {
		return internal.IntakeMailRow{}, errors.New("failed to upsert email")
	}
	return *row, nil
}

func (d *DB) GetEmailByProviderMessageID(provider, messageID string) (*internal.IntakeMailRow, error) {
	var row internal.IntakeMailRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM emails WHERE provider = ? AND messageId = ?
`, provider, messageID).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) MustEmailByProviderMessageID(provider, messageID string) (internal.IntakeMailRow, error) {
	row, err := d.GetEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.IntakeMailRow{}, err
	}
	if row == nil {
		return internal.IntakeMailRow{}, fmt.Errorf("email not found: provider=%s messageId=%s", provider, messageID)
	}
	return *row, nil
}

func (d *DB) ListEmailsByStatus(status string, limit int) ([]internal.IntakeMailRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM emails WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.IntakeMailRow
	for rows.Next() {
		var row internal.IntakeMailRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateEmailStatus(emailID int, status string) error {
	_, err := d.conn.Exec(`UPDATE emails SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, emailID)
	return err
}

// ---- import history ----

func (d *DB) InsertImport(source internal.ImportSource, origin string, emailID *int) (int, error) {
	result, err := d.conn.Exec(`
INSERT INTO imports (source, origin, emailId) VALUES (?, ?, ?)
`, string(source), origin, emailID)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	return int(id), err
}

func (d *DB) UpdateImportParse(importID int, headers []string, mapping internal.FieldMapping, totalRows, skippedLines int) error {
	headersJSON, _ := json.Marshal(headers)
	mappingJSON, _ := json.Marshal(mapping)
	_, err := d.conn.Exec(`
UPDATE imports SET headersJson = ?, mappingJson = ?, totalRows = ?, skippedLines = ?, updatedAt = CURRENT_TIMESTAMP
WHERE id = ?
`, string(headersJSON), string(mappingJSON), totalRows, skippedLines, importID)
	return err
}

func (d *DB) UpdateImportResult(importID int, status string, validRows, invalidRows, succeeded, failed int) error {
	_, err := d.conn.Exec(`
UPDATE imports SET status = ?, validRows = ?, invalidRows = ?, succeeded = ?, failed = ?, updatedAt = CURRENT_TIMESTAMP
WHERE id = ?
`, status, validRows, invalidRows, succeeded, failed, importID)
	return err
}

func (d *DB) GetImport(importID int) (*internal.ImportRun, error) {
	var run internal.ImportRun
	var origin sql.NullString
	err := d.conn.QueryRow(`
SELECT id, source, origin, status, totalRows, validRows, invalidRows, succeeded, failed, createdAt
FROM imports WHERE id = ?
`, importID).Scan(&run.ID, &run.Source, &origin, &run.Status, &run.TotalRows, &run.ValidRows, &run.InvalidRows, &run.Succeeded, &run.Failed, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	run.Origin = origin.String
	return &run, nil
}

func (d *DB) ListImportsByEmail(emailID int) ([]internal.ImportRun, error) {
	rows, err := d.conn.Query(`
SELECT id, source, origin, status, totalRows, validRows, invalidRows, succeeded, failed, createdAt
FROM imports WHERE emailId = ? ORDER BY id ASC
`, emailID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ImportRun
	for rows.Next() {
		var run internal.ImportRun
		var origin sql.NullString
		if err := rows.Scan(&run.ID, &run.Source, &origin, &run.Status, &run.TotalRows, &run.ValidRows, &run.InvalidRows, &run.Succeeded, &run.Failed, &run.CreatedAt); err != nil {
			return nil, err
		}
		run.Origin = origin.String
		out = append(out, run)
	}
	return out, rows.Err()
}

func (d *DB) InsertImportRows(importID int, records []internal.ImportRowRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO import_rows (importId, rowNumber, status, reasonsJson, recordJson)
VALUES (?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(importID, r.RowNumber, r.Status, r.ReasonsJSON, r.RecordJSON); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) GetImportRows(importID int) ([]internal.ImportRowRecord, error) {
	rows, err := d.conn.Query(`
SELECT importId, rowNumber, status, reasonsJson, recordJson
FROM import_rows WHERE importId = ?
ORDER BY
  CASE status WHEN 'committed' THEN 1 WHEN 'failed' THEN 2 ELSE 3 END,
  rowNumber ASC
`, importID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ImportRowRecord
	for rows.Next() {
		var r internal.ImportRowRecord
		if err := rows.Scan(&r.ImportID, &r.RowNumber, &r.Status, &r.ReasonsJSON, &r.RecordJSON); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) InsertImportBatches(importID int, batches []internal.ImportBatchResult) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO import_batches (importId, batchIndex, attempted, succeeded, failed, message)
VALUES (?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range batches {
		failed := 0
		if b.Failed {
			failed = 1
		}
		if _, err := stmt.Exec(importID, b.BatchIndex, b.Attempted, b.Succeeded, failed, b.Message); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ---- local application sink ----

// BulkInsert satisfies the committer's sink interface against the local
// database, used for dry runs and tests.
func (d *DB) BulkInsert(_ context.Context, records []internal.ApplicationRecord) (int, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO applications (agentId, proposedInsured, carrier, product, monthlyPremium, recordJson)
VALUES (?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, record := range records {
		blob, err := json.Marshal(record)
		if err != nil {
			return 0, err
		}
		var premium any
		if p, ok := record["monthly_premium"].(float64); ok {
			premium = p
		}
		if _, err := stmt.Exec(
			textField(record, "agent_id"),
			textField(record, "proposed_insured"),
			textField(record, "carrier"),
			textField(record, "product"),
			premium,
			string(blob),
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(records), nil
}

func (d *DB) CountApplications() (int, error) {
	var n int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM applications`).Scan(&n)
	return n, err
}

func textField(record internal.ApplicationRecord, key string) any {
	if v, ok := record[key].(string); ok && v != "" {
		return v
	}
	return nil
}

// ---- metadata ----

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
