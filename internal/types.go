package internal

// ImportSource identifies where the tabular input came from.
type ImportSource string

const (
	SourcePaste     ImportSource = "paste"
	SourceCSVFile   ImportSource = "csv_file"
	SourceXLSX      ImportSource = "xlsx"
	SourceHTMLTable ImportSource = "html_table"
	SourceEmail     ImportSource = "email_attachment"
)

// RawTable is the parsed shape of one tabular input. Every row carries a
// value for every header (padded/truncated during parsing). Cell values are
// strings unless best-effort inference produced a float64 or an ISO date
// string.
type RawTable struct {
	Headers      []string
	Rows         []map[string]any
	Source       ImportSource
	Delimiter    rune
	SkippedLines int
}

// FieldMapping maps each source header to a target field name or the
// "unmapped" sentinel. Keys are exactly the RawTable headers.
type FieldMapping map[string]string

// ApplicationRecord is one normalized application ready for commitment, keyed
// by target field name plus the audit fields.
type ApplicationRecord map[string]any

// NormalizedRow pairs a record with its zero-based source row index.
type NormalizedRow struct {
	Index             int
	Record            ApplicationRecord
	DerivedCommission bool
}

// RowError reports why one row failed validation. Row is the user-facing row
// number (source spreadsheet numbering, header row included).
type RowError struct {
	Row     int      `json:"row"`
	Reasons []string `json:"reasons"`
}

// ImportBatchResult is the outcome of one bulk-insert attempt.
type ImportBatchResult struct {
	BatchIndex int    `json:"batchIndex"`
	Attempted  int    `json:"attempted"`
	Succeeded  int    `json:"succeeded"`
	Failed     bool   `json:"failed"`
	Message    string `json:"message"`
}

// CommitSummary aggregates all batches of one import attempt.
type CommitSummary struct {
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Batches   []ImportBatchResult `json:"batches"`
	Feedback  []string            `json:"feedback"`
}

type ImportOutcome string

const (
	OutcomeSuccess ImportOutcome = "success"
	OutcomePartial ImportOutcome = "partial"
	OutcomeFailed  ImportOutcome = "failed"
)

// Outcome classifies the terminal state of a commit run.
func (s CommitSummary) Outcome() ImportOutcome {
	switch {
	case s.Succeeded > 0 && s.Failed == 0:
		return OutcomeSuccess
	case s.Succeeded > 0:
		return OutcomePartial
	default:
		return OutcomeFailed
	}
}

// ImportRun is the persisted record of one import attempt.
type ImportRun struct {
	ID          int
	Source      string
	Origin      string
	Status      string
	TotalRows   int
	ValidRows   int
	InvalidRows int
	Succeeded   int
	Failed      int
	CreatedAt   string
}

// ImportRowRecord is the persisted per-row outcome of an import run.
type ImportRowRecord struct {
	ImportID    int
	RowNumber   int
	Status      string
	ReasonsJSON string
	RecordJSON  string
}

// IntakeMailRow is a fetched intake message tracked in the local store.
type IntakeMailRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

// FetchedMailMessage is a raw message pulled from an intake mailbox.
type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}
