package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"agentdesk/internal"
)

// RecordSink is the external store's bulk-insert surface. Implementations:
// the agency CRM client (production) and the local sqlite store (dry runs,
// tests).
type RecordSink interface {
	BulkInsert(ctx context.Context, records []internal.ApplicationRecord) (int, error)
}

// Committer persists validated records in fixed-size sequential batches. A
// failed batch is recorded and the run continues; there is no cross-batch
// concurrency, trading throughput for deterministic partial-failure
// reporting.
type Committer struct {
	sink      RecordSink
	batchSize int
	delay     time.Duration
	progress  func(percent int)
}

func NewCommitter(sink RecordSink, batchSize int, delay time.Duration) *Committer {
	if batchSize <= 0 {
		batchSize = 5
	}
	return &Committer{sink: sink, batchSize: batchSize, delay: delay}
}

// WithProgress registers a callback invoked after every batch with the
// cumulative completion percentage.
func (c *Committer) WithProgress(fn func(percent int)) *Committer {
	c.progress = fn
	return c
}

// Commit runs all batches in order. Errors from the sink are converted into
// feedback messages; nothing propagates as a Go error past this boundary so
// the user-visible channel stays uniform.
func (c *Committer) Commit(ctx context.Context, rows []internal.NormalizedRow) internal.CommitSummary {
	summary := internal.CommitSummary{}
	if len(rows) == 0 {
		return summary
	}

	records := make([]internal.ApplicationRecord, len(rows))
	for i, row := range rows {
		records[i] = row.Record
	}

	totalBatches := (len(records) + c.batchSize - 1) / c.batchSize
	for i := 0; i < len(records); i += c.batchSize {
		end := i + c.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[i:end]
		batchIndex := i/c.batchSize + 1

		result := internal.ImportBatchResult{
			BatchIndex: batchIndex,
			Attempted:  len(batch),
		}

		if _, err := c.sink.BulkInsert(ctx, batch); err != nil {
			result.Failed = true
			result.Message = fmt.Sprintf("batch %d failed: %v", batchIndex, err)
			summary.Failed += len(batch)
		} else {
			result.Succeeded = len(batch)
			result.Message = fmt.Sprintf("batch %d: inserted %d record(s)", batchIndex, len(batch))
			summary.Succeeded += len(batch)
		}

		summary.Batches = append(summary.Batches, result)
		summary.Feedback = append(summary.Feedback, result.Message)

		if c.progress != nil {
			c.progress(int(math.Round(float64(batchIndex) / float64(totalBatches) * 100)))
		}

		// Cooperative pacing toward the remote store, not a correctness
		// requirement.
		if c.delay > 0 && end < len(records) {
			time.Sleep(c.delay)
		}
	}

	return summary
}
