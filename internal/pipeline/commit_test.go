package pipeline

import (
	"context"
	"errors"
	"testing"

	"agentdesk/internal"
)

type fakeSink struct {
	calls   [][]internal.ApplicationRecord
	failOn  map[int]bool // 1-based call index
	callNum int
}

func (f *fakeSink) BulkInsert(_ context.Context, records []internal.ApplicationRecord) (int, error) {
	f.callNum++
	f.calls = append(f.calls, records)
	if f.failOn[f.callNum] {
		return 0, errors.New("insert rejected")
	}
	return len(records), nil
}

func makeRows(n int) []internal.NormalizedRow {
	rows := make([]internal.NormalizedRow, n)
	for i := range rows {
		rows[i] = internal.NormalizedRow{Index: i, Record: internal.ApplicationRecord{"proposed_insured": "x"}}
	}
	return rows
}

func TestCommitBatchAccounting(t *testing.T) {
	sink := &fakeSink{}
	summary := NewCommitter(sink, 5, 0).Commit(context.Background(), makeRows(12))

	if len(sink.calls) != 3 {
		t.Fatalf("calls=%d", len(sink.calls))
	}
	if len(sink.calls[0]) != 5 || len(sink.calls[1]) != 5 || len(sink.calls[2]) != 2 {
		t.Fatalf("batch sizes %d/%d/%d", len(sink.calls[0]), len(sink.calls[1]), len(sink.calls[2]))
	}
	if summary.Succeeded != 12 || summary.Failed != 0 {
		t.Fatalf("succeeded=%d failed=%d", summary.Succeeded, summary.Failed)
	}
	if summary.Outcome() != internal.OutcomeSuccess {
		t.Fatalf("outcome=%s", summary.Outcome())
	}
	if len(summary.Batches) != 3 || summary.Batches[2].BatchIndex != 3 {
		t.Fatalf("batches=%v", summary.Batches)
	}
}

func TestCommitContinuesPastFailedBatch(t *testing.T) {
	sink := &fakeSink{failOn: map[int]bool{2: true}}
	summary := NewCommitter(sink, 5, 0).Commit(context.Background(), makeRows(12))

	if len(sink.calls) != 3 {
		t.Fatalf("calls=%d, failed batch stopped the run", len(sink.calls))
	}
	if summary.Succeeded != 7 || summary.Failed != 5 {
		t.Fatalf("succeeded=%d failed=%d", summary.Succeeded, summary.Failed)
	}
	if summary.Outcome() != internal.OutcomePartial {
		t.Fatalf("outcome=%s", summary.Outcome())
	}
	if !summary.Batches[1].Failed || summary.Batches[0].Failed || summary.Batches[2].Failed {
		t.Fatalf("batches=%v", summary.Batches)
	}
}

func TestCommitAllFailed(t *testing.T) {
	sink := &fakeSink{failOn: map[int]bool{1: true, 2: true}}
	summary := NewCommitter(sink, 5, 0).Commit(context.Background(), makeRows(8))

	if summary.Succeeded != 0 || summary.Failed != 8 {
		t.Fatalf("succeeded=%d failed=%d", summary.Succeeded, summary.Failed)
	}
	if summary.Outcome() != internal.OutcomeFailed {
		t.Fatalf("outcome=%s", summary.Outcome())
	}
}

func TestCommitProgress(t *testing.T) {
	sink := &fakeSink{}
	var progress []int
	NewCommitter(sink, 5, 0).
		WithProgress(func(p int) { progress = append(progress, p) }).
		Commit(context.Background(), makeRows(12))

	want := []int{33, 67, 100}
	if len(progress) != len(want) {
		t.Fatalf("progress=%v", progress)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Fatalf("progress=%v want=%v", progress, want)
		}
	}
}

func TestCommitEmpty(t *testing.T) {
	sink := &fakeSink{}
	summary := NewCommitter(sink, 5, 0).Commit(context.Background(), nil)
	if len(sink.calls) != 0 {
		t.Fatal("sink called for empty input")
	}
	if summary.Outcome() != internal.OutcomeFailed {
		t.Fatalf("outcome=%s", summary.Outcome())
	}
}

func TestCommitDefaultBatchSize(t *testing.T) {
	sink := &fakeSink{}
	NewCommitter(sink, 0, 0).Commit(context.Background(), makeRows(6))
	if len(sink.calls) != 2 {
		t.Fatalf("calls=%d", len(sink.calls))
	}
}
