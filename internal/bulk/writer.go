// Package bulk implements the scoped, batched bulk-insert resource every
// staging-table load uses (SPEC_FULL.md §4.3, §9 "scoped resources with
// guaranteed flush"). A Writer accumulates typed rows and flushes them as a
// single multi-row INSERT once the batch bound is reached; the caller picks
// one of two explicit exit paths (Close on success, Abort on failure) so
// the flush-vs-no-flush distinction is visible at the call site rather than
// hidden in a deferred close.
package bulk

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"imdbdataset/internal/schema"
)

// Summary reports what a Writer did over its lifetime.
type Summary struct {
	RowsInserted int
	Elapsed      time.Duration
}

// RowsPerSecond returns throughput, or 0 if Elapsed is zero.
func (s Summary) RowsPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.RowsInserted) / s.Elapsed.Seconds()
}

// Writer batches rows destined for one table and flushes them through tx in
// groups of at most batchSize.
type Writer struct {
	tx        *sql.Tx
	dialect   schema.Dialect
	table     schema.Table
	columns   []string
	batchSize int

	buffer  []map[string]any
	started time.Time
	total   int
}

// New creates a Writer for table, flushing every batchSize rows (the
// reference design's bulk_size). columns fixes the insert column order;
// pass table.ColumnNames() for the common case of inserting every column.
func New(tx *sql.Tx, dialect schema.Dialect, table schema.Table, columns []string, batchSize int) *Writer {
	if batchSize <= 0 {
		batchSize = 1024
	}
	return &Writer{
		tx:        tx,
		dialect:   dialect,
		table:     table,
		columns:   columns,
		batchSize: batchSize,
		started:   time.Now(),
	}
}

// Add appends row to the batch buffer, flushing automatically once the
// buffer reaches the configured batch size.
func (w *Writer) Add(ctx context.Context, row map[string]any) error {
	w.buffer = append(w.buffer, row)
	if len(w.buffer) >= w.batchSize {
		return w.flush(ctx)
	}
	return nil
}

func (w *Writer) flush(ctx context.Context) error {
	if len(w.buffer) == 0 {
		return nil
	}
	stmt, args := w.buildInsert(w.buffer)
	if _, err := w.tx.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("bulk insert into %s: %w", w.table.Name, err)
	}
	w.total += len(w.buffer)
	w.buffer = w.buffer[:0]
	return nil
}

func (w *Writer) buildInsert(rows []map[string]any) (string, []any) {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", w.table.Name, strings.Join(w.columns, ", "))

	args := make([]any, 0, len(rows)*len(w.columns))
	placeholder := 1
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j, col := range w.columns {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(schema.Placeholder(w.dialect, placeholder))
			placeholder++
			args = append(args, row[col])
		}
		b.WriteString(")")
	}
	return b.String(), args
}

// Close flushes any residual buffered rows and returns a summary. Call this
// only on the success path; on failure call Abort instead so the residual
// buffer is discarded along with the rolling-back transaction
// (SPEC_FULL.md §4.3: "abnormal scope exit skips the residual flush").
func (w *Writer) Close(ctx context.Context) (Summary, error) {
	if err := w.flush(ctx); err != nil {
		return Summary{}, err
	}
	return Summary{RowsInserted: w.total, Elapsed: time.Since(w.started)}, nil
}

// Abort discards any residual buffered rows without flushing them. The
// surrounding transaction is expected to roll back; this just documents
// that the writer took the failure exit path rather than silently dropping
// rows.
func (w *Writer) Abort() {
	w.buffer = nil
}
