package bulk

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imdbdataset/internal/schema"
	"imdbdataset/internal/store"
)

func openTestDB(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var testTable = schema.Table{
	Name: "widgets",
	Columns: []schema.Column{
		{Name: "id", Type: schema.TypeInt, PrimaryKey: true},
		{Name: "name", Type: schema.TypeString, Length: 32},
	},
	PrimaryKey: []string{"id"},
}

func TestWriterFlushesOnBatchBound(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()
	_, err := s.DB.ExecContext(ctx, schema.CreateTableSQL(s.Dialect, testTable))
	require.NoError(t, err)

	err = s.WithTx(ctx, func(tx *sql.Tx) error {
		w := New(tx, s.Dialect, testTable, testTable.ColumnNames(), 2)
		for i := 1; i <= 5; i++ {
			if err := w.Add(ctx, map[string]any{"id": int64(i), "name": "w"}); err != nil {
				return err
			}
		}
		summary, err := w.Close(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, summary.RowsInserted)
		return nil
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM widgets").Scan(&count))
	assert.Equal(t, 5, count)
}

func TestWriterAbortDiscardsResidualBuffer(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()
	_, err := s.DB.ExecContext(ctx, schema.CreateTableSQL(s.Dialect, testTable))
	require.NoError(t, err)

	_ = s.WithTx(ctx, func(tx *sql.Tx) error {
		w := New(tx, s.Dialect, testTable, testTable.ColumnNames(), 100)
		require.NoError(t, w.Add(ctx, map[string]any{"id": int64(1), "name": "w"}))
		w.Abort()
		summary, err := w.Close(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, summary.RowsInserted)
		return nil
	})

	var count int
	require.NoError(t, s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM widgets").Scan(&count))
	assert.Equal(t, 0, count)
}
