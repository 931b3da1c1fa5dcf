// Package ingest is the staging loader: for each canonical IMDb dataset file
// it streams rows through internal/tsv, coerces them through internal/coerce,
// and batches them into the matching staging table through internal/bulk, one
// file per transaction (SPEC_FULL.md §4.1-§4.3, §5 concurrency model).
package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"imdbdataset/internal/bulk"
	"imdbdataset/internal/coerce"
	"imdbdataset/internal/schema"
	"imdbdataset/internal/store"
	"imdbdataset/internal/tsv"
	"imdbdataset/pimdb"
)

// Loader reads every canonical dataset file out of a folder and loads it into
// the staging tables of a Store.
type Loader struct {
	store         *store.Store
	datasetFolder string
	bulkSize      int
	logProgress   func(table string, rowCount, duplicatesDropped int)
	logger        zerolog.Logger
}

// New creates a Loader. bulkSize <= 0 falls back to bulk's own default.
// logProgress may be nil to disable progress callbacks.
func New(s *store.Store, datasetFolder string, bulkSize int, logProgress func(table string, rowCount, duplicatesDropped int), logger zerolog.Logger) *Loader {
	return &Loader{
		store:         s,
		datasetFolder: datasetFolder,
		bulkSize:      bulkSize,
		logProgress:   logProgress,
		logger:        logger,
	}
}

// CreateStagingTables runs the DDL for every staging table. When dropFirst
// is set (the has_to_drop_tables configuration option, SPEC_FULL.md §4.10),
// each table is dropped before being recreated; otherwise existing tables
// are left alone (CREATE TABLE IF NOT EXISTS).
func (l *Loader) CreateStagingTables(ctx context.Context, dropFirst bool) error {
	for _, t := range schema.StagingTables() {
		if dropFirst {
			if _, err := l.store.DB.ExecContext(ctx, schema.DropTableSQL(t)); err != nil {
				return fmt.Errorf("drop staging table %s: %w", t.Name, err)
			}
		}
		if _, err := l.store.DB.ExecContext(ctx, schema.CreateTableSQL(l.store.Dialect, t)); err != nil {
			return fmt.Errorf("create staging table %s: %w", t.Name, err)
		}
	}
	return nil
}

// LoadAll loads every canonical dataset file found under the loader's
// dataset folder, in pimdb.ImdbDatasets order.
func (l *Loader) LoadAll(ctx context.Context) error {
	for _, dataset := range pimdb.ImdbDatasets {
		if err := l.LoadFile(ctx, dataset); err != nil {
			return err
		}
	}
	return nil
}

var stagingTableByDataset = func() map[pimdb.ImdbDataset]schema.Table {
	m := make(map[pimdb.ImdbDataset]schema.Table, len(pimdb.ImdbDatasets))
	for _, t := range schema.StagingTables() {
		m[pimdb.ImdbDataset(t.Name)] = t
	}
	return m
}()

// LoadFile loads a single dataset file into its staging table inside one
// transaction: the table is truncated, then every row is coerced and
// batched in (SPEC_FULL.md §4.5). A parse or coercion failure anywhere in
// the file rolls the whole load back, leaving the table exactly as it was
// before LoadFile was called (SPEC_FULL.md §5, invariant 12).
func (l *Loader) LoadFile(ctx context.Context, dataset pimdb.ImdbDataset) error {
	table, ok := stagingTableByDataset[dataset]
	if !ok {
		return fmt.Errorf("load %s: no staging table registered", dataset)
	}
	path := filepath.Join(l.datasetFolder, dataset.Filename())

	reader, err := tsv.Open(path, table.PrimaryKey, tsv.WithProgress(100000, func(rowCount, dupes int) {
		if l.logProgress != nil {
			l.logProgress(table.Name, rowCount, dupes)
		}
	}))
	if err != nil {
		return &pimdb.DatasetError{Op: "load_file", Table: table.Name, File: path, Err: err}
	}
	defer reader.Close()

	columns := table.ColumnNames()

	return l.store.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table.Name); err != nil {
			return &pimdb.DatasetError{Op: "load_file", Table: table.Name, File: path, Err: err}
		}

		writer := bulk.New(tx, l.store.Dialect, table, columns, l.bulkSize)
		rows := 0
		for reader.Next() {
			typed, warnings, err := coerce.Coerce(table, reader.Row())
			if err != nil {
				writer.Abort()
				return &pimdb.DatasetError{Op: "coerce", Table: table.Name, File: path, Row: reader.RowNumber(), Err: err}
			}
			for _, w := range warnings {
				l.logger.Warn().Str("table", table.Name).Str("column", w.Column).Int("row", reader.RowNumber()).
					Msg("null sentinel in non-nullable column, substituted zero value")
			}
			if err := writer.Add(ctx, map[string]any(typed)); err != nil {
				writer.Abort()
				return &pimdb.DatasetError{Op: "load_file", Table: table.Name, File: path, Row: reader.RowNumber(), Err: err}
			}
			rows++
		}
		if err := reader.Err(); err != nil {
			writer.Abort()
			return &pimdb.DatasetError{Op: "load_file", Table: table.Name, File: path, Row: reader.RowNumber(), Err: err}
		}

		summary, err := writer.Close(ctx)
		if err != nil {
			return &pimdb.DatasetError{Op: "load_file", Table: table.Name, File: path, Err: err}
		}
		l.logger.Info().Str("table", table.Name).Int("rows", summary.RowsInserted).
			Int("duplicates_dropped", reader.DuplicatesDropped()).
			Float64("rows_per_second", summary.RowsPerSecond()).
			Msg("staging table loaded")
		return nil
	})
}
