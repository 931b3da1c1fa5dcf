// Package imdbdataset wires the staging loader and the report builder into
// a single pipeline over one database connection (SPEC_FULL.md §2).
package imdbdataset

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"imdbdataset/config"
	"imdbdataset/internal/ingest"
	"imdbdataset/internal/report"
	"imdbdataset/internal/store"
)

// Pipeline owns the database connection and runs the staging load followed
// by the report build, in that order (the report build reads from staging
// tables the load step produces).
type Pipeline struct {
	store  *store.Store
	loader *ingest.Loader
	builder *report.Builder
	logger zerolog.Logger
}

// Open connects to the database named by cfg.EngineInfo and prepares a
// Pipeline. Call Close when done.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s, err := store.Open(ctx, cfg.EngineInfo)
	if err != nil {
		return nil, fmt.Errorf("open pipeline: %w", err)
	}

	logProgress := cfg.LogProgress
	if logProgress == nil {
		logProgress = func(table string, rowCount, duplicatesDropped int) {
			logger.Info().Str("table", table).Int("rows", rowCount).Int("duplicates_dropped", duplicatesDropped).
				Msg("staging load progress")
		}
	}

	return &Pipeline{
		store:   s,
		loader:  ingest.New(s, cfg.DatasetFolder, cfg.BulkSize, logProgress, logger),
		builder: report.New(s, logger),
		logger:  logger,
	}, nil
}

// Close releases the underlying database connection.
func (p *Pipeline) Close() error {
	return p.store.Close()
}

// Run creates every staging and report table, loads all six dataset files
// into staging, and then runs the full report-table build DAG. dropSchema
// (the has_to_drop_tables configuration option, SPEC_FULL.md §4.10) drops
// every table before recreating it; otherwise CREATE TABLE IF NOT EXISTS
// leaves an existing schema alone. Each staging table is truncated on every
// run regardless, as part of the per-file load transaction (SPEC_FULL.md
// §4.5).
func (p *Pipeline) Run(ctx context.Context, dropSchema bool) error {
	if err := p.loader.CreateStagingTables(ctx, dropSchema); err != nil {
		return err
	}
	if err := p.builder.CreateReportTables(ctx, dropSchema); err != nil {
		return err
	}
	if err := p.loader.LoadAll(ctx); err != nil {
		return err
	}
	return p.builder.Build(ctx)
}
