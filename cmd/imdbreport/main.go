// Command imdbreport loads the IMDb non-commercial dataset dump into a
// staging database and builds the normalized report schema from it. It
// takes no flags — every setting comes from the environment, per
// SPEC_FULL.md's non-goal on command-line parsing — and exits non-zero on
// the first fatal error.
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"imdbdataset"
	"imdbdataset/config"
	"imdbdataset/internal/telemetry"
)

func main() {
	logger := telemetry.New(os.Stderr, zerolog.InfoLevel)
	cfg := config.Load()

	ctx := context.Background()
	pipeline, err := imdbdataset.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open pipeline")
	}
	defer pipeline.Close()

	if err := pipeline.Run(ctx, cfg.HasToDropTables); err != nil {
		logger.Fatal().Err(err).Msg("pipeline run failed")
	}
}
