// Package config loads the pipeline's configuration from the environment,
// following the same flat getEnv-with-default idiom the original project
// used for its own settings.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds everything the pipeline needs that isn't itself staging or
// report data. EngineInfo is the one external connection parameter
// (SPEC_FULL.md §1): a bare filesystem path selects embedded SQLite, a
// string containing "://" selects a remote Postgres server.
type Config struct {
	EngineInfo      string
	DatasetFolder   string
	BulkSize        int
	HasToDropTables bool

	// LogProgress, when set, is invoked periodically during a staging file
	// load with the row count processed so far and the duplicate count
	// dropped so far. The pipeline supplies a default that logs through
	// internal/telemetry; callers embedding this module may override it.
	LogProgress func(table string, rowCount, duplicatesDropped int)
}

// Load reads configuration from the environment, falling back to defaults
// suited to local development against an embedded SQLite database.
func Load() *Config {
	return &Config{
		EngineInfo:      getEnv("ENGINE_INFO", "./data/imdbdataset.db"),
		DatasetFolder:   getEnv("DATASET_FOLDER", "./data/datasets"),
		BulkSize:        getEnvInt("BULK_SIZE", 1024),
		HasToDropTables: getEnv("DROP_EXISTING_TABLES", "true") == "true",
	}
}

// Validate rejects configuration that would otherwise fail far from here
// with a confusing database or filesystem error.
func (c *Config) Validate() error {
	if c.EngineInfo == "" {
		return fmt.Errorf("config: ENGINE_INFO must not be empty")
	}
	if c.DatasetFolder == "" {
		return fmt.Errorf("config: DATASET_FOLDER must not be empty")
	}
	if c.BulkSize <= 0 {
		return fmt.Errorf("config: BULK_SIZE must be positive, got %d", c.BulkSize)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
