// Package report is the report builder: the dependency-ordered DAG of SQL
// transformations that turns the staging tables into the normalized report
// schema (SPEC_FULL.md §4.6). It owns two primitives — key-table
// materialization and natural-to-surrogate mapping — plus the fixed build
// order and the two special-case pipelines (title_principals.characters,
// title_akas.types).
package report

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"imdbdataset/internal/schema"
	"imdbdataset/internal/store"
	"imdbdataset/pimdb"
)

// DelimiterMode selects how a raw staging string explodes into key-table
// members (SPEC_FULL.md §4.6.1).
type DelimiterMode int

const (
	// DelimiterNone treats the whole raw value as a single member.
	DelimiterNone DelimiterMode = iota
	// DelimiterChar splits the raw value on a literal separator byte.
	DelimiterChar
	// DelimiterJSON parses the raw value as a JSON array of strings.
	DelimiterJSON
)

// Builder executes the report-table build DAG against a Store.
type Builder struct {
	store  *store.Store
	logger zerolog.Logger
}

// New creates a Builder.
func New(s *store.Store, logger zerolog.Logger) *Builder {
	return &Builder{store: s, logger: logger}
}

// CreateReportTables runs the DDL for every report table and its indexes.
// When dropFirst is set (the has_to_drop_tables configuration option,
// SPEC_FULL.md §4.10), each table is dropped before being recreated.
func (b *Builder) CreateReportTables(ctx context.Context, dropFirst bool) error {
	for _, t := range schema.ReportTables() {
		if dropFirst {
			if _, err := b.store.DB.ExecContext(ctx, schema.DropTableSQL(t)); err != nil {
				return fmt.Errorf("drop report table %s: %w", t.Name, err)
			}
		}
		if _, err := b.store.DB.ExecContext(ctx, schema.CreateTableSQL(b.store.Dialect, t)); err != nil {
			return fmt.Errorf("create report table %s: %w", t.Name, err)
		}
		for _, idx := range t.Indexes {
			if _, err := b.store.DB.ExecContext(ctx, schema.CreateIndexSQL(t, idx)); err != nil {
				return fmt.Errorf("create index on %s: %w", t.Name, err)
			}
		}
	}
	return nil
}

// buildKeyTable implements the key-table materialization primitive
// (SPEC_FULL.md §4.6.1). selectSQL must project exactly one string column;
// rows containing pimdb.NullSentinel or SQL NULL are skipped before the
// delimiter is applied. Members are inserted in ascending lexicographic
// order so that repeated builds over the same input assign identical
// name→id mappings.
func (b *Builder) buildKeyTable(ctx context.Context, tx *sql.Tx, table pimdb.ReportTable, selectSQL string, mode DelimiterMode, sep byte) error {
	members, err := b.collectKeyTableMembers(ctx, tx, selectSQL, mode, sep)
	if err != nil {
		return &pimdb.DatasetError{Op: "build_key_table", Table: string(table), Err: err}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+string(table)); err != nil {
		return &pimdb.DatasetError{Op: "build_key_table", Table: string(table), Err: err}
	}

	sorted := make([]string, 0, len(members))
	for m := range members {
		sorted = append(sorted, m)
	}
	sort.Strings(sorted)

	placeholder := b.store.Placeholder
	for _, name := range sorted {
		stmt := fmt.Sprintf("INSERT INTO %s (name) VALUES (%s)", table, placeholder(1))
		if _, err := tx.ExecContext(ctx, stmt, name); err != nil {
			return &pimdb.DatasetError{Op: "build_key_table", Table: string(table), Err: err}
		}
	}

	if len(sorted) == 0 {
		b.logger.Warn().Str("table", string(table)).Msg("key table built empty")
	}
	return nil
}

func (b *Builder) collectKeyTableMembers(ctx context.Context, tx *sql.Tx, selectSQL string, mode DelimiterMode, sep byte) (map[string]struct{}, error) {
	rows, err := tx.QueryContext(ctx, selectSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make(map[string]struct{})
	for rows.Next() {
		var raw sql.NullString
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		if !raw.Valid || raw.String == pimdb.NullSentinel || raw.String == "" {
			continue
		}
		switch mode {
		case DelimiterNone:
			members[raw.String] = struct{}{}
		case DelimiterChar:
			for _, tok := range splitNonEmpty(raw.String, sep) {
				members[tok] = struct{}{}
			}
		case DelimiterJSON:
			var values []string
			if err := json.Unmarshal([]byte(raw.String), &values); err != nil {
				return nil, fmt.Errorf("value %q is not a JSON array of strings: %w", raw.String, err)
			}
			for _, v := range values {
				members[v] = struct{}{}
			}
		}
	}
	return members, rows.Err()
}

// buildKeyTableFromValues builds a key table directly from a fixed, ordered
// list of values rather than a staging SELECT (used for title_alias_type,
// whose membership is the closed enumerated list, not discovered data).
func (b *Builder) buildKeyTableFromValues(ctx context.Context, tx *sql.Tx, table pimdb.ReportTable, values []string) error {
	members := make(map[string]struct{}, len(values))
	for _, v := range values {
		members[v] = struct{}{}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+string(table)); err != nil {
		return &pimdb.DatasetError{Op: "build_key_table", Table: string(table), Err: err}
	}
	sorted := make([]string, 0, len(members))
	for m := range members {
		sorted = append(sorted, m)
	}
	sort.Strings(sorted)
	for _, name := range sorted {
		stmt := fmt.Sprintf("INSERT INTO %s (name) VALUES (%s)", table, b.store.Placeholder(1))
		if _, err := tx.ExecContext(ctx, stmt, name); err != nil {
			return &pimdb.DatasetError{Op: "build_key_table", Table: string(table), Err: err}
		}
	}
	return nil
}

func splitNonEmpty(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

// naturalToSurrogate materializes the in-memory natural-key→id map for an
// already-built entity table (SPEC_FULL.md §4.6.2).
func (b *Builder) naturalToSurrogate(ctx context.Context, tx *sql.Tx, table, naturalKeyColumn string) (map[string]int64, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("SELECT %s, id FROM %s", naturalKeyColumn, table))
	if err != nil {
		return nil, &pimdb.DatasetError{Op: "natural_to_surrogate", Table: table, Err: err}
	}
	defer rows.Close()

	m := make(map[string]int64)
	for rows.Next() {
		var key string
		var id int64
		if err := rows.Scan(&key, &id); err != nil {
			return nil, &pimdb.DatasetError{Op: "natural_to_surrogate", Table: table, Err: err}
		}
		m[key] = id
	}
	return m, rows.Err()
}

// verifyNonEmpty warns (never fails) when a just-built table has no rows.
func (b *Builder) verifyNonEmpty(ctx context.Context, tx *sql.Tx, table pimdb.ReportTable) error {
	var count int64
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+string(table)).Scan(&count); err != nil {
		return &pimdb.DatasetError{Op: "verify_non_empty", Table: string(table), Err: err}
	}
	if count == 0 {
		b.logger.Warn().Str("table", string(table)).Msg("report table built empty")
	}
	return nil
}

// verifyCountMatches compares a just-built fact table's row count against a
// source staging table and warns (never fails) on mismatch (SPEC_FULL.md
// §4.7): IMDb rows routinely reference missing entities, so a mismatch is
// expected data loss, not corruption.
func (b *Builder) verifyCountMatches(ctx context.Context, tx *sql.Tx, built pimdb.ReportTable, source string) error {
	var builtCount, sourceCount int64
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+string(built)).Scan(&builtCount); err != nil {
		return &pimdb.DatasetError{Op: "verify_count", Table: string(built), Err: err}
	}
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+source).Scan(&sourceCount); err != nil {
		return &pimdb.DatasetError{Op: "verify_count", Table: string(built), Err: err}
	}
	if builtCount != sourceCount {
		b.logger.Warn().Str("table", string(built)).Str("source", source).
			Int64("built_count", builtCount).Int64("source_count", sourceCount).
			Msg("built table row count does not match source staging table")
	}
	return nil
}
