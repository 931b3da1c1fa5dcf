package report

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"imdbdataset/internal/bulk"
	"imdbdataset/pimdb"
)

// matchAliasTypes tests raw against every tag in pimdb.IMDBAliasTypes and
// removes each match from the residual, but reports matches in the order
// they appear in raw rather than enumeration order: the ordering written to
// title_alias_to_title_alias_type must reflect how the tags were actually
// written in title_akas.types, not the closed enum's internal order. It is a
// pure function of raw — the memoized cache and the shared unknown-residual
// set live in the caller, keeping this function free of instance state
// (SPEC_FULL.md, Design Notes).
func matchAliasTypes(raw string) (matched []string, residual string) {
	residual = raw
	type hit struct {
		tag string
		pos int
	}
	var hits []hit
	for _, tag := range pimdb.IMDBAliasTypes {
		if strings.Contains(residual, tag) {
			hits = append(hits, hit{tag, strings.Index(raw, tag)})
			residual = strings.Replace(residual, tag, "", 1)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	for _, h := range hits {
		matched = append(matched, h.tag)
	}
	return matched, strings.TrimSpace(residual)
}

// buildTitleAliasToAliasType runs the title_akas.types mapping (SPEC_FULL.md
// §4.6.6): every distinct raw value is matched once (memoized), warning
// once per distinct non-empty residual.
func (b *Builder) buildTitleAliasToAliasType(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+string(pimdb.TitleAliasToAliasType)); err != nil {
		return &pimdb.DatasetError{Op: "build_title_alias_to_alias_type", Table: string(pimdb.TitleAliasToAliasType), Err: err}
	}

	aliasTypeMap, err := b.naturalToSurrogate(ctx, tx, string(pimdb.TitleAliasType), "name")
	if err != nil {
		return err
	}

	// title_alias's natural key is the (title_id, ordering) pair it inherited
	// from title_akas, not a single column, so its surrogate lookup is keyed
	// by that pair rather than going through naturalToSurrogate.
	aliasRows, err := tx.QueryContext(ctx, "SELECT ta.id, tk.types FROM title_alias ta JOIN title t ON t.id = ta.title_id JOIN title_akas tk ON tk.titleId = t.tconst AND tk.ordering = ta.ordering")
	if err != nil {
		return &pimdb.DatasetError{Op: "build_title_alias_to_alias_type", Table: string(pimdb.TitleAliasToAliasType), Err: err}
	}
	defer aliasRows.Close()

	relTable := reportTableByName[pimdb.TitleAliasToAliasType]
	writer := bulk.New(tx, b.store.Dialect, relTable, []string{"title_alias_id", "ordering", "title_alias_type_id"}, 1024)

	cache := make(map[string][]string)
	unknown := make(map[string]struct{})

	for aliasRows.Next() {
		var aliasID int64
		var rawTypes sql.NullString
		if err := aliasRows.Scan(&aliasID, &rawTypes); err != nil {
			writer.Abort()
			return &pimdb.DatasetError{Op: "build_title_alias_to_alias_type", Table: string(pimdb.TitleAliasToAliasType), Err: err}
		}
		if !rawTypes.Valid || rawTypes.String == pimdb.NullSentinel || rawTypes.String == "" {
			continue
		}

		matched, ok := cache[rawTypes.String]
		if !ok {
			var residual string
			matched, residual = matchAliasTypes(rawTypes.String)
			cache[rawTypes.String] = matched
			if residual != "" {
				if _, seen := unknown[residual]; !seen {
					unknown[residual] = struct{}{}
					b.logger.Warn().Str("table", string(pimdb.TitleAliasToAliasType)).Str("residual", residual).
						Msg("unrecognized title alias type tag")
				}
			}
		}

		for i, tag := range matched {
			typeID, ok := aliasTypeMap[tag]
			if !ok {
				continue
			}
			if err := writer.Add(ctx, map[string]any{"title_alias_id": aliasID, "ordering": i + 1, "title_alias_type_id": typeID}); err != nil {
				writer.Abort()
				return &pimdb.DatasetError{Op: "build_title_alias_to_alias_type", Table: string(pimdb.TitleAliasToAliasType), Err: err}
			}
		}
	}
	if err := aliasRows.Err(); err != nil {
		writer.Abort()
		return &pimdb.DatasetError{Op: "build_title_alias_to_alias_type", Table: string(pimdb.TitleAliasToAliasType), Err: err}
	}
	if _, err := writer.Close(ctx); err != nil {
		return &pimdb.DatasetError{Op: "build_title_alias_to_alias_type", Table: string(pimdb.TitleAliasToAliasType), Err: err}
	}
	return b.verifyNonEmpty(ctx, tx, pimdb.TitleAliasToAliasType)
}
