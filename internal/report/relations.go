package report

import (
	"context"
	"database/sql"
	"fmt"

	"imdbdataset/internal/bulk"
	"imdbdataset/internal/schema"
	"imdbdataset/pimdb"
)

var reportTableByName = func() map[pimdb.ReportTable]schema.Table {
	m := make(map[pimdb.ReportTable]schema.Table)
	for _, t := range schema.ReportTables() {
		m[pimdb.ReportTable(t.Name)] = t
	}
	return m
}()

// orderedRelationSpec describes one row-oriented-with-drop-on-missing build
// (SPEC_FULL.md §4.6.4): source is a staging table projecting the owner's
// natural key and a delimited multi-valued column; each token of that column
// is looked up against targetTable's natural-to-surrogate map and, if
// resolved, emitted as the next dense ordering position.
type orderedRelationSpec struct {
	relation      pimdb.ReportTable
	sourceTable   string
	ownerNatural  string // staging column naming the owner's natural key
	delimitedCol  string // staging column holding the multi-valued list
	sep           byte
	ownerTable    pimdb.ReportTable
	ownerNaturalK string // report entity table's own natural key column
	targetTable   pimdb.ReportTable
	targetNaturalK string
}

func (b *Builder) buildOrderedRelation(ctx context.Context, tx *sql.Tx, spec orderedRelationSpec) error {
	relTable, ok := reportTableByName[spec.relation]
	if !ok {
		return fmt.Errorf("build %s: no report table registered", spec.relation)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+string(spec.relation)); err != nil {
		return &pimdb.DatasetError{Op: "build_ordered_relation", Table: string(spec.relation), Err: err}
	}

	ownerMap, err := b.naturalToSurrogate(ctx, tx, string(spec.ownerTable), spec.ownerNaturalK)
	if err != nil {
		return err
	}
	targetMap, err := b.naturalToSurrogate(ctx, tx, string(spec.targetTable), spec.targetNaturalK)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT %s, %s FROM %s", spec.ownerNatural, spec.delimitedCol, spec.sourceTable)
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return &pimdb.DatasetError{Op: "build_ordered_relation", Table: string(spec.relation), Err: err}
	}
	defer rows.Close()

	fromCol := string(spec.ownerTable) + "_id"
	toCol := string(spec.targetTable) + "_id"
	writer := bulk.New(tx, b.store.Dialect, relTable, []string{fromCol, "ordering", toCol}, 1024)

	for rows.Next() {
		var ownerNatural string
		var delimited sql.NullString
		if err := rows.Scan(&ownerNatural, &delimited); err != nil {
			return &pimdb.DatasetError{Op: "build_ordered_relation", Table: string(spec.relation), Err: err}
		}
		ownerID, ok := ownerMap[ownerNatural]
		if !ok || !delimited.Valid || delimited.String == pimdb.NullSentinel || delimited.String == "" {
			continue
		}

		k := 0
		for _, tok := range splitNonEmpty(delimited.String, spec.sep) {
			targetID, ok := targetMap[tok]
			if !ok {
				b.logger.Debug().Str("table", string(spec.relation)).Str("token", tok).Msg("unresolved natural key dropped from ordered relation")
				continue
			}
			k++
			if err := writer.Add(ctx, map[string]any{fromCol: ownerID, "ordering": k, toCol: targetID}); err != nil {
				writer.Abort()
				return &pimdb.DatasetError{Op: "build_ordered_relation", Table: string(spec.relation), Err: err}
			}
		}
	}
	if err := rows.Err(); err != nil {
		writer.Abort()
		return &pimdb.DatasetError{Op: "build_ordered_relation", Table: string(spec.relation), Err: err}
	}
	if _, err := writer.Close(ctx); err != nil {
		return &pimdb.DatasetError{Op: "build_ordered_relation", Table: string(spec.relation), Err: err}
	}
	return b.verifyNonEmpty(ctx, tx, spec.relation)
}

func (b *Builder) buildTitleToGenre(ctx context.Context, tx *sql.Tx) error {
	return b.buildOrderedRelation(ctx, tx, orderedRelationSpec{
		relation: pimdb.TitleToGenre, sourceTable: "title_basics",
		ownerNatural: "tconst", delimitedCol: "genres", sep: ',',
		ownerTable: pimdb.Title, ownerNaturalK: "tconst",
		targetTable: pimdb.Genre, targetNaturalK: "name",
	})
}

func (b *Builder) buildTitleToDirector(ctx context.Context, tx *sql.Tx) error {
	return b.buildOrderedRelation(ctx, tx, orderedRelationSpec{
		relation: pimdb.TitleToDirector, sourceTable: "title_crew",
		ownerNatural: "tconst", delimitedCol: "directors", sep: ',',
		ownerTable: pimdb.Title, ownerNaturalK: "tconst",
		targetTable: pimdb.Name, targetNaturalK: "nconst",
	})
}

func (b *Builder) buildTitleToWriter(ctx context.Context, tx *sql.Tx) error {
	return b.buildOrderedRelation(ctx, tx, orderedRelationSpec{
		relation: pimdb.TitleToWriter, sourceTable: "title_crew",
		ownerNatural: "tconst", delimitedCol: "writers", sep: ',',
		ownerTable: pimdb.Title, ownerNaturalK: "tconst",
		targetTable: pimdb.Name, targetNaturalK: "nconst",
	})
}

func (b *Builder) buildNameToKnownForTitle(ctx context.Context, tx *sql.Tx) error {
	return b.buildOrderedRelation(ctx, tx, orderedRelationSpec{
		relation: pimdb.NameToKnownForTitle, sourceTable: "name_basics",
		ownerNatural: "nconst", delimitedCol: "knownForTitles", sep: ',',
		ownerTable: pimdb.Name, ownerNaturalK: "nconst",
		targetTable: pimdb.Title, targetNaturalK: "tconst",
	})
}

// buildTitleAlias is set-oriented: every title_akas row is guaranteed to
// carry a titleId, but it may not resolve against title (SPEC_FULL.md §9's
// open question) — an inner join drops those rows rather than failing the
// whole build, with the drop count folded into the usual count-mismatch
// warning.
func (b *Builder) buildTitleAlias(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+string(pimdb.TitleAlias)); err != nil {
		return &pimdb.DatasetError{Op: "build_title_alias", Table: string(pimdb.TitleAlias), Err: err}
	}
	stmt := `INSERT INTO title_alias (title_id, ordering, title, region_code, language_code, is_original_title)
		SELECT t.id, ta.ordering, ta.title, ta.region, ta.language, ta.isOriginalTitle
		FROM title_akas ta
		JOIN title t ON t.tconst = ta.titleId`
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return &pimdb.DatasetError{Op: "build_title_alias", Table: string(pimdb.TitleAlias), Err: err}
	}
	return b.verifyCountMatches(ctx, tx, pimdb.TitleAlias, "title_akas")
}

// buildParticipation is set-oriented: title_principals ⋈ name ⋈ title ⋈
// profession, projecting the source's own ordering column.
func (b *Builder) buildParticipation(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+string(pimdb.Participation)); err != nil {
		return &pimdb.DatasetError{Op: "build_participation", Table: string(pimdb.Participation), Err: err}
	}
	stmt := `INSERT INTO participation (title_id, ordering, name_id, profession_id, job)
		SELECT t.id, tp.ordering, n.id, pr.id, tp.job
		FROM title_principals tp
		JOIN title t ON t.tconst = tp.tconst
		JOIN name n ON n.nconst = tp.nconst
		LEFT JOIN profession pr ON pr.name = tp.category`
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return &pimdb.DatasetError{Op: "build_participation", Table: string(pimdb.Participation), Err: err}
	}
	return b.verifyCountMatches(ctx, tx, pimdb.Participation, "title_principals")
}
