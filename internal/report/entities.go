package report

import (
	"context"
	"database/sql"

	"imdbdataset/pimdb"
)

func (b *Builder) buildTitleType(ctx context.Context, tx *sql.Tx) error {
	if err := b.buildKeyTable(ctx, tx, pimdb.TitleType,
		"SELECT titleType FROM title_basics", DelimiterNone, 0); err != nil {
		return err
	}
	return b.verifyNonEmpty(ctx, tx, pimdb.TitleType)
}

func (b *Builder) buildGenre(ctx context.Context, tx *sql.Tx) error {
	if err := b.buildKeyTable(ctx, tx, pimdb.Genre,
		"SELECT genres FROM title_basics", DelimiterChar, ','); err != nil {
		return err
	}
	return b.verifyNonEmpty(ctx, tx, pimdb.Genre)
}

func (b *Builder) buildProfession(ctx context.Context, tx *sql.Tx) error {
	if err := b.buildKeyTable(ctx, tx, pimdb.Profession,
		"SELECT category FROM title_principals", DelimiterNone, 0); err != nil {
		return err
	}
	return b.verifyNonEmpty(ctx, tx, pimdb.Profession)
}

func (b *Builder) buildTitleAliasType(ctx context.Context, tx *sql.Tx) error {
	if err := b.buildKeyTableFromValues(ctx, tx, pimdb.TitleAliasType, pimdb.IMDBAliasTypes); err != nil {
		return err
	}
	return b.verifyNonEmpty(ctx, tx, pimdb.TitleAliasType)
}

// buildName is a direct projection of name_basics: every staging row
// produces exactly one name row, so this is a plain INSERT … SELECT with no
// key-table interning step.
func (b *Builder) buildName(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+string(pimdb.Name)); err != nil {
		return &pimdb.DatasetError{Op: "build_name", Table: string(pimdb.Name), Err: err}
	}
	stmt := `INSERT INTO name (nconst, primary_name, birth_year, death_year, primary_professions)
		SELECT nconst, primaryName, birthYear, deathYear, primaryProfession FROM name_basics`
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return &pimdb.DatasetError{Op: "build_name", Table: string(pimdb.Name), Err: err}
	}
	return b.verifyCountMatches(ctx, tx, pimdb.Name, "name_basics")
}

// buildTitle joins title_basics to the already-built title_type key table by
// name, and outer-joins title_ratings with coalesce defaults for titles that
// were never rated.
func (b *Builder) buildTitle(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+string(pimdb.Title)); err != nil {
		return &pimdb.DatasetError{Op: "build_title", Table: string(pimdb.Title), Err: err}
	}
	stmt := `INSERT INTO title (tconst, title_type_id, primary_title, original_title, is_adult, start_year, end_year, runtime_minutes, average_rating, rating_count)
		SELECT tb.tconst, tt.id, tb.primaryTitle, tb.originalTitle, tb.isAdult, tb.startYear, tb.endYear, tb.runtimeMinutes,
			COALESCE(tr.averageRating, 0), COALESCE(tr.numVotes, 0)
		FROM title_basics tb
		JOIN title_type tt ON tt.name = tb.titleType
		LEFT JOIN title_ratings tr ON tr.tconst = tb.tconst`
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return &pimdb.DatasetError{Op: "build_title", Table: string(pimdb.Title), Err: err}
	}
	return b.verifyCountMatches(ctx, tx, pimdb.Title, "title_basics")
}
