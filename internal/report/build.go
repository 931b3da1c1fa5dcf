package report

import (
	"context"
	"database/sql"

	"imdbdataset/pimdb"
)

// step is one named, independently transacted stage of the build DAG.
type step struct {
	name string
	run  func(ctx context.Context, tx *sql.Tx) error
}

// Build executes the full report-table build DAG in the exact order
// SPEC_FULL.md §4.6.3 specifies. Each step commits (or rolls back) inside
// its own transaction — a failure partway through leaves every
// already-completed step's output intact, matching the "transactional per
// table build" concurrency model (SPEC_FULL.md §5).
func (b *Builder) Build(ctx context.Context) error {
	steps := []step{
		{"title_type", b.buildTitleType},
		{"genre", b.buildGenre},
		{"profession", b.buildProfession},
		{"title_alias_type", b.buildTitleAliasType},
		{"name", b.buildName},
		{"title", b.buildTitle},
		{"title_to_genre", b.buildTitleToGenre},
		{"title_to_director", b.buildTitleToDirector},
		{"title_to_writer", b.buildTitleToWriter},
		{"name_to_known_for_title", b.buildNameToKnownForTitle},
		{"title_alias", b.buildTitleAlias},
		{"title_alias_to_title_alias_type", b.buildTitleAliasToAliasType},
		{"characters_to_character_and_character", b.buildCharacters},
		{"participation", b.buildParticipation},
		{"participation_to_character", b.buildParticipationToCharacter},
	}

	for _, s := range steps {
		if err := b.store.WithTx(ctx, s.run); err != nil {
			return &pimdb.DatasetError{Op: "build", Table: s.name, Err: err}
		}
		b.logger.Info().Str("step", s.name).Msg("report table build step complete")
	}
	return nil
}
