package report

import (
	"context"
	"database/sql"
	"sort"

	"github.com/goccy/go-json"

	"imdbdataset/internal/bulk"
	"imdbdataset/pimdb"
)

// buildCharacters runs the first two stages of the characters pipeline
// (SPEC_FULL.md §4.6.5): decode every distinct title_principals.characters
// JSON literal exactly once, intern each character name into a surrogate id
// (id 1 reserved for the empty-string sentinel), and populate character and
// characters_to_character — in that order, since characters_to_character's
// character_id is a foreign key into character and both tables live under
// one transaction with foreign keys enforced per-statement.
// buildParticipationToCharacter, the pipeline's third stage, runs as its own
// build step once participation exists (SPEC_FULL.md §4.6.3 step 11).
func (b *Builder) buildCharacters(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, "SELECT DISTINCT characters FROM title_principals WHERE characters IS NOT NULL")
	if err != nil {
		return &pimdb.DatasetError{Op: "build_characters", Table: string(pimdb.CharactersToCharacter), Err: err}
	}

	var literals []string
	for rows.Next() {
		var literal string
		if err := rows.Scan(&literal); err != nil {
			rows.Close()
			return &pimdb.DatasetError{Op: "build_characters", Table: string(pimdb.CharactersToCharacter), Err: err}
		}
		literals = append(literals, literal)
	}
	rowsErr := rows.Err()
	rows.Close()
	if rowsErr != nil {
		return &pimdb.DatasetError{Op: "build_characters", Table: string(pimdb.CharactersToCharacter), Err: rowsErr}
	}

	nameToID := map[string]int64{"": pimdb.CharacterSentinelID}
	nextID := int64(pimdb.CharacterSentinelID + 1)
	decoded := make(map[string][]string, len(literals))

	for _, literal := range literals {
		if literal == pimdb.NullSentinel || literal == "" {
			continue
		}
		var names []string
		if err := json.Unmarshal([]byte(literal), &names); err != nil {
			return &pimdb.DatasetError{Op: "build_characters", Table: string(pimdb.CharactersToCharacter), Err: err}
		}
		decoded[literal] = names
		for _, name := range names {
			if _, ok := nameToID[name]; !ok {
				nameToID[name] = nextID
				nextID++
			}
		}
	}

	if err := b.buildCharacterTable(ctx, tx, nameToID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+string(pimdb.CharactersToCharacter)); err != nil {
		return &pimdb.DatasetError{Op: "build_characters", Table: string(pimdb.CharactersToCharacter), Err: err}
	}

	ctcTable := reportTableByName[pimdb.CharactersToCharacter]
	writer := bulk.New(tx, b.store.Dialect, ctcTable, []string{"characters", "ordering", "character_id"}, 1024)

	for literal, names := range decoded {
		for i, name := range names {
			if err := writer.Add(ctx, map[string]any{"characters": literal, "ordering": i + 1, "character_id": nameToID[name]}); err != nil {
				writer.Abort()
				return &pimdb.DatasetError{Op: "build_characters", Table: string(pimdb.CharactersToCharacter), Err: err}
			}
		}
	}
	if _, err := writer.Close(ctx); err != nil {
		return &pimdb.DatasetError{Op: "build_characters", Table: string(pimdb.CharactersToCharacter), Err: err}
	}
	return nil
}

func (b *Builder) buildCharacterTable(ctx context.Context, tx *sql.Tx, nameToID map[string]int64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+string(pimdb.Character)); err != nil {
		return &pimdb.DatasetError{Op: "build_character", Table: string(pimdb.Character), Err: err}
	}

	names := make([]string, 0, len(nameToID))
	for name := range nameToID {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return nameToID[names[i]] < nameToID[names[j]] })

	for _, name := range names {
		stmt := "INSERT INTO " + string(pimdb.Character) + " (id, name) VALUES (" +
			b.store.Placeholder(1) + ", " + b.store.Placeholder(2) + ")"
		if _, err := tx.ExecContext(ctx, stmt, nameToID[name], name); err != nil {
			return &pimdb.DatasetError{Op: "build_character", Table: string(pimdb.Character), Err: err}
		}
	}
	return b.verifyNonEmpty(ctx, tx, pimdb.Character)
}

// buildParticipationToCharacter joins participation back to title_principals
// on the composite (nconst, tconst, ordering) natural key and then to
// characters_to_character on the raw characters string, de-duplicating
// (participation_id, ordering) pairs that several joins can otherwise repeat.
func (b *Builder) buildParticipationToCharacter(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+string(pimdb.ParticipationToCharacter)); err != nil {
		return &pimdb.DatasetError{Op: "build_participation_to_character", Table: string(pimdb.ParticipationToCharacter), Err: err}
	}
	stmt := `INSERT INTO participation_to_character (participation_id, ordering, character_id)
		SELECT DISTINCT p.id, ctc.ordering, ctc.character_id
		FROM participation p
		JOIN title t ON t.id = p.title_id
		JOIN name n ON n.id = p.name_id
		JOIN title_principals tp ON tp.tconst = t.tconst AND tp.nconst = n.nconst AND tp.ordering = p.ordering
		JOIN characters_to_character ctc ON ctc.characters = tp.characters`
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return &pimdb.DatasetError{Op: "build_participation_to_character", Table: string(pimdb.ParticipationToCharacter), Err: err}
	}
	return b.verifyNonEmpty(ctx, tx, pimdb.ParticipationToCharacter)
}
