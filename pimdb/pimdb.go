// Package pimdb declares the shared vocabulary used across the staging
// loader and the report builder: the fixed set of IMDb dataset files, the
// fixed set of report tables, and the domain error type that carries a
// source file and row number back to the caller.
package pimdb

import "fmt"

// ImdbDataset identifies one of the six canonical IMDb dataset dump files.
type ImdbDataset string

const (
	TitleBasics     ImdbDataset = "title_basics"
	NameBasics      ImdbDataset = "name_basics"
	TitleAkas       ImdbDataset = "title_akas"
	TitleCrew       ImdbDataset = "title_crew"
	TitlePrincipals ImdbDataset = "title_principals"
	TitleRatings    ImdbDataset = "title_ratings"
)

// Filename returns the canonical gzip-compressed TSV filename for the dataset.
func (d ImdbDataset) Filename() string {
	switch d {
	case TitleBasics:
		return "title.basics.tsv.gz"
	case NameBasics:
		return "name.basics.tsv.gz"
	case TitleAkas:
		return "title.akas.tsv.gz"
	case TitleCrew:
		return "title.crew.tsv.gz"
	case TitlePrincipals:
		return "title.principals.tsv.gz"
	case TitleRatings:
		return "title.ratings.tsv.gz"
	default:
		return ""
	}
}

// ImdbDatasets lists every staging dataset in the order the staging loader
// ingests them. Order does not matter for correctness (each file load runs
// in its own transaction) but is kept stable for predictable logs.
var ImdbDatasets = []ImdbDataset{
	TitleBasics,
	NameBasics,
	TitleAkas,
	TitleCrew,
	TitlePrincipals,
	TitleRatings,
}

// ReportTable identifies one of the normalized report tables the builder
// materializes from the staging tables.
type ReportTable string

const (
	TitleType                ReportTable = "title_type"
	Genre                    ReportTable = "genre"
	Profession               ReportTable = "profession"
	TitleAliasType           ReportTable = "title_alias_type"
	Character                ReportTable = "character"
	Name                     ReportTable = "name"
	Title                    ReportTable = "title"
	TitleToGenre             ReportTable = "title_to_genre"
	TitleToDirector          ReportTable = "title_to_director"
	TitleToWriter            ReportTable = "title_to_writer"
	NameToKnownForTitle      ReportTable = "name_to_known_for_title"
	TitleAlias               ReportTable = "title_alias"
	TitleAliasToAliasType    ReportTable = "title_alias_to_title_alias_type"
	CharactersToCharacter    ReportTable = "characters_to_character"
	Participation            ReportTable = "participation"
	ParticipationToCharacter ReportTable = "participation_to_character"
)

// IMDBAliasTypes is the closed enumeration of "types" tags that can appear,
// space-separated and mixed with garbage, in title_akas.types. Order matters:
// the greedy tag matcher (internal/report) tries tags in this order.
var IMDBAliasTypes = []string{
	"alternative", "dvd", "festival", "tv", "video", "working", "original", "imdbDisplay",
}

// NullSentinel is the two-character literal IMDb uses in place of SQL NULL.
const NullSentinel = `\N`

// CharacterSentinelID is the surrogate id reserved for the empty-string
// character. The characters build always inserts this row, but
// participation_to_character never points at it: a participation whose
// characters value is null or an empty JSON list gets no
// participation_to_character rows at all.
const CharacterSentinelID = 1

// CharactersMaxLength caps the raw title_principals.characters JSON literal.
// Values observed in the real dataset never approach this; a longer value is
// treated as a coercion error rather than silently truncated (see
// SPEC_FULL.md, Design Notes, open question on the characters column width).
const CharactersMaxLength = 1024

// DatasetError is the fatal error kind raised by coercion, JSON-decode and
// schema failures. It always identifies which table — and, where known,
// which source file and row — was being processed.
type DatasetError struct {
	Op     string // short operation name, e.g. "coerce", "build_title_alias_type"
	Table  string // staging or report table name
	File   string // source file path, empty if not file-scoped
	Row    int    // 1-based row number, 0 if not row-scoped
	Column string // offending column name, empty if not column-scoped
	Err    error
}

func (e *DatasetError) Error() string {
	switch {
	case e.File != "" && e.Row > 0 && e.Column != "":
		return fmt.Sprintf("%s: %s (%s:%d): column %q: %v", e.Op, e.Table, e.File, e.Row, e.Column, e.Err)
	case e.File != "" && e.Row > 0:
		return fmt.Sprintf("%s: %s (%s:%d): %v", e.Op, e.Table, e.File, e.Row, e.Err)
	case e.Table != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Table, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *DatasetError) Unwrap() error { return e.Err }
