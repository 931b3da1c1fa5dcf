package schema

import "imdbdataset/pimdb"

// String-length caps, carried over from the known IMDb maxima (with
// headroom) the reference loader used. See SPEC_FULL.md §4.4: these are
// documentation-with-teeth, not enforced at ingest time.
const (
	tconstLength     = 12
	nconstLength     = 12
	titleLength      = 512
	nameLength       = 160
	genreLength      = 16
	genreCount       = 4
	professionLength = 32
	professionCount  = 3
	regionLength     = 4
	languageLength   = 4
	crewCount        = 2048
	categoryLength   = 32
	jobLength        = 512
	attributesLength = 128
	titleTypeLength  = 16
)

var aliasTypeLength = maxLen(pimdb.IMDBAliasTypes)
var aliasTypesLength = sumLen(pimdb.IMDBAliasTypes)

func maxLen(values []string) int {
	m := 0
	for _, v := range values {
		if len(v) > m {
			m = len(v)
		}
	}
	return m
}

func sumLen(values []string) int {
	s := 0
	for _, v := range values {
		s += len(v) + 1
	}
	if s > 0 {
		s--
	}
	return s
}

func listLength(elemLength, count int) int {
	return (elemLength+1)*count - 1
}

// StagingTables returns the descriptors for the six tables that mirror the
// IMDb TSV files column-for-column.
func StagingTables() []Table {
	return []Table{
		{
			Name: string(pimdb.TitleBasics),
			Columns: []Column{
				{Name: "tconst", Type: TypeString, Length: tconstLength, Nullable: false, PrimaryKey: true},
				{Name: "titleType", Type: TypeString, Length: titleTypeLength, Nullable: true},
				{Name: "primaryTitle", Type: TypeString, Length: titleLength, Nullable: true},
				{Name: "originalTitle", Type: TypeString, Length: titleLength, Nullable: true},
				{Name: "isAdult", Type: TypeBool, Nullable: false},
				{Name: "startYear", Type: TypeInt, Nullable: true},
				{Name: "endYear", Type: TypeInt, Nullable: true},
				{Name: "runtimeMinutes", Type: TypeInt, Nullable: true},
				{Name: "genres", Type: TypeString, Length: listLength(genreLength, genreCount), Nullable: true},
			},
			PrimaryKey: []string{"tconst"},
		},
		{
			Name: string(pimdb.NameBasics),
			Columns: []Column{
				{Name: "nconst", Type: TypeString, Length: nconstLength, Nullable: false, PrimaryKey: true},
				{Name: "primaryName", Type: TypeString, Length: nameLength, Nullable: false},
				{Name: "birthYear", Type: TypeInt, Nullable: true},
				{Name: "deathYear", Type: TypeInt, Nullable: true},
				{Name: "primaryProfession", Type: TypeString, Length: listLength(professionLength, professionCount), Nullable: true},
				{Name: "knownForTitles", Type: TypeString, Length: listLength(tconstLength, 4), Nullable: true},
			},
			PrimaryKey: []string{"nconst"},
		},
		{
			Name: string(pimdb.TitleAkas),
			Columns: []Column{
				{Name: "titleId", Type: TypeString, Length: tconstLength, Nullable: false, PrimaryKey: true},
				{Name: "ordering", Type: TypeInt, Nullable: false, PrimaryKey: true},
				{Name: "title", Type: TypeString, Length: titleLength, Nullable: true},
				{Name: "region", Type: TypeString, Length: regionLength, Nullable: true},
				{Name: "language", Type: TypeString, Length: languageLength, Nullable: true},
				{Name: "types", Type: TypeString, Length: aliasTypesLength, Nullable: true},
				{Name: "attributes", Type: TypeString, Length: attributesLength, Nullable: true},
				// isOriginalTitle sometimes genuinely is \N in the source, despite
				// looking like it should always be present; keep it nullable.
				{Name: "isOriginalTitle", Type: TypeBool, Nullable: true},
			},
			PrimaryKey: []string{"titleId", "ordering"},
		},
		{
			Name: string(pimdb.TitleCrew),
			Columns: []Column{
				{Name: "tconst", Type: TypeString, Length: tconstLength, Nullable: false, PrimaryKey: true},
				{Name: "directors", Type: TypeString, Length: listLength(nconstLength, crewCount), Nullable: true},
				{Name: "writers", Type: TypeString, Length: listLength(nconstLength, crewCount), Nullable: true},
			},
			PrimaryKey: []string{"tconst"},
		},
		{
			Name: string(pimdb.TitlePrincipals),
			Columns: []Column{
				{Name: "tconst", Type: TypeString, Length: tconstLength, Nullable: false, PrimaryKey: true},
				{Name: "ordering", Type: TypeInt, Nullable: false, PrimaryKey: true},
				{Name: "nconst", Type: TypeString, Length: nconstLength, Nullable: true},
				{Name: "category", Type: TypeString, Length: categoryLength, Nullable: true},
				{Name: "job", Type: TypeString, Length: jobLength, Nullable: true},
				{Name: "characters", Type: TypeString, Length: pimdb.CharactersMaxLength, Nullable: true, Enforced: true},
			},
			PrimaryKey: []string{"tconst", "ordering"},
		},
		{
			Name: string(pimdb.TitleRatings),
			Columns: []Column{
				{Name: "tconst", Type: TypeString, Length: tconstLength, Nullable: false, PrimaryKey: true},
				{Name: "averageRating", Type: TypeFloat, Nullable: false},
				{Name: "numVotes", Type: TypeInt, Nullable: false},
			},
			PrimaryKey: []string{"tconst"},
		},
	}
}

func keyTable(name pimdb.ReportTable, nameLen int) Table {
	return Table{
		Name: string(name),
		Columns: []Column{
			{Name: "id", Type: TypeInt, Nullable: false, PrimaryKey: true, AutoIncrement: true},
			{Name: "name", Type: TypeString, Length: nameLen, Nullable: false},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "index__" + string(name) + "__name", Columns: []string{"name"}, Unique: true},
		},
	}
}

// ReportTables returns the descriptors for every normalized report table,
// in no particular order (build order is a separate concern, owned by
// internal/report's dependency DAG, not by the schema catalog).
func ReportTables() []Table {
	return []Table{
		keyTable(pimdb.TitleAliasType, aliasTypeLength),
		keyTable(pimdb.Profession, professionLength),
		keyTable(pimdb.Character, titleLength),
		keyTable(pimdb.Genre, genreLength),
		keyTable(pimdb.TitleType, titleTypeLength),

		{
			Name: string(pimdb.Name),
			Columns: []Column{
				{Name: "id", Type: TypeInt, Nullable: false, PrimaryKey: true, AutoIncrement: true},
				{Name: "nconst", Type: TypeString, Length: nconstLength, Nullable: false},
				{Name: "primary_name", Type: TypeString, Length: titleLength, Nullable: false},
				{Name: "birth_year", Type: TypeInt, Nullable: true},
				{Name: "death_year", Type: TypeInt, Nullable: true},
				{Name: "primary_professions", Type: TypeString, Length: listLength(professionLength, professionCount), Nullable: true},
			},
			PrimaryKey: []string{"id"},
			Indexes: []Index{
				{Name: "index__name__nconst", Columns: []string{"nconst"}, Unique: true},
			},
		},
		{
			Name: string(pimdb.Title),
			Columns: []Column{
				{Name: "id", Type: TypeInt, Nullable: false, PrimaryKey: true, AutoIncrement: true},
				{Name: "tconst", Type: TypeString, Length: tconstLength, Nullable: false},
				{Name: "title_type_id", Type: TypeInt, Nullable: false},
				{Name: "primary_title", Type: TypeString, Length: titleLength, Nullable: false},
				{Name: "original_title", Type: TypeString, Length: titleLength, Nullable: false},
				{Name: "is_adult", Type: TypeBool, Nullable: false},
				{Name: "start_year", Type: TypeInt, Nullable: true},
				{Name: "end_year", Type: TypeInt, Nullable: true},
				{Name: "runtime_minutes", Type: TypeInt, Nullable: true},
				{Name: "average_rating", Type: TypeFloat, Nullable: false},
				{Name: "rating_count", Type: TypeInt, Nullable: false},
			},
			PrimaryKey:  []string{"id"},
			ForeignKeys: []ForeignKey{{Column: "title_type_id", RefTable: string(pimdb.TitleType), RefColumn: "id"}},
			Indexes: []Index{
				{Name: "index__title__tconst", Columns: []string{"tconst"}, Unique: true},
			},
		},
		{
			Name: string(pimdb.TitleAlias),
			Columns: []Column{
				{Name: "id", Type: TypeInt, Nullable: false, PrimaryKey: true, AutoIncrement: true},
				{Name: "title_id", Type: TypeInt, Nullable: false},
				{Name: "ordering", Type: TypeInt, Nullable: false},
				{Name: "title", Type: TypeString, Length: titleLength, Nullable: false},
				{Name: "region_code", Type: TypeString, Length: regionLength, Nullable: true},
				{Name: "language_code", Type: TypeString, Length: languageLength, Nullable: true},
				{Name: "is_original_title", Type: TypeBool, Nullable: true},
			},
			PrimaryKey:  []string{"id"},
			ForeignKeys: []ForeignKey{{Column: "title_id", RefTable: string(pimdb.Title), RefColumn: "id"}},
			Indexes: []Index{
				{Name: "index__title_alias__title_id__ordering", Columns: []string{"title_id", "ordering"}, Unique: true},
			},
		},
		{
			Name: string(pimdb.Participation),
			Columns: []Column{
				{Name: "id", Type: TypeInt, Nullable: false, PrimaryKey: true, AutoIncrement: true},
				{Name: "title_id", Type: TypeInt, Nullable: false},
				{Name: "ordering", Type: TypeInt, Nullable: false},
				{Name: "name_id", Type: TypeInt, Nullable: false},
				{Name: "profession_id", Type: TypeInt, Nullable: true},
				{Name: "job", Type: TypeString, Length: jobLength, Nullable: true},
			},
			PrimaryKey: []string{"id"},
			ForeignKeys: []ForeignKey{
				{Column: "title_id", RefTable: string(pimdb.Title), RefColumn: "id"},
				{Column: "name_id", RefTable: string(pimdb.Name), RefColumn: "id"},
				{Column: "profession_id", RefTable: string(pimdb.Profession), RefColumn: "id"},
			},
			Indexes: []Index{
				{Name: "index__participation__title_id__ordering", Columns: []string{"title_id", "ordering"}, Unique: true},
			},
		},

		orderedRelation(pimdb.TitleToDirector, pimdb.Title, pimdb.Name),
		orderedRelation(pimdb.TitleToWriter, pimdb.Title, pimdb.Name),
		orderedRelation(pimdb.TitleToGenre, pimdb.Title, pimdb.Genre),
		orderedRelation(pimdb.NameToKnownForTitle, pimdb.Name, pimdb.Title),
		orderedRelation(pimdb.TitleAliasToAliasType, pimdb.TitleAlias, pimdb.TitleAliasType),
		orderedRelation(pimdb.ParticipationToCharacter, pimdb.Participation, pimdb.Character),

		{
			// Interns the raw title_principals.characters JSON literal so it is
			// decoded exactly once no matter how many rows repeat it.
			Name: string(pimdb.CharactersToCharacter),
			Columns: []Column{
				{Name: "characters", Type: TypeString, Length: pimdb.CharactersMaxLength, Nullable: false},
				{Name: "ordering", Type: TypeInt, Nullable: false},
				{Name: "character_id", Type: TypeInt, Nullable: false},
			},
			PrimaryKey:  []string{"characters", "ordering"},
			ForeignKeys: []ForeignKey{{Column: "character_id", RefTable: string(pimdb.Character), RefColumn: "id"}},
		},
	}
}

// orderedRelation builds the (F_id, ordering, T_id) descriptor shared by
// every multivalued edge table: unique on (F_id, ordering), non-unique index
// on T_id for reverse lookups.
func orderedRelation(name, from, to pimdb.ReportTable) Table {
	fromCol := string(from) + "_id"
	toCol := string(to) + "_id"
	return Table{
		Name: string(name),
		Columns: []Column{
			{Name: fromCol, Type: TypeInt, Nullable: false},
			{Name: "ordering", Type: TypeInt, Nullable: false},
			{Name: toCol, Type: TypeInt, Nullable: false},
		},
		ForeignKeys: []ForeignKey{
			{Column: fromCol, RefTable: string(from), RefColumn: "id"},
			{Column: toCol, RefTable: string(to), RefColumn: "id"},
		},
		Indexes: []Index{
			{Name: "index__" + string(name) + "__" + fromCol, Columns: []string{fromCol, "ordering"}, Unique: true},
			{Name: "index__" + string(name) + "__" + toCol, Columns: []string{toCol}, Unique: false},
		},
	}
}
