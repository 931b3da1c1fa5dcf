package coerce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imdbdataset/internal/schema"
	"imdbdataset/pimdb"
)

func testTable() schema.Table {
	return schema.Table{
		Name: "t",
		Columns: []schema.Column{
			{Name: "tconst", Type: schema.TypeString, Length: 12, Nullable: false},
			{Name: "isAdult", Type: schema.TypeBool, Nullable: false},
			{Name: "startYear", Type: schema.TypeInt, Nullable: true},
			{Name: "rating", Type: schema.TypeFloat, Nullable: false},
			{Name: "title", Type: schema.TypeString, Length: 8, Nullable: true},
			{Name: "characters", Type: schema.TypeString, Length: 8, Nullable: true, Enforced: true},
		},
	}
}

func TestCoerceScalars(t *testing.T) {
	row, warnings, err := Coerce(testTable(), map[string]string{
		"tconst": "tt0000001", "isAdult": "0", "startYear": "1894", "rating": "7.5", "title": "Carmen", "characters": "Self",
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "tt0000001", row["tconst"])
	assert.Equal(t, false, row["isAdult"])
	assert.Equal(t, int64(1894), row["startYear"])
	assert.Equal(t, 7.5, row["rating"])
	assert.Equal(t, "Carmen", row["title"])
	assert.Equal(t, "Self", row["characters"])
}

func TestCoerceNullableGetsNil(t *testing.T) {
	row, _, err := Coerce(testTable(), map[string]string{
		"tconst": "tt0000001", "isAdult": "1", "startYear": pimdb.NullSentinel, "rating": "0", "title": pimdb.NullSentinel, "characters": pimdb.NullSentinel,
	})
	require.NoError(t, err)
	assert.Nil(t, row["startYear"])
	assert.Nil(t, row["title"])
	assert.Nil(t, row["characters"])
}

func TestCoerceNonNullableSentinelWarnsAndZeros(t *testing.T) {
	row, warnings, err := Coerce(testTable(), map[string]string{
		"tconst": pimdb.NullSentinel, "isAdult": "0", "startYear": pimdb.NullSentinel, "rating": "0", "title": pimdb.NullSentinel, "characters": pimdb.NullSentinel,
	})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "tconst", warnings[0].Column)
	assert.Equal(t, "", row["tconst"])
}

func TestCoerceMalformedBooleanIsFatal(t *testing.T) {
	_, _, err := Coerce(testTable(), map[string]string{
		"tconst": "tt0000001", "isAdult": "yes", "startYear": pimdb.NullSentinel, "rating": "0", "title": pimdb.NullSentinel, "characters": pimdb.NullSentinel,
	})
	require.Error(t, err)
}

func TestCoerceUnparseableIntIsFatal(t *testing.T) {
	_, _, err := Coerce(testTable(), map[string]string{
		"tconst": "tt0000001", "isAdult": "0", "startYear": "not-a-year", "rating": "0", "title": pimdb.NullSentinel, "characters": pimdb.NullSentinel,
	})
	require.Error(t, err)
}

func TestCoerceEnforcedLengthCapIsFatal(t *testing.T) {
	_, _, err := Coerce(testTable(), map[string]string{
		"tconst": "tt0000001", "isAdult": "0", "startYear": pimdb.NullSentinel, "rating": "0", "title": pimdb.NullSentinel, "characters": "way-too-long",
	})
	require.Error(t, err)
}

func TestCoerceUnenforcedLengthCapPassesThrough(t *testing.T) {
	// title declares the same Length as characters but is not Enforced: its
	// cap is documentation, not a validator (SPEC_FULL.md §4.4), so an
	// over-length value must not fail the load.
	row, _, err := Coerce(testTable(), map[string]string{
		"tconst": "tt0000001", "isAdult": "0", "startYear": pimdb.NullSentinel, "rating": "0", "title": "way-too-long", "characters": pimdb.NullSentinel,
	})
	require.NoError(t, err)
	assert.Equal(t, "way-too-long", row["title"])
}

func TestCoerceMissingColumnIsFatal(t *testing.T) {
	_, _, err := Coerce(testTable(), map[string]string{
		"tconst": "tt0000001", "isAdult": "0", "rating": "0",
	})
	require.Error(t, err)
}
