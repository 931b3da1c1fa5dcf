package pimdb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatasetErrorFormatting(t *testing.T) {
	base := errors.New("boom")

	full := &DatasetError{Op: "coerce", Table: "title_basics", File: "title.basics.tsv.gz", Row: 5, Column: "isAdult", Err: base}
	assert.Equal(t, `coerce: title_basics (title.basics.tsv.gz:5): column "isAdult": boom`, full.Error())

	fileRow := &DatasetError{Op: "load_file", Table: "title_basics", File: "title.basics.tsv.gz", Row: 5, Err: base}
	assert.Equal(t, `load_file: title_basics (title.basics.tsv.gz:5): boom`, fileRow.Error())

	tableOnly := &DatasetError{Op: "build_key_table", Table: "genre", Err: base}
	assert.Equal(t, `build_key_table: genre: boom`, tableOnly.Error())

	bare := &DatasetError{Op: "open", Err: base}
	assert.Equal(t, `open: boom`, bare.Error())

	assert.ErrorIs(t, full, base)
}

func TestFilenameMapping(t *testing.T) {
	assert.Equal(t, "title.basics.tsv.gz", TitleBasics.Filename())
	assert.Equal(t, "name.basics.tsv.gz", NameBasics.Filename())
	assert.Equal(t, "title.principals.tsv.gz", TitlePrincipals.Filename())
}
