package tsv

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGzipTSV(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.tsv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	gz := gzip.NewWriter(f)
	defer gz.Close()
	for _, line := range lines {
		_, err := gz.Write([]byte(line + "\n"))
		require.NoError(t, err)
	}
	return path
}

func TestReaderStreamsRows(t *testing.T) {
	path := writeGzipTSV(t, []string{
		"tconst\ttitle",
		"tt0000001\tCarmencita",
		"tt0000002\tLe clown",
	})
	r, err := Open(path, nil)
	require.NoError(t, err)
	defer r.Close()

	require.True(t, r.Next())
	assert.Equal(t, "tt0000001", r.Row()["tconst"])
	assert.Equal(t, "Carmencita", r.Row()["title"])
	assert.Equal(t, 2, r.RowNumber())

	require.True(t, r.Next())
	assert.Equal(t, "tt0000002", r.Row()["tconst"])

	require.False(t, r.Next())
	require.NoError(t, r.Err())
}

func TestReaderPreservesEmbeddedQuotes(t *testing.T) {
	path := writeGzipTSV(t, []string{
		"tconst\ttitle",
		"tt0000001\tThe \"Great\" Escape",
	})
	r, err := Open(path, nil)
	require.NoError(t, err)
	defer r.Close()

	require.True(t, r.Next())
	assert.Equal(t, `The "Great" Escape`, r.Row()["title"])
}

func TestReaderDedupsByKeyColumns(t *testing.T) {
	path := writeGzipTSV(t, []string{
		"tconst\ttitle",
		"tt0000001\tFirst",
		"tt0000001\tDuplicate",
		"tt0000002\tSecond",
	})
	r, err := Open(path, []string{"tconst"})
	require.NoError(t, err)
	defer r.Close()

	var titles []string
	for r.Next() {
		titles = append(titles, r.Row()["title"])
	}
	require.NoError(t, r.Err())
	assert.Equal(t, []string{"First", "Second"}, titles)
	assert.Equal(t, 1, r.DuplicatesDropped())
}

func TestReaderRejectsShortRow(t *testing.T) {
	path := writeGzipTSV(t, []string{
		"tconst\ttitle\tyear",
		"tt0000001\tFirst",
	})
	r, err := Open(path, nil)
	require.NoError(t, err)
	defer r.Close()

	assert.False(t, r.Next())
	assert.Error(t, r.Err())
}

func TestReaderRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.tsv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	_, err = Open(path, nil)
	assert.Error(t, err)
}
