package ingest

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imdbdataset/internal/store"
	"imdbdataset/pimdb"
)

func writeDataset(t *testing.T, dir string, dataset pimdb.ImdbDataset, lines []string) {
	t.Helper()
	path := filepath.Join(dir, dataset.Filename())
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	gz := gzip.NewWriter(f)
	defer gz.Close()
	for _, line := range lines {
		_, err := gz.Write([]byte(line + "\n"))
		require.NoError(t, err)
	}
}

func TestLoadFileLoadsAndDedups(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, pimdb.TitleBasics, []string{
		"tconst\ttitleType\tprimaryTitle\toriginalTitle\tisAdult\tstartYear\tendYear\truntimeMinutes\tgenres",
		"tt0000001\tshort\tCarmencita\tCarmencita\t0\t1894\t\\N\t1\tDocumentary,Short",
		"tt0000001\tshort\tCarmencita\tCarmencita\t0\t1894\t\\N\t1\tDocumentary,Short",
		"tt0000002\tshort\tLe clown\tLe clown\t0\t1892\t\\N\t2\tAnimation",
	})

	s, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()

	loader := New(s, dir, 1024, nil, zerolog.Nop())
	ctx := context.Background()
	require.NoError(t, loader.CreateStagingTables(ctx, false))
	require.NoError(t, loader.LoadFile(ctx, pimdb.TitleBasics))

	var count int
	require.NoError(t, s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM title_basics").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestLoadFileRollsBackOnCoercionFailure(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, pimdb.TitleBasics, []string{
		"tconst\ttitleType\tprimaryTitle\toriginalTitle\tisAdult\tstartYear\tendYear\truntimeMinutes\tgenres",
		"tt0000001\tshort\tCarmencita\tCarmencita\t0\t1894\t\\N\t1\tDocumentary,Short",
		"tt0000002\tshort\tLe clown\tLe clown\tNOT_A_BOOL\t1892\t\\N\t2\tAnimation",
	})

	s, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()

	loader := New(s, dir, 1024, nil, zerolog.Nop())
	ctx := context.Background()
	require.NoError(t, loader.CreateStagingTables(ctx, false))

	err = loader.LoadFile(ctx, pimdb.TitleBasics)
	require.Error(t, err)

	var count int
	require.NoError(t, s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM title_basics").Scan(&count))
	assert.Equal(t, 0, count)
}
