package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/vvardenfell/internal/config"
	"github.com/Faultbox/vvardenfell/pkg/dataerr"
	"github.com/Faultbox/vvardenfell/pkg/esm/esmtest"
	"github.com/Faultbox/vvardenfell/pkg/snapshot"
)

func writeContent(t *testing.T, dir string) *config.Config {
	t.Helper()
	master := esmtest.NewFile("master").
		Record("STAT", 0, esmtest.Static("rock", `r\rock.nif`)...).
		Record("STAT", 0, esmtest.Static("tree", `f\tree.nif`)...)
	plugin := esmtest.NewFile("plugin", "master.esm").
		Record("STAT", 0, esmtest.Static("Rock", `r\rock_02.nif`)...).
		Record("STAT", 0, esmtest.Str("NAME", "tree"), esmtest.Raw("DELE", uint32(0)))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "master.esm"), master.Bytes(), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plugin.esp"), plugin.Bytes(), 0o644))

	cfg := config.Default()
	cfg.Data.DataDir = dir
	cfg.Data.Content = []string{"master.esm", "plugin.esp"}
	cfg.Cache.Dir = filepath.Join(dir, "cache")
	return cfg
}

func sources(results []FileResult) []Source {
	out := make([]Source, len(results))
	for i, r := range results {
		out[i] = r.Source
	}
	return out
}

func TestLoad_MergesInOrder(t *testing.T) {
	cfg := writeContent(t, t.TempDir())

	db, err := Load(context.Background(), cfg, nil)
	require.NoError(t, err)

	model, ok := db.GetModelPath("ROCK")
	require.True(t, ok)
	assert.Equal(t, `r\rock_02.nif`, model)
	_, ok = db.GetModelPath("tree")
	assert.False(t, ok, "tombstone should remove tree")
	assert.Len(t, db.Files, 2)
}

func TestLoad_UsesAndRefreshesSnapshots(t *testing.T) {
	dir := t.TempDir()
	cfg := writeContent(t, dir)

	_, results, err := LoadFiles(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []Source{FromParse, FromParse}, sources(results))

	for _, name := range []string{"master.esm", "plugin.esp"} {
		src := filepath.Join(dir, name)
		fresh, err := snapshot.Exists(src, snapshot.PathFor(cfg.CacheDir(), src))
		require.NoError(t, err)
		assert.True(t, fresh, name)
	}

	db, results, err := LoadFiles(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []Source{FromSnapshot, FromSnapshot}, sources(results))
	model, _ := db.GetModelPath("rock")
	assert.Equal(t, `r\rock_02.nif`, model)

	// one changed byte invalidates only that file's snapshot
	path := filepath.Join(dir, "plugin.esp")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, results, err = LoadFiles(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []Source{FromSnapshot, FromParse}, sources(results))
}

func TestLoad_CacheDisabled(t *testing.T) {
	cfg := writeContent(t, t.TempDir())
	cfg.Cache.Enabled = false

	_, results, err := LoadFiles(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []Source{FromParse, FromParse}, sources(results))
	_, err = os.Stat(cfg.CacheDir())
	assert.True(t, os.IsNotExist(err), "cache dir should not be created")
}

func TestLoad_Cancelled(t *testing.T) {
	cfg := writeContent(t, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	db, err := Load(ctx, cfg, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, db)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg := writeContent(t, t.TempDir())
	cfg.Data.Content = append(cfg.Data.Content, "missing.esp")

	db, err := Load(context.Background(), cfg, nil)
	var ioErr *dataerr.IOError
	assert.ErrorAs(t, err, &ioErr)
	assert.Nil(t, db)
}
