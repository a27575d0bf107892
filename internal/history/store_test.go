package history_test

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serr "dirtidy/internal/errors"
	"dirtidy/internal/history"
	"dirtidy/pkg/types"
)

var when = time.Date(2026, 10, 15, 9, 30, 0, 123456789, time.UTC)

func sampleRecord(dir string) *history.Record {
	return history.NewRecord(dir, []types.MoveOperation{
		{
			SourcePath:      filepath.Join(dir, "photo.png"),
			DestinationPath: filepath.Join(dir, "images", "photo.png"),
			Category:        "images",
			Timestamp:       when,
		},
		{
			SourcePath:      filepath.Join(dir, "notes.TXT"),
			DestinationPath: filepath.Join(dir, "documents", "notes_1700000000.TXT"),
			Category:        "documents",
			Timestamp:       when.Add(time.Millisecond),
		},
	}, when)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	filesystems := map[string]func(t *testing.T) (afero.Fs, string){
		"memory": func(t *testing.T) (afero.Fs, string) {
			fs := afero.NewMemMapFs()
			require.NoError(t, fs.MkdirAll("/target", 0755))
			return fs, "/target"
		},
		"os": func(t *testing.T) (afero.Fs, string) {
			return afero.NewOsFs(), t.TempDir()
		},
	}

	for name, setup := range filesystems {
		t.Run(name, func(t *testing.T) {
			fs, dir := setup(t)
			store := history.NewStore(fs)
			assert.Equal(t, history.Absent, store.State(dir))

			rec := sampleRecord(dir)
			require.NoError(t, store.Save(dir, rec))
			assert.Equal(t, history.Present, store.State(dir))

			loaded, err := store.Load(dir)
			require.NoError(t, err)
			assert.Equal(t, rec.ID, loaded.ID)
			assert.Equal(t, history.Version, loaded.Version)
			assert.Equal(t, dir, loaded.BasePath)
			assert.True(t, rec.CreatedAt.Equal(loaded.CreatedAt))
			require.Len(t, loaded.Operations, 2)
			for i := range rec.Operations {
				assert.Equal(t, rec.Operations[i].SourcePath, loaded.Operations[i].SourcePath)
				assert.Equal(t, rec.Operations[i].DestinationPath, loaded.Operations[i].DestinationPath)
				assert.True(t, rec.Operations[i].Timestamp.Equal(loaded.Operations[i].Timestamp))
			}

			// no temporary files left behind
			entries, err := afero.ReadDir(fs, dir)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, history.FileName, entries[0].Name())

			require.NoError(t, store.Remove(dir))
			assert.Equal(t, history.Absent, store.State(dir))
			require.NoError(t, store.Remove(dir), "removing twice is fine")
		})
	}
}

func TestSaveReplacesPreviousRecord(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := history.NewStore(fs)
	require.NoError(t, fs.MkdirAll("/t", 0755))

	first := sampleRecord("/t")
	second := sampleRecord("/t")
	second.Operations = second.Operations[:1]
	require.NoError(t, store.Save("/t", first))
	require.NoError(t, store.Save("/t", second))

	loaded, err := store.Load("/t")
	require.NoError(t, err)
	assert.Equal(t, second.ID, loaded.ID)
	assert.Len(t, loaded.Operations, 1)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSaveFailureKeepsPreviousHistory(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, base.MkdirAll("/t", 0755))
	prev := sampleRecord("/t")
	require.NoError(t, history.NewStore(base).Save("/t", prev))

	// a read-only view refuses the temp file
	ro := history.NewStore(afero.NewReadOnlyFs(base))
	err := ro.Save("/t", sampleRecord("/t"))
	require.Error(t, err)
	assert.True(t, serr.IsPersistFailed(err))

	loaded, err := history.NewStore(base).Load("/t")
	require.NoError(t, err)
	assert.Equal(t, prev.ID, loaded.ID)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, err := history.NewStore(afero.NewMemMapFs()).Load("/t")
		require.Error(t, err)
		assert.True(t, serr.IsNoHistory(err))
		assert.ErrorIs(t, err, serr.ErrNoHistory)
	})

	corrupt := map[string]string{
		"garbage":        "{not json",
		"empty":          "",
		"wrong version":  `{"version": 7, "operations": []}`,
		"no version":     `{"operations": []}`,
		"missing source": `{"version": 1, "operations": [{"destination_path": "/t/images/a.png"}]}`,
	}
	for name, content := range corrupt {
		t.Run(name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, history.Path("/t"), []byte(content), 0644))

			store := history.NewStore(fs)
			_, err := store.Load("/t")
			require.Error(t, err)
			assert.True(t, serr.IsCorruptHistory(err), "got %v", err)
			assert.Equal(t, history.Corrupt, store.State("/t"))
		})
	}
}

func TestDocumentFormat(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/t", 0755))
	require.NoError(t, history.NewStore(fs).Save("/t", sampleRecord("/t")))

	data, err := afero.ReadFile(fs, "/t/"+history.FileName)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.EqualValues(t, 1, doc["version"])
	assert.Equal(t, "2026-10-15T09:30:00.123456789Z", doc["created_at"])
	assert.Equal(t, "/t", doc["base_path"])

	ops := doc["operations"].([]interface{})
	first := ops[0].(map[string]interface{})
	assert.Equal(t, "/t/photo.png", first["source_path"])
	assert.Equal(t, "/t/images/photo.png", first["destination_path"])
	assert.Equal(t, "images", first["category"])
	assert.Contains(t, first, "timestamp")
}

func TestIsHistoryFile(t *testing.T) {
	assert.True(t, history.IsHistoryFile(".dirtidy_history.json"))
	assert.True(t, history.IsHistoryFile(".dirtidy_history-123456.tmp"))
	assert.False(t, history.IsHistoryFile("dirtidy_history.json"))
	assert.False(t, history.IsHistoryFile(".dirtidy_history-123456"))
	assert.Equal(t, filepath.Join("a", history.FileName), history.Path("a"))
}
