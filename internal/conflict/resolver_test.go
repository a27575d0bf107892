package conflict_test

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirtidy/internal/conflict"
	serr "dirtidy/internal/errors"
)

var fixed = time.Unix(1700000000, 0)

func newResolver(fs afero.Fs) *conflict.Resolver {
	r := conflict.New(fs)
	r.Now = func() time.Time { return fixed }
	return r
}

func TestResolveFreePath(t *testing.T) {
	r := newResolver(afero.NewMemMapFs())
	got, err := r.Resolve("/t/documents/report.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, "/t/documents/report.pdf", got)
}

func TestResolveTakenPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/t/documents/report.pdf", []byte("old"), 0644))
	r := newResolver(fs)

	got, err := r.Resolve("/t/documents/report.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, "/t/documents/report_1700000000.pdf", got)

	require.NoError(t, afero.WriteFile(fs, got, []byte("new"), 0644))
	got, err = r.Resolve("/t/documents/report.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, "/t/documents/report_1700000000_2.pdf", got)
}

func TestResolveAtUsesGivenTime(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/t/documents/report.pdf", []byte("old"), 0644))
	r := newResolver(fs)

	modified := time.Unix(1600000000, 0)
	for i := 0; i < 3; i++ {
		r.Now = func() time.Time { return fixed.Add(time.Duration(i) * time.Minute) }
		got, err := r.ResolveAt("/t/documents/report.pdf", modified, nil)
		require.NoError(t, err)
		assert.Equal(t, "/t/documents/report_1600000000.pdf", got)
	}

	r.Now = func() time.Time { return fixed }
	got, err := r.ResolveAt("/t/documents/report.pdf", time.Time{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/t/documents/report_1700000000.pdf", got, "zero time falls back to the clock")
}

func TestResolveHonorsReservations(t *testing.T) {
	r := newResolver(afero.NewMemMapFs())
	reserved := map[string]bool{
		"/t/images/a.png":            true,
		"/t/images/a_1700000000.png": true,
	}
	got, err := r.Resolve("/t/images/a.png", func(p string) bool { return reserved[p] })
	require.NoError(t, err)
	assert.Equal(t, "/t/images/a_1700000000_2.png", got)
}

func TestResolveExhausted(t *testing.T) {
	fs := afero.NewMemMapFs()
	r := newResolver(fs)
	r.MaxAttempts = 3

	_, err := r.Resolve("/t/x.txt", func(string) bool { return true })
	require.Error(t, err)
	assert.Equal(t, serr.CollisionExhausted, serr.KindOf(err))

	var fileErr *serr.FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, "/t/x.txt", fileErr.Path())
}

func TestDisambiguate(t *testing.T) {
	tests := []struct {
		path    string
		attempt int
		want    string
	}{
		{"/t/a/report.pdf", 1, "/t/a/report_42.pdf"},
		{"/t/a/report.pdf", 3, "/t/a/report_42_3.pdf"},
		{"/t/a/README", 1, "/t/a/README_42"},
		{"/t/a/.bashrc", 1, "/t/a/.bashrc_42"},
		{"/t/a/.config.toml", 2, "/t/a/.config_42_2.toml"},
		{"/t/a/archive.tar.gz", 1, "/t/a/archive.tar_42.gz"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, conflict.Disambiguate(tt.path, 42, tt.attempt))
		})
	}
}

func TestExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/t/f", nil, 0644))

	ok, err := conflict.Exists(fs, "/t/f")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = conflict.Exists(fs, "/t/g")
	require.NoError(t, err)
	assert.False(t, ok)
}
