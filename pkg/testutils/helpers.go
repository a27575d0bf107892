package testutils

import (
	"io/fs"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// WriteFiles creates files with specific content under dir. Names may
// contain slashes; parent directories are created as needed.
func WriteFiles(t *testing.T, afs afero.Fs, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, afs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(afs, path, []byte(content), 0644))
	}
}

// SetModTime sets the access and modification time of each path
func SetModTime(t *testing.T, afs afero.Fs, when time.Time, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, afs.Chtimes(p, when, when))
	}
}

// WriteDefaultFiles creates a small mixed set of files
func WriteDefaultFiles(t *testing.T, afs afero.Fs, dir string) {
	WriteFiles(t, afs, dir, map[string]string{
		"test1.txt": "test content 1",
		"test2.md":  "# test content 2",
		"test3.jpg": "image content",
	})
}

// ListTree returns every regular file under dir as a slash-separated
// path relative to dir, sorted.
func ListTree(t *testing.T, afs afero.Fs, dir string) []string {
	t.Helper()
	var out []string
	err := afero.Walk(afs, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	sort.Strings(out)
	return out
}

// ReadFile returns a file's content as a string
func ReadFile(t *testing.T, afs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(afs, path)
	require.NoError(t, err)
	return string(data)
}

// StripANSI removes ANSI escape sequences from a string
func StripANSI(str string) string {
	var result []rune
	inEscape := false
	for _, r := range str {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
			}
			continue
		}
		result = append(result, r)
	}
	return string(result)
}
