// Package conflict picks destination names that never clobber an
// existing file.
package conflict

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	serr "dirtidy/internal/errors"
	log "dirtidy/internal/log"
	"dirtidy/pkg/types"
)

// DefaultMaxAttempts caps the number of alternative names tried.
const DefaultMaxAttempts = 1000

// Resolver produces free destination paths. A taken path gets a Unix
// time inserted before its extension (report_1700000000.pdf), then a
// counter (report_1700000000_2.pdf).
type Resolver struct {
	Fs          afero.Fs
	Now         func() time.Time
	MaxAttempts int
}

// New creates a Resolver with the default clock and attempt cap
func New(fs afero.Fs) *Resolver {
	return &Resolver{Fs: fs, Now: time.Now, MaxAttempts: DefaultMaxAttempts}
}

// Resolve returns dest when it is free, otherwise the first free
// disambiguated alternative. reserved, when non-nil, marks paths that
// are spoken for even though nothing exists there yet, such as earlier
// destinations of the same plan.
func (r *Resolver) Resolve(dest string, reserved func(string) bool) (string, error) {
	return r.ResolveAt(dest, time.Time{}, reserved)
}

// ResolveAt is Resolve with the time used in alternative names given by
// the caller, usually the modification time of the file being placed, so
// the same file resolves to the same name on every run. A zero at falls
// back to the clock.
func (r *Resolver) ResolveAt(dest string, at time.Time, reserved func(string) bool) (string, error) {
	taken, err := r.taken(dest, reserved)
	if err != nil {
		return "", err
	}
	if !taken {
		return dest, nil
	}

	if at.IsZero() {
		at = r.now()
	}
	stamp := at.Unix()
	for attempt := 1; attempt <= r.maxAttempts(); attempt++ {
		candidate := Disambiguate(dest, stamp, attempt)
		taken, err := r.taken(candidate, reserved)
		if err != nil {
			return "", err
		}
		if !taken {
			log.LogWithFields(log.F("path", dest), log.F("resolved", candidate)).Debug("Destination taken, using alternative name")
			return candidate, nil
		}
	}

	return "", serr.NewFileError(
		fmt.Sprintf("no free name after %d attempts", r.maxAttempts()),
		dest, serr.CollisionExhausted, nil)
}

// Disambiguate builds the attempt-th alternative for path. Attempt 1 is
// name_<stamp>.ext; later attempts append the counter.
func Disambiguate(path string, stamp int64, attempt int) string {
	dir, name := filepath.Split(path)
	ext := types.ExtensionOf(name)
	stem := name
	if ext != "" {
		stem = strings.TrimSuffix(name, "."+ext)
		ext = "." + ext
	}

	suffix := fmt.Sprintf("_%d", stamp)
	if attempt > 1 {
		suffix = fmt.Sprintf("_%d_%d", stamp, attempt)
	}
	return filepath.Join(dir, stem+suffix+ext)
}

func (r *Resolver) taken(path string, reserved func(string) bool) (bool, error) {
	if reserved != nil && reserved(path) {
		return true, nil
	}
	return Exists(r.Fs, path)
}

// Exists reports whether anything, including a dangling symlink, is at
// path.
func Exists(fs afero.Fs, path string) (bool, error) {
	var err error
	if lst, ok := fs.(afero.Lstater); ok {
		_, _, err = lst.LstatIfPossible(path)
	} else {
		_, err = fs.Stat(path)
	}
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, serr.NewFileError("failed to check destination", path, serr.FileAccessDenied, err)
}

func (r *Resolver) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Resolver) maxAttempts() int {
	if r.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return r.MaxAttempts
}
