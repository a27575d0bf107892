// Package history persists the record of the last organize run of a
// directory so it can be undone.
//
// A directory's history moves through three states. It is Absent until a
// run applies at least one move, Present while that run can be undone,
// and Absent again once undo consumes it. A file that cannot be
// interpreted is Corrupt and is never overwritten silently by undo.
package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	serr "dirtidy/internal/errors"
	log "dirtidy/internal/log"
	"dirtidy/pkg/types"
)

const (
	// FileName is the history file kept in the organized directory
	FileName = ".dirtidy_history.json"
	// Version is the record format written by this package
	Version = 1

	tempPattern = ".dirtidy_history-*.tmp"
)

// State of a directory's history file
type State int

const (
	Absent State = iota
	Present
	Corrupt
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Present:
		return "present"
	case Corrupt:
		return "corrupt"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Record is one organize run. Operations are in the order they were
// applied.
type Record struct {
	Version    int                   `json:"version"`
	ID         string                `json:"id"`
	CreatedAt  time.Time             `json:"created_at"`
	BasePath   string                `json:"base_path"`
	Operations []types.MoveOperation `json:"operations"`
}

// NewRecord creates a record with a fresh ID.
func NewRecord(basePath string, ops []types.MoveOperation, now time.Time) *Record {
	return &Record{
		Version:    Version,
		ID:         uuid.NewString(),
		CreatedAt:  now.UTC(),
		BasePath:   basePath,
		Operations: ops,
	}
}

func (r *Record) validate() error {
	if r.Version != Version {
		return fmt.Errorf("unsupported history version %d", r.Version)
	}
	for i, op := range r.Operations {
		if op.SourcePath == "" || op.DestinationPath == "" {
			return fmt.Errorf("operation %d is missing a path", i)
		}
	}
	return nil
}

// Store reads and writes history files through an afero filesystem.
type Store struct {
	Fs afero.Fs
}

// NewStore creates a Store on fs
func NewStore(fs afero.Fs) *Store {
	return &Store{Fs: fs}
}

// Path returns the history file location for dir
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// IsHistoryFile reports whether name is the history file or one of its
// temporary files.
func IsHistoryFile(name string) bool {
	if name == FileName {
		return true
	}
	return strings.HasPrefix(name, ".dirtidy_history-") && strings.HasSuffix(name, ".tmp")
}

// State inspects dir's history file without returning its contents.
func (s *Store) State(dir string) State {
	_, err := s.Load(dir)
	switch {
	case err == nil:
		return Present
	case serr.IsNoHistory(err):
		return Absent
	default:
		return Corrupt
	}
}

// Load reads and validates dir's history. It returns a NoHistory error
// when there is no file and a CorruptHistory error when the file cannot
// be interpreted.
func (s *Store) Load(dir string) (*Record, error) {
	path := Path(dir)
	data, err := afero.ReadFile(s.Fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, serr.NewHistoryError("no previous organization found to undo", path, serr.NoHistory, err)
		}
		return nil, serr.NewHistoryError("failed to read history file", path, serr.CorruptHistory, err)
	}

	var rec Record
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&rec); err != nil {
		return nil, serr.NewHistoryError("history file is corrupt", path, serr.CorruptHistory, err)
	}
	if err := rec.validate(); err != nil {
		return nil, serr.NewHistoryError("history file is corrupt", path, serr.CorruptHistory, err)
	}
	return &rec, nil
}

// Save atomically replaces dir's history with rec. The record is
// written to a temporary file in dir, synced and renamed over the
// history file; on failure the temporary file is removed and any
// previous history is left as it was.
func (s *Store) Save(dir string, rec *Record) (err error) {
	path := Path(dir)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return serr.NewHistoryError("failed to encode history", path, serr.PersistFailed, err)
	}

	tmp, err := afero.TempFile(s.Fs, dir, tempPattern)
	if err != nil {
		return serr.NewHistoryError("failed to create temporary history file", path, serr.PersistFailed, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			if rmErr := s.Fs.Remove(tmpName); rmErr != nil && !os.IsNotExist(rmErr) {
				log.LogWithError(rmErr).Warn("Failed to remove temporary history file")
			}
		}
	}()

	if _, err = tmp.Write(append(data, '\n')); err != nil {
		return serr.NewHistoryError("failed to write history", path, serr.PersistFailed, err)
	}
	if err = tmp.Sync(); err != nil {
		return serr.NewHistoryError("failed to sync history", path, serr.PersistFailed, err)
	}
	if err = tmp.Close(); err != nil {
		return serr.NewHistoryError("failed to close history", path, serr.PersistFailed, err)
	}
	if err = s.Fs.Rename(tmpName, path); err != nil {
		return serr.NewHistoryError("failed to replace history", path, serr.PersistFailed, err)
	}

	log.LogWithFields(log.F("path", path), log.F("id", rec.ID), log.F("operations", len(rec.Operations))).Debug("History saved")
	return nil
}

// Remove deletes dir's history. A missing file is not an error.
func (s *Store) Remove(dir string) error {
	path := Path(dir)
	if err := s.Fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return serr.NewHistoryError("failed to remove history", path, serr.PersistFailed, err)
	}
	return nil
}
