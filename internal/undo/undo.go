// Package undo reverses the moves recorded by the last organize run.
package undo

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"dirtidy/internal/conflict"
	serr "dirtidy/internal/errors"
	"dirtidy/internal/history"
	log "dirtidy/internal/log"
	"dirtidy/pkg/types"
)

// Engine restores files to where they were before an organize run.
type Engine struct {
	fs       afero.Fs
	history  *history.Store
	resolver *conflict.Resolver
}

// New creates an undo Engine on fs
func New(fs afero.Fs) *Engine {
	return &Engine{
		fs:       fs,
		history:  history.NewStore(fs),
		resolver: conflict.New(fs),
	}
}

// Undo reverses dir's recorded moves, last move first.
//
// A missing or unreadable history fails before anything is touched. A
// file no longer at its recorded destination is skipped. A file sitting
// at an original location is moved aside first, never overwritten. When
// every operation was restored or skipped the history is removed;
// otherwise it is rewritten to hold only the operations still to undo.
// Category directories are left in place even when empty.
func (e *Engine) Undo(ctx context.Context, dir string) (*types.UndoReport, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, serr.NewFileError("invalid target directory", dir, serr.InvalidPath, err)
	}
	if ok, err := afero.DirExists(e.fs, abs); err != nil || !ok {
		return nil, serr.NewFileError("target directory does not exist", abs, serr.ScanFailed, err)
	}

	rec, err := e.history.Load(abs)
	if err != nil {
		return nil, err
	}
	logger := log.LogWithFields(log.F("directory", abs), log.F("id", rec.ID))
	logger.Debugf("Undoing %d operations", len(rec.Operations))

	report := &types.UndoReport{}
	var pending []types.MoveOperation // still to undo, newest first
	var runErr error

	for i := len(rec.Operations) - 1; i >= 0; i-- {
		if cerr := ctx.Err(); cerr != nil {
			for j := i; j >= 0; j-- {
				pending = append(pending, rec.Operations[j])
			}
			runErr = serr.Wrapf(cerr, "undo interrupted with %d operations left", i+1)
			break
		}

		op := rec.Operations[i]
		if issue, skipped := e.restore(op, report); issue != nil {
			if skipped {
				report.Skipped = append(report.Skipped, *issue)
				continue
			}
			report.Failed = append(report.Failed, *issue)
			pending = append(pending, op)
			continue
		}
		report.Restored = append(report.Restored, op)
	}

	if err := e.finish(abs, rec, pending); err != nil && runErr == nil {
		runErr = err
	}

	logger.Infof("Restored %d files, skipped %d, failed %d", len(report.Restored), len(report.Skipped), len(report.Failed))
	return report, runErr
}

// restore moves one file back. It returns the issue that prevented it
// and whether that issue is a skip rather than a failure.
func (e *Engine) restore(op types.MoveOperation, report *types.UndoReport) (*types.UndoIssue, bool) {
	present, err := conflict.Exists(e.fs, op.DestinationPath)
	if err != nil {
		return &types.UndoIssue{Operation: op, Path: op.DestinationPath, Reason: err.Error()}, false
	}
	if !present {
		log.LogWithFields(log.F("path", op.DestinationPath)).Warn("File no longer at recorded location, skipping")
		return &types.UndoIssue{Operation: op, Path: op.DestinationPath, Reason: "file not found at recorded destination"}, true
	}

	if err := e.fs.MkdirAll(filepath.Dir(op.SourcePath), 0755); err != nil {
		return &types.UndoIssue{Operation: op, Path: op.SourcePath, Reason: "could not recreate parent directory: " + err.Error()}, false
	}

	occupied, err := conflict.Exists(e.fs, op.SourcePath)
	if err != nil {
		return &types.UndoIssue{Operation: op, Path: op.SourcePath, Reason: err.Error()}, false
	}
	if occupied {
		aside, err := e.resolver.ResolveAt(op.SourcePath, e.modTime(op.SourcePath), nil)
		if err != nil {
			return &types.UndoIssue{Operation: op, Path: op.SourcePath, Reason: err.Error()}, false
		}
		if err := e.fs.Rename(op.SourcePath, aside); err != nil {
			return &types.UndoIssue{Operation: op, Path: op.SourcePath, Reason: "could not move conflicting file aside: " + err.Error()}, false
		}
		log.LogWithFields(log.F("path", op.SourcePath), log.F("moved_to", aside)).Warn("Original location occupied, moved existing file aside")
		report.MovedAside = append(report.MovedAside, types.UndoIssue{Operation: op, Path: aside, Reason: "original location was occupied"})
	}

	if err := e.fs.Rename(op.DestinationPath, op.SourcePath); err != nil {
		return &types.UndoIssue{Operation: op, Path: op.DestinationPath, Reason: "failed to restore file: " + err.Error()}, false
	}
	log.LogWithFields(log.F("from", op.DestinationPath), log.F("to", op.SourcePath)).Debug("Restored")
	return nil, false
}

// modTime returns the modification time of the file at path, or the zero
// time when it cannot be read.
func (e *Engine) modTime(path string) time.Time {
	info, err := e.fs.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// finish consumes the history, or narrows it to the operations left.
func (e *Engine) finish(dir string, rec *history.Record, pending []types.MoveOperation) error {
	if len(pending) == 0 {
		return e.history.Remove(dir)
	}

	// back to recorded order
	ops := make([]types.MoveOperation, len(pending))
	for i, op := range pending {
		ops[len(pending)-1-i] = op
	}
	rec.Operations = ops
	if err := e.history.Save(dir, rec); err != nil {
		return err
	}
	log.LogWithFields(log.F("path", history.Path(dir)), log.F("operations", len(ops))).Warn("History kept for operations that could not be undone")
	return nil
}
