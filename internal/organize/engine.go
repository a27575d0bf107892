package organize

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"dirtidy/internal/analysis"
	"dirtidy/internal/category"
	"dirtidy/internal/config"
	"dirtidy/internal/conflict"
	serr "dirtidy/internal/errors"
	"dirtidy/internal/filter"
	"dirtidy/internal/history"
	log "dirtidy/internal/log"
	"dirtidy/pkg/types"
)

// Options control a run
type Options struct {
	DryRun  bool
	Workers int              // concurrent content detection, analysis.DefaultWorkers when zero
	Now     func() time.Time // clock for history timestamps
}

// Engine sorts the files of one directory into category subdirectories.
type Engine struct {
	fs       afero.Fs
	rules    *filter.Engine
	detector analysis.Detector
	resolver *conflict.Resolver
	history  *history.Store
	opts     Options

	mu sync.Mutex // serializes destination checks with the move that relies on them
}

// New creates an Engine. A nil rules engine includes every non-hidden
// file.
func New(fs afero.Fs, rules *filter.Engine, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if rules == nil {
		rules, _ = filter.New(config.FilterConfig{})
	}
	resolver := conflict.New(fs)
	resolver.Now = opts.Now
	return &Engine{
		fs:       fs,
		rules:    rules,
		detector: analysis.New(fs),
		resolver: resolver,
		history:  history.NewStore(fs),
		opts:     opts,
	}
}

// SetDetector replaces the content detector
func (e *Engine) SetDetector(d analysis.Detector) {
	e.detector = d
}

// SetDryRun sets whether moves are only planned
func (e *Engine) SetDryRun(dryRun bool) {
	e.opts.DryRun = dryRun
}

// IsDryRun returns the current dry run setting
func (e *Engine) IsDryRun() bool {
	return e.opts.DryRun
}

// Organize scans dir, plans a move for every included file and, unless
// this is a dry run, applies the plan and records it for undo.
//
// Problems with single files are collected in the result and do not stop
// the run. The returned error is set only for conditions that affect the
// run as a whole: an unreadable directory, cancellation, or a history
// file that could not be written. In the last two cases the result still
// describes what was done.
func (e *Engine) Organize(ctx context.Context, dir string) (*types.OrganizeResult, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, serr.NewFileError("invalid target directory", dir, serr.InvalidPath, err)
	}
	logger := log.LogWithFields(log.F("directory", abs), log.F("dry_run", e.opts.DryRun))

	result := &types.OrganizeResult{TargetDir: abs, DryRun: e.opts.DryRun}

	entries, err := e.scan(abs, result)
	if err != nil {
		return nil, err
	}

	mimes, err := e.detect(ctx, entries)
	if err != nil {
		return nil, serr.Wrap(err, "organize interrupted before any file was moved")
	}

	e.plan(abs, entries, mimes, result)
	logger.Debugf("Planned %d moves, excluded %d files", len(result.Planned), len(result.Excluded))

	if e.opts.DryRun {
		return result, nil
	}

	err = e.execute(ctx, abs, result)
	logger.Infof("Moved %d files, %d failed", len(result.Applied), len(result.Failed))
	return result, err
}

// scan lists the direct children of dir that are candidates for moving.
func (e *Engine) scan(dir string, result *types.OrganizeResult) ([]types.FileEntry, error) {
	info, err := e.fs.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, serr.NewFileError("target directory does not exist", dir, serr.ScanFailed, err)
		}
		return nil, serr.NewFileError("cannot access target directory", dir, serr.ScanFailed, err)
	}
	if !info.IsDir() {
		return nil, serr.NewFileError("target is not a directory", dir, serr.ScanFailed, nil)
	}

	infos, err := afero.ReadDir(e.fs, dir)
	if err != nil {
		return nil, serr.NewFileError("failed to read directory", dir, serr.ScanFailed, err)
	}

	var entries []types.FileEntry
	for _, fi := range infos {
		name := fi.Name()
		switch {
		case fi.IsDir():
			// category directories from earlier runs and anything else
			continue
		case !fi.Mode().IsRegular():
			log.LogWithFields(log.F("path", filepath.Join(dir, name))).Debug("Skipping non-regular file")
			continue
		case history.IsHistoryFile(name):
			continue
		}

		entry := types.NewFileEntry(dir, name)
		entry.ModTime = fi.ModTime()
		if d := e.rules.Decide(entry); !d.Included {
			result.Excluded = append(result.Excluded, types.ExcludedFile{Path: entry.Path, Rule: d.String()})
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (e *Engine) detect(ctx context.Context, entries []types.FileEntry) ([]string, error) {
	paths := make([]string, len(entries))
	for i, entry := range entries {
		paths[i] = entry.Path
	}
	results, err := analysis.DetectAll(ctx, e.detector, paths, e.opts.Workers)
	if err != nil {
		return nil, err
	}
	mimes := make([]string, len(results))
	for i, r := range results {
		if r.OK {
			mimes[i] = r.MIME
		}
	}
	return mimes, nil
}

// plan fills result.Planned in scan order. Each destination is reserved
// so two files with the same name never resolve to the same path.
// Alternative names are stamped with the file's modification time, so a
// dry run shows the plan a later run will carry out.
func (e *Engine) plan(dir string, entries []types.FileEntry, mimes []string, result *types.OrganizeResult) {
	reserved := make(map[string]bool, len(entries))
	isReserved := func(p string) bool { return reserved[p] }

	for i, entry := range entries {
		cat := category.Categorize(entry, mimes[i])
		nominal := filepath.Join(dir, cat.DirName(), entry.Name)

		dest, err := e.resolver.ResolveAt(nominal, entry.ModTime, isReserved)
		if err != nil {
			result.Failed = append(result.Failed, types.MoveFailure{SourcePath: entry.Path, DestinationPath: nominal, Error: err})
			continue
		}
		reserved[dest] = true
		result.Planned = append(result.Planned, types.PlannedMove{
			Entry:           entry,
			Category:        cat.DirName(),
			MIME:            mimes[i],
			DestinationPath: dest,
			Renamed:         dest != nominal,
		})
	}
}

// execute applies the plan in order. The applied moves are persisted on
// every exit path, including cancellation.
func (e *Engine) execute(ctx context.Context, dir string, result *types.OrganizeResult) (err error) {
	defer func() {
		if perr := e.persist(dir, result); perr != nil {
			result.PersistErr = perr
			if err == nil {
				err = perr
			}
		}
	}()

	reserved := make(map[string]bool, len(result.Planned))
	for _, p := range result.Planned {
		reserved[p.DestinationPath] = true
	}

	for _, p := range result.Planned {
		if cerr := ctx.Err(); cerr != nil {
			return serr.Wrapf(cerr, "organize interrupted after %d of %d moves", len(result.Applied), len(result.Planned))
		}

		op, merr := e.apply(p, reserved)
		if merr != nil {
			log.LogWithError(merr).Warn("Move failed")
			result.Failed = append(result.Failed, types.MoveFailure{SourcePath: p.Entry.Path, DestinationPath: p.DestinationPath, Error: merr})
			continue
		}
		result.Applied = append(result.Applied, op)
	}
	return nil
}

// apply performs one move. The destination is checked again right
// before the rename because it may have been created since planning,
// and the rename would replace it.
func (e *Engine) apply(p types.PlannedMove, reserved map[string]bool) (types.MoveOperation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	src := p.Entry.Path
	if err := e.fs.MkdirAll(filepath.Dir(p.DestinationPath), 0755); err != nil {
		return types.MoveOperation{}, serr.NewFileError("failed to create category directory", filepath.Dir(p.DestinationPath), serr.MoveFailed, err)
	}

	dest := p.DestinationPath
	taken, err := conflict.Exists(e.fs, dest)
	if err != nil {
		return types.MoveOperation{}, err
	}
	if taken {
		dest, err = e.resolver.ResolveAt(dest, p.Entry.ModTime, func(s string) bool { return reserved[s] })
		if err != nil {
			return types.MoveOperation{}, err
		}
		reserved[dest] = true
		log.LogWithFields(log.F("path", p.DestinationPath), log.F("resolved", dest)).Warn("Destination appeared after planning, using alternative name")
	}

	if err := e.fs.Rename(src, dest); err != nil {
		return types.MoveOperation{}, serr.NewFileError("failed to move file", src, serr.MoveFailed, err)
	}

	log.LogWithFields(log.F("from", src), log.F("to", dest)).Debug("Moved")
	return types.MoveOperation{
		SourcePath:      src,
		DestinationPath: dest,
		Category:        p.Category,
		Timestamp:       e.opts.Now().UTC(),
	}, nil
}

// persist writes the applied moves as dir's history. A run that moved
// nothing leaves any existing history alone.
func (e *Engine) persist(dir string, result *types.OrganizeResult) error {
	if len(result.Applied) == 0 {
		return nil
	}

	switch prev, err := e.history.Load(dir); {
	case err == nil:
		log.LogWithFields(log.F("id", prev.ID), log.F("operations", len(prev.Operations))).
			Warn("Replacing history of a previous run that was not undone")
	case serr.IsCorruptHistory(err):
		log.LogWithFields(log.F("path", history.Path(dir))).Warn("Replacing unreadable history file")
	}

	rec := history.NewRecord(dir, result.Applied, e.opts.Now())
	if err := e.history.Save(dir, rec); err != nil {
		return err
	}
	result.HistoryPath = history.Path(dir)
	return nil
}
