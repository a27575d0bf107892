// Package analysis detects file content types from their leading bytes.
package analysis

import (
	"context"
	"errors"
	"io"

	"github.com/h2non/filetype"
	"github.com/panjf2000/ants/v2"
	"github.com/spf13/afero"

	serr "dirtidy/internal/errors"
	log "dirtidy/internal/log"
)

// HeaderSize is how many leading bytes are inspected.
const HeaderSize = 8192

// DefaultWorkers bounds concurrent detection when the caller gives no size.
const DefaultWorkers = 8

// Detector reports the MIME type of a file. ok is false when the type
// cannot be determined: empty, unreadable or unrecognized content.
type Detector interface {
	Detect(path string) (mime string, ok bool)
}

// Engine detects MIME types with magic-number matching.
type Engine struct {
	Fs afero.Fs
}

var _ Detector = (*Engine)(nil)

// New creates an Engine reading through fs
func New(fs afero.Fs) *Engine {
	return &Engine{Fs: fs}
}

// Detect reads the file header and matches it against known signatures.
// Failures are logged at debug level and reported as unknown.
func (e *Engine) Detect(path string) (string, bool) {
	head, err := e.readHeader(path)
	if err != nil {
		log.LogWithError(err).Debug("Content detection skipped")
		return "", false
	}
	if len(head) == 0 {
		return "", false
	}

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		log.LogWithFields(log.F("path", path)).Debug("Content type not recognized")
		return "", false
	}
	return kind.MIME.Value, true
}

func (e *Engine) readHeader(path string) ([]byte, error) {
	file, err := e.Fs.Open(path)
	if err != nil {
		return nil, serr.NewFileError("failed to open file", path, serr.FileAccessDenied, err)
	}
	defer file.Close()

	buf := make([]byte, HeaderSize)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, serr.NewFileError("failed to read file", path, serr.FileAccessDenied, err)
	}
	return buf[:n], nil
}

// Result is the detection outcome for one path.
type Result struct {
	Path string
	MIME string
	OK   bool
}

// DetectAll runs d over paths on a bounded goroutine pool. Results come
// back in input order. Paths not reached before ctx is done are reported
// as unknown.
func DetectAll(ctx context.Context, d Detector, paths []string, workers int) ([]Result, error) {
	results := make([]Result, len(paths))
	for i, p := range paths {
		results[i].Path = p
	}
	if len(paths) == 0 {
		return results, nil
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	done := make(chan struct{}, len(paths))
	pool, err := ants.NewPoolWithFunc(workers, func(arg interface{}) {
		defer func() { done <- struct{}{} }()
		i := arg.(int)
		if ctx.Err() != nil {
			return
		}
		// each worker writes only its own slot
		results[i].MIME, results[i].OK = d.Detect(paths[i])
	})
	if err != nil {
		return nil, serr.Wrap(err, "failed to create detection pool")
	}
	defer pool.Release()

	submitted := 0
	for i := range paths {
		if ctx.Err() != nil {
			break
		}
		if err := pool.Invoke(i); err != nil {
			log.LogWithError(err).Warn("Detection task rejected")
			break
		}
		submitted++
	}
	for ; submitted > 0; submitted-- {
		<-done
	}

	log.LogWithFields(log.F("files", len(paths)), log.F("workers", workers)).Debug("Content detection finished")
	return results, ctx.Err()
}
