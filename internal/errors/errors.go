// Package errors provides the error taxonomy used across dirtidy.
// It defines error kinds, typed errors that carry the path or config
// parameter they concern, and helpers for classifying errors returned
// by the organize and undo engines.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package functions re-exported for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// File error kinds
	FileNotFound
	FileAccessDenied
	InvalidPath
	// Config error kinds
	InvalidConfig
	ConfigNotFound
	// Organize error kinds
	ScanFailed
	MoveFailed
	CollisionExhausted
	// History error kinds
	NoHistory
	CorruptHistory
	PersistFailed
)

var kindNames = map[ErrorKind]string{
	Unknown:            "unknown",
	FileNotFound:       "file_not_found",
	FileAccessDenied:   "file_access_denied",
	InvalidPath:        "invalid_path",
	InvalidConfig:      "invalid_config",
	ConfigNotFound:     "config_not_found",
	ScanFailed:         "scan_failed",
	MoveFailed:         "move_failed",
	CollisionExhausted: "collision_exhausted",
	NoHistory:          "no_history",
	CorruptHistory:     "corrupt_history",
	PersistFailed:      "persist_failed",
}

// String returns the snake_case name of the kind
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinel errors usable with errors.Is; matching is by kind
var (
	ErrNoHistory      = NewHistoryError("no previous organization found to undo", "", NoHistory, nil)
	ErrCorruptHistory = NewHistoryError("history file is corrupt", "", CorruptHistory, nil)
	ErrInvalidConfig  = NewConfigError("invalid configuration", "", InvalidConfig, nil)
)

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// Is matches any kinded error of the same, non-unknown kind.
func (e *ApplicationError) Is(target error) bool {
	k, ok := target.(interface{ Kind() ErrorKind })
	if !ok || e.kind == Unknown {
		return false
	}
	return k.Kind() == e.kind
}

// FileError represents errors related to file operations
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{msg: msg, err: err, kind: kind},
		path:             path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{msg: msg, err: err, kind: kind},
		param:            param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// HistoryError represents errors reading, writing or interpreting the
// history file of a target directory.
type HistoryError struct {
	ApplicationError
	path string
}

// NewHistoryError creates a new history error
func NewHistoryError(msg string, path string, kind ErrorKind, err error) *HistoryError {
	return &HistoryError{
		ApplicationError: ApplicationError{msg: msg, err: err, kind: kind},
		path:             path,
	}
}

// Error returns the history error message
func (e *HistoryError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the history file path associated with the error
func (e *HistoryError) Path() string {
	return e.path
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{msg: msg, kind: Unknown}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{msg: fmt.Sprintf(format, args...), kind: Unknown}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{msg: msg, err: err, kind: Unknown}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{msg: fmt.Sprintf(format, args...), err: err, kind: Unknown}
}

// KindOf returns the first known kind in err's chain. Wrappers created
// by Wrap and Wrapf carry no kind of their own and are looked through.
func KindOf(err error) ErrorKind {
	for err != nil {
		if k, ok := err.(interface{ Kind() ErrorKind }); ok && k.Kind() != Unknown {
			return k.Kind()
		}
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				if kind := KindOf(e); kind != Unknown {
					return kind
				}
			}
			return Unknown
		}
		err = errors.Unwrap(err)
	}
	return Unknown
}

// IsFileNotFound checks if the error is a file not found error
func IsFileNotFound(err error) bool {
	return KindOf(err) == FileNotFound
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	return KindOf(err) == InvalidConfig
}

// IsConfigNotFound checks if an explicitly requested config file was missing
func IsConfigNotFound(err error) bool {
	return KindOf(err) == ConfigNotFound
}

// IsNoHistory checks if undo found no history file
func IsNoHistory(err error) bool {
	return errors.Is(err, ErrNoHistory)
}

// IsCorruptHistory checks if the history file could not be interpreted
func IsCorruptHistory(err error) bool {
	return errors.Is(err, ErrCorruptHistory)
}

// IsPersistFailed checks if writing the history file failed
func IsPersistFailed(err error) bool {
	return KindOf(err) == PersistFailed
}
