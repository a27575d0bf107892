package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())

	err = Newf("formatted %s", "error")
	assert.Equal(t, "formatted error", err.Error())

	var appErr *ApplicationError
	assert.True(t, As(err, &appErr))
	assert.Equal(t, Unknown, appErr.Kind())
}

func TestWrapping(t *testing.T) {
	origErr := New("original error")
	wrappedErr := Wrap(origErr, "wrapped")
	assert.Equal(t, "wrapped: original error", wrappedErr.Error())
	assert.Equal(t, origErr, Unwrap(wrappedErr))

	wrappedFormatted := Wrapf(origErr, "formatted %s", "wrapper")
	assert.Equal(t, "formatted wrapper: original error", wrappedFormatted.Error())

	// Wrapping nil returns nil
	assert.Nil(t, Wrap(nil, "wrapper"))
	assert.Nil(t, Wrapf(nil, "formatted %s", "wrapper"))

	deepWrapped := Wrap(wrappedErr, "deeper")
	assert.Equal(t, "deeper: wrapped: original error", deepWrapped.Error())
	assert.True(t, Is(deepWrapped, origErr))
}

func TestFileError(t *testing.T) {
	fileErr := NewFileError("cannot access", "/path/to/file", FileAccessDenied, nil)
	assert.Equal(t, "cannot access: /path/to/file", fileErr.Error())
	assert.Equal(t, "/path/to/file", fileErr.Path())
	assert.Equal(t, FileAccessDenied, fileErr.Kind())

	origErr := fmt.Errorf("permission denied")
	fileErr = NewFileError("cannot access", "/path/to/file", FileAccessDenied, origErr)
	assert.Equal(t, "cannot access: /path/to/file: permission denied", fileErr.Error())
	assert.Equal(t, origErr, Unwrap(fileErr))

	notFoundErr := NewFileError("file not found", "/missing/file", FileNotFound, nil)
	assert.True(t, IsFileNotFound(notFoundErr))
	assert.False(t, IsFileNotFound(fileErr))
}

func TestConfigError(t *testing.T) {
	configErr := NewConfigError("invalid glob pattern", "filters.exclude.patterns[0]", InvalidConfig, nil)
	assert.Equal(t, "invalid glob pattern: filters.exclude.patterns[0]", configErr.Error())
	assert.Equal(t, "filters.exclude.patterns[0]", configErr.Param())
	assert.True(t, IsInvalidConfig(configErr))
	assert.True(t, errors.Is(configErr, ErrInvalidConfig))

	notFound := NewConfigError("config file not found", "/etc/dirtidy.toml", ConfigNotFound, nil)
	assert.True(t, IsConfigNotFound(notFound))
	assert.False(t, IsInvalidConfig(notFound))
}

func TestHistoryErrorKinds(t *testing.T) {
	missing := NewHistoryError("no previous organization found to undo", "/tmp/x/.dirtidy_history.json", NoHistory, nil)
	assert.True(t, IsNoHistory(missing))
	assert.False(t, IsCorruptHistory(missing))
	assert.Equal(t, "/tmp/x/.dirtidy_history.json", missing.Path())

	corrupt := NewHistoryError("history file is corrupt", "/tmp/x/.dirtidy_history.json", CorruptHistory, fmt.Errorf("unexpected EOF"))
	wrapped := fmt.Errorf("undo: %w", corrupt)
	assert.True(t, IsCorruptHistory(wrapped))
	assert.False(t, IsNoHistory(wrapped))
	assert.Equal(t, CorruptHistory, KindOf(wrapped))

	persist := NewHistoryError("failed to write history", "/tmp/x/.dirtidy_history.json", PersistFailed, nil)
	assert.True(t, IsPersistFailed(persist))
}

func TestKindOfLooksThroughWrappers(t *testing.T) {
	base := NewHistoryError("failed to replace history", "/t/.dirtidy_history.json", PersistFailed, errors.New("disk full"))

	assert.Equal(t, PersistFailed, KindOf(base))
	assert.Equal(t, PersistFailed, KindOf(Wrap(base, "organize")))
	assert.Equal(t, PersistFailed, KindOf(Wrapf(Wrap(base, "inner"), "outer %d", 2)))
	assert.Equal(t, PersistFailed, KindOf(fmt.Errorf("stdlib: %w", Wrap(base, "inner"))))
	assert.Equal(t, PersistFailed, KindOf(errors.Join(errors.New("other"), Wrap(base, "inner"))))
	assert.True(t, IsPersistFailed(Wrap(base, "organize")))

	assert.Equal(t, Unknown, KindOf(Wrap(errors.New("plain"), "wrapped")))
	assert.Equal(t, Unknown, KindOf(nil))
}

func TestUnknownKindDoesNotMatchByKind(t *testing.T) {
	a := New("a")
	b := New("b")
	assert.False(t, errors.Is(a, b))
	assert.Equal(t, Unknown, KindOf(fmt.Errorf("plain")))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "no_history", NoHistory.String())
	assert.Equal(t, "collision_exhausted", CollisionExhausted.String())
	assert.Equal(t, "kind(99)", ErrorKind(99).String())
}
