package types

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FileEntry is one direct child of the directory being organized.
type FileEntry struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	IsHidden  bool      `json:"is_hidden"`
	Extension string    `json:"extension,omitempty"` // without the dot, original case; empty when the name has none
	ModTime   time.Time `json:"mod_time,omitempty"`
}

// NewFileEntry builds a FileEntry for the file called name inside dir.
// A leading dot marks the entry hidden and never starts an extension,
// so ".bashrc" has no extension while ".config.toml" has "toml".
func NewFileEntry(dir, name string) FileEntry {
	return FileEntry{
		Name:      name,
		Path:      filepath.Join(dir, name),
		IsHidden:  strings.HasPrefix(name, "."),
		Extension: ExtensionOf(name),
	}
}

// ExtensionOf returns the extension of a file name without the dot.
func ExtensionOf(name string) string {
	ext := filepath.Ext(strings.TrimLeft(name, "."))
	return strings.TrimPrefix(ext, ".")
}

// HasExtension reports whether the entry has a non-empty extension
func (e FileEntry) HasExtension() bool {
	return e.Extension != ""
}

// String returns a human-readable representation
func (e FileEntry) String() string {
	if e.IsHidden {
		return fmt.Sprintf("%s (hidden)", e.Path)
	}
	return e.Path
}
