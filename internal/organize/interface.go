package organize

import (
	"context"

	"dirtidy/internal/analysis"
	"dirtidy/pkg/types"
)

// Organizer defines the interface for file organization operations
// This allows for dependency injection in tests and other parts of the application
type Organizer interface {
	// SetDryRun sets whether moves are only planned
	SetDryRun(dryRun bool)

	// IsDryRun returns the current dry run setting
	IsDryRun() bool

	// SetDetector replaces the content detector
	SetDetector(d analysis.Detector)

	// Organize sorts the files of one directory into category subdirectories
	Organize(ctx context.Context, dir string) (*types.OrganizeResult, error)
}

// Ensure Engine implements the Organizer interface
var _ Organizer = (*Engine)(nil)
