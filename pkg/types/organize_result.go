package types

import "time"

// MoveOperation is one applied move. DestinationPath is the final path
// actually used, after conflict resolution, so undo never re-derives it.
type MoveOperation struct {
	SourcePath      string    `json:"source_path"`
	DestinationPath string    `json:"destination_path"`
	Category        string    `json:"category,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// PlannedMove is a move computed during planning, before execution.
type PlannedMove struct {
	Entry           FileEntry `json:"entry"`
	Category        string    `json:"category"`
	MIME            string    `json:"mime,omitempty"`
	DestinationPath string    `json:"destination_path"`
	Renamed         bool      `json:"renamed"` // destination differs from the nominal one
}

// MoveFailure records a planned move that could not be applied.
type MoveFailure struct {
	SourcePath      string `json:"source_path"`
	DestinationPath string `json:"destination_path"`
	Error           error  `json:"-"`
}

// Reason returns the failure's error text
func (f MoveFailure) Reason() string {
	if f.Error == nil {
		return ""
	}
	return f.Error.Error()
}

// ExcludedFile is an entry dropped by the filter rules.
type ExcludedFile struct {
	Path string `json:"path"`
	Rule string `json:"rule"` // which rule kind excluded it
}

// OrganizeResult holds the outcome of one organize run
type OrganizeResult struct {
	TargetDir   string          `json:"target_dir"`
	DryRun      bool            `json:"dry_run"`
	Planned     []PlannedMove   `json:"planned"`
	Applied     []MoveOperation `json:"applied"`
	Failed      []MoveFailure   `json:"failed"`
	Excluded    []ExcludedFile  `json:"excluded"`
	HistoryPath string          `json:"history_path,omitempty"` // empty when no history was written
	PersistErr  error           `json:"-"`
}

// HasFailures reports whether any planned move failed
func (r *OrganizeResult) HasFailures() bool {
	return len(r.Failed) > 0
}
