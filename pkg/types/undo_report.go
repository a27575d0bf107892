package types

// UndoIssue describes one operation undo could not restore as recorded.
type UndoIssue struct {
	Operation MoveOperation
	Path      string // the path the issue concerns
	Reason    string
}

// UndoReport is the outcome of reversing a history record
type UndoReport struct {
	Restored   []MoveOperation
	Skipped    []UndoIssue // destination vanished since the organize run
	Failed     []UndoIssue
	MovedAside []UndoIssue // occupants of a source path moved out of the way
}

// Total returns the number of operations processed
func (r *UndoReport) Total() int {
	return len(r.Restored) + len(r.Skipped) + len(r.Failed)
}

// IsCompleteSuccess reports whether every operation was restored
func (r *UndoReport) IsCompleteSuccess() bool {
	return len(r.Skipped) == 0 && len(r.Failed) == 0
}
