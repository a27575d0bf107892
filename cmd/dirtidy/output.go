package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"dirtidy/internal/category"
	"dirtidy/internal/history"
	"dirtidy/pkg/types"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4F4FB7"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AF00"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D08770"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#959595"))
)

// rel shortens path for display; paths outside base stay absolute.
func rel(base, path string) string {
	if r, err := filepath.Rel(base, path); err == nil && !strings.HasPrefix(r, "..") {
		return r
	}
	return path
}

func printOrganizeResult(w io.Writer, r *types.OrganizeResult) {
	base := r.TargetDir

	if r.DryRun {
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Dry run: %d files would be moved in %s", len(r.Planned), base)))
		for _, p := range r.Planned {
			line := fmt.Sprintf("  %s -> %s", rel(base, p.Entry.Path), rel(base, p.DestinationPath))
			if c, ok := category.FromDirName(p.Category); ok {
				line += mutedStyle.Render(" [" + c.Description() + "]")
			}
			if p.Renamed {
				line += mutedStyle.Render(" (renamed)")
			}
			fmt.Fprintln(w, line)
		}
	} else if len(r.Applied) == 0 && len(r.Failed) == 0 {
		fmt.Fprintln(w, titleStyle.Render("No files to organize in "+base))
	} else {
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Moved %d files in %s", len(r.Applied), base)))
		for _, op := range r.Applied {
			fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("  %s -> %s", rel(base, op.SourcePath), rel(base, op.DestinationPath))))
		}
	}

	if r.HasFailures() {
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("Failed (%d):", len(r.Failed))))
		for _, f := range r.Failed {
			fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("  %s: %s", rel(base, f.SourcePath), f.Reason())))
		}
	}

	if len(r.Excluded) > 0 {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Excluded (%d):", len(r.Excluded))))
		for _, ex := range r.Excluded {
			fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("  %s (%s)", rel(base, ex.Path), ex.Rule)))
		}
	}

	switch {
	case r.PersistErr != nil:
		fmt.Fprintln(w, errorStyle.Render("History could not be saved, this run cannot be undone: "+r.PersistErr.Error()))
	case r.HistoryPath != "":
		fmt.Fprintln(w, mutedStyle.Render("Run again with --undo to revert."))
	}
}

// printHistoryNote tells a dry-run user what the real run would do to an
// existing history file.
func printHistoryNote(w io.Writer, state history.State) {
	switch state {
	case history.Present:
		fmt.Fprintln(w, warnStyle.Render("The previous run has not been undone; running now replaces its history."))
	case history.Corrupt:
		fmt.Fprintln(w, warnStyle.Render("The existing history file is unreadable; running now replaces it."))
	}
}

func printUndoReport(w io.Writer, targetDir string, r *types.UndoReport) {
	base, err := filepath.Abs(targetDir)
	if err != nil {
		base = targetDir
	}

	title := titleStyle
	if !r.IsCompleteSuccess() {
		title = warnStyle.Bold(true)
	}
	fmt.Fprintln(w, title.Render(fmt.Sprintf("Restored %d of %d files in %s", len(r.Restored), r.Total(), base)))
	for _, op := range r.Restored {
		fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("  %s -> %s", rel(base, op.DestinationPath), rel(base, op.SourcePath))))
	}

	if len(r.MovedAside) > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("Moved aside (%d):", len(r.MovedAside))))
		for _, m := range r.MovedAside {
			fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("  %s -> %s", rel(base, m.Operation.SourcePath), rel(base, m.Path))))
		}
	}

	if len(r.Skipped) > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("Skipped (%d):", len(r.Skipped))))
		for _, s := range r.Skipped {
			fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("  %s: %s", rel(base, s.Path), s.Reason)))
		}
	}

	if len(r.Failed) > 0 {
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("Failed (%d):", len(r.Failed))))
		for _, f := range r.Failed {
			fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("  %s: %s", rel(base, f.Path), f.Reason)))
		}
		fmt.Fprintln(w, mutedStyle.Render("The failed operations were kept; run --undo again to retry them."))
	}
}
