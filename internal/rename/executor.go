package rename

import (
	"fmt"
	"os"
	"path/filepath"
)

// Status is the outcome of one file in a rename run.
type Status string

const (
	StatusRenamed         Status = "renamed"
	StatusFailed          Status = "failed"
	StatusSkippedNoMatch  Status = "skipped-no-match"
	StatusSkippedConflict Status = "skipped-conflict"
	StatusPlanned         Status = "planned" // preview only
)

// Outcome records what happened to one file.
type Outcome struct {
	Entry  Entry
	Status Status
	Detail string
}

// Report is the line-oriented log of a rename run plus its tallies.
type Report struct {
	Preview   bool
	Lines     []string
	Outcomes  []Outcome
	Succeeded int
	Failed    int
	Rejected  int
	Skipped   int
}

func (r *Report) logf(format string, args ...any) {
	r.Lines = append(r.Lines, fmt.Sprintf(format, args...))
}

// Summary returns the final line of the report.
func (r *Report) Summary() string {
	if len(r.Lines) == 0 {
		return ""
	}
	return r.Lines[len(r.Lines)-1]
}

// Execute applies or previews plan. With preview set the filesystem is not touched.
// A failed rename is logged and the remaining entries are still processed.
func Execute(plan *Plan, preview bool) *Report {
	report := &Report{Preview: preview}

	if plan.Scanned == 0 {
		report.logf("[INFO] no files in %s", plan.Folder)
	}

	for _, name := range plan.NoMatch {
		report.Skipped++
		report.Outcomes = append(report.Outcomes, Outcome{
			Entry:  Entry{Source: filepath.Join(plan.Folder, name)},
			Status: StatusSkippedNoMatch,
			Detail: "no rule matched",
		})
		report.logf("[SKIP] no rule matched: %s", name)
	}

	for _, rej := range plan.Rejections {
		report.Rejected++
		report.Outcomes = append(report.Outcomes, Outcome{
			Entry:  rej.Entry,
			Status: StatusSkippedConflict,
			Detail: rej.Reason(),
		})
		report.logf("[CONFLICT] %s", rej)
	}

	if preview {
		if len(plan.Entries) > 0 {
			report.logf("[PREVIEW] the following files would be renamed:")
		}
		for _, e := range plan.Entries {
			report.Outcomes = append(report.Outcomes, Outcome{Entry: e, Status: StatusPlanned})
			report.logf("%s -> %s", filepath.Base(e.Source), filepath.Base(e.Destination))
		}
		report.logf("[SUMMARY] %d to rename, %d rejected, %d skipped (preview, nothing changed)",
			len(plan.Entries), report.Rejected, report.Skipped)
		return report
	}

	for _, e := range plan.Entries {
		oldName, newName := filepath.Base(e.Source), filepath.Base(e.Destination)
		if err := os.Rename(e.Source, e.Destination); err != nil {
			report.Failed++
			report.Outcomes = append(report.Outcomes, Outcome{Entry: e, Status: StatusFailed, Detail: err.Error()})
			report.logf("[FAILED] %s -> %s: %v", oldName, newName, err)
			continue
		}
		report.Succeeded++
		report.Outcomes = append(report.Outcomes, Outcome{Entry: e, Status: StatusRenamed})
		report.logf("[RENAMED] %s -> %s", oldName, newName)
	}

	report.logf("[SUMMARY] %d renamed, %d failed, %d rejected, %d skipped",
		report.Succeeded, report.Failed, report.Rejected, report.Skipped)
	return report
}
