package rename

import (
	"fmt"
	"strings"
)

// Options are the inputs of one rename run.
type Options struct {
	Folder         string
	Prefix         string
	CustomPattern  string
	Preview        bool
	AllowOverwrite bool
}

// Run plans and executes one rename call.
//
// The returned report lists, in order: a custom pattern error (if any), no-match skips,
// conflict rejections, the preview listing or per-file results, and a summary line.
// A bad custom pattern is not an error of the run; the default rules still apply.
// A missing folder aborts the run with an error and a report holding only that error.
func Run(opts Options) (*Report, error) {
	if strings.TrimSpace(opts.Folder) == "" {
		return nil, fmt.Errorf("%w: folder path is required", ErrInvalidInput)
	}
	if err := ValidatePrefix(opts.Prefix); err != nil {
		return nil, err
	}

	rules, patternErr := Rules(opts.CustomPattern)

	plan, err := BuildPlan(opts.Folder, opts.Prefix, rules, opts.AllowOverwrite)
	if err != nil {
		return &Report{Preview: opts.Preview, Lines: []string{fmt.Sprintf("[ERROR] %v", err)}}, err
	}

	report := Execute(plan, opts.Preview)
	if patternErr != nil {
		report.Lines = append([]string{fmt.Sprintf("[ERROR] custom pattern ignored: %v", patternErr)}, report.Lines...)
	}
	return report, nil
}

// ValidatePrefix rejects prefixes that would place renamed files outside the
// folder.
func ValidatePrefix(prefix string) error {
	if strings.ContainsAny(prefix, "/\\\x00") {
		return fmt.Errorf("%w: prefix %q contains a path separator or NUL", ErrInvalidInput, prefix)
	}
	return nil
}
