package rename

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Entry is one accepted rename.
type Entry struct {
	Source      string
	Destination string
}

// Rejection is a rename the planner refused because of a naming conflict.
type Rejection struct {
	Entry
	Err error // ErrDuplicateTarget or ErrTargetExists
}

// Reason is the human-readable cause of the rejection.
func (r Rejection) Reason() string {
	switch {
	case errors.Is(r.Err, ErrDuplicateTarget):
		return "duplicate target within plan"
	case errors.Is(r.Err, ErrTargetExists):
		return "target already exists"
	default:
		return r.Err.Error()
	}
}

func (r Rejection) String() string {
	return fmt.Sprintf("%s -> %s: %s", filepath.Base(r.Source), filepath.Base(r.Destination), r.Reason())
}

// Plan is the conflict-checked result of planning one folder.
type Plan struct {
	Folder     string
	Scanned    int      // regular files considered
	Entries    []Entry  // accepted, in name order
	NoMatch    []string // names no rule matched
	Rejections []Rejection
}

// BuildPlan computes the renames for the regular files directly inside folder.
// Files are visited in lexicographic order; the destination name is
// prefix + extracted suffix + original extension. It only reads the filesystem.
func BuildPlan(folder, prefix string, rules []Rule, allowOverwrite bool) (*Plan, error) {
	info, err := os.Stat(folder)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w: %s", ErrNotADirectory, ErrNotFound, folder)
		}
		return nil, fmt.Errorf("stat folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, folder)
	}

	names, err := regularFiles(folder)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Folder: folder, Scanned: len(names)}
	claimed := make(map[string]struct{}, len(names))

	for _, name := range names {
		suffix, ok := Match(name, rules)
		if !ok {
			plan.NoMatch = append(plan.NoMatch, name)
			continue
		}

		newName := prefix + suffix + extension(name)
		entry := Entry{
			Source:      filepath.Join(folder, name),
			Destination: filepath.Join(folder, newName),
		}

		if _, dup := claimed[newName]; dup {
			plan.Rejections = append(plan.Rejections, Rejection{Entry: entry, Err: ErrDuplicateTarget})
			continue
		}
		if !allowOverwrite && !samePath(entry.Source, entry.Destination) && exists(entry.Destination) {
			plan.Rejections = append(plan.Rejections, Rejection{Entry: entry, Err: ErrTargetExists})
			continue
		}

		claimed[newName] = struct{}{}
		plan.Entries = append(plan.Entries, entry)
	}

	return plan, nil
}

// regularFiles lists the names of regular files in dir, sorted. Symlinks count when
// they resolve to a regular file.
func regularFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read folder: %w", err)
	}

	var names []string
	for _, e := range entries {
		switch {
		case e.Type().IsRegular():
			names = append(names, e.Name())
		case e.Type()&fs.ModeSymlink != 0:
			info, err := os.Stat(filepath.Join(dir, e.Name()))
			if err == nil && info.Mode().IsRegular() {
				names = append(names, e.Name())
			}
		}
	}
	return names, nil
}

// extension returns the suffix starting at the last dot. Leading dots belong to the
// name, so ".bashrc" has no extension.
func extension(name string) string {
	trimmed := strings.TrimLeft(name, ".")
	return filepath.Ext(trimmed)
}

// samePath compares two paths case-insensitively.
func samePath(a, b string) bool {
	return strings.EqualFold(filepath.Clean(a), filepath.Clean(b))
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
