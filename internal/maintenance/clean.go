package maintenance

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DeleteOptions configures DeleteEmptyKeywordFolders.
type DeleteOptions struct {
	Root      string
	Keyword   string
	Recursive bool
	Preview   bool
}

// DeleteEmptyKeywordFolders removes empty folders whose name contains the
// keyword. Recursive runs visit every directory below Root, deepest first, so
// a parent emptied by the removal of its children is removed too. Root itself
// is never removed.
func DeleteEmptyKeywordFolders(opts DeleteOptions) (*Report, error) {
	if strings.TrimSpace(opts.Keyword) == "" {
		return nil, fmt.Errorf("%w: keyword is required", ErrInvalidInput)
	}

	report := &Report{Preview: opts.Preview}
	entries, err := readRoot(opts.Root)
	if err != nil {
		report.logf("[ERROR] %v", err)
		return report, err
	}

	folders, err := deleteCandidates(opts.Root, opts.Keyword, opts.Recursive, entries)
	if err != nil {
		report.logf("[ERROR] %v", err)
		return report, err
	}
	if len(folders) == 0 {
		report.logf("[INFO] no folder name contains %q", opts.Keyword)
	}

	removed := make(map[string]bool)
	for _, folder := range folders {
		empty, err := isEmpty(folder, removed)
		if err != nil {
			report.logf("[FAILED] %s: %v", folder, err)
			report.Failed++
			continue
		}
		if !empty {
			report.logf("[SKIP] folder not empty: %s", folder)
			report.Skipped++
			continue
		}
		if opts.Preview {
			report.logf("[PREVIEW] delete empty folder: %s", folder)
			removed[folder] = true
			report.Succeeded++
			continue
		}
		if err := os.Remove(folder); err != nil {
			report.logf("[FAILED] %s: %v", folder, err)
			report.Failed++
			continue
		}
		report.logf("[DELETED] %s", folder)
		removed[folder] = true
		report.Succeeded++
	}

	if opts.Preview {
		report.logf("[SUMMARY] %d would be deleted, %d skipped (preview, nothing changed)", report.Succeeded, report.Skipped)
	} else {
		report.logf("[SUMMARY] %d deleted, %d failed, %d skipped", report.Succeeded, report.Failed, report.Skipped)
	}
	return report, nil
}

func deleteCandidates(root, keyword string, recursive bool, entries []os.DirEntry) ([]string, error) {
	var folders []string
	if !recursive {
		for _, e := range entries {
			if e.IsDir() && containsKeyword(e.Name(), keyword) {
				folders = append(folders, filepath.Join(root, e.Name()))
			}
		}
		return folders, nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if path != root && d.IsDir() && containsKeyword(d.Name(), keyword) {
			folders = append(folders, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sortDeepestFirst(root, folders)
	return folders, nil
}

// isEmpty reports whether dir has no entries other than folders already in
// removed.
func isEmpty(dir string, removed map[string]bool) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if !e.IsDir() || !removed[filepath.Join(dir, e.Name())] {
			return false, nil
		}
	}
	return true, nil
}
