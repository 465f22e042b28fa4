package maintenance

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MoveOptions configures MoveKeywordFiles.
type MoveOptions struct {
	Root         string
	Keyword      string
	Target       string
	CreateTarget bool
	Recursive    bool
	Preview      bool
	// Mode is applied to every moved file and to Target after a move. Zero
	// leaves permissions alone.
	Mode os.FileMode
}

type moveCandidate struct {
	src, dst string
}

// MoveKeywordFiles gathers the files of every folder whose name contains the
// keyword into the target folder. Non-recursive runs look at the first-level
// subfolders of Root only; recursive runs look at every directory under Root,
// Root included. Files are never overwritten.
func MoveKeywordFiles(opts MoveOptions) (*Report, error) {
	if strings.TrimSpace(opts.Keyword) == "" {
		return nil, fmt.Errorf("%w: keyword is required", ErrInvalidInput)
	}
	if strings.TrimSpace(opts.Target) == "" {
		return nil, fmt.Errorf("%w: target folder is required", ErrInvalidInput)
	}

	report := &Report{Preview: opts.Preview}
	entries, err := readRoot(opts.Root)
	if err != nil {
		report.logf("[ERROR] %v", err)
		return report, err
	}

	folders, seen, err := keywordFolders(opts.Root, opts.Keyword, opts.Recursive, entries)
	if err != nil {
		report.logf("[ERROR] %v", err)
		return report, err
	}
	if len(folders) == 0 {
		report.logf("[INFO] no folder name contains %q", opts.Keyword)
		if name, ok := closestName(opts.Keyword, seen); ok {
			report.logf("[HINT] closest folder name: %s", name)
		}
		report.logf("[SUMMARY] 0 files matched")
		return report, nil
	}

	target := filepath.Clean(opts.Target)
	candidates, err := collectFiles(folders, target, report)
	if err != nil {
		report.logf("[ERROR] %v", err)
		return report, err
	}

	if opts.Preview {
		claimed := make(map[string]bool, len(candidates))
		for _, c := range candidates {
			if _, err := os.Lstat(c.dst); err == nil || claimed[c.dst] {
				report.logf("[CONFLICT] %s -> %s: %v", c.src, c.dst, ErrDestinationExists)
				report.Failed++
				continue
			}
			claimed[c.dst] = true
			report.logf("[PREVIEW] %s -> %s", c.src, c.dst)
			report.Succeeded++
		}
		report.logf("[SUMMARY] %d would move, %d would fail, %d skipped (preview, nothing changed)",
			report.Succeeded, report.Failed, report.Skipped)
		return report, nil
	}

	if err := ensureTarget(target, opts.CreateTarget, report); err != nil {
		return report, err
	}

	for _, c := range candidates {
		if err := moveFile(c.src, c.dst); err != nil {
			report.logf("[FAILED] %s -> %s: %v", c.src, c.dst, err)
			report.Failed++
			continue
		}
		report.logf("[MOVED] %s -> %s", c.src, c.dst)
		report.Succeeded++
		if opts.Mode != 0 {
			if err := os.Chmod(c.dst, opts.Mode); err != nil {
				report.logf("[WARN] chmod %s: %v", c.dst, err)
			}
		}
	}
	if opts.Mode != 0 && report.Succeeded > 0 {
		if err := os.Chmod(target, opts.Mode|os.ModeDir); err != nil {
			report.logf("[WARN] chmod %s: %v", target, err)
		}
	}

	report.logf("[SUMMARY] %d moved, %d failed, %d skipped", report.Succeeded, report.Failed, report.Skipped)
	return report, nil
}

// keywordFolders returns the folders whose base name contains keyword together
// with every folder name that was considered.
func keywordFolders(root, keyword string, recursive bool, entries []os.DirEntry) ([]string, []string, error) {
	var folders, seen []string
	if !recursive {
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			seen = append(seen, e.Name())
			if containsKeyword(e.Name(), keyword) {
				folders = append(folders, filepath.Join(root, e.Name()))
			}
		}
		return folders, seen, nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // unreadable subtree
		}
		if !d.IsDir() {
			return nil
		}
		name := filepath.Base(path)
		if path != root {
			seen = append(seen, name)
		}
		if containsKeyword(name, keyword) {
			folders = append(folders, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return folders, seen, nil
}

// collectFiles lists the regular files directly inside each folder. Files that
// already live in target are skipped.
func collectFiles(folders []string, target string, report *Report) ([]moveCandidate, error) {
	var out []moveCandidate
	for _, folder := range folders {
		entries, err := os.ReadDir(folder)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", folder, err)
		}
		inTarget := filepath.Clean(folder) == target
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			src := filepath.Join(folder, e.Name())
			if inTarget {
				report.logf("[SKIP] already in target: %s", src)
				report.Skipped++
				continue
			}
			out = append(out, moveCandidate{src: src, dst: filepath.Join(target, e.Name())})
		}
	}
	return out, nil
}

func ensureTarget(target string, create bool, report *Report) error {
	info, err := os.Stat(target)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		err = fmt.Errorf("%w: target %s is not a folder", ErrInvalidInput, target)
		report.logf("[ERROR] %v", err)
		return err
	case !errors.Is(err, fs.ErrNotExist):
		report.logf("[ERROR] stat target folder: %v", err)
		return err
	case !create:
		err = fmt.Errorf("%w: target %s", ErrNotFound, target)
		report.logf("[ERROR] %v", err)
		return err
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		report.logf("[ERROR] create target folder: %v", err)
		return fmt.Errorf("create target folder: %w", err)
	}
	report.logf("[INFO] created target folder: %s", target)
	return nil
}
