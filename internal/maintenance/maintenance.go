// Package maintenance implements the folder housekeeping operations: listing
// subfolders, gathering files out of keyword folders and pruning empty ones.
package maintenance

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/unicode/norm"
)

// Report is the log of one maintenance operation.
type Report struct {
	Preview   bool
	Lines     []string
	Succeeded int
	Failed    int
	Skipped   int
}

func (r *Report) logf(format string, args ...any) {
	r.Lines = append(r.Lines, fmt.Sprintf(format, args...))
}

// Summary returns the last line of the report, or "" when there is none.
func (r *Report) Summary() string {
	if len(r.Lines) == 0 {
		return ""
	}
	return r.Lines[len(r.Lines)-1]
}

// ListSubfolders returns the names of the first-level directories in root, sorted.
func ListSubfolders(root string) ([]string, error) {
	entries, err := readRoot(root)
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func readRoot(root string) ([]os.DirEntry, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("%w: root folder is required", ErrInvalidInput)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, root)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", root, err)
	}
	return entries, nil
}

// containsKeyword matches keyword against name after NFC normalization, so
// decomposed names written by macOS clients still match.
func containsKeyword(name, keyword string) bool {
	return strings.Contains(norm.NFC.String(name), norm.NFC.String(keyword))
}

// minHintSimilarity is the Jaro-Winkler score a folder name needs to be
// suggested when no folder contains the keyword.
const minHintSimilarity = 0.8

// closestName returns the candidate most similar to keyword, if any scores at
// least minHintSimilarity.
func closestName(keyword string, candidates []string) (string, bool) {
	best, bestScore := "", float32(0)
	want := strings.ToLower(norm.NFC.String(keyword))
	for _, c := range candidates {
		score := edlib.JaroWinklerSimilarity(want, strings.ToLower(norm.NFC.String(c)))
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore >= minHintSimilarity
}

// depth counts path separators below root.
func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

func sortDeepestFirst(root string, dirs []string) {
	sort.SliceStable(dirs, func(i, j int) bool {
		di, dj := depth(root, dirs[i]), depth(root, dirs[j])
		if di != dj {
			return di > dj
		}
		return dirs[i] < dirs[j]
	})
}
