package maintenance

import (
	"fmt"
	"path/filepath"
	"strings"
)

// CheckPath ensures path lies inside one of the allowed roots. An empty
// allow-list permits every path.
func CheckPath(path string, allowedRoots []string) error {
	if len(allowedRoots) == 0 {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPathNotAllowed, path)
	}
	for _, root := range allowedRoots {
		if within(abs, root) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrPathNotAllowed, path)
}

// within reports whether path is root or below it. Both are cleaned first so
// ".." components cannot escape.
func within(path, root string) bool {
	cleanPath := filepath.Clean(path)
	cleanRoot := filepath.Clean(root)
	if cleanPath == cleanRoot {
		return true
	}
	prefix := cleanRoot
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(cleanPath, prefix)
}
