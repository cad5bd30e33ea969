package registry

import (
	"io/fs"
	"os"
	"path/filepath"
)

// walkDir calls visit for root and every descendant, tolerating a root that
// doesn't exist yet (treated as empty rather than an error) since not every
// configured search root is guaranteed to exist on disk.
func walkDir(root string, visit func(path string, isDir bool)) error {
	if _, err := os.Stat(root); err != nil {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		visit(path, d.IsDir())
		return nil
	})
}

func removeFile(path string) error {
	return os.Remove(path)
}
