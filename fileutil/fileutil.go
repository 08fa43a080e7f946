package fileutil

import (
	"io/fs"
	"path/filepath"
	"strings"
)

func GlobEscape(path string) string {
	var r strings.Builder
	for _, c := range path {
		switch c {
		case '*', '?', '[':
			r.WriteRune('[')
			r.WriteRune(c)
			r.WriteRune(']')
		default:
			r.WriteRune(c)
		}
	}
	return r.String()
}

func GlobDir(dir, pattern string) ([]string, error) {
	return filepath.Glob(filepath.Join(GlobEscape(dir), pattern))
}

// https://learn.microsoft.com/en-us/windows/win32/fileio/naming-a-file#naming-conventions
var safePathReplacer = strings.NewReplacer(
	"\x00", "",
	string(filepath.Separator), "-",
	"<", "-", ">", "-", ":", "-", "\\", "-", "|", "-", "?", "-", "*", "-",
	`"`, "'", "`", "'",
)

// SafePath renders a path segment safe for NTFS-compatible filesystems,
// collapsing runs of whitespace along the way.
func SafePath(path string) string {
	path = safePathReplacer.Replace(path)
	path = strings.Join(strings.Fields(path), " ")
	return path
}

// WalkLeaves calls fn for every leaf directory under root, that is, every
// directory with no sub directories of its own.
func WalkLeaves(root string, fn func(path string, d fs.DirEntry) error) error {
	var lastDir string
	var lastEntry fs.DirEntry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		// a dir which is not a child of the previous dir means the
		// previous dir was a leaf
		if lastDir != "" && !strings.HasPrefix(path, lastDir+string(filepath.Separator)) {
			if err := fn(lastDir, lastEntry); err != nil {
				return err
			}
		}
		lastDir, lastEntry = path, d
		return nil
	})
	if err != nil {
		return err
	}
	if lastDir != "" {
		return fn(lastDir, lastEntry)
	}
	return nil
}
