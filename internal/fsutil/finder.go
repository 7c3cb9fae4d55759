// Package fsutil provides file system utility functions.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// ManifestPattern matches manifest files at any depth.
const ManifestPattern = "**/*.hcl"

// FindFiles expands paths into a sorted, de-duplicated list of files.
// Directories are searched with the doublestar pattern; a file is taken when
// its name matches the pattern's last element. Files whose path, relative to
// the searched directory, matches an exclude pattern are dropped. Missing
// paths are skipped.
func FindFiles(paths []string, pattern string, exclude ...string) ([]string, error) {
	if pattern == "" {
		panic("pattern must not be empty")
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	for _, ex := range exclude {
		if !doublestar.ValidatePattern(ex) {
			return nil, fmt.Errorf("invalid exclude pattern %q", ex)
		}
	}

	seen := make(map[string]struct{})
	var files []string
	add := func(p, rel string) {
		for _, ex := range exclude {
			if ok, _ := doublestar.Match(ex, rel); ok {
				return
			}
		}
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", root, err)
		}
		if !info.IsDir() {
			if ok, _ := doublestar.Match(lastElem(pattern), info.Name()); ok {
				add(filepath.Clean(root), filepath.ToSlash(root))
			}
			continue
		}
		matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("searching %s: %w", root, err)
		}
		for _, m := range matches {
			add(filepath.Join(root, filepath.FromSlash(m)), m)
		}
	}
	slices.Sort(files)
	return files, nil
}

func lastElem(pattern string) string {
	for i := len(pattern) - 1; i >= 0; i-- {
		if pattern[i] == '/' {
			return pattern[i+1:]
		}
	}
	return pattern
}
