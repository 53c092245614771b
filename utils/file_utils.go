package utils

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a path escapes its root directory
var ErrOutsideRoot = errors.New("path escapes root")

// FileExists checks if a regular file exists
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ResolveUnder joins a slash-separated relative path onto root and ensures
// the result stays inside root.
func ResolveUnder(root, rel string) (string, error) {
	cleaned := filepath.Clean("/" + filepath.FromSlash(rel))
	full := filepath.Join(root, cleaned)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	absFull, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	r, err := filepath.Rel(absRoot, absFull)
	if err != nil {
		return "", err
	}
	if r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return absFull, nil
}
