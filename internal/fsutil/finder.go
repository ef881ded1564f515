// Package fsutil provides the file system collaborators of the config
// pipeline: classifying values that look like paths, canonicalizing them and
// listing directories.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Entry is one immediate subdirectory found by ListSubdirs.
type Entry struct {
	Name string
	Path string // canonical absolute path
}

// OS implements the collaborators on top of the real file system.
type OS struct{}

// LooksLikePath reports whether value should be treated as a path rather than
// a bare workspace name.
func LooksLikePath(value string) bool {
	switch {
	case strings.HasPrefix(value, "/"),
		strings.HasPrefix(value, "./"), strings.HasPrefix(value, `.\`),
		strings.HasPrefix(value, "../"), strings.HasPrefix(value, `..\`),
		strings.HasPrefix(value, "~/"), strings.HasPrefix(value, `~\`),
		strings.HasPrefix(value, `\\`):
		return true
	case strings.ContainsAny(value, `/\`):
		return true
	case len(value) >= 3 && value[1] == ':' && (value[2] == '\\' || value[2] == '/') && isASCIILetter(value[0]):
		return true
	}
	return false
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// Classify returns the canonical absolute path of value when it looks like a
// path, resolving relative paths against baseDir. It reports false for bare
// names. A path-like value that cannot be canonicalized is an error.
func (OS) Classify(value, baseDir string) (string, bool, error) {
	if !LooksLikePath(value) {
		return "", false, nil
	}
	p, err := Canonicalize(value, baseDir)
	if err != nil {
		return "", true, err
	}
	return p, true, nil
}

// IsDir reports whether path exists and is a directory.
func (OS) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ListSubdirs lists the immediate subdirectories of dir in name order,
// following symlinks.
func (OS) ListSubdirs(dir string) ([]Entry, error) {
	root, err := Canonicalize(dir, "")
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("unable to list %s: %w", root, err)
	}

	var dirs []Entry
	for _, e := range entries {
		p := filepath.Join(root, e.Name())
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			continue
		}
		if resolved, err := filepath.EvalSymlinks(p); err == nil {
			p = resolved
		}
		dirs = append(dirs, Entry{Name: e.Name(), Path: p})
	}
	return dirs, nil
}

// Canonicalize expands a leading "~", resolves value against baseDir when it
// is relative, and resolves symlinks. The path must exist.
func Canonicalize(value, baseDir string) (string, error) {
	p := value
	if rest, ok := cutHome(p); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("unable to expand %q: %w", value, err)
		}
		p = filepath.Join(home, rest)
	}
	if !filepath.IsAbs(p) && baseDir != "" {
		p = filepath.Join(baseDir, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("unable to resolve %q: %w", value, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("unable to resolve %q: %w", value, err)
	}
	return resolved, nil
}

func cutHome(p string) (string, bool) {
	if p == "~" {
		return "", true
	}
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		return rest, true
	}
	return strings.CutPrefix(p, `~\`)
}
