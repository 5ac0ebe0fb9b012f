// Package safeio confines filesystem reads to a fixed root directory.
// Scans run over user-supplied repository paths, so every path is resolved
// symlink-free and checked against the root before it is touched.
package safeio

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// FS provides read-only helpers that resolve paths relative to a fixed
// root. Construct one per scanned repository.
type FS struct {
	absRoot string // absolute root with symlinks resolved
}

// New locks all future operations to the given root directory. The root is
// resolved to an absolute, symlink-free directory.
func New(root string) (*FS, error) {
	if root == "" {
		return nil, errors.New("safeio: empty root")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("safeio: root is not a directory")
	}
	return &FS{absRoot: abs}, nil
}

// Root returns the absolute root directory bound to this FS.
func (f *FS) Root() string {
	if f == nil {
		return ""
	}
	return f.absRoot
}

// ReadFile reads a file relative to the root.
func (f *FS) ReadFile(userPath string) ([]byte, error) {
	return f.ReadFileLimit(userPath, 0)
}

// ReadFileLimit reads at most limit bytes of a file relative to the root.
// A limit of zero reads the whole file.
func (f *FS) ReadFileLimit(userPath string, limit int64) ([]byte, error) {
	p, err := f.resolve(userPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, errors.New("safeio: path is a directory")
	}
	if limit <= 0 {
		return os.ReadFile(p)
	}
	file, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(io.LimitReader(file, limit))
}

// Stat returns metadata for a file or directory under the root.
func (f *FS) Stat(userPath string) (fs.FileInfo, error) {
	p, err := f.resolve(userPath)
	if err != nil {
		return nil, err
	}
	return os.Stat(p)
}

// ReadDir lists entries for a directory relative to the root.
func (f *FS) ReadDir(userPath string) ([]fs.DirEntry, error) {
	dir, err := f.resolve(userPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("safeio: path is not a directory")
	}
	return os.ReadDir(dir)
}

func (f *FS) resolve(userPath string) (string, error) {
	if f == nil {
		return "", errors.New("safeio: filesystem not configured")
	}
	if userPath == "" {
		return "", errors.New("safeio: empty path")
	}
	clean := filepath.Clean(userPath)
	if clean == "." {
		return f.absRoot, nil
	}

	isAbs := filepath.IsAbs(clean) || (runtime.GOOS == "windows" && filepath.VolumeName(clean) != "")
	if !isAbs {
		if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return "", errors.New("safeio: path traversal not allowed")
		}
	}

	var joined string
	if isAbs {
		joined = clean
	} else {
		joined = filepath.Join(f.absRoot, clean)
	}

	resolved, err := filepath.EvalSymlinks(joined)
	if err != nil {
		return "", err
	}
	if !hasPathPrefix(resolved, f.absRoot) {
		return "", fmt.Errorf("safeio: resolved outside root (root=%s, path=%s)", f.absRoot, resolved)
	}
	return resolved, nil
}

func hasPathPrefix(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if runtime.GOOS == "windows" {
		path = strings.ToLower(path)
		root = strings.ToLower(root)
	}
	if len(root) == 0 {
		return true
	}
	if path == root {
		return true
	}
	sep := string(os.PathSeparator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	if !strings.HasSuffix(path, sep) {
		path += sep
	}
	return strings.HasPrefix(path, root)
}
