package crudgen

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Filesystem is the file primitive the generator and the backup manager work against.
// Names are slash-separated and relative to the filesystem root.
type Filesystem interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	// WriteFile replaces name atomically, creating parent directories as needed.
	WriteFile(name string, data []byte, perm fs.FileMode) error
	MkdirAll(name string, perm fs.FileMode) error
	Remove(name string) error
	RemoveAll(name string) error
	ReadDir(name string) ([]fs.DirEntry, error)
	Glob(pattern string) ([]string, error)
	// Abs returns the absolute OS path of name.
	Abs(name string) string
}

// OSFS is a Filesystem rooted at a directory of the host filesystem.
type OSFS struct {
	Root string
}

// DirFS returns a Filesystem rooted at dir.
func DirFS(dir string) *OSFS {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &OSFS{Root: dir}
}

// Abs returns the absolute OS path of name.
func (f *OSFS) Abs(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(f.Root, filepath.FromSlash(name))
}

// Stat returns the file info of name.
func (f *OSFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(f.Abs(name))
}

// ReadFile reads the content of name.
func (f *OSFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(f.Abs(name))
}

// WriteFile writes data to a temporary sibling and renames it over name.
func (f *OSFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	full := f.Abs(name)
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(full)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// MkdirAll creates name and any missing parents.
func (f *OSFS) MkdirAll(name string, perm fs.FileMode) error {
	return os.MkdirAll(f.Abs(name), perm)
}

// Remove removes the file or empty directory name.
func (f *OSFS) Remove(name string) error {
	return os.Remove(f.Abs(name))
}

// RemoveAll removes name and everything it contains.
func (f *OSFS) RemoveAll(name string) error {
	return os.RemoveAll(f.Abs(name))
}

// ReadDir lists the directory name.
func (f *OSFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(f.Abs(name))
}

// Glob returns the root-relative names matching pattern.
func (f *OSFS) Glob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(f.Abs(pattern))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, err := filepath.Rel(f.Root, m)
		if err != nil {
			return nil, err
		}
		names = append(names, filepath.ToSlash(rel))
	}
	return names, nil
}

// Exists reports whether name exists in fsys.
func Exists(fsys Filesystem, name string) bool {
	_, err := fsys.Stat(name)
	return err == nil
}

// CopyFile copies src to dst inside fsys, preserving the source permissions.
func CopyFile(fsys Filesystem, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return errors.New("source is a directory")
	}
	data, err := fsys.ReadFile(src)
	if err != nil {
		return err
	}
	return fsys.WriteFile(dst, data, info.Mode().Perm())
}

// CleanPath normalizes a user supplied relative path and rejects paths escaping the root.
func CleanPath(name string) (string, error) {
	p := path.Clean(filepath.ToSlash(name))
	if p == "." || p == "" {
		return "", errors.New("empty path")
	}
	if strings.HasPrefix(p, "../") || p == ".." || path.IsAbs(p) {
		return "", errors.New("path escapes the project root")
	}
	return p, nil
}
