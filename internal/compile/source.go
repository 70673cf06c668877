package compile

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Entry is one child of a directory.
type Entry struct {
	Name  string
	IsDir bool
}

// Source is where documents are read from and outputs are written to.
// Implementations must be safe for concurrent use.
type Source interface {
	ReadFile(path string) (string, error)
	ReadDir(path string) ([]Entry, error)
	WriteFile(path string, contents []byte) error
}

// FileSystem implements Source on the local file system.
type FileSystem struct{}

func (FileSystem) ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (FileSystem) ReadDir(path string) ([]Entry, error) {
	des, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(des))
	for _, d := range des {
		isDir := d.IsDir()
		if d.Type()&fs.ModeSymlink != 0 {
			// Follow links to files, never to directories.
			info, err := os.Stat(filepath.Join(path, d.Name()))
			if err != nil || info.IsDir() {
				continue
			}
		}
		entries = append(entries, Entry{Name: d.Name(), IsDir: isDir})
	}
	return entries, nil
}

// WriteFile creates missing parent directories and leaves files whose
// contents are unchanged untouched.
func (FileSystem) WriteFile(path string, contents []byte) error {
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, contents) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, contents, 0o644)
}

// InMemory implements Source on a map of cleaned paths to contents.
// Directories exist implicitly as parents of files.
type InMemory struct {
	mu    sync.RWMutex
	files map[string]string
}

// NewInMemory returns a source holding files.
func NewInMemory(files map[string]string) *InMemory {
	m := &InMemory{files: make(map[string]string, len(files))}
	for path, contents := range files {
		m.files[filepath.Clean(path)] = contents
	}
	return m
}

func (m *InMemory) ReadFile(path string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	contents, ok := m.files[filepath.Clean(path)]
	if !ok {
		return "", &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return contents, nil
}

func (m *InMemory) ReadDir(path string) ([]Entry, error) {
	dir := filepath.Clean(path)
	m.mu.RLock()
	defer m.mu.RUnlock()

	children := map[string]bool{}
	for name := range m.files {
		rel, err := filepath.Rel(dir, name)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		first, _, nested := strings.Cut(rel, string(filepath.Separator))
		children[first] = children[first] || nested
	}
	if len(children) == 0 {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	entries := make([]Entry, 0, len(children))
	for name, isDir := range children {
		entries = append(entries, Entry{Name: name, IsDir: isDir})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (m *InMemory) WriteFile(path string, contents []byte) error {
	m.mu.Lock()
	m.files[filepath.Clean(path)] = string(contents)
	m.mu.Unlock()
	return nil
}

// Paths lists every file, sorted.
func (m *InMemory) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
