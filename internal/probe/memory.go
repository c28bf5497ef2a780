package probe

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-memory Prober used by tests and dry runs.
type Memory struct {
	mu       sync.RWMutex
	paths    map[string]Info
	commands map[string]struct{}
}

// NewMemory creates an empty in-memory prober.
func NewMemory() *Memory {
	return &Memory{
		paths:    make(map[string]Info),
		commands: make(map[string]struct{}),
	}
}

// AddDir registers a directory and all of its parents.
func (m *Memory) AddDir(path string) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addParents(path)
	m.paths[filepath.Clean(path)] = Info{Exists: true, IsDir: true}
	return m
}

// AddFile registers a file and all of its parents.
func (m *Memory) AddFile(path string, executable bool) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addParents(path)
	m.paths[filepath.Clean(path)] = Info{Exists: true, Executable: executable}
	return m
}

// AddCommands registers executable names returned by Commands.
func (m *Memory) AddCommands(names ...string) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range names {
		m.commands[n] = struct{}{}
	}
	return m
}

func (m *Memory) addParents(path string) {
	dir := filepath.Dir(filepath.Clean(path))
	for dir != "." && dir != string(filepath.Separator) {
		if _, ok := m.paths[dir]; !ok {
			m.paths[dir] = Info{Exists: true, IsDir: true}
		}
		dir = filepath.Dir(dir)
	}
}

func (m *Memory) Stat(ctx context.Context, path string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	path = filepath.Clean(path)
	if path == string(filepath.Separator) {
		return Info{Exists: true, IsDir: true}, nil
	}
	return m.paths[path], nil
}

func (m *Memory) ListDir(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	dir = filepath.Clean(dir)
	var out []Entry
	for p, info := range m.paths {
		if filepath.Dir(p) != dir || p == dir {
			continue
		}
		out = append(out, Entry{Name: filepath.Base(p), IsDir: info.IsDir})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) Commands(ctx context.Context, pathList string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.commands))
	for c := range m.commands {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

// String lists registered paths, mostly for test failure messages.
func (m *Memory) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.paths))
	for p := range m.paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return strings.Join(paths, ",")
}
