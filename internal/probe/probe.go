// Package probe implements the bounded external checks composite and fuzzy
// rules perform against the real system.
package probe

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vietddude/fixer/internal/core/domain"
)

// Info describes a path as seen by a probe.
type Info struct {
	Exists     bool
	IsDir      bool
	Executable bool
}

// Entry is one directory entry.
type Entry struct {
	Name  string
	IsDir bool
}

// Prober performs read-only checks. Every call must honor ctx.
type Prober interface {
	Stat(ctx context.Context, path string) (Info, error)
	ListDir(ctx context.Context, dir string) ([]Entry, error)
	// Commands lists executable names reachable from a PATH-style value.
	Commands(ctx context.Context, pathList string) ([]string, error)
}

// FS probes the local filesystem.
type FS struct{}

// NewFS creates a filesystem prober.
func NewFS() *FS { return &FS{} }

// Stat reports whether path exists; a missing path is not an error.
func (p *FS) Stat(ctx context.Context, path string) (Info, error) {
	return run(ctx, func() (Info, error) {
		fi, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return Info{}, nil
		}
		if err != nil {
			return Info{}, err
		}
		return Info{
			Exists:     true,
			IsDir:      fi.IsDir(),
			Executable: !fi.IsDir() && fi.Mode().Perm()&0o111 != 0,
		}, nil
	})
}

// ListDir returns the entries of dir sorted by name. A missing directory
// yields an empty listing.
func (p *FS) ListDir(ctx context.Context, dir string) ([]Entry, error) {
	return run(ctx, func() ([]Entry, error) {
		des, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		out := make([]Entry, 0, len(des))
		for _, de := range des {
			isDir := de.IsDir()
			if de.Type()&fs.ModeSymlink != 0 {
				if fi, err := os.Stat(filepath.Join(dir, de.Name())); err == nil {
					isDir = fi.IsDir()
				}
			}
			out = append(out, Entry{Name: de.Name(), IsDir: isDir})
		}
		return out, nil
	})
}

// Commands walks every directory of pathList.
func (p *FS) Commands(ctx context.Context, pathList string) ([]string, error) {
	return run(ctx, func() ([]string, error) {
		seen := make(map[string]struct{})
		for _, dir := range filepath.SplitList(pathList) {
			if ctx.Err() != nil {
				break
			}
			des, err := os.ReadDir(dir)
			if err != nil {
				continue
			}
			for _, de := range des {
				if de.IsDir() {
					continue
				}
				fi, err := de.Info()
				if err != nil || fi.Mode().Perm()&0o111 == 0 {
					continue
				}
				seen[de.Name()] = struct{}{}
			}
		}
		return sortedKeys(seen), nil
	})
}

// run executes fn on its own goroutine so a hung syscall cannot hold the
// caller past its deadline.
func run[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}

	var zero T
	if err := ctx.Err(); err != nil {
		return zero, domain.ErrProbeTimeout.Wrap(err.Error())
	}

	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		return zero, domain.ErrProbeTimeout.Wrap(ctx.Err().Error())
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Names extracts entry names, optionally keeping only directories.
func Names(entries []Entry, dirsOnly bool) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if dirsOnly && !e.IsDir {
			continue
		}
		out = append(out, e.Name)
	}
	return out
}

// Visible drops dot-files unless the query itself starts with a dot.
func Visible(names []string, query string) []string {
	if strings.HasPrefix(query, ".") {
		return names
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !strings.HasPrefix(n, ".") {
			out = append(out, n)
		}
	}
	return out
}
