// FILE: lixenwraith/logtree/storage.go
package logtree

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// stagingSuffix marks archives mid-renumbering; it never parses as an index
const stagingSuffix = ".renumber"

// RetentionPolicy bounds the archives kept in a rotation directory.
type RetentionPolicy struct {
	MaxArchiveCount int           // 0 keeps any number
	MaxArchiveAge   time.Duration // 0 never expires
}

func (c *FileConfig) retention() RetentionPolicy {
	return RetentionPolicy{
		MaxArchiveCount: int(c.MaxArchiveCount),
		MaxArchiveAge:   time.Duration(c.MaxArchiveAgeMs) * time.Millisecond,
	}
}

// dirLocks serializes retention passes per rotation directory
var dirLocks sync.Map

func lockDir(dir string) func() {
	m, _ := dirLocks.LoadOrStore(filepath.Clean(dir), &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func archivePath(dir, base string, index int) string {
	return filepath.Join(dir, base+"."+strconv.Itoa(index))
}

// parseArchiveIndex returns N for "<base>.<N>" with N a positive integer
func parseArchiveIndex(name, base string) (int, bool) {
	suffix, ok := strings.CutPrefix(name, base+".")
	if !ok || suffix == "" {
		return 0, false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// ScanArchives lists the archives of base in dir, oldest (largest index) first.
// Entries whose metadata cannot be read or that carry no timestamp are skipped.
func ScanArchives(fs afero.Fs, dir, base string) ([]RotationArchive, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmtErrorf("failed to read rotation directory %s: %w", dir, err)
	}

	var archives []RotationArchive
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		index, ok := parseArchiveIndex(entry.Name(), base)
		if !ok {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := fs.Stat(path)
		if err != nil {
			continue
		}
		if info.ModTime().UnixMilli() <= 0 {
			continue
		}
		archives = append(archives, RotationArchive{
			Path:      path,
			Index:     index,
			Timestamp: info.ModTime(),
		})
	}

	sort.Slice(archives, func(i, j int) bool {
		return archives[i].Index > archives[j].Index
	})
	return archives, nil
}

// CleanRotationDir runs one retention pass over dir: archives beyond the
// count limit or older than the age limit are deleted, and the survivors are
// renumbered contiguously from .2 so that .1 is free for the next rotation.
// It returns the deleted archives. Per-file failures are collected into the
// returned error without stopping the pass.
func CleanRotationDir(fs afero.Fs, dir, base string, policy RetentionPolicy, now time.Time) ([]RotationArchive, error) {
	unlock := lockDir(dir)
	defer unlock()
	return cleanRotationDir(fs, dir, base, policy, now)
}

// cleanRotationDir is CleanRotationDir for callers already holding the directory lock
func cleanRotationDir(fs afero.Fs, dir, base string, policy RetentionPolicy, now time.Time) ([]RotationArchive, error) {
	archives, err := ScanArchives(fs, dir, base)
	if err != nil {
		return nil, err
	}

	var due, survivors []RotationArchive
	survivors = archives

	// Count limiter leaves room for the archive about to be created
	if policy.MaxArchiveCount > 0 && len(survivors) >= policy.MaxArchiveCount {
		extra := len(survivors) - policy.MaxArchiveCount + 1
		due = append(due, survivors[:extra]...)
		survivors = survivors[extra:]
	}

	// Age limiter judges each archive by its own modification time
	if policy.MaxArchiveAge > 0 {
		cutoff := now.Add(-policy.MaxArchiveAge)
		kept := survivors[:0:0]
		for _, a := range survivors {
			if a.Timestamp.Before(cutoff) {
				due = append(due, a)
				continue
			}
			kept = append(kept, a)
		}
		survivors = kept
	}

	var errs []error
	var deleted []RotationArchive
	for _, a := range due {
		if err := fs.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmtErrorf("failed to delete archive %s: %w", a.Path, err))
			continue
		}
		deleted = append(deleted, a)
	}

	if err := renumber(fs, dir, base, survivors); err != nil {
		errs = append(errs, err)
	}

	return deleted, errors.Join(errs...)
}

type archiveMove struct {
	from, to string
}

// renumber moves survivors (oldest first) to count+1 down to 2.
func renumber(fs afero.Fs, dir, base string, survivors []RotationArchive) error {
	n := len(survivors)
	var moves []archiveMove
	pending := make(map[string]bool, n)

	for i, a := range survivors {
		target := n + 1 - i
		if a.Index == target {
			continue
		}
		moves = append(moves, archiveMove{from: a.Path, to: archivePath(dir, base, target)})
		pending[a.Path] = true
	}

	// Moving an archive down can land on a survivor not yet moved; stage
	// everything through temporary names in that case.
	overlap := false
	for _, m := range moves {
		delete(pending, m.from)
		if pending[m.to] {
			overlap = true
			break
		}
	}

	var errs []error
	if overlap {
		for i := range moves {
			staged := moves[i].from + stagingSuffix
			if err := fs.Rename(moves[i].from, staged); err != nil {
				errs = append(errs, fmtErrorf("failed to stage archive %s: %w", moves[i].from, err))
				moves[i].from = ""
				continue
			}
			moves[i].from = staged
		}
	}

	for _, m := range moves {
		if m.from == "" {
			continue
		}
		if err := fs.Rename(m.from, m.to); err != nil {
			errs = append(errs, fmtErrorf("failed to renumber archive %s: %w", m.from, err))
		}
	}
	return errors.Join(errs...)
}
