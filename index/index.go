// Package index persists invoice sequence numbers keyed by the date
// arguments that produced them, so repeated runs over the same period
// reuse the same invoice number.
//
// The backing file holds one mapping per line, "<sequence> <date args...>",
// sorted by sequence on save. An exclusive advisory file lock is held for
// the whole lifetime of an Index, serializing concurrent invoice runs
// against the same file; a second process blocks until the first releases.
package index

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// Index maps sequence numbers to the unordered set of date arguments they
// were issued for. It owns the lock on its backing file until Close.
type Index struct {
	path      string
	lock      *flock.Flock
	sequences map[uint32][]string
}

// Open opens (creating if absent) and exclusively locks the index file,
// then loads its mappings. Malformed lines are logged and skipped.
// Open blocks while another process holds the lock.
func Open(path string) (*Index, error) {
	lock := flock.New(path)
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("failed to lock index file %s: %w", path, err)
	}

	idx := &Index{
		path:      path,
		lock:      lock,
		sequences: make(map[uint32][]string),
	}

	if err := idx.load(); err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	return idx, nil
}

func (i *Index) load() error {
	data, err := os.ReadFile(i.path)
	if err != nil {
		return fmt.Errorf("failed to read index file %s: %w", i.path, err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		seqStr, rest, found := strings.Cut(line, " ")
		if !found {
			log.Warnf("invalid line in index file: %s", line)
			continue
		}

		seq, err := strconv.ParseUint(seqStr, 10, 32)
		if err != nil {
			log.Warnf("invalid sequence number in index file: %s", line)
			continue
		}

		i.sequences[uint32(seq)] = strings.Fields(rest)
	}
	return nil
}

// FindSequence returns the sequence number previously issued for exactly
// this set of date arguments, or allocates the next free number
// (max existing + 1, or 1 on an empty index) and records it. The
// comparison ignores argument order; calling twice with the same set is
// idempotent.
func (i *Index) FindSequence(dateArgs []string) uint32 {
	sorted := slices.Clone(dateArgs)
	slices.Sort(sorted)

	for seq, stored := range i.sequences {
		storedSorted := slices.Clone(stored)
		slices.Sort(storedSorted)
		if slices.Equal(storedSorted, sorted) {
			return seq
		}
	}

	var next uint32 = 1
	for seq := range i.sequences {
		if seq >= next {
			next = seq + 1
		}
	}
	i.sequences[next] = sorted
	return next
}

// AddSequence force-assigns dateArgs to seq, overwriting any mapping
// already stored at that number. A date set displaced this way simply gets
// a fresh number on its next FindSequence; stale duplicates are accepted
// and not cleaned up.
func (i *Index) AddSequence(seq uint32, dateArgs []string) uint32 {
	i.sequences[seq] = slices.Clone(dateArgs)
	return seq
}

// Save writes all mappings, sorted by sequence number, to a temporary file
// next to the index and atomically renames it over the original. The
// on-disk file is never observed half-written.
func (i *Index) Save() error {
	tmp, err := os.CreateTemp(filepath.Dir(i.path), filepath.Base(i.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary index file: %w", err)
	}
	log.Debugf("temp index: %s", tmp.Name())

	seqs := make([]uint32, 0, len(i.sequences))
	for seq := range i.sequences {
		seqs = append(seqs, seq)
	}
	slices.Sort(seqs)

	for _, seq := range seqs {
		log.Debugf("INDEX %d %s", seq, strings.Join(i.sequences[seq], " "))
		if _, err := fmt.Fprintf(tmp, "%d %s\n", seq, strings.Join(i.sequences[seq], " ")); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
			return fmt.Errorf("failed to write temporary index file: %w", err)
		}
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temporary index file: %w", err)
	}

	if err := os.Rename(tmp.Name(), i.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace index file %s: %w", i.path, err)
	}
	return nil
}

// Close releases the exclusive lock. The owning workflow calls Save before
// Close; releasing first would let another process read stale state.
func (i *Index) Close() error {
	if err := i.lock.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock index file %s: %w", i.path, err)
	}
	return nil
}
