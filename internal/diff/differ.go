// Package diff compares two directory trees.
//
// A Differ owns a left and a right filesystem and answers two questions
// about them: whether two subtrees hold identical contents, and how the
// children at a fixed depth pair up across the two trees. Both answers come
// from the same primitive, a merge-join over two name-sorted lazy walks.
// Evaluation is pull-based and single-threaded; nothing is read until the
// caller asks for the next item.
package diff

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5"
)

// Differ compares a left and a right filesystem tree. Not safe for
// concurrent use.
type Differ struct {
	left  billy.Filesystem
	right billy.Filesystem
	skip  func(Entry) bool
	stats Stats
}

// Option configures a Differ.
type Option func(*Differ) error

// WithExcludes skips entries whose walk-relative path matches any of the
// given doublestar patterns, on both sides and at every depth. A matched
// directory is pruned whole. Patterns are validated up front.
func WithExcludes(patterns ...string) Option {
	return func(d *Differ) error {
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return fmt.Errorf("exclude pattern %q: %w", p, doublestar.ErrBadPattern)
			}
		}
		if len(patterns) == 0 {
			return nil
		}
		d.skip = func(e Entry) bool {
			for _, p := range patterns {
				if ok, _ := doublestar.Match(p, e.Path); ok {
					return true
				}
			}
			return false
		}
		return nil
	}
}

// New returns a Differ over the two filesystems. Use osfs.New for on-disk
// trees; any billy.Filesystem works, which is also how the tests run against
// in-memory fixtures.
func New(left, right billy.Filesystem, opts ...Option) (*Differ, error) {
	d := &Differ{left: left, right: right}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Stats describes the work a Differ has done so far.
type Stats struct {
	EntriesScanned  int64
	FilesCompared   int64
	SubtreesChecked int64
	BytesCompared   int64
}

// Stats returns counters accumulated since the Differ was created.
func (d *Differ) Stats() Stats {
	return d.stats
}

// pull advances one side of a merge and counts the entry it produced.
func (d *Differ) pull(next func() (Entry, error, bool)) (Entry, error, bool) {
	e, err, ok := next()
	if ok && err == nil {
		d.stats.EntriesScanned++
	}
	return e, err, ok
}
