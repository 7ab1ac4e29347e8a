package diff

import (
	"fmt"
	"io/fs"
	"iter"
	"path"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// EntryType classifies a directory entry by its file type.
type EntryType string

const (
	EntryFile    EntryType = "file"
	EntryDir     EntryType = "dir"
	EntrySymlink EntryType = "symlink"
	EntryOther   EntryType = "other"
)

// Entry is one filesystem object yielded by Walk. Path is slash-separated
// and relative to the walk root; the root itself is yielded as ".".
type Entry struct {
	Path  string
	Name  string
	Type  EntryType
	Size  int64
	Depth int
}

// WalkError reports a path that could not be read or statted during a walk.
// It is yielded in place of the affected listing; the walk continues with
// whatever remains reachable.
type WalkError struct {
	Path string
	Err  error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("walk %s: %v", e.Path, e.Err)
}

func (e *WalkError) Unwrap() error {
	return e.Err
}

type walkOptions struct {
	minDepth int
	maxDepth int
	skip     func(Entry) bool
}

// WalkOption configures a Walk.
type WalkOption func(*walkOptions)

// WithMinDepth drops entries shallower than depth. The walk root is depth 0.
func WithMinDepth(depth int) WalkOption {
	return func(o *walkOptions) { o.minDepth = depth }
}

// WithMaxDepth stops descending into directories at depth. Negative means
// unbounded.
func WithMaxDepth(depth int) WalkOption {
	return func(o *walkOptions) { o.maxDepth = depth }
}

// WithSkip prunes entries for which fn returns true. A skipped directory is
// not descended into. The walk root itself is never passed to fn.
func WithSkip(fn func(Entry) bool) WalkOption {
	return func(o *walkOptions) { o.skip = fn }
}

type walkItem struct {
	entry Entry
	err   error
}

// Walk lazily enumerates the tree under root on fsys in pre-order, every
// directory level sorted by entry name. Symlinks are reported, never
// followed. Each item carries either an Entry or a *WalkError for a path
// that could not be read; an error item does not terminate the sequence,
// though callers merging two walks should treat one as fatal (see Trees).
// Ranging over the sequence again starts a fresh traversal.
func Walk(fsys billy.Filesystem, root string, opts ...WalkOption) iter.Seq2[Entry, error] {
	o := walkOptions{maxDepth: -1}
	for _, opt := range opts {
		opt(&o)
	}

	return func(yield func(Entry, error) bool) {
		if o.maxDepth >= 0 && o.minDepth > o.maxDepth {
			return
		}

		// Directories are expanded only when popped, so at any moment the
		// stack holds at most one read directory per open level.
		var stack []walkItem
		if o.minDepth <= 0 {
			fi, err := fsys.Lstat(root)
			if err != nil {
				yield(Entry{}, &WalkError{Path: root, Err: err})
				return
			}
			stack = append(stack, walkItem{entry: newEntry(".", fi, 0)})
		} else {
			// The root sits below the depth window; list it without
			// yielding it.
			stack = pushChildren(fsys, root, Entry{Path: ".", Type: EntryDir}, nil, &o)
		}

		for len(stack) > 0 {
			item := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if item.err != nil {
				if !yield(Entry{}, item.err) {
					return
				}
				continue
			}

			e := item.entry
			if e.Depth >= o.minDepth {
				if !yield(e, nil) {
					return
				}
			}
			if e.Type == EntryDir && (o.maxDepth < 0 || e.Depth < o.maxDepth) {
				stack = pushChildren(fsys, root, e, stack, &o)
			}
		}
	}
}

// pushChildren lists parent on fsys and pushes its entries in reverse name
// order so they pop in ascending order. A failed listing pushes a single
// error item in its place.
func pushChildren(fsys billy.Filesystem, root string, parent Entry, stack []walkItem, o *walkOptions) []walkItem {
	dirPath := path.Join(root, parent.Path)
	infos, err := fsys.ReadDir(dirPath)
	if err != nil {
		return append(stack, walkItem{err: &WalkError{Path: dirPath, Err: err}})
	}

	slices.SortFunc(infos, func(a, b fs.FileInfo) int {
		return comparePaths(a.Name(), b.Name())
	})

	for i := len(infos) - 1; i >= 0; i-- {
		child := newEntry(path.Join(parent.Path, infos[i].Name()), infos[i], parent.Depth+1)
		if o.skip != nil && o.skip(child) {
			continue
		}
		stack = append(stack, walkItem{entry: child})
	}
	return stack
}

func newEntry(relPath string, fi fs.FileInfo, depth int) Entry {
	return Entry{
		Path:  relPath,
		Name:  fi.Name(),
		Type:  entryTypeOf(fi.Mode()),
		Size:  fi.Size(),
		Depth: depth,
	}
}

func entryTypeOf(mode fs.FileMode) EntryType {
	switch {
	case mode.IsRegular():
		return EntryFile
	case mode.IsDir():
		return EntryDir
	case mode&fs.ModeSymlink != 0:
		return EntrySymlink
	default:
		return EntryOther
	}
}

// comparePaths orders slash-separated relative paths component by component,
// each component byte-wise lexicographic. Every sort and every merge in this
// package must go through this one function; the joins are only correct
// while both sides agree on the order.
func comparePaths(a, b string) int {
	for {
		ia := strings.IndexByte(a, '/')
		ib := strings.IndexByte(b, '/')
		sega, segb := a, b
		if ia >= 0 {
			sega = a[:ia]
		}
		if ib >= 0 {
			segb = b[:ib]
		}
		if c := strings.Compare(sega, segb); c != 0 {
			return c
		}
		switch {
		case ia < 0 && ib < 0:
			return 0
		case ia < 0:
			// a names the parent of whatever b goes on to name.
			return -1
		case ib < 0:
			return 1
		}
		a, b = a[ia+1:], b[ib+1:]
	}
}
