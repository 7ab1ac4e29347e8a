package diff

import (
	"fmt"
	"iter"
	"log/slog"
	"path"
)

// Status classifies one name in a merged top-level listing.
type Status string

const (
	StatusLeftOnly  Status = "left_only"
	StatusRightOnly Status = "right_only"
	StatusMatches   Status = "matches"
	StatusDiffers   Status = "differs"
)

// TreeDiff is one classified name from a top-level merge. Paths are relative
// to the tree roots; the absent side of a one-sided result is empty.
type TreeDiff struct {
	Status Status `json:"status"`
	Left   string `json:"left,omitempty"`
	Right  string `json:"right,omitempty"`
}

// Trees lazily classifies every name present at the given depth in either
// tree, in ascending name order: present on one side only, or present on
// both with identical or differing contents. Each equal-named pair costs one
// subtree check. The merge holds one pending entry per side and nothing
// else.
//
// After an error item the two listings are no longer synchronized and the
// consumer must stop pulling; later items may blame the wrong side for a
// missing name.
func (d *Differ) Trees(depth int) iter.Seq2[TreeDiff, error] {
	return func(yield func(TreeDiff, error) bool) {
		slog.Debug("tree diff", "depth", depth)

		lnext, lstop := iter.Pull2(Walk(d.left, "/", WithMinDepth(depth), WithMaxDepth(depth), WithSkip(d.skip)))
		defer lstop()
		rnext, rstop := iter.Pull2(Walk(d.right, "/", WithMinDepth(depth), WithMaxDepth(depth), WithSkip(d.skip)))
		defer rstop()

		le, lerr, lok := d.pull(lnext)
		re, rerr, rok := d.pull(rnext)
		for {
			switch {
			case lok && lerr != nil:
				if !yield(TreeDiff{}, fmt.Errorf("left: %w", lerr)) {
					return
				}
				le, lerr, lok = d.pull(lnext)
			case rok && rerr != nil:
				if !yield(TreeDiff{}, fmt.Errorf("right: %w", rerr)) {
					return
				}
				re, rerr, rok = d.pull(rnext)
			case lok && rok:
				switch c := comparePaths(le.Path, re.Path); {
				case c == 0:
					eq, err := d.SubtreesEqual(path.Join("/", le.Path), path.Join("/", re.Path))
					if err != nil {
						// The verdict for this pair is unknown; both sides
						// still advance so a consumer that ignores the stop
						// contract cannot spin on the same pair.
						if !yield(TreeDiff{}, err) {
							return
						}
					} else {
						td := TreeDiff{Status: StatusDiffers, Left: le.Path, Right: re.Path}
						if eq {
							td.Status = StatusMatches
						}
						if !yield(td, nil) {
							return
						}
					}
					le, lerr, lok = d.pull(lnext)
					re, rerr, rok = d.pull(rnext)
				case c < 0:
					if !yield(TreeDiff{Status: StatusLeftOnly, Left: le.Path}, nil) {
						return
					}
					le, lerr, lok = d.pull(lnext)
				default:
					if !yield(TreeDiff{Status: StatusRightOnly, Right: re.Path}, nil) {
						return
					}
					re, rerr, rok = d.pull(rnext)
				}
			case lok:
				if !yield(TreeDiff{Status: StatusLeftOnly, Left: le.Path}, nil) {
					return
				}
				le, lerr, lok = d.pull(lnext)
			case rok:
				if !yield(TreeDiff{Status: StatusRightOnly, Right: re.Path}, nil) {
					return
				}
				re, rerr, rok = d.pull(rnext)
			default:
				return
			}
		}
	}
}
