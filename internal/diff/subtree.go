package diff

import (
	"fmt"
	"iter"
	"log/slog"
	"path"
)

// SubtreesEqual recursively compares whatever leftPath names on the left
// side with whatever rightPath names on the right side. Two directories are
// equal when every descendant matches by relative path and file type, and
// every regular file matches byte for byte. Two regular files are equal when
// their contents are. Symlinks and special files compare by type alone. The
// check stops at the first difference; any traversal or read error is fatal
// for the whole check.
func (d *Differ) SubtreesEqual(leftPath, rightPath string) (bool, error) {
	d.stats.SubtreesChecked++
	slog.Debug("subtree check", "left", leftPath, "right", rightPath)

	lfi, err := d.left.Lstat(leftPath)
	if err != nil {
		return false, fmt.Errorf("left: %w", &WalkError{Path: leftPath, Err: err})
	}
	rfi, err := d.right.Lstat(rightPath)
	if err != nil {
		return false, fmt.Errorf("right: %w", &WalkError{Path: rightPath, Err: err})
	}

	lt, rt := entryTypeOf(lfi.Mode()), entryTypeOf(rfi.Mode())
	if lt != rt {
		return false, nil
	}
	switch lt {
	case EntryFile:
		return d.FileContentsEqual(leftPath, rightPath)
	case EntryDir:
		return d.dirsEqual(leftPath, rightPath)
	default:
		// Symlinks and special files carry no comparable content; same
		// type is as equal as they get.
		return true, nil
	}
}

// dirsEqual merges two full recursive walks in lockstep. Directories recurse
// implicitly: the walks are already flattened, so a subdirectory mismatch
// surfaces as a path mismatch without any nested call.
func (d *Differ) dirsEqual(leftDir, rightDir string) (bool, error) {
	lnext, lstop := iter.Pull2(Walk(d.left, leftDir, WithMinDepth(1), WithSkip(d.skip)))
	defer lstop()
	rnext, rstop := iter.Pull2(Walk(d.right, rightDir, WithMinDepth(1), WithSkip(d.skip)))
	defer rstop()

	le, lerr, lok := d.pull(lnext)
	re, rerr, rok := d.pull(rnext)
	for {
		switch {
		case lok && lerr != nil:
			return false, fmt.Errorf("left: %w", lerr)
		case rok && rerr != nil:
			return false, fmt.Errorf("right: %w", rerr)
		case lok && rok:
			// Two pending entries; the shared order decides whether they
			// name the same object.
			if comparePaths(le.Path, re.Path) != 0 {
				return false, nil
			}
			if le.Type != re.Type {
				return false, nil
			}
			if le.Type == EntryFile {
				eq, err := d.FileContentsEqual(path.Join(leftDir, le.Path), path.Join(rightDir, re.Path))
				if err != nil {
					return false, err
				}
				if !eq {
					return false, nil
				}
			}
			le, lerr, lok = d.pull(lnext)
			re, rerr, rok = d.pull(rnext)
		case lok || rok:
			// One walk ran out first: something exists on only one side.
			return false, nil
		default:
			return true, nil
		}
	}
}
