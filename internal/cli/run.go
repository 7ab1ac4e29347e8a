package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"golang.org/x/sync/errgroup"

	"github.com/treediff/treediff/internal/diff"
)

// Run compares the two configured roots and writes every result to out.
// The config must have been validated.
func Run(ctx context.Context, cfg *Config, out io.Writer) error {
	return run(ctx, cfg, osfs.New(cfg.leftRoot), osfs.New(cfg.rightRoot), out)
}

func run(ctx context.Context, cfg *Config, left, right billy.Filesystem, out io.Writer) error {
	start := time.Now()
	if cfg.NoColor {
		color.NoColor = true
	}

	d, err := diff.New(left, right, diff.WithExcludes(cfg.Excludes...))
	if err != nil {
		return err
	}

	r, err := newRenderer(cfg, left, right, out)
	if err != nil {
		return err
	}
	if err := r.begin(cfg.displayLeft(), cfg.displayRight()); err != nil {
		return err
	}

	var matches, differs, leftOnly, rightOnly int64
	for td, err := range d.Trees(cfg.Depth) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			// The two listings are desynchronized past this point and
			// further results could blame the wrong side.
			if !cfg.JSON {
				fmt.Fprintln(out, "ERROR: Encountered an error while scanning directories:")
				fmt.Fprintf(out, "  %v\n", err)
				fmt.Fprintln(out, "Aborting directory scan.")
			}
			return err
		}

		switch td.Status {
		case diff.StatusMatches:
			matches++
		case diff.StatusDiffers:
			differs++
		case diff.StatusLeftOnly:
			leftOnly++
		case diff.StatusRightOnly:
			rightOnly++
		}
		if err := r.row(cfg.displayDiff(td)); err != nil {
			return err
		}
	}

	stats := d.Stats()
	slog.Info("scan complete",
		"matches", matches,
		"differs", differs,
		"left_only", leftOnly,
		"right_only", rightOnly,
		"entries", humanize.Comma(stats.EntriesScanned),
		"compared", humanize.IBytes(uint64(stats.BytesCompared)),
		"took", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// newRenderer picks the output format. The table needs the widest display
// path before the first row, so both roots are measured up front,
// concurrently.
func newRenderer(cfg *Config, left, right billy.Filesystem, out io.Writer) (renderer, error) {
	if cfg.JSON {
		return newJSONRenderer(out), nil
	}

	var lw, rw int
	var g errgroup.Group
	g.Go(func() error {
		var err error
		if lw, err = columnWidth(left, cfg.displayLeft(), cfg.Depth); err != nil {
			return fmt.Errorf("left: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if rw, err = columnWidth(right, cfg.displayRight(), cfg.Depth); err != nil {
			return fmt.Errorf("right: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return newTableRenderer(out, max(lw, rw)), nil
}

// columnWidth returns the length of the longest display path down to the
// merge depth, the display root included.
func columnWidth(fsys billy.Filesystem, displayRoot string, depth int) (int, error) {
	width := len(displayRoot)
	for e, err := range diff.Walk(fsys, "/", diff.WithMaxDepth(depth)) {
		if err != nil {
			return 0, err
		}
		if e.Path == "." {
			continue
		}
		if n := len(filepath.Join(displayRoot, filepath.FromSlash(e.Path))); n > width {
			width = n
		}
	}
	return width, nil
}

// displayDiff rewrites engine relative paths into display paths under the
// user's roots. Absent sides stay empty.
func (c *Config) displayDiff(td diff.TreeDiff) diff.TreeDiff {
	if td.Left != "" {
		td.Left = filepath.Join(c.displayLeft(), filepath.FromSlash(td.Left))
	}
	if td.Right != "" {
		td.Right = filepath.Join(c.displayRight(), filepath.FromSlash(td.Right))
	}
	return td
}
