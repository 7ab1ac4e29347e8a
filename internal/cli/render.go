package cli

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/fatih/color"

	"github.com/treediff/treediff/internal/diff"
)

// Marker cells are all exactly eleven characters wide so the two path
// columns line up whichever way a row leans.
const (
	markerMatches   = "  MATCHES  "
	markerDiffers   = "  DIFFERS  "
	markerLeftOnly  = "< ONLY IN  "
	markerRightOnly = "  ONLY IN >"
)

var (
	matchColor  = color.New(color.FgHiGreen).SprintFunc()
	differColor = color.New(color.FgHiRed, color.Bold).SprintFunc()
	onlyColor   = color.New(color.FgHiCyan).SprintFunc()
)

// renderer emits one comparison result at a time.
type renderer interface {
	begin(left, right string) error
	row(td diff.TreeDiff) error
}

// tableRenderer prints the aligned three column table. Both path columns
// are left aligned and padded to the same width; only the marker cell is
// colored, so the padding math never sees an escape code.
type tableRenderer struct {
	w     io.Writer
	width int
}

func newTableRenderer(w io.Writer, width int) *tableRenderer {
	return &tableRenderer{w: w, width: width}
}

func (r *tableRenderer) begin(left, right string) error {
	_, err := fmt.Fprintf(r.w, "%-*s    -------    %-*s\n", r.width, left, r.width, right)
	return err
}

func (r *tableRenderer) row(td diff.TreeDiff) error {
	_, err := fmt.Fprintln(r.w, displayTreeDiff(td, r.width))
	return err
}

func displayTreeDiff(td diff.TreeDiff, width int) string {
	var marker string
	switch td.Status {
	case diff.StatusMatches:
		marker = matchColor(markerMatches)
	case diff.StatusDiffers:
		marker = differColor(markerDiffers)
	case diff.StatusLeftOnly:
		marker = onlyColor(markerLeftOnly)
	case diff.StatusRightOnly:
		marker = onlyColor(markerRightOnly)
	}
	return fmt.Sprintf("%-*s  %s  %-*s", width, td.Left, marker, width, td.Right)
}

// jsonRenderer emits one JSON object per result line.
type jsonRenderer struct {
	enc sonic.Encoder
}

func newJSONRenderer(w io.Writer) *jsonRenderer {
	return &jsonRenderer{enc: sonic.ConfigDefault.NewEncoder(w)}
}

func (r *jsonRenderer) begin(left, right string) error {
	return nil
}

func (r *jsonRenderer) row(td diff.TreeDiff) error {
	return r.enc.Encode(td)
}
