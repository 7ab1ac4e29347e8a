// Package cli runs one tree comparison end to end: it resolves the two
// roots, drives the merge at the requested depth and renders every result
// as it arrives, either as the classic aligned table or as JSON lines.
package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/treediff/treediff/internal/utils"
)

// Config carries everything one comparison run needs. Left and Right are
// the roots as the user gave them; Validate resolves them and keeps the
// absolute forms for filesystem access, while display output uses the
// cleaned form of the user's spelling.
type Config struct {
	Left     string
	Right    string
	Depth    int
	Excludes []string
	JSON     bool
	NoColor  bool

	leftRoot  string
	rightRoot string
}

// Validate checks the depth, resolves both roots and verifies they are
// existing directories.
func (c *Config) Validate() error {
	if c.Left == "" || c.Right == "" {
		return errors.New("two directory paths are required")
	}
	if c.Depth < 1 {
		return fmt.Errorf("depth must be at least 1, got %d", c.Depth)
	}

	var err error
	if c.leftRoot, err = utils.ResolvePath(c.Left); err != nil {
		return fmt.Errorf("resolve %q: %w", c.Left, err)
	}
	if c.rightRoot, err = utils.ResolvePath(c.Right); err != nil {
		return fmt.Errorf("resolve %q: %w", c.Right, err)
	}

	if !utils.DirExists(c.leftRoot) {
		return fmt.Errorf("%q is not a directory", c.Left)
	}
	if !utils.DirExists(c.rightRoot) {
		return fmt.Errorf("%q is not a directory", c.Right)
	}
	return nil
}

// displayLeft is the left root as shown in output.
func (c *Config) displayLeft() string {
	return filepath.Clean(c.Left)
}

// displayRight is the right root as shown in output.
func (c *Config) displayRight() string {
	return filepath.Clean(c.Right)
}
