// Package key provides CLI helpers to display the listing legend.
package key

import (
	"context"
	"io"

	"tableflip.dev/taskverse/pkg/printers"
)

// Key prints a glyph legend describing bullets and signifiers.
type Key struct {
	Out io.Writer
}

// Do renders the bullet and signifier keys.
func (k *Key) Do(_ context.Context) error {
	pp := printers.PrettyPrint{Out: k.Out}
	glyphs := printers.DefaultGlyphs()

	pp.NewLine()
	pp.Key(glyphs, false)
	pp.NewLine()
	pp.Key(glyphs, true)
	pp.NewLine()
	return nil
}
