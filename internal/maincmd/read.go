package maincmd

import (
	"context"

	"github.com/mna/mainer"
)

// Read runs the reader over each file and prints every form it recognizes,
// re-printed in the language's own notation — a round-trip check runnable
// from the command line, same purpose as the teacher's `parse` command but
// over this reader's own output shape rather than an AST dump.
func (c *Cmd) Read(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return readFiles(stdio, args)
}
