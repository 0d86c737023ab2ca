package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/liane/lang/native"
	"github.com/mna/liane/lang/reader"
	"github.com/mna/liane/lang/source"
	"github.com/mna/mainer"
)

// Tokenize runs the reader over each file and prints one line per form it
// recognizes: its status, location, and re-printed value (or error
// message). Unlike a classic tokenizer dump, the reader here produces heap
// cells directly rather than an intermediate token stream (spec §4.4), so
// this reports reader Results rather than individual lexical tokens.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return readFiles(stdio, args)
}

func readFiles(stdio mainer.Stdio, files []string) error {
	h := native.Bootstrap()
	var firstErr error
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			firstErr = err
			continue
		}
		rd := reader.New(h, string(data), source.NewFile(path, 1, 1))
		for {
			res := rd.Read()
			if res.Status == reader.StatusNothing {
				break
			}
			fmt.Fprintf(stdio.Stdout, "%s: %s", res.Location, res.Status)
			if res.Status == reader.StatusOK {
				fmt.Fprintf(stdio.Stdout, " %s", reader.Print(res.Value))
			} else if res.Err != "" {
				fmt.Fprintf(stdio.Stdout, " %s", res.Err)
			}
			fmt.Fprintln(stdio.Stdout)
			if res.Status != reader.StatusOK {
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %s", path, res.Status)
				}
				break
			}
		}
	}
	return firstErr
}
