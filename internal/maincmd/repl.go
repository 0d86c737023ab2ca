package maincmd

import (
	"bufio"
	"context"
	"fmt"

	"github.com/mna/liane/lang/eval"
	"github.com/mna/liane/lang/heap"
	"github.com/mna/liane/lang/native"
	"github.com/mna/liane/lang/reader"
	"github.com/mna/liane/lang/source"
	"github.com/mna/mainer"
)

// Repl runs an interactive read-eval-print loop against stdin/stdout. Each
// line is fed to the reader; an StatusIncomplete result prompts for another
// line and retries rather than reporting an error, so a multi-line `(define
// ...)` typed across several Enter presses reads correctly — the same
// `reset-and-run` pattern original_source/src/native/repl/mod.rs implements
// at the native layer is reproduced here at the shell layer instead, since
// spec.md scopes shells out of the language itself.
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
	h := native.Bootstrap()
	in := bufio.NewScanner(stdio.Stdin)
	line := 1
	var buf string
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		fmt.Fprint(stdio.Stdout, "> ")
		if !in.Scan() {
			return nil
		}
		buf += in.Text() + "\n"
		rd := reader.New(h, buf, source.NewStdin(line, 1))
		res := rd.Read()
		switch res.Status {
		case reader.StatusNothing:
			buf = ""
			line++
			continue
		case reader.StatusIncomplete:
			line++
			continue // keep buf, prompt for more input
		case reader.StatusOK:
			buf = res.Rest
			line++
			v, sig := eval.Eval(h, res.Value, eval.NewEnv(h, heap.Nil), 0)
			if sig != nil {
				printError(stdio, fmt.Errorf("signal: %s", describeSignal(sig)))
				continue
			}
			fmt.Fprintln(stdio.Stdout, reader.Print(v))
		default:
			printError(stdio, fmt.Errorf("%s: %s", res.Status, res.Err))
			buf = ""
			line++
		}
	}
}

func describeSignal(s *heap.Signal) string {
	if s.IsAbort() {
		return "<abort>"
	}
	return reader.Print(s.Value)
}
