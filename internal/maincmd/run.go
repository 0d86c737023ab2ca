package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/liane/lang/eval"
	"github.com/mna/liane/lang/heap"
	"github.com/mna/liane/lang/native"
	"github.com/mna/liane/lang/reader"
	"github.com/mna/liane/lang/source"
	"github.com/mna/mainer"
)

// Run loads and evaluates every form in each file in turn, in a single
// shared heap and environment so later files can reference definitions
// made by earlier ones. An uncaught signal from any form aborts the whole
// run and is printed to stderr, per spec §6's exit contract.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	h := native.Bootstrap()
	env := eval.NewEnv(h, heap.Nil)
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return printError(stdio, err)
		}
		rd := reader.New(h, string(data), source.NewFile(path, 1, 1))
		for {
			res := rd.Read()
			if res.Status == reader.StatusNothing {
				break
			}
			if res.Status != reader.StatusOK {
				return printError(stdio, fmt.Errorf("%s: %s: %s", path, res.Status, res.Err))
			}
			if _, sig := eval.Eval(h, res.Value, env, 0); sig != nil {
				return printError(stdio, fmt.Errorf("%s: uncaught signal: %s", path, reader.Print(sig.Value)))
			}
		}
	}
	return nil
}
