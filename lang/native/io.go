package native

import (
	"bufio"
	"io"
	"os"

	"github.com/mna/liane/lang/heap"
)

// registerIO installs `input`/`output` (against the process's stdin/
// stdout) and the `input-file`/`output-file` path variants, supplementing
// spec §6's representative list per original_source/src/native/io/mod.rs.
func registerIO(r Registry) {
	r["input"] = native(heap.Lambda, inputNative(os.Stdin))
	r["output"] = native(heap.Lambda, outputNative(os.Stdout))
	r["input-file"] = native(heap.Lambda, inputFileNative)
	r["output-file"] = native(heap.Lambda, outputFileNative)
}

// inputNative reads one line from r, returning it as a string (a list of
// characters), or Nil at end of input.
func inputNative(r io.Reader) heap.NativeFunc {
	br := bufio.NewReader(r)
	return func(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
		if sig := requireArity(h, "input", args, 0); sig != nil {
			return heap.Nil, sig
		}
		line, err := br.ReadString('\n')
		if err != nil && line == "" {
			return heap.Nil, nil
		}
		return h.NewString(trimNewline(line)), nil
	}
}

func outputNative(w io.Writer) heap.NativeFunc {
	return func(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
		if sig := requireArity(h, "output", args, 1); sig != nil {
			return heap.Nil, sig
		}
		s, sig := stringFromList(h, args[0])
		if sig != nil {
			return heap.Nil, sig
		}
		io.WriteString(w, s)
		return args[0], nil
	}
}

func inputFileNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if sig := requireArity(h, "input-file", args, 1); sig != nil {
		return heap.Nil, sig
	}
	path, sig := stringFromList(h, args[0])
	if sig != nil {
		return heap.Nil, sig
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return heap.Nil, &heap.Signal{Value: h.NewError(heap.ErrIO, "input-file",
			heap.Detail{Key: "message", Value: h.NewString(err.Error())})}
	}
	return h.NewString(string(data)), nil
}

func outputFileNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if sig := requireArity(h, "output-file", args, 2); sig != nil {
		return heap.Nil, sig
	}
	path, sig := stringFromList(h, args[0])
	if sig != nil {
		return heap.Nil, sig
	}
	content, sig := stringFromList(h, args[1])
	if sig != nil {
		return heap.Nil, sig
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return heap.Nil, &heap.Signal{Value: h.NewError(heap.ErrIO, "output-file",
			heap.Detail{Key: "message", Value: h.NewString(err.Error())})}
	}
	return args[0], nil
}

func trimNewline(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '\r' {
		s = s[:len(s)-1]
	}
	return s
}
