package native

import (
	"strings"

	"github.com/mna/liane/lang/eval"
	"github.com/mna/liane/lang/heap"
	"github.com/mna/liane/lang/reader"
	"github.com/mna/liane/lang/source"
)

// stringFromList converts the language's list-of-characters string
// representation back into a Go string. A leading `list` marker symbol
// (the reader's own string notation, spec §4.4) is accepted and skipped;
// the structural classification itself doesn't require it.
func stringFromList(h *heap.Heap, list heap.Handle) (string, *heap.Signal) {
	if val, ok := list.Get(); ok {
		if cons, ok := val.(*heap.Cons); ok {
			if carVal, ok := cons.Car.Get(); ok {
				if sym, ok := carVal.(*heap.Symbol); ok && sym.Name() == "list" {
					list = cons.Cdr
				}
			}
		}
	}
	items, ok := eval.ListToSlice(list)
	if !ok {
		return "", typeError(h, "string", "proper list of characters")
	}
	var b strings.Builder
	for _, it := range items {
		val, ok := it.Get()
		if !ok {
			return "", typeError(h, "string", "character")
		}
		ch, ok := val.(heap.Char)
		if !ok {
			return "", typeError(h, "string", "character")
		}
		b.WriteRune(rune(ch))
	}
	return b.String(), nil
}

// evalSource reads every form out of text in turn and evaluates each,
// returning the value of the last one (Nil if text held no forms). A read
// error or an uncaught signal aborts the whole load, matching `load-all`'s
// description in original_source/src/native/globals/mod.rs.
func evalSource(h *heap.Heap, text string, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	rd := reader.New(h, text, source.NewNative())
	e := eval.NewEnv(h, env)
	result := heap.Nil
	for {
		res := rd.Read()
		switch res.Status {
		case reader.StatusNothing:
			return result, nil
		case reader.StatusOK:
			v, sig := eval.Eval(h, res.Value, e, depth+1)
			if sig != nil {
				return heap.Nil, sig
			}
			result = v
		default:
			return heap.Nil, &heap.Signal{Value: h.NewError(heap.ErrReadInvalid, "load-all",
				heap.Detail{Key: "message", Value: h.NewString(res.Err)})}
		}
	}
}
