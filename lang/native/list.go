package native

import "github.com/mna/liane/lang/heap"

// registerList installs the pair/list primitives, grounded in
// original_source/src/native/list/mod.rs.
func registerList(r Registry) {
	r["cons"] = native(heap.Lambda, consNative)
	r["car"] = native(heap.Lambda, carNative)
	r["cdr"] = native(heap.Lambda, cdrNative)
	r["list"] = native(heap.Lambda, listNative)
	r["get-property"] = native(heap.Lambda, getPropertyNative)
	r["unrest"] = native(heap.Lambda, unrestNative)
}

func consNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if sig := requireArity(h, "cons", args, 2); sig != nil {
		return heap.Nil, sig
	}
	return h.NewCons(args[0], args[1]), nil
}

func carNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if sig := requireArity(h, "car", args, 1); sig != nil {
		return heap.Nil, sig
	}
	c, sig := asCons(h, "car", args[0])
	if sig != nil {
		return heap.Nil, sig
	}
	return c.Car, nil
}

func cdrNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if sig := requireArity(h, "cdr", args, 1); sig != nil {
		return heap.Nil, sig
	}
	c, sig := asCons(h, "cdr", args[0])
	if sig != nil {
		return heap.Nil, sig
	}
	return c.Cdr, nil
}

func listNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	list := heap.Nil
	for i := len(args) - 1; i >= 0; i-- {
		list = h.NewCons(args[i], list)
	}
	return list, nil
}

// getPropertyNative implements (get-property list index), a bounds-checked
// nth, named after original_source's property-list accessor idiom.
func getPropertyNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if sig := requireArity(h, "get-property", args, 2); sig != nil {
		return heap.Nil, sig
	}
	n, sig := asInt(h, "get-property", args[1])
	if sig != nil {
		return heap.Nil, sig
	}
	cur := args[0]
	for i := int64(0); i < n; i++ {
		c, sig := asCons(h, "get-property", cur)
		if sig != nil {
			return heap.Nil, sig
		}
		cur = c.Cdr
	}
	c, sig := asCons(h, "get-property", cur)
	if sig != nil {
		return heap.Nil, sig
	}
	return c.Car, nil
}

// unrestNative implements the inverse of a rest-parameter bind: given a
// list, returns (car . cdr) conceptually split as two values via a pair —
// (unrest list) => (cons (car list) (cdr list)), used by macros that need
// to peel one argument off a captured rest list without two separate
// calls.
func unrestNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if sig := requireArity(h, "unrest", args, 1); sig != nil {
		return heap.Nil, sig
	}
	c, sig := asCons(h, "unrest", args[0])
	if sig != nil {
		return heap.Nil, sig
	}
	return h.NewCons(c.Car, c.Cdr), nil
}
