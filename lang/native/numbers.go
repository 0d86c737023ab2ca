package native

import "github.com/mna/liane/lang/heap"

// registerNumbers installs the arithmetic primitives, grounded in
// original_source/src/native/numbers/mod.rs, including its checked-overflow
// behavior (spec §8 lists arithmetic overflow as a testable property: it
// signals rather than wrapping).
func registerNumbers(r Registry) {
	r["add"] = native(heap.Lambda, foldArith("add", 0, addOverflow))
	r["subtract"] = native(heap.Lambda, subtractNative)
	r["multiply"] = native(heap.Lambda, foldArith("multiply", 1, mulOverflow))
	r["divide"] = native(heap.Lambda, divideNative)
}

func foldArith(name string, identity int64, step func(a, b int64) (int64, bool)) heap.NativeFunc {
	return func(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
		acc := identity
		for _, a := range args {
			n, sig := asInt(h, name, a)
			if sig != nil {
				return heap.Nil, sig
			}
			var ok bool
			acc, ok = step(acc, n)
			if !ok {
				return heap.Nil, &heap.Signal{Value: h.NewError(heap.ErrOverflow, name)}
			}
		}
		return h.NewInt(acc), nil
	}
}

func subtractNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if sig := requireMinArity(h, "subtract", args, 1); sig != nil {
		return heap.Nil, sig
	}
	first, sig := asInt(h, "subtract", args[0])
	if sig != nil {
		return heap.Nil, sig
	}
	if len(args) == 1 {
		neg, ok := subOverflow(0, first)
		if !ok {
			return heap.Nil, &heap.Signal{Value: h.NewError(heap.ErrOverflow, "subtract")}
		}
		return h.NewInt(neg), nil
	}
	acc := first
	for _, a := range args[1:] {
		n, sig := asInt(h, "subtract", a)
		if sig != nil {
			return heap.Nil, sig
		}
		var ok bool
		acc, ok = subOverflow(acc, n)
		if !ok {
			return heap.Nil, &heap.Signal{Value: h.NewError(heap.ErrOverflow, "subtract")}
		}
	}
	return h.NewInt(acc), nil
}

func divideNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if sig := requireMinArity(h, "divide", args, 2); sig != nil {
		return heap.Nil, sig
	}
	acc, sig := asInt(h, "divide", args[0])
	if sig != nil {
		return heap.Nil, sig
	}
	for _, a := range args[1:] {
		n, sig := asInt(h, "divide", a)
		if sig != nil {
			return heap.Nil, sig
		}
		if n == 0 {
			return heap.Nil, &heap.Signal{Value: h.NewError(heap.ErrDivideByZero, "divide")}
		}
		if acc == -1<<63 && n == -1 {
			return heap.Nil, &heap.Signal{Value: h.NewError(heap.ErrOverflow, "divide")}
		}
		acc /= n
	}
	return h.NewInt(acc), nil
}

func addOverflow(a, b int64) (int64, bool) {
	r := a + b
	if (b > 0 && r < a) || (b < 0 && r > a) {
		return 0, false
	}
	return r, true
}

func subOverflow(a, b int64) (int64, bool) {
	r := a - b
	if (b < 0 && r < a) || (b > 0 && r > a) {
		return 0, false
	}
	return r, true
}

func mulOverflow(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == -1<<63) || (b == -1 && a == -1<<63) {
		return 0, false
	}
	r := a * b
	if r/b != a {
		return 0, false
	}
	return r, true
}
