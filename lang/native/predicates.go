package native

import (
	"github.com/mna/liane/lang/eval"
	"github.com/mna/liane/lang/heap"
)

// registerPredicates installs the type-inspection and structural-equality
// natives, grounded in original_source/src/native/{functions,misc}/mod.rs.
func registerPredicates(r Registry) {
	r["equal"] = native(heap.Lambda, equalNative)
	r["type-of"] = native(heap.Lambda, typeOfNative)
}

func equalNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if sig := requireArity(h, "equal", args, 2); sig != nil {
		return heap.Nil, sig
	}
	if Equal(args[0], args[1]) {
		return h.Intern("true"), nil
	}
	return heap.Nil, nil
}

// Equal implements spec §4.2's structural equality: numbers/characters by
// value, symbols by identity, pairs recursively, everything else
// (functions, modules) by identity.
func Equal(a, b heap.Handle) bool {
	if a.IsNil() && b.IsNil() {
		return true
	}
	if a.IsNil() || b.IsNil() {
		return false
	}
	av, _ := a.Get()
	bv, _ := b.Get()
	switch x := av.(type) {
	case heap.Int:
		y, ok := bv.(heap.Int)
		return ok && x == y
	case heap.Char:
		y, ok := bv.(heap.Char)
		return ok && x == y
	case *heap.Symbol:
		return heap.Identical(a, b)
	case *heap.Cons:
		y, ok := bv.(*heap.Cons)
		return ok && Equal(x.Car, y.Car) && Equal(x.Cdr, y.Cdr)
	default:
		return heap.Identical(a, b)
	}
}

func typeOfNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if sig := requireArity(h, "type-of", args, 1); sig != nil {
		return heap.Nil, sig
	}
	return h.Intern(Classify(args[0])), nil
}

// Classify reports the structural type name of v per spec §4.2: "nil" for
// the empty list, "list" for a proper list of length > 0, "string" for a
// proper list whose every element is a character, and each Value's own
// TypeName() otherwise.
func Classify(v heap.Handle) string {
	if v.IsNil() {
		return "nil"
	}
	val, ok := v.Get()
	if !ok {
		return "nil"
	}
	cons, ok := val.(*heap.Cons)
	if !ok {
		return val.TypeName()
	}
	if carVal, ok := cons.Car.Get(); ok {
		if sym, ok := carVal.(*heap.Symbol); ok && sym.Name() == "list" {
			v = cons.Cdr
		}
	}
	items, proper := eval.ListToSlice(v)
	if !proper {
		return cons.TypeName()
	}
	allChars := true
	for _, it := range items {
		iv, ok := it.Get()
		if !ok {
			allChars = false
			break
		}
		if _, isChar := iv.(heap.Char); !isChar {
			allChars = false
			break
		}
	}
	if allChars {
		return "string"
	}
	return "list"
}
