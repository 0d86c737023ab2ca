// Package native implements the builtin function registry: the concrete Go
// implementations of the core natives named in spec §6, plus the
// reflection and I/O natives original_source supplies beyond that
// representative list. It depends on both lang/heap and lang/eval (natives
// that receive unevaluated arguments, like `quote` and `define`, call back
// into eval.Eval themselves), which is why it sits above eval in the
// dependency stack rather than beside it.
//
// Grounded in original_source/src/native/{functions,list,numbers,globals,
// misc,io,reflection}/mod.rs for behavior, and in the teacher's
// internal/builtins-style registration table for the Go shape of a
// name-to-implementation map.
package native

import (
	"github.com/mna/liane/lang/heap"
)

// Registry holds every native function, keyed by the name it is exported
// under. Install installs them into a module.
type Registry map[string]*heap.Function

// Core builds the registry for the single built-in module every heap loads
// at startup, analogous to original_source's "core" module that every other
// module implicitly sees via export-set resolution (spec §4.5).
func Core() Registry {
	r := Registry{}
	registerControl(r)
	registerList(r)
	registerNumbers(r)
	registerPredicates(r)
	registerIO(r)
	registerReflection(r)
	return r
}

// Install allocates every function in r into h and defines+exports it from
// m, returning m for chaining.
func (r Registry) Install(h *heap.Heap, m *heap.Module) *heap.Module {
	for name, fn := range r {
		fn.Name = name
		handle := h.NewFunction(fn).Retain()
		m.Define(name, handle, true)
	}
	return m
}

func native(kind heap.FuncKind, fn heap.NativeFunc) *heap.Function {
	return &heap.Function{Kind: kind, Native: fn}
}

// arityError builds the standard wrong-arity signal.
func arityError(h *heap.Heap, name string, want, got int) *heap.Signal {
	return &heap.Signal{Value: h.NewError(heap.ErrWrongArity, name,
		heap.Detail{Key: "expected", Value: h.NewInt(int64(want))},
		heap.Detail{Key: "actual", Value: h.NewInt(int64(got))})}
}

func typeError(h *heap.Heap, name, expected string) *heap.Signal {
	return &heap.Signal{Value: h.NewError(heap.ErrWrongType, name,
		heap.Detail{Key: "expected", Value: h.Intern(expected)})}
}

// requireArity checks a fixed argument count.
func requireArity(h *heap.Heap, name string, args []heap.Handle, n int) *heap.Signal {
	if len(args) != n {
		return arityError(h, name, n, len(args))
	}
	return nil
}

// requireMinArity checks a variadic lower bound.
func requireMinArity(h *heap.Heap, name string, args []heap.Handle, n int) *heap.Signal {
	if len(args) < n {
		return arityError(h, name, n, len(args))
	}
	return nil
}

func asInt(h *heap.Heap, name string, v heap.Handle) (int64, *heap.Signal) {
	val, ok := v.Get()
	if !ok {
		return 0, typeError(h, name, "number")
	}
	n, ok := val.(heap.Int)
	if !ok {
		return 0, typeError(h, name, "number")
	}
	return int64(n), nil
}

func asSymbol(h *heap.Heap, name string, v heap.Handle) (*heap.Symbol, *heap.Signal) {
	val, ok := v.Get()
	if !ok {
		return nil, typeError(h, name, "symbol")
	}
	s, ok := val.(*heap.Symbol)
	if !ok {
		return nil, typeError(h, name, "symbol")
	}
	return s, nil
}

func asCons(h *heap.Heap, name string, v heap.Handle) (*heap.Cons, *heap.Signal) {
	val, ok := v.Get()
	if !ok {
		return nil, typeError(h, name, "pair")
	}
	c, ok := val.(*heap.Cons)
	if !ok {
		return nil, typeError(h, name, "pair")
	}
	return c, nil
}

func asFunction(h *heap.Heap, name string, v heap.Handle) (*heap.Function, *heap.Signal) {
	val, ok := v.Get()
	if !ok {
		return nil, typeError(h, name, "function")
	}
	f, ok := val.(*heap.Function)
	if !ok {
		return nil, typeError(h, name, "function")
	}
	return f, nil
}

