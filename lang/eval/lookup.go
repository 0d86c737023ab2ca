package eval

import "github.com/mna/liane/lang/heap"

// Resolve looks up sym against e first, then, if unbound lexically, against
// every module's bindings visible to e.QueryModule(): exported bindings of
// any module, plus the querying module's own unexported ones (spec §4.5: no
// explicit imports; it errors if more than one module contributes that
// name).
func Resolve(h *heap.Heap, e Env, sym heap.Handle) (heap.Handle, *heap.Signal) {
	if v, ok := e.Lookup(sym); ok {
		return v, nil
	}
	symVal, _ := sym.Get()
	s, ok := symVal.(*heap.Symbol)
	if !ok {
		return heap.Nil, signalRuntimeError(h, heap.ErrWrongType, "eval")
	}
	querying := e.QueryModule()
	_, v, ambiguous := heap.ResolveGlobal(h.Modules(), s.Name(), querying)
	if ambiguous != nil {
		return heap.Nil, signalRuntimeError(h, heap.ErrAmbiguousName, "eval", heap.Detail{Key: "name", Value: sym})
	}
	if v.IsNil() && !definedAsNil(h, s.Name(), querying) {
		return heap.Nil, signalRuntimeError(h, heap.ErrUnbound, "eval", heap.Detail{Key: "name", Value: sym})
	}
	return v, nil
}

// definedAsNil disambiguates "no module contributes this name" from "a
// module contributes this name and its value happens to be Nil" — Resolve
// only keeps ResolveGlobal's value result, which is the zero Handle in both
// cases.
func definedAsNil(h *heap.Heap, name, querying string) bool {
	_, _, ambiguous := heap.ResolveGlobal(h.Modules(), name, querying)
	if ambiguous != nil {
		return false
	}
	for _, m := range h.Modules() {
		if !m.Exports(name) && m.Name != querying {
			continue
		}
		if _, ok := m.Lookup(name); ok {
			return true
		}
	}
	return false
}

func signalRuntimeError(h *heap.Heap, kind heap.ErrorKind, source string, details ...heap.Detail) *heap.Signal {
	return &heap.Signal{Value: h.NewError(kind, source, details...)}
}
