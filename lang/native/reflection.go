package native

import (
	"github.com/mna/liane/lang/eval"
	"github.com/mna/liane/lang/heap"
)

// registerReflection installs the introspection natives
// original_source/src/native/reflection/mod.rs exposes beyond spec §6's
// representative wire surface: reading a function's parameters/body/
// environment/metadata back out as data. These are exercised by anything
// built on top of `get-metadata` and by macros that need to inspect a
// function value before calling it. original_source also exposes a
// destructure-trap native, but trap is reserved syntax here rather than a
// first-class value (spec §4.5's evaluation rule runs directly off the
// unevaluated (trap normal-body trap-body) call form — see evalTrap in
// lang/eval), so there is no constructed Trap value left to destructure.
func registerReflection(r Registry) {
	r["get-parameters"] = native(heap.Lambda, getParametersNative)
	r["get-body"] = native(heap.Lambda, getBodyNative)
	r["get-environment"] = native(heap.Lambda, getEnvironmentNative)
	r["get-metadata"] = native(heap.Lambda, getMetadataNative)
}

func getParametersNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if sig := requireArity(h, "get-parameters", args, 1); sig != nil {
		return heap.Nil, sig
	}
	fn, sig := asFunction(h, "get-parameters", args[0])
	if sig != nil {
		return heap.Nil, sig
	}
	if !fn.Rest.IsNil() {
		// rebuild the (a b & rest) surface form, not just the fixed params,
		// so get-parameters round-trips through lambda's own parser.
		amp := h.Intern("&")
		tail := h.NewCons(fn.Rest, heap.Nil)
		tail = h.NewCons(amp, tail)
		for i := len(fn.Params) - 1; i >= 0; i-- {
			tail = h.NewCons(fn.Params[i], tail)
		}
		return tail, nil
	}
	return eval.SliceToList(h, fn.Params), nil
}

func getBodyNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if sig := requireArity(h, "get-body", args, 1); sig != nil {
		return heap.Nil, sig
	}
	fn, sig := asFunction(h, "get-body", args[0])
	if sig != nil {
		return heap.Nil, sig
	}
	return fn.Body, nil
}

func getEnvironmentNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if sig := requireArity(h, "get-environment", args, 1); sig != nil {
		return heap.Nil, sig
	}
	fn, sig := asFunction(h, "get-environment", args[0])
	if sig != nil {
		return heap.Nil, sig
	}
	return fn.Env, nil
}

func getMetadataNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if sig := requireArity(h, "get-metadata", args, 1); sig != nil {
		return heap.Nil, sig
	}
	md, ok := args[0].Metadata()
	if !ok {
		return heap.Nil, nil
	}
	name := h.NewString(md.Name)
	doc := h.NewString(md.Documentation)
	loc := h.NewString(md.Location.String())
	return h.NewCons(name, h.NewCons(doc, h.NewCons(loc, heap.Nil))), nil
}
