package native

import (
	"github.com/mna/liane/lang/eval"
	"github.com/mna/liane/lang/heap"
	"github.com/mna/liane/lang/source"
)

// registerControl installs the control natives: quote, the lambda/macro
// constructors and define/undefine/export, which take their arguments raw
// and unevaluated, plus signal, gensym, eval, macroexpand and load-all,
// which take evaluated arguments — grounded in
// original_source/src/native/{functions,globals,eval}/mod.rs. `trap` itself
// is not a native at all: like branch and eval it is reserved syntax the
// core loop in lang/eval recognizes directly, since catching a signal has
// to run its handler in a context the loop controls (spec §4.5).
func registerControl(r Registry) {
	r["quote"] = native(heap.Special, quoteNative)
	r["lambda"] = native(heap.Special, lambdaConstructor(heap.Lambda))
	r["macro"] = native(heap.Special, lambdaConstructor(heap.Macro))
	r["define"] = native(heap.Special, defineNative)
	r["undefine"] = native(heap.Special, undefineNative)
	r["export"] = native(heap.Special, exportNative)
	r["signal"] = native(heap.Lambda, signalNative)
	r["gensym"] = native(heap.Lambda, gensymNative)
	r["eval"] = native(heap.Lambda, evalReentryNative)
	r["macroexpand"] = native(heap.Lambda, macroexpandNative)
	r["load-all"] = native(heap.Lambda, loadAllNative)
}

// quoteNative returns its single argument unevaluated and as-is: registered
// as heap.Special, its result is never macroexpanded or evaluated again,
// so returning the raw argument handle is already correct — matching
// original_source's `quote` as a SpecialLambda rather than a true macro.
func quoteNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if sig := requireArity(h, "quote", args, 1); sig != nil {
		return heap.Nil, sig
	}
	return args[0], nil
}

// lambdaConstructor builds the native backing both `lambda` and `macro`:
// (lambda (params... [& rest]) body...) / (macro (params...) body...).
func lambdaConstructor(kind heap.FuncKind) heap.NativeFunc {
	return func(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
		if sig := requireMinArity(h, kind.String(), args, 1); sig != nil {
			return heap.Nil, sig
		}
		params, rest, sig := parseParamList(h, args[0])
		if sig != nil {
			return heap.Nil, sig
		}
		body := eval.SliceToList(h, args[1:])
		fn := &heap.Function{
			Kind:   kind,
			Params: params,
			Rest:   rest,
			Body:   body,
			Env:    env,
			Module: h.CurrentModule().Name,
		}
		return h.NewFunction(fn), nil
	}
}

// parseParamList reads a parameter list of the form (a b c) or, with a rest
// parameter, (a b & rest) — the separator symbol `&` must appear exactly
// one position before the final parameter name, matching
// original_source/src/native/functions/mod.rs's rest_param_symbol handling.
// It returns the fixed parameter symbols and, if present, the rest symbol
// (heap.Nil if fixed-arity).
func parseParamList(h *heap.Heap, list heap.Handle) ([]heap.Handle, heap.Handle, *heap.Signal) {
	items, ok := eval.ListToSlice(list)
	if !ok {
		return nil, heap.Nil, typeError(h, "lambda", "parameter list")
	}
	amp := h.Intern("&")
	var params []heap.Handle
	for i, item := range items {
		sym, sig := asSymbol(h, "lambda", item)
		if sig != nil {
			return nil, heap.Nil, sig
		}
		if heap.Identical(item, amp) {
			switch {
			case i+2 == len(items):
				return params, items[i+1], nil
			case i+2 > len(items):
				return nil, heap.Nil, &heap.Signal{Value: h.NewError(heap.ErrWrongType, "lambda",
					heap.Detail{Key: "message", Value: h.NewString("missing-rest-parameter")})}
			default:
				return nil, heap.Nil, &heap.Signal{Value: h.NewError(heap.ErrWrongType, "lambda",
					heap.Detail{Key: "message", Value: h.NewString("too many parameters after &")})}
			}
		}
		_ = sym
		params = append(params, item)
	}
	return params, heap.Nil, nil
}

// defineNative implements top-level binding: (define name value) or
// (define name "doc" value). Redefining an existing name in the current
// module is an `already-defined` error (spec §4.5) unless undefine was
// called first.
func defineNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if len(args) != 2 && len(args) != 3 {
		return heap.Nil, arityError(h, "define", 2, len(args))
	}
	sym, sig := asSymbol(h, "define", args[0])
	if sig != nil {
		return heap.Nil, sig
	}
	valExpr := args[len(args)-1]
	value, sig := eval.Eval(h, valExpr, eval.NewEnv(h, env), depth+1)
	if sig != nil {
		return heap.Nil, sig
	}
	m := h.CurrentModule()
	if _, exists := m.Lookup(sym.Name()); exists {
		return heap.Nil, &heap.Signal{Value: h.NewError(heap.ErrAlreadyDefined, "define",
			heap.Detail{Key: "name", Value: args[0]})}
	}
	// define creates a private binding; export (below) promotes one to
	// visible-from-other-modules, matching spec §4.3's separate
	// define_global/add_export operations — define no longer exports on its
	// own, so a module's non-exported globals are genuinely invisible from
	// outside it.
	m.Define(sym.Name(), value.Retain(), false)
	return args[0], nil
}

// exportNative implements spec §4.3's add_export(name): marks an existing
// binding of the current module visible to other modules' global
// resolution, without redefining its value.
func exportNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if sig := requireArity(h, "export", args, 1); sig != nil {
		return heap.Nil, sig
	}
	sym, sig := asSymbol(h, "export", args[0])
	if sig != nil {
		return heap.Nil, sig
	}
	m := h.CurrentModule()
	v, ok := m.Lookup(sym.Name())
	if !ok {
		return heap.Nil, &heap.Signal{Value: h.NewError(heap.ErrUnbound, "export",
			heap.Detail{Key: "name", Value: args[0]})}
	}
	m.Define(sym.Name(), v, true)
	return args[0], nil
}

func undefineNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if sig := requireArity(h, "undefine", args, 1); sig != nil {
		return heap.Nil, sig
	}
	sym, sig := asSymbol(h, "undefine", args[0])
	if sig != nil {
		return heap.Nil, sig
	}
	m := h.CurrentModule()
	if prev, ok := m.Lookup(sym.Name()); ok {
		prev.Release()
	}
	m.Undefine(sym.Name())
	return args[0], nil
}

// signalNative raises value as a catchable signal. A nil/omitted value
// raises the uncatchable Abort (spec §4.6).
func signalNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if len(args) == 0 || (len(args) == 1 && args[0].IsNil()) {
		h.ReportSignal(source.NewNative(), "abort")
		return heap.Nil, heap.Abort()
	}
	if sig := requireArity(h, "signal", args, 1); sig != nil {
		return heap.Nil, sig
	}
	h.ReportSignal(source.NewNative(), "signal")
	return heap.Nil, &heap.Signal{Value: args[0]}
}

func gensymNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	base := "g"
	if len(args) == 1 {
		s, sig := asSymbol(h, "gensym", args[0])
		if sig != nil {
			return heap.Nil, sig
		}
		base = s.Name()
	} else if len(args) != 0 {
		return heap.Nil, arityError(h, "gensym", 0, len(args))
	}
	return h.FreshSymbol(base), nil
}

// evalReentryNative backs the `eval` name when it's looked up as an
// ordinary value (e.g. stored in a variable) rather
// than called directly in operator position, where the core loop in
// lang/eval already re-enters the expand+eval loop itself to preserve tail
// calls. Called here, it simply evaluates its argument once.
func evalReentryNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if sig := requireArity(h, "eval", args, 1); sig != nil {
		return heap.Nil, sig
	}
	return eval.Eval(h, args[0], eval.NewEnv(h, env), depth+1)
}

func macroexpandNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if sig := requireArity(h, "macroexpand", args, 1); sig != nil {
		return heap.Nil, sig
	}
	return eval.Macroexpand(h, args[0], eval.NewEnv(h, env), depth+1), nil
}

// loadAllNative reads and evaluates every form in a string (a list of
// characters), in order, returning the value of the last one. The CLI's
// run and repl commands do not go through it: they drive the reader and
// eval.Eval themselves.
func loadAllNative(h *heap.Heap, args []heap.Handle, env heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if sig := requireArity(h, "load-all", args, 1); sig != nil {
		return heap.Nil, sig
	}
	text, sig := stringFromList(h, args[0])
	if sig != nil {
		return heap.Nil, sig
	}
	return evalSource(h, text, env, depth)
}
