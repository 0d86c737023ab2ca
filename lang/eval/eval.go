package eval

import (
	"github.com/mna/liane/lang/heap"
	"github.com/mna/liane/lang/source"
)

// MaxDepth bounds recursion the same way the reference implementation's
// MAX_RECURSION_DEPTH does (original_source/src/config.rs): once a call
// chain that isn't in tail position nests this deep, Eval raises
// `stackoverflow` rather than overflowing the Go goroutine stack.
const MaxDepth = 700

// Eval evaluates expr in env, applying macroexpansion to a fixpoint before
// every evaluation step and eliminating tail calls — both ordinary function
// application and nested calls to the `branch` and `eval` forms — via the
// explicit loop below rather than Go call recursion. depth counts only
// non-tail nesting (argument evaluation, applying a function to its
// arguments before looping back), matching spec §4.6.
func Eval(h *heap.Heap, expr heap.Handle, env Env, depth int) (heap.Handle, *heap.Signal) {
	if depth > MaxDepth {
		return heap.Nil, &heap.Signal{Value: h.NewError(heap.ErrStackOverflow, "eval")}
	}

	// expr and env live only in these Go locals for the life of the loop
	// below, reassigned on every tail call. Nothing else references the
	// environment frame or expression a tail call lands on until it's bound
	// somewhere permanent, so without pinning them here a Collect triggered
	// mid-loop (by, say, the next call's argument evaluation) would sweep the
	// very env/expr the loop is about to resume with. RootHandle reads
	// through the pointer at each Collect, so it stays correct across every
	// reassignment below without re-pushing.
	h.PushRoot(heap.RootHandle(&expr))
	defer h.PopRoot()
	h.PushRoot(heap.RootHandle(&env.frame))
	defer h.PopRoot()

	for {
		if h.Step(stepLocation(expr)) {
			return heap.Nil, heap.Abort()
		}
		expr = Macroexpand(h, expr, env, depth+1)

		val, isAtom := expr.Get()
		if !isAtom {
			return heap.Nil, nil // Nil evaluates to itself
		}
		if _, isSym := val.(*heap.Symbol); isSym {
			return Resolve(h, env, expr)
		}
		cons, isCons := val.(*heap.Cons)
		if !isCons {
			return expr, nil // self-evaluating: number, character, function, module
		}

		opExpr := cons.Car
		args, ok := listToSlice(cons.Cdr)
		if !ok {
			// A cons whose cdr chain doesn't end in Nil is not a call form at
			// all; it evaluates to a fresh cons of its recursively evaluated
			// car and cdr (spec §4.5).
			carVal, sig := Eval(h, cons.Car, env, depth+1)
			if sig != nil {
				return heap.Nil, sig
			}
			cdrVal, sig := Eval(h, cons.Cdr, env, depth+1)
			if sig != nil {
				return heap.Nil, sig
			}
			return h.NewCons(carVal, cdrVal), nil
		}

		if isBuiltinForm(h, opExpr, "branch") {
			next, sig := evalBranch(h, env, args, depth)
			if sig != nil {
				return heap.Nil, sig
			}
			expr = next
			continue
		}

		if isBuiltinForm(h, opExpr, "trap") {
			return evalTrap(h, env, args, depth)
		}

		fnHandle, sig := Eval(h, opExpr, env, depth+1)
		if sig != nil {
			return heap.Nil, sig
		}
		// fnHandle (and so the *heap.Function it unwraps to) is reachable from
		// no root of its own yet — it's a fresh lookup result sitting in a Go
		// local — so it must stay pinned for as long as this dispatch reads
		// through it, including while evaluating arguments and running the
		// call, or a Collect partway through could sweep it out from under us.
		h.PushRoot(heap.RootHandle(&fnHandle))
		fnVal, _ := fnHandle.Get()
		fn, ok := fnVal.(*heap.Function)
		if !ok {
			h.PopRoot()
			return heap.Nil, &heap.Signal{Value: h.NewError(heap.ErrNotCallable, "eval")}
		}

		if isBuiltinForm(h, opExpr, "eval") {
			// The distinguished `eval` native: evaluate its single argument to
			// get the form to run, then re-enter this very loop with that form
			// as the new expr, instead of calling it as an ordinary native —
			// the only way an explicit (eval ...) call stays in tail position.
			if len(args) != 1 {
				h.PopRoot()
				return heap.Nil, &heap.Signal{Value: h.NewError(heap.ErrWrongArity, "eval")}
			}
			argv, sig := Eval(h, args[0], env, depth+1)
			h.PopRoot()
			if sig != nil {
				return heap.Nil, sig
			}
			expr = argv
			continue
		}

		if fn.IsNative() {
			evaluated := args
			if fn.Kind == heap.Lambda {
				evaluated = make([]heap.Handle, len(args))
				h.PushRoot(heap.RootSlice(&evaluated))
				for i, a := range args {
					v, sig := Eval(h, a, env, depth+1)
					if sig != nil {
						h.PopRoot()
						h.PopRoot()
						return heap.Nil, sig
					}
					evaluated[i] = v
				}
				h.PopRoot()
			}
			result, nsig := fn.Native(h, evaluated, env.Frame(), depth+1)
			h.PopRoot()
			return result, nsig
		}

		callEnv, sig := bindParams(h, env, fn, args, depth)
		if sig != nil {
			h.PopRoot()
			return heap.Nil, sig
		}
		env = callEnv
		bodyExpr, sig := evalBodyButLast(h, env, fn.Body, depth)
		h.PopRoot()
		if sig != nil {
			return heap.Nil, sig
		}
		expr = bodyExpr
	}
}

// stepLocation extracts the source location attached to expr's metadata, if
// any, for the debug probe's step events; forms without metadata report as
// native. The reader attaches no metadata to the forms it produces, so only
// values wrapped explicitly with heap.WrapMetadata report a real location.
func stepLocation(expr heap.Handle) source.Location {
	if md, ok := expr.Metadata(); ok {
		return md.Location
	}
	return source.NewNative()
}

// isBuiltinForm reports whether opExpr is exactly the interned symbol named
// name — used to recognize `branch`, `eval` and `trap` by identity, the
// same distinguished treatment original_source/src/native/eval/mod.rs gives
// them. A user binding that shadows the name lexically is not consulted
// here: like the reference implementation, these are reserved syntax, not
// rebindable functions.
func isBuiltinForm(h *heap.Heap, opExpr heap.Handle, name string) bool {
	v, ok := opExpr.Get()
	if !ok {
		return false
	}
	sym, ok := v.(*heap.Symbol)
	if !ok || sym.IsGensym() {
		return false
	}
	return sym.Name() == name
}

func evalBranch(h *heap.Heap, env Env, args []heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if len(args) != 3 {
		return heap.Nil, &heap.Signal{Value: h.NewError(heap.ErrWrongArity, "branch")}
	}
	testVal, sig := Eval(h, args[0], env, depth+1)
	if sig != nil {
		return heap.Nil, sig
	}
	if isTruthy(testVal) {
		return args[1], nil
	}
	return args[2], nil
}

// evalTrap implements `(trap normal-body trap-body)`: a reserved syntax
// form, like branch and eval, rather than an ordinary function — its two
// operands are never evaluated up front. normal-body is evaluated first; if
// that raises a catchable signal (anything but Abort), the signal's value
// is bound to the symbol *trapped-signal* in a fresh environment frame and
// trap-body is evaluated there instead. An Abort is never caught and
// propagates unchanged, matching original_source/src/native/eval/mod.rs's
// handling of its Trap primitive value.
func evalTrap(h *heap.Heap, env Env, args []heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if len(args) != 2 {
		return heap.Nil, &heap.Signal{Value: h.NewError(heap.ErrWrongArity, "trap")}
	}
	val, sig := Eval(h, args[0], env, depth+1)
	if sig == nil {
		return val, nil
	}
	if sig.IsAbort() {
		return heap.Nil, sig
	}
	// sig.Value is a freshly signaled payload reachable from no root yet;
	// Intern below may allocate (the first time *trapped-signal* is seen),
	// which could otherwise trigger a Collect that sweeps it before Extend
	// gets a chance to bind it.
	h.PushRoot(heap.RootHandle(&sig.Value))
	defer h.PopRoot()
	trapped := h.Intern("*trapped-signal*")
	trapEnv := env.Extend(trapped, sig.Value)
	return Eval(h, args[1], trapEnv, depth+1)
}

// isTruthy applies spec §4.2's rule that only Nil is false; every other
// value, including the interned symbol naming itself, is true.
func isTruthy(v heap.Handle) bool { return !v.IsNil() }

// bindParams allocates the call's new environment frame by binding fn's
// fixed parameters and, if present, its rest parameter, against args.
func bindParams(h *heap.Heap, env Env, fn *heap.Function, args []heap.Handle, depth int) (Env, *heap.Signal) {
	evaluated := args
	if fn.Kind == heap.Lambda {
		evaluated = make([]heap.Handle, len(args))
		// Each entry is pinned the moment it's written, not just the slice as
		// a whole: evaluating args[i+1] can allocate (and so Collect) while
		// evaluated[i] is otherwise unreachable from any root.
		h.PushRoot(heap.RootSlice(&evaluated))
		defer h.PopRoot()
		for i, a := range args {
			v, sig := Eval(h, a, env, depth+1)
			if sig != nil {
				return Env{}, sig
			}
			evaluated[i] = v
		}
	}

	if fn.Rest.IsNil() {
		if len(evaluated) != len(fn.Params) {
			return Env{}, &heap.Signal{Value: h.NewError(heap.ErrWrongArity, fn.Name,
				heap.Detail{Key: "expected", Value: h.NewInt(int64(len(fn.Params)))},
				heap.Detail{Key: "actual", Value: h.NewInt(int64(len(evaluated)))})}
		}
	} else if len(evaluated) < len(fn.Params) {
		return Env{}, &heap.Signal{Value: h.NewError(heap.ErrWrongArity, fn.Name,
			heap.Detail{Key: "expected-at-least", Value: h.NewInt(int64(len(fn.Params)))},
			heap.Detail{Key: "actual", Value: h.NewInt(int64(len(evaluated)))})}
	}

	callEnv := NewEnv(h, fn.Env).WithModule(fn.Module)
	// Extend returns each new frame with refs==0 (see env.go) — it's rooted
	// here instead, so the chain survives every further Extend/sliceToList
	// allocation below, no matter how many parameters fn takes.
	h.PushRoot(heap.RootHandle(&callEnv.frame))
	defer h.PopRoot()
	for i, p := range fn.Params {
		callEnv = callEnv.Extend(p, evaluated[i])
	}
	if !fn.Rest.IsNil() {
		rest := sliceToList(h, evaluated[len(fn.Params):])
		callEnv = callEnv.Extend(fn.Rest, rest)
	}
	return callEnv, nil
}

// evalBodyButLast evaluates every body form except the last (for side
// effect only, discarding their values) and returns the last form
// unevaluated, so the caller's loop can continue with it in tail position —
// an implicit `progn`.
func evalBodyButLast(h *heap.Heap, env Env, body heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	forms, ok := listToSlice(body)
	if !ok || len(forms) == 0 {
		return heap.Nil, nil
	}
	for _, f := range forms[:len(forms)-1] {
		if _, sig := Eval(h, f, env, depth+1); sig != nil {
			return heap.Nil, sig
		}
	}
	return forms[len(forms)-1], nil
}

// ListToSlice is the exported form of listToSlice, for use by lang/native's
// implementations of list-processing builtins.
func ListToSlice(h heap.Handle) ([]heap.Handle, bool) { return listToSlice(h) }

// SliceToList is the exported form of sliceToList.
func SliceToList(h *heap.Heap, items []heap.Handle) heap.Handle { return sliceToList(h, items) }

// listToSlice walks a proper list into a Go slice of its elements, in
// order. It reports false if the list is improper (ends in a non-Nil,
// non-Cons cdr).
func listToSlice(h heap.Handle) ([]heap.Handle, bool) {
	var out []heap.Handle
	cur := h
	for {
		if cur.IsNil() {
			return out, true
		}
		v, ok := cur.Get()
		if !ok {
			return out, false
		}
		cons, ok := v.(*heap.Cons)
		if !ok {
			return out, false
		}
		out = append(out, cons.Car)
		cur = cons.Cdr
	}
}

// sliceToList is listToSlice's inverse, allocating a fresh proper list.
func sliceToList(h *heap.Heap, items []heap.Handle) heap.Handle {
	list := heap.Nil.Retain()
	for i := len(items) - 1; i >= 0; i-- {
		item := items[i].Retain()
		next := h.NewCons(item, list).Retain()
		item.Release()
		list.Release()
		list = next
	}
	list.Release()
	return list
}
