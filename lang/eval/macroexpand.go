package eval

import "github.com/mna/liane/lang/heap"

// Macroexpand rewrites expr to a macro-free fixpoint. Each pass walks the
// whole structure: a non-empty proper list has its head expanded, then each
// argument expanded; if the (now expanded) head is itself a macro function,
// the macro is applied and its result replaces the whole form; otherwise the
// list is rebuilt from the expanded head and arguments. A cons that isn't a
// proper list has its car and cdr expanded independently. A bare symbol
// bound to a macro is replaced by that macro's value. Anything else is left
// unchanged. The whole pass repeats until one produces no change, since
// applying one macro can expose another that a single pass already walked
// past. depth is checked against MaxDepth on entry, since a buggy macro can
// expand forever just as easily as a function can recurse forever; unlike
// Eval, past the limit it raises no signal and returns expr unexpanded.
func Macroexpand(h *heap.Heap, expr heap.Handle, env Env, depth int) heap.Handle {
	if depth > MaxDepth {
		return expr
	}
	h.PushRoot(heap.RootHandle(&expr))
	defer h.PopRoot()
	for {
		next, changed := macroexpandPass(h, expr, env, depth)
		if !changed {
			return expr
		}
		expr = next
	}
}

// macroexpandPass performs one full recursive walk of expr as described on
// Macroexpand, reporting the rewritten form and whether anything changed.
func macroexpandPass(h *heap.Heap, expr heap.Handle, env Env, depth int) (heap.Handle, bool) {
	val, ok := expr.Get()
	if !ok {
		return expr, false
	}

	if sym, isSym := val.(*heap.Symbol); isSym {
		if sym.IsGensym() {
			return expr, false
		}
		v, sig := lookupForExpand(h, env, expr)
		if sig != nil || v.IsNil() {
			return expr, false
		}
		if fnVal, ok := v.Get(); ok {
			if fn, ok := fnVal.(*heap.Function); ok && fn.Kind == heap.Macro {
				return v, true
			}
		}
		return expr, false
	}

	cons, isCons := val.(*heap.Cons)
	if !isCons {
		return expr, false
	}

	// branch, eval and trap are reserved syntax, never ordinary calls (see
	// isBuiltinForm in eval.go); expansion leaves them untouched exactly as
	// Eval's own dispatch does.
	if isBuiltinForm(h, cons.Car, "branch") || isBuiltinForm(h, cons.Car, "eval") || isBuiltinForm(h, cons.Car, "trap") {
		return expr, false
	}

	items, proper := listToSlice(expr)
	if !proper {
		carExp, carChanged := macroexpandPass(h, cons.Car, env, depth)
		h.PushRoot(heap.RootHandle(&carExp))
		cdrExp, cdrChanged := macroexpandPass(h, cons.Cdr, env, depth)
		h.PopRoot()
		if !carChanged && !cdrChanged {
			return expr, false
		}
		return h.NewCons(carExp, cdrExp), true
	}

	if len(items) == 0 {
		return expr, false
	}

	head, headChanged := macroexpandPass(h, items[0], env, depth)
	h.PushRoot(heap.RootHandle(&head))
	defer h.PopRoot()

	args := make([]heap.Handle, len(items)-1)
	h.PushRoot(heap.RootSlice(&args))
	defer h.PopRoot()
	argsChanged := false
	for i, a := range items[1:] {
		e, changed := macroexpandPass(h, a, env, depth)
		args[i] = e
		if changed {
			argsChanged = true
		}
	}

	if headVal, ok := head.Get(); ok {
		if fn, ok := headVal.(*heap.Function); ok && fn.Kind == heap.Macro {
			expanded, sig := applyMacro(h, env, fn, args, depth)
			if sig != nil {
				return expr, false
			}
			return expanded, true
		}
	}

	if !headChanged && !argsChanged {
		return expr, false
	}
	return sliceToList(h, append([]heap.Handle{head}, args...)), true
}

// applyMacro invokes fn, a macro function, against args — which have already
// been macro-expanded but never evaluated, the calling convention a macro's
// FuncKind calls for, as opposed to a lambda's.
func applyMacro(h *heap.Heap, env Env, fn *heap.Function, args []heap.Handle, depth int) (heap.Handle, *heap.Signal) {
	if fn.IsNative() {
		return fn.Native(h, args, env.Frame(), depth+1)
	}
	callEnv, sig := bindParams(h, env, fn, args, depth+1)
	if sig != nil {
		return heap.Nil, sig
	}
	bodyExpr, sig := evalBodyButLast(h, callEnv, fn.Body, depth+1)
	if sig != nil {
		return heap.Nil, sig
	}
	return Eval(h, bodyExpr, callEnv, depth+1)
}

// lookupForExpand resolves opExpr the same way Resolve does and returns
// Resolve's signal for an unbound or non-symbol operator unchanged; its
// caller treats that signal as "not a macro" rather than aborting
// expansion, leaving the error to be reported (or not) once Eval actually
// evaluates the operator position.
func lookupForExpand(h *heap.Heap, env Env, opExpr heap.Handle) (heap.Handle, *heap.Signal) {
	v, sig := Resolve(h, env, opExpr)
	if sig != nil {
		return heap.Nil, sig
	}
	return v, nil
}
