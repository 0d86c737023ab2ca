// Package eval implements the tree-walking evaluator: lexical environment
// lookup, global module resolution, macroexpansion to a fixpoint, function
// application, and the trap/signal exception mechanism, all driven by an
// explicit loop rather than Go recursion so that tail calls run in bounded
// stack space (spec §4.6).
//
// Grounded in original_source/src/native/eval/mod.rs for the expand/eval
// loop's control flow and in the teacher's lang/machine package for how a
// Go-native runtime represents callable values and drives a calling
// convention uniformly for both builtins and user closures.
package eval

import "github.com/mna/liane/lang/heap"

// Env is the lexical environment: an association list of (symbol . value)
// Cons cells, innermost frame first, built and read but never mutated in
// place — extending an environment always allocates a new outer Cons
// whose Cdr is the unchanged parent, so a closure that captured an Env
// handle is unaffected by bindings introduced after it was captured. This
// matches spec §4.5's "environments are immutable, extended by prepending"
// rule and original_source's association-list representation.
type Env struct {
	h     *heap.Heap
	frame heap.Handle // Handle to a (possibly Nil) list of (symbol . value) pairs

	// module names the querying module for global resolution (spec §4.3
	// rule 2), or "" to mean "whatever module is current on the heap right
	// now" — the default for top-level/REPL evaluation. A call into a
	// closure's body sets this to the function's own captured Module field
	// (WithModule), so the body keeps seeing its defining module's private
	// globals no matter which module happened to be current at the call
	// site.
	module string
}

// NewEnv wraps an existing frame list handle (often heap.Nil, for the
// top-level environment) as an Env.
func NewEnv(h *heap.Heap, frame heap.Handle) Env {
	return Env{h: h, frame: frame}
}

// WithModule returns a copy of e that resolves globals as if querying from
// module name, instead of whichever module is dynamically current.
func (e Env) WithModule(name string) Env {
	e.module = name
	return e
}

// Frame returns the underlying association-list handle, for storing into a
// Function's captured Env field.
func (e Env) Frame() heap.Handle { return e.frame }

// QueryModule returns the module name free-symbol resolution should query
// as, per WithModule's doc comment.
func (e Env) QueryModule() string {
	if e.module != "" {
		return e.module
	}
	if m := e.h.CurrentModule(); m != nil {
		return m.Name
	}
	return ""
}

// Extend returns a new Env with name bound to value in its innermost frame,
// leaving e itself unchanged (e may be a closure's captured environment and
// must remain usable by other calls after this one returns).
func (e Env) Extend(name heap.Handle, value heap.Handle) Env {
	name = name.Retain()
	value = value.Retain()
	pair := e.h.NewCons(name, value).Retain()
	name.Release()
	value.Release()
	frame := e.frame.Retain()
	next := e.h.NewCons(pair, frame)
	pair.Release()
	frame.Release()
	return Env{h: e.h, frame: next, module: e.module}
}

// ExtendAll binds each (names[i], values[i]) pair in order, each one
// prepended after the previous (so names[1] shadows names[0] if they
// collide), equivalent to repeated calls
// to Extend but built as a single pass for clarity at call sites that bind a
// whole parameter list at once.
func (e Env) ExtendAll(names, values []heap.Handle) Env {
	cur := e
	for i := range names {
		cur = cur.Extend(names[i], values[i])
	}
	return cur
}

// Lookup searches e's frames innermost-first for a binding of sym (compared
// by identity, per spec §4.2/§4.5 — two symbols are the same binding key
// only if they are the same interned cell). It does not fall back to
// global/module resolution; callers needing the full lookup rule (lexical,
// then modules, erroring on ambiguity) use Resolve in lookup.go.
func (e Env) Lookup(sym heap.Handle) (heap.Handle, bool) {
	cursor := e.frame
	for {
		v, ok := cursor.Get()
		if !ok {
			return heap.Nil, false
		}
		cons, ok := v.(*heap.Cons)
		if !ok {
			return heap.Nil, false
		}
		pairVal, _ := cons.Car.Get()
		pair, ok := pairVal.(*heap.Cons)
		if ok && heap.Identical(pair.Car, sym) {
			return pair.Cdr, true
		}
		cursor = cons.Cdr
	}
}
