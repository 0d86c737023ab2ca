package heap

// FuncKind distinguishes an ordinary lambda, whose arguments are evaluated
// before the call, from a macro, whose arguments are passed unevaluated and
// whose result is itself evaluated again (macroexpansion, see lang/eval).
type FuncKind int

const (
	// Lambda functions evaluate every argument before the call and their
	// result is a plain value.
	Lambda FuncKind = iota
	// Macro functions receive their arguments unevaluated, and their
	// result is itself macroexpanded and evaluated again — the genuine
	// user-facing macro mechanism (spec §4.6).
	Macro
	// Special functions also receive their arguments unevaluated, but
	// their result is a final value returned as-is, with no further
	// expansion or evaluation. This is how the handful of built-in forms
	// that need raw syntax access (quote, define, lambda/macro
	// construction) are implemented as ordinary Functions rather than
	// bytecode the evaluator special-cases, without forcing every such
	// form to defensively re-quote its own result — original_source calls
	// the equivalent native kind SpecialLambda. branch, eval and trap go
	// further still: the evaluator's core loop recognizes them by
	// identity and never turns them into Function calls at all, since
	// they need control over tail position or catching that a Function
	// call boundary can't express.
	Special
)

func (k FuncKind) String() string {
	switch k {
	case Macro:
		return "macro"
	case Special:
		return "special"
	default:
		return "lambda"
	}
}

// Function is a callable value: either a user-defined closure (Native is
// nil) or a natively-implemented primitive (Native is set and Params/Rest/
// Body/Env are unused). Splitting the two cases into one struct, rather than
// two Value implementations, mirrors original_source/src/native/functions/
// mod.rs's single Function enum with UserDefined/Native variants, and keeps
// the evaluator's application logic in one place regardless of origin.
type Function struct {
	Kind FuncKind

	// Params holds the fixed, required parameter symbols, as Handles (not
	// bare *Symbol) so the collector's ordinary cell-tracing reaches them
	// even when a parameter is an uninterned gensym with no other owner.
	// Rest, if not Nil, names the symbol bound to the list of any trailing
	// arguments; if Nil the function is fixed-arity.
	Params []Handle
	Rest   Handle

	// Body is the list of body forms, evaluated in order with the value of
	// the last returned (an implicit `progn`). Unused when Native != nil.
	Body Handle

	// Env is the lexical environment captured at definition time. Unused
	// when Native != nil.
	Env Handle

	// Module is the name of the module that was current when this function
	// was constructed. A closure's body resolves free symbols as if it were
	// still executing from that module (spec §4.3 rule 2: a module
	// contributes a binding if it's exported, or if the querying module is
	// the defining module) regardless of whichever module happens to be
	// current wherever the call itself came from. original_source's
	// NormalFunction captures the same thing as environment_module.
	Module string

	// Native, when non-nil, makes this a primitive implemented in Go rather
	// than in the language itself. Its signature is the calling convention
	// from spec §4.6: the heap to allocate into, the (already-evaluated,
	// for Lambda; raw, for Macro) argument handles, the calling environment,
	// and the current recursion depth, returning either a result Handle or
	// a non-nil Signal.
	Native NativeFunc

	// Name is the symbol this function was bound to when defined, used only
	// for diagnostics (stack traces, printing); it does not affect identity
	// or calling.
	Name string
}

// NativeFunc is the Go implementation of a native function. heap depends on
// this type (so Function can hold one) but never calls it — invocation
// lives in lang/eval, which is the layer that knows how to evaluate
// arguments, manage recursion depth and convert a returned Signal into
// evaluator control flow.
type NativeFunc func(h *Heap, args []Handle, env Handle, depth int) (Handle, *Signal)

func (f *Function) TypeName() string { return "function" }

func (f *Function) String() string {
	if f.Name != "" {
		return "<" + f.Kind.String() + " " + f.Name + ">"
	}
	return "<" + f.Kind.String() + ">"
}

// IsNative reports whether f is implemented in Go rather than as a closure
// over language-level body forms.
func (f *Function) IsNative() bool { return f.Native != nil }
