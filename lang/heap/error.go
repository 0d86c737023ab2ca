package heap

// ErrorKind enumerates the signal kinds the runtime itself raises, per spec
// §7. Native functions and the evaluator raise these by name; user code can
// also signal arbitrary values that are not one of these kinds.
type ErrorKind string

const (
	ErrWrongType      ErrorKind = "wrong-argument-type"
	ErrWrongArity     ErrorKind = "wrong-number-of-arguments"
	ErrUnbound        ErrorKind = "unbound-symbol"
	ErrAmbiguousName  ErrorKind = "ambiguous-name"
	ErrAlreadyDefined ErrorKind = "already-defined"
	ErrNotCallable    ErrorKind = "eval-bad-operator"
	ErrDivideByZero   ErrorKind = "divide-by-zero"
	ErrOverflow       ErrorKind = "arithmetic-overflow"
	ErrStackOverflow  ErrorKind = "stackoverflow"
	ErrReadIncomplete ErrorKind = "incomplete"
	ErrReadInvalid    ErrorKind = "invalid"
	ErrIO             ErrorKind = "io-error"
)

// Detail is one extra key/value pair appended to an error value beyond the
// mandatory kind/source pair, e.g. {"expected", <symbol number>}.
type Detail struct {
	Key   string
	Value Handle
}

// NewError allocates the runtime's standard shape for a signaled error
// value: a flat property list `(kind <sym> source <sym> ...details...)`,
// where kind names the failure's category, source names the operation that
// raised it, and details are caller-supplied key/value pairs appended in
// order — the same shape original_source/src/error_utils/mod.rs's
// make_error (via make_plist) produces. Native functions call this to build
// the payload they hand to Signal; it is not itself a signal, just the
// value one carries.
func (h *Heap) NewError(kind ErrorKind, source string, details ...Detail) Handle {
	items := make([]Handle, 0, 4+2*len(details))
	items = append(items, h.Intern("kind"), h.Intern(string(kind)), h.Intern("source"), h.Intern(source))
	for _, d := range details {
		items = append(items, h.Intern(d.Key), d.Value)
	}
	return buildPlist(h, items)
}

// buildPlist allocates items into a flat proper list, tail first — the same
// allocation shape lang/eval's sliceToList uses, duplicated locally since
// lang/heap sits below lang/eval in the dependency stack.
func buildPlist(h *Heap, items []Handle) Handle {
	list := Nil.Retain()
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

// NewString allocates msg as a proper list of Char cells, the language's
// only string representation (spec §4.2: "string" is a structural
// classification over a list of characters, not a primitive type).
//
// Every intermediate handle is retained for the duration of the loop: a Go
// local variable does not by itself keep a cell alive across a call that
// may allocate (and so may trigger a collection) the way it would for a
// Rust stack slot holding a GcRef. Retain/Release bracket exactly the
// window where that matters; the returned handle is left unretained, per
// the allocator's convention that New* constructors hand back a refs-zero
// handle for the caller to Retain if it outlives the current expression.
func (h *Heap) NewString(s string) Handle {
	runes := []rune(s)
	list := Nil.Retain()
	for i := len(runes) - 1; i >= 0; i-- {
		ch := h.NewChar(runes[i]).Retain()
		next := h.NewCons(ch, list).Retain()
		ch.Release()
		list.Release()
		list = next
	}
	list.Release()
	return list
}
