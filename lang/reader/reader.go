// Package reader implements the textual reader described by spec §4.4: a
// character-level tokenizer combined with a stack-based parser that
// allocates heap cells directly as it recognizes them, rather than building
// an intermediate AST first. It depends only on lang/heap (and lang/source
// for positions) — the reader has no notion of evaluation.
//
// Grounded in original_source/src/native/read/mod.rs for tokenization rules
// and status semantics, and in the teacher's lang/scanner package for the
// character-at-a-time state-machine style (peek/advance over a rune slice,
// position tracking alongside the cursor).
package reader

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/mna/liane/lang/heap"
	"github.com/mna/liane/lang/source"
)

// Status classifies the outcome of a single Read call, per spec §4.4.
type Status int

const (
	// StatusOK: a complete form was read.
	StatusOK Status = iota
	// StatusNothing: the input was exhausted before any non-whitespace,
	// non-comment character was seen; there was nothing to read.
	StatusNothing
	// StatusIncomplete: a form was begun (an open paren, an open string, an
	// escape at end of input) but input ran out before it closed. The
	// caller should read more input and retry rather than treat this as an
	// error.
	StatusIncomplete
	// StatusError: the text read so far is malformed in a way that more
	// input cannot fix (e.g. an unknown character escape).
	StatusError
	// StatusInvalid: a token was delimited correctly but its content is not
	// a valid literal (e.g. a symbol-shaped token that starts with a digit
	// but isn't a valid number).
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNothing:
		return "nothing"
	case StatusIncomplete:
		return "incomplete"
	case StatusError:
		return "error"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Result is everything a single call to Read produces: mirrors the
// reference implementation's result plist (status, value, rest-of-input,
// resulting line/column, and an error message when relevant) as a Go
// struct instead of a language-level association list.
type Result struct {
	Status   Status
	Value    heap.Handle
	Rest     string
	Location source.Location
	Err      string
}

// maxDepth bounds nested-list recursion the same way the evaluator bounds
// call recursion (spec §4.4/§4.6), so a pathologically deep `(((((...`
// fails as StatusError rather than overflowing the Go stack.
const maxDepth = 700

// Reader scans one origin's worth of text (a REPL line, a whole file) and
// allocates the forms it recognizes into h. A Reader is not safe for
// concurrent use; create one per input source.
type Reader struct {
	h    *heap.Heap
	src  []rune
	pos  int
	loc  source.Location
	name string // origin label; not set or read anywhere in this package
}

// New creates a Reader over text, whose positions are reported relative to
// start (so repeated Reads of a growing REPL buffer can keep accurate line/
// column numbers across calls).
func New(h *heap.Heap, text string, start source.Location) *Reader {
	return &Reader{h: h, src: []rune(text), loc: start}
}

// Read consumes one form from the remaining input and returns the result.
// Call it repeatedly (feeding Result.Rest back via a new Reader, or reusing
// this Reader — both work, since a Reader's own cursor already reflects
// what Read consumed) to read every form in a buffer; StatusNothing means
// the buffer held only whitespace/comments and is safe to discard.
func (r *Reader) Read() Result {
	r.skipAtmosphere()
	if r.atEnd() {
		return r.result(StatusNothing, heap.Nil, "")
	}
	v, st := r.readForm(0)
	rest := string(r.src[r.pos:])
	return r.result(st.status, v, rest).withErr(st.err)
}

type formStatus struct {
	status Status
	err    string
}

func ok() formStatus                  { return formStatus{status: StatusOK} }
func incomplete() formStatus          { return formStatus{status: StatusIncomplete} }
func errf(msg string) formStatus      { return formStatus{status: StatusError, err: msg} }
func invalid(msg string) formStatus   { return formStatus{status: StatusInvalid, err: msg} }

func (res Result) withErr(msg string) Result {
	res.Err = msg
	return res
}

func (r *Reader) result(st Status, v heap.Handle, rest string) Result {
	return Result{Status: st, Value: v, Rest: rest, Location: r.loc}
}

// readForm dispatches on the next significant character. depth bounds
// nested list recursion.
func (r *Reader) readForm(depth int) (heap.Handle, formStatus) {
	if depth > maxDepth {
		return heap.Nil, errf("stackoverflow: list nesting too deep")
	}
	r.skipAtmosphere()
	if r.atEnd() {
		return heap.Nil, incomplete()
	}
	c := r.peek()
	switch {
	case c == '(':
		return r.readList(depth)
	case c == ')':
		return heap.Nil, errf("too many closing parentheses")
	case c == '\'':
		return r.readQuote(depth)
	case c == '"':
		return r.readString()
	case c == '%':
		return r.readCharLiteral()
	default:
		return r.readAtom()
	}
}

func (r *Reader) readList(depth int) (heap.Handle, formStatus) {
	r.advance() // consume '('
	var items []heap.Handle
	for {
		r.skipAtmosphere()
		if r.atEnd() {
			heap.ReleaseAll(items)
			return heap.Nil, incomplete()
		}
		if r.peek() == ')' {
			r.advance()
			return r.buildList(items), ok()
		}
		v, st := r.readForm(depth + 1)
		if st.status != StatusOK {
			heap.ReleaseAll(items)
			return heap.Nil, st
		}
		items = append(items, v.Retain())
	}
}

// buildList allocates items (already-retained handles this function takes
// ownership of and releases) into a proper list, tail first.
func (r *Reader) buildList(items []heap.Handle) heap.Handle {
	list := heap.Nil.Retain()
	for i := len(items) - 1; i >= 0; i-- {
		next := r.h.NewCons(items[i], list).Retain()
		list.Release()
		list = next
	}
	heap.ReleaseAll(items)
	list.Release()
	return list
}

func (r *Reader) readQuote(depth int) (heap.Handle, formStatus) {
	r.advance() // consume '\''
	v, st := r.readForm(depth + 1)
	if st.status != StatusOK {
		return heap.Nil, st
	}
	v = v.Retain()
	quoteSym := r.h.Intern("quote").Retain()
	inner := r.h.NewCons(v, heap.Nil).Retain()
	v.Release()
	whole := r.h.NewCons(quoteSym, inner)
	quoteSym.Release()
	inner.Release()
	return whole, ok()
}

// readString reads a "..." literal and emits it the way spec §4.4 says the
// reader must: a proper list headed by the symbol `list`, followed by the
// string's characters — `(list %c %h %a %r …)` — not a bare char list.
func (r *Reader) readString() (heap.Handle, formStatus) {
	r.advance() // opening quote
	var b strings.Builder
	for {
		if r.atEnd() {
			return heap.Nil, incomplete()
		}
		c := r.peek()
		if c == '"' {
			r.advance()
			return r.wrapAsListLiteral(b.String()), ok()
		}
		if c == '\\' {
			r.advance()
			if r.atEnd() {
				return heap.Nil, incomplete()
			}
			esc, err := r.readStringEscape()
			if err != "" {
				return heap.Nil, errf(err)
			}
			b.WriteRune(esc)
			continue
		}
		b.WriteRune(c)
		r.advance()
	}
}

// wrapAsListLiteral allocates s as a character list prefixed with the
// `list` marker symbol, the reader's own string notation.
func (r *Reader) wrapAsListLiteral(s string) heap.Handle {
	chars := r.h.NewString(s).Retain()
	listSym := r.h.Intern("list").Retain()
	whole := r.h.NewCons(listSym, chars)
	listSym.Release()
	chars.Release()
	return whole
}

// readStringEscape consumes one character following a backslash inside a
// "..." literal: spec §6 allows `\" \n \r \t \\`.
func (r *Reader) readStringEscape() (rune, string) {
	c := r.peek()
	r.advance()
	switch c {
	case 'n':
		return '\n', ""
	case 't':
		return '\t', ""
	case 'r':
		return '\r', ""
	case '"', '\\':
		return c, ""
	default:
		return 0, "unknown string escape: \\" + string(c)
	}
}

// readCharLiteral reads a %-prefixed character literal: either a bare
// grapheme (`%A`) or one of the named escapes `%\n %\t %\s %\r %\\`
// (spec §6).
func (r *Reader) readCharLiteral() (heap.Handle, formStatus) {
	r.advance() // consume '%'
	if r.atEnd() {
		return heap.Nil, incomplete()
	}
	if r.peek() != '\\' {
		c := r.peek()
		r.advance()
		return r.h.NewChar(c), ok()
	}
	r.advance() // consume the escape's backslash
	if r.atEnd() {
		return heap.Nil, incomplete()
	}
	esc := r.peek()
	r.advance()
	switch esc {
	case 'n':
		return r.h.NewChar('\n'), ok()
	case 't':
		return r.h.NewChar('\t'), ok()
	case 's':
		return r.h.NewChar(' '), ok()
	case 'r':
		return r.h.NewChar('\r'), ok()
	case '\\':
		return r.h.NewChar('\\'), ok()
	default:
		return heap.Nil, errf("unknown character escape: %\\" + string(esc))
	}
}

// delimiters are the characters that end a bare atom token. Comma is
// whitespace (spec §4.4/§6), handled by skipAtmosphere rather than here, so
// it never appears mid-token for isDelimiter to need to recognize directly;
// it is listed anyway so a comma glued onto a token (`a,`) still splits it.
func isDelimiter(c rune) bool {
	return unicode.IsSpace(c) || c == ',' || c == '(' || c == ')' || c == '"' || c == ';' || c == '\''
}

func (r *Reader) readAtom() (heap.Handle, formStatus) {
	start := r.pos
	for !r.atEnd() && !isDelimiter(r.peek()) {
		r.advance()
	}
	text := string(r.src[start:r.pos])
	if text == "" {
		return heap.Nil, errf("empty atom")
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return r.h.NewInt(n), ok()
	}
	if startsLikeNumber(text) {
		return heap.Nil, invalid("malformed number: " + text)
	}
	return r.h.Intern(text), ok()
}

func startsLikeNumber(s string) bool {
	if s == "" {
		return false
	}
	c := rune(s[0])
	if unicode.IsDigit(c) {
		return true
	}
	if (c == '-' || c == '+') && len(s) > 1 && unicode.IsDigit(rune(s[1])) {
		return true
	}
	return false
}

// skipAtmosphere consumes whitespace (commas count as whitespace, spec
// §4.4/§6) and `;`-to-end-of-line comments.
func (r *Reader) skipAtmosphere() {
	for !r.atEnd() {
		c := r.peek()
		if unicode.IsSpace(c) || c == ',' {
			r.advance()
			continue
		}
		if c == ';' {
			for !r.atEnd() && r.peek() != '\n' {
				r.advance()
			}
			continue
		}
		return
	}
}

func (r *Reader) atEnd() bool  { return r.pos >= len(r.src) }
func (r *Reader) peek() rune   { return r.src[r.pos] }
func (r *Reader) advance() {
	if r.atEnd() {
		return
	}
	if r.src[r.pos] == '\n' {
		r.loc = r.loc.StepLine()
	} else {
		r.loc = r.loc.StepColumn()
	}
	r.pos++
}
