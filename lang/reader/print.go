package reader

import (
	"strconv"
	"strings"

	"github.com/mna/liane/lang/heap"
)

// Print renders v in the same notation Read accepts, so that
// Read(Print(v)).Value is structurally equal to v for numbers, characters,
// interned symbols and lists of them. A bare character list prints as a
// "..." literal, which reads back in the `(list ...)` marker form; functions,
// modules and gensyms print in forms Read does not turn back into the same
// value. It is the
// reader's inverse, grounded in original_source/src/native/functions/mod.rs
// printing support (the reference implementation drives printing off the
// same classification the reader's atoms use).
func Print(v heap.Handle) string {
	var b strings.Builder
	print1(&b, v)
	return b.String()
}

func print1(b *strings.Builder, v heap.Handle) {
	if v.IsNil() {
		b.WriteString("()")
		return
	}
	val, ok := v.Get()
	if !ok {
		b.WriteString("()")
		return
	}
	switch x := val.(type) {
	case heap.Int:
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case heap.Char:
		b.WriteByte('%')
		writeCharLiteral(b, rune(x))
	case *heap.Symbol:
		b.WriteString(x.String())
	case *heap.Cons:
		printList(b, v)
	case *heap.Function:
		b.WriteString(x.String())
	case *heap.Module:
		b.WriteString(x.String())
	default:
		b.WriteString(val.String())
	}
}

// printList renders a Cons as either a string literal (if every element is
// a character), or a parenthesized, possibly dotted, list.
func printList(b *strings.Builder, v heap.Handle) {
	if s, ok := asPrintableString(v); ok {
		b.WriteByte('"')
		b.WriteString(escapeString(s))
		b.WriteByte('"')
		return
	}
	b.WriteByte('(')
	cur := v
	first := true
	for {
		val, ok := cur.Get()
		if !ok || cur.IsNil() {
			break
		}
		cons, ok := val.(*heap.Cons)
		if !ok {
			b.WriteString(" . ")
			print1(b, cur)
			break
		}
		if !first {
			b.WriteByte(' ')
		}
		first = false
		print1(b, cons.Car)
		cur = cons.Cdr
	}
	b.WriteByte(')')
}

// writeCharLiteral renders r using the named %-escapes spec §6 defines for
// the non-printable characters reading a bare grapheme can't reach; every
// other rune is written as-is after the leading %.
func writeCharLiteral(b *strings.Builder, r rune) {
	switch r {
	case '\n':
		b.WriteString(`\n`)
	case '\t':
		b.WriteString(`\t`)
	case ' ':
		b.WriteString(`\s`)
	case '\r':
		b.WriteString(`\r`)
	case '\\':
		b.WriteString(`\\`)
	default:
		b.WriteRune(r)
	}
}

// stripListMarker reports whether v is a cons whose car is the symbol
// `list`, returning its cdr if so — the reader's own string marker (spec
// §4.4), recognized here by spelling rather than identity since Print has
// no heap to intern against.
func stripListMarker(v heap.Handle) (heap.Handle, bool) {
	val, ok := v.Get()
	if !ok {
		return heap.Nil, false
	}
	cons, ok := val.(*heap.Cons)
	if !ok {
		return heap.Nil, false
	}
	carVal, ok := cons.Car.Get()
	if !ok {
		return heap.Nil, false
	}
	sym, ok := carVal.(*heap.Symbol)
	if !ok || sym.Name() != "list" {
		return heap.Nil, false
	}
	return cons.Cdr, true
}

// asPrintableString reports whether v is a string — a proper list of only
// Char elements, optionally preceded by the reader's `list` marker symbol
// (spec §4.4) — returning its Go string form if so. An empty list never
// prints as a string — it prints as `()`, matching spec §4.2's "nil" and
// "string" being distinct classifications even though both are built from
// the same empty-list representation at the zero-length boundary.
func asPrintableString(v heap.Handle) (string, bool) {
	if rest, ok := stripListMarker(v); ok {
		v = rest
	}
	var b strings.Builder
	cur := v
	count := 0
	for {
		if cur.IsNil() {
			if count == 0 {
				return "", false
			}
			return b.String(), true
		}
		val, ok := cur.Get()
		if !ok {
			return "", false
		}
		cons, ok := val.(*heap.Cons)
		if !ok {
			return "", false
		}
		carVal, ok := cons.Car.Get()
		if !ok {
			return "", false
		}
		ch, ok := carVal.(heap.Char)
		if !ok {
			return "", false
		}
		b.WriteRune(rune(ch))
		count++
		cur = cons.Cdr
	}
}

func escapeString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return r.Replace(s)
}
