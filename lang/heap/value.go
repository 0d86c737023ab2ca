// Package heap implements the tagged-cell heap described by the runtime
// specification: allocation, symbol interning, the module/binding registry,
// and tracing mark-and-sweep collection. It is the lowest layer of the
// interpreter — the reader, evaluator and native functions all allocate into
// and read from a *Heap, but the heap never imports any of them.
//
// The design is ported from the teacher's lang/machine package (the runtime
// representation of builtin values) and from original_source/src/memory/mod.rs
// (the reference implementation this specification was distilled from),
// adapted from a bytecode VM's Go-native value model to a tagged cons-cell
// heap with external reference counting.
package heap

import "strconv"

// Value is implemented by every primitive value a Cell may directly hold.
// Unlike the teacher's machine.Value, there is no Freeze, Attr or Binary
// protocol here: the language has no mutation operators and no operator
// overloading, so a Value only needs to describe and print itself.
type Value interface {
	// TypeName returns one of the nine observable type tags from spec §4.2,
	// except "nil", "list" and "string" which are structural classifications
	// computed by Classify, not stored on any cell.
	TypeName() string
	String() string
}

// Int is the 64-bit signed integer primitive value.
type Int int64

func (Int) TypeName() string { return "number" }
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// Char is the Unicode scalar primitive value.
type Char rune

func (Char) TypeName() string { return "character" }
func (c Char) String() string { return string(rune(c)) }
