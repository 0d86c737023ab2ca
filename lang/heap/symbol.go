package heap

import "fmt"

// Symbol is an interned or uninterned (gensym) identifier. Two symbols are
// the same language value if and only if they are the same Go value of this
// type — comparison is by identity, never by name — matching spec §4.2's
// "symbols compare by identity, not by spelling" rule and
// original_source/src/memory/mod.rs's `SymbolId`-keyed interning table.
type Symbol struct {
	name    string
	gensym  bool // true for symbols produced by FreshSymbol, never interned
	ordinal uint64

	// cellRef is the cell that holds this symbol, cached so repeated Intern
	// calls for the same name can return a Handle without a heap scan.
	cellRef *cell
}

func (s *Symbol) TypeName() string { return "symbol" }

func (s *Symbol) String() string {
	if s.gensym {
		return fmt.Sprintf("#<symbol-%p>", s.cellRef)
	}
	return s.name
}

// Name returns the symbol's spelling, as read or as passed to FreshSymbol.
func (s *Symbol) Name() string { return s.name }

// IsGensym reports whether s was produced by FreshSymbol rather than
// Intern — i.e. whether it is absent from the heap's symbol table and thus
// unreachable by name from any reader input.
func (s *Symbol) IsGensym() bool { return s.gensym }
