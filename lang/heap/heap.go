package heap

import (
	"github.com/dolthub/swiss"
	"github.com/mna/liane/lang/debug"
	"github.com/mna/liane/lang/source"
	"golang.org/x/exp/maps"
)

// Resize policy constants, carried over unchanged from
// original_source/src/config.rs: the arena starts with this many free cells,
// grows by roughly the current live count when exhausted, and shrinks back
// down once the free pool becomes large relative to what's actually live.
const (
	initialFreeCells  = 256
	maximumFreeRatio  = 0.75
	minimumFreeRatio  = 0.1
	allocationRatio   = 1.0
	shrinkSlackFactor = 1.1
)

// Heap owns every cell, the symbol-interning table, and the set of loaded
// modules. It is the sole allocator in the system: the reader, evaluator and
// native functions never construct a cell directly, only through a *Heap's
// methods, matching original_source/src/memory/mod.rs's Memory struct.
type Heap struct {
	// cells is the arena. cells[:boundary] are in use (live candidates,
	// checked each collection); cells[boundary:] is the free pool available
	// for reuse by Allocate. Cells are never removed from this slice, only
	// swapped within it and truncated at the tail by shrink.
	cells    []*cell
	boundary int

	symbols *swiss.Map[string, *Symbol]
	gensymN uint64

	modules []*Module
	current *Module

	probe *debug.Probe

	// roots pins values that live only in a Go local across a call that may
	// allocate (and so may trigger Collect) — see roots.go. This is the
	// manual equivalent of the reference implementation's Rust call stack,
	// where a live GcRef local keeps its cell's external_ref_count above
	// zero for as long as that local is in scope (original_source's GcRef
	// Clone/Drop impls run implicitly on every copy and scope exit; Go has
	// no such hook, so the evaluator pushes/pops explicitly instead).
	roots []RootFunc
}

// CurrentModule returns the module that `define`/`undefine` target by
// default — the last module made current by SetCurrentModule, or the first
// registered module if none has been set explicitly.
func (h *Heap) CurrentModule() *Module {
	if h.current != nil {
		return h.current
	}
	if len(h.modules) > 0 {
		return h.modules[0]
	}
	return nil
}

// SetCurrentModule changes the default target of `define`/`undefine`.
func (h *Heap) SetCurrentModule(m *Module) { h.current = m }

// New creates an empty heap with the initial free-cell pool and no modules.
func New() *Heap {
	h := &Heap{
		symbols: swiss.NewMap[string, *Symbol](uint32(64)),
	}
	h.growFreePool(initialFreeCells)
	return h
}

// AttachProbe wires a debug probe into the heap; every subsequent
// allocation reports to it. Passing nil detaches any existing probe.
func (h *Heap) AttachProbe(p *debug.Probe) { h.probe = p }

// Step reports a single evaluation step at loc to the attached probe, if
// any, and reports whether the observer requested an abort. A nil probe
// always returns false, so callers never need to guard it themselves.
func (h *Heap) Step(loc source.Location) bool {
	if h.probe == nil {
		return false
	}
	return h.probe.OnStep(loc)
}

// ReportSignal reports a raised signal to the attached probe, if any.
func (h *Heap) ReportSignal(loc source.Location, detail string) {
	if h.probe != nil {
		h.probe.OnSignal(loc, detail)
	}
}

// growFreePool appends n fresh, unused cells to the tail of the arena.
func (h *Heap) growFreePool(n int) {
	for i := 0; i < n; i++ {
		h.cells = append(h.cells, &cell{})
	}
}

// freeCount returns how many cells in the arena are currently unused.
func (h *Heap) freeCount() int { return len(h.cells) - h.boundary }

// allocate claims one free cell, collecting and then growing first if the
// pool is exhausted, and returns it cleared, with a refs count of zero; the
// New* callers wrap it in a Handle (and their callers are responsible for
// Retain-ing that Handle if it will outlive the current expression).
func (h *Heap) allocate() *cell {
	if h.probe != nil {
		h.probe.OnAllocate(h.boundary, h.freeCount())
	}
	if h.freeCount() == 0 {
		h.Collect()
	}
	if h.freeCount() == 0 {
		grow := int(allocationRatio * float64(h.boundary))
		if grow < initialFreeCells {
			grow = initialFreeCells
		}
		h.growFreePool(grow)
	}
	c := h.cells[h.boundary]
	*c = cell{}
	h.boundary++
	return c
}

// NewInt allocates a cell holding n.
func (h *Heap) NewInt(n int64) Handle {
	c := h.allocate()
	c.val = Int(n)
	return Handle{c: c}
}

// NewChar allocates a cell holding r.
func (h *Heap) NewChar(r rune) Handle {
	c := h.allocate()
	c.val = Char(r)
	return Handle{c: c}
}

// NewCons allocates a pair. It does not retain car/cdr; the caller must
// already hold owning references to them (or have just allocated them).
func (h *Heap) NewCons(car, cdr Handle) Handle {
	c := h.allocate()
	c.val = &Cons{Car: car, Cdr: cdr}
	return Handle{c: c}
}

// NewFunction allocates a function value.
func (h *Heap) NewFunction(fn *Function) Handle {
	c := h.allocate()
	c.val = fn
	return Handle{c: c}
}

// NewModule registers a new module named name and returns it. It is a
// programming error to register the same name twice; callers check with
// FindModule first (mirroring original_source's already-defined checks
// being the caller's responsibility, not the table's).
func (h *Heap) NewModule(name string) *Module {
	m := NewModule(name)
	h.modules = append(h.modules, m)
	return m
}

// FindModule returns the module named name, if one is registered.
func (h *Heap) FindModule(name string) (*Module, bool) {
	for _, m := range h.modules {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Modules returns every registered module, for iteration by global name
// resolution and by the collector.
func (h *Heap) Modules() []*Module { return h.modules }

// SymbolNames returns every interned symbol's spelling, for tests that need
// to enumerate the symbol table without depending on the swiss.Map's own
// iteration order.
func (h *Heap) SymbolNames() []string {
	byName := make(map[string]struct{}, 64)
	h.symbols.Iter(func(k string, _ *Symbol) bool {
		byName[k] = struct{}{}
		return false
	})
	return maps.Keys(byName)
}

// Intern returns the unique Symbol for name, allocating a new cell for it
// the first time name is seen and reusing that cell (not just the *Symbol)
// on every subsequent call — so two Intern calls with the same name return
// Handles that are Identical, matching spec §4.2's identity-comparison
// rule. Interned symbols live for the lifetime of the heap: the symbol
// table itself is a GC root.
func (h *Heap) Intern(name string) Handle {
	if sym, ok := h.symbols.Get(name); ok {
		return h.handleFor(sym)
	}
	sym := &Symbol{name: name}
	c := h.allocate()
	c.val = sym
	sym.cellRef = c
	h.symbols.Put(name, sym)
	return Handle{c: c}
}

// handleFor finds the cell currently holding sym. Because interning never
// re-allocates, this is only reached through Intern's cache-hit path, which
// means walking the live region once per repeated Intern of a cold heap can
// be avoided entirely by caching the cell pointer alongside the symbol; we
// do that instead of a linear scan.
func (h *Heap) handleFor(sym *Symbol) Handle {
	return Handle{c: sym.cellRef}
}

// FreshSymbol allocates a new, never-interned symbol for use as a hygienic
// binding name (the `gensym` native). Its name is cosmetic only: identity
// is Go pointer identity on the underlying cell, so no later Intern of the
// same spelling can ever collide with it.
func (h *Heap) FreshSymbol(base string) Handle {
	h.gensymN++
	sym := &Symbol{name: base, gensym: true, ordinal: h.gensymN}
	c := h.allocate()
	c.val = sym
	sym.cellRef = c
	return Handle{c: c}
}

// WrapMetadata attaches md to h, returning a new cell that wraps it. It
// panics if h already carries metadata: metadata wraps exactly one layer,
// matching the reference implementation's refusal to nest Meta{Meta{...}}.
func (h *Heap) WrapMetadata(target Handle, md Metadata) Handle {
	if target.c != nil && target.c.meta != nil {
		panic("heap: cannot wrap metadata around an already-wrapped value")
	}
	c := h.allocate()
	c.meta = &md
	c.ref = target
	return Handle{c: c}
}
