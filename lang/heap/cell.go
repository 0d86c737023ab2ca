package heap

// cell is a heap slot. It holds either a primitive Value or a metadata
// wrapper around another cell, plus the external-reference count that the
// collector uses as a root. Cells are heap-allocated individually (never
// embedded in a slice by value) so that swapping their positions during
// sweep, or growing the arena, never invalidates a pointer into one — this
// is the Go equivalent of the reference implementation's Box<CellContent>
// inside a Vec<Cell>.
type cell struct {
	val  Value     // the primitive value; nil when meta != nil
	meta *Metadata // non-nil when this cell wraps another with metadata
	ref  Handle    // the wrapped cell; valid when meta != nil

	refs int // external-reference count; a GC root when > 0
}

// Handle is a reference to a cell, or the nil sentinel when it points
// nowhere. Handle is never itself allocated as a cell: per spec §3, nil is
// "the empty list; distinguished from all others" and is never a heap
// allocation.
type Handle struct {
	c *cell
}

// Nil is the empty-list sentinel. The zero value of Handle is already Nil;
// this is provided for readability at call sites.
var Nil = Handle{}

// IsNil reports whether h is the nil sentinel.
func (h Handle) IsNil() bool { return h.c == nil }

// Retain increments h's external-reference count and returns h. Any Handle
// that will outlive the call frame that produced it — stored into an
// environment, a module binding, or held across a point where further
// allocation may trigger collection — must be retained, and the retaining
// owner must eventually call Release. This is the manual equivalent of the
// reference implementation's GcRef::clone, which ran implicitly whenever a
// GcRef was copied; Go has no such hook; retain/release calls take its place
// at the boundaries that matter (see DESIGN.md).
func (h Handle) Retain() Handle {
	if h.c != nil {
		h.c.refs++
	}
	return h
}

// Release decrements h's external-reference count. It is the counterpart to
// Retain, equivalent to the reference implementation's GcRef::drop.
func (h Handle) Release() {
	if h.c != nil {
		h.c.refs--
	}
}

// RetainAll retains every handle in hs and returns hs for chaining.
func RetainAll(hs []Handle) []Handle {
	for _, h := range hs {
		h.Retain()
	}
	return hs
}

// ReleaseAll releases every handle in hs.
func ReleaseAll(hs []Handle) {
	for _, h := range hs {
		h.Release()
	}
}

// resolve follows a metadata wrapper (if any) and returns the innermost
// primitive value, or nil if h is Nil. Reading through metadata is
// idempotent: resolve never needs to loop more than once, because metadata
// wraps exactly one layer (see WrapMetadata).
func (h Handle) resolve() *cell {
	if h.c == nil {
		return nil
	}
	if h.c.meta != nil {
		return h.c.ref.resolve()
	}
	return h.c
}

// Get returns the primitive value h refers to, transparently unwrapping
// metadata. The second result is false for the Nil handle.
func (h Handle) Get() (Value, bool) {
	c := h.resolve()
	if c == nil {
		return nil, false
	}
	return c.val, true
}

// Metadata returns the metadata directly attached to h, if any. Unlike Get,
// this does not unwrap — it reports whether h itself (not some inner cell) is
// a metadata wrapper.
func (h Handle) Metadata() (Metadata, bool) {
	if h.c == nil || h.c.meta == nil {
		return Metadata{}, false
	}
	return *h.c.meta, true
}

// WithoutMetadata returns the innermost handle with the metadata wrapper (if
// any) stripped, without changing reference counts (the caller already owns
// h; the returned handle shares its underlying cell).
func (h Handle) WithoutMetadata() Handle {
	if h.c == nil || h.c.meta == nil {
		return h
	}
	return h.c.ref
}

// addr returns a stable, comparable identity for h's cell, used for printing
// uninterned symbols and for identity-equality checks. It is not exported:
// callers compare Handles with Identical, not by extracting addresses.
func (h Handle) addr() *cell { return h.resolve() }

// Identical reports whether a and b refer to the same cell once metadata is
// unwrapped from both sides. Two Nil handles are identical.
func Identical(a, b Handle) bool { return a.addr() == b.addr() }
