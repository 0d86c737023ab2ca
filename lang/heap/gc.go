package heap

// Collect runs a full tracing mark-and-sweep pass, per spec §4.1 and
// original_source/src/memory/mod.rs's `Memory::gc`. Roots are every cell
// with a positive external reference count, every interned symbol, every
// binding in every module (modules and the symbol table are themselves
// permanent roots, never swept), and every handle currently pinned by
// PushRoot — the evaluator's in-flight environment and expression, held only
// in Go locals while under construction, are rooted this way (roots.go).
// After sweep, the free pool is resized according to the same grow/shrink
// policy Allocate uses.
func (h *Heap) Collect() {
	marked := make(map[*cell]bool, h.boundary)

	h.symbols.Iter(func(_ string, sym *Symbol) bool {
		h.mark(sym.cellRef, marked)
		return false
	})
	for _, m := range h.modules {
		m.Each(func(_ string, v Handle) {
			h.mark(v.c, marked)
		})
	}
	for _, root := range h.roots {
		for _, v := range root() {
			h.mark(v.c, marked)
		}
	}
	for i := 0; i < h.boundary; i++ {
		c := h.cells[i]
		if c.refs > 0 {
			h.mark(c, marked)
		}
	}

	if h.probe != nil {
		h.probe.OnCollect(len(marked), h.boundary)
	}

	h.sweep(marked)
	h.resize()
}

// mark traces c and everything reachable from it, recording each visited
// cell in marked. It is safe to call with a nil c (the Nil handle).
func (h *Heap) mark(c *cell, marked map[*cell]bool) {
	if c == nil || marked[c] {
		return
	}
	marked[c] = true

	if c.meta != nil {
		h.mark(c.ref.c, marked)
		return
	}
	switch v := c.val.(type) {
	case *Cons:
		h.mark(v.Car.c, marked)
		h.mark(v.Cdr.c, marked)
	case *Function:
		for _, p := range v.Params {
			h.mark(p.c, marked)
		}
		h.mark(v.Rest.c, marked)
		h.mark(v.Body.c, marked)
		h.mark(v.Env.c, marked)
	}
}

// sweep partitions the live region in place: cells reachable in marked are
// swapped to the front, the rest are cleared and become the new free pool.
// This is a non-relocating sweep in the sense the spec requires — no live
// cell's address (and so no outstanding Handle pointing at one) ever
// changes, only its position within the bookkeeping slice does.
func (h *Heap) sweep(marked map[*cell]bool) {
	write := 0
	for read := 0; read < h.boundary; read++ {
		c := h.cells[read]
		if marked[c] {
			h.cells[write], h.cells[read] = c, h.cells[write]
			write++
		}
	}
	for i := write; i < h.boundary; i++ {
		*h.cells[i] = cell{}
	}
	h.boundary = write
}

// resize grows or shrinks the free pool following the same ratios as
// original_source/src/config.rs: shrink the tail of the arena once free
// space is more than maximumFreeRatio of the live count, down to
// shrinkSlackFactor times live plus one; otherwise leave the pool as is
// (Allocate grows it lazily on demand).
func (h *Heap) resize() {
	live := h.boundary
	free := h.freeCount()
	if live == 0 {
		return
	}
	if float64(free) > maximumFreeRatio*float64(live) {
		target := int(shrinkSlackFactor*float64(live)) + 1
		if target < live {
			target = live
		}
		if target < len(h.cells) {
			h.cells = h.cells[:target]
		}
	}
	_ = minimumFreeRatio // reserved: see DESIGN.md on the unused lower bound
}
