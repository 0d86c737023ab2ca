package heap

// Cons is the pair primitive: every list and every dotted pair in the
// language is built from these. Car and Cdr are Handles, not *cell, so that
// holding a Cons value does not by itself keep its children alive outside
// the owning cell's reference count — the collector traces through
// car/cdr during mark, it does not infer liveness from Go's own memory
// model.
type Cons struct {
	Car Handle
	Cdr Handle
}

func (*Cons) TypeName() string { return "cons" }

func (*Cons) String() string { return "<pair>" }
