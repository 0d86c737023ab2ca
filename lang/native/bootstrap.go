package native

import "github.com/mna/liane/lang/heap"

// Bootstrap creates a fresh heap with the "core" module (every builtin
// native, exported) and an empty "user" module made current so top-level
// `define`s land there — the two-module starting point every liane program
// runs against, mirroring original_source's separation between its builtin
// natives module and the program's own definitions.
func Bootstrap() *heap.Heap {
	h := heap.New()
	core := h.NewModule("core")
	Core().Install(h, core)
	user := h.NewModule("user")
	h.SetCurrentModule(user)
	return h
}
