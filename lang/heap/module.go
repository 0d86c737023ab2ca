package heap

import (
	"github.com/dolthub/swiss"
	"golang.org/x/exp/slices"
)

// Module is a namespace of bindings: a name-to-Handle table plus the subset
// of names it exports. There is no explicit import list (spec §4.5) — any
// module's exported bindings are visible from anywhere, and a bare symbol
// reference that isn't bound lexically is resolved by scanning every
// module's export set, erroring as "ambiguous-name" when more than one
// module exports the same name. This mirrors original_source/src/memory/
// mod.rs's `Module` (name table + export set) with the swiss.Map the teacher
// uses for lang/machine.Map substituted for the reference's HashMap.
type Module struct {
	Name string

	bindings *swiss.Map[string, Handle]
	exported map[string]struct{}
}

// NewModule creates an empty module with the given name.
func NewModule(name string) *Module {
	return &Module{
		Name:     name,
		bindings: swiss.NewMap[string, Handle](uint32(8)),
		exported: make(map[string]struct{}),
	}
}

func (*Module) TypeName() string { return "module" }

func (m *Module) String() string { return "<module " + m.Name + ">" }

// Define binds name to v in m. If export is true the binding also becomes
// visible to global (non-lexical) symbol resolution from any other module.
// Define does not itself retain v; callers that keep v beyond the call
// (which Define always does, by storing it) must have already retained it.
func (m *Module) Define(name string, v Handle, export bool) {
	m.bindings.Put(name, v)
	if export {
		m.exported[name] = struct{}{}
	} else {
		delete(m.exported, name)
	}
}

// Undefine removes name from m, from both the binding table and the export
// set. It reports whether the name was bound.
func (m *Module) Undefine(name string) bool {
	_, ok := m.bindings.Get(name)
	if ok {
		m.bindings.Delete(name)
		delete(m.exported, name)
	}
	return ok
}

// Lookup returns the binding for name within m, regardless of whether it is
// exported — a module always sees its own private bindings.
func (m *Module) Lookup(name string) (Handle, bool) {
	return m.bindings.Get(name)
}

// Exports reports whether name is one of m's exported bindings.
func (m *Module) Exports(name string) bool {
	_, ok := m.exported[name]
	return ok
}

// Each calls fn for every binding in m, for use by the collector's mark
// phase. Iteration order is unspecified.
func (m *Module) Each(fn func(name string, v Handle)) {
	m.bindings.Iter(func(k string, v Handle) bool {
		fn(k, v)
		return false
	})
}

// ResolveGlobal scans every module in mods for a binding named name that is
// visible to querying, per spec §4.3 rule 2: a module contributes its
// binding if the name is in its export set, or if querying names that same
// module (a module always sees its own private globals). It returns the
// single owning module and its binding when exactly one module contributes;
// when more than one does, it returns the sorted list of contributing
// module names instead, for the evaluator to report as an "ambiguous-name"
// error.
func ResolveGlobal(mods []*Module, name, querying string) (owner *Module, v Handle, ambiguous []string) {
	var hit *Module
	var hitValue Handle
	var contributors []string
	for _, m := range mods {
		if !m.Exports(name) && m.Name != querying {
			continue
		}
		val, ok := m.Lookup(name)
		if !ok {
			continue
		}
		contributors = append(contributors, m.Name)
		hit, hitValue = m, val
	}
	if len(contributors) > 1 {
		slices.Sort(contributors)
		return nil, Nil, contributors
	}
	if len(contributors) == 1 {
		return hit, hitValue, nil
	}
	return nil, Nil, nil
}
