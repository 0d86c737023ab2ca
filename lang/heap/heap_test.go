package heap_test

import (
	"strings"
	"testing"

	"github.com/mna/liane/lang/heap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternIdentity(t *testing.T) {
	h := heap.New()
	a := h.Intern("foo")
	b := h.Intern("foo")
	assert.True(t, heap.Identical(a, b), "interning the same name twice must return identical handles")

	c := h.Intern("bar")
	assert.False(t, heap.Identical(a, c))
}

func TestFreshSymbolNeverCollidesWithIntern(t *testing.T) {
	h := heap.New()
	g := h.FreshSymbol("x")
	interned := h.Intern("x")
	assert.False(t, heap.Identical(g, interned), "a gensym must never be identical to an interned symbol of the same spelling")
}

func TestFreshSymbolPrintsAsAddressNotName(t *testing.T) {
	h := heap.New()
	g := h.FreshSymbol("widget")
	val, ok := g.Get()
	require.True(t, ok)
	sym := val.(*heap.Symbol)
	printed := sym.String()
	assert.True(t, strings.HasPrefix(printed, "#<symbol-"), "a gensym must print as #<symbol-ADDR>, got %q", printed)
	assert.True(t, strings.HasSuffix(printed, ">"))
	assert.NotContains(t, printed, "widget", "a gensym's printed form must not leak the name it was seeded from")
}

func TestMetadataWrapsExactlyOneLayer(t *testing.T) {
	h := heap.New()
	v := h.NewInt(1).Retain()
	wrapped := h.WrapMetadata(v, heap.Metadata{Name: "x"}).Retain()

	md, ok := wrapped.Metadata()
	require.True(t, ok)
	assert.Equal(t, "x", md.Name)

	val, ok := wrapped.Get()
	require.True(t, ok)
	assert.Equal(t, heap.Int(1), val)

	assert.Panics(t, func() {
		h.WrapMetadata(wrapped, heap.Metadata{Name: "y"})
	}, "wrapping an already-wrapped value must panic")
}

func TestCollectLeavesSymbolTableUntouched(t *testing.T) {
	h := heap.New()
	// allocate and immediately drop a chain of cons cells with no retained
	// reference and no root keeping them alive.
	for i := 0; i < 1000; i++ {
		h.NewCons(h.NewInt(int64(i)), heap.Nil)
	}
	before := h.SymbolNames()
	h.Collect()
	after := h.SymbolNames()
	assert.ElementsMatch(t, before, after, "collection must not touch the symbol table")
}

func TestCollectKeepsRetainedValuesAlive(t *testing.T) {
	h := heap.New()
	kept := h.NewCons(h.NewInt(42), heap.Nil).Retain()
	for i := 0; i < 2000; i++ {
		h.NewCons(h.NewInt(int64(i)), heap.Nil)
	}
	h.Collect()

	val, ok := kept.Get()
	require.True(t, ok)
	cons := val.(*heap.Cons)
	carVal, ok := cons.Car.Get()
	require.True(t, ok)
	assert.Equal(t, heap.Int(42), carVal)
}

func TestModuleAmbiguousNameResolution(t *testing.T) {
	h := heap.New()
	m1 := h.NewModule("m1")
	m2 := h.NewModule("m2")
	v1 := h.NewInt(1).Retain()
	v2 := h.NewInt(2).Retain()
	m1.Define("shared", v1, true)
	m2.Define("shared", v2, true)

	owner, _, ambiguous := heap.ResolveGlobal(h.Modules(), "shared", "")
	assert.Nil(t, owner)
	assert.Equal(t, []string{"m1", "m2"}, ambiguous)
}

func TestModuleSingleExportResolves(t *testing.T) {
	h := heap.New()
	m := h.NewModule("only")
	v := h.NewInt(7).Retain()
	m.Define("x", v, true)

	owner, got, ambiguous := heap.ResolveGlobal(h.Modules(), "x", "")
	require.Nil(t, ambiguous)
	require.NotNil(t, owner)
	val, _ := got.Get()
	assert.Equal(t, heap.Int(7), val)
}

func TestModuleNonExportedVisibleOnlyFromDefiningModule(t *testing.T) {
	h := heap.New()
	a := h.NewModule("a")
	h.NewModule("b")
	v := h.NewInt(9).Retain()
	a.Define("secret", v, false)

	owner, got, ambiguous := heap.ResolveGlobal(h.Modules(), "secret", "a")
	require.Nil(t, ambiguous)
	require.NotNil(t, owner)
	assert.Equal(t, "a", owner.Name)
	val, _ := got.Get()
	assert.Equal(t, heap.Int(9), val)

	_, _, ambiguous = heap.ResolveGlobal(h.Modules(), "secret", "b")
	assert.Nil(t, ambiguous)
	_, found, _ := heap.ResolveGlobal(h.Modules(), "secret", "b")
	assert.True(t, found.IsNil(), "a non-exported binding must be invisible from any module but its own")
}
