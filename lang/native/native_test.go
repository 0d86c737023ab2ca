package native_test

import (
	"testing"

	"github.com/mna/liane/lang/eval"
	"github.com/mna/liane/lang/heap"
	"github.com/mna/liane/lang/native"
	"github.com/mna/liane/lang/reader"
	"github.com/mna/liane/lang/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run reads and evaluates every form in src against a fresh bootstrapped
// heap, returning the value of the last form (or the signal that aborted
// evaluation, if any).
func run(t *testing.T, src string) (heap.Handle, *heap.Signal, *heap.Heap) {
	t.Helper()
	h := native.Bootstrap()
	rd := reader.New(h, src, source.NewNative())
	env := eval.NewEnv(h, heap.Nil)
	var result heap.Handle
	for {
		res := rd.Read()
		if res.Status == reader.StatusNothing {
			return result, nil, h
		}
		require.Equal(t, reader.StatusOK, res.Status, res.Err)
		v, sig := eval.Eval(h, res.Value, env, 0)
		if sig != nil {
			return heap.Nil, sig, h
		}
		result = v
	}
}

func TestLambdaApplication(t *testing.T) {
	v, sig, _ := run(t, `(define add-one (lambda (n) (add n 1))) (add-one 41)`)
	require.Nil(t, sig)
	val, _ := v.Get()
	assert.Equal(t, heap.Int(42), val)
}

func TestLambdaRestParameter(t *testing.T) {
	v, sig, _ := run(t, `(define f (lambda (a & rest) rest)) (f 1 2 3)`)
	require.Nil(t, sig)
	items, ok := eval.ListToSlice(v)
	require.True(t, ok)
	require.Len(t, items, 2)
	first, _ := items[0].Get()
	assert.Equal(t, heap.Int(2), first)
}

func TestLambdaRestParameterAbsorbsNothing(t *testing.T) {
	v, sig, _ := run(t, `(define f (lambda (a & rest) rest)) (f 1)`)
	require.Nil(t, sig)
	assert.True(t, v.IsNil())
}

func TestTailCallDoesNotOverflow(t *testing.T) {
	src := `
(define count-down
  (lambda (n)
    (branch (equal n 0) 'done (count-down (subtract n 1)))))
(count-down 10000)
`
	v, sig, _ := run(t, src)
	require.Nil(t, sig, "a self tail call must not raise stackoverflow regardless of iteration count")
	val, _ := v.Get()
	sym, ok := val.(*heap.Symbol)
	require.True(t, ok)
	assert.Equal(t, "done", sym.Name())
}

func TestNonTailRecursionOverflows(t *testing.T) {
	src := `
(define sum
  (lambda (n)
    (branch (equal n 0) 0 (add n (sum (subtract n 1))))))
(sum 10000)
`
	_, sig, h := run(t, src)
	require.NotNil(t, sig, "deep non-tail recursion must raise a signal rather than crash the process")
	assert.False(t, sig.IsAbort())
	_ = h
}

func TestArithmeticOverflowSignals(t *testing.T) {
	src := `(add 9223372036854775807 1)`
	_, sig, h := run(t, src)
	require.NotNil(t, sig)
	kindSym, err := asErrorKind(h, sig.Value)
	require.NoError(t, err)
	assert.Equal(t, "arithmetic-overflow", kindSym)
}

func TestDivideByZeroSignals(t *testing.T) {
	_, sig, _ := run(t, `(divide 1 0)`)
	require.NotNil(t, sig)
}

func TestDefineDoesNotExportByDefault(t *testing.T) {
	h := native.Bootstrap()
	userEnv := eval.NewEnv(h, heap.Nil)
	rd := reader.New(h, `(define secret 1)`, source.NewNative())
	res := rd.Read()
	require.Equal(t, reader.StatusOK, res.Status)
	_, sig := eval.Eval(h, res.Value, userEnv, 0)
	require.Nil(t, sig)

	user, ok := h.FindModule("user")
	require.True(t, ok)
	assert.False(t, user.Exports("secret"))

	other := h.NewModule("other")
	_, v, ambiguous := heap.ResolveGlobal(h.Modules(), "secret", other.Name)
	require.Nil(t, ambiguous)
	assert.True(t, v.IsNil(), "a non-exported binding must not resolve from another module")
}

func TestExportMakesDefineVisibleAcrossModules(t *testing.T) {
	h := native.Bootstrap()
	userEnv := eval.NewEnv(h, heap.Nil)
	rd := reader.New(h, `(define shared 2) (export shared)`, source.NewNative())
	for {
		res := rd.Read()
		if res.Status == reader.StatusNothing {
			break
		}
		require.Equal(t, reader.StatusOK, res.Status)
		_, sig := eval.Eval(h, res.Value, userEnv, 0)
		require.Nil(t, sig)
	}

	other := h.NewModule("other")
	_, v, ambiguous := heap.ResolveGlobal(h.Modules(), "shared", other.Name)
	require.Nil(t, ambiguous)
	require.False(t, v.IsNil())
	val, _ := v.Get()
	assert.Equal(t, heap.Int(2), val)
}

func TestAlreadyDefinedSignals(t *testing.T) {
	_, sig, _ := run(t, `(define x 1) (define x 2)`)
	require.NotNil(t, sig)
}

func TestTrapBindsSignalValueOnNonAbort(t *testing.T) {
	v, sig, _ := run(t, `(trap (signal 'boom) *trapped-signal*)`)
	require.Nil(t, sig)
	val, _ := v.Get()
	sym, ok := val.(*heap.Symbol)
	require.True(t, ok)
	assert.Equal(t, "boom", sym.Name())
}

func TestTrapReturnsNormalBodyWhenNoSignal(t *testing.T) {
	v, sig, _ := run(t, `(trap 42 'unreachable)`)
	require.Nil(t, sig)
	val, _ := v.Get()
	assert.Equal(t, heap.Int(42), val)
}

func TestTrapDoesNotCatchAbort(t *testing.T) {
	_, sig, _ := run(t, `(trap (signal) 'unreachable)`)
	require.NotNil(t, sig)
	assert.True(t, sig.IsAbort())
}

func TestQuoteReturnsDataUnevaluated(t *testing.T) {
	v, sig, _ := run(t, `'(add 1 2)`)
	require.Nil(t, sig)
	items, ok := eval.ListToSlice(v)
	require.True(t, ok)
	require.Len(t, items, 3)
}

func TestEqualStructuralOnPairsIdentityOnSymbols(t *testing.T) {
	v, sig, _ := run(t, `(equal '(1 2) '(1 2))`)
	require.Nil(t, sig)
	assert.False(t, v.IsNil())

	v2, sig2, _ := run(t, `(equal 'a 'a)`)
	require.Nil(t, sig2)
	assert.False(t, v2.IsNil())
}

// asErrorKind extracts the kind value from the flat `(kind <sym> source
// <sym> ...)` property list NewError builds — the second element, not the
// first, since the first is always the literal label symbol `kind`.
func asErrorKind(h *heap.Heap, v heap.Handle) (string, error) {
	val, _ := v.Get()
	cons := val.(*heap.Cons)
	cdrVal, _ := cons.Cdr.Get()
	kindCons := cdrVal.(*heap.Cons)
	kindVal, _ := kindCons.Car.Get()
	sym := kindVal.(*heap.Symbol)
	return sym.Name(), nil
}
