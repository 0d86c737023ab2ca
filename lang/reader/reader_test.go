package reader_test

import (
	"testing"

	"github.com/kylelemons/godebug/diff"
	"github.com/mna/liane/lang/heap"
	"github.com/mna/liane/lang/reader"
	"github.com/mna/liane/lang/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readOne(t *testing.T, h *heap.Heap, text string) reader.Result {
	t.Helper()
	rd := reader.New(h, text, source.NewStdin(1, 1))
	return rd.Read()
}

func TestReadRoundTrip(t *testing.T) {
	cases := []string{
		"42",
		"-7",
		"foo",
		"(a b c)",
		"(a (b c) d)",
		"()",
		"'x",
		`"hello"`,
	}
	for _, in := range cases {
		in := in
		t.Run(in, func(t *testing.T) {
			h := heap.New()
			res := readOne(t, h, in)
			require.Equal(t, reader.StatusOK, res.Status, res.Err)
			got := reader.Print(res.Value)
			// 'x reads as (quote x) and re-prints as such, not as the original
			// shorthand; every other case round-trips byte for byte.
			if in == "'x" {
				assert.Equal(t, "(quote x)", got)
				return
			}
			if patch := diff.Diff(in, got); patch != "" {
				t.Errorf("round-trip mismatch:\n%s", patch)
			}
		})
	}
}

func TestReadNothingOnBlankInput(t *testing.T) {
	h := heap.New()
	res := readOne(t, h, "   ; just a comment\n")
	assert.Equal(t, reader.StatusNothing, res.Status)
}

func TestReadIncompleteOnUnclosedList(t *testing.T) {
	h := heap.New()
	res := readOne(t, h, "(a b")
	assert.Equal(t, reader.StatusIncomplete, res.Status)
}

func TestReadIncompleteOnUnclosedString(t *testing.T) {
	h := heap.New()
	res := readOne(t, h, `"abc`)
	assert.Equal(t, reader.StatusIncomplete, res.Status)
}

func TestReadErrorOnStrayCloseParen(t *testing.T) {
	h := heap.New()
	res := readOne(t, h, ")")
	assert.Equal(t, reader.StatusError, res.Status)
	assert.Contains(t, res.Err, "too many closing parentheses")
}

func TestReadCharLiteral(t *testing.T) {
	h := heap.New()
	res := readOne(t, h, "%A")
	require.Equal(t, reader.StatusOK, res.Status, res.Err)
	val, _ := res.Value.Get()
	assert.Equal(t, heap.Char('A'), val)
}

func TestReadCharLiteralNamedEscapes(t *testing.T) {
	cases := map[string]rune{
		`%\n`: '\n',
		`%\t`: '\t',
		`%\s`: ' ',
		`%\r`: '\r',
		`%\\`: '\\',
	}
	for in, want := range cases {
		in, want := in, want
		t.Run(in, func(t *testing.T) {
			h := heap.New()
			res := readOne(t, h, in)
			require.Equal(t, reader.StatusOK, res.Status, res.Err)
			val, _ := res.Value.Get()
			assert.Equal(t, heap.Char(want), val)
		})
	}
}

func TestCommaIsWhitespace(t *testing.T) {
	h := heap.New()
	rd := reader.New(h, "(a, b, c)", source.NewStdin(1, 1))
	res := rd.Read()
	require.Equal(t, reader.StatusOK, res.Status, res.Err)
	assert.Equal(t, "(a b c)", reader.Print(res.Value))
}

func TestStringReadsAsListMarkerForm(t *testing.T) {
	h := heap.New()
	res := readOne(t, h, `"ab"`)
	require.Equal(t, reader.StatusOK, res.Status, res.Err)
	val, ok := res.Value.Get()
	require.True(t, ok)
	cons, ok := val.(*heap.Cons)
	require.True(t, ok)
	carVal, _ := cons.Car.Get()
	sym, ok := carVal.(*heap.Symbol)
	require.True(t, ok)
	assert.Equal(t, "list", sym.Name())
}

func TestReadRestReflectsRemainingInput(t *testing.T) {
	h := heap.New()
	res := readOne(t, h, "1 2 3")
	require.Equal(t, reader.StatusOK, res.Status)
	assert.Equal(t, " 2 3", res.Rest)
}
