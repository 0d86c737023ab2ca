// Package source describes where a piece of program text came from, for use
// by the reader and by error reporting. It plays the same role as the
// teacher's lang/token.Pos, but carries the reader's notion of a named origin
// (native code, the prelude, stdin, or a file) rather than a file-set index.
package source

import "fmt"

// Kind identifies the origin of a span of source text.
type Kind int

const (
	// Native identifies source text that does not come from the reader at
	// all, e.g. the location attached to metadata for natively-defined
	// functions.
	Native Kind = iota
	// Prelude identifies text read from the built-in prelude.
	Prelude
	// Stdin identifies text read from the standard input stream.
	Stdin
	// File identifies text read from a named file on disk.
	File
)

// Location is a source position: a Kind plus, for all kinds but Native, a
// 1-based line and column. For File it also carries the file path.
type Location struct {
	Kind   Kind
	Path   string
	Line   int
	Column int
}

// NewNative returns the Location used for values that were never read from
// program text (native functions, synthesized symbols).
func NewNative() Location { return Location{Kind: Native} }

// NewPrelude returns a Location into the built-in prelude at line/column.
func NewPrelude(line, column int) Location {
	return Location{Kind: Prelude, Line: line, Column: column}
}

// NewStdin returns a Location into the interactive input stream.
func NewStdin(line, column int) Location {
	return Location{Kind: Stdin, Line: line, Column: column}
}

// NewFile returns a Location into the named file.
func NewFile(path string, line, column int) Location {
	return Location{Kind: File, Path: path, Line: line, Column: column}
}

// StepLine returns the Location advanced to the start of the next line.
func (l Location) StepLine() Location {
	if l.Kind == Native {
		return l
	}
	l.Line++
	l.Column = 1
	return l
}

// StepColumn returns the Location advanced by one column on the same line.
func (l Location) StepColumn() Location {
	if l.Kind == Native {
		return l
	}
	l.Column++
	return l
}

// String renders the location the way diagnostics print it, e.g.
// "stdin:3:12" or "myfile.lisp:1:1". Native locations render as "<native>".
func (l Location) String() string {
	switch l.Kind {
	case Native:
		return "<native>"
	case Prelude:
		return fmt.Sprintf("prelude:%d:%d", l.Line, l.Column)
	case Stdin:
		return fmt.Sprintf("stdin:%d:%d", l.Line, l.Column)
	case File:
		return fmt.Sprintf("%s:%d:%d", l.Path, l.Line, l.Column)
	default:
		return "<unknown>"
	}
}
