package heap

import "github.com/mna/liane/lang/source"

// Metadata is the read-name, source location and documentation a cell can
// carry, mirroring original_source/src/metadata/mod.rs's Metadata struct.
// Metadata wraps exactly one layer: WrapMetadata refuses to wrap a cell that
// is already a metadata wrapper, the same invariant the reference
// implementation enforces by panicking on a double Meta{Meta{...}} nesting.
//
// WrapMetadata is the only way a cell gets metadata: neither the reader nor
// `define` attaches any (define accepts a doc string argument and discards
// it).
type Metadata struct {
	// Name is the read-name of the wrapped value.
	Name string
	// Location is where the wrapped value came from.
	Location source.Location
	// Documentation is the wrapped value's doc string.
	Documentation string
}
