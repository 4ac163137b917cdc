// Package shape encodes type descriptors into compact binary shapes and
// assembles the per-compilation-unit tables that runtime generic glue
// consumes.
//
// A shape is a self-delimiting byte string: one opcode byte followed by
// operands whose extent is fixed by the opcode or given by a
// little-endian u16 length prefix. Recursive enum types and RAII
// resources are referenced by dense ids assigned in first-discovery
// order rather than inlined.
//
// # Tag table layout
//
// Generate emits four regions, offsets absolute from the table start:
//
//	header   one u16 per enum: offset of its info record
//	info     per enum: u16 variant count, u16 largest-variant table
//	         offset, u16 static size, u8 static align, then one u16
//	         data offset per variant
//	data     per variant: length-prefixed shape blob, then
//	         length-prefixed NUL-terminated name
//	lv       per enum: u16 count, then u16 variant indices of the
//	         dominant set
//
// Enums whose extent depends on unresolved type parameters carry a
// zero-filled static size and alignment; the runtime computes their
// layout dynamically.
//
// # Usage
//
// A Context is created per compilation unit and consumed once:
//
//	ctx := shape.NewContext(target.X64)
//	s, err := ctx.ShapeOf(t, paramMap)
//	...
//	tables, err := shape.Generate(ctx, dtors)
//
// DecodeShape and ParseTagTable form the reference decoder used by tests
// and the shapedump tool; the production consumer is the runtime, not
// this package.
package shape
