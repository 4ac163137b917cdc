// Package shapetables generates the binary "shape" tables a runtime support
// library uses to interpret values generically: copying, destructing,
// computing size and alignment, and walking resources without per-type
// generated code.
//
// A shape is a compact, self-describing encoding of a type. Recursive enum
// types and RAII resource types are not inlined; they are registered once
// and referenced by dense integer ids, and a per-compilation-unit table
// maps those ids back to variant shapes, static layout metadata, and
// destructor references.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	shapetables/         Root package with the destructor provider interface
//	├── typedesc/        Type descriptors: kinds, declarations, substitution
//	├── target/          Target architecture specs and ABI primitives
//	├── layout/          Static size/alignment computation and simplification
//	├── shape/           Shape encoding, registries, and table generation
//	├── frontend/wit/    WIT type descriptions as a type source
//	├── errors/          Structured error types for debugging
//	└── cmd/shapedump/   Generated-table inspection tool
//
// # Quick Start
//
// Generate the tables for a compilation unit:
//
//	ctx := shape.NewContext(targetSpec)
//	// encoding types registers enums and resources as they are discovered
//	_, err := ctx.ShapeOf(someType, nil)
//	tables, err := shape.Generate(ctx, dtorProvider)
//
// The resulting Tables value holds the tag-shape table bytes and the
// resource-destructor references, ready to be emitted as a single
// read-only aggregate symbol.
package shapetables
