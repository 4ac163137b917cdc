// Package errors provides structured error types for the shape-tables library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, type description, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindUnsupported).
//		Path("list", "elem").
//		Type("infer-var").
//		Detail("unresolved type reached the encoder").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Bug(errors.PhaseEncode, "type parameter %d escaped its scope", n)
//	err := errors.OutOfBounds(errors.PhaseDecode, "info record", 120, 64)
//
// Invariant violations (errors.KindInvariant) indicate a defect in an
// earlier compiler phase. They abort the compilation unit and are never
// recovered or retried.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
