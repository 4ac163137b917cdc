// Package layout computes static size and alignment for concrete type
// descriptors against a target spec.
//
// # Layout Rules
//
//   - Scalars: size equals alignment (u8=1, u32=4, u64=8; int/uint/float
//     take their target width)
//   - Pointer-bearing kinds (box, uniq, vec, str, raw and borrowed
//     pointers, ifaces): one pointer word
//   - Functions: two pointer words (code pointer plus environment)
//   - Records/tuples: fields laid out sequentially with padding, total
//     rounded up to the max field alignment
//   - Enums: max variant payload plus a discriminant word when there is
//     more than one variant
//   - Resources: a word-sized live flag followed by the substituted
//     representation type
//
// Enum payloads are passed through Simplify before measuring, so a
// representationally recursive type (a list node owning a pointer to
// itself) measures as a pointer-sized leaf instead of diverging.
//
// The calculator is defined only for fully concrete types. Querying a
// type that still carries parameters is an invariant violation reported
// through the errors package, never a recoverable condition.
package layout
