// Package typedesc provides resolved type descriptors for the shape
// encoder: a closed structural Kind enumeration, nominal enum and
// resource declarations identified by DeclID, and the queries the
// encoding and layout passes need (parameter substitution, POD and
// parameter checks, structural fingerprints).
//
// Descriptors are immutable values built with the package constructors:
//
//	point := typedesc.Record(
//		typedesc.Field{Name: "x", Type: typedesc.Int()},
//		typedesc.Field{Name: "y", Type: typedesc.Int()},
//	)
//	list := typedesc.Enum(listDecl, typedesc.U8())
//
// Recursion is nominal: a type refers to itself only through an enum or
// resource declaration, or through an explicitly constructed pointer
// cycle. All traversals in this package guard against cycles.
//
// Fingerprint is the canonical numeric identity used for hashing; Equal
// is the matching structural equality. Nominal types compare by DeclID
// plus arguments, never by body.
package typedesc
