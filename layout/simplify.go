package layout

import (
	"github.com/wippyai/shape-tables/typedesc"
)

func nilPtr() *typedesc.Type {
	return typedesc.RawPtr(typedesc.Nil())
}

// Simplify rewrites t into a provably non-recursive type with the same
// concrete byte size. Every indirection-bearing constructor becomes a
// canonical pointer placeholder, a function becomes a two-word pair, and
// a resource becomes (word, simplified payload). Cycles must pass through
// an indirection, so the rewrite terminates.
//
// The result is only meaningful for size queries.
func Simplify(t *typedesc.Type) *typedesc.Type {
	switch t.Kind {
	case typedesc.KindBox, typedesc.KindOpaqueBox, typedesc.KindUniq,
		typedesc.KindVec, typedesc.KindStr, typedesc.KindRawPtr, typedesc.KindRptr,
		typedesc.KindIface, typedesc.KindOpaqueClosure:
		return nilPtr()

	case typedesc.KindFn:
		return typedesc.Tuple(nilPtr(), nilPtr())

	case typedesc.KindResource:
		inner := typedesc.Substitute(t.Res.Repr, t.Args)
		return typedesc.Tuple(typedesc.Int(), Simplify(inner))

	case typedesc.KindRecord, typedesc.KindClass:
		fields := make([]typedesc.Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = typedesc.Field{Name: f.Name, Type: Simplify(f.Type)}
		}
		if t.Kind == typedesc.KindClass {
			return typedesc.Class(fields...)
		}
		return typedesc.Record(fields...)

	case typedesc.KindTuple:
		elems := make([]*typedesc.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = Simplify(e)
		}
		return typedesc.Tuple(elems...)

	case typedesc.KindEnum:
		args := make([]*typedesc.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = Simplify(a)
		}
		return typedesc.Enum(t.Enum, args...)

	default:
		return t
	}
}
