package layout

import (
	"github.com/wippyai/shape-tables/errors"
	"github.com/wippyai/shape-tables/target"
	"github.com/wippyai/shape-tables/typedesc"
)

// Info is the byte size and alignment of a concrete representation.
type Info struct {
	Size  uint32
	Align uint32
}

// Calculator computes static layout for fully concrete type descriptors.
// It is defined only for types with no unresolved parameters; asking for
// the layout of a parametric type is an invariant violation.
type Calculator struct {
	spec  *target.Spec
	cache map[*typedesc.Type]Info
}

func NewCalculator(spec *target.Spec) *Calculator {
	return &Calculator{
		spec:  spec,
		cache: make(map[*typedesc.Type]Info),
	}
}

// AlignTo rounds offset up to the next multiple of align. align must be a
// power of two.
func AlignTo(offset, align uint32) uint32 {
	return (offset + align - 1) &^ (align - 1)
}

// Calculate returns the size and alignment of t on the calculator's
// target.
func (c *Calculator) Calculate(t *typedesc.Type) (Info, error) {
	if cached, ok := c.cache[t]; ok {
		return cached, nil
	}

	info, err := c.calculate(t)
	if err != nil {
		return Info{}, err
	}

	c.cache[t] = info
	return info, nil
}

func (c *Calculator) calculate(t *typedesc.Type) (Info, error) {
	word := c.spec.PointerWidth

	switch t.Kind {
	case typedesc.KindNil, typedesc.KindBool, typedesc.KindU8, typedesc.KindI8, typedesc.KindBot:
		return Info{Size: 1, Align: 1}, nil
	case typedesc.KindU16, typedesc.KindI16:
		return Info{Size: 2, Align: 2}, nil
	case typedesc.KindU32, typedesc.KindI32, typedesc.KindChar, typedesc.KindF32:
		return Info{Size: 4, Align: 4}, nil
	case typedesc.KindU64, typedesc.KindI64, typedesc.KindF64:
		return Info{Size: 8, Align: 8}, nil
	case typedesc.KindInt, typedesc.KindUint:
		return Info{Size: c.spec.IntWidth, Align: c.spec.IntWidth}, nil
	case typedesc.KindFloat:
		return Info{Size: c.spec.FloatWidth, Align: c.spec.FloatWidth}, nil

	case typedesc.KindStr, typedesc.KindVec, typedesc.KindBox, typedesc.KindOpaqueBox,
		typedesc.KindUniq, typedesc.KindRawPtr, typedesc.KindRptr,
		typedesc.KindIface, typedesc.KindOpaqueClosure,
		typedesc.KindTypeDesc, typedesc.KindSendTypeDesc:
		// One pointer word regardless of what it points at.
		return Info{Size: word, Align: word}, nil

	case typedesc.KindFn:
		// Code pointer plus environment pointer.
		return Info{Size: 2 * word, Align: word}, nil

	case typedesc.KindRecord, typedesc.KindClass:
		elems := make([]*typedesc.Type, len(t.Fields))
		for i, f := range t.Fields {
			elems[i] = f.Type
		}
		return c.structLayout(elems)

	case typedesc.KindTuple:
		return c.structLayout(t.Elems)

	case typedesc.KindEnum:
		return c.enumLayout(t)

	case typedesc.KindResource:
		inner := typedesc.Substitute(t.Res.Repr, t.Args)
		return c.structLayout([]*typedesc.Type{typedesc.Int(), inner})

	case typedesc.KindParam:
		return Info{}, errors.Bug(errors.PhaseLayout,
			"layout queried for parametric type %s", t)

	default:
		return Info{}, errors.Bug(errors.PhaseLayout,
			"layout queried for unexpected type %s", t)
	}
}

func (c *Calculator) structLayout(elems []*typedesc.Type) (Info, error) {
	if len(elems) == 0 {
		return Info{Size: 0, Align: 1}, nil
	}

	maxAlign := uint32(1)
	offset := uint32(0)

	for _, e := range elems {
		elem, err := c.Calculate(e)
		if err != nil {
			return Info{}, err
		}

		offset = AlignTo(offset, elem.Align)
		if elem.Align > maxAlign {
			maxAlign = elem.Align
		}
		offset += elem.Size
	}

	return Info{Size: AlignTo(offset, maxAlign), Align: maxAlign}, nil
}

// enumLayout computes max(variant data sizes) plus the discriminant. Each
// variant's field tuple is simplified first so representationally
// recursive enums terminate.
func (c *Calculator) enumLayout(t *typedesc.Type) (Info, error) {
	maxSize := uint32(0)
	maxAlign := uint32(1)

	for _, v := range t.Enum.Variants {
		tup := typedesc.Substitute(typedesc.Tuple(v.Args...), t.Args)
		info, err := c.Calculate(Simplify(tup))
		if err != nil {
			return Info{}, err
		}
		if info.Size > maxSize {
			maxSize = info.Size
		}
		if info.Align > maxAlign {
			maxAlign = info.Align
		}
	}

	if len(t.Enum.Variants) > 1 {
		disc := c.spec.DiscriminantWidth()
		maxSize += disc
		if disc > maxAlign {
			maxAlign = disc
		}
	}

	return Info{Size: maxSize, Align: maxAlign}, nil
}
