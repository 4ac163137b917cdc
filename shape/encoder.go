package shape

import (
	"math"

	"github.com/wippyai/shape-tables/errors"
	"github.com/wippyai/shape-tables/shape/internal/binary"
	"github.com/wippyai/shape-tables/typedesc"
)

// ShapeOf encodes one type descriptor into its shape byte string.
// paramMap maps a type parameter's declaration-level index to its
// position in the current output's parameter list.
//
// Encoding is a pure function of its inputs except for discovery: an
// enum or resource type encountered during encoding is registered in the
// context and referenced by id instead of being inlined.
func (c *Context) ShapeOf(t *typedesc.Type, paramMap []int) ([]byte, error) {
	switch t.Kind {
	case typedesc.KindNil, typedesc.KindBool, typedesc.KindU8, typedesc.KindBot:
		return []byte{byte(OpU8)}, nil
	case typedesc.KindInt:
		return []byte{byte(opInt(c.spec))}, nil
	case typedesc.KindFloat:
		return []byte{byte(opFloat(c.spec))}, nil
	case typedesc.KindUint:
		return []byte{byte(opUint(c.spec))}, nil
	case typedesc.KindRawPtr:
		// Raw pointers carry no ownership; a pointer-sized uint slot.
		return []byte{byte(opUint(c.spec))}, nil
	case typedesc.KindTypeDesc:
		return []byte{byte(OpTydesc)}, nil
	case typedesc.KindSendTypeDesc:
		return []byte{byte(OpSendTydesc)}, nil
	case typedesc.KindI8:
		return []byte{byte(OpI8)}, nil
	case typedesc.KindU16:
		return []byte{byte(OpU16)}, nil
	case typedesc.KindI16:
		return []byte{byte(OpI16)}, nil
	case typedesc.KindU32:
		return []byte{byte(OpU32)}, nil
	case typedesc.KindI32, typedesc.KindChar:
		return []byte{byte(OpI32)}, nil
	case typedesc.KindU64:
		return []byte{byte(OpU64)}, nil
	case typedesc.KindI64:
		return []byte{byte(OpI64)}, nil
	case typedesc.KindF32:
		return []byte{byte(OpF32)}, nil
	case typedesc.KindF64:
		return []byte{byte(OpF64)}, nil

	case typedesc.KindStr:
		// str is a POD vec of u8.
		w := binary.NewWriter()
		w.Byte(byte(OpVec))
		w.Bool(true)
		sub, err := c.ShapeOf(typedesc.U8(), paramMap)
		if err != nil {
			return nil, err
		}
		if err := putSubstr(errors.PhaseEncode, w, sub); err != nil {
			return nil, err
		}
		return w.Bytes(), nil

	case typedesc.KindVec:
		w := binary.NewWriter()
		w.Byte(byte(OpVec))
		w.Bool(typedesc.IsPOD(t.Elem))
		sub, err := c.ShapeOf(t.Elem, paramMap)
		if err != nil {
			return nil, err
		}
		if err := putSubstr(errors.PhaseEncode, w, sub); err != nil {
			return nil, err
		}
		return w.Bytes(), nil

	case typedesc.KindBox, typedesc.KindOpaqueBox:
		return []byte{byte(OpBox)}, nil

	case typedesc.KindUniq:
		return c.wrapped(OpUniq, t.Elem, paramMap)

	case typedesc.KindRptr:
		return c.wrapped(OpRptr, t.Elem, paramMap)

	case typedesc.KindRecord, typedesc.KindClass:
		w := binary.NewWriter()
		if t.Kind == typedesc.KindClass {
			w.Byte(byte(OpClass))
		} else {
			w.Byte(byte(OpStruct))
		}
		sub := binary.NewWriter()
		for _, f := range t.Fields {
			fs, err := c.ShapeOf(f.Type, paramMap)
			if err != nil {
				return nil, err
			}
			sub.WriteBytes(fs)
		}
		if err := putSubstr(errors.PhaseEncode, w, sub.Bytes()); err != nil {
			return nil, err
		}
		return w.Bytes(), nil

	case typedesc.KindTuple:
		w := binary.NewWriter()
		w.Byte(byte(OpStruct))
		sub := binary.NewWriter()
		for _, e := range t.Elems {
			es, err := c.ShapeOf(e, paramMap)
			if err != nil {
				return nil, err
			}
			sub.WriteBytes(es)
		}
		if err := putSubstr(errors.PhaseEncode, w, sub.Bytes()); err != nil {
			return nil, err
		}
		return w.Bytes(), nil

	case typedesc.KindEnum:
		return c.enumShape(t, paramMap)

	case typedesc.KindResource:
		return c.resourceShape(t, paramMap)

	case typedesc.KindIface:
		return []byte{byte(OpBoxFn)}, nil

	case typedesc.KindOpaqueClosure:
		return []byte{byte(OpOpaqueClosure)}, nil

	case typedesc.KindFn:
		switch t.Proto {
		case typedesc.ProtoBox:
			return []byte{byte(OpBoxFn)}, nil
		case typedesc.ProtoUniq:
			return []byte{byte(OpUniqFn)}, nil
		case typedesc.ProtoBlock, typedesc.ProtoAny:
			return []byte{byte(OpStackFn)}, nil
		case typedesc.ProtoBare:
			return []byte{byte(OpBareFn)}, nil
		default:
			return nil, errors.Bug(errors.PhaseEncode, "unknown fn proto %d", t.Proto)
		}

	case typedesc.KindParam:
		// A parameter outside the slot mapping escaped its defining
		// scope; that is a defect in an earlier phase, not user input.
		for slot, n := range paramMap {
			if n == t.Index {
				if slot > math.MaxUint8 {
					return nil, errors.Overflow(errors.PhaseEncode, "param slot", uint64(slot), math.MaxUint8)
				}
				return []byte{byte(OpVar), byte(slot)}, nil
			}
		}
		return nil, errors.Bug(errors.PhaseEncode,
			"type parameter %d not found in slot mapping", t.Index)

	case typedesc.KindInferVar, typedesc.KindSelf:
		return nil, errors.New(errors.PhaseEncode, errors.KindInvariant).
			Type(t.Kind.String()).
			Detail("unresolved type reached the shape encoder").
			Build()

	default:
		return nil, errors.Bug(errors.PhaseEncode, "unexpected type %s", t)
	}
}

func (c *Context) wrapped(op Opcode, elem *typedesc.Type, paramMap []int) ([]byte, error) {
	sub, err := c.ShapeOf(elem, paramMap)
	if err != nil {
		return nil, err
	}
	w := binary.NewWriter()
	w.Byte(byte(op))
	if err := putSubstr(errors.PhaseEncode, w, sub); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// putSubstr writes a length-prefixed sub-blob, turning the codec's size
// limit into a fatal overflow error for the given phase.
func putSubstr(phase errors.Phase, w *binary.Writer, data []byte) error {
	if err := w.Substr(data); err != nil {
		return errors.Wrap(phase, errors.KindOverflow, err, "substructure length")
	}
	return nil
}

// enumShape emits either a bare discriminant for data-less enums or a
// tag-table reference carrying the instantiation's own type arguments,
// so two instantiations of one declaration share a tag id but not an
// argument payload.
func (c *Context) enumShape(t *typedesc.Type, paramMap []int) ([]byte, error) {
	switch classifyEnum(t.Enum) {
	case enumUnit, enumPlain:
		return []byte{byte(opDiscriminant(c.spec))}, nil
	}

	id, err := c.tagID(t.Enum)
	if err != nil {
		return nil, err
	}

	w := binary.NewWriter()
	w.Byte(byte(OpEnum))
	w.U16(id)
	w.U16(uint16(len(t.Args)))
	for _, arg := range t.Args {
		sub, err := c.ShapeOf(arg, paramMap)
		if err != nil {
			return nil, err
		}
		if err := putSubstr(errors.PhaseEncode, w, sub); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// resourceShape interns the instantiation and emits its id, the argument
// shapes, and the bound-substituted inner shape so the runtime can walk
// the payload without re-deriving the substitution.
func (c *Context) resourceShape(t *typedesc.Type, paramMap []int) ([]byte, error) {
	inner := typedesc.Substitute(t.Res.Repr, t.Args)
	id := c.resourceID(t.Res, t.Args)
	if id > math.MaxUint16 {
		return nil, errors.Overflow(errors.PhaseEncode, "resource id", uint64(id), math.MaxUint16)
	}

	w := binary.NewWriter()
	w.Byte(byte(OpRes))
	w.U16(uint16(id))
	w.U16(uint16(len(t.Args)))
	for _, arg := range t.Args {
		sub, err := c.ShapeOf(arg, paramMap)
		if err != nil {
			return nil, err
		}
		if err := putSubstr(errors.PhaseEncode, w, sub); err != nil {
			return nil, err
		}
	}
	innerShape, err := c.ShapeOf(inner, paramMap)
	if err != nil {
		return nil, err
	}
	if err := putSubstr(errors.PhaseEncode, w, innerShape); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// enumKind classifies an enum by its variants. Only newtype and complex
// enums are registered in the tag table; unit and plain enums encode as
// a bare discriminant.
type enumKind uint8

const (
	enumUnit    enumKind = iota // 1 variant, no data
	enumPlain                   // N variants, no data
	enumNewtype                 // 1 variant, data
	enumComplex                 // N variants, data
)

func classifyEnum(decl *typedesc.EnumDecl) enumKind {
	hasData := false
	for _, v := range decl.Variants {
		if len(v.Args) > 0 {
			hasData = true
			break
		}
	}
	if hasData {
		if len(decl.Variants) == 1 {
			return enumNewtype
		}
		return enumComplex
	}
	if len(decl.Variants) <= 1 {
		return enumUnit
	}
	return enumPlain
}
