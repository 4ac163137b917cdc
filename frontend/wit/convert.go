package wit

import (
	bawit "go.bytecodealliance.org/wit"

	"github.com/wippyai/shape-tables/errors"
	"github.com/wippyai/shape-tables/typedesc"
)

// Converter maps WIT type descriptions to type descriptors. Named and
// anonymous type definitions that become enum or resource declarations
// are memoized so repeated references share one declaration identity.
//
// A Converter is not safe for concurrent use.
type Converter struct {
	crate     uint32
	nextNode  uint32
	enums     map[bawit.TypeDefKind]*typedesc.EnumDecl
	resources map[bawit.TypeDefKind]*typedesc.ResourceDecl
}

// NewConverter creates a Converter. All declarations it synthesizes live
// in the given crate number.
func NewConverter(crate uint32) *Converter {
	return &Converter{
		crate:     crate,
		enums:     make(map[bawit.TypeDefKind]*typedesc.EnumDecl),
		resources: make(map[bawit.TypeDefKind]*typedesc.ResourceDecl),
	}
}

// Convert maps a WIT type to its type descriptor.
func (c *Converter) Convert(t bawit.Type) (*typedesc.Type, error) {
	switch t := t.(type) {
	case bawit.Bool:
		return typedesc.Bool(), nil
	case bawit.U8:
		return typedesc.U8(), nil
	case bawit.S8:
		return typedesc.I8(), nil
	case bawit.U16:
		return typedesc.U16(), nil
	case bawit.S16:
		return typedesc.I16(), nil
	case bawit.U32:
		return typedesc.U32(), nil
	case bawit.S32:
		return typedesc.I32(), nil
	case bawit.U64:
		return typedesc.U64(), nil
	case bawit.S64:
		return typedesc.I64(), nil
	case bawit.F32:
		return typedesc.F32(), nil
	case bawit.F64:
		return typedesc.F64(), nil
	case bawit.Char:
		return typedesc.Char(), nil
	case bawit.String:
		return typedesc.Str(), nil
	case *bawit.TypeDef:
		return c.typeDef(t)
	default:
		return nil, errors.New(errors.PhaseFrontend, errors.KindUnsupported).
			Detail("unsupported WIT type %T", t).
			Build()
	}
}

func (c *Converter) typeDef(td *bawit.TypeDef) (*typedesc.Type, error) {
	switch kind := td.Kind.(type) {
	case *bawit.Record:
		fields := make([]typedesc.Field, 0, len(kind.Fields))
		for _, f := range kind.Fields {
			ft, err := c.Convert(f.Type)
			if err != nil {
				return nil, err
			}
			fields = append(fields, typedesc.Field{Name: f.Name, Type: ft})
		}
		return typedesc.Record(fields...), nil

	case *bawit.List:
		elem, err := c.Convert(kind.Type)
		if err != nil {
			return nil, err
		}
		return typedesc.Vec(elem), nil

	case *bawit.Tuple:
		elems := make([]*typedesc.Type, 0, len(kind.Types))
		for _, et := range kind.Types {
			e, err := c.Convert(et)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		return typedesc.Tuple(elems...), nil

	case *bawit.Enum:
		decl, ok := c.enums[td.Kind]
		if !ok {
			variants := make([]typedesc.VariantInfo, 0, len(kind.Cases))
			for _, ec := range kind.Cases {
				variants = append(variants, typedesc.VariantInfo{Name: ec.Name})
			}
			decl = c.newEnumDecl(typeDefName(td, "enum"), variants)
			c.enums[td.Kind] = decl
		}
		return typedesc.Enum(decl), nil

	case *bawit.Variant:
		decl, ok := c.enums[td.Kind]
		if !ok {
			variants := make([]typedesc.VariantInfo, 0, len(kind.Cases))
			for _, vc := range kind.Cases {
				v := typedesc.VariantInfo{Name: vc.Name}
				if vc.Type != nil {
					payload, err := c.Convert(vc.Type)
					if err != nil {
						return nil, err
					}
					v.Args = []*typedesc.Type{payload}
				}
				variants = append(variants, v)
			}
			decl = c.newEnumDecl(typeDefName(td, "variant"), variants)
			c.enums[td.Kind] = decl
		}
		return typedesc.Enum(decl), nil

	case *bawit.Option:
		decl, ok := c.enums[td.Kind]
		if !ok {
			some, err := c.Convert(kind.Type)
			if err != nil {
				return nil, err
			}
			decl = c.newEnumDecl(typeDefName(td, "option"), []typedesc.VariantInfo{
				{Name: "none"},
				{Name: "some", Args: []*typedesc.Type{some}},
			})
			c.enums[td.Kind] = decl
		}
		return typedesc.Enum(decl), nil

	case *bawit.Result:
		decl, ok := c.enums[td.Kind]
		if !ok {
			okVariant := typedesc.VariantInfo{Name: "ok"}
			if kind.OK != nil {
				payload, err := c.Convert(kind.OK)
				if err != nil {
					return nil, err
				}
				okVariant.Args = []*typedesc.Type{payload}
			}
			errVariant := typedesc.VariantInfo{Name: "err"}
			if kind.Err != nil {
				payload, err := c.Convert(kind.Err)
				if err != nil {
					return nil, err
				}
				errVariant.Args = []*typedesc.Type{payload}
			}
			decl = c.newEnumDecl(typeDefName(td, "result"),
				[]typedesc.VariantInfo{okVariant, errVariant})
			c.enums[td.Kind] = decl
		}
		return typedesc.Enum(decl), nil

	case *bawit.Flags:
		// Flags pack into the smallest unsigned word that fits.
		switch n := len(kind.Flags); {
		case n <= 8:
			return typedesc.U8(), nil
		case n <= 16:
			return typedesc.U16(), nil
		case n <= 32:
			return typedesc.U32(), nil
		case n <= 64:
			return typedesc.U64(), nil
		default:
			return nil, errors.New(errors.PhaseFrontend, errors.KindUnsupported).
				Detail("flags type exceeds maximum 64 flags, got %d", n).
				Build()
		}

	case *bawit.Own:
		decl, ok := c.resources[td.Kind]
		if !ok {
			// A component-model handle is a u32 index at rest.
			decl = &typedesc.ResourceDecl{
				ID:   c.newDeclID(),
				Name: typeDefName(td, "resource"),
				Repr: typedesc.U32(),
			}
			c.resources[td.Kind] = decl
		}
		return typedesc.Resource(decl), nil

	case *bawit.Borrow:
		// Borrowed handles carry no drop obligation.
		return typedesc.U32(), nil

	case bawit.Type:
		return c.Convert(kind)

	default:
		return nil, errors.New(errors.PhaseFrontend, errors.KindUnsupported).
			Detail("unsupported WIT type definition kind %T", kind).
			Build()
	}
}

func (c *Converter) newEnumDecl(name string, variants []typedesc.VariantInfo) *typedesc.EnumDecl {
	return &typedesc.EnumDecl{
		ID:       c.newDeclID(),
		Name:     name,
		Variants: variants,
	}
}

func (c *Converter) newDeclID() typedesc.DeclID {
	id := typedesc.DeclID{Crate: c.crate, Node: c.nextNode}
	c.nextNode++
	return id
}

func typeDefName(td *bawit.TypeDef, fallback string) string {
	if td.Name != nil {
		return *td.Name
	}
	return fallback
}
