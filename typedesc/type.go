package typedesc

import (
	"fmt"
	"strings"
)

// DeclID identifies a declaration across crates. Declarations compare by
// this identity, never by name.
type DeclID struct {
	Crate uint32
	Node  uint32
}

func (d DeclID) String() string {
	return fmt.Sprintf("%d:%d", d.Crate, d.Node)
}

// VariantInfo describes one variant of an enum declaration. Args may
// reference the declaration's formal type parameters via Param types.
type VariantInfo struct {
	Name string
	Args []*Type
}

// EnumDecl is a nominal enum (tag) declaration.
type EnumDecl struct {
	ID       DeclID
	Name     string
	Params   int
	Variants []VariantInfo
}

// ResourceDecl is a nominal RAII resource declaration. Repr is the
// underlying representation type and may reference the declaration's
// formal type parameters.
type ResourceDecl struct {
	ID     DeclID
	Name   string
	Params int
	Repr   *Type
}

// Field is a named record or class field.
type Field struct {
	Name string
	Type *Type
}

// Type is a resolved type descriptor. Which fields are meaningful depends
// on Kind; everything else is nil/zero.
type Type struct {
	Kind   Kind
	Elem   *Type        // vec, box, uniq, ptr, rptr
	Fields []Field      // record, class
	Elems  []*Type      // tuple
	Enum   *EnumDecl    // enum
	Res    *ResourceDecl // resource
	Args   []*Type      // enum, resource type arguments
	Proto  Proto        // fn
	Index  int          // param
}

// Scalar singletons. Descriptors carry no per-instance state for these
// kinds, so sharing is safe.
var (
	nilType       = &Type{Kind: KindNil}
	boolType      = &Type{Kind: KindBool}
	u8Type        = &Type{Kind: KindU8}
	u16Type       = &Type{Kind: KindU16}
	u32Type       = &Type{Kind: KindU32}
	u64Type       = &Type{Kind: KindU64}
	i8Type        = &Type{Kind: KindI8}
	i16Type       = &Type{Kind: KindI16}
	i32Type       = &Type{Kind: KindI32}
	i64Type       = &Type{Kind: KindI64}
	uintType      = &Type{Kind: KindUint}
	intType       = &Type{Kind: KindInt}
	charType      = &Type{Kind: KindChar}
	f32Type       = &Type{Kind: KindF32}
	f64Type       = &Type{Kind: KindF64}
	floatType     = &Type{Kind: KindFloat}
	strType       = &Type{Kind: KindStr}
	botType       = &Type{Kind: KindBot}
	opaqueBox     = &Type{Kind: KindOpaqueBox}
	ifaceType     = &Type{Kind: KindIface}
	closureType   = &Type{Kind: KindOpaqueClosure}
	tydescType    = &Type{Kind: KindTypeDesc}
	sendTydesc    = &Type{Kind: KindSendTypeDesc}
	inferVarType  = &Type{Kind: KindInferVar}
	selfTypeValue = &Type{Kind: KindSelf}
)

func Nil() *Type           { return nilType }
func Bool() *Type          { return boolType }
func U8() *Type            { return u8Type }
func U16() *Type           { return u16Type }
func U32() *Type           { return u32Type }
func U64() *Type           { return u64Type }
func I8() *Type            { return i8Type }
func I16() *Type           { return i16Type }
func I32() *Type           { return i32Type }
func I64() *Type           { return i64Type }
func Uint() *Type          { return uintType }
func Int() *Type           { return intType }
func Char() *Type          { return charType }
func F32() *Type           { return f32Type }
func F64() *Type           { return f64Type }
func Float() *Type         { return floatType }
func Str() *Type           { return strType }
func Bot() *Type           { return botType }
func OpaqueBox() *Type     { return opaqueBox }
func Iface() *Type         { return ifaceType }
func OpaqueClosure() *Type { return closureType }
func TypeDesc() *Type      { return tydescType }
func SendTypeDesc() *Type  { return sendTydesc }
func InferVar() *Type      { return inferVarType }
func SelfType() *Type      { return selfTypeValue }

func Vec(elem *Type) *Type    { return &Type{Kind: KindVec, Elem: elem} }
func Box(elem *Type) *Type    { return &Type{Kind: KindBox, Elem: elem} }
func Uniq(elem *Type) *Type   { return &Type{Kind: KindUniq, Elem: elem} }
func RawPtr(elem *Type) *Type { return &Type{Kind: KindRawPtr, Elem: elem} }
func Rptr(elem *Type) *Type   { return &Type{Kind: KindRptr, Elem: elem} }

func Record(fields ...Field) *Type { return &Type{Kind: KindRecord, Fields: fields} }
func Class(fields ...Field) *Type  { return &Type{Kind: KindClass, Fields: fields} }
func Tuple(elems ...*Type) *Type   { return &Type{Kind: KindTuple, Elems: elems} }
func Fn(proto Proto) *Type         { return &Type{Kind: KindFn, Proto: proto} }
func Param(index int) *Type        { return &Type{Kind: KindParam, Index: index} }

// Enum references a registered enum declaration with the given type
// arguments. len(args) must equal decl.Params.
func Enum(decl *EnumDecl, args ...*Type) *Type {
	return &Type{Kind: KindEnum, Enum: decl, Args: args}
}

// Resource references a resource declaration with the given type
// arguments. len(args) must equal decl.Params.
func Resource(decl *ResourceDecl, args ...*Type) *Type {
	return &Type{Kind: KindResource, Res: decl, Args: args}
}

// String renders a compact description of the type for diagnostics.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindVec, KindBox, KindUniq, KindRawPtr, KindRptr:
		return t.Kind.String() + "(" + t.Elem.String() + ")"
	case KindRecord, KindClass:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.Name + ": " + f.Type.String()
		}
		return t.Kind.String() + "{" + strings.Join(parts, ", ") + "}"
	case KindTuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindEnum:
		return nominalString(t.Enum.Name, t.Args)
	case KindResource:
		return nominalString(t.Res.Name, t.Args)
	case KindFn:
		return "fn[" + t.Proto.String() + "]"
	case KindParam:
		return fmt.Sprintf("'%d", t.Index)
	default:
		return t.Kind.String()
	}
}

func nominalString(name string, args []*Type) string {
	if len(args) == 0 {
		return name
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return name + "<" + strings.Join(parts, ", ") + ">"
}
