package shape

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/wippyai/shape-tables/errors"
	"github.com/wippyai/shape-tables/target"
	"github.com/wippyai/shape-tables/typedesc"
)

func testEnumDecl(name string, node uint32, params int, variants ...typedesc.VariantInfo) *typedesc.EnumDecl {
	return &typedesc.EnumDecl{
		ID:       typedesc.DeclID{Crate: 0, Node: node},
		Name:     name,
		Params:   params,
		Variants: variants,
	}
}

func mustShape(t *testing.T, c *Context, ty *typedesc.Type, paramMap []int) []byte {
	t.Helper()
	s, err := c.ShapeOf(ty, paramMap)
	if err != nil {
		t.Fatalf("ShapeOf(%s) failed: %v", ty, err)
	}
	return s
}

func TestShapeOfScalars(t *testing.T) {
	tests := []struct {
		name string
		typ  *typedesc.Type
		want []byte
	}{
		{"nil", typedesc.Nil(), []byte{byte(OpU8)}},
		{"bool", typedesc.Bool(), []byte{byte(OpU8)}},
		{"u8", typedesc.U8(), []byte{byte(OpU8)}},
		{"bot", typedesc.Bot(), []byte{byte(OpU8)}},
		{"u16", typedesc.U16(), []byte{byte(OpU16)}},
		{"u32", typedesc.U32(), []byte{byte(OpU32)}},
		{"u64", typedesc.U64(), []byte{byte(OpU64)}},
		{"i8", typedesc.I8(), []byte{byte(OpI8)}},
		{"i16", typedesc.I16(), []byte{byte(OpI16)}},
		{"i32", typedesc.I32(), []byte{byte(OpI32)}},
		{"i64", typedesc.I64(), []byte{byte(OpI64)}},
		{"char", typedesc.Char(), []byte{byte(OpI32)}},
		{"f32", typedesc.F32(), []byte{byte(OpF32)}},
		{"f64", typedesc.F64(), []byte{byte(OpF64)}},
		{"int_64bit", typedesc.Int(), []byte{byte(OpI64)}},
		{"uint_64bit", typedesc.Uint(), []byte{byte(OpU64)}},
		{"float_64bit", typedesc.Float(), []byte{byte(OpF64)}},
		{"rawptr", typedesc.RawPtr(typedesc.U8()), []byte{byte(OpU64)}},
		{"box", typedesc.Box(typedesc.I32()), []byte{byte(OpBox)}},
		{"opaque_box", typedesc.OpaqueBox(), []byte{byte(OpBox)}},
		{"iface", typedesc.Iface(), []byte{byte(OpBoxFn)}},
		{"opaque_closure", typedesc.OpaqueClosure(), []byte{byte(OpOpaqueClosure)}},
		{"tydesc", typedesc.TypeDesc(), []byte{byte(OpTydesc)}},
		{"send_tydesc", typedesc.SendTypeDesc(), []byte{byte(OpSendTydesc)}},
	}

	c := NewContext(target.X64)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustShape(t, c, tt.typ, nil)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("ShapeOf(%s) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestShapeOfWordScalars32Bit(t *testing.T) {
	c := NewContext(target.X86)

	if got := mustShape(t, c, typedesc.Int(), nil); !bytes.Equal(got, []byte{byte(OpI32)}) {
		t.Errorf("int on x86 = %v, want [%d]", got, OpI32)
	}
	if got := mustShape(t, c, typedesc.Uint(), nil); !bytes.Equal(got, []byte{byte(OpU32)}) {
		t.Errorf("uint on x86 = %v, want [%d]", got, OpU32)
	}
	if got := mustShape(t, c, typedesc.Float(), nil); !bytes.Equal(got, []byte{byte(OpF64)}) {
		t.Errorf("float on x86 = %v, want [%d]", got, OpF64)
	}
}

func TestShapeOfFn(t *testing.T) {
	tests := []struct {
		name  string
		proto typedesc.Proto
		want  Opcode
	}{
		{"box", typedesc.ProtoBox, OpBoxFn},
		{"uniq", typedesc.ProtoUniq, OpUniqFn},
		{"block", typedesc.ProtoBlock, OpStackFn},
		{"any", typedesc.ProtoAny, OpStackFn},
		{"bare", typedesc.ProtoBare, OpBareFn},
	}

	c := NewContext(target.X64)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustShape(t, c, typedesc.Fn(tt.proto), nil)
			if !bytes.Equal(got, []byte{byte(tt.want)}) {
				t.Errorf("fn/%s = %v, want [%d]", tt.name, got, tt.want)
			}
		})
	}
}

func TestShapeOfStr(t *testing.T) {
	c := NewContext(target.X64)
	got := mustShape(t, c, typedesc.Str(), nil)
	want := []byte{byte(OpVec), 1, 1, 0, byte(OpU8)}
	if !bytes.Equal(got, want) {
		t.Errorf("str = %v, want %v", got, want)
	}
}

func TestShapeOfVec(t *testing.T) {
	c := NewContext(target.X64)

	t.Run("pod element", func(t *testing.T) {
		got := mustShape(t, c, typedesc.Vec(typedesc.U8()), nil)
		want := []byte{byte(OpVec), 1, 1, 0, byte(OpU8)}
		if !bytes.Equal(got, want) {
			t.Errorf("vec<u8> = %v, want %v", got, want)
		}
	})

	t.Run("managed element", func(t *testing.T) {
		got := mustShape(t, c, typedesc.Vec(typedesc.Box(typedesc.U8())), nil)
		want := []byte{byte(OpVec), 0, 1, 0, byte(OpBox)}
		if !bytes.Equal(got, want) {
			t.Errorf("vec<@u8> = %v, want %v", got, want)
		}
	})
}

func TestShapeOfComposites(t *testing.T) {
	c := NewContext(target.X64)

	tests := []struct {
		name string
		typ  *typedesc.Type
		want []byte
	}{
		{
			"tuple",
			typedesc.Tuple(typedesc.U8(), typedesc.I32()),
			[]byte{byte(OpStruct), 2, 0, byte(OpU8), byte(OpI32)},
		},
		{
			"record",
			typedesc.Record(
				typedesc.Field{Name: "a", Type: typedesc.U8()},
				typedesc.Field{Name: "b", Type: typedesc.I32()},
			),
			[]byte{byte(OpStruct), 2, 0, byte(OpU8), byte(OpI32)},
		},
		{
			"class",
			typedesc.Class(typedesc.Field{Name: "x", Type: typedesc.F64()}),
			[]byte{byte(OpClass), 1, 0, byte(OpF64)},
		},
		{
			"empty tuple",
			typedesc.Tuple(),
			[]byte{byte(OpStruct), 0, 0},
		},
		{
			"uniq",
			typedesc.Uniq(typedesc.U8()),
			[]byte{byte(OpUniq), 1, 0, byte(OpU8)},
		},
		{
			"rptr",
			typedesc.Rptr(typedesc.I32()),
			[]byte{byte(OpRptr), 1, 0, byte(OpI32)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustShape(t, c, tt.typ, nil)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("ShapeOf(%s) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestShapeOfParam(t *testing.T) {
	c := NewContext(target.X64)
	paramMap := []int{2, 0}

	t.Run("mapped slots", func(t *testing.T) {
		got := mustShape(t, c, typedesc.Param(2), paramMap)
		if !bytes.Equal(got, []byte{byte(OpVar), 0}) {
			t.Errorf("param 2 = %v, want [%d 0]", got, OpVar)
		}
		got = mustShape(t, c, typedesc.Param(0), paramMap)
		if !bytes.Equal(got, []byte{byte(OpVar), 1}) {
			t.Errorf("param 0 = %v, want [%d 1]", got, OpVar)
		}
	})

	t.Run("unmapped param is fatal", func(t *testing.T) {
		_, err := c.ShapeOf(typedesc.Param(1), paramMap)
		if !errors.IsInvariant(err) {
			t.Fatalf("expected invariant violation, got %v", err)
		}
	})
}

func TestShapeOfOversizeSubstructure(t *testing.T) {
	c := NewContext(target.X64)

	// The u16 length prefix caps a substructure at 65535 bytes; a struct
	// body past that must fail rather than declare a wrapped-around length.
	elems := make([]*typedesc.Type, 70000)
	for i := range elems {
		elems[i] = typedesc.U8()
	}
	_, err := c.ShapeOf(typedesc.Tuple(elems...), nil)
	if err == nil {
		t.Fatal("expected error for 70000-field tuple")
	}
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindOverflow {
		t.Fatalf("err = %v, want overflow", err)
	}
}

func TestShapeOfUnresolved(t *testing.T) {
	c := NewContext(target.X64)

	for _, ty := range []*typedesc.Type{typedesc.InferVar(), typedesc.SelfType()} {
		if _, err := c.ShapeOf(ty, nil); !errors.IsInvariant(err) {
			t.Errorf("ShapeOf(%s): expected invariant violation, got %v", ty, err)
		}
	}
}

func TestShapeOfEnum(t *testing.T) {
	t.Run("plain enum is a bare discriminant", func(t *testing.T) {
		c := NewContext(target.X64)
		decl := testEnumDecl("color", 1, 0,
			typedesc.VariantInfo{Name: "red"},
			typedesc.VariantInfo{Name: "green"},
		)
		got := mustShape(t, c, typedesc.Enum(decl), nil)
		if !bytes.Equal(got, []byte{byte(OpI64)}) {
			t.Errorf("plain enum = %v, want [%d]", got, OpI64)
		}
		if c.TagCount() != 0 {
			t.Errorf("plain enum registered a tag, count = %d", c.TagCount())
		}
	})

	t.Run("unit enum is a bare discriminant", func(t *testing.T) {
		c := NewContext(target.X64)
		decl := testEnumDecl("unit", 2, 0, typedesc.VariantInfo{Name: "only"})
		got := mustShape(t, c, typedesc.Enum(decl), nil)
		if !bytes.Equal(got, []byte{byte(OpI64)}) {
			t.Errorf("unit enum = %v, want [%d]", got, OpI64)
		}
		if c.TagCount() != 0 {
			t.Errorf("unit enum registered a tag, count = %d", c.TagCount())
		}
	})

	t.Run("complex enum registers and references", func(t *testing.T) {
		c := NewContext(target.X64)
		decl := testEnumDecl("option", 3, 1,
			typedesc.VariantInfo{Name: "none"},
			typedesc.VariantInfo{Name: "some", Args: []*typedesc.Type{typedesc.Param(0)}},
		)
		got := mustShape(t, c, typedesc.Enum(decl, typedesc.U8()), nil)
		want := []byte{byte(OpEnum), 0, 0, 1, 0, 1, 0, byte(OpU8)}
		if !bytes.Equal(got, want) {
			t.Errorf("enum ref = %v, want %v", got, want)
		}
		if c.TagCount() != 1 {
			t.Errorf("tag count = %d, want 1", c.TagCount())
		}
	})

	t.Run("newtype enum registers", func(t *testing.T) {
		c := NewContext(target.X64)
		decl := testEnumDecl("wrapper", 4, 0,
			typedesc.VariantInfo{Name: "wrap", Args: []*typedesc.Type{typedesc.U32()}},
		)
		got := mustShape(t, c, typedesc.Enum(decl), nil)
		want := []byte{byte(OpEnum), 0, 0, 0, 0}
		if !bytes.Equal(got, want) {
			t.Errorf("newtype ref = %v, want %v", got, want)
		}
		if c.TagCount() != 1 {
			t.Errorf("tag count = %d, want 1", c.TagCount())
		}
	})

	t.Run("shared tag id, distinct payloads", func(t *testing.T) {
		c := NewContext(target.X64)
		decl := testEnumDecl("option", 5, 1,
			typedesc.VariantInfo{Name: "none"},
			typedesc.VariantInfo{Name: "some", Args: []*typedesc.Type{typedesc.Param(0)}},
		)
		a := mustShape(t, c, typedesc.Enum(decl, typedesc.U8()), nil)
		b := mustShape(t, c, typedesc.Enum(decl, typedesc.I64()), nil)
		if !bytes.Equal(a[:3], b[:3]) {
			t.Errorf("same declaration got different tag ids: %v vs %v", a[:3], b[:3])
		}
		if bytes.Equal(a, b) {
			t.Error("distinct instantiations produced identical payloads")
		}
		if c.TagCount() != 1 {
			t.Errorf("tag count = %d, want 1", c.TagCount())
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		c := NewContext(target.X64)
		decl := testEnumDecl("option", 6, 1,
			typedesc.VariantInfo{Name: "none"},
			typedesc.VariantInfo{Name: "some", Args: []*typedesc.Type{typedesc.Param(0)}},
		)
		ty := typedesc.Enum(decl, typedesc.Vec(typedesc.U8()))
		a := mustShape(t, c, ty, nil)
		b := mustShape(t, c, ty, nil)
		if !bytes.Equal(a, b) {
			t.Errorf("encoding not deterministic: %v vs %v", a, b)
		}
	})
}

func TestShapeOfResource(t *testing.T) {
	c := NewContext(target.X64)
	decl := &typedesc.ResourceDecl{
		ID:   typedesc.DeclID{Crate: 0, Node: 10},
		Name: "handle",
		Repr: typedesc.U32(),
	}

	got := mustShape(t, c, typedesc.Resource(decl), nil)
	want := []byte{byte(OpRes), 0, 0, 0, 0, 1, 0, byte(OpU32)}
	if !bytes.Equal(got, want) {
		t.Errorf("resource = %v, want %v", got, want)
	}

	// Interning the same instantiation again reuses the id.
	again := mustShape(t, c, typedesc.Resource(decl), nil)
	if !bytes.Equal(got, again) {
		t.Errorf("re-encoding changed the resource reference: %v vs %v", got, again)
	}
	if c.ResourceCount() != 1 {
		t.Errorf("resource count = %d, want 1", c.ResourceCount())
	}
}

func TestShapeOfParametricResource(t *testing.T) {
	c := NewContext(target.X64)
	decl := &typedesc.ResourceDecl{
		ID:     typedesc.DeclID{Crate: 0, Node: 11},
		Name:   "guard",
		Params: 1,
		Repr:   typedesc.Tuple(typedesc.Param(0)),
	}

	// The inner shape must reflect the substituted representation.
	got := mustShape(t, c, typedesc.Resource(decl, typedesc.U16()), nil)
	want := []byte{
		byte(OpRes), 0, 0, // resource id
		1, 0, // arg count
		1, 0, byte(OpU16), // arg shape
		4, 0, byte(OpStruct), 1, 0, byte(OpU16), // substituted inner shape
	}
	if !bytes.Equal(got, want) {
		t.Errorf("parametric resource = %v, want %v", got, want)
	}

	// Different instantiation, different id.
	_ = mustShape(t, c, typedesc.Resource(decl, typedesc.U32()), nil)
	if c.ResourceCount() != 2 {
		t.Errorf("resource count = %d, want 2", c.ResourceCount())
	}
}

func TestClassifyEnum(t *testing.T) {
	tests := []struct {
		name string
		decl *typedesc.EnumDecl
		want enumKind
	}{
		{"unit", testEnumDecl("u", 20, 0, typedesc.VariantInfo{Name: "a"}), enumUnit},
		{"plain", testEnumDecl("p", 21, 0,
			typedesc.VariantInfo{Name: "a"},
			typedesc.VariantInfo{Name: "b"}), enumPlain},
		{"newtype", testEnumDecl("n", 22, 0,
			typedesc.VariantInfo{Name: "a", Args: []*typedesc.Type{typedesc.U8()}}), enumNewtype},
		{"complex", testEnumDecl("c", 23, 0,
			typedesc.VariantInfo{Name: "a"},
			typedesc.VariantInfo{Name: "b", Args: []*typedesc.Type{typedesc.U8()}}), enumComplex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyEnum(tt.decl); got != tt.want {
				t.Errorf("classifyEnum(%s) = %d, want %d", tt.decl.Name, got, tt.want)
			}
		})
	}
}
