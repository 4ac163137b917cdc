package layout

import (
	"testing"

	"github.com/wippyai/shape-tables/errors"
	"github.com/wippyai/shape-tables/target"
	"github.com/wippyai/shape-tables/typedesc"
)

func TestCalculatePrimitives(t *testing.T) {
	c := NewCalculator(target.X64)

	tests := []struct {
		typ   *typedesc.Type
		name  string
		size  uint32
		align uint32
	}{
		{typedesc.Nil(), "nil", 1, 1},
		{typedesc.Bool(), "bool", 1, 1},
		{typedesc.U8(), "u8", 1, 1},
		{typedesc.I8(), "i8", 1, 1},
		{typedesc.U16(), "u16", 2, 2},
		{typedesc.I32(), "i32", 4, 4},
		{typedesc.U64(), "u64", 8, 8},
		{typedesc.Char(), "char", 4, 4},
		{typedesc.F32(), "f32", 4, 4},
		{typedesc.F64(), "f64", 8, 8},
		{typedesc.Int(), "int", 8, 8},
		{typedesc.Uint(), "uint", 8, 8},
		{typedesc.Float(), "float", 8, 8},
		{typedesc.Str(), "str", 8, 8},
		{typedesc.Box(typedesc.U64()), "box", 8, 8},
		{typedesc.Uniq(typedesc.Str()), "uniq", 8, 8},
		{typedesc.Rptr(typedesc.I32()), "rptr", 8, 8},
		{typedesc.Fn(typedesc.ProtoBox), "fn", 16, 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info, err := c.Calculate(tc.typ)
			if err != nil {
				t.Fatalf("Calculate: %v", err)
			}
			if info.Size != tc.size {
				t.Errorf("size: got %d, want %d", info.Size, tc.size)
			}
			if info.Align != tc.align {
				t.Errorf("align: got %d, want %d", info.Align, tc.align)
			}
		})
	}
}

func TestCalculate32BitWords(t *testing.T) {
	c := NewCalculator(target.X86)

	info, err := c.Calculate(typedesc.Int())
	if err != nil {
		t.Fatal(err)
	}
	if info.Size != 4 || info.Align != 4 {
		t.Errorf("int on x86 = %d/%d, want 4/4", info.Size, info.Align)
	}

	info, err = c.Calculate(typedesc.Uniq(typedesc.U64()))
	if err != nil {
		t.Fatal(err)
	}
	if info.Size != 4 {
		t.Errorf("pointer on x86 = %d, want 4", info.Size)
	}
}

func TestCalculateStruct(t *testing.T) {
	c := NewCalculator(target.X64)

	t.Run("empty", func(t *testing.T) {
		info, err := c.Calculate(typedesc.Tuple())
		if err != nil {
			t.Fatal(err)
		}
		if info.Size != 0 || info.Align != 1 {
			t.Errorf("got %d/%d, want 0/1", info.Size, info.Align)
		}
	})

	t.Run("padding", func(t *testing.T) {
		// u8 at 0, u32 at 4, u8 at 8 -> rounded to 12
		info, err := c.Calculate(typedesc.Tuple(typedesc.U8(), typedesc.U32(), typedesc.U8()))
		if err != nil {
			t.Fatal(err)
		}
		if info.Size != 12 {
			t.Errorf("size = %d, want 12", info.Size)
		}
		if info.Align != 4 {
			t.Errorf("align = %d, want 4", info.Align)
		}
	})

	t.Run("record", func(t *testing.T) {
		info, err := c.Calculate(typedesc.Record(
			typedesc.Field{Name: "tag", Type: typedesc.U8()},
			typedesc.Field{Name: "value", Type: typedesc.U64()},
		))
		if err != nil {
			t.Fatal(err)
		}
		if info.Size != 16 || info.Align != 8 {
			t.Errorf("got %d/%d, want 16/8", info.Size, info.Align)
		}
	})
}

func TestCalculateEnum(t *testing.T) {
	c := NewCalculator(target.X64)

	t.Run("multi variant adds discriminant", func(t *testing.T) {
		decl := &typedesc.EnumDecl{
			ID:   typedesc.DeclID{Node: 1},
			Name: "shape",
			Variants: []typedesc.VariantInfo{
				{Name: "circle", Args: []*typedesc.Type{typedesc.F64()}},
				{Name: "point"},
			},
		}
		info, err := c.Calculate(typedesc.Enum(decl))
		if err != nil {
			t.Fatal(err)
		}
		// max payload 8 + discriminant 8
		if info.Size != 16 {
			t.Errorf("size = %d, want 16", info.Size)
		}
		if info.Align != 8 {
			t.Errorf("align = %d, want 8", info.Align)
		}
	})

	t.Run("newtype has no discriminant", func(t *testing.T) {
		decl := &typedesc.EnumDecl{
			ID:   typedesc.DeclID{Node: 2},
			Name: "wrapper",
			Variants: []typedesc.VariantInfo{
				{Name: "wrap", Args: []*typedesc.Type{typedesc.U32()}},
			},
		}
		info, err := c.Calculate(typedesc.Enum(decl))
		if err != nil {
			t.Fatal(err)
		}
		if info.Size != 4 {
			t.Errorf("size = %d, want 4", info.Size)
		}
	})

	t.Run("recursive list terminates", func(t *testing.T) {
		// list = cons(int, uniq(list)) | nil
		decl := &typedesc.EnumDecl{
			ID:   typedesc.DeclID{Node: 3},
			Name: "list",
		}
		self := typedesc.Enum(decl)
		decl.Variants = []typedesc.VariantInfo{
			{Name: "cons", Args: []*typedesc.Type{typedesc.Int(), typedesc.Uniq(self)}},
			{Name: "nil"},
		}

		info, err := c.Calculate(self)
		if err != nil {
			t.Fatal(err)
		}
		// (int, ptr) payload = 16, discriminant 8
		if info.Size != 24 {
			t.Errorf("size = %d, want 24", info.Size)
		}
	})

	t.Run("generic enum instantiated", func(t *testing.T) {
		decl := &typedesc.EnumDecl{
			ID:     typedesc.DeclID{Node: 4},
			Name:   "option",
			Params: 1,
			Variants: []typedesc.VariantInfo{
				{Name: "none"},
				{Name: "some", Args: []*typedesc.Type{typedesc.Param(0)}},
			},
		}
		info, err := c.Calculate(typedesc.Enum(decl, typedesc.U16()))
		if err != nil {
			t.Fatal(err)
		}
		// payload 2 + discriminant 8
		if info.Size != 10 {
			t.Errorf("size = %d, want 10", info.Size)
		}
	})
}

func TestCalculateResource(t *testing.T) {
	c := NewCalculator(target.X64)

	decl := &typedesc.ResourceDecl{
		ID:   typedesc.DeclID{Node: 9},
		Name: "file",
		Repr: typedesc.U32(),
	}
	info, err := c.Calculate(typedesc.Resource(decl))
	if err != nil {
		t.Fatal(err)
	}
	// live flag word (8) + u32 payload, rounded to word alignment
	if info.Size != 16 || info.Align != 8 {
		t.Errorf("got %d/%d, want 16/8", info.Size, info.Align)
	}
}

func TestCalculateParametricFails(t *testing.T) {
	c := NewCalculator(target.X64)

	_, err := c.Calculate(typedesc.Param(0))
	if err == nil {
		t.Fatal("expected invariant violation")
	}
	if !errors.IsInvariant(err) {
		t.Errorf("err = %v, want invariant violation", err)
	}

	_, err = c.Calculate(typedesc.Tuple(typedesc.U8(), typedesc.Param(1)))
	if !errors.IsInvariant(err) {
		t.Errorf("nested param err = %v, want invariant violation", err)
	}
}

func TestSelfReferentialRecordSize(t *testing.T) {
	c := NewCalculator(target.X64)

	// A record owning a pointer to itself: simplification collapses the
	// pointer so the size query terminates at one pointer width.
	node := &typedesc.Type{Kind: typedesc.KindRecord}
	node.Fields = []typedesc.Field{
		{Name: "next", Type: typedesc.Uniq(node)},
	}

	info, err := c.Calculate(Simplify(node))
	if err != nil {
		t.Fatal(err)
	}
	if info.Size != 8 {
		t.Errorf("size = %d, want one pointer width (8)", info.Size)
	}
}
