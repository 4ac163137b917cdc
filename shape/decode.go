package shape

import (
	"bytes"
	"strconv"

	"github.com/wippyai/shape-tables/errors"
	"github.com/wippyai/shape-tables/shape/internal/binary"
)

// Node is one decoded shape tree node. Operand fields are populated
// according to the opcode: Pod for vec, Tag for enum, Res for res, Slot
// for var. Children holds argument or element sub-shapes; for res the
// last child is the bound-substituted inner shape.
type Node struct {
	Op       Opcode
	Pod      bool
	Tag      uint16
	Res      uint16
	Slot     uint8
	Children []*Node
}

// DecodeShape parses a single shape from data and verifies that nothing
// trails it.
func DecodeShape(data []byte) (*Node, error) {
	r := binary.NewReader(data)
	n, err := decodeNode(r)
	if err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		return nil, errors.InvalidData(errors.PhaseDecode, nil,
			"trailing bytes after shape")
	}
	return n, nil
}

// decodeShapes parses a concatenation of shapes until data is exhausted.
func decodeShapes(data []byte) ([]*Node, error) {
	r := binary.NewReader(data)
	var out []*Node
	for r.Remaining() > 0 {
		n, err := decodeNode(r)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func decodeNode(r *binary.Reader) (*Node, error) {
	b, err := r.Byte()
	if err != nil {
		return nil, wrapDecode(err)
	}
	op := Opcode(b)
	if !op.Valid() {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Detail("unassigned or reserved opcode %d at position %d", b, r.Position()-1).
			Build()
	}
	n := &Node{Op: op}

	switch op {
	case OpU8, OpU16, OpU32, OpU64,
		OpI8, OpI16, OpI32, OpI64,
		OpF32, OpF64,
		OpBox, OpBoxFn, OpUniqFn, OpStackFn, OpBareFn,
		OpOpaqueClosure, OpTydesc, OpSendTydesc:
		return n, nil

	case OpVec:
		pod, err := r.Bool()
		if err != nil {
			return nil, wrapDecode(err)
		}
		n.Pod = pod
		elem, err := decodeSubShape(r)
		if err != nil {
			return nil, err
		}
		n.Children = []*Node{elem}
		return n, nil

	case OpUniq, OpRptr:
		elem, err := decodeSubShape(r)
		if err != nil {
			return nil, err
		}
		n.Children = []*Node{elem}
		return n, nil

	case OpStruct, OpClass:
		sub, err := r.Substr()
		if err != nil {
			return nil, wrapDecode(err)
		}
		fields, err := decodeShapes(sub)
		if err != nil {
			return nil, err
		}
		n.Children = fields
		return n, nil

	case OpEnum:
		id, err := r.U16()
		if err != nil {
			return nil, wrapDecode(err)
		}
		n.Tag = id
		argc, err := r.U16()
		if err != nil {
			return nil, wrapDecode(err)
		}
		for i := 0; i < int(argc); i++ {
			arg, err := decodeSubShape(r)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, arg)
		}
		return n, nil

	case OpRes:
		id, err := r.U16()
		if err != nil {
			return nil, wrapDecode(err)
		}
		n.Res = id
		argc, err := r.U16()
		if err != nil {
			return nil, wrapDecode(err)
		}
		for i := 0; i < int(argc)+1; i++ {
			arg, err := decodeSubShape(r)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, arg)
		}
		return n, nil

	case OpVar:
		slot, err := r.Byte()
		if err != nil {
			return nil, wrapDecode(err)
		}
		n.Slot = slot
		return n, nil

	default:
		return nil, errors.Bug(errors.PhaseDecode, "unhandled opcode %s", op)
	}
}

func decodeSubShape(r *binary.Reader) (*Node, error) {
	sub, err := r.Substr()
	if err != nil {
		return nil, wrapDecode(err)
	}
	return DecodeShape(sub)
}

func wrapDecode(err error) error {
	return errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "malformed shape")
}

// VariantEntry is one decoded enum variant: its name and field shapes.
type VariantEntry struct {
	Name   string
	Fields []*Node
}

// EnumEntry is one decoded tag-table info record.
type EnumEntry struct {
	StaticSize  uint16
	StaticAlign uint8
	Variants    []VariantEntry
	Largest     []int
}

// TagTable is a fully decoded tag-shape table, indexed by tag id.
type TagTable struct {
	Enums []EnumEntry
}

// ParseTagTable decodes a generated tag table. The enum count is not
// stored explicitly; it is derived from the first header entry, which
// points just past the header.
func ParseTagTable(data []byte) (*TagTable, error) {
	if len(data) == 0 {
		return &TagTable{}, nil
	}

	r := binary.NewReader(data)
	first, err := r.U16()
	if err != nil {
		return nil, wrapDecode(err)
	}
	if first == 0 || first%2 != 0 {
		return nil, errors.InvalidData(errors.PhaseDecode, nil,
			"header does not start with a valid info offset")
	}
	count := int(first) / 2

	offsets := make([]int, 0, count)
	offsets = append(offsets, int(first))
	for i := 1; i < count; i++ {
		off, err := r.U16()
		if err != nil {
			return nil, wrapDecode(err)
		}
		offsets = append(offsets, int(off))
	}

	t := &TagTable{Enums: make([]EnumEntry, 0, count)}
	for i, off := range offsets {
		e, err := parseInfoRecord(data, off)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err,
				"info record for tag "+strconv.Itoa(i))
		}
		t.Enums = append(t.Enums, e)
	}
	return t, nil
}

func parseInfoRecord(data []byte, off int) (EnumEntry, error) {
	var e EnumEntry
	if off >= len(data) {
		return e, errors.OutOfBounds(errors.PhaseDecode, "info record", off, len(data))
	}

	r := binary.NewReader(data)
	if err := r.Seek(off); err != nil {
		return e, err
	}

	numVariants, err := r.U16()
	if err != nil {
		return e, err
	}
	lvOff, err := r.U16()
	if err != nil {
		return e, err
	}
	size, err := r.U16()
	if err != nil {
		return e, err
	}
	align, err := r.Byte()
	if err != nil {
		return e, err
	}
	e.StaticSize = size
	e.StaticAlign = align

	for i := 0; i < int(numVariants); i++ {
		vOff, err := r.U16()
		if err != nil {
			return e, err
		}
		v, err := parseVariant(data, int(vOff))
		if err != nil {
			return e, err
		}
		e.Variants = append(e.Variants, v)
	}

	lv := binary.NewReader(data)
	if err := lv.Seek(int(lvOff)); err != nil {
		return e, err
	}
	lvCount, err := lv.U16()
	if err != nil {
		return e, err
	}
	for i := 0; i < int(lvCount); i++ {
		idx, err := lv.U16()
		if err != nil {
			return e, err
		}
		if int(idx) >= int(numVariants) {
			return e, errors.OutOfBounds(errors.PhaseDecode,
				"largest-variant index", int(idx), int(numVariants))
		}
		e.Largest = append(e.Largest, int(idx))
	}
	return e, nil
}

func parseVariant(data []byte, off int) (VariantEntry, error) {
	var v VariantEntry
	if off >= len(data) {
		return v, errors.OutOfBounds(errors.PhaseDecode, "variant blob", off, len(data))
	}

	r := binary.NewReader(data)
	if err := r.Seek(off); err != nil {
		return v, err
	}
	shapes, err := r.Substr()
	if err != nil {
		return v, err
	}
	fields, err := decodeShapes(shapes)
	if err != nil {
		return v, err
	}
	name, err := r.Substr()
	if err != nil {
		return v, err
	}
	v.Name = string(bytes.TrimSuffix(name, []byte{0}))
	v.Fields = fields
	return v, nil
}
