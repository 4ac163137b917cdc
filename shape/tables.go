package shape

import (
	"math"

	"go.uber.org/zap"

	shapetables "github.com/wippyai/shape-tables"
	"github.com/wippyai/shape-tables/errors"
	"github.com/wippyai/shape-tables/shape/internal/binary"
	"github.com/wippyai/shape-tables/typedesc"
)

// Tables is the sealed output of one generation run: the tag-shape table
// bytes and the resource-destructor references, emitted by the backend as
// a single read-only aggregate symbol.
type Tables struct {
	Name      string
	TagShapes []byte
	Resources []shapetables.DtorRef
}

// TableName is the symbol name of the generated aggregate.
const TableName = "shapes"

// Generate assembles the shape tables for every enum and resource
// registered in ctx. Encoding a variant may register further enums, so
// the data pass iterates to a fixpoint over the growing discovery list.
//
// The tag table is four regions concatenated in order: a header of one
// u16 info-record offset per enum, the info records, the variant data
// blobs, and the largest-variant sub-tables. Every offset is absolute
// from the start of the table.
func Generate(ctx *Context, dtors shapetables.DtorProvider) (*Tables, error) {
	data := binary.NewWriter()

	// Offsets of each enum's variant blobs within the data region,
	// indexed by tag id. The loop re-reads len(tagOrder) because
	// encoding registers nested enums mid-pass.
	var variantOffsets [][]int
	for i := 0; i < len(ctx.tagOrder); i++ {
		decl := ctx.tagOrder[i]
		offsets := make([]int, 0, len(decl.Variants))
		for _, v := range decl.Variants {
			offsets = append(offsets, data.Len())
			shape, err := ctx.variantShape(decl, v)
			if err != nil {
				return nil, err
			}
			if err := putSubstr(errors.PhaseTables, data, shape); err != nil {
				return nil, err
			}
			name := append([]byte(v.Name), 0)
			if err := putSubstr(errors.PhaseTables, data, name); err != nil {
				return nil, err
			}
		}
		variantOffsets = append(variantOffsets, offsets)
		Logger().Debug("encoded enum variants",
			zap.String("enum", decl.Name),
			zap.Int("variants", len(decl.Variants)))
	}

	headerSz := 2 * len(ctx.tagOrder)

	// Info record: variant count, largest-variant table offset, static
	// size, static align, then one data offset per variant.
	infoSz := 0
	for _, decl := range ctx.tagOrder {
		infoSz += 2*(len(decl.Variants)+2) + 3
	}

	header := binary.NewWriter()
	info := binary.NewWriter()
	lv := binary.NewWriter()

	for id, decl := range ctx.tagOrder {
		infoStart := headerSz + info.Len()
		if err := putOffset(header, infoStart); err != nil {
			return nil, err
		}

		if err := putOffset(info, len(decl.Variants)); err != nil {
			return nil, err
		}

		ranges, err := ctx.variantRanges(decl)
		if err != nil {
			return nil, err
		}
		dominant := largestVariants(ranges)

		lvStart := headerSz + infoSz + data.Len() + lv.Len()
		if err := putOffset(info, lvStart); err != nil {
			return nil, err
		}
		if err := putOffset(lv, len(dominant)); err != nil {
			return nil, err
		}
		for _, idx := range dominant {
			if err := putOffset(lv, idx); err != nil {
				return nil, err
			}
		}

		if isDynamic(decl) {
			// Extent unknown until monomorphization; the runtime takes
			// the dynamic path on a zero placeholder.
			info.U16(0)
			info.Byte(0)
		} else {
			sz, err := ctx.staticEnumSize(decl, dominant)
			if err != nil {
				return nil, err
			}
			if sz.Size > math.MaxUint16 {
				return nil, errors.Overflow(errors.PhaseTables, "static enum size", uint64(sz.Size), math.MaxUint16)
			}
			if sz.Align > math.MaxUint8 {
				return nil, errors.Overflow(errors.PhaseTables, "static enum align", uint64(sz.Align), math.MaxUint8)
			}
			info.U16(uint16(sz.Size))
			info.Byte(byte(sz.Align))
		}

		for _, off := range variantOffsets[id] {
			if err := putOffset(info, headerSz+infoSz+off); err != nil {
				return nil, err
			}
		}

		wrote := headerSz + info.Len() - infoStart
		if wrote != 2*(len(decl.Variants)+2)+3 {
			return nil, errors.Bug(errors.PhaseTables,
				"info record for enum %s is %d bytes, expected %d",
				decl.Name, wrote, 2*(len(decl.Variants)+2)+3)
		}
	}

	if info.Len() != infoSz {
		return nil, errors.Bug(errors.PhaseTables,
			"info region is %d bytes, expected %d", info.Len(), infoSz)
	}

	table := make([]byte, 0, headerSz+infoSz+data.Len()+lv.Len())
	table = append(table, header.Bytes()...)
	table = append(table, info.Bytes()...)
	table = append(table, data.Bytes()...)
	table = append(table, lv.Bytes()...)

	resources, err := resourceTable(ctx, dtors)
	if err != nil {
		return nil, err
	}

	Logger().Info("generated shape tables",
		zap.Int("enums", ctx.TagCount()),
		zap.Int("resources", len(resources)),
		zap.Int("tag_table_bytes", len(table)))

	return &Tables{
		Name:      TableName,
		TagShapes: table,
		Resources: resources,
	}, nil
}

// variantShape encodes a variant's fields as if they were a struct,
// against the declaration's own formal parameters.
func (c *Context) variantShape(decl *typedesc.EnumDecl, v typedesc.VariantInfo) ([]byte, error) {
	paramMap := make([]int, decl.Params)
	for i := range paramMap {
		paramMap[i] = i
	}

	w := binary.NewWriter()
	for _, arg := range v.Args {
		s, err := c.ShapeOf(arg, paramMap)
		if err != nil {
			return nil, err
		}
		w.WriteBytes(s)
	}
	return w.Bytes(), nil
}

// resourceTable resolves one destructor reference per interned resource
// instantiation, in interning order so the table is indexed by id.
func resourceTable(ctx *Context, dtors shapetables.DtorProvider) ([]shapetables.DtorRef, error) {
	refs := make([]shapetables.DtorRef, 0, ctx.ResourceCount())
	for _, e := range ctx.resources.entries {
		ref, err := dtors.Lookup(e.decl.ID, e.args)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseTables, errors.KindNotFound, err,
				"destructor for resource "+e.decl.Name)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// putOffset writes v as a little-endian u16, the width of every table
// offset and count.
func putOffset(w *binary.Writer, v int) error {
	if v < 0 || v > math.MaxUint16 {
		return errors.Overflow(errors.PhaseTables, "table offset", uint64(v), math.MaxUint16)
	}
	w.U16(uint16(v))
	return nil
}
