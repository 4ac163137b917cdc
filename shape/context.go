package shape

import (
	"math"

	"go.uber.org/zap"

	"github.com/wippyai/shape-tables/errors"
	"github.com/wippyai/shape-tables/layout"
	"github.com/wippyai/shape-tables/target"
	"github.com/wippyai/shape-tables/typedesc"
)

// Context holds the per-compilation-unit shape state: tag ids assigned to
// enum declarations in first-discovery order, interned resource
// instantiations, and the layout calculator. It is created at the start
// of code generation and consumed exactly once by Generate.
//
// A Context is not safe for concurrent use; table generation is a
// single-threaded batch pass.
type Context struct {
	spec      *target.Spec
	layout    *layout.Calculator
	nextTagID uint16
	tagIndex  map[typedesc.DeclID]uint16
	tagOrder  []*typedesc.EnumDecl
	resources resourceInterner
}

// NewContext creates an empty shape context for the given target.
func NewContext(spec *target.Spec) *Context {
	return &Context{
		spec:     spec,
		layout:   layout.NewCalculator(spec),
		tagIndex: make(map[typedesc.DeclID]uint16),
	}
}

// Target returns the context's target spec.
func (c *Context) Target() *target.Spec {
	return c.spec
}

// TagCount returns the number of registered enum declarations.
func (c *Context) TagCount() int {
	return len(c.tagOrder)
}

// tagID returns the dense id for decl, registering it on first
// discovery. Ids are never reassigned or reused within a run.
func (c *Context) tagID(decl *typedesc.EnumDecl) (uint16, error) {
	if id, ok := c.tagIndex[decl.ID]; ok {
		return id, nil
	}
	if int(c.nextTagID) >= math.MaxUint16 {
		return 0, errors.Overflow(errors.PhaseEncode, "tag id", uint64(c.nextTagID), math.MaxUint16-1)
	}
	id := c.nextTagID
	c.tagIndex[decl.ID] = id
	c.tagOrder = append(c.tagOrder, decl)
	c.nextTagID++
	Logger().Debug("registered enum",
		zap.String("enum", decl.Name),
		zap.Uint16("tag", id))
	return id, nil
}

// resourceID interns (decl, args) and returns its dense id, reused for
// repeated identical keys.
func (c *Context) resourceID(decl *typedesc.ResourceDecl, args []*typedesc.Type) int {
	return c.resources.intern(decl, args)
}

// ResourceCount returns the number of interned resource instantiations.
func (c *Context) ResourceCount() int {
	return len(c.resources.entries)
}

type resourceKey struct {
	decl *typedesc.ResourceDecl
	args []*typedesc.Type
}

// resourceInterner assigns dense ids to resource instantiations, hashed
// by declaration identity and argument fingerprints, compared
// structurally. It never shrinks within a run.
type resourceInterner struct {
	entries []resourceKey
	index   map[uint32][]int
}

func (in *resourceInterner) intern(decl *typedesc.ResourceDecl, args []*typedesc.Type) int {
	if in.index == nil {
		in.index = make(map[uint32][]int)
	}

	h := hashResource(decl.ID, args)
	for _, id := range in.index[h] {
		e := in.entries[id]
		if e.decl.ID == decl.ID && sameArgs(e.args, args) {
			return id
		}
	}

	id := len(in.entries)
	in.entries = append(in.entries, resourceKey{decl: decl, args: args})
	in.index[h] = append(in.index[h], id)
	return id
}

func hashResource(id typedesc.DeclID, args []*typedesc.Type) uint32 {
	h := uint32(5381)
	h = h*33 + id.Crate
	h = h*33 + id.Node
	for _, a := range args {
		h = h*33 + typedesc.Fingerprint(a)
	}
	return h
}

func sameArgs(a, b []*typedesc.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !typedesc.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
