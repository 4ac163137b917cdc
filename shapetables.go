package shapetables

import (
	"github.com/wippyai/shape-tables/typedesc"
)

// DtorRef identifies a resource destructor in the output object. The
// backend resolves it to a function address when the tables are emitted.
type DtorRef struct {
	Symbol string
	Decl   typedesc.DeclID
}

// DtorProvider resolves the destructor for a resource instantiation.
// Implemented by the surrounding code generator.
type DtorProvider interface {
	Lookup(decl typedesc.DeclID, args []*typedesc.Type) (DtorRef, error)
}
