package typedesc

// HasParams reports whether t still references an unresolved type
// parameter anywhere in its structure.
func HasParams(t *Type) bool {
	return hasParams(t, make(map[*Type]bool))
}

func hasParams(t *Type, seen map[*Type]bool) bool {
	if t == nil || seen[t] {
		return false
	}
	seen[t] = true
	switch t.Kind {
	case KindParam:
		return true
	case KindVec, KindBox, KindUniq, KindRawPtr, KindRptr:
		return hasParams(t.Elem, seen)
	case KindRecord, KindClass:
		for _, f := range t.Fields {
			if hasParams(f.Type, seen) {
				return true
			}
		}
	case KindTuple:
		for _, e := range t.Elems {
			if hasParams(e, seen) {
				return true
			}
		}
	case KindEnum, KindResource:
		// Parameters inside the declaration body are bound by Args, so
		// only the arguments can leak one.
		for _, a := range t.Args {
			if hasParams(a, seen) {
				return true
			}
		}
	}
	return false
}

// IsPOD reports whether values of t can be copied bytewise with no
// ownership bookkeeping. Unresolved parameters are conservatively non-POD.
func IsPOD(t *Type) bool {
	return isPOD(t, make(map[*Type]bool))
}

func isPOD(t *Type, seen map[*Type]bool) bool {
	if t == nil || seen[t] {
		return true
	}
	seen[t] = true
	switch t.Kind {
	case KindStr, KindVec, KindBox, KindOpaqueBox, KindUniq,
		KindIface, KindOpaqueClosure, KindResource,
		KindTypeDesc, KindSendTypeDesc, KindParam:
		return false
	case KindFn:
		return t.Proto == ProtoBare
	case KindRptr, KindRawPtr:
		return true
	case KindRecord, KindClass:
		for _, f := range t.Fields {
			if !isPOD(f.Type, seen) {
				return false
			}
		}
		return true
	case KindTuple:
		for _, e := range t.Elems {
			if !isPOD(e, seen) {
				return false
			}
		}
		return true
	case KindEnum:
		for _, v := range t.Enum.Variants {
			for _, arg := range v.Args {
				if !isPOD(Substitute(arg, t.Args), seen) {
					return false
				}
			}
		}
		return true
	default:
		return true
	}
}

// Substitute replaces every Param(i) in t with args[i], rebuilding only
// the spine that changes. A parameter index with no corresponding
// argument is left in place; the result then still reports HasParams.
func Substitute(t *Type, args []*Type) *Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KindParam:
		if t.Index >= 0 && t.Index < len(args) {
			return args[t.Index]
		}
		return t
	case KindVec, KindBox, KindUniq, KindRawPtr, KindRptr:
		elem := Substitute(t.Elem, args)
		if elem == t.Elem {
			return t
		}
		return &Type{Kind: t.Kind, Elem: elem}
	case KindRecord, KindClass:
		var fields []Field
		for i, f := range t.Fields {
			ft := Substitute(f.Type, args)
			if fields == nil && ft != f.Type {
				fields = make([]Field, len(t.Fields))
				copy(fields, t.Fields[:i])
			}
			if fields != nil {
				fields[i] = Field{Name: f.Name, Type: ft}
			}
		}
		if fields == nil {
			return t
		}
		return &Type{Kind: t.Kind, Fields: fields}
	case KindTuple:
		elems := substituteAll(t.Elems, args)
		if len(t.Elems) == 0 || &elems[0] == &t.Elems[0] {
			return t
		}
		return &Type{Kind: KindTuple, Elems: elems}
	case KindEnum:
		sub := substituteAll(t.Args, args)
		if len(t.Args) == 0 || &sub[0] == &t.Args[0] {
			return t
		}
		return &Type{Kind: KindEnum, Enum: t.Enum, Args: sub}
	case KindResource:
		sub := substituteAll(t.Args, args)
		if len(t.Args) == 0 || &sub[0] == &t.Args[0] {
			return t
		}
		return &Type{Kind: KindResource, Res: t.Res, Args: sub}
	default:
		return t
	}
}

// substituteAll returns ts itself when nothing changed, so callers can
// detect sharing by comparing the backing arrays.
func substituteAll(ts []*Type, args []*Type) []*Type {
	if len(ts) == 0 {
		return ts
	}
	var out []*Type
	for i, t := range ts {
		st := Substitute(t, args)
		if out == nil && st != t {
			out = make([]*Type, len(ts))
			copy(out, ts[:i])
		}
		if out != nil {
			out[i] = st
		}
	}
	if out == nil {
		return ts
	}
	return out
}

const (
	hashSeed  = 5381
	hashMult  = 33
	cycleMark = 0x00c0ffee
)

// Fingerprint computes a canonical numeric identity for a type: a
// polynomial hash over its structure. Structurally equal types hash
// equally; cycles are broken with preorder back-reference markers.
func Fingerprint(t *Type) uint32 {
	h := &hasher{seen: make(map[*Type]uint32)}
	return h.hash(t)
}

type hasher struct {
	seen map[*Type]uint32
	next uint32
}

func (h *hasher) hash(t *Type) uint32 {
	if t == nil {
		return hashSeed
	}
	if idx, ok := h.seen[t]; ok {
		return cycleMark ^ idx
	}
	h.seen[t] = h.next
	h.next++

	v := uint32(hashSeed)
	v = v*hashMult + uint32(t.Kind)
	switch t.Kind {
	case KindParam:
		v = v*hashMult + uint32(t.Index)
	case KindFn:
		v = v*hashMult + uint32(t.Proto)
	case KindVec, KindBox, KindUniq, KindRawPtr, KindRptr:
		v = v*hashMult + h.hash(t.Elem)
	case KindRecord, KindClass:
		for _, f := range t.Fields {
			v = v*hashMult + hashString(f.Name)
			v = v*hashMult + h.hash(f.Type)
		}
	case KindTuple:
		for _, e := range t.Elems {
			v = v*hashMult + h.hash(e)
		}
	case KindEnum:
		v = v*hashMult + t.Enum.ID.Crate
		v = v*hashMult + t.Enum.ID.Node
		for _, a := range t.Args {
			v = v*hashMult + h.hash(a)
		}
	case KindResource:
		v = v*hashMult + t.Res.ID.Crate
		v = v*hashMult + t.Res.ID.Node
		for _, a := range t.Args {
			v = v*hashMult + h.hash(a)
		}
	}
	return v
}

func hashString(s string) uint32 {
	v := uint32(hashSeed)
	for i := 0; i < len(s); i++ {
		v = v*hashMult + uint32(s[i])
	}
	return v
}

// Equal reports structural equality. Nominal types (enums, resources)
// compare by declaration identity and arguments, not by body.
func Equal(a, b *Type) bool {
	return equal(a, b, make(map[[2]*Type]bool))
}

func equal(a, b *Type, seen map[[2]*Type]bool) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	key := [2]*Type{a, b}
	if seen[key] {
		return true
	}
	seen[key] = true

	switch a.Kind {
	case KindParam:
		return a.Index == b.Index
	case KindFn:
		return a.Proto == b.Proto
	case KindVec, KindBox, KindUniq, KindRawPtr, KindRptr:
		return equal(a.Elem, b.Elem, seen)
	case KindRecord, KindClass:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name ||
				!equal(a.Fields[i].Type, b.Fields[i].Type, seen) {
				return false
			}
		}
		return true
	case KindTuple:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !equal(a.Elems[i], b.Elems[i], seen) {
				return false
			}
		}
		return true
	case KindEnum:
		return a.Enum.ID == b.Enum.ID && equalArgs(a.Args, b.Args, seen)
	case KindResource:
		return a.Res.ID == b.Res.ID && equalArgs(a.Args, b.Args, seen)
	default:
		return true
	}
}

func equalArgs(a, b []*Type, seen map[[2]*Type]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equal(a[i], b[i], seen) {
			return false
		}
	}
	return true
}
