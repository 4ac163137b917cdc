package typedesc

// Kind is the structural case of a type descriptor. The set is closed:
// every descriptor the backend can see is one of these.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindU8
	KindU16
	KindU32
	KindU64
	KindI8
	KindI16
	KindI32
	KindI64
	KindUint // target-dependent width
	KindInt  // target-dependent width
	KindChar
	KindF32
	KindF64
	KindFloat // target-dependent width
	KindStr
	KindVec
	KindBox
	KindOpaqueBox
	KindUniq
	KindRawPtr
	KindRptr
	KindRecord
	KindTuple
	KindEnum
	KindResource
	KindFn
	KindIface
	KindClass
	KindOpaqueClosure
	KindTypeDesc
	KindSendTypeDesc
	KindParam
	KindBot
	KindInferVar
	KindSelf
)

var kindNames = [...]string{
	KindNil:           "nil",
	KindBool:          "bool",
	KindU8:            "u8",
	KindU16:           "u16",
	KindU32:           "u32",
	KindU64:           "u64",
	KindI8:            "i8",
	KindI16:           "i16",
	KindI32:           "i32",
	KindI64:           "i64",
	KindUint:          "uint",
	KindInt:           "int",
	KindChar:          "char",
	KindF32:           "f32",
	KindF64:           "f64",
	KindFloat:         "float",
	KindStr:           "str",
	KindVec:           "vec",
	KindBox:           "box",
	KindOpaqueBox:     "opaque-box",
	KindUniq:          "uniq",
	KindRawPtr:        "ptr",
	KindRptr:          "rptr",
	KindRecord:        "record",
	KindTuple:         "tuple",
	KindEnum:          "enum",
	KindResource:      "resource",
	KindFn:            "fn",
	KindIface:         "iface",
	KindClass:         "class",
	KindOpaqueClosure: "opaque-closure",
	KindTypeDesc:      "tydesc",
	KindSendTypeDesc:  "send-tydesc",
	KindParam:         "param",
	KindBot:           "bot",
	KindInferVar:      "infer-var",
	KindSelf:          "self",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Proto is a function type's calling convention.
type Proto uint8

const (
	ProtoBox Proto = iota
	ProtoUniq
	ProtoBlock
	ProtoAny
	ProtoBare
)

var protoNames = [...]string{
	ProtoBox:   "box",
	ProtoUniq:  "uniq",
	ProtoBlock: "block",
	ProtoAny:   "any",
	ProtoBare:  "bare",
}

func (p Proto) String() string {
	if int(p) < len(protoNames) {
		return protoNames[p]
	}
	return "unknown"
}
