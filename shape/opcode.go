package shape

import (
	"fmt"

	"github.com/wippyai/shape-tables/target"
)

// Opcode is a tag byte in the shape byte string. Values are part of the
// table format; deprecated and reserved slots must not be reused until a
// format-version bump.
type Opcode uint8

const (
	OpU8     Opcode = 0
	OpU16    Opcode = 1
	OpU32    Opcode = 2
	OpU64    Opcode = 3
	OpI8     Opcode = 4
	OpI16    Opcode = 5
	OpI32    Opcode = 6
	OpI64    Opcode = 7
	OpF32    Opcode = 8
	OpF64    Opcode = 9
	OpBox    Opcode = 10
	OpVec    Opcode = 11
	OpEnum   Opcode = 12
	OpBoxOld Opcode = 13 // deprecated
	OpStruct Opcode = 17
	OpBoxFn  Opcode = 18
	OpUnused Opcode = 19 // reserved
	OpRes    Opcode = 20
	OpVar    Opcode = 21
	OpUniq   Opcode = 22

	// The closure itself, not a pointer to it.
	OpOpaqueClosure Opcode = 23

	OpUniqFn     Opcode = 25
	OpStackFn    Opcode = 26
	OpBareFn     Opcode = 27
	OpTydesc     Opcode = 28
	OpSendTydesc Opcode = 29
	OpClass      Opcode = 30
	OpRptr       Opcode = 31
)

var opcodeNames = [...]string{
	OpU8:            "u8",
	OpU16:           "u16",
	OpU32:           "u32",
	OpU64:           "u64",
	OpI8:            "i8",
	OpI16:           "i16",
	OpI32:           "i32",
	OpI64:           "i64",
	OpF32:           "f32",
	OpF64:           "f64",
	OpBox:           "box",
	OpVec:           "vec",
	OpEnum:          "enum",
	OpBoxOld:        "box-old",
	OpStruct:        "struct",
	OpBoxFn:         "box-fn",
	OpUnused:        "unused",
	OpRes:           "res",
	OpVar:           "var",
	OpUniq:          "uniq",
	OpOpaqueClosure: "opaque-closure",
	OpUniqFn:        "uniq-fn",
	OpStackFn:       "stack-fn",
	OpBareFn:        "bare-fn",
	OpTydesc:        "tydesc",
	OpSendTydesc:    "send-tydesc",
	OpClass:         "class",
	OpRptr:          "rptr",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// Valid reports whether op is an assigned, non-reserved opcode.
func (op Opcode) Valid() bool {
	if int(op) >= len(opcodeNames) || opcodeNames[op] == "" {
		return false
	}
	return op != OpBoxOld && op != OpUnused
}

// Width-unspecified scalars resolve per target word width.

func opInt(spec *target.Spec) Opcode {
	if spec.IntWidth == 8 {
		return OpI64
	}
	return OpI32
}

func opUint(spec *target.Spec) Opcode {
	if spec.IntWidth == 8 {
		return OpU64
	}
	return OpU32
}

func opFloat(spec *target.Spec) Opcode {
	if spec.FloatWidth == 8 {
		return OpF64
	}
	return OpF32
}

// opDiscriminant is the representation of an enum discriminant, encoded
// as the target int.
func opDiscriminant(spec *target.Spec) Opcode {
	return opInt(spec)
}
