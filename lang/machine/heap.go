package machine

import (
	"encoding/binary"
	"math"

	"github.com/mna/toylang/lang/types"
)

// alloc reserves size bytes at the end of the heap, zero-initialized, and
// returns the byte offset of the reservation's first byte.
func (vm *VM) alloc(size int) int {
	off := len(vm.heap)
	vm.heap = append(vm.heap, make([]byte, size)...)
	return off
}

// encodeScalar writes v's bit pattern into dst, sized to match the field
// width the code generator computed from the Registry (4 bytes for i32/f32/
// type, 1 for bool, 8 for a function or heap-pointer value). Struct- and
// array-typed fields never reach this path: OpGetFieldStruct pushes the
// field's heap offset without copying it, and OpSetFieldStruct moves the
// field by raw byte copy, instead of by tagged encoding.
func encodeScalar(dst []byte, v types.Value) {
	switch v.Tag {
	case types.I32Value:
		binary.BigEndian.PutUint32(dst, uint32(v.I32))
	case types.F32Value:
		binary.BigEndian.PutUint32(dst, math.Float32bits(v.F32))
	case types.BoolValue:
		if v.Bool {
			dst[0] = 1
		} else {
			dst[0] = 0
		}
	case types.TypeValue:
		binary.BigEndian.PutUint32(dst, uint32(v.Type))
	case types.FuncValue:
		binary.BigEndian.PutUint64(dst, uint64(int64(v.Func)))
	case types.HeapValue:
		binary.BigEndian.PutUint64(dst, uint64(int64(v.Heap)))
	}
}

// decodeScalar reconstitutes a Value of the given tag from src, the inverse
// of encodeScalar.
func decodeScalar(src []byte, tag types.ValueTag) types.Value {
	switch tag {
	case types.I32Value:
		return types.MakeI32(int32(binary.BigEndian.Uint32(src)))
	case types.F32Value:
		return types.MakeF32(math.Float32frombits(binary.BigEndian.Uint32(src)))
	case types.BoolValue:
		return types.MakeBool(src[0] != 0)
	case types.TypeValue:
		return types.MakeType(int(binary.BigEndian.Uint32(src)))
	case types.FuncValue:
		return types.MakeFunc(int(int64(binary.BigEndian.Uint64(src))))
	case types.HeapValue:
		return types.MakeHeap(int(int64(binary.BigEndian.Uint64(src))))
	default:
		return types.Nil
	}
}
