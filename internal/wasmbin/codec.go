package wasmbin

// HeapBase is the first address handed out by the bump allocator of
// modules built with CodecModule.
const HeapBase = 1024

// CodecSpec describes the two transform bodies of a codec module.
// Compress receives (ptr, len, level) and Decompress receives (ptr, len);
// both must leave an i64 packing (outPtr << 32) | outLen on the stack.
type CodecSpec struct {
	Compress   *Code
	Decompress *Code
}

// CodecModule assembles a module implementing the codec ABI: exported
// memory, a growing bump allocator "alloc", and "compress"/"decompress"
// built from spec.
func CodecModule(spec CodecSpec) []byte {
	m := NewModule()
	m.Memory(1)
	heap := m.GlobalI32(HeapBase)

	m.Func("alloc", []ValType{I32}, []ValType{I32}, []ValType{I32, I32}, bumpAlloc(heap))
	m.Func("compress", []ValType{I32, I32, I32}, []ValType{I64}, nil, spec.Compress)
	m.Func("decompress", []ValType{I32, I32}, []ValType{I64}, nil, spec.Decompress)
	return m.Encode()
}

// Passthrough returns the input region unchanged: (ptr << 32) | len.
func Passthrough() *Code {
	var c Code
	c.LocalGet(0).I64ExtendI32U().I64Const(32).I64Shl().
		LocalGet(1).I64ExtendI32U().I64Or()
	return &c
}

// Trap aborts the call.
func Trap() *Code {
	var c Code
	c.Unreachable()
	return &c
}

// bumpAlloc hands out [heap, heap+size) and grows memory to cover it.
// Local 1 holds the result, local 2 the page deficit.
func bumpAlloc(heap uint32) *Code {
	var c Code
	c.GlobalGet(heap).LocalSet(1).
		GlobalGet(heap).LocalGet(0).I32Add().GlobalSet(heap).
		GlobalGet(heap).I32Const(65535).I32Add().I32Const(16).I32ShrU().
		MemorySize().I32Sub().LocalTee(2).
		I32Const(0).I32GtS().
		If().
		LocalGet(2).MemoryGrow().Drop().
		End().
		LocalGet(1)
	return &c
}
