// Package wasmbin assembles small WebAssembly core modules.
//
// It covers the subset needed for codec modules: function types, functions
// with i32/i64 locals, one linear memory, mutable i32 globals and exports.
// Instruction bodies are built with Code:
//
//	var c wasmbin.Code
//	c.LocalGet(0).I64ExtendI32U().I64Const(32).I64Shl()
//
//	m := wasmbin.NewModule()
//	m.Memory(1)
//	m.Func("compress", []wasmbin.ValType{wasmbin.I32, wasmbin.I32, wasmbin.I32},
//	    []wasmbin.ValType{wasmbin.I64}, nil, c)
//	bin := m.Encode()
package wasmbin
