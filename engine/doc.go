// Package engine hosts WebAssembly codec modules on wazero.
//
// # Architecture
//
//	WazeroEngine - Owns a wazero runtime; compiles codec modules
//	WazeroCodec  - A compiled, ABI-validated codec module
//
// # Codec ABI
//
// A codec module exports its linear memory and three functions:
//
//	memory                                   exported linear memory
//	alloc(size i32) -> i32                   returns a writable region of size bytes
//	compress(ptr i32, len i32, level i32) -> i64
//	decompress(ptr i32, len i32) -> i64
//
// compress and decompress return (outPtr << 32) | outLen. LoadCodec rejects
// modules whose exports are missing or mistyped with a MissingExportsError.
//
// # Call Flow
//
//  1. WazeroEngine.LoadCodec compiles and validates the module once
//  2. Each Compress/Decompress instantiates an anonymous instance
//  3. The host calls alloc, writes the input, calls the transform
//  4. The output is copied out and the instance is closed
//
// Per-call instances keep calls independent and return guest memory after
// each call; WASM linear memory can only grow, never shrink.
//
// # Cancellation
//
// The runtime is created with CloseOnContextDone, so a cancelled context
// interrupts a running guest call.
package engine
