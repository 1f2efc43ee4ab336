// Package wasmcodecs manages optional, independently loaded compression modules.
//
// A module is either a native Go codec (zstd, snappy, lz4, brotli) or a
// WebAssembly codec executed by an embedded wazero runtime. Modules load
// asynchronously, expose their load state through an observable read model,
// and can be force-reloaded to recover from a failed or partial load.
//
// # Architecture Overview
//
//	wasmcodecs/          Root package with the Codec interface and Opener type
//	├── loader/          Module lifecycle: Initialize, ForceReload, Compress, Decompress
//	├── engine/          wazero host for WASM codec modules
//	├── codec/           Native codecs, builtin WASM codecs, module sources
//	├── errors/          Structured error types
//	└── cmd/run/         CLI (status, compress, selftest, reload, metrics, panel)
//
// # Quick Start
//
//	l := loader.New(loader.WithLogger(logger))
//	l.Register("zstd", codec.NewZstd, loader.WithLevel(10))
//	l.Register("snappy", codec.NewSnappy)
//
//	l.Initialize(ctx) // never fails; failures are reported through state
//	defer l.Close(ctx)
//
//	for _, st := range l.Snapshot() {
//	    fmt.Println(st.Name, st.State)
//	}
//
//	out, err := l.Compress(ctx, "zstd", []byte("Hello ZSTD!"))
//	if errors.Is(err, errors.ErrModuleNotReady) {
//	    // the module failed to load or is still loading
//	}
//
// # WASM Codec ABI
//
// A WASM codec module exports linear memory as "memory" and three functions:
//
//	alloc(size i32) -> i32
//	compress(ptr i32, len i32, level i32) -> i64
//	decompress(ptr i32, len i32) -> i64
//
// Results pack the output location as (ptr << 32) | len.
//
// # Thread Safety
//
// Loader is safe for concurrent use. Codecs returned by the codec and engine
// packages are safe for concurrent use; each WASM call runs in its own
// instance.
//
// # Debug Builds
//
// The diagnostic panel is compiled only with -tags debug. Production
// binaries do not contain it.
package wasmcodecs
