// Package codec provides the codec modules a loader can register.
//
// Native codecs wrap Go compression libraries:
//
//	zstd    github.com/klauspost/compress/zstd  levels 1-22 (0 = default)
//	snappy  github.com/golang/snappy            level ignored
//	lz4     github.com/pierrec/lz4/v4           levels 1-9 (0 = fast)
//	brotli  github.com/andybalholm/brotli       levels 1-11 (0 = default)
//
// Each constructor has the wasmcodecs.Opener signature, so it can be passed
// to loader.Register directly:
//
//	l.Register("zstd", codec.NewZstd, loader.WithLevel(10))
//
// WASM codecs are resolved through a Source and compiled by an
// engine.WazeroEngine:
//
//	src := codec.ChainSource(codec.DirSource("./modules"), codec.BuiltinSource())
//	l.Register("store", codec.WASMOpener(eng, "store", src))
//
// ChainSource consults sources in order and moves to the next one only when
// the module does not exist, so a broken local override is reported instead
// of silently replaced by the builtin.
package codec
