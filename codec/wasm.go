package codec

import (
	"context"

	wasmcodecs "github.com/wippyai/wasm-codecs"
	"github.com/wippyai/wasm-codecs/engine"
	"github.com/wippyai/wasm-codecs/errors"
	"github.com/wippyai/wasm-codecs/internal/wasmbin"
)

// Store is the name of the builtin identity WASM codec.
const Store = "store"

// StoreWASM returns the binary of the store codec: a WASM module whose
// compress and decompress return their input unchanged.
func StoreWASM() []byte {
	return wasmbin.CodecModule(wasmbin.CodecSpec{
		Compress:   wasmbin.Passthrough(),
		Decompress: wasmbin.Passthrough(),
	})
}

// WASMOpener returns an opener that reads module name from src and
// compiles it on eng.
func WASMOpener(eng *engine.WazeroEngine, name string, src Source) wasmcodecs.Opener {
	return func(ctx context.Context) (wasmcodecs.Codec, error) {
		bin, err := src.Load(name)
		if err != nil {
			return nil, errors.LoadFailure(name, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := eng.LoadCodec(ctx, name, bin)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}
