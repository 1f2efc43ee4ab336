package wasmcodecs

import "context"

// Codec is a loaded compression module.
// Level 0 selects the codec's default level.
type Codec interface {
	Compress(ctx context.Context, src []byte, level int) ([]byte, error)
	Decompress(ctx context.Context, src []byte) ([]byte, error)
	Close(ctx context.Context) error
}

// Opener loads a codec module. It may block; callers run it on its own
// goroutine and should honor ctx cancellation.
type Opener func(ctx context.Context) (Codec, error)
