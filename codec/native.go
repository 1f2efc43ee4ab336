package codec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	wasmcodecs "github.com/wippyai/wasm-codecs"
)

// Codec names of the native implementations
const (
	Zstd   = "zstd"
	Snappy = "snappy"
	LZ4    = "lz4"
	Brotli = "brotli"
)

// zstdCodec keeps one encoder per requested level. Encoders and the decoder
// are safe for concurrent EncodeAll/DecodeAll.
type zstdCodec struct {
	dec *zstd.Decoder

	mu   sync.Mutex
	encs map[zstd.EncoderLevel]*zstd.Encoder
}

// NewZstd opens a zstd codec.
func NewZstd(_ context.Context) (wasmcodecs.Codec, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &zstdCodec{dec: dec, encs: make(map[zstd.EncoderLevel]*zstd.Encoder)}, nil
}

func (c *zstdCodec) encoder(level int) (*zstd.Encoder, error) {
	el := zstd.SpeedDefault
	if level != 0 {
		if level < 1 || level > 22 {
			return nil, fmt.Errorf("zstd level %d out of range 1-22", level)
		}
		el = zstd.EncoderLevelFromZstd(level)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.encs == nil {
		return nil, fmt.Errorf("zstd codec is closed")
	}
	if enc, ok := c.encs[el]; ok {
		return enc, nil
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(el))
	if err != nil {
		return nil, err
	}
	c.encs[el] = enc
	return enc, nil
}

func (c *zstdCodec) Compress(_ context.Context, src []byte, level int) ([]byte, error) {
	enc, err := c.encoder(level)
	if err != nil {
		return nil, err
	}
	return enc.EncodeAll(src, nil), nil
}

func (c *zstdCodec) Decompress(_ context.Context, src []byte) ([]byte, error) {
	return c.dec.DecodeAll(src, nil)
}

func (c *zstdCodec) Close(_ context.Context) error {
	c.mu.Lock()
	encs := c.encs
	c.encs = nil
	c.mu.Unlock()

	if encs == nil {
		return nil
	}
	var firstErr error
	for _, enc := range encs {
		if err := enc.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.dec.Close()
	return firstErr
}

type snappyCodec struct{}

// NewSnappy opens a snappy (block format) codec.
func NewSnappy(_ context.Context) (wasmcodecs.Codec, error) {
	return snappyCodec{}, nil
}

func (snappyCodec) Compress(_ context.Context, src []byte, _ int) ([]byte, error) {
	return snappy.Encode(nil, src), nil
}

func (snappyCodec) Decompress(_ context.Context, src []byte) ([]byte, error) {
	return snappy.Decode(nil, src)
}

func (snappyCodec) Close(_ context.Context) error { return nil }

var lz4Levels = [...]lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

type lz4Codec struct{}

// NewLZ4 opens an lz4 frame codec.
func NewLZ4(_ context.Context) (wasmcodecs.Codec, error) {
	return lz4Codec{}, nil
}

func (lz4Codec) Compress(_ context.Context, src []byte, level int) ([]byte, error) {
	if level < 0 || level >= len(lz4Levels) {
		return nil, fmt.Errorf("lz4 level %d out of range 0-9", level)
	}

	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if err := w.Apply(lz4.CompressionLevelOption(lz4Levels[level])); err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (lz4Codec) Decompress(_ context.Context, src []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(src)))
}

func (lz4Codec) Close(_ context.Context) error { return nil }

type brotliCodec struct{}

// NewBrotli opens a brotli codec.
func NewBrotli(_ context.Context) (wasmcodecs.Codec, error) {
	return brotliCodec{}, nil
}

func (brotliCodec) Compress(_ context.Context, src []byte, level int) ([]byte, error) {
	if level == 0 {
		level = brotli.DefaultCompression
	}
	if level < brotli.BestSpeed || level > brotli.BestCompression {
		return nil, fmt.Errorf("brotli level %d out of range 1-11", level)
	}

	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, level)
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (brotliCodec) Decompress(_ context.Context, src []byte) ([]byte, error) {
	return io.ReadAll(brotli.NewReader(bytes.NewReader(src)))
}

func (brotliCodec) Close(_ context.Context) error { return nil }

var (
	_ wasmcodecs.Codec = (*zstdCodec)(nil)
	_ wasmcodecs.Codec = snappyCodec{}
	_ wasmcodecs.Codec = lz4Codec{}
	_ wasmcodecs.Codec = brotliCodec{}
)
