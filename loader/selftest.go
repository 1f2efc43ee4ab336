package loader

import (
	"bytes"
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wippyai/wasm-codecs/errors"
)

// SelfTestResult describes one compress/decompress round trip.
type SelfTestResult struct {
	Module         string
	Original       []byte
	Decompressed   []byte
	Compressed     int // compressed size in bytes
	CompressTime   time.Duration
	DecompressTime time.Duration
}

// DefaultSample returns the self-test payload for a module:
// "Hello ZSTD!" for zstd, "Hello Snappy!" for snappy and "Hello <Name>!"
// otherwise.
func DefaultSample(name string) []byte {
	switch name {
	case "zstd":
		return []byte("Hello ZSTD!")
	case "snappy":
		return []byte("Hello Snappy!")
	}
	return []byte("Hello " + cases.Title(language.English).String(name) + "!")
}

// SelfTest compresses sample with the module's configured level, decompresses
// the result and checks it matches. A nil sample uses DefaultSample.
func (l *Loader) SelfTest(ctx context.Context, name string, sample []byte) (SelfTestResult, error) {
	if sample == nil {
		sample = DefaultSample(name)
	}
	res := SelfTestResult{Module: name, Original: sample}

	start := time.Now()
	packed, err := l.Compress(ctx, name, sample)
	res.CompressTime = time.Since(start)
	if err != nil {
		return res, err
	}
	res.Compressed = len(packed)

	start = time.Now()
	out, err := l.Decompress(ctx, name, packed)
	res.DecompressTime = time.Since(start)
	if err != nil {
		return res, err
	}
	res.Decompressed = out

	if !bytes.Equal(out, sample) {
		return res, errors.New(errors.PhaseDecompress, errors.KindOperationFailure).
			Module(name).
			Value(out).
			Detail("round trip mismatch: got %d bytes, want %d", len(out), len(sample)).
			Build()
	}

	l.log.Info("self-test passed",
		zap.String("module", name),
		zap.Int("original", len(sample)),
		zap.Int("compressed", res.Compressed))
	return res, nil
}
