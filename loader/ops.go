package loader

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	wasmcodecs "github.com/wippyai/wasm-codecs"
	"github.com/wippyai/wasm-codecs/errors"
)

// Compress compresses data with the module's configured level.
func (l *Loader) Compress(ctx context.Context, name string, data []byte) ([]byte, error) {
	return l.do(ctx, errors.PhaseCompress, name, data, func(c wasmcodecs.Codec, level int) ([]byte, error) {
		return c.Compress(ctx, data, level)
	})
}

// CompressLevel compresses data at an explicit level.
func (l *Loader) CompressLevel(ctx context.Context, name string, data []byte, level int) ([]byte, error) {
	return l.do(ctx, errors.PhaseCompress, name, data, func(c wasmcodecs.Codec, _ int) ([]byte, error) {
		return c.Compress(ctx, data, level)
	})
}

// Decompress reverses Compress.
func (l *Loader) Decompress(ctx context.Context, name string, data []byte) ([]byte, error) {
	return l.do(ctx, errors.PhaseDecompress, name, data, func(c wasmcodecs.Codec, _ int) ([]byte, error) {
		return c.Decompress(ctx, data)
	})
}

// lease returns the module's instance with a lease held, or a
// module_not_ready error. It changes no state.
func (l *Loader) lease(phase errors.Phase, name string) (*instance, int, error) {
	l.mu.Lock()
	h, ok := l.handles[name]
	if !ok {
		l.mu.Unlock()
		return nil, 0, errors.NotFound(phase, "module", name)
	}
	state, inst, level := h.state, h.inst, h.spec.Level
	l.mu.Unlock()

	if state != Ready {
		return nil, 0, errors.NotReady(phase, name, state)
	}
	// Lost a race with a reload that closed the instance.
	if !inst.acquire() {
		return nil, 0, errors.NotReady(phase, name, Unloaded)
	}
	return inst, level, nil
}

func (l *Loader) do(ctx context.Context, phase errors.Phase, name string, in []byte,
	fn func(c wasmcodecs.Codec, level int) ([]byte, error)) (out []byte, err error) {
	inst, level, err := l.lease(phase, name)
	if err != nil {
		return nil, err
	}
	defer inst.release()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = errors.OperationFailure(phase, name, fmt.Errorf("codec panicked: %v", r))
		}
		l.metrics.observeOp(name, string(phase), len(in), len(out), err)
		l.log.Debug("codec operation",
			zap.String("module", name),
			zap.String("op", string(phase)),
			zap.Int("in", len(in)),
			zap.Int("out", len(out)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
	}()

	if err := ctx.Err(); err != nil {
		return nil, errors.OperationFailure(phase, name, err)
	}

	out, err = fn(inst.codec, level)
	if err != nil {
		return nil, errors.OperationFailure(phase, name, err)
	}
	return out, nil
}
