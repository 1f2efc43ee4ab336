package engine

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	wasmcodecs "github.com/wippyai/wasm-codecs"
	"github.com/wippyai/wasm-codecs/errors"
)

// WazeroEngine compiles and runs WASM codec modules
type WazeroEngine struct {
	runtime      wazero.Runtime
	wasiInitMu   sync.Mutex
	wasiInitDone atomic.Bool
}

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32

	// EnableWASI instantiates wasi_snapshot_preview1 so modules importing it link.
	EnableWASI bool
}

// NewWazeroEngine creates a new wazero-based engine
func NewWazeroEngine(ctx context.Context) (*WazeroEngine, error) {
	return NewWazeroEngineWithConfig(ctx, nil)
}

// NewWazeroEngineWithConfig creates a new engine with custom configuration
func NewWazeroEngineWithConfig(ctx context.Context, cfg *Config) (*WazeroEngine, error) {
	// Guest calls are interrupted when their context is cancelled.
	runtimeCfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)

	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	e := &WazeroEngine{runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg)}

	if cfg != nil && cfg.EnableWASI {
		if err := e.InitWASI(ctx); err != nil {
			e.runtime.Close(ctx)
			return nil, err
		}
	}
	return e, nil
}

// Close releases the runtime and every codec compiled by it.
func (e *WazeroEngine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// LoadCodec compiles wasmBytes and validates it against the codec ABI.
func (e *WazeroEngine) LoadCodec(ctx context.Context, name string, wasmBytes []byte) (*WazeroCodec, error) {
	start := time.Now()

	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.LoadFailure(name, fmt.Errorf("compile failed: %w", err))
	}

	if err := validateCodecABI(name, compiled); err != nil {
		compiled.Close(ctx)
		return nil, err
	}

	Logger().Debug("codec module compiled",
		zap.String("module", name),
		zap.Int("bytes", len(wasmBytes)),
		zap.Duration("elapsed", time.Since(start)))

	return &WazeroCodec{
		name:     name,
		runtime:  e.runtime,
		compiled: compiled,
	}, nil
}

// WazeroCodec is a compiled codec module. Every call runs in a fresh
// anonymous instance, so calls do not share guest state and guest memory is
// released when the call returns.
type WazeroCodec struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	name     string
	closed   atomic.Bool
}

// Name returns the module name the codec was loaded under.
func (c *WazeroCodec) Name() string {
	return c.name
}

// Compress runs the module's compress export. Level 0 lets the guest pick.
func (c *WazeroCodec) Compress(ctx context.Context, src []byte, level int) ([]byte, error) {
	if level < math.MinInt32 || level > math.MaxInt32 {
		return nil, errors.InvalidInput(errors.PhaseCompress, fmt.Sprintf("level %d out of i32 range", level))
	}
	return c.call(ctx, ExportCompress, src, api.EncodeI32(int32(level)))
}

// Decompress runs the module's decompress export.
func (c *WazeroCodec) Decompress(ctx context.Context, src []byte) ([]byte, error) {
	return c.call(ctx, ExportDecompress, src)
}

// Close releases the compiled module. Calls after Close fail.
func (c *WazeroCodec) Close(ctx context.Context) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.compiled.Close(ctx)
}

func (c *WazeroCodec) call(ctx context.Context, fn string, src []byte, extra ...uint64) ([]byte, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("codec %s is closed", c.name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if uint64(len(src)) > math.MaxUint32 {
		return nil, fmt.Errorf("input of %d bytes exceeds 32-bit address space", len(src))
	}

	mod, err := c.runtime.InstantiateModule(ctx, c.compiled,
		wazero.NewModuleConfig().WithName("").WithStartFunctions())
	if err != nil {
		return nil, fmt.Errorf("instantiate: %w", err)
	}
	defer mod.Close(ctx)

	mem := &WazeroMemory{mem: mod.ExportedMemory(ExportMemory)}

	alloc := &wazeroAllocator{fn: mod.ExportedFunction(ExportAlloc)}
	ptr, err := alloc.Alloc(ctx, uint32(len(src)))
	if err != nil {
		return nil, fmt.Errorf("alloc %d bytes: %w", len(src), err)
	}
	if err := mem.Write(ptr, src); err != nil {
		return nil, err
	}

	params := make([]uint64, 0, 2+len(extra))
	params = append(params, uint64(ptr), uint64(len(src)))
	params = append(params, extra...)

	results, err := mod.ExportedFunction(fn).Call(ctx, params...)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", fn, err)
	}

	outPtr, outLen := unpackResult(results[0])
	out, err := mem.Read(outPtr, outLen)
	if err != nil {
		e := errors.InvalidData(errors.PhaseRuntime, c.name, fn+" result")
		e.Cause = err
		return nil, e
	}

	Logger().Debug("codec call",
		zap.String("module", c.name),
		zap.String("func", fn),
		zap.Int("in", len(src)),
		zap.Uint32("out", outLen),
		zap.Uint32("memory", mem.Size()))

	// The view aliases guest memory, which is released on return.
	return bytes.Clone(out), nil
}

type wazeroAllocator struct {
	fn api.Function
}

func (a *wazeroAllocator) Alloc(ctx context.Context, size uint32) (uint32, error) {
	if a.fn == nil {
		return 0, fmt.Errorf("no allocator available")
	}
	res, err := a.fn.Call(ctx, uint64(size))
	if err != nil {
		return 0, err
	}
	return uint32(res[0]), nil
}

// WazeroMemory wraps wazero memory with bounds-checked access
type WazeroMemory struct {
	mem api.Memory
}

func (m *WazeroMemory) Read(offset uint32, length uint32) ([]byte, error) {
	if m.mem == nil {
		return nil, fmt.Errorf("module has no memory")
	}
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

func (m *WazeroMemory) Write(offset uint32, data []byte) error {
	if m.mem == nil {
		return fmt.Errorf("module has no memory")
	}
	if !m.mem.Write(offset, data) {
		return fmt.Errorf("write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

func (m *WazeroMemory) Size() uint32 {
	if m.mem == nil {
		return 0
	}
	return m.mem.Size()
}

// Compile-time check that WazeroCodec implements wasmcodecs.Codec
var _ wasmcodecs.Codec = (*WazeroCodec)(nil)
