package loader

import (
	"context"
	"sync"

	wasmcodecs "github.com/wippyai/wasm-codecs"
)

// instance guards a loaded codec. Operations hold a read lease for the
// duration of a call; close takes the write lock and so waits for them.
type instance struct {
	codec wasmcodecs.Codec

	mu     sync.RWMutex
	closed bool
}

func newInstance(c wasmcodecs.Codec) *instance {
	return &instance{codec: c}
}

// acquire takes a lease. It reports false once the instance is closed.
func (i *instance) acquire() bool {
	i.mu.RLock()
	if i.closed {
		i.mu.RUnlock()
		return false
	}
	return true
}

func (i *instance) release() {
	i.mu.RUnlock()
}

func (i *instance) close(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return nil
	}
	i.closed = true
	return i.codec.Close(ctx)
}
