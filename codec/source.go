package codec

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-codecs/engine"
)

// Source resolves a WASM codec module binary by name.
type Source interface {
	Load(name string) ([]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(name string) ([]byte, error)

func (f SourceFunc) Load(name string) ([]byte, error) { return f(name) }

type fsSource struct {
	fsys   fs.FS
	origin string
}

// FSSource reads <name>.wasm from fsys. A nil fsys holds no modules.
func FSSource(fsys fs.FS, origin string) Source {
	return &fsSource{fsys: fsys, origin: origin}
}

// DirSource reads <name>.wasm from dir. An empty dir holds no modules.
func DirSource(dir string) Source {
	if dir == "" {
		return FSSource(nil, "local")
	}
	return FSSource(os.DirFS(dir), dir)
}

func (s *fsSource) Load(name string) (data []byte, err error) {
	file := name + ".wasm"
	start := time.Now()

	defer func() {
		if err != nil {
			engine.Logger().Debug("module not read",
				zap.String("file", file),
				zap.String("origin", s.origin),
				zap.Error(err))
			return
		}
		engine.Logger().Debug("module read",
			zap.String("file", file),
			zap.String("origin", s.origin),
			zap.Int("bytes", len(data)),
			zap.Duration("elapsed", time.Since(start)))
	}()

	if s.fsys == nil {
		return nil, &fs.PathError{Op: "open", Path: file, Err: fs.ErrNotExist}
	}
	return fs.ReadFile(s.fsys, file)
}

var builtinWASM = map[string]func() []byte{
	Store: StoreWASM,
}

// BuiltinSource serves the WASM codecs compiled into this package.
func BuiltinSource() Source {
	return SourceFunc(func(name string) ([]byte, error) {
		gen, ok := builtinWASM[name]
		if !ok {
			return nil, &fs.PathError{Op: "open", Path: name + ".wasm", Err: fs.ErrNotExist}
		}
		return gen(), nil
	})
}

// ChainSource tries each source in order. It falls through to the next
// source only when the module does not exist; any other error is returned.
func ChainSource(sources ...Source) Source {
	return SourceFunc(func(name string) ([]byte, error) {
		for _, src := range sources {
			data, err := src.Load(name)
			if err == nil {
				return data, nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
		return nil, fmt.Errorf("module %q: %w", name, fs.ErrNotExist)
	})
}
