package codec

import (
	"sort"

	wasmcodecs "github.com/wippyai/wasm-codecs"
)

var builtins = map[string]wasmcodecs.Opener{
	Zstd:   NewZstd,
	Snappy: NewSnappy,
	LZ4:    NewLZ4,
	Brotli: NewBrotli,
}

// Builtin returns the opener of a native codec by name.
func Builtin(name string) (wasmcodecs.Opener, bool) {
	open, ok := builtins[name]
	return open, ok
}

// BuiltinNames returns the native codec names in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
