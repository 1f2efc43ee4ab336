package engine

import (
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-codecs/errors"
)

// Codec ABI export names
const (
	ExportMemory     = "memory"
	ExportAlloc      = "alloc"
	ExportCompress   = "compress"
	ExportDecompress = "decompress"
)

type signature struct {
	params  []api.ValueType
	results []api.ValueType
}

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

// codecABI lists the function exports every codec module must provide.
var codecABI = []struct {
	name string
	sig  signature
}{
	{ExportAlloc, signature{params: []api.ValueType{i32}, results: []api.ValueType{i32}}},
	{ExportCompress, signature{params: []api.ValueType{i32, i32, i32}, results: []api.ValueType{i64}}},
	{ExportDecompress, signature{params: []api.ValueType{i32, i32}, results: []api.ValueType{i64}}},
}

func (s signature) String() string {
	return formatSignature(s.params, s.results)
}

func formatSignature(params, results []api.ValueType) string {
	var b strings.Builder
	b.WriteString("func(")
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(api.ValueTypeName(p))
	}
	b.WriteByte(')')
	if len(results) > 0 {
		b.WriteString(" -> ")
		for i, r := range results {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(api.ValueTypeName(r))
		}
	}
	return b.String()
}

func sameTypes(a, b []api.ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// validateCodecABI checks a compiled module's exports against the codec ABI.
func validateCodecABI(name string, compiled wazero.CompiledModule) error {
	var missing []errors.MissingExport

	if _, ok := compiled.ExportedMemories()[ExportMemory]; !ok {
		missing = append(missing, errors.MissingExport{Name: ExportMemory, Want: "memory"})
	}

	funcs := compiled.ExportedFunctions()
	for _, want := range codecABI {
		def, ok := funcs[want.name]
		if !ok {
			missing = append(missing, errors.MissingExport{Name: want.name, Want: want.sig.String()})
			continue
		}
		if !sameTypes(def.ParamTypes(), want.sig.params) || !sameTypes(def.ResultTypes(), want.sig.results) {
			missing = append(missing, errors.MissingExport{
				Name: want.name,
				Want: want.sig.String(),
				Got:  formatSignature(def.ParamTypes(), def.ResultTypes()),
			})
		}
	}

	if len(missing) > 0 {
		return &errors.MissingExportsError{Module: name, Exports: missing}
	}
	return nil
}

// unpackResult splits an ABI result into its output pointer and length.
func unpackResult(v uint64) (ptr, length uint32) {
	return uint32(v >> 32), uint32(v)
}
