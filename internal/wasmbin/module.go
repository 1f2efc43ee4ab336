package wasmbin

import "slices"

// ValType is a WebAssembly number type.
type ValType byte

const (
	I32 ValType = 0x7f
	I64 ValType = 0x7e
)

const (
	magic   = "\x00asm"
	version = "\x01\x00\x00\x00"

	sectionType     = 1
	sectionFunction = 3
	sectionMemory   = 5
	sectionGlobal   = 6
	sectionExport   = 7
	sectionCode     = 10

	exportFunc   = 0x00
	exportMemory = 0x02

	funcTypeByte = 0x60
)

type funcType struct {
	params  []ValType
	results []ValType
}

type function struct {
	typeIdx uint32
	locals  []ValType
	body    []byte
}

type global struct {
	init int32
}

type export struct {
	name string
	kind byte
	idx  uint32
}

// Module is a core module under construction.
type Module struct {
	types     []funcType
	funcs     []function
	globals   []global
	exports   []export
	memPages  uint32
	hasMemory bool
}

func NewModule() *Module {
	return &Module{}
}

// Memory declares the module's linear memory with a minimum page count and
// exports it as "memory".
func (m *Module) Memory(minPages uint32) *Module {
	m.memPages = minPages
	m.hasMemory = true
	m.exports = append(m.exports, export{name: "memory", kind: exportMemory})
	return m
}

// GlobalI32 declares a mutable i32 global and returns its index.
func (m *Module) GlobalI32(init int32) uint32 {
	m.globals = append(m.globals, global{init: init})
	return uint32(len(m.globals) - 1)
}

// Func adds a function and returns its index. An empty name leaves it unexported.
func (m *Module) Func(name string, params, results, locals []ValType, code *Code) uint32 {
	idx := uint32(len(m.funcs))
	var body []byte
	if code != nil {
		body = slices.Clone(code.Bytes())
	}
	m.funcs = append(m.funcs, function{
		typeIdx: m.typeIndex(params, results),
		locals:  locals,
		body:    body,
	})
	if name != "" {
		m.exports = append(m.exports, export{name: name, kind: exportFunc, idx: idx})
	}
	return idx
}

func (m *Module) typeIndex(params, results []ValType) uint32 {
	for i, t := range m.types {
		if slices.Equal(t.params, params) && slices.Equal(t.results, results) {
			return uint32(i)
		}
	}
	m.types = append(m.types, funcType{params: params, results: results})
	return uint32(len(m.types) - 1)
}

// Encode encodes the module to WebAssembly binary format
func (m *Module) Encode() []byte {
	var w writer
	w.WriteBytes([]byte(magic))
	w.WriteBytes([]byte(version))

	if len(m.types) > 0 {
		var sec writer
		sec.U32(uint32(len(m.types)))
		for _, t := range m.types {
			sec.Byte(funcTypeByte)
			writeValTypes(&sec, t.params)
			writeValTypes(&sec, t.results)
		}
		w.Section(sectionType, sec.Bytes())
	}

	if len(m.funcs) > 0 {
		var sec writer
		sec.U32(uint32(len(m.funcs)))
		for _, f := range m.funcs {
			sec.U32(f.typeIdx)
		}
		w.Section(sectionFunction, sec.Bytes())
	}

	if m.hasMemory {
		var sec writer
		sec.U32(1)
		sec.Byte(0x00) // min only
		sec.U32(m.memPages)
		w.Section(sectionMemory, sec.Bytes())
	}

	if len(m.globals) > 0 {
		var sec writer
		sec.U32(uint32(len(m.globals)))
		for _, g := range m.globals {
			sec.Byte(byte(I32))
			sec.Byte(0x01) // mutable
			sec.Byte(0x41) // i32.const
			sec.S64(int64(g.init))
			sec.Byte(0x0b)
		}
		w.Section(sectionGlobal, sec.Bytes())
	}

	if len(m.exports) > 0 {
		var sec writer
		sec.U32(uint32(len(m.exports)))
		for _, e := range m.exports {
			sec.Name(e.name)
			sec.Byte(e.kind)
			sec.U32(e.idx)
		}
		w.Section(sectionExport, sec.Bytes())
	}

	if len(m.funcs) > 0 {
		var sec writer
		sec.U32(uint32(len(m.funcs)))
		for _, f := range m.funcs {
			var body writer
			writeLocals(&body, f.locals)
			body.WriteBytes(f.body)
			body.Byte(0x0b)
			sec.U32(uint32(len(body.Bytes())))
			sec.WriteBytes(body.Bytes())
		}
		w.Section(sectionCode, sec.Bytes())
	}

	return w.Bytes()
}

func writeValTypes(w *writer, types []ValType) {
	w.U32(uint32(len(types)))
	for _, t := range types {
		w.Byte(byte(t))
	}
}

// writeLocals run-length encodes consecutive locals of the same type.
func writeLocals(w *writer, locals []ValType) {
	type run struct {
		n uint32
		t ValType
	}
	var runs []run
	for _, t := range locals {
		if len(runs) > 0 && runs[len(runs)-1].t == t {
			runs[len(runs)-1].n++
			continue
		}
		runs = append(runs, run{n: 1, t: t})
	}
	w.U32(uint32(len(runs)))
	for _, r := range runs {
		w.U32(r.n)
		w.Byte(byte(r.t))
	}
}
