package wasmbin

import "bytes"

// writer provides LEB128 and name encoding for the binary format.
type writer struct {
	buf bytes.Buffer
}

func (w *writer) Bytes() []byte { return w.buf.Bytes() }

func (w *writer) Byte(b byte) { w.buf.WriteByte(b) }

func (w *writer) WriteBytes(data []byte) { w.buf.Write(data) }

// U32 writes an unsigned LEB128 encoded uint32.
func (w *writer) U32(v uint32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.buf.WriteByte(b)
		if v == 0 {
			break
		}
	}
}

// S64 writes a signed LEB128 encoded int64. Also used for i32 immediates.
func (w *writer) S64(v int64) {
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			more = false
		} else {
			b |= 0x80
		}
		w.buf.WriteByte(b)
	}
}

// Name writes a length-prefixed UTF-8 name.
func (w *writer) Name(s string) {
	w.U32(uint32(len(s)))
	w.buf.WriteString(s)
}

// Section writes a section id followed by its size-prefixed payload.
func (w *writer) Section(id byte, payload []byte) {
	w.Byte(id)
	w.U32(uint32(len(payload)))
	w.WriteBytes(payload)
}
