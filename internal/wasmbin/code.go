package wasmbin

// Code accumulates an instruction sequence. The function-terminating end
// opcode is appended by Module.Encode.
type Code struct {
	w writer
}

func (c *Code) op(b ...byte) *Code {
	c.w.WriteBytes(b)
	return c
}

func (c *Code) idx(op byte, i uint32) *Code {
	c.w.Byte(op)
	c.w.U32(i)
	return c
}

// Bytes returns the encoded instructions.
func (c *Code) Bytes() []byte { return c.w.Bytes() }

func (c *Code) Unreachable() *Code { return c.op(0x00) }
func (c *Code) Drop() *Code        { return c.op(0x1a) }

// If opens a block with an empty result type.
func (c *Code) If() *Code  { return c.op(0x04, 0x40) }
func (c *Code) End() *Code { return c.op(0x0b) }

func (c *Code) LocalGet(i uint32) *Code  { return c.idx(0x20, i) }
func (c *Code) LocalSet(i uint32) *Code  { return c.idx(0x21, i) }
func (c *Code) LocalTee(i uint32) *Code  { return c.idx(0x22, i) }
func (c *Code) GlobalGet(i uint32) *Code { return c.idx(0x23, i) }
func (c *Code) GlobalSet(i uint32) *Code { return c.idx(0x24, i) }

func (c *Code) MemorySize() *Code { return c.op(0x3f, 0x00) }
func (c *Code) MemoryGrow() *Code { return c.op(0x40, 0x00) }

func (c *Code) I32Const(v int32) *Code {
	c.w.Byte(0x41)
	c.w.S64(int64(v))
	return c
}

func (c *Code) I64Const(v int64) *Code {
	c.w.Byte(0x42)
	c.w.S64(v)
	return c
}

func (c *Code) I32GtS() *Code        { return c.op(0x4a) }
func (c *Code) I32Add() *Code        { return c.op(0x6a) }
func (c *Code) I32Sub() *Code        { return c.op(0x6b) }
func (c *Code) I32ShrU() *Code       { return c.op(0x76) }
func (c *Code) I64Or() *Code         { return c.op(0x84) }
func (c *Code) I64Shl() *Code        { return c.op(0x86) }
func (c *Code) I64ExtendI32U() *Code { return c.op(0xad) }
