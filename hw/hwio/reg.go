package hwio

import (
	"sync/atomic"

	"pica/emu/log"
)

type RWFlags uint8

const (
	ReadWriteFlag RWFlags = 0
	ReadOnlyFlag  RWFlags = (1 << iota)
	WriteOnlyFlag
)

// Bank32 is a flat array of 32-bit registers indexed by register id. Loads
// and stores are atomic so that a register can be polled from a thread other
// than the one executing the hardware side effects.
type Bank32 struct {
	Name  string
	regs  []atomic.Uint32
	Flags RWFlags

	// WriteCb, if set, is called after every successful write with the
	// register id, the previous value and the new value.
	WriteCb func(id uint32, old, val uint32)
}

func NewBank32(name string, count int) *Bank32 {
	return &Bank32{
		Name: name,
		regs: make([]atomic.Uint32, count),
	}
}

// Len returns the number of registers in the bank.
func (b *Bank32) Len() int { return len(b.regs) }

// Valid reports whether id addresses a register of the bank.
func (b *Bank32) Valid(id uint32) bool {
	return id < uint32(len(b.regs))
}

// Peek returns the value of register id. It panics if id is out of range.
func (b *Bank32) Peek(id uint32) uint32 {
	return b.regs[id].Load()
}

// Set stores val into register id without calling WriteCb. It panics if id
// is out of range.
func (b *Bank32) Set(id uint32, val uint32) {
	b.regs[id].Store(val)
}

// Read32 returns the value of register id. Out of range ids are logged and
// read as zero.
func (b *Bank32) Read32(id uint32) uint32 {
	if !b.Valid(id) {
		log.ModHwIo.ErrorZ("invalid Read32 from register bank").
			String("name", b.Name).
			Hex32("id", id).
			End()
		return 0
	}
	if b.Flags&WriteOnlyFlag != 0 {
		log.ModHwIo.ErrorZ("invalid Read32 from writeonly bank").
			String("name", b.Name).
			Hex32("id", id).
			End()
		return 0
	}
	return b.regs[id].Load()
}

// Write32 overwrites register id with val.
func (b *Bank32) Write32(id uint32, val uint32) bool {
	return b.WriteMasked(id, val, 0xF)
}

// WriteMasked overwrites the byte lanes of register id selected by the low 4
// bits of mask. An out of range id is logged and the write is dropped; the
// return value reports whether the write happened.
func (b *Bank32) WriteMasked(id uint32, val uint32, mask uint8) bool {
	if !b.Valid(id) {
		log.ModHwIo.ErrorZ("invalid register write").
			String("name", b.Name).
			Hex32("id", id).
			Hex32("val", val).
			End()
		return false
	}
	if b.Flags&ReadOnlyFlag != 0 {
		log.ModHwIo.ErrorZ("invalid Write32 to readonly bank").
			String("name", b.Name).
			Hex32("id", id).
			End()
		return false
	}

	old := b.regs[id].Load()
	nv := MaskedWrite(old, val, mask)
	b.regs[id].Store(nv)
	if b.WriteCb != nil {
		b.WriteCb(id, old, nv)
	}
	return true
}

// Reset clears all registers.
func (b *Bank32) Reset() {
	for i := range b.regs {
		b.regs[i].Store(0)
	}
}

// Snapshot returns a copy of all register values.
func (b *Bank32) Snapshot() []uint32 {
	out := make([]uint32, len(b.regs))
	for i := range b.regs {
		out[i] = b.regs[i].Load()
	}
	return out
}
