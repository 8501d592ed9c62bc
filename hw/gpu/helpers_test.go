package gpu

import (
	"testing"

	"pica/hw/hwio"
)

const (
	testVRAM     = 0x18000000
	testVRAMSize = 0x600000
)

type regionOp struct {
	Op   string
	Addr uint32
	Size uint64
}

// fakeCache records region cache maintenance.
type fakeCache struct {
	ops []regionOp
}

func (c *fakeCache) FlushRegion(addr uint32, size uint64) {
	c.ops = append(c.ops, regionOp{"flush", addr, size})
}

func (c *fakeCache) InvalidateRegion(addr uint32, size uint64) {
	c.ops = append(c.ops, regionOp{"invalidate", addr, size})
}

func (c *fakeCache) FlushAndInvalidateRegion(addr uint32, size uint64) {
	c.ops = append(c.ops, regionOp{"flush+invalidate", addr, size})
}

// fakeAccel accepts or refuses every operation.
type fakeAccel struct {
	accept bool
	calls  int
}

func (a *fakeAccel) AccelerateFill(MemoryFillConfig) bool {
	a.calls++
	return a.accept
}

func (a *fakeAccel) AccelerateDisplayTransfer(DisplayTransferConfig) bool {
	a.calls++
	return a.accept
}

func (a *fakeAccel) AccelerateTextureCopy(DisplayTransferConfig) bool {
	a.calls++
	return a.accept
}

type testEngine struct {
	t testing.TB
	*Engine

	bus   *hwio.Table
	vram  *hwio.Mem
	cache fakeCache
	accel fakeAccel
}

func newTestEngine(tb testing.TB) *testEngine {
	te := &testEngine{t: tb, bus: hwio.NewTable("phys")}
	te.vram = hwio.NewMem("vram", testVRAMSize, hwio.MemFlagReadWrite)
	te.bus.MapMem(testVRAM, te.vram)
	te.Engine = NewEngine(te.bus, &te.accel, &te.cache)
	return te
}

func (te *testEngine) mem(addr, size uint32) []byte {
	te.t.Helper()
	buf := te.bus.Slice(addr, size)
	if buf == nil {
		te.t.Fatalf("invalid test range %08X+%X", addr, size)
	}
	return buf
}

func (te *testEngine) untouched(addr, size uint32) {
	te.t.Helper()
	for i, b := range te.mem(addr, size) {
		if b != 0 {
			te.t.Fatalf("byte at %08X = %02X, want untouched", addr+uint32(i), b)
		}
	}
}

type recordedIRQ []InterruptID

func (r *recordedIRQ) SignalInterrupt(id InterruptID) { *r = append(*r, id) }
