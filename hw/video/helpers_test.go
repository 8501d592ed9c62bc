package video

import (
	"encoding/binary"
	"sync"
	"testing"

	"pica/hw/gpu"
	"pica/hw/hwio"
	"pica/hw/pica"
	"pica/hw/timing"
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

// recordingRenderer is a NullRenderer that also records region maintenance,
// safe to read once the backend is drained.
type recordingRenderer struct {
	NullRenderer

	mu  sync.Mutex
	ops []regionOp
}

func (r *recordingRenderer) record(op string, addr uint32, size uint64) {
	r.mu.Lock()
	r.ops = append(r.ops, regionOp{op, addr, size})
	r.mu.Unlock()
}

func (r *recordingRenderer) FlushRegion(addr uint32, size uint64) {
	r.record("flush", addr, size)
}

func (r *recordingRenderer) InvalidateRegion(addr uint32, size uint64) {
	r.record("invalidate", addr, size)
}

func (r *recordingRenderer) FlushAndInvalidateRegion(addr uint32, size uint64) {
	r.record("flush+invalidate", addr, size)
}

func (r *recordingRenderer) regionOps() []regionOp {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]regionOp(nil), r.ops...)
}

type recordedIRQ struct {
	mu  sync.Mutex
	ids []gpu.InterruptID
}

func (r *recordedIRQ) SignalInterrupt(id gpu.InterruptID) {
	r.mu.Lock()
	r.ids = append(r.ids, id)
	r.mu.Unlock()
}

func (r *recordedIRQ) get() []gpu.InterruptID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]gpu.InterruptID(nil), r.ids...)
}

type testCore struct {
	t testing.TB
	*Core

	tm   *timing.Timing
	vram *hwio.Mem
	rend recordingRenderer
	irq  recordedIRQ
}

func newTestCore(tb testing.TB, opts Options) *testCore {
	tc := &testCore{t: tb, tm: timing.New()}
	bus := hwio.NewTable("phys")
	tc.vram = hwio.NewMem("vram", testVRAMSize, hwio.MemFlagReadWrite)
	bus.MapMem(testVRAM, tc.vram)
	tc.Core = NewCore(opts, bus, &tc.rend, &tc.irq, pica.PassthroughEngine{}, tc.tm)
	tb.Cleanup(func() {
		if err := tc.Close(); err != nil {
			tb.Errorf("close: %v", err)
		}
	})
	return tc
}

// writeReg writes a GPU register by word index through the MMIO path.
func (tc *testCore) writeReg(index, val uint32) {
	tc.Write(index*4, 4, uint64(val))
}

func (tc *testCore) word(addr uint32) uint32 {
	return binary.LittleEndian.Uint32(tc.vram.Data[addr-testVRAM:])
}

func (tc *testCore) putWords(addr uint32, words ...uint32) {
	for i, w := range words {
		binary.LittleEndian.PutUint32(tc.vram.Data[addr-testVRAM+uint32(i)*4:], w)
	}
}

// startFill starts memory fill unit 0 through its registers.
func (tc *testCore) startFill(start, end, value uint32) {
	tc.writeReg(gpu.RegMemoryFill0, start/8)
	tc.writeReg(gpu.RegMemoryFill0+1, end/8)
	tc.writeReg(gpu.RegMemoryFill0+2, value)
	tc.writeReg(gpu.RegMemoryFill0+3, 1<<9|1)
}

func asyncPolicies(mode TimingMode) Policies {
	return Policies{mode, mode, mode, mode, mode, mode, mode}
}
