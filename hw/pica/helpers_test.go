package pica

import (
	"encoding/binary"
	"math"
	"testing"

	"pica/hw/gpu"
	"pica/hw/hwio"
)

const (
	testMem     = 0x18000000
	testMemSize = 0x10000
)

type fakeRasterizer struct {
	triangles   [][3]OutputVertex
	draws       int
	notified    []uint32
	accelerate  bool
	accelerated []bool
}

func (r *fakeRasterizer) AddTriangle(v0, v1, v2 *OutputVertex) {
	r.triangles = append(r.triangles, [3]OutputVertex{*v0, *v1, *v2})
}

func (r *fakeRasterizer) DrawTriangles() { r.draws++ }

func (r *fakeRasterizer) AccelerateDrawBatch(indexed bool) bool {
	r.accelerated = append(r.accelerated, indexed)
	return r.accelerate
}

func (r *fakeRasterizer) NotifyPicaRegisterChanged(id uint32) {
	r.notified = append(r.notified, id)
}

// countingEngine passes input through and counts invocations.
type countingEngine struct {
	PassthroughEngine
	batches []uint32
	runs    map[string]int
}

func (e *countingEngine) SetupBatch(setup *ShaderSetup, entry uint32) {
	e.batches = append(e.batches, entry)
}

func (e *countingEngine) Run(setup *ShaderSetup, state *UnitState) {
	if e.runs == nil {
		e.runs = make(map[string]int)
	}
	e.runs[setup.Name]++
	e.PassthroughEngine.Run(setup, state)
}

type recordedIRQ []gpu.InterruptID

func (r *recordedIRQ) SignalInterrupt(id gpu.InterruptID) { *r = append(*r, id) }

type testProcessor struct {
	t testing.TB
	*CommandProcessor

	phys   *hwio.Table
	mem    *hwio.Mem
	rast   fakeRasterizer
	engine countingEngine
	irq    recordedIRQ
}

func newTestProcessor(tb testing.TB) *testProcessor {
	tp := &testProcessor{t: tb}
	tp.phys = hwio.NewTable("phys")
	tp.mem = hwio.NewMem("vram", testMemSize, hwio.MemFlagReadWrite)
	tp.phys.MapMem(testMem, tp.mem)
	tp.CommandProcessor = NewCommandProcessor(tp.phys, &tp.rast, &tp.irq, &tp.engine)
	return tp
}

func (tp *testProcessor) write(id, val uint32) {
	tp.WriteRegister(id, val, 0xF)
}

func (tp *testProcessor) putWords(addr uint32, words ...uint32) {
	tp.t.Helper()
	off := addr - testMem
	for i, w := range words {
		binary.LittleEndian.PutUint32(tp.mem.Data[off+uint32(i)*4:], w)
	}
}

func (tp *testProcessor) putFloats(addr uint32, fs ...float32) {
	tp.t.Helper()
	for i, f := range fs {
		tp.putWords(addr+uint32(i)*4, math.Float32bits(f))
	}
}

// setupPositionOnly configures a single float attribute of 3 elements read
// from a 12-byte stride array at testMem, sent to the rasterizer as the
// position.
func (tp *testProcessor) setupPositionOnly() {
	tp.write(RegVertexAttribBase, testMem>>3)
	tp.write(RegVertexAttribFormatLow, 2<<2|uint32(FormatFloat))
	tp.write(RegVertexAttribFormatHigh, 0)
	tp.write(RegAttribLoaders, 0)
	tp.write(RegAttribLoaders+1, 0)
	tp.write(RegAttribLoaders+2, 1<<28|12<<16)

	tp.write(RegVSBase+shOutputMask, 1)
	tp.write(RegVSOutputTotal, 1)
	tp.write(RegVSOutputAttributes, 0x03020100)
}

// float24Raw encodes the normal or zero f as a raw float24.
func float24Raw(f float32) uint32 {
	b := math.Float32bits(f)
	if b&0x7FFFFFFF == 0 {
		return (b >> 8) & 0x800000
	}
	sign := b >> 31
	exp := (b>>23)&0xFF - f24Bias
	mant := (b & 0x7FFFFF) >> 7
	return sign<<23 | exp<<16 | mant
}

// pack24 packs 4 float24 into 3 words, w first.
func pack24(x, y, z, w float32) [3]uint32 {
	rx, ry, rz, rw := float24Raw(x), float24Raw(y), float24Raw(z), float24Raw(w)
	return [3]uint32{
		rw<<8 | rz>>16,
		(rz&0xFFFF)<<16 | ry>>8,
		(ry&0xFF)<<24 | rx,
	}
}

func pos(x, y, z, w float32) OutputVertex {
	var v OutputVertex
	v[0], v[1], v[2], v[3] = Float24(x), Float24(y), Float24(z), Float24(w)
	return v
}
