// Package tracer records the register writes and memory accesses of the
// video core as a stream of JSON lines, one event per line.
package tracer

import (
	"io"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"pica/hw/gpu"
)

// Event kinds.
const (
	KindPica   = "pica"
	KindMMIO   = "mmio"
	KindMemory = "mem"
)

// Tracer implements both pica.Recorder and gpu.MMIORecorder. MMIO writes
// arrive on the submitting goroutine while PICA writes may arrive on the gpu
// worker, so events are serialized under a mutex.
type Tracer struct {
	// MaxData caps the number of bytes dumped per memory access, 0 means
	// only the address and size are recorded.
	MaxData int

	mu  sync.Mutex
	w   io.Writer
	e   jx.Encoder
	seq uint64
	err error
}

func New(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

func (t *Tracer) PicaRegisterWritten(id, val uint32, mask uint8) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.begin(KindPica)
	t.e.FieldStart("id")
	t.e.UInt32(id)
	t.e.FieldStart("reg")
	t.e.Str(picaLabel(id))
	t.e.FieldStart("value")
	t.e.Str(hex32(val))
	t.e.FieldStart("mask")
	t.e.UInt8(mask)
	t.end()
}

func (t *Tracer) RegisterWritten(paddr, val uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.begin(KindMMIO)
	t.e.FieldStart("addr")
	t.e.Str(hex32(paddr))
	t.e.FieldStart("reg")
	t.e.Str(mmioLabel(paddr))
	t.e.FieldStart("value")
	t.e.Str(hex32(val))
	t.end()
}

func (t *Tracer) MemoryAccessed(paddr uint32, data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.begin(KindMemory)
	t.e.FieldStart("addr")
	t.e.Str(hex32(paddr))
	t.e.FieldStart("size")
	t.e.Int(len(data))
	if t.MaxData > 0 && len(data) > 0 {
		t.e.FieldStart("data")
		t.e.Base64(data[:min(len(data), t.MaxData)])
	}
	t.end()
}

func (t *Tracer) begin(kind string) {
	t.seq++
	t.e.Reset()
	t.e.ObjStart()
	t.e.FieldStart("seq")
	t.e.UInt64(t.seq)
	t.e.FieldStart("kind")
	t.e.Str(kind)
}

func (t *Tracer) end() {
	t.e.ObjEnd()
	if t.err != nil {
		return
	}
	if _, err := t.w.Write(append(t.e.Bytes(), '\n')); err != nil {
		t.err = errors.Wrapf(err, "trace event %d", t.seq)
	}
}

// Events returns the number of events recorded so far.
func (t *Tracer) Events() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq
}

// Err returns the first write error. Events are not written after an error.
func (t *Tracer) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func hexEncode(dst []byte, v byte) {
	const hextable = "0123456789abcdef"
	dst[0] = hextable[v>>4]
	dst[1] = hextable[v&0x0f]
}

func hex32(v uint32) string {
	var buf [10]byte
	buf[0], buf[1] = '0', 'x'
	hexEncode(buf[2:], byte(v>>24))
	hexEncode(buf[4:], byte(v>>16))
	hexEncode(buf[6:], byte(v>>8))
	hexEncode(buf[8:], byte(v))
	return string(buf[:])
}

var picaLabels = map[uint32]string{
	0x010: "trigger_irq",
	0x04F: "vs_output_total",
	0x0AF: "proctex_lut_config",
	0x0E6: "fog_lut_offset",
	0x1C5: "lighting_lut_config",
	0x200: "attrib_base",
	0x227: "index_array",
	0x228: "num_vertices",
	0x229: "geometry_config",
	0x22A: "vertex_offset",
	0x22E: "draw_arrays",
	0x22F: "draw_elements",
	0x232: "default_attrib_index",
	0x238: "cmdbuf_size0",
	0x239: "cmdbuf_size1",
	0x23A: "cmdbuf_addr0",
	0x23B: "cmdbuf_addr1",
	0x23C: "cmdbuf_jump0",
	0x23D: "cmdbuf_jump1",
	0x242: "max_input_attrib",
	0x244: "gs_exclusive",
	0x245: "gpu_mode",
	0x252: "gs_config",
	0x25E: "topology",
	0x25F: "restart_primitive",
	0x280: "gs_bool_uniforms",
	0x290: "gs_float_uniform_setup",
	0x29B: "gs_program_offset",
	0x2A5: "gs_swizzle_offset",
	0x2B0: "vs_bool_uniforms",
	0x2C0: "vs_float_uniform_setup",
	0x2CB: "vs_program_offset",
	0x2D5: "vs_swizzle_offset",
}

var mmioLabels = map[uint32]string{
	gpu.RegMemoryFill0:         "memory_fill0",
	gpu.RegMemoryFill0 + 3:     "memory_fill0_control",
	gpu.RegMemoryFill1:         "memory_fill1",
	gpu.RegMemoryFill1 + 3:     "memory_fill1_control",
	gpu.RegFramebufferTop:      "framebuffer_top",
	gpu.RegFramebufferSub:      "framebuffer_sub",
	gpu.RegDisplayTransfer:     "display_transfer",
	gpu.RegDisplayTransfer + 6: "display_transfer_trigger",
	gpu.RegCommandList:         "command_list_size",
	gpu.RegCommandList + 2:     "command_list_addr",
	gpu.RegCommandList + 4:     "command_list_trigger",
}

func picaLabel(id uint32) string {
	if label, ok := picaLabels[id]; ok {
		return label
	}
	return hex32(id)
}

func mmioLabel(paddr uint32) string {
	if paddr >= gpu.PAddr {
		if label, ok := mmioLabels[(paddr-gpu.PAddr)/4]; ok {
			return label
		}
	}
	return hex32(paddr)
}
