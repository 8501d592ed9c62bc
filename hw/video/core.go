package video

import (
	"image"
	"sync/atomic"

	"github.com/go-faster/errors"

	"pica/emu/log"
	"pica/hw/gpu"
	"pica/hw/pica"
	"pica/hw/timing"
)

// FrameTicks is the duration of a frame, in virtual clock cycles.
const FrameTicks = timing.BaseClockRate / 60

// Options configures the video core.
type Options struct {
	// AsyncGPU runs operations on a worker goroutine.
	AsyncGPU bool
	// HWShader lets the renderer draw whole batches.
	HWShader bool
	// Timing is the wait policy of each operation, with AsyncGPU.
	Timing Policies
}

// Core owns the GPU register block, the PICA command processor and the
// backend executing their operations. It is the dispatcher of the GPU
// trigger registers.
type Core struct {
	GPU      *gpu.GPU
	Pica     *pica.CommandProcessor
	Renderer Renderer

	mem     gpu.Memory
	backend Backend
	timing  *timing.Timing
	vblank  *timing.EventType
	frames  atomic.Uint64
}

// NewCore creates the video core and schedules the first vblank.
func NewCore(opts Options, mem gpu.Memory, renderer Renderer, irq gpu.InterruptSink, engine pica.ShaderEngine, tm *timing.Timing) *Core {
	c := &Core{
		GPU:      gpu.New(irq),
		Pica:     pica.NewCommandProcessor(mem, renderer, irq, engine),
		Renderer: renderer,
		mem:      mem,
		timing:   tm,
	}
	c.Pica.HWShaders = opts.HWShader

	exec := &executor{
		gpu:      c.GPU,
		pica:     c.Pica,
		engine:   gpu.NewEngine(mem, renderer, renderer),
		renderer: renderer,
	}
	if opts.AsyncGPU {
		exec.engine = gpu.NewEngine(mem, renderer, workerRegions{renderer, opts.Timing})
		c.backend = newThreadManager(exec, tm, opts.Timing)
	} else {
		c.backend = &Serial{exec: exec}
	}
	c.GPU.SetDispatcher(c)

	c.vblank = tm.RegisterEvent("GPU::VBlankCallback", c.onVBlank)
	tm.ScheduleEvent(FrameTicks, c.vblank, 0)

	log.AddContext(c)
	log.ModGPU.InfoZ("video core started").
		Bool("async", opts.AsyncGPU).
		Bool("hw_shader", opts.HWShader).
		End()
	return c
}

func (c *Core) onVBlank(_ uint64, late int64) {
	c.backend.SwapBuffers()
	c.frames.Add(1)
	c.timing.ScheduleEvent(FrameTicks-late, c.vblank, 0)
}

func (c *Core) AddLogContext(z *log.EntryZ) {
	z.Uint("frame", c.frames.Load())
}

// Recorder receives every register write and memory access of the core.
type Recorder interface {
	pica.Recorder
	gpu.MMIORecorder
}

// SetRecorder attaches a recorder, once pending operations completed. A nil
// recorder detaches it.
func (c *Core) SetRecorder(rec Recorder) {
	c.backend.WaitForProcessing()
	if rec == nil {
		c.GPU.SetRecorder(nil)
		c.Pica.SetRecorder(nil)
		return
	}
	c.GPU.SetRecorder(rec)
	c.Pica.SetRecorder(rec)
}

// Frames returns the number of vblanks so far.
func (c *Core) Frames() uint64 { return c.frames.Load() }

// Backend returns the backend operations are submitted to.
func (c *Core) Backend() Backend { return c.backend }

func (c *Core) ProcessCommandList(addr, size uint32) { c.backend.ProcessCommandList(addr, size) }
func (c *Core) SwapBuffers()                         { c.backend.SwapBuffers() }

func (c *Core) DisplayTransfer(cfg gpu.DisplayTransferConfig) { c.backend.DisplayTransfer(cfg) }

func (c *Core) MemoryFill(cfg gpu.MemoryFillConfig, second bool) {
	c.backend.MemoryFill(cfg, second)
}

func (c *Core) FlushRegion(addr uint32, size uint64) { c.backend.FlushRegion(addr, size) }

func (c *Core) FlushAndInvalidateRegion(addr uint32, size uint64) {
	c.backend.FlushAndInvalidateRegion(addr, size)
}

func (c *Core) InvalidateRegion(addr uint32, size uint64) { c.backend.InvalidateRegion(addr, size) }

func (c *Core) WaitForProcessing() { c.backend.WaitForProcessing() }

// Read reads a GPU register, addr being the offset from the start of the
// register block.
func (c *Core) Read(addr uint32, size int) uint64 { return c.GPU.Read(addr, size) }

// Write writes a GPU register, starting the operation if a trigger register
// was written.
func (c *Core) Write(addr uint32, size int, val uint64) { c.GPU.Write(addr, size, val) }

// Close waits for pending operations and stops the backend.
func (c *Core) Close() error {
	c.backend.WaitForProcessing()
	log.RemoveContext(c)
	c.timing.UnscheduleEvent(c.vblank, 0)
	return c.backend.Close()
}

// Snapshot is a copy of the GPU and PICA register files.
type Snapshot struct {
	Frames   uint64
	GPURegs  []uint32
	PicaRegs []uint32
	// PicaWritten lists the PICA registers written since reset.
	PicaWritten []uint32
}

// Snapshot waits for pending operations and copies the register files.
func (c *Core) Snapshot() Snapshot {
	c.backend.WaitForProcessing()
	return Snapshot{
		Frames:      c.frames.Load(),
		GPURegs:     c.GPU.Regs.Snapshot(),
		PicaRegs:    c.Pica.State.Regs.Snapshot(),
		PicaWritten: c.Pica.State.WrittenRegisters(),
	}
}

// Screenshot decodes the displayed left framebuffer of the top (or sub)
// screen. Framebuffers are stored rotated: each line of the buffer is one
// column of the screen, bottom to top.
func (c *Core) Screenshot(sub bool) (*image.RGBA, error) {
	c.backend.WaitForProcessing()

	fb := c.GPU.Regs.Framebuffer(sub)
	f := fb.ColorFormat()
	bpp := gpu.BytesPerPixel(f)
	if bpp == 0 {
		return nil, errors.Wrapf(gpu.ErrUnimplemented, "framebuffer format %v", f)
	}
	lines, lineLen := fb.Height(), fb.Width()
	if lines == 0 || lineLen == 0 {
		return nil, errors.Wrap(gpu.ErrZeroSize, "framebuffer size")
	}
	stride := max(fb.Stride, lineLen*bpp)

	addr := fb.LeftAddress()
	buf := c.mem.FetchPointer(addr)
	if need := (lines-1)*stride + lineLen*bpp; uint32(len(buf)) < need {
		return nil, errors.Wrapf(gpu.ErrInvalidAddress, "framebuffer at %#08x", addr)
	}

	img := image.NewRGBA(image.Rect(0, 0, int(lines), int(lineLen)))
	for x := range lines {
		line := buf[x*stride:]
		for i := range lineLen {
			img.SetRGBA(int(x), int(lineLen-1-i), gpu.DecodePixel(f, line[i*bpp:]))
		}
	}
	return img, nil
}
