// Package gpu implements the GPU register block of the console: memory fill
// units, display transfer engine, LCD framebuffer configuration and the
// command list processor trigger.
package gpu

import (
	"pica/emu/log"
	"pica/hw/hwio"
)

// Dispatcher executes the operations started by writing a trigger register.
type Dispatcher interface {
	ProcessCommandList(addr, size uint32)
	DisplayTransfer(cfg DisplayTransferConfig)
	MemoryFill(cfg MemoryFillConfig, second bool)
}

// MMIORecorder is notified of every register write, with the physical
// address of the register.
type MMIORecorder interface {
	RegisterWritten(paddr uint32, val uint32)
}

type GPU struct {
	Regs *Regs

	dispatch Dispatcher
	irq      InterruptSink
	rec      MMIORecorder
}

// New creates a GPU with its registers in their reset state.
func New(irq InterruptSink) *GPU {
	g := &GPU{Regs: NewRegs(), irq: irq}
	g.Regs.Reset()
	return g
}

func (g *GPU) SetDispatcher(d Dispatcher)   { g.dispatch = d }
func (g *GPU) SetRecorder(rec MMIORecorder) { g.rec = rec }

// Device returns the register block as an io device, to be mapped at PAddr.
func (g *GPU) Device() *hwio.Device {
	return &hwio.Device{
		Name: "gpu",
		Size: NumIds * 4,
		ReadCb: func(off uint32, size int) uint64 {
			return g.Read(off, size)
		},
		WriteCb: func(off uint32, size int, val uint64) {
			g.Write(off, size, val)
		},
	}
}

// Read reads a register. addr is the byte offset from the start of the block
// and size the access size in bytes; only 32-bit accesses are defined.
func (g *GPU) Read(addr uint32, size int) uint64 {
	index := addr / 4
	if size != 4 || index >= NumIds {
		log.ModGPU.ErrorZ("unknown read").
			Int("size", size*8).
			Hex32("addr", VAddr+addr).
			End()
		return 0
	}
	return uint64(g.Regs.Peek(index))
}

// Write writes a register and starts the operation if a trigger register was
// written. addr is the byte offset from the start of the block and size the
// access size in bytes; only 32-bit accesses are defined.
func (g *GPU) Write(addr uint32, size int, val uint64) {
	index := addr / 4
	if size != 4 || index >= NumIds {
		log.ModGPU.ErrorZ("unknown write").
			Int("size", size*8).
			Hex32("addr", VAddr+addr).
			Hex64("val", val).
			End()
		return
	}

	g.Regs.Set(index, uint32(val))

	switch index {
	case RegMemoryFill0 + fillControl, RegMemoryFill1 + fillControl:
		second := index != RegMemoryFill0+fillControl
		cfg := g.Regs.MemoryFill(second)
		if cfg.Trigger() {
			log.ModGPU.DebugZ("memory fill").
				Hex32("start", cfg.StartAddress()).
				Hex32("end", cfg.EndAddress()).
				Hex32("value", cfg.Value).
				Bool("second", second).
				End()
			g.dispatcher().MemoryFill(cfg, second)
		}

	case RegDisplayTransfer + dtTrigger:
		cfg := g.Regs.DisplayTransfer()
		if cfg.Trigger&1 != 0 {
			g.dispatcher().DisplayTransfer(cfg)
		}

	case RegCommandList + cmdTrigger:
		cfg := g.Regs.CommandList()
		if cfg.Trigger&1 != 0 {
			log.ModGPU.DebugZ("command list").
				Hex32("addr", cfg.PhysicalAddress()).
				Hex32("size", cfg.SizeBytes()).
				End()
			g.dispatcher().ProcessCommandList(cfg.PhysicalAddress(), cfg.SizeBytes())
		}
	}

	// Recorded last, after the memory reads of the operation it started.
	if g.rec != nil {
		g.rec.RegisterWritten(PAddr+addr, uint32(val))
	}
}

func (g *GPU) dispatcher() Dispatcher {
	if g.dispatch == nil {
		panic("gpu: trigger written with no dispatcher attached")
	}
	return g.dispatch
}

// AfterCommandList signals the end of a command list.
func (g *GPU) AfterCommandList() {
	g.irq.SignalInterrupt(P3D)
	g.Regs.Set(RegCommandList+cmdTrigger, 0)
}

// AfterDisplayTransfer signals the end of a display transfer or texture copy.
func (g *GPU) AfterDisplayTransfer() {
	g.Regs.Set(RegDisplayTransfer+dtTrigger, 0)
	g.irq.SignalInterrupt(PPF)
}

// AfterMemoryFill clears the trigger and sets the finished flag of a fill
// unit. The interrupt is not raised when the fill start address is zero.
func (g *GPU) AfterMemoryFill(second bool) {
	cfg := g.Regs.MemoryFill(second)
	hwio.ClearBit32(&cfg.Control, fillTrigger)
	hwio.SetBit32(&cfg.Control, fillFinished)
	g.Regs.Set(fillBase(second)+fillControl, cfg.Control)

	if cfg.StartAddress() != 0 {
		if second {
			g.irq.SignalInterrupt(PSC1)
		} else {
			g.irq.SignalInterrupt(PSC0)
		}
	}
}

// AfterSwapBuffers signals the vblank of both screens.
func (g *GPU) AfterSwapBuffers() {
	g.irq.SignalInterrupt(PDC0)
	g.irq.SignalInterrupt(PDC1)
}
