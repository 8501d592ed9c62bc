// Package emu assembles the physical memory map, the virtual clock and the
// video core into a runnable system, and holds its configuration.
package emu

import (
	"context"
	"io"
	"os"
	"sync/atomic"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"pica/emu/log"
	"pica/hw/gpu"
	"pica/hw/hwio"
	"pica/hw/pica"
	"pica/hw/timing"
	"pica/hw/tracer"
	"pica/hw/video"
)

// Physical memory map.
const (
	VRAMBase  = 0x18000000
	VRAMSize  = 0x00600000
	FCRAMBase = 0x20000000
)

// Emulator is a headless system: guest memory, the GPU register block mapped
// on the physical bus and the video core driving a NullRenderer.
type Emulator struct {
	Bus      *hwio.Table
	VRAM     *hwio.Mem
	FCRAM    *hwio.Mem
	Timing   *timing.Timing
	Video    *video.Core
	Renderer *video.NullRenderer

	irqs   [gpu.DMA + 1]atomic.Uint64
	tracer *tracer.Tracer
}

// PowerUp maps the memory areas and starts the video core.
func PowerUp(cfg Config) *Emulator {
	cfg.Check()

	e := &Emulator{
		Bus:      hwio.NewTable("phys"),
		VRAM:     hwio.NewMem("vram", VRAMSize, hwio.MemFlagReadWrite),
		FCRAM:    hwio.NewMem("fcram", int(cfg.General.FCRAMSize)<<20, hwio.MemFlagReadWrite),
		Timing:   timing.New(),
		Renderer: &video.NullRenderer{},
	}
	e.Bus.MapMem(VRAMBase, e.VRAM)
	e.Bus.MapMem(FCRAMBase, e.FCRAM)

	e.Video = video.NewCore(cfg.Video.Options(), e.Bus, e.Renderer, e, pica.PassthroughEngine{}, e.Timing)
	e.Bus.MapDevice(gpu.PAddr, e.Video.GPU.Device())

	log.ModEmu.InfoZ("power up").
		Hex32("vram", VRAMBase).
		Hex32("fcram", FCRAMBase).
		Uint("fcram_mb", uint64(cfg.General.FCRAMSize)).
		End()
	return e
}

func (e *Emulator) SignalInterrupt(id gpu.InterruptID) {
	log.ModEmu.DebugZ("interrupt").Stringer("id", id).End()
	if int(id) < len(e.irqs) {
		e.irqs[id].Add(1)
	}
}

// Interrupts returns how many times id was signalled.
func (e *Emulator) Interrupts(id gpu.InterruptID) uint64 {
	if int(id) >= len(e.irqs) {
		return 0
	}
	return e.irqs[id].Load()
}

// MemImage is a file to be loaded in guest memory.
type MemImage struct {
	Addr uint32
	Path string
}

// LoadImage copies data into guest memory at addr. The whole range must be
// contained in a single memory area.
func (e *Emulator) LoadImage(addr uint32, data []byte) error {
	buf := e.Bus.Slice(addr, uint32(len(data)))
	if buf == nil {
		return errors.Wrapf(gpu.ErrInvalidAddress, "%d bytes at %#08x", len(data), addr)
	}
	copy(buf, data)
	log.ModMem.DebugZ("image loaded").Hex32("addr", addr).Int("size", len(data)).End()
	return nil
}

// LoadImages reads the image files concurrently then copies them into memory
// in order, so that later images overwrite earlier ones.
func (e *Emulator) LoadImages(ctx context.Context, images []MemImage) error {
	data := make([][]byte, len(images))
	g, ctx := errgroup.WithContext(ctx)
	for i, img := range images {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			buf, err := os.ReadFile(img.Path)
			if err != nil {
				return errors.Wrap(err, "read image")
			}
			data[i] = buf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, img := range images {
		if err := e.LoadImage(img.Addr, data[i]); err != nil {
			return errors.Wrapf(err, "load %s", img.Path)
		}
	}
	return nil
}

// SubmitCommandList programs the command processor registers through the
// physical bus, exactly as guest software does.
func (e *Emulator) SubmitCommandList(addr, size uint32) {
	const base = gpu.PAddr + gpu.RegCommandList*4
	e.Bus.Write32(base, size)
	e.Bus.Write32(base+8, addr/8)
	e.Bus.Write32(base+16, 1)
}

// RunFrames advances the virtual clock by n frames and waits for the
// operations they produced.
func (e *Emulator) RunFrames(n int) {
	for range n {
		e.Timing.Advance(video.FrameTicks)
	}
	e.Video.WaitForProcessing()
}

// SetTraceOutput records register writes and memory accesses to w.
func (e *Emulator) SetTraceOutput(w io.Writer, maxData int) {
	e.tracer = tracer.New(w)
	e.tracer.MaxData = maxData
	e.Video.SetRecorder(e.tracer)
}

// Close stops the video core, reporting any trace write error.
func (e *Emulator) Close() error {
	err := e.Video.Close()
	if e.tracer != nil {
		e.Video.SetRecorder(nil)
		log.ModTracer.InfoZ("trace closed").Uint("events", e.tracer.Events()).End()
		if terr := e.tracer.Err(); terr != nil && err == nil {
			err = terr
		}
	}
	return err
}
