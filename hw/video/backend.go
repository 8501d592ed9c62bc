// Package video drives the GPU: it runs command lists, memory operations and
// buffer swaps either synchronously or on a dedicated worker goroutine, and
// paces vblank on the virtual clock.
package video

import (
	"pica/emu/log"
	"pica/hw/gpu"
	"pica/hw/pica"
)

// Renderer is the host side of the GPU: it rasterizes triangles, may
// accelerate memory operations and keeps its copies of guest memory
// coherent.
type Renderer interface {
	pica.Rasterizer
	gpu.Accelerator
	gpu.RegionCache

	// SwapBuffers presents the current frame.
	SwapBuffers()
}

// Backend executes GPU operations.
type Backend interface {
	ProcessCommandList(addr, size uint32)
	SwapBuffers()
	DisplayTransfer(cfg gpu.DisplayTransferConfig)
	MemoryFill(cfg gpu.MemoryFillConfig, second bool)
	FlushRegion(addr uint32, size uint64)
	FlushAndInvalidateRegion(addr uint32, size uint64)
	InvalidateRegion(addr uint32, size uint64)

	// WaitForProcessing returns once every submitted operation completed.
	WaitForProcessing()
	Close() error
}

type commandKind uint8

const (
	cmdSubmitList commandKind = iota
	cmdSwapBuffers
	cmdMemoryFill
	cmdDisplayTransfer
	cmdFlushRegion
	cmdFlushAndInvalidateRegion
	cmdInvalidateRegion
)

// command is one operation queued for the worker.
type command struct {
	kind  commandKind
	fence uint64

	addr     uint32
	size     uint64
	fill     gpu.MemoryFillConfig
	second   bool
	transfer gpu.DisplayTransferConfig
}

// executor performs operations and signals their completion.
type executor struct {
	gpu      *gpu.GPU
	pica     *pica.CommandProcessor
	engine   *gpu.Engine
	renderer Renderer
}

func (e *executor) execute(cmd *command) {
	switch cmd.kind {
	case cmdSubmitList:
		if e.pica.ProcessCommandListOrLog(cmd.addr, uint32(cmd.size)) {
			e.gpu.AfterCommandList()
		}
	case cmdSwapBuffers:
		e.renderer.SwapBuffers()
		e.gpu.AfterSwapBuffers()
	case cmdMemoryFill:
		if e.engine.ProcessMemoryFill(cmd.fill) {
			e.gpu.AfterMemoryFill(cmd.second)
		}
	case cmdDisplayTransfer:
		if e.engine.ProcessDisplayTransfer(cmd.transfer) {
			e.gpu.AfterDisplayTransfer()
		}
	case cmdFlushRegion:
		e.renderer.FlushRegion(cmd.addr, cmd.size)
	case cmdFlushAndInvalidateRegion:
		e.renderer.FlushAndInvalidateRegion(cmd.addr, cmd.size)
	case cmdInvalidateRegion:
		e.renderer.InvalidateRegion(cmd.addr, cmd.size)
	default:
		log.ModThread.PanicZ("unknown command").Uint("kind", uint64(cmd.kind)).End()
	}
}

// Serial runs every operation on the calling goroutine.
type Serial struct {
	exec *executor
}

func (s *Serial) run(cmd command) { s.exec.execute(&cmd) }

func (s *Serial) ProcessCommandList(addr, size uint32) {
	s.run(command{kind: cmdSubmitList, addr: addr, size: uint64(size)})
}

func (s *Serial) SwapBuffers() { s.run(command{kind: cmdSwapBuffers}) }

func (s *Serial) DisplayTransfer(cfg gpu.DisplayTransferConfig) {
	s.run(command{kind: cmdDisplayTransfer, transfer: cfg})
}

func (s *Serial) MemoryFill(cfg gpu.MemoryFillConfig, second bool) {
	s.run(command{kind: cmdMemoryFill, fill: cfg, second: second})
}

func (s *Serial) FlushRegion(addr uint32, size uint64) {
	s.run(command{kind: cmdFlushRegion, addr: addr, size: size})
}

func (s *Serial) FlushAndInvalidateRegion(addr uint32, size uint64) {
	s.run(command{kind: cmdFlushAndInvalidateRegion, addr: addr, size: size})
}

func (s *Serial) InvalidateRegion(addr uint32, size uint64) {
	s.run(command{kind: cmdInvalidateRegion, addr: addr, size: size})
}

func (s *Serial) WaitForProcessing() {}
func (s *Serial) Close() error       { return nil }
