package video

import (
	"sync/atomic"

	"pica/emu/log"
	"pica/hw/gpu"
	"pica/hw/pica"
)

// NullRenderer discards geometry and never accelerates anything. It counts
// what it receives, which is enough for headless runs and tests.
type NullRenderer struct {
	Triangles atomic.Uint64
	Draws     atomic.Uint64
	Frames    atomic.Uint64
	Regions   atomic.Uint64
}

func (r *NullRenderer) AddTriangle(_, _, _ *pica.OutputVertex) { r.Triangles.Add(1) }
func (r *NullRenderer) DrawTriangles()                         { r.Draws.Add(1) }
func (r *NullRenderer) AccelerateDrawBatch(bool) bool          { return false }
func (r *NullRenderer) NotifyPicaRegisterChanged(uint32)       {}

func (r *NullRenderer) AccelerateFill(gpu.MemoryFillConfig) bool                 { return false }
func (r *NullRenderer) AccelerateDisplayTransfer(gpu.DisplayTransferConfig) bool { return false }
func (r *NullRenderer) AccelerateTextureCopy(gpu.DisplayTransferConfig) bool     { return false }

func (r *NullRenderer) FlushRegion(uint32, uint64)              { r.Regions.Add(1) }
func (r *NullRenderer) InvalidateRegion(uint32, uint64)         { r.Regions.Add(1) }
func (r *NullRenderer) FlushAndInvalidateRegion(uint32, uint64) { r.Regions.Add(1) }

func (r *NullRenderer) SwapBuffers() {
	n := r.Frames.Add(1)
	log.ModGPU.DebugZ("swap buffers").
		Uint("frame", n).
		Uint("triangles", r.Triangles.Load()).
		End()
}
