package gpu

import (
	"encoding/binary"
	"image/color"

	"github.com/go-faster/errors"

	"pica/emu/log"
)

// Memory is the emulated physical address space as seen by the GPU.
type Memory interface {
	// Valid reports whether addr is backed by physical memory.
	Valid(addr uint32) bool
	// FetchPointer returns the memory from addr up to the end of its
	// region, or nil if addr is invalid.
	FetchPointer(addr uint32) []byte
}

// Accelerator can perform memory operations in place of the software
// implementation. Each method returns true if the operation was handled.
type Accelerator interface {
	AccelerateFill(cfg MemoryFillConfig) bool
	AccelerateDisplayTransfer(cfg DisplayTransferConfig) bool
	AccelerateTextureCopy(cfg DisplayTransferConfig) bool
}

// RegionCache keeps renderer-side copies of guest memory coherent.
type RegionCache interface {
	FlushRegion(addr uint32, size uint64)
	InvalidateRegion(addr uint32, size uint64)
	FlushAndInvalidateRegion(addr uint32, size uint64)
}

// Engine implements memory fills, display transfers and texture copies over
// physical memory.
type Engine struct {
	mem   Memory
	accel Accelerator
	cache RegionCache
}

// NewEngine creates an engine. accel may be nil, cache may not.
func NewEngine(mem Memory, accel Accelerator, cache RegionCache) *Engine {
	return &Engine{mem: mem, accel: accel, cache: cache}
}

// ProcessMemoryFill runs a memory fill, logging and dropping any error. It
// reports whether the fill completed.
func (e *Engine) ProcessMemoryFill(cfg MemoryFillConfig) bool {
	if err := e.MemoryFill(cfg); err != nil {
		log.ModGPU.ErrorZ("memory fill aborted").
			Hex32("start", cfg.StartAddress()).
			Hex32("end", cfg.EndAddress()).
			Error("err", err).
			End()
		return false
	}
	return true
}

// ProcessDisplayTransfer runs a display transfer or a texture copy,
// depending on the config flags, logging and dropping any error. It reports
// whether the operation completed.
func (e *Engine) ProcessDisplayTransfer(cfg DisplayTransferConfig) bool {
	if cfg.IsTextureCopy() {
		if err := e.TextureCopy(cfg); err != nil {
			log.ModGPU.ErrorZ("texture copy aborted").
				Hex32("src", cfg.PhysicalInputAddress()).
				Hex32("dst", cfg.PhysicalOutputAddress()).
				Hex32("size", cfg.TextureCopy.Size).
				Error("err", err).
				End()
			return false
		}
		log.ModGPU.DebugZ("texture copy").
			Hex32("size", cfg.TextureCopy.Size).
			Hex32("src", cfg.PhysicalInputAddress()).
			Uint("in_width", uint64(cfg.TextureCopy.InputWidth()*16)).
			Uint("in_gap", uint64(cfg.TextureCopy.InputGap()*16)).
			Hex32("dst", cfg.PhysicalOutputAddress()).
			Uint("out_width", uint64(cfg.TextureCopy.OutputWidth()*16)).
			Uint("out_gap", uint64(cfg.TextureCopy.OutputGap()*16)).
			Hex32("flags", cfg.Flags).
			End()
		return true
	}

	if err := e.DisplayTransfer(cfg); err != nil {
		log.ModGPU.ErrorZ("display transfer aborted").
			Hex32("src", cfg.PhysicalInputAddress()).
			Hex32("dst", cfg.PhysicalOutputAddress()).
			Error("err", err).
			End()
		return false
	}
	log.ModGPU.DebugZ("display transfer").
		Hex32("src", cfg.PhysicalInputAddress()).
		Uint("in_width", uint64(cfg.InputWidth())).
		Uint("in_height", uint64(cfg.InputHeight())).
		Hex32("dst", cfg.PhysicalOutputAddress()).
		Uint("out_width", uint64(cfg.OutputWidth())).
		Uint("out_height", uint64(cfg.OutputHeight())).
		Stringer("out_format", cfg.OutputFormat()).
		Hex32("flags", cfg.Flags).
		End()
	return true
}

// MemoryFill fills [start, end) with the 16, 24 or 32-bit pattern selected
// by cfg. Nothing is written if an error is returned.
func (e *Engine) MemoryFill(cfg MemoryFillConfig) error {
	start, end := cfg.StartAddress(), cfg.EndAddress()

	if !e.mem.Valid(start) {
		return errors.Wrapf(ErrInvalidAddress, "start address %#08x", start)
	}
	if !e.mem.Valid(end) {
		return errors.Wrapf(ErrInvalidAddress, "end address %#08x", end)
	}
	if end <= start {
		return errors.Wrapf(ErrInvalidRange, "%#08x-%#08x", start, end)
	}

	buf := e.mem.FetchPointer(start)
	if uint64(len(buf)) < uint64(end-start) {
		return errors.Wrapf(ErrOutOfBounds, "fill %#08x-%#08x crosses memory regions", start, end)
	}
	buf = buf[:end-start]

	if e.accel != nil && e.accel.AccelerateFill(cfg) {
		return nil
	}

	e.cache.InvalidateRegion(start, uint64(end-start))

	switch {
	case cfg.Fill24():
		r, g, b := cfg.Value24()
		fill24(buf, r, g, b)
	case cfg.Fill32():
		fill32(buf, cfg.Value)
	default:
		fill16(buf, cfg.Value16())
	}
	return nil
}

// fill24 repeats the 3-byte pattern over buf. A trailing partial pattern is
// truncated at the end of buf.
func fill24(buf []byte, r, g, b uint8) {
	pat := [3]byte{r, g, b}
	for i := range buf {
		buf[i] = pat[i%3]
	}
}

func fill32(buf []byte, v uint32) {
	for len(buf) >= 4 {
		binary.LittleEndian.PutUint32(buf, v)
		buf = buf[4:]
	}
}

func fill16(buf []byte, v uint16) {
	for len(buf) >= 2 {
		binary.LittleEndian.PutUint16(buf, v)
		buf = buf[2:]
	}
	if len(buf) == 1 {
		buf[0] = uint8(v)
	}
}

// DisplayTransfer converts a framebuffer between pixel formats and tiling
// layouts, optionally downscaling and flipping it. Nothing is written if an
// error is returned.
func (e *Engine) DisplayTransfer(cfg DisplayTransferConfig) error {
	srcAddr, dstAddr := cfg.PhysicalInputAddress(), cfg.PhysicalOutputAddress()

	if !e.mem.Valid(srcAddr) {
		return errors.Wrapf(ErrInvalidAddress, "input address %#08x", srcAddr)
	}
	if !e.mem.Valid(dstAddr) {
		return errors.Wrapf(ErrInvalidAddress, "output address %#08x", dstAddr)
	}
	switch {
	case cfg.InputWidth() == 0:
		return errors.Wrap(ErrZeroSize, "input width")
	case cfg.InputHeight() == 0:
		return errors.Wrap(ErrZeroSize, "input height")
	case cfg.OutputWidth() == 0:
		return errors.Wrap(ErrZeroSize, "output width")
	case cfg.OutputHeight() == 0:
		return errors.Wrap(ErrZeroSize, "output height")
	}

	if e.accel != nil && e.accel.AccelerateDisplayTransfer(cfg) {
		return nil
	}

	scaling := cfg.Scaling()
	if scaling > ScaleXY {
		return errors.Wrapf(ErrUnimplemented, "display transfer scaling mode %v", scaling)
	}
	if cfg.InputLinear() && scaling != NoScale {
		return errors.Wrap(ErrUnimplemented, "scaling is only implemented on tiled input")
	}

	inFmt, outFmt := cfg.InputFormat(), cfg.OutputFormat()
	srcBpp, dstBpp := BytesPerPixel(inFmt), BytesPerPixel(outFmt)
	if srcBpp == 0 {
		return errors.Wrapf(ErrUnimplemented, "input format %v", inFmt)
	}
	if dstBpp == 0 {
		return errors.Wrapf(ErrUnimplemented, "output format %v", outFmt)
	}

	var hscale, vscale uint32
	taps := uint32(1)
	switch scaling {
	case ScaleX:
		hscale, taps = 1, 2
	case ScaleXY:
		hscale, vscale, taps = 1, 1, 4
	}

	inWidth := cfg.InputWidth()
	outWidth := cfg.OutputWidth() >> hscale
	outHeight := cfg.OutputHeight() >> vscale

	offsets := func(x, y uint32) (src, dst uint32) {
		inX, inY := x<<hscale, y<<vscale
		outY := y
		if cfg.FlipVertically() {
			outY = outHeight - y - 1
		}

		switch {
		case cfg.InputLinear() && !cfg.DontSwizzle():
			// linear to tiled
			src = (inX + inY*inWidth) * srcBpp
			dst = TiledOffset(x, outY, outWidth, dstBpp)
		case cfg.InputLinear():
			// linear to linear
			src = (inX + inY*inWidth) * srcBpp
			dst = (x + outY*outWidth) * dstBpp
		case !cfg.DontSwizzle():
			// tiled to linear
			src = TiledOffset(inX, inY, inWidth, srcBpp)
			dst = (x + outY*outWidth) * dstBpp
		default:
			// tiled to tiled
			src = TiledOffset(inX, inY, inWidth, srcBpp)
			dst = TiledOffset(x, outY, outWidth, dstBpp)
		}
		return src, dst
	}

	src := e.mem.FetchPointer(srcAddr)
	dst := e.mem.FetchPointer(dstAddr)
	for y := range outHeight {
		for x := range outWidth {
			so, do := offsets(x, y)
			if uint64(so)+uint64(taps*srcBpp) > uint64(len(src)) {
				return errors.Wrapf(ErrOutOfBounds, "input pixel (%d,%d) at %#08x", x, y, srcAddr+so)
			}
			if uint64(do)+uint64(dstBpp) > uint64(len(dst)) {
				return errors.Wrapf(ErrOutOfBounds, "output pixel (%d,%d) at %#08x", x, y, dstAddr+do)
			}
		}
	}

	inputSize := cfg.InputWidth() * cfg.InputHeight() * srcBpp
	outputSize := outWidth * outHeight * dstBpp
	e.cache.FlushRegion(srcAddr, uint64(inputSize))
	e.cache.InvalidateRegion(dstAddr, uint64(outputSize))

	var px [4]color.RGBA
	for y := range outHeight {
		for x := range outWidth {
			so, do := offsets(x, y)
			for i := range taps {
				px[i] = DecodePixel(inFmt, src[so+i*srcBpp:])
			}
			c := px[0]
			if taps > 1 {
				c = average(px[:taps]...)
			}
			EncodePixel(outFmt, c, dst[do:])
		}
	}
	return nil
}

// copyChunks walks a texture copy of size bytes, calling fn for each
// contiguous chunk with its input and output offsets.
func copyChunks(size, inWidth, inGap, outWidth, outGap uint32, fn func(src, dst, n uint32)) {
	var src, dst uint32
	remainingIn, remainingOut := inWidth, outWidth
	for size > 0 {
		n := min(remainingIn, remainingOut, size)
		fn(src, dst, n)
		src += n
		dst += n
		remainingIn -= n
		remainingOut -= n
		size -= n

		if remainingIn == 0 {
			remainingIn = inWidth
			src += inGap
		}
		if remainingOut == 0 {
			remainingOut = outWidth
			dst += outGap
		}
	}
}

// TextureCopy copies raw bytes between two buffers with independent line
// widths and gaps. Nothing is written if an error is returned.
func (e *Engine) TextureCopy(cfg DisplayTransferConfig) error {
	srcAddr, dstAddr := cfg.PhysicalInputAddress(), cfg.PhysicalOutputAddress()

	if !e.mem.Valid(srcAddr) {
		return errors.Wrapf(ErrInvalidAddress, "input address %#08x", srcAddr)
	}
	if !e.mem.Valid(dstAddr) {
		return errors.Wrapf(ErrInvalidAddress, "output address %#08x", dstAddr)
	}

	if e.accel != nil && e.accel.AccelerateTextureCopy(cfg) {
		return nil
	}

	tc := cfg.TextureCopy
	size := tc.Size &^ 15
	if size == 0 {
		return errors.Wrap(ErrZeroSize, "texture copy size (hardware hangs)")
	}

	inGap, outGap := tc.InputGap()*16, tc.OutputGap()*16

	// A zero gap means contiguous data whatever the width.
	inWidth, outWidth := size, size
	if inGap != 0 {
		inWidth = tc.InputWidth() * 16
	}
	if outGap != 0 {
		outWidth = tc.OutputWidth() * 16
	}
	if inWidth == 0 {
		return errors.Wrap(ErrZeroSize, "texture copy input width (hardware hangs)")
	}
	if outWidth == 0 {
		return errors.Wrap(ErrZeroSize, "texture copy output width (hardware hangs)")
	}

	src := e.mem.FetchPointer(srcAddr)
	dst := e.mem.FetchPointer(dstAddr)
	var srcEnd, dstEnd uint64
	copyChunks(size, inWidth, inGap, outWidth, outGap, func(s, d, n uint32) {
		srcEnd = max(srcEnd, uint64(s)+uint64(n))
		dstEnd = max(dstEnd, uint64(d)+uint64(n))
	})
	if srcEnd > uint64(len(src)) {
		return errors.Wrapf(ErrOutOfBounds, "texture copy input %#08x+%#x", srcAddr, srcEnd)
	}
	if dstEnd > uint64(len(dst)) {
		return errors.Wrapf(ErrOutOfBounds, "texture copy output %#08x+%#x", dstAddr, dstEnd)
	}

	contiguousIn := uint64(tc.Size/inWidth) * uint64(inWidth+inGap)
	e.cache.FlushRegion(srcAddr, contiguousIn)

	contiguousOut := uint64(tc.Size/outWidth) * uint64(outWidth+outGap)
	if outGap != 0 {
		// Data between lines must be preserved.
		e.cache.FlushAndInvalidateRegion(dstAddr, contiguousOut)
	} else {
		e.cache.InvalidateRegion(dstAddr, contiguousOut)
	}

	copyChunks(size, inWidth, inGap, outWidth, outGap, func(s, d, n uint32) {
		copy(dst[d:d+n], src[s:s+n])
	})
	return nil
}
