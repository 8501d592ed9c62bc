package gpu

import (
	"pica/hw/hwio"
)

const (
	// NumIds is the number of 32-bit words in the GPU register block.
	NumIds = 0x1000

	// VAddr is the virtual address at which the register block is seen by
	// the application, PAddr is its physical address.
	VAddr = 0x1EF00000
	PAddr = 0x10400000
)

// Register word indices.
const (
	RegMemoryFill0     = 0x004
	RegMemoryFill1     = 0x008
	RegFramebufferTop  = 0x117
	RegFramebufferSub  = 0x157
	RegDisplayTransfer = 0x300
	RegCommandList     = 0x638
)

// Offsets within a memory fill unit.
const (
	fillStart   = 0
	fillEnd     = 1
	fillValue   = 2
	fillControl = 3
)

// Offsets within a framebuffer config.
const (
	fbSize          = 0x0
	fbAddressLeft1  = 0x3
	fbAddressLeft2  = 0x4
	fbFormat        = 0x5
	fbActiveFb      = 0x7
	fbStride        = 0xD
	fbAddressRight1 = 0xE
	fbAddressRight2 = 0xF
)

// Offsets within the display transfer config.
const (
	dtInputAddress  = 0x0
	dtOutputAddress = 0x1
	dtOutputSize    = 0x2
	dtInputSize     = 0x3
	dtFlags         = 0x4
	dtTrigger       = 0x6
	dtCopySize      = 0x8
	dtCopyInput     = 0x9
	dtCopyOutput    = 0xA
)

// Offsets within the command processor config.
const (
	cmdSize    = 0x0
	cmdAddress = 0x2
	cmdTrigger = 0x4
)

// Memory fill control bits.
const (
	fillTrigger  = 0
	fillFinished = 1
	fill24Bit    = 8
	fill32Bit    = 9
)

// MemoryFillConfig is the state of one of the two memory fill units.
type MemoryFillConfig struct {
	AddressStart uint32 // in units of 8 bytes
	AddressEnd   uint32 // in units of 8 bytes
	Value        uint32
	Control      uint32
}

func (c MemoryFillConfig) StartAddress() uint32 { return c.AddressStart * 8 }
func (c MemoryFillConfig) EndAddress() uint32   { return c.AddressEnd * 8 }

func (c MemoryFillConfig) Trigger() bool  { return hwio.GetBit32(c.Control, fillTrigger) }
func (c MemoryFillConfig) Finished() bool { return hwio.GetBit32(c.Control, fillFinished) }
func (c MemoryFillConfig) Fill24() bool   { return hwio.GetBit32(c.Control, fill24Bit) }
func (c MemoryFillConfig) Fill32() bool   { return hwio.GetBit32(c.Control, fill32Bit) }

func (c MemoryFillConfig) Value16() uint16 { return uint16(c.Value) }
func (c MemoryFillConfig) Value24() (r, g, b uint8) {
	return uint8(c.Value), uint8(c.Value >> 8), uint8(c.Value >> 16)
}

// FramebufferConfig describes one of the two LCD framebuffers.
type FramebufferConfig struct {
	Size          uint32 // width in bits 0-15, height in bits 16-31
	AddressLeft1  uint32
	AddressLeft2  uint32
	Format        uint32
	ActiveFb      uint32
	Stride        uint32
	AddressRight1 uint32
	AddressRight2 uint32
}

func (c FramebufferConfig) Width() uint32  { return hwio.Bits32(c.Size, 0, 16) }
func (c FramebufferConfig) Height() uint32 { return hwio.Bits32(c.Size, 16, 16) }

func (c FramebufferConfig) ColorFormat() PixelFormat {
	return PixelFormat(hwio.Bits32(c.Format, 0, 3))
}

// LeftAddress returns the physical address of the currently displayed left
// eye buffer.
func (c FramebufferConfig) LeftAddress() uint32 {
	if c.ActiveFb&1 == 0 {
		return c.AddressLeft1
	}
	return c.AddressLeft2
}

// Display transfer flags bits.
const (
	dtFlipVertically = 0
	dtInputLinear    = 1
	dtCrop           = 2
	dtIsTextureCopy  = 3
	dtDontSwizzle    = 5
	dtBlock32        = 16
)

// TextureCopyConfig is the texture copy extension of the display transfer
// config. Widths and gaps are in units of 16 bytes.
type TextureCopyConfig struct {
	Size       uint32
	InputLine  uint32 // width in bits 0-15, gap in bits 16-31
	OutputLine uint32
}

func (c TextureCopyConfig) InputWidth() uint32  { return hwio.Bits32(c.InputLine, 0, 16) }
func (c TextureCopyConfig) InputGap() uint32    { return hwio.Bits32(c.InputLine, 16, 16) }
func (c TextureCopyConfig) OutputWidth() uint32 { return hwio.Bits32(c.OutputLine, 0, 16) }
func (c TextureCopyConfig) OutputGap() uint32   { return hwio.Bits32(c.OutputLine, 16, 16) }

// DisplayTransferConfig is the state of the display transfer engine, which
// also performs texture copies.
type DisplayTransferConfig struct {
	InputAddress  uint32 // in units of 8 bytes
	OutputAddress uint32 // in units of 8 bytes
	OutputSize    uint32 // width in bits 0-15, height in bits 16-31
	InputSize     uint32
	Flags         uint32
	Trigger       uint32
	TextureCopy   TextureCopyConfig
}

func (c DisplayTransferConfig) PhysicalInputAddress() uint32  { return c.InputAddress * 8 }
func (c DisplayTransferConfig) PhysicalOutputAddress() uint32 { return c.OutputAddress * 8 }

func (c DisplayTransferConfig) InputWidth() uint32   { return hwio.Bits32(c.InputSize, 0, 16) }
func (c DisplayTransferConfig) InputHeight() uint32  { return hwio.Bits32(c.InputSize, 16, 16) }
func (c DisplayTransferConfig) OutputWidth() uint32  { return hwio.Bits32(c.OutputSize, 0, 16) }
func (c DisplayTransferConfig) OutputHeight() uint32 { return hwio.Bits32(c.OutputSize, 16, 16) }

func (c DisplayTransferConfig) FlipVertically() bool { return hwio.GetBit32(c.Flags, dtFlipVertically) }
func (c DisplayTransferConfig) InputLinear() bool    { return hwio.GetBit32(c.Flags, dtInputLinear) }
func (c DisplayTransferConfig) Crop() bool           { return hwio.GetBit32(c.Flags, dtCrop) }
func (c DisplayTransferConfig) IsTextureCopy() bool  { return hwio.GetBit32(c.Flags, dtIsTextureCopy) }
func (c DisplayTransferConfig) DontSwizzle() bool    { return hwio.GetBit32(c.Flags, dtDontSwizzle) }
func (c DisplayTransferConfig) Block32() bool        { return hwio.GetBit32(c.Flags, dtBlock32) }

func (c DisplayTransferConfig) InputFormat() PixelFormat {
	return PixelFormat(hwio.Bits32(c.Flags, 8, 3))
}

func (c DisplayTransferConfig) OutputFormat() PixelFormat {
	return PixelFormat(hwio.Bits32(c.Flags, 12, 3))
}

func (c DisplayTransferConfig) Scaling() ScalingMode {
	return ScalingMode(hwio.Bits32(c.Flags, 24, 2))
}

// CommandListConfig is the state of the command list processor.
type CommandListConfig struct {
	Size    uint32 // in bytes
	Address uint32 // in units of 8 bytes
	Trigger uint32
}

func (c CommandListConfig) PhysicalAddress() uint32 { return c.Address * 8 }
func (c CommandListConfig) SizeBytes() uint32       { return c.Size }

// Regs is the GPU register block.
type Regs struct {
	*hwio.Bank32
}

func NewRegs() *Regs {
	return &Regs{Bank32: hwio.NewBank32("gpu", NumIds)}
}

func fillBase(second bool) uint32 {
	if second {
		return RegMemoryFill1
	}
	return RegMemoryFill0
}

// MemoryFill returns a copy of the config of the first or second fill unit.
func (r *Regs) MemoryFill(second bool) MemoryFillConfig {
	base := fillBase(second)
	return MemoryFillConfig{
		AddressStart: r.Peek(base + fillStart),
		AddressEnd:   r.Peek(base + fillEnd),
		Value:        r.Peek(base + fillValue),
		Control:      r.Peek(base + fillControl),
	}
}

// SetMemoryFill overwrites the config of a fill unit without triggering it.
func (r *Regs) SetMemoryFill(second bool, c MemoryFillConfig) {
	base := fillBase(second)
	r.Set(base+fillStart, c.AddressStart)
	r.Set(base+fillEnd, c.AddressEnd)
	r.Set(base+fillValue, c.Value)
	r.Set(base+fillControl, c.Control)
}

func (r *Regs) Framebuffer(sub bool) FramebufferConfig {
	base := uint32(RegFramebufferTop)
	if sub {
		base = RegFramebufferSub
	}
	return FramebufferConfig{
		Size:          r.Peek(base + fbSize),
		AddressLeft1:  r.Peek(base + fbAddressLeft1),
		AddressLeft2:  r.Peek(base + fbAddressLeft2),
		Format:        r.Peek(base + fbFormat),
		ActiveFb:      r.Peek(base + fbActiveFb),
		Stride:        r.Peek(base + fbStride),
		AddressRight1: r.Peek(base + fbAddressRight1),
		AddressRight2: r.Peek(base + fbAddressRight2),
	}
}

func (r *Regs) SetFramebuffer(sub bool, c FramebufferConfig) {
	base := uint32(RegFramebufferTop)
	if sub {
		base = RegFramebufferSub
	}
	r.Set(base+fbSize, c.Size)
	r.Set(base+fbAddressLeft1, c.AddressLeft1)
	r.Set(base+fbAddressLeft2, c.AddressLeft2)
	r.Set(base+fbFormat, c.Format)
	r.Set(base+fbActiveFb, c.ActiveFb)
	r.Set(base+fbStride, c.Stride)
	r.Set(base+fbAddressRight1, c.AddressRight1)
	r.Set(base+fbAddressRight2, c.AddressRight2)
}

func (r *Regs) DisplayTransfer() DisplayTransferConfig {
	const base = RegDisplayTransfer
	return DisplayTransferConfig{
		InputAddress:  r.Peek(base + dtInputAddress),
		OutputAddress: r.Peek(base + dtOutputAddress),
		OutputSize:    r.Peek(base + dtOutputSize),
		InputSize:     r.Peek(base + dtInputSize),
		Flags:         r.Peek(base + dtFlags),
		Trigger:       r.Peek(base + dtTrigger),
		TextureCopy: TextureCopyConfig{
			Size:       r.Peek(base + dtCopySize),
			InputLine:  r.Peek(base + dtCopyInput),
			OutputLine: r.Peek(base + dtCopyOutput),
		},
	}
}

func (r *Regs) SetDisplayTransfer(c DisplayTransferConfig) {
	const base = RegDisplayTransfer
	r.Set(base+dtInputAddress, c.InputAddress)
	r.Set(base+dtOutputAddress, c.OutputAddress)
	r.Set(base+dtOutputSize, c.OutputSize)
	r.Set(base+dtInputSize, c.InputSize)
	r.Set(base+dtFlags, c.Flags)
	r.Set(base+dtTrigger, c.Trigger)
	r.Set(base+dtCopySize, c.TextureCopy.Size)
	r.Set(base+dtCopyInput, c.TextureCopy.InputLine)
	r.Set(base+dtCopyOutput, c.TextureCopy.OutputLine)
}

func (r *Regs) CommandList() CommandListConfig {
	const base = RegCommandList
	return CommandListConfig{
		Size:    r.Peek(base + cmdSize),
		Address: r.Peek(base + cmdAddress),
		Trigger: r.Peek(base + cmdTrigger),
	}
}

// Reset clears all registers and loads the framebuffer configuration left
// by the system applet at boot.
func (r *Regs) Reset() {
	r.Bank32.Reset()

	// 400x240 RGB8
	r.SetFramebuffer(false, FramebufferConfig{
		Size:          240 | 400<<16,
		AddressLeft1:  0x181E6000,
		AddressLeft2:  0x1822C800,
		AddressRight1: 0x18273000,
		AddressRight2: 0x182B9800,
		Format:        uint32(RGB8),
		ActiveFb:      0,
		Stride:        3 * 240,
	})
	// 320x240 RGB8
	r.SetFramebuffer(true, FramebufferConfig{
		Size:         240 | 320<<16,
		AddressLeft1: 0x1848F000,
		AddressLeft2: 0x184C7800,
		Format:       uint32(RGB8),
		ActiveFb:     0,
		Stride:       3 * 240,
	})
}
