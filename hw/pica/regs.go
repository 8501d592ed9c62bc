package pica

import (
	"pica/hw/hwio"
)

// NumRegs is the number of PICA registers.
const NumRegs = 0x300

// Register ids.
const (
	RegTriggerIRQ = 0x010

	RegVSOutputTotal      = 0x04F
	RegVSOutputAttributes = 0x050 // 7 registers

	RegProcTexLutConfig = 0x0AF
	RegProcTexLutData   = 0x0B0 // 8 registers

	RegFogLutOffset = 0x0E6
	RegFogLutData   = 0x0E8 // 8 registers

	RegLightingLutConfig = 0x1C5
	RegLightingLutData   = 0x1C8 // 8 registers

	RegVertexAttribBase       = 0x200
	RegVertexAttribFormatLow  = 0x201
	RegVertexAttribFormatHigh = 0x202
	RegAttribLoaders          = 0x203 // 12 loaders of 3 registers
	RegIndexArray             = 0x227
	RegNumVertices            = 0x228
	RegUseGS                  = 0x229
	RegVertexOffset           = 0x22A
	RegTriggerDraw            = 0x22E
	RegTriggerDrawIndexed     = 0x22F
	RegDefaultAttribIndex     = 0x232
	RegDefaultAttribData      = 0x233 // 3 registers
	RegCommandBufferSize      = 0x238 // 2 registers
	RegCommandBufferAddr      = 0x23A // 2 registers
	RegCommandBufferTrigger   = 0x23C // 2 registers
	RegMaxInputAttribIndex    = 0x242
	RegGSExclusiveConfig      = 0x244
	RegGPUMode                = 0x245
	RegGSConfig               = 0x252
	RegTriangleTopology       = 0x25E
	RegRestartPrimitive       = 0x25F

	RegGSBase = 0x280
	RegVSBase = 0x2B0
)

// Offsets within a shader unit register block.
const (
	shBoolUniforms  = 0x00
	shIntUniforms   = 0x01 // 4 registers
	shInputConfig   = 0x09
	shMainOffset    = 0x0A
	shInputMapLow   = 0x0B
	shInputMapHigh  = 0x0C
	shOutputMask    = 0x0D
	shUniformSetup  = 0x10
	shUniformData   = 0x11 // 8 registers
	shProgramOffset = 0x1B
	shProgramData   = 0x1C // 8 registers
	shSwizzleOffset = 0x25
	shSwizzleData   = 0x26 // 8 registers
)

// Regs is the PICA register file.
type Regs struct {
	*hwio.Bank32
}

func NewRegs() *Regs {
	return &Regs{Bank32: hwio.NewBank32("pica", NumRegs)}
}

func (r *Regs) bits(id uint32, pos, count uint) uint32 {
	return hwio.Bits32(r.Peek(id), pos, count)
}

func (r *Regs) setBits(id uint32, pos, count uint, val uint32) {
	v := r.Peek(id)
	hwio.SetBits32(&v, pos, count, val)
	r.Set(id, v)
}

// ShaderRegs gives access to the registers of one shader unit.
type ShaderRegs struct {
	regs *Regs
	base uint32
}

func (r *Regs) VS() ShaderRegs { return ShaderRegs{r, RegVSBase} }
func (r *Regs) GS() ShaderRegs { return ShaderRegs{r, RegGSBase} }

func (s ShaderRegs) BoolUniforms() uint16 { return uint16(s.regs.Peek(s.base + shBoolUniforms)) }

// IntUniform returns the x, y, z, w components of integer uniform i.
func (s ShaderRegs) IntUniform(i uint32) [4]uint8 {
	v := s.regs.Peek(s.base + shIntUniforms + i)
	return [4]uint8{uint8(v), uint8(v >> 8), uint8(v >> 16), uint8(v >> 24)}
}

func (s ShaderRegs) MaxInputAttributeIndex() uint32 { return s.regs.bits(s.base+shInputConfig, 0, 4) }
func (s ShaderRegs) MainOffset() uint32             { return s.regs.bits(s.base+shMainOffset, 0, 16) }
func (s ShaderRegs) OutputMask() uint16             { return uint16(s.regs.Peek(s.base + shOutputMask)) }

// RegisterForAttribute returns the input register attribute attr is loaded
// into.
func (s ShaderRegs) RegisterForAttribute(attr uint32) uint32 {
	id := s.base + shInputMapLow
	if attr >= 8 {
		id = s.base + shInputMapHigh
		attr -= 8
	}
	return s.regs.bits(id, uint(attr*4), 4)
}

// UniformIndex returns the index of the next float uniform written.
func (s ShaderRegs) UniformIndex() uint32 { return s.regs.bits(s.base+shUniformSetup, 0, 8) }

func (s ShaderRegs) setUniformIndex(i uint32) { s.regs.setBits(s.base+shUniformSetup, 0, 8, i) }

// UniformFloat32 reports whether float uniforms are written as 32-bit
// floats (true) or as packed float24 (false).
func (s ShaderRegs) UniformFloat32() bool {
	return hwio.GetBit32(s.regs.Peek(s.base+shUniformSetup), 31)
}

func (s ShaderRegs) ProgramOffset() uint32     { return s.regs.Peek(s.base + shProgramOffset) }
func (s ShaderRegs) setProgramOffset(v uint32) { s.regs.Set(s.base+shProgramOffset, v) }
func (s ShaderRegs) SwizzleOffset() uint32     { return s.regs.Peek(s.base + shSwizzleOffset) }
func (s ShaderRegs) setSwizzleOffset(v uint32) { s.regs.Set(s.base+shSwizzleOffset, v) }
func (s ShaderRegs) id(off uint32) uint32      { return s.base + off }
func (s ShaderRegs) contains(id, off, n uint32) bool {
	return id >= s.base+off && id < s.base+off+n
}

// Topology is the primitive topology used to assemble vertices.
type Topology uint32

//go:generate go tool stringer -type=Topology,GSMode -output=regs_string.go

const (
	TopologyList Topology = iota
	TopologyStrip
	TopologyFan
	TopologyShader // list, with winding controlled by the geometry shader
)

func (r *Regs) TriangleTopology() Topology {
	return Topology(r.bits(RegTriangleTopology, 8, 2))
}

// UseGS reports whether the geometry shader stage is enabled.
func (r *Regs) UseGS() bool { return r.bits(RegUseGS, 8, 2) == 2 }

// GSMode selects how vertices are fed to the geometry shader.
type GSMode uint32

const (
	GSPoint             GSMode = iota // one vertex per invocation
	GSVariablePrimitive               // header vertex holds the vertex count
	GSFixedPrimitive                  // fixed number of vertices per invocation
	GSIndexInput                      // raw indices, no vertex shader
)

func (r *Regs) GSMode() GSMode                 { return GSMode(r.bits(RegGSConfig, 0, 2)) }
func (r *Regs) GSFixedVertexCount() uint32     { return r.bits(RegGSConfig, 8, 4) + 1 }
func (r *Regs) GSStartIndex() uint32           { return r.bits(RegGSConfig, 16, 8) }
func (r *Regs) GSExclusiveConfig() bool        { return hwio.GetBit32(r.Peek(RegGSExclusiveConfig), 0) }
func (r *Regs) NumVertices() uint32            { return r.Peek(RegNumVertices) }
func (r *Regs) VertexOffset() uint32           { return r.Peek(RegVertexOffset) }
func (r *Regs) MaxInputAttribIndex() uint32    { return r.bits(RegMaxInputAttribIndex, 0, 4) }
func (r *Regs) DefaultAttribIndex() uint32     { return r.bits(RegDefaultAttribIndex, 0, 4) }
func (r *Regs) setDefaultAttribIndex(v uint32) { r.setBits(RegDefaultAttribIndex, 0, 4, v) }

// IndexArray returns the offset of the index buffer from the vertex base
// address, and whether indices are 16-bit.
func (r *Regs) IndexArray() (offset uint32, u16 bool) {
	v := r.Peek(RegIndexArray)
	return hwio.Bits32(v, 0, 31), hwio.GetBit32(v, 31)
}

// VertexBaseAddress returns the physical base address of vertex and index
// arrays.
func (r *Regs) VertexBaseAddress() uint32 {
	return r.bits(RegVertexAttribBase, 1, 28) * 16
}

// CommandBuffer returns the physical address and size in bytes of command
// buffer channel i.
func (r *Regs) CommandBuffer(i uint32) (addr, size uint32) {
	return r.bits(RegCommandBufferAddr+i, 0, 28) * 8, r.bits(RegCommandBufferSize+i, 0, 20) * 8
}

// Lookup table selection.
func (r *Regs) lightingLut() (table, index uint32) {
	return r.bits(RegLightingLutConfig, 8, 5), r.bits(RegLightingLutConfig, 0, 8)
}

func (r *Regs) procTexLut() (table ProcTexTable, index uint32) {
	return ProcTexTable(r.bits(RegProcTexLutConfig, 8, 4)), r.bits(RegProcTexLutConfig, 0, 8)
}

// VSOutputMap returns the number of shader output attributes sent to the
// rasterizer and, for each of them, the semantic of each component.
func (r *Regs) VSOutputMap() (n uint32, semantics [7][4]Semantic) {
	n = r.bits(RegVSOutputTotal, 0, 3)
	for i := range semantics {
		v := r.Peek(RegVSOutputAttributes + uint32(i))
		for c := range 4 {
			semantics[i][c] = Semantic(hwio.Bits32(v, uint(c*8), 5))
		}
	}
	return n, semantics
}
