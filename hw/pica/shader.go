package pica

import (
	"math/bits"

	"pica/emu/log"
)

const (
	MaxProgramCodeLength = 4096
	MaxSwizzleDataLength = 4096

	// VS writes to the program store land below this offset.
	vsProgramCodeLimit = 512

	NumFloatUniforms = 96
	NumBoolUniforms  = 16
	NumIntUniforms   = 4
)

// Uniforms is the uniform storage of one shader unit.
type Uniforms struct {
	F [NumFloatUniforms]Vec4
	B [NumBoolUniforms]bool
	I [NumIntUniforms][4]uint8
}

// ShaderSetup is the program and uniform state of one shader unit.
type ShaderSetup struct {
	Name        string
	Uniforms    Uniforms
	ProgramCode [MaxProgramCodeLength]uint32
	SwizzleData [MaxSwizzleDataLength]uint32

	// Set when the program or swizzle store changed since the last batch.
	ProgramDirty bool
	SwizzleDirty bool

	// Pending float uniform words, 3 (float24) or 4 (float32) per uniform.
	floatCounter int
	floatBuffer  [4]uint32
}

func (s *ShaderSetup) reset() {
	name := s.Name
	*s = ShaderSetup{Name: name}
}

// writeFloatUniform accumulates one data word of a float uniform upload,
// storing the uniform once all its words have been received.
func (s *ShaderSetup) writeFloatUniform(regs ShaderRegs, val uint32) {
	s.floatBuffer[s.floatCounter] = val
	s.floatCounter++

	is32 := regs.UniformFloat32()
	if (is32 && s.floatCounter < 4) || (!is32 && s.floatCounter < 3) {
		return
	}
	s.floatCounter = 0

	index := regs.UniformIndex()
	if index >= NumFloatUniforms {
		log.ModPica.ErrorZ("invalid float uniform index").
			String("shader", s.Name).
			Uint("index", uint64(index)).
			End()
		return
	}

	b := &s.floatBuffer
	u := &s.Uniforms.F[index]
	if is32 {
		// Components are written in w, z, y, x order.
		for i := range 4 {
			u[3-i] = Float24FromFloat32(f32(b[i]))
		}
	} else {
		*u = unpackVec4((*[3]uint32)(b[:3]))
	}

	log.ModPica.DebugZ("set float uniform").
		String("shader", s.Name).
		Uint("index", uint64(index)).
		Stringer("value", *u).
		End()

	regs.setUniformIndex(index + 1)
}

func (s *ShaderSetup) setBoolUniforms(v uint16) {
	for i := range s.Uniforms.B {
		s.Uniforms.B[i] = v&(1<<i) != 0
	}
}

func (s *ShaderSetup) setIntUniform(i uint32, v [4]uint8) {
	s.Uniforms.I[i] = v
	log.ModPica.DebugZ("set int uniform").
		String("shader", s.Name).
		Uint("index", uint64(i)).
		Uint("x", uint64(v[0])).
		Uint("y", uint64(v[1])).
		Uint("z", uint64(v[2])).
		Uint("w", uint64(v[3])).
		End()
}

// UnitState holds the registers of a shader unit during one invocation.
type UnitState struct {
	Input  [16]Vec4
	Output [16]Vec4

	// Emit is set while running a geometry shader and receives each
	// emitted vertex.
	Emit func(out AttributeBuffer)
}

// LoadInput copies the attributes of a vertex to the input registers
// selected by the attribute map of regs.
func (u *UnitState) LoadInput(regs ShaderRegs, input *AttributeBuffer) {
	last := regs.MaxInputAttributeIndex()
	for attr := uint32(0); attr <= last; attr++ {
		u.Input[regs.RegisterForAttribute(attr)] = input.Attr[attr]
	}
}

// WriteOutput packs the output registers enabled in the output mask of regs
// into consecutive attributes.
func (u *UnitState) WriteOutput(regs ShaderRegs, output *AttributeBuffer) {
	copyRegistersToOutput(&u.Output, regs.OutputMask(), output)
}

func copyRegistersToOutput(regs *[16]Vec4, mask uint16, output *AttributeBuffer) {
	n := 0
	for m := mask; m != 0; m &= m - 1 {
		output.Attr[n] = regs[bits.TrailingZeros16(m)]
		n++
	}
}

// ShaderEngine runs shader programs.
type ShaderEngine interface {
	// SetupBatch prepares setup for a batch of invocations starting at
	// entryPoint.
	SetupBatch(setup *ShaderSetup, entryPoint uint32)
	// Run executes the prepared program on state.
	Run(setup *ShaderSetup, state *UnitState)
}

// PassthroughEngine copies the input registers to the output registers.
// For geometry shader invocations it emits the result as one vertex.
type PassthroughEngine struct{}

func (PassthroughEngine) SetupBatch(*ShaderSetup, uint32) {}

func (PassthroughEngine) Run(_ *ShaderSetup, state *UnitState) {
	state.Output = state.Input
	if state.Emit != nil {
		var out AttributeBuffer
		out.Attr = state.Output
		state.Emit(out)
	}
}
