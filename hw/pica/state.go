package pica

import "pica/hw/hwio"

// State is the complete PICA state: the register file, both shader units,
// default and immediate-mode vertex attributes and lookup tables. It is owned
// by a CommandProcessor and only mutated by the goroutine running it.
type State struct {
	Regs *Regs
	VS   ShaderSetup
	GS   ShaderSetup

	DefaultAttributes AttributeBuffer
	Immediate         ImmediateState
	Luts              LookupTables

	PrimitiveAssembler *PrimitiveAssembler[OutputVertex]

	// Written has a bit set for every register written since reset.
	Written hwio.Bitset

	defaultAttrCounter int
	defaultAttrBuffer  [3]uint32
}

// ImmediateState holds the vertex being built in immediate mode.
type ImmediateState struct {
	Input            AttributeBuffer
	CurrentAttribute uint32
	// Set when the geometry pipeline must be reconfigured before the next
	// immediate-mode vertex.
	ResetGeometryPipeline bool
}

func NewState() *State {
	s := &State{
		Regs:               NewRegs(),
		PrimitiveAssembler: NewPrimitiveAssembler[OutputVertex](TopologyList),
		Written:            hwio.NewBitset(NumRegs),
	}
	s.VS.Name = "vs"
	s.GS.Name = "gs"
	return s
}

// Reset puts the state back to power-on values.
func (s *State) Reset() {
	s.Regs.Reset()
	s.VS.reset()
	s.GS.reset()
	s.DefaultAttributes = AttributeBuffer{}
	s.Immediate = ImmediateState{}
	s.Luts = LookupTables{}
	s.PrimitiveAssembler.Reconfigure(TopologyList)
	s.Written.ClearRange(0, NumRegs)
	s.defaultAttrCounter = 0
}

// WrittenRegisters returns the ids of the registers written since reset, in
// increasing order.
func (s *State) WrittenRegisters() []uint32 {
	ids := make([]uint32, 0, s.Written.Count())
	s.Written.ForEach(func(i uint) { ids = append(ids, uint32(i)) })
	return ids
}

// unpackVec4 decodes 4 float24 packed in 3 words, w first.
func unpackVec4(b *[3]uint32) Vec4 {
	return Vec4{
		Float24FromRaw(b[2] & 0xFFFFFF),
		Float24FromRaw((b[1]&0xFFFF)<<8 | (b[2]>>24)&0xFF),
		Float24FromRaw((b[0]&0xFF)<<16 | (b[1]>>16)&0xFFFF),
		Float24FromRaw(b[0] >> 8),
	}
}
