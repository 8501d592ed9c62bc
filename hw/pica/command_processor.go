// Package pica implements the PICA200 command processor: the register file
// written by command lists, shader uniform and program uploads, lookup
// tables, and the software vertex pipeline that feeds the rasterizer.
package pica

import (
	"encoding/binary"

	"github.com/go-faster/errors"

	"pica/emu/log"
	"pica/hw/gpu"
)

// Memory is the physical address space command lists, vertex arrays and
// index buffers are read from.
type Memory = gpu.Memory

// Rasterizer receives assembled triangles and draw calls.
type Rasterizer interface {
	AddTriangle(v0, v1, v2 *OutputVertex)
	DrawTriangles()
	// AccelerateDrawBatch draws the current batch on the host, returning
	// false if the software pipeline must be used instead.
	AccelerateDrawBatch(indexed bool) bool
	NotifyPicaRegisterChanged(id uint32)
}

// Recorder is notified of register writes and of the guest memory read by
// the command processor.
type Recorder interface {
	PicaRegisterWritten(id, val uint32, mask uint8)
	MemoryAccessed(paddr uint32, data []byte)
}

// CommandProcessor executes PICA command lists.
type CommandProcessor struct {
	State *State

	// HWShaders allows draws to be handed to the rasterizer in one batch.
	HWShaders bool

	mem      Memory
	rast     Rasterizer
	irq      gpu.InterruptSink
	engine   ShaderEngine
	rec      Recorder
	geometry *GeometryPipeline
	cache    VertexCache
	cmd      cursor
}

func NewCommandProcessor(mem Memory, rast Rasterizer, irq gpu.InterruptSink, engine ShaderEngine) *CommandProcessor {
	p := &CommandProcessor{
		State:  NewState(),
		mem:    mem,
		rast:   rast,
		irq:    irq,
		engine: engine,
	}
	p.geometry = newGeometryPipeline(p.State, rast)
	return p
}

func (p *CommandProcessor) SetRecorder(rec Recorder) { p.rec = rec }

// cursor walks the words of the command list being processed.
type cursor struct {
	addr   uint32
	buf    []byte
	pos    uint32
	length uint32
}

func (c *cursor) arm(addr uint32, buf []byte, size uint32) {
	length := size / 4
	if avail := uint32(len(buf) / 4); length > avail {
		if buf != nil {
			log.ModPica.ErrorZ("command list exceeds memory region").
				Hex32("addr", addr).
				Hex32("size", size).
				End()
		}
		length = avail
	}
	*c = cursor{addr: addr, buf: buf, length: length}
}

func (c *cursor) done() bool { return c.pos >= c.length }

func (c *cursor) next() (uint32, bool) {
	if c.done() {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(c.buf[c.pos*4:])
	c.pos++
	return v, true
}

// Command header fields.
const (
	hdrIDBits        = 16
	hdrMaskPos       = 16
	hdrExtraPos      = 20
	hdrExtraBits     = 8
	hdrGroupCommands = 1 << 31
)

// ProcessCommandList decodes and executes the command list of size bytes at
// physical address addr.
func (p *CommandProcessor) ProcessCommandList(addr, size uint32) error {
	if !p.mem.Valid(addr) {
		return errors.Wrapf(gpu.ErrInvalidAddress, "command list at %#08x", addr)
	}
	buf := p.mem.FetchPointer(addr)
	p.cmd.arm(addr, buf, size)
	if p.rec != nil {
		p.rec.MemoryAccessed(addr, buf[:p.cmd.length*4])
	}

	for !p.cmd.done() {
		// Commands are 8-byte aligned.
		if p.cmd.pos%2 != 0 {
			p.cmd.pos++
		}
		value, ok1 := p.cmd.next()
		header, ok2 := p.cmd.next()
		if !ok1 || !ok2 {
			log.ModPica.WarnZ("truncated command").Hex32("list", p.cmd.addr).End()
			break
		}

		id := header & (1<<hdrIDBits - 1)
		mask := uint8(header>>hdrMaskPos) & 0xF
		extra := header >> hdrExtraPos & (1<<hdrExtraBits - 1)
		group := header&hdrGroupCommands != 0

		p.WriteRegister(id, value, mask)
		for i := uint32(0); i < extra; i++ {
			v, ok := p.cmd.next()
			if !ok {
				log.ModPica.WarnZ("truncated command data").
					Hex32("list", p.cmd.addr).
					Hex32("id", id).
					End()
				break
			}
			reg := id
			if group {
				reg += i + 1
			}
			p.WriteRegister(reg, v, mask)
		}
	}
	return nil
}

// ProcessCommandListOrLog runs a command list, logging any error. It reports
// whether the list was executed.
func (p *CommandProcessor) ProcessCommandListOrLog(addr, size uint32) bool {
	if err := p.ProcessCommandList(addr, size); err != nil {
		log.ModPica.ErrorZ("command list aborted").
			Hex32("addr", addr).
			Hex32("size", size).
			Error("err", err).
			End()
		return false
	}
	return true
}

// WriteRegister writes value to register id, overwriting the bytes selected
// by the 4-bit mask, and performs the side effects of the write.
func (p *CommandProcessor) WriteRegister(id, value uint32, mask uint8) {
	st := p.State
	regs := st.Regs
	if !regs.WriteMasked(id, value, mask) {
		return
	}
	st.Written.Set(uint(id))
	if p.rec != nil {
		p.rec.PicaRegisterWritten(id, regs.Peek(id), mask)
	}

	vs, gs := regs.VS(), regs.GS()
	switch {
	case id == RegTriggerIRQ:
		p.irq.SignalInterrupt(gpu.P3D)

	case id == RegTriangleTopology:
		st.PrimitiveAssembler.Reconfigure(regs.TriangleTopology())

	case id == RegRestartPrimitive:
		st.PrimitiveAssembler.Reset()

	case id == RegDefaultAttribIndex:
		st.Immediate.CurrentAttribute = 0
		st.Immediate.ResetGeometryPipeline = true
		st.defaultAttrCounter = 0

	case id >= RegDefaultAttribData && id < RegDefaultAttribData+3:
		p.writeDefaultAttribute(regs.Peek(id))

	case id == RegCommandBufferTrigger, id == RegCommandBufferTrigger+1:
		i := id - RegCommandBufferTrigger
		addr, size := regs.CommandBuffer(i)
		buf := p.mem.FetchPointer(addr)
		if buf == nil {
			log.ModPica.ErrorZ("command buffer jump to invalid address").
				Hex32("addr", addr).
				End()
		}
		p.cmd.arm(addr, buf, size)

	case id == RegTriggerDraw, id == RegTriggerDrawIndexed:
		p.draw(id == RegTriggerDrawIndexed)

	case id == gs.id(shBoolUniforms):
		st.GS.setBoolUniforms(gs.BoolUniforms())

	case gs.contains(id, shIntUniforms, NumIntUniforms):
		i := id - gs.id(shIntUniforms)
		st.GS.setIntUniform(i, gs.IntUniform(i))

	case gs.contains(id, shUniformData, 8):
		st.GS.writeFloatUniform(gs, regs.Peek(id))

	case gs.contains(id, shProgramData, 8):
		off := gs.ProgramOffset()
		if off >= MaxProgramCodeLength {
			log.ModPica.ErrorZ("invalid gs program offset").Uint("offset", uint64(off)).End()
			break
		}
		st.GS.ProgramCode[off] = regs.Peek(id)
		st.GS.ProgramDirty = true
		gs.setProgramOffset(off + 1)

	case gs.contains(id, shSwizzleData, 8):
		off := gs.SwizzleOffset()
		if off >= MaxSwizzleDataLength {
			log.ModPica.ErrorZ("invalid gs swizzle offset").Uint("offset", uint64(off)).End()
			break
		}
		st.GS.SwizzleData[off] = regs.Peek(id)
		st.GS.SwizzleDirty = true
		gs.setSwizzleOffset(off + 1)

	case id == vs.id(shBoolUniforms):
		st.VS.setBoolUniforms(vs.BoolUniforms())

	case vs.contains(id, shIntUniforms, NumIntUniforms):
		i := id - vs.id(shIntUniforms)
		st.VS.setIntUniform(i, vs.IntUniform(i))

	case vs.contains(id, shUniformData, 8):
		st.VS.writeFloatUniform(vs, regs.Peek(id))

	case vs.contains(id, shProgramData, 8):
		off := vs.ProgramOffset()
		if off >= vsProgramCodeLimit {
			log.ModPica.ErrorZ("invalid vs program offset").Uint("offset", uint64(off)).End()
			break
		}
		val := regs.Peek(id)
		st.VS.ProgramCode[off] = val
		st.VS.ProgramDirty = true
		if !regs.GSExclusiveConfig() {
			st.GS.ProgramCode[off] = val
			st.GS.ProgramDirty = true
		}
		vs.setProgramOffset(off + 1)

	case vs.contains(id, shSwizzleData, 8):
		off := vs.SwizzleOffset()
		if off >= MaxSwizzleDataLength {
			log.ModPica.ErrorZ("invalid vs swizzle offset").Uint("offset", uint64(off)).End()
			break
		}
		val := regs.Peek(id)
		st.VS.SwizzleData[off] = val
		st.VS.SwizzleDirty = true
		if !regs.GSExclusiveConfig() {
			st.GS.SwizzleData[off] = val
			st.GS.SwizzleDirty = true
		}
		vs.setSwizzleOffset(off + 1)

	case id >= RegLightingLutData && id < RegLightingLutData+8:
		st.Luts.writeLighting(regs, regs.Peek(id))

	case id >= RegFogLutData && id < RegFogLutData+8:
		st.Luts.writeFog(regs, regs.Peek(id))

	case id >= RegProcTexLutData && id < RegProcTexLutData+8:
		st.Luts.writeProcTex(regs, regs.Peek(id))
	}

	p.rast.NotifyPicaRegisterChanged(id)
}

// writeDefaultAttribute accumulates a default attribute word. The first 15
// attributes set default values; attribute 15 feeds immediate-mode vertices.
func (p *CommandProcessor) writeDefaultAttribute(val uint32) {
	st := p.State
	st.defaultAttrBuffer[st.defaultAttrCounter] = val
	st.defaultAttrCounter++
	if st.defaultAttrCounter < 3 {
		return
	}
	st.defaultAttrCounter = 0

	attr := unpackVec4(&st.defaultAttrBuffer)
	index := st.Regs.DefaultAttribIndex()
	log.ModPica.DebugZ("default attribute").
		Uint("index", uint64(index)).
		Float("x", attr[0].Float32()).
		Float("y", attr[1].Float32()).
		Float("z", attr[2].Float32()).
		Float("w", attr[3].Float32()).
		End()
	if index < 15 {
		st.DefaultAttributes.Attr[index] = attr
		st.Regs.setDefaultAttribIndex(index + 1)
		return
	}

	imm := &st.Immediate
	imm.Input.Attr[imm.CurrentAttribute] = attr
	if imm.CurrentAttribute < st.Regs.MaxInputAttribIndex() {
		imm.CurrentAttribute++
		return
	}
	imm.CurrentAttribute = 0

	vs := st.Regs.VS()
	p.engine.SetupBatch(&st.VS, vs.MainOffset())
	var unit UnitState
	var out AttributeBuffer
	unit.LoadInput(vs, &imm.Input)
	p.engine.Run(&st.VS, &unit)
	unit.WriteOutput(vs, &out)

	if imm.ResetGeometryPipeline {
		p.geometry.Reconfigure()
		imm.ResetGeometryPipeline = false
	}
	p.geometry.Setup(p.engine)
	p.geometry.SubmitVertex(&out)
	p.rast.DrawTriangles()
}

// draw runs a draw call, indexed or not.
func (p *CommandProcessor) draw(indexed bool) {
	st := p.State
	regs := st.Regs

	accelerate := p.HWShaders && st.PrimitiveAssembler.IsEmpty()
	if !regs.UseGS() {
		switch st.PrimitiveAssembler.Topology() {
		case TopologyList, TopologyShader:
			accelerate = accelerate && regs.NumVertices()%3 == 0
		}
	} else {
		accelerate = false
	}
	if accelerate && p.rast.AccelerateDrawBatch(indexed) {
		return
	}

	base := regs.VertexBaseAddress()
	loader := NewVertexLoader(regs)

	var acc *accessTracker
	if p.rec != nil {
		acc = &accessTracker{}
	}

	vs := regs.VS()
	p.engine.SetupBatch(&st.VS, vs.MainOffset())
	p.geometry.Reconfigure()
	p.geometry.Setup(p.engine)

	count := regs.NumVertices()
	var indices []byte
	offset, u16 := regs.IndexArray()
	if indexed {
		size := count
		if u16 {
			size *= 2
		}
		indices = p.mem.FetchPointer(base + offset)
		if uint32(len(indices)) < size {
			log.ModPica.ErrorZ("index buffer outside memory").
				Hex32("addr", base+offset).
				Uint("count", uint64(count)).
				End()
			return
		}
		acc.add(base+offset, size)
		p.cache.Reset()
	}

	var (
		unit   UnitState
		input  AttributeBuffer
		output AttributeBuffer
	)
	for i := range count {
		vertex := i + regs.VertexOffset()
		if indexed {
			if u16 {
				vertex = uint32(binary.LittleEndian.Uint16(indices[i*2:]))
			} else {
				vertex = uint32(indices[i])
			}
			if p.geometry.NeedIndexInput() {
				p.geometry.SubmitIndex(vertex)
				continue
			}
			if out, ok := p.cache.Lookup(vertex); ok {
				p.geometry.SubmitVertex(out)
				continue
			}
		}

		loader.LoadVertex(p.mem, base, vertex, &st.DefaultAttributes, &input, acc)
		unit.LoadInput(vs, &input)
		p.engine.Run(&st.VS, &unit)
		unit.WriteOutput(vs, &output)
		if indexed {
			p.cache.Insert(vertex, &output)
		}
		p.geometry.SubmitVertex(&output)
	}

	if acc != nil {
		acc.forEach(func(addr, size uint32) {
			if buf := p.mem.FetchPointer(addr); uint32(len(buf)) >= size {
				p.rec.MemoryAccessed(addr, buf[:size])
			}
		})
	}
	p.rast.DrawTriangles()
}
