package pica

import (
	"math/bits"

	"pica/emu/log"
)

// geometryBackend collects vertex shader output into geometry shader input.
// Submit methods return true when an invocation is ready to run.
type geometryBackend interface {
	IsEmpty() bool
	NeedIndexInput() bool
	SubmitIndex(index uint32) bool
	SubmitVertex(vtx *AttributeBuffer) bool
}

// GeometryPipeline sits between the vertex shader and primitive assembly.
// With the geometry shader disabled vertices go straight to the assembler,
// otherwise they are batched into geometry shader invocations whose emitted
// vertices are assembled instead.
type GeometryPipeline struct {
	state   *State
	rast    Rasterizer
	backend geometryBackend
	engine  ShaderEngine
	unit    UnitState
}

func newGeometryPipeline(state *State, rast Rasterizer) *GeometryPipeline {
	g := &GeometryPipeline{state: state, rast: rast}
	g.unit.Emit = g.emit
	return g
}

// Reconfigure selects the backend for the current geometry stage
// configuration.
func (g *GeometryPipeline) Reconfigure() {
	if g.backend != nil && !g.backend.IsEmpty() {
		log.ModPica.WarnZ("geometry pipeline reconfigured with pending input").End()
	}

	regs := g.state.Regs
	if !regs.UseGS() {
		g.backend = nil
		return
	}

	vsOutputs := bits.OnesCount16(regs.VS().OutputMask())
	gs := &g.state.GS
	switch mode := regs.GSMode(); mode {
	case GSPoint:
		g.backend = &gsPoint{
			unit:      &g.unit,
			regs:      regs.GS(),
			vsOutputs: vsOutputs,
			size:      int(regs.GS().MaxInputAttributeIndex()) + 1,
		}
	case GSVariablePrimitive:
		g.backend = &gsPrimitive{
			setup:     gs,
			vsOutputs: vsOutputs,
			start:     int(regs.GSStartIndex()),
			variable:  true,
		}
	case GSFixedPrimitive:
		g.backend = &gsPrimitive{
			setup:     gs,
			vsOutputs: vsOutputs,
			start:     int(regs.GSStartIndex()),
			vertices:  int(regs.GSFixedVertexCount()),
		}
	case GSIndexInput:
		g.backend = &gsIndex{unit: &g.unit, regs: regs.GS()}
	default:
		log.ModPica.ErrorZ("unknown geometry shader mode").Stringer("mode", mode).End()
		g.backend = nil
	}
}

// Setup prepares the geometry shader for a batch.
func (g *GeometryPipeline) Setup(engine ShaderEngine) {
	if g.backend == nil {
		return
	}
	g.engine = engine
	engine.SetupBatch(&g.state.GS, g.state.Regs.GS().MainOffset())
}

// IsEmpty reports whether no partial geometry shader input is pending.
func (g *GeometryPipeline) IsEmpty() bool {
	return g.backend == nil || g.backend.IsEmpty()
}

// NeedIndexInput reports whether the pipeline consumes raw vertex indices
// instead of vertex shader output.
func (g *GeometryPipeline) NeedIndexInput() bool {
	return g.backend != nil && g.backend.NeedIndexInput()
}

func (g *GeometryPipeline) SubmitIndex(index uint32) {
	if g.backend.SubmitIndex(index) {
		g.run()
	}
}

func (g *GeometryPipeline) SubmitVertex(vtx *AttributeBuffer) {
	if g.backend == nil {
		g.assemble(vtx)
		return
	}
	if g.backend.SubmitVertex(vtx) {
		g.run()
	}
}

func (g *GeometryPipeline) run() {
	g.engine.Run(&g.state.GS, &g.unit)
}

// emit receives the output registers of a geometry shader emit.
func (g *GeometryPipeline) emit(out AttributeBuffer) {
	var vtx AttributeBuffer
	copyRegistersToOutput(&out.Attr, g.state.Regs.GS().OutputMask(), &vtx)
	g.assemble(&vtx)
}

func (g *GeometryPipeline) assemble(vtx *AttributeBuffer) {
	ov := MakeOutputVertex(g.state.Regs, vtx)
	g.state.PrimitiveAssembler.SubmitVertex(&ov, g.rast.AddTriangle)
}

// gsPoint packs the output of consecutive vertices into the input
// attributes of one invocation.
type gsPoint struct {
	unit      *UnitState
	regs      ShaderRegs
	vsOutputs int
	size      int

	buf AttributeBuffer
	cur int
}

func (p *gsPoint) IsEmpty() bool        { return p.cur == 0 }
func (p *gsPoint) NeedIndexInput() bool { return false }

func (p *gsPoint) SubmitIndex(uint32) bool {
	log.ModPica.ErrorZ("index submitted to point geometry pipeline").End()
	return false
}

func (p *gsPoint) SubmitVertex(vtx *AttributeBuffer) bool {
	n := min(p.vsOutputs, p.size-p.cur)
	copy(p.buf.Attr[p.cur:p.cur+n], vtx.Attr[:n])
	p.cur += n
	if p.cur < p.size {
		return false
	}
	p.cur = 0
	p.unit.LoadInput(p.regs, &p.buf)
	return true
}

// gsPrimitive writes the output of the vertices of a primitive to the
// geometry shader float uniforms, starting at a configured index. Variable
// primitives are preceded by a header vertex whose first component holds
// the number of vertices that follow.
type gsPrimitive struct {
	setup     *ShaderSetup
	vsOutputs int
	start     int
	vertices  int
	variable  bool

	haveHeader bool
	count      int
	received   int
}

func (p *gsPrimitive) IsEmpty() bool        { return p.received == 0 && !p.haveHeader }
func (p *gsPrimitive) NeedIndexInput() bool { return false }

func (p *gsPrimitive) SubmitIndex(uint32) bool {
	log.ModPica.ErrorZ("index submitted to primitive geometry pipeline").End()
	return false
}

func (p *gsPrimitive) SubmitVertex(vtx *AttributeBuffer) bool {
	if p.variable && !p.haveHeader {
		p.count = int(vtx.Attr[0][0])
		if p.count <= 0 {
			return true
		}
		p.haveHeader = true
		return false
	}
	count := p.vertices
	if p.variable {
		count = p.count
	}

	u := p.start + p.received*p.vsOutputs
	for i := 0; i < p.vsOutputs && u+i < NumFloatUniforms; i++ {
		p.setup.Uniforms.F[u+i] = vtx.Attr[i]
	}
	p.received++
	if p.received < count {
		return false
	}
	p.received = 0
	p.haveHeader = false
	return true
}

// gsIndex runs one invocation per vertex index, with the index in the x
// component of the first input attribute.
type gsIndex struct {
	unit *UnitState
	regs ShaderRegs
}

func (p *gsIndex) IsEmpty() bool        { return true }
func (p *gsIndex) NeedIndexInput() bool { return true }

func (p *gsIndex) SubmitIndex(index uint32) bool {
	var buf AttributeBuffer
	buf.Attr[0] = Vec4{Float24(index), 0, 0, 1}
	p.unit.LoadInput(p.regs, &buf)
	return true
}

func (p *gsIndex) SubmitVertex(*AttributeBuffer) bool {
	log.ModPica.ErrorZ("vertex submitted to index geometry pipeline").End()
	return false
}
