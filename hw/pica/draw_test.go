package pica

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDrawArrays(t *testing.T) {
	tp := newTestProcessor(t)
	tp.setupPositionOnly()
	tp.putFloats(testMem,
		9, 9, 9, // skipped by the vertex offset
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	)
	tp.write(RegVertexOffset, 1)
	tp.write(RegNumVertices, 3)
	tp.write(RegTriggerDraw, 1)

	want := [][3]OutputVertex{{pos(0, 0, 0, 1), pos(1, 0, 0, 1), pos(0, 1, 0, 1)}}
	if diff := cmp.Diff(want, tp.rast.triangles); diff != "" {
		t.Errorf("triangles mismatch (-want +got):\n%s", diff)
	}
	if tp.rast.draws != 1 {
		t.Errorf("draws = %d, want 1", tp.rast.draws)
	}
	if got := tp.engine.runs["vs"]; got != 3 {
		t.Errorf("vs runs = %d, want 3", got)
	}
}

func TestDrawElementsVertexCache(t *testing.T) {
	for _, u16 := range []bool{false, true} {
		tp := newTestProcessor(t)
		tp.setupPositionOnly()
		for v := range 8 {
			tp.putFloats(testMem+uint32(v)*12, float32(v), 0, 0)
		}

		const indexOff = 0x1000
		idx := []uint32{2, 5, 5, 5, 7, 2}
		if u16 {
			tp.putWords(testMem+indexOff, 5<<16|2, 5<<16|5, 2<<16|7)
			tp.write(RegIndexArray, 1<<31|indexOff)
		} else {
			tp.putWords(testMem+indexOff, 5<<24|5<<16|5<<8|2, 2<<8|7)
			tp.write(RegIndexArray, indexOff)
		}
		tp.write(RegNumVertices, uint32(len(idx)))
		tp.write(RegTriggerDrawIndexed, 1)

		if got := tp.engine.runs["vs"]; got != 3 {
			t.Errorf("u16=%v: vs runs = %d, want 3", u16, got)
		}
		var want [][3]OutputVertex
		for i := 0; i < len(idx); i += 3 {
			want = append(want, [3]OutputVertex{
				pos(float32(idx[i]), 0, 0, 1),
				pos(float32(idx[i+1]), 0, 0, 1),
				pos(float32(idx[i+2]), 0, 0, 1),
			})
		}
		if diff := cmp.Diff(want, tp.rast.triangles); diff != "" {
			t.Errorf("u16=%v: triangles mismatch (-want +got):\n%s", u16, diff)
		}
	}
}

func TestDrawIndexOutOfMemory(t *testing.T) {
	tp := newTestProcessor(t)
	tp.setupPositionOnly()
	tp.write(RegIndexArray, testMemSize-2)
	tp.write(RegNumVertices, 3)
	tp.write(RegTriggerDrawIndexed, 1)
	if tp.rast.draws != 0 || len(tp.engine.runs) != 0 {
		t.Errorf("draw went ahead: draws=%d runs=%v", tp.rast.draws, tp.engine.runs)
	}
}

func TestDrawAccelerated(t *testing.T) {
	tests := []struct {
		name     string
		topology Topology
		count    uint32
		useGS    bool
		pending  bool
		want     bool
	}{
		{"list", TopologyList, 6, false, false, true},
		{"list unaligned", TopologyList, 4, false, false, false},
		{"shader unaligned", TopologyShader, 5, false, false, false},
		{"strip", TopologyStrip, 4, false, false, true},
		{"geometry shader", TopologyList, 3, true, false, false},
		{"pending vertices", TopologyList, 3, false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp := newTestProcessor(t)
			tp.HWShaders = true
			tp.rast.accelerate = true
			tp.setupPositionOnly()
			tp.write(RegTriangleTopology, uint32(tt.topology)<<8)
			if tt.useGS {
				tp.write(RegUseGS, 2<<8)
			}
			if tt.pending {
				v := pos(0, 0, 0, 1)
				tp.State.PrimitiveAssembler.SubmitVertex(&v, nil)
			}
			tp.write(RegNumVertices, tt.count)
			tp.write(RegTriggerDrawIndexed, 1)

			called := len(tp.rast.accelerated) == 1
			if called != tt.want {
				t.Errorf("accelerate called = %v, want %v", called, tt.want)
			}
			if tt.want && len(tp.engine.runs) != 0 {
				t.Errorf("software path ran after accelerated draw: %v", tp.engine.runs)
			}
		})
	}
}

func TestDrawAcceleratedRefused(t *testing.T) {
	tp := newTestProcessor(t)
	tp.HWShaders = true
	tp.setupPositionOnly()
	tp.write(RegNumVertices, 3)
	tp.write(RegTriggerDraw, 1)
	if diff := cmp.Diff([]bool{false}, tp.rast.accelerated); diff != "" {
		t.Errorf("accelerate calls mismatch (-want +got):\n%s", diff)
	}
	if tp.engine.runs["vs"] != 3 || tp.rast.draws != 1 {
		t.Errorf("software path: runs=%v draws=%d", tp.engine.runs, tp.rast.draws)
	}
}

func TestDefaultAttributes(t *testing.T) {
	tp := newTestProcessor(t)
	tp.write(RegDefaultAttribIndex, 3)
	for _, v := range [][4]float32{{1, 2, 3, 4}, {5, 6, 7, 8}} {
		for i, w := range pack24(v[0], v[1], v[2], v[3]) {
			tp.write(RegDefaultAttribData+uint32(i), w)
		}
	}
	want := []Vec4{MakeVec4(1, 2, 3, 4), MakeVec4(5, 6, 7, 8)}
	if diff := cmp.Diff(want, tp.State.DefaultAttributes.Attr[3:5]); diff != "" {
		t.Errorf("default attributes mismatch (-want +got):\n%s", diff)
	}
	if got := tp.State.Regs.DefaultAttribIndex(); got != 5 {
		t.Errorf("index = %d, want 5", got)
	}
}

func TestDefaultAttributeLoaded(t *testing.T) {
	tp := newTestProcessor(t)
	tp.setupPositionOnly()

	// Attribute 1 has no array and takes its default value.
	tp.write(RegVertexAttribFormatHigh, 1<<28|1<<17)
	tp.write(RegVSBase+shInputConfig, 1)
	tp.write(RegVSBase+shInputMapLow, 0x10)
	tp.write(RegVSBase+shOutputMask, 0x3)
	tp.write(RegVSOutputTotal, 2)
	tp.write(RegVSOutputAttributes+1, 0x0B0A0908)

	tp.write(RegDefaultAttribIndex, 1)
	for i, w := range pack24(0.5, 0.25, 2, -1) {
		tp.write(RegDefaultAttribData+uint32(i), w)
	}
	tp.write(RegNumVertices, 3)
	tp.write(RegTriggerDraw, 1)

	if len(tp.rast.triangles) != 1 {
		t.Fatalf("triangles = %d, want 1", len(tp.rast.triangles))
	}
	// Colors are saturated absolute values.
	if got, want := tp.rast.triangles[0][2].Color(), MakeVec4(0.5, 0.25, 1, 1); got != want {
		t.Errorf("color = %v, want %v", got, want)
	}
}

func TestImmediateMode(t *testing.T) {
	tp := newTestProcessor(t)
	tp.setupPositionOnly()
	tp.write(RegMaxInputAttribIndex, 0)
	tp.write(RegDefaultAttribIndex, 15)

	for _, v := range [][2]float32{{0, 0}, {1, 0}, {0, 1}} {
		for i, w := range pack24(v[0], v[1], 0, 1) {
			tp.write(RegDefaultAttribData+uint32(i), w)
		}
	}

	if got := tp.engine.runs["vs"]; got != 3 {
		t.Errorf("vs runs = %d, want 3", got)
	}
	if tp.rast.draws != 3 {
		t.Errorf("draws = %d, want 3", tp.rast.draws)
	}
	want := [][3]OutputVertex{{pos(0, 0, 0, 1), pos(1, 0, 0, 1), pos(0, 1, 0, 1)}}
	if diff := cmp.Diff(want, tp.rast.triangles); diff != "" {
		t.Errorf("triangles mismatch (-want +got):\n%s", diff)
	}
	if tp.State.Immediate.ResetGeometryPipeline {
		t.Errorf("geometry pipeline reset still pending")
	}
}

func TestImmediateModeMultipleAttributes(t *testing.T) {
	tp := newTestProcessor(t)
	tp.write(RegMaxInputAttribIndex, 1)
	tp.write(RegDefaultAttribIndex, 15)
	for range 3 {
		tp.write(RegDefaultAttribData, 0)
	}
	if len(tp.engine.runs) != 0 {
		t.Fatalf("shader ran before all attributes were supplied")
	}
	if got := tp.State.Immediate.CurrentAttribute; got != 1 {
		t.Errorf("current attribute = %d, want 1", got)
	}
	for range 3 {
		tp.write(RegDefaultAttribData, 0)
	}
	if got := tp.engine.runs["vs"]; got != 1 {
		t.Errorf("vs runs = %d, want 1", got)
	}
}

func TestGeometryShaderPoint(t *testing.T) {
	tp := newTestProcessor(t)
	tp.setupPositionOnly()
	tp.putFloats(testMem, 0, 0, 0, 1, 0, 0, 0, 1, 0)

	tp.write(RegUseGS, 2<<8)
	tp.write(RegGSConfig, uint32(GSPoint))
	tp.write(RegGSBase+shOutputMask, 1)
	tp.write(RegGSBase+shMainOffset, 0x20)
	tp.write(RegNumVertices, 3)
	tp.write(RegTriggerDraw, 1)

	if got := tp.engine.runs["gs"]; got != 3 {
		t.Errorf("gs runs = %d, want 3", got)
	}
	if diff := cmp.Diff([]uint32{0, 0x20}, tp.engine.batches); diff != "" {
		t.Errorf("batches mismatch (-want +got):\n%s", diff)
	}
	want := [][3]OutputVertex{{pos(0, 0, 0, 1), pos(1, 0, 0, 1), pos(0, 1, 0, 1)}}
	if diff := cmp.Diff(want, tp.rast.triangles); diff != "" {
		t.Errorf("triangles mismatch (-want +got):\n%s", diff)
	}
}

func TestGeometryShaderFixedPrimitive(t *testing.T) {
	tp := newTestProcessor(t)
	tp.setupPositionOnly()
	tp.putFloats(testMem, 1, 2, 3, 4, 5, 6)

	tp.write(RegUseGS, 2<<8)
	tp.write(RegGSConfig, 40<<16|1<<8|uint32(GSFixedPrimitive))
	tp.write(RegNumVertices, 2)
	tp.write(RegTriggerDraw, 1)

	if got := tp.engine.runs["gs"]; got != 1 {
		t.Errorf("gs runs = %d, want 1", got)
	}
	want := []Vec4{MakeVec4(1, 2, 3, 1), MakeVec4(4, 5, 6, 1)}
	if diff := cmp.Diff(want, tp.State.GS.Uniforms.F[40:42]); diff != "" {
		t.Errorf("gs uniforms mismatch (-want +got):\n%s", diff)
	}
}

func TestGeometryShaderIndexInput(t *testing.T) {
	tp := newTestProcessor(t)
	tp.setupPositionOnly()
	tp.write(RegUseGS, 2<<8)
	tp.write(RegGSConfig, uint32(GSIndexInput))
	tp.putWords(testMem+0x100, 0x00030201)
	tp.write(RegIndexArray, 0x100)
	tp.write(RegNumVertices, 3)
	tp.write(RegTriggerDrawIndexed, 1)

	if got := tp.engine.runs["vs"]; got != 0 {
		t.Errorf("vs runs = %d, want 0", got)
	}
	if got := tp.engine.runs["gs"]; got != 3 {
		t.Errorf("gs runs = %d, want 3", got)
	}
}

func TestTopologyRegisters(t *testing.T) {
	tp := newTestProcessor(t)
	tp.write(RegTriangleTopology, uint32(TopologyFan)<<8)
	if got := tp.State.PrimitiveAssembler.Topology(); got != TopologyFan {
		t.Errorf("topology = %v, want %v", got, TopologyFan)
	}
	v := pos(0, 0, 0, 1)
	tp.State.PrimitiveAssembler.SubmitVertex(&v, nil)
	tp.write(RegRestartPrimitive, 1)
	if !tp.State.PrimitiveAssembler.IsEmpty() {
		t.Errorf("assembler not reset")
	}
}
