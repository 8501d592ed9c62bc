package pica

import "pica/emu/log"

// TriangleHandler receives assembled triangles.
type TriangleHandler[V any] func(v0, v1, v2 *V)

// PrimitiveAssembler groups a stream of vertices into triangles according to
// a topology.
type PrimitiveAssembler[V any] struct {
	topology   Topology
	buffer     [2]V
	index      int
	stripReady bool
	winding    bool
}

func NewPrimitiveAssembler[V any](topology Topology) *PrimitiveAssembler[V] {
	return &PrimitiveAssembler[V]{topology: topology}
}

// SubmitVertex queues vtx, calling handler for each completed triangle.
func (pa *PrimitiveAssembler[V]) SubmitVertex(vtx *V, handler TriangleHandler[V]) {
	switch pa.topology {
	case TopologyList, TopologyShader:
		if pa.index < 2 {
			pa.buffer[pa.index] = *vtx
			pa.index++
			return
		}
		pa.index = 0
		if pa.topology == TopologyShader && pa.winding {
			handler(&pa.buffer[1], &pa.buffer[0], vtx)
			pa.winding = false
		} else {
			handler(&pa.buffer[0], &pa.buffer[1], vtx)
		}

	case TopologyStrip, TopologyFan:
		if pa.stripReady {
			handler(&pa.buffer[0], &pa.buffer[1], vtx)
		}
		pa.buffer[pa.index] = *vtx
		pa.stripReady = pa.stripReady || pa.index == 1
		if pa.topology == TopologyStrip {
			pa.index ^= 1
		} else {
			pa.index = 1
		}

	default:
		log.ModPica.ErrorZ("unknown triangle topology").
			Uint("topology", uint64(pa.topology)).
			End()
	}
}

// SetWinding reverses the winding of the next triangle in shader topology.
func (pa *PrimitiveAssembler[V]) SetWinding() { pa.winding = true }

func (pa *PrimitiveAssembler[V]) Reset() {
	pa.index = 0
	pa.stripReady = false
	pa.winding = false
}

// Reconfigure resets the assembler and switches it to topology.
func (pa *PrimitiveAssembler[V]) Reconfigure(topology Topology) {
	pa.Reset()
	pa.topology = topology
}

// IsEmpty reports whether no vertices of an unfinished triangle are queued.
func (pa *PrimitiveAssembler[V]) IsEmpty() bool {
	return pa.index == 0 && !pa.stripReady
}

func (pa *PrimitiveAssembler[V]) Topology() Topology { return pa.topology }
