package pica

import (
	"math"

	"pica/emu/log"
)

// Semantic identifies a rasterizer input slot a shader output component is
// mapped to.
type Semantic uint8

const (
	SemPositionX  Semantic = 0
	SemQuatX      Semantic = 4
	SemColorR     Semantic = 8
	SemTexCoord0  Semantic = 12
	SemTexCoord1  Semantic = 14
	SemTexCoord0W Semantic = 16
	SemViewX      Semantic = 18
	SemTexCoord2  Semantic = 22
	SemInvalid    Semantic = 31

	numSemantics = 24
)

// OutputVertex is a vertex as handed to the rasterizer, indexed by
// Semantic.
type OutputVertex [numSemantics]Float24

func (v *OutputVertex) Pos() Vec4   { return Vec4(v[SemPositionX : SemPositionX+4]) }
func (v *OutputVertex) Quat() Vec4  { return Vec4(v[SemQuatX : SemQuatX+4]) }
func (v *OutputVertex) Color() Vec4 { return Vec4(v[SemColorR : SemColorR+4]) }

// TexCoord returns texture coordinate set i (0-2).
func (v *OutputVertex) TexCoord(i int) [2]Float24 {
	sem := [3]Semantic{SemTexCoord0, SemTexCoord1, SemTexCoord2}[i]
	return [2]Float24(v[sem : sem+2])
}

func (v *OutputVertex) TexCoord0W() Float24 { return v[SemTexCoord0W] }
func (v *OutputVertex) View() [3]Float24    { return [3]Float24(v[SemViewX : SemViewX+3]) }

// MakeOutputVertex maps shader output attributes to rasterizer semantics
// according to the output map of regs.
func MakeOutputVertex(regs *Regs, output *AttributeBuffer) OutputVertex {
	var ret OutputVertex
	n, semantics := regs.VSOutputMap()
	for i := range min(n, 7) {
		for comp, sem := range semantics[i] {
			switch {
			case sem < numSemantics:
				ret[sem] = output.Attr[i][comp]
			case sem != SemInvalid:
				log.ModPica.ErrorZ("invalid output semantic").
					Uint("attr", uint64(i)).
					Uint("semantic", uint64(sem)).
					End()
			}
		}
	}

	// Colors are taken as absolute and saturated before interpolation.
	for i := SemColorR; i < SemColorR+4; i++ {
		c := float32(math.Abs(float64(ret[i])))
		ret[i] = Float24(min(c, 1))
	}
	return ret
}
