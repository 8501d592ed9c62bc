package pica

import (
	"encoding/binary"
	"math"

	"pica/emu/log"
	"pica/hw/hwio"
)

// AttributeFormat is the element type of a vertex array attribute.
type AttributeFormat uint32

const (
	FormatByte AttributeFormat = iota
	FormatUByte
	FormatShort
	FormatFloat
)

func (f AttributeFormat) size() uint32 {
	switch f {
	case FormatFloat:
		return 4
	case FormatShort:
		return 2
	}
	return 1
}

const (
	numLoaders          = 12
	numArrayAttributes  = 12
	loaderRegs          = 3
	maxLoaderComponents = 12
)

// VertexLoader reads vertex attributes from the vertex arrays described by
// the attribute registers.
type VertexLoader struct {
	numAttributes uint32
	sources       [16]uint32
	strides       [16]uint32
	formats       [16]AttributeFormat
	elements      [16]uint32
	isDefault     [16]bool
}

// NewVertexLoader decodes the attribute layout from regs.
func NewVertexLoader(regs *Regs) *VertexLoader {
	l := &VertexLoader{}
	lo, hi := regs.Peek(RegVertexAttribFormatLow), regs.Peek(RegVertexAttribFormatHigh)
	format := uint64(hi)<<32 | uint64(lo)

	l.numAttributes = uint32(format>>60) + 1
	mask := uint32(format>>48) & 0xFFF
	for i := range l.isDefault {
		l.isDefault[i] = i >= numArrayAttributes || mask&(1<<i) != 0
	}

	attrFormat := func(i uint32) (AttributeFormat, uint32) {
		d := format >> (4 * i)
		return AttributeFormat(d & 3), uint32(d>>2)&3 + 1
	}

	for loader := range uint32(numLoaders) {
		base := RegAttribLoaders + loader*loaderRegs
		dataOffset := regs.Peek(base)
		comps := uint64(regs.Peek(base+2)&0xFFFF)<<32 | uint64(regs.Peek(base+1))
		byteCount := hwio.Bits32(regs.Peek(base+2), 16, 8)
		count := hwio.Bits32(regs.Peek(base+2), 28, 4)

		offset := uint32(0)
		for comp := range count {
			if comp >= maxLoaderComponents {
				log.ModPica.ErrorZ("vertex loader component out of range").
					Uint("loader", uint64(loader)).
					Uint("component", uint64(comp)).
					End()
				continue
			}
			attr := uint32(comps>>(4*comp)) & 0xF
			if attr < numArrayAttributes {
				f, n := attrFormat(attr)
				offset = alignUp(offset, f.size())
				l.sources[attr] = dataOffset + offset
				l.strides[attr] = byteCount
				l.formats[attr] = f
				l.elements[attr] = n
				offset += n * f.size()
			} else {
				// Ids 12-15 are 4, 8, 12 and 16 bytes of padding.
				offset = alignUp(offset, 4)
				offset += (attr - 11) * 4
			}
		}
	}
	return l
}

func alignUp(v, align uint32) uint32 {
	return (v + align - 1) / align * align
}

// LoadVertex loads the attributes of one vertex into input. vertex is the
// vertex number within the arrays; attributes not backed by an array take
// their default value if configured so, or are left untouched.
func (l *VertexLoader) LoadVertex(mem Memory, base, vertex uint32, defaults *AttributeBuffer, input *AttributeBuffer, acc *accessTracker) {
	for i := range min(l.numAttributes, 16) {
		switch {
		case l.elements[i] != 0:
			addr := base + l.sources[i] + l.strides[i]*vertex
			f, n := l.formats[i], l.elements[i]
			size := n * f.size()
			acc.add(addr, size)

			buf := mem.FetchPointer(addr)
			if uint32(len(buf)) < size {
				log.ModPica.ErrorZ("vertex attribute outside memory").
					Uint("attr", uint64(i)).
					Hex32("addr", addr).
					End()
				buf = make([]byte, size)
			}
			for comp := range n {
				input.Attr[i][comp] = readElement(f, buf[comp*f.size():])
			}
			// Missing components are (0, 0, 0, 1), regardless of the
			// default attribute.
			for comp := n; comp < 4; comp++ {
				input.Attr[i][comp] = 0
				if comp == 3 {
					input.Attr[i][comp] = 1
				}
			}
		case l.isDefault[i]:
			input.Attr[i] = defaults.Attr[i]
		}
	}
}

func readElement(f AttributeFormat, b []byte) Float24 {
	switch f {
	case FormatByte:
		return Float24(int8(b[0]))
	case FormatUByte:
		return Float24(b[0])
	case FormatShort:
		return Float24(int16(binary.LittleEndian.Uint16(b)))
	default:
		return Float24(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}
}
