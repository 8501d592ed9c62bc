package pica

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestVertexLoaderFormats(t *testing.T) {
	tp := newTestProcessor(t)
	regs := tp.State.Regs

	// Loader 0: attr 0 (3 x byte), padding 4, attr 1 (2 x short),
	// attr 2 (1 x ubyte), attr 3 (4 x float). Stride 32.
	regs.Set(RegVertexAttribFormatLow,
		uint32(2<<2|FormatByte)|
			uint32(1<<2|FormatShort)<<4|
			uint32(0<<2|FormatUByte)<<8|
			uint32(3<<2|FormatFloat)<<12)
	regs.Set(RegVertexAttribFormatHigh, 3<<28)
	regs.Set(RegAttribLoaders, 0x10)
	regs.Set(RegAttribLoaders+1, 0x000321C0)
	regs.Set(RegAttribLoaders+2, 5<<28|32<<16)

	base := uint32(testMem)
	v := tp.mem.Data[0x10+32:]
	v[0], v[1], v[2] = 0xFF, 2, 0x80 // -1, 2, -128
	// padding at 3..7, shorts aligned to 8
	v[8], v[9] = 0xFE, 0xFF // -2
	v[10], v[11] = 0x00, 0x01
	v[12] = 200
	tp.putFloats(base+0x10+32+16, 1.5, -2, 3, 4)

	l := NewVertexLoader(regs)
	var in AttributeBuffer
	l.LoadVertex(tp.phys, base, 1, &tp.State.DefaultAttributes, &in, nil)

	want := []Vec4{
		MakeVec4(-1, 2, -128, 1),
		MakeVec4(-2, 256, 0, 1),
		MakeVec4(200, 0, 0, 1),
		MakeVec4(1.5, -2, 3, 4),
	}
	if diff := cmp.Diff(want, in.Attr[:4]); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}
}

func TestVertexLoaderDefaultAttributes(t *testing.T) {
	tp := newTestProcessor(t)
	regs := tp.State.Regs

	// 13 attributes: attr 0 fixed through the mask, attr 12 past the arrays.
	regs.Set(RegVertexAttribFormatHigh, 12<<28|1<<16)

	defaults := &tp.State.DefaultAttributes
	defaults.Attr[0] = MakeVec4(5, 6, 7, 8)
	defaults.Attr[1] = MakeVec4(9, 9, 9, 9)
	defaults.Attr[12] = MakeVec4(1, 2, 3, 4)

	l := NewVertexLoader(regs)
	var in AttributeBuffer
	l.LoadVertex(tp.phys, testMem, 0, defaults, &in, nil)

	if diff := cmp.Diff(MakeVec4(5, 6, 7, 8), in.Attr[0]); diff != "" {
		t.Errorf("attr 0 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Vec4{}, in.Attr[1]); diff != "" {
		t.Errorf("attr 1 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(MakeVec4(1, 2, 3, 4), in.Attr[12]); diff != "" {
		t.Errorf("attr 12 mismatch (-want +got):\n%s", diff)
	}
}

func TestVertexLoaderOutOfMemory(t *testing.T) {
	tp := newTestProcessor(t)
	regs := tp.State.Regs
	regs.Set(RegVertexAttribFormatLow, uint32(3<<2|FormatFloat))
	regs.Set(RegAttribLoaders+2, 1<<28|16<<16)

	l := NewVertexLoader(regs)
	in := AttributeBuffer{}
	in.Attr[0] = MakeVec4(9, 9, 9, 9)
	l.LoadVertex(tp.phys, testMem, testMemSize/16, &tp.State.DefaultAttributes, &in, nil)
	if got := in.Attr[0]; got != (Vec4{}) {
		t.Errorf("attr = %v, want zero", got)
	}
}

func TestAccessTracker(t *testing.T) {
	var acc accessTracker
	acc.add(0x100, 0x10)
	acc.add(0x200, 0x10)
	acc.add(0x110, 0x10) // adjacent
	acc.add(0x1F8, 0x10) // overlapping
	acc.add(0x108, 0x100)

	type rng struct{ Addr, Size uint32 }
	var got []rng
	acc.forEach(func(addr, size uint32) { got = append(got, rng{addr, size}) })
	if diff := cmp.Diff([]rng{{0x100, 0x110}}, got); diff != "" {
		t.Errorf("ranges mismatch (-want +got):\n%s", diff)
	}

	var nilAcc *accessTracker
	nilAcc.add(0, 4)
}
