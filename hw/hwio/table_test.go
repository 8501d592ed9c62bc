package hwio_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"pica/hw/hwio"
)

type testTable struct {
	t testing.TB
	*hwio.Table

	RAM *hwio.Mem
	ROM *hwio.Mem
	Dev hwio.Device

	devval uint64
}

func newTestTable(tb testing.TB) *testTable {
	tbl := &testTable{t: tb, Table: hwio.NewTable("bus")}
	tbl.RAM = hwio.NewMem("ram", 0x1000, hwio.MemFlagReadWrite)
	tbl.ROM = hwio.NewMem("rom", 0x100, hwio.MemFlagReadOnly|hwio.MemFlagNoROLog)
	tbl.Dev = hwio.Device{
		Name:    "dev",
		Size:    0x10,
		ReadCb:  func(off uint32, size int) uint64 { return 0xE0 + uint64(off) },
		WriteCb: func(off uint32, size int, val uint64) { tbl.devval = val + uint64(off) },
	}
	tbl.MapMem(0x1000, tbl.RAM)
	tbl.MapMem(0x8000, tbl.ROM)
	tbl.MapDevice(0x9000, &tbl.Dev)
	return tbl
}

func (tbl *testTable) wantRead32(addr uint32, want uint32) {
	tbl.t.Helper()

	if got := tbl.Read32(addr); got != want {
		tbl.t.Errorf("Read32(%08X) = %08X, want %08X", addr, got, want)
	}
}

func TestTableMem(t *testing.T) {
	tbl := newTestTable(t)

	tbl.wantRead32(0x1000, 0)
	tbl.Write32(0x1000, 0x11223344)
	tbl.wantRead32(0x1000, 0x11223344)
	if got := tbl.Read8(0x1001); got != 0x33 {
		t.Errorf("Read8(1001) = %02X, want 33", got)
	}
	if got := tbl.Read16(0x1002); got != 0x1122 {
		t.Errorf("Read16(1002) = %04X, want 1122", got)
	}

	// read-only
	tbl.ROM.Data[0] = 0x55
	tbl.Write8(0x8000, 0x66)
	if got := tbl.Read8(0x8000); got != 0x55 {
		t.Errorf("Read8(8000) = %02X, want 55", got)
	}

	// unmapped
	tbl.wantRead32(0x4000, 0)
	tbl.Write32(0x4000, 0xFFFF)
}

func TestTableDevice(t *testing.T) {
	tbl := newTestTable(t)

	tbl.wantRead32(0x9004, 0xE4)
	tbl.Write32(0x9008, 0x100)
	if tbl.devval != 0x108 {
		t.Errorf("device write = %X, want 108", tbl.devval)
	}
	if tbl.Valid(0x9000) {
		t.Errorf("Valid(9000) = true for a device range")
	}
}

func TestTableSlice(t *testing.T) {
	tbl := newTestTable(t)

	tests := []struct {
		addr, size uint32
		wantLen    int
	}{
		{0x1000, 0x1000, 0x1000},
		{0x1FF0, 0x10, 0x10},
		{0x1FF0, 0x11, 0},   // crosses the end of ram
		{0x0FFF, 0x2, 0},    // starts before ram
		{0x9000, 0x4, 0},    // device
		{0x3000_0000, 1, 0}, // unmapped
	}
	for _, tt := range tests {
		got := tbl.Slice(tt.addr, tt.size)
		if len(got) != tt.wantLen {
			t.Errorf("Slice(%08X, %X) has len %X, want %X", tt.addr, tt.size, len(got), tt.wantLen)
		}
	}

	buf := tbl.Slice(0x1010, 4)
	copy(buf, []byte{1, 2, 3, 4})
	tbl.wantRead32(0x1010, 0x04030201)

	if got := len(tbl.FetchPointer(0x1F00)); got != 0x100 {
		t.Errorf("FetchPointer(1F00) has len %X, want 100", got)
	}
}

func TestTableRegions(t *testing.T) {
	tbl := newTestTable(t)

	want := []hwio.Region{
		{Name: "ram", Base: 0x1000, Size: 0x1000},
		{Name: "rom", Base: 0x8000, Size: 0x100},
		{Name: "dev", Base: 0x9000, Size: 0x10, IO: true},
	}
	if diff := cmp.Diff(want, tbl.Regions()); diff != "" {
		t.Errorf("Regions() mismatch (-want +got):\n%s", diff)
	}
}

func TestTableOverlap(t *testing.T) {
	tbl := newTestTable(t)
	defer func() {
		if recover() == nil {
			t.Errorf("overlapping MapMem did not panic")
		}
	}()
	tbl.MapMem(0x1800, hwio.NewMem("bad", 0x10, 0))
}
