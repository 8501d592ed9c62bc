package tracer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pica/hw/gpu"
	"pica/hw/hwio"
	"pica/hw/pica"
	"pica/hw/timing"
	"pica/hw/video"
)

func TestTraceFormat(t *testing.T) {
	want := []string{
		`{"seq":1,"kind":"pica","id":16,"reg":"trigger_irq","value":"0x00000001","mask":15}`,
		`{"seq":2,"kind":"mmio","addr":"0x1040001c","reg":"memory_fill0_control","value":"0x00000201"}`,
		`{"seq":3,"kind":"mem","addr":"0x18000000","size":4}`,
		`{"seq":4,"kind":"pica","id":1092,"reg":"0x00000444","value":"0xdeadbeef","mask":3}`,
	}

	var out bytes.Buffer
	tr := New(&out)
	tr.PicaRegisterWritten(0x010, 1, 0xF)
	tr.RegisterWritten(gpu.PAddr+(gpu.RegMemoryFill0+3)*4, 0x201)
	tr.MemoryAccessed(0x18000000, []byte{1, 2, 3, 4})
	tr.PicaRegisterWritten(0x444, 0xDEADBEEF, 0x3)

	got := bytes.Split(bytes.TrimSuffix(out.Bytes(), []byte("\n")), []byte("\n"))
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(want), out.String())
	}
	for i := range want {
		if string(got[i]) != want[i] {
			t.Errorf("line %d\ngot:  %s\nwant: %s", i, got[i], want[i])
		}
	}
	if tr.Events() != 4 {
		t.Errorf("Events() = %d", tr.Events())
	}
}

func TestTraceMemoryData(t *testing.T) {
	var out bytes.Buffer
	tr := New(&out)
	tr.MaxData = 2
	tr.MemoryAccessed(0x18000010, []byte{0xAA, 0xBB, 0xCC})

	events, err := ReadAll(&out)
	if err != nil {
		t.Fatal(err)
	}
	want := []Event{{Seq: 1, Kind: KindMemory, Addr: 0x18000010, Size: 3, Data: []byte{0xAA, 0xBB}}}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.n++
	return 0, errors.New("disk full")
}

func TestTraceWriteError(t *testing.T) {
	var w failingWriter
	tr := New(&w)
	tr.PicaRegisterWritten(0x41, 1, 0xF)
	tr.PicaRegisterWritten(0x42, 1, 0xF)

	if tr.Err() == nil {
		t.Fatal("want error")
	}
	if w.n != 1 {
		t.Errorf("writes after error: %d", w.n)
	}
	if tr.Events() != 2 {
		t.Errorf("Events() = %d", tr.Events())
	}
}

func TestDecode(t *testing.T) {
	for _, tt := range []struct {
		line string
		want Event
	}{
		{
			`{"seq":1,"kind":"mem","addr":"0x18000000","size":4}`,
			Event{Seq: 1, Kind: KindMemory, Addr: 0x18000000, Size: 4},
		},
		{
			`{"seq":2,"kind":"pica","id":65,"reg":"0x00000041","value":"0x00001234","mask":15}`,
			Event{Seq: 2, Kind: KindPica, ID: 0x41, Reg: "0x00000041", Value: 0x1234, Mask: 0xF},
		},
		{
			`{"seq":3,"kind":"mmio","addr":"0x1040001c","reg":"memory_fill0_control","value":"0x00000201","extra":[1]}`,
			Event{Seq: 3, Kind: KindMMIO, Addr: 0x1040001C, Reg: "memory_fill0_control", Value: 0x201},
		},
	} {
		got, err := Decode([]byte(tt.line))
		if err != nil {
			t.Errorf("Decode(%s): %v", tt.line, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Decode(%s) mismatch (-want +got):\n%s", tt.line, diff)
		}
	}
}

func TestDecodeInvalid(t *testing.T) {
	for _, line := range []string{
		`{"seq":"x"}`,
		`{"addr":"zz"}`,
		`[1,2]`,
	} {
		if _, err := Decode([]byte(line)); err == nil {
			t.Errorf("Decode(%s): want error", line)
		}
	}
}

func TestTraceCore(t *testing.T) {
	const vram = 0x18000000

	bus := hwio.NewTable("phys")
	mem := hwio.NewMem("vram", 0x10000, hwio.MemFlagReadWrite)
	bus.MapMem(vram, mem)

	var rend video.NullRenderer
	irq := gpu.InterruptFunc(func(gpu.InterruptID) {})
	core := video.NewCore(video.Options{}, bus, &rend, irq, pica.PassthroughEngine{}, timing.New())
	defer core.Close()

	var out bytes.Buffer
	core.SetRecorder(New(&out))

	const list = vram + 0x100
	binary.LittleEndian.PutUint32(mem.Data[0x100:], 0x1234)
	binary.LittleEndian.PutUint32(mem.Data[0x104:], 0x000F0041)
	core.Write(gpu.RegCommandList*4, 4, 8)
	core.Write((gpu.RegCommandList+2)*4, 4, list/8)
	core.Write((gpu.RegCommandList+4)*4, 4, 1)
	core.SetRecorder(nil)

	events, err := ReadAll(&out)
	if err != nil {
		t.Fatal(err)
	}
	want := []Event{
		{Seq: 1, Kind: KindMMIO, Addr: gpu.PAddr + gpu.RegCommandList*4, Reg: "command_list_size", Value: 8},
		{Seq: 2, Kind: KindMMIO, Addr: gpu.PAddr + (gpu.RegCommandList+2)*4, Reg: "command_list_addr", Value: list / 8},
		// The trigger is recorded after the list it started.
		{Seq: 3, Kind: KindMemory, Addr: list, Size: 8},
		{Seq: 4, Kind: KindPica, ID: 0x41, Reg: "0x00000041", Value: 0x1234, Mask: 0xF},
		{Seq: 5, Kind: KindMMIO, Addr: gpu.PAddr + (gpu.RegCommandList+4)*4, Reg: "command_list_trigger", Value: 1},
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}
