package hwio

import (
	"encoding/binary"
	"fmt"
	"sort"

	"pica/emu/log"
)

// log unmapped accesses (useful for debugging, noisy with guest software that
// probes unpopulated ranges)
const logUnmapped = true

type mapping struct {
	base, end uint32 // [base, end]
	mem       *Mem
	dev       *Device
}

func (m *mapping) name() string {
	if m.mem != nil {
		return m.mem.Name
	}
	return m.dev.Name
}

// Table is a 32-bit physical address space made of memory areas and io
// devices. Mappings cannot overlap. Mapping is not safe for concurrent use,
// but once the table is populated all accessors are.
type Table struct {
	Name string

	maps []mapping // sorted by base
}

func NewTable(name string) *Table {
	return &Table{Name: name}
}

func (t *Table) insert(m mapping) {
	i := sort.Search(len(t.maps), func(i int) bool { return t.maps[i].base > m.base })
	if i > 0 && t.maps[i-1].end >= m.base {
		panic(fmt.Errorf("%s: mapping %q at %08x overlaps %q", t.Name, m.name(), m.base, t.maps[i-1].name()))
	}
	if i < len(t.maps) && t.maps[i].base <= m.end {
		panic(fmt.Errorf("%s: mapping %q at %08x overlaps %q", t.Name, m.name(), m.base, t.maps[i].name()))
	}
	t.maps = append(t.maps, mapping{})
	copy(t.maps[i+1:], t.maps[i:])
	t.maps[i] = m
}

// MapMem maps mem at physical address addr.
func (t *Table) MapMem(addr uint32, mem *Mem) {
	log.ModHwIo.DebugZ("mapping mem").
		Hex32("addr", addr).
		Hex32("size", mem.size()).
		String("area", mem.Name).
		String("bus", t.Name).
		End()

	if len(mem.Data) == 0 {
		panic("empty memory area")
	}
	t.insert(mapping{base: addr, end: addr + mem.size() - 1, mem: mem})
}

// MapDevice maps dev at physical address addr.
func (t *Table) MapDevice(addr uint32, dev *Device) {
	log.ModHwIo.DebugZ("mapping device").
		Hex32("addr", addr).
		Hex32("size", dev.Size).
		String("area", dev.Name).
		String("bus", t.Name).
		End()

	if dev.Size == 0 {
		panic("empty device")
	}
	t.insert(mapping{base: addr, end: addr + dev.Size - 1, dev: dev})
}

func (t *Table) search(addr uint32) *mapping {
	i := sort.Search(len(t.maps), func(i int) bool { return t.maps[i].end >= addr })
	if i < len(t.maps) && t.maps[i].base <= addr {
		return &t.maps[i]
	}
	return nil
}

// Valid reports whether addr falls inside a mapped memory area. Device ranges
// are not considered valid memory.
func (t *Table) Valid(addr uint32) bool {
	m := t.search(addr)
	return m != nil && m.mem != nil
}

// Slice returns the size bytes of memory starting at addr, or nil if the range
// is not entirely contained in a single memory area.
func (t *Table) Slice(addr, size uint32) []byte {
	m := t.search(addr)
	if m == nil || m.mem == nil {
		return nil
	}
	off := addr - m.base
	if uint64(off)+uint64(size) > uint64(m.mem.size()) {
		return nil
	}
	return m.mem.Data[off : off+size : off+size]
}

// FetchPointer returns the memory from addr up to the end of its memory area,
// or nil if addr is not valid memory.
func (t *Table) FetchPointer(addr uint32) []byte {
	m := t.search(addr)
	if m == nil || m.mem == nil {
		return nil
	}
	return m.mem.Data[addr-m.base:]
}

// Regions returns the name, base and size of every mapping, in address order.
func (t *Table) Regions() []Region {
	out := make([]Region, len(t.maps))
	for i, m := range t.maps {
		out[i] = Region{Name: m.name(), Base: m.base, Size: m.end - m.base + 1, IO: m.dev != nil}
	}
	return out
}

type Region struct {
	Name string
	Base uint32
	Size uint32
	IO   bool
}

// Read performs a size-byte little-endian read at addr.
func (t *Table) Read(addr uint32, size int) uint64 {
	m := t.search(addr)
	if m == nil {
		if logUnmapped {
			log.ModHwIo.ErrorZ("unmapped read").
				String("name", t.Name).
				Hex32("addr", addr).
				Int("size", size).
				End()
		}
		return 0
	}
	if m.dev != nil {
		return m.dev.Read(addr-m.base, size)
	}

	buf := t.Slice(addr, uint32(size))
	if buf == nil {
		return 0
	}
	switch size {
	case 1:
		return uint64(buf[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(buf))
	case 4:
		return uint64(binary.LittleEndian.Uint32(buf))
	case 8:
		return binary.LittleEndian.Uint64(buf)
	}
	panic(fmt.Sprintf("invalid access size %d", size))
}

// Write performs a size-byte little-endian write at addr.
func (t *Table) Write(addr uint32, size int, val uint64) {
	m := t.search(addr)
	if m == nil {
		if logUnmapped {
			log.ModHwIo.ErrorZ("unmapped write").
				String("name", t.Name).
				Hex32("addr", addr).
				Hex64("val", val).
				End()
		}
		return
	}
	if m.dev != nil {
		m.dev.Write(addr-m.base, size, val)
		return
	}
	if m.mem.Flags&MemFlagReadOnly != 0 {
		if m.mem.Flags&MemFlagNoROLog == 0 {
			log.ModHwIo.ErrorZ("write to read-only address").
				String("name", m.mem.Name).
				Hex32("addr", addr).
				Hex64("val", val).
				End()
		}
		return
	}

	buf := t.Slice(addr, uint32(size))
	if buf == nil {
		return
	}
	switch size {
	case 1:
		buf[0] = uint8(val)
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(val))
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(val))
	case 8:
		binary.LittleEndian.PutUint64(buf, val)
	default:
		panic(fmt.Sprintf("invalid access size %d", size))
	}
}

func (t *Table) Read8(addr uint32) uint8   { return uint8(t.Read(addr, 1)) }
func (t *Table) Read16(addr uint32) uint16 { return uint16(t.Read(addr, 2)) }
func (t *Table) Read32(addr uint32) uint32 { return uint32(t.Read(addr, 4)) }

func (t *Table) Write8(addr uint32, val uint8)   { t.Write(addr, 1, uint64(val)) }
func (t *Table) Write16(addr uint32, val uint16) { t.Write(addr, 2, uint64(val)) }
func (t *Table) Write32(addr uint32, val uint32) { t.Write(addr, 4, uint64(val)) }
