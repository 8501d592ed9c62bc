package hwio

type MemFlags int

const (
	MemFlagReadWrite MemFlags = 0
	MemFlagReadOnly  MemFlags = (1 << iota) // read-only accesses
	MemFlagNoROLog                          // skip logging attempts to write when configured to readonly
)

// Mem is a linear memory area that can be mapped into a Table at a physical
// base address.
type Mem struct {
	Name  string   // name of the memory area (for debugging)
	Data  []byte   // actual memory buffer
	Flags MemFlags // flags determining how the memory can be accessed
}

// NewMem allocates a zeroed memory area of the given size.
func NewMem(name string, size int, flags MemFlags) *Mem {
	return &Mem{Name: name, Data: make([]byte, size), Flags: flags}
}

func (m *Mem) size() uint32 { return uint32(len(m.Data)) }
