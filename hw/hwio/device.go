package hwio

import "pica/emu/log"

// Device is a memory-mapped IO range whose accesses are entirely handled by
// callbacks. Callbacks receive the offset from the start of the device and
// the access size in bytes (1, 2, 4 or 8).
type Device struct {
	Name  string // name of the io area (for debugging)
	Size  uint32 // size of the io area in bytes
	Flags RWFlags

	ReadCb  func(off uint32, size int) uint64
	WriteCb func(off uint32, size int, val uint64)
}

func (d *Device) Read(off uint32, size int) uint64 {
	switch {
	case d.Flags&WriteOnlyFlag != 0:
		log.ModHwIo.ErrorZ("invalid read from writeonly device").
			String("name", d.Name).
			Hex32("off", off).
			End()
		fallthrough
	case d.ReadCb == nil:
		return 0
	}
	return d.ReadCb(off, size)
}

func (d *Device) Write(off uint32, size int, val uint64) {
	switch {
	case d.Flags&ReadOnlyFlag != 0:
		log.ModHwIo.ErrorZ("invalid write to readonly device").
			String("name", d.Name).
			Hex32("off", off).
			End()
		fallthrough
	case d.WriteCb == nil:
		return
	}
	d.WriteCb(off, size, val)
}
