package gpu

//go:generate go tool stringer -type=InterruptID -output=interrupt_string.go

// InterruptID identifies a GPU interrupt signalled to the GSP service.
type InterruptID uint8

const (
	PSC0 InterruptID = iota // memory fill unit 0 done
	PSC1                    // memory fill unit 1 done
	PDC0                    // top screen vblank
	PDC1                    // bottom screen vblank
	PPF                     // display transfer done
	P3D                     // command list done
	DMA
)

// InterruptSink receives GPU interrupts.
type InterruptSink interface {
	SignalInterrupt(id InterruptID)
}

// InterruptFunc adapts a function to the InterruptSink interface.
type InterruptFunc func(id InterruptID)

func (f InterruptFunc) SignalInterrupt(id InterruptID) { f(id) }
