package video

import (
	"github.com/go-faster/errors"

	"pica/hw/timing"
)

// TimingMode selects how long the caller waits for an operation submitted
// to the parallel backend.
type TimingMode uint8

//go:generate go tool stringer -type=TimingMode -linecomment -output=timing_mode_string.go

const (
	Skip        TimingMode = iota // skip
	Asynch                        // asynch
	Synch                         // synch
	Asynch10us                    // asynch_10us
	Asynch20us                    // asynch_20us
	Asynch40us                    // asynch_40us
	Asynch60us                    // asynch_60us
	Asynch80us                    // asynch_80us
	Asynch100us                   // asynch_100us
	Asynch200us                   // asynch_200us
	Asynch400us                   // asynch_400us
	Asynch600us                   // asynch_600us
	Asynch800us                   // asynch_800us
	Asynch1ms                     // asynch_1ms
	Asynch2ms                     // asynch_2ms
	Asynch4ms                     // asynch_4ms
	Asynch6ms                     // asynch_6ms
	Asynch8ms                     // asynch_8ms

	numTimingModes
)

var asynchDelays = [...]uint64{10, 20, 40, 60, 80, 100, 200, 400, 600, 800, 1000, 2000, 4000, 6000, 8000}

// DeferredCycles returns the virtual time after which a deferred wait
// happens, for the Asynch_N modes.
func (m TimingMode) DeferredCycles() (int64, bool) {
	if m < Asynch10us || m >= numTimingModes {
		return 0, false
	}
	return timing.UsToCycles(asynchDelays[m-Asynch10us]), true
}

func (m TimingMode) MarshalText() ([]byte, error) {
	if m >= numTimingModes {
		return nil, errors.Errorf("invalid timing mode %d", m)
	}
	return []byte(m.String()), nil
}

func (m *TimingMode) UnmarshalText(text []byte) error {
	for i := range numTimingModes {
		if i.String() == string(text) {
			*m = i
			return nil
		}
	}
	return errors.Errorf("unknown timing mode %q", text)
}

// Policies is the timing mode of each category of operation.
type Policies struct {
	SubmitList         TimingMode `toml:"submit_list"`
	SwapBuffers        TimingMode `toml:"swap_buffers"`
	MemoryFill         TimingMode `toml:"memory_fill"`
	DisplayTransfer    TimingMode `toml:"display_transfer"`
	Flush              TimingMode `toml:"flush"`
	FlushAndInvalidate TimingMode `toml:"flush_and_invalidate"`
	Invalidate         TimingMode `toml:"invalidate"`
}

// DefaultPolicies waits for every operation.
func DefaultPolicies() Policies {
	return Policies{
		SubmitList:         Synch,
		SwapBuffers:        Synch,
		MemoryFill:         Synch,
		DisplayTransfer:    Synch,
		Flush:              Synch,
		FlushAndInvalidate: Synch,
		Invalidate:         Synch,
	}
}

func (p *Policies) forKind(k commandKind) TimingMode {
	switch k {
	case cmdSubmitList:
		return p.SubmitList
	case cmdSwapBuffers:
		return p.SwapBuffers
	case cmdMemoryFill:
		return p.MemoryFill
	case cmdDisplayTransfer:
		return p.DisplayTransfer
	case cmdFlushRegion:
		return p.Flush
	case cmdFlushAndInvalidateRegion:
		return p.FlushAndInvalidate
	case cmdInvalidateRegion:
		return p.Invalidate
	}
	return Synch
}
