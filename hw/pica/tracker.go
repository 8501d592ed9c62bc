package pica

import "sort"

// accessTracker merges the memory ranges read during a draw so they can be
// reported to a recorder once.
type accessTracker struct {
	ranges map[uint32]uint32 // start -> size
}

func (t *accessTracker) add(addr, size uint32) {
	if t == nil {
		return
	}
	if t.ranges == nil {
		t.ranges = make(map[uint32]uint32)
	}
	end := addr + size
	for merged := true; merged; {
		merged = false
		for start, sz := range t.ranges {
			// Merge overlapping or adjacent ranges.
			if start <= end && addr <= start+sz {
				delete(t.ranges, start)
				addr = min(addr, start)
				end = max(end, start+sz)
				merged = true
			}
		}
	}
	t.ranges[addr] = end - addr
}

// forEach calls fn for each merged range in address order.
func (t *accessTracker) forEach(fn func(addr, size uint32)) {
	starts := make([]uint32, 0, len(t.ranges))
	for s := range t.ranges {
		starts = append(starts, s)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })
	for _, s := range starts {
		fn(s, t.ranges[s])
	}
}
