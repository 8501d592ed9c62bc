package hwio

import (
	"fmt"
	"math/bits"
)

const wordSize = 64 // using 64-bit words

// Bitset is a fixed-size set of bits. Zero value is an empty set of size 0;
// use NewBitset to create a set with a given capacity.
type Bitset struct {
	words []uint64
	nbits uint
}

func NewBitset(nbits uint) Bitset {
	return Bitset{
		words: make([]uint64, (nbits+wordSize-1)/wordSize),
		nbits: nbits,
	}
}

// Len returns the number of bits in the set.
func (b *Bitset) Len() uint { return b.nbits }

// Set sets the bit at index i.
func (b *Bitset) Set(i uint) {
	b.words[i/wordSize] |= 1 << (i % wordSize)
}

// Clear clears the bit at index i.
func (b *Bitset) Clear(i uint) {
	b.words[i/wordSize] &^= 1 << (i % wordSize)
}

// Test returns true if the bit at index i is set.
func (b *Bitset) Test(i uint) bool {
	return (b.words[i/wordSize] & (1 << (i % wordSize))) != 0
}

// Count returns the number of set bits.
func (b *Bitset) Count() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// SetRange sets all bits in the half-open interval [start, end).
// It panics if start >= end or end > Len().
func (b *Bitset) SetRange(start, end uint) {
	b.checkRange(start, end)
	b.applyRange(start, end, func(w *uint64, m uint64) { *w |= m })
}

// ClearRange clears all bits in the half-open interval [start, end).
// It panics if start >= end or end > Len().
func (b *Bitset) ClearRange(start, end uint) {
	b.checkRange(start, end)
	b.applyRange(start, end, func(w *uint64, m uint64) { *w &^= m })
}

func (b *Bitset) checkRange(start, end uint) {
	if start >= end || end > b.nbits {
		panic(fmt.Sprintf("invalid range [%d, %d)", start, end))
	}
}

func (b *Bitset) applyRange(start, end uint, op func(w *uint64, m uint64)) {
	startWord := start / wordSize
	endWord := (end - 1) / wordSize
	startBit := start % wordSize
	endBit := (end - 1) % wordSize

	if startWord == endWord {
		op(&b.words[startWord], ((uint64(1)<<(endBit-startBit+1))-1)<<startBit)
		return
	}

	op(&b.words[startWord], ^uint64(0)<<startBit)
	for i := startWord + 1; i < endWord; i++ {
		op(&b.words[i], ^uint64(0))
	}
	op(&b.words[endWord], (uint64(1)<<(endBit+1))-1)
}

// Reset clears all bits in the Bitset.
func (b *Bitset) Reset() {
	clear(b.words)
}

// SetAll sets all bits in the Bitset.
func (b *Bitset) SetAll() {
	if b.nbits == 0 {
		return
	}
	b.SetRange(0, b.nbits)
}

// ForEach calls fn for every set bit, in increasing order.
func (b *Bitset) ForEach(fn func(i uint)) {
	for wi, w := range b.words {
		for ; w != 0; w &= w - 1 {
			fn(uint(wi)*wordSize + uint(bits.TrailingZeros64(w)))
		}
	}
}
