package hwio

// 32-bit operations
func GetBit32(v uint32, n uint) bool {
	return GetBiti32(v, n) != 0
}

func GetBiti32(v uint32, n uint) uint32 {
	return v >> (n) & 0x01
}

func SetBit32(v *uint32, n uint) {
	*v |= (1 << n)
}

func ClearBit32(v *uint32, n uint) {
	*v &= ^(1 << n)
}

// Bits32 extracts count bits of v starting at bit pos.
func Bits32(v uint32, pos, count uint) uint32 {
	return (v >> pos) & (1<<count - 1)
}

// SetBits32 stores val into the count bits of v starting at bit pos.
func SetBits32(v *uint32, pos, count uint, val uint32) {
	mask := uint32(1<<count-1) << pos
	*v = (*v &^ mask) | ((val << pos) & mask)
}

// expandBitsToBytes maps a 4-bit byte-lane mask to the corresponding 32-bit
// mask, each set bit selecting one full byte.
var expandBitsToBytes = [16]uint32{
	0x00000000, 0x000000ff, 0x0000ff00, 0x0000ffff,
	0x00ff0000, 0x00ff00ff, 0x00ffff00, 0x00ffffff,
	0xff000000, 0xff0000ff, 0xff00ff00, 0xff00ffff,
	0xffff0000, 0xffff00ff, 0xffffff00, 0xffffffff,
}

// ExpandBitsToBytes returns the 32-bit write mask selected by the low 4 bits
// of mask.
func ExpandBitsToBytes(mask uint8) uint32 {
	return expandBitsToBytes[mask&0xF]
}

// MaskedWrite returns old with the byte lanes selected by mask replaced by
// the corresponding bytes of val.
func MaskedWrite(old, val uint32, mask uint8) uint32 {
	m := ExpandBitsToBytes(mask)
	return (old &^ m) | (val & m)
}
