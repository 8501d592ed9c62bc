package gpu

var (
	mortonXLUT = [8]uint32{0x00, 0x01, 0x04, 0x05, 0x10, 0x11, 0x14, 0x15}
	mortonYLUT = [8]uint32{0x00, 0x02, 0x08, 0x0a, 0x20, 0x22, 0x28, 0x2a}
)

// MortonInterleave interleaves the low 3 bits of x and y.
func MortonInterleave(x, y uint32) uint32 {
	return mortonXLUT[x%8] + mortonYLUT[y%8]
}

// MortonOffset returns the byte offset of pixel (x, y) inside a row of 8x8
// tiles. The offset of the tile row (y &^ 7) must be added by the caller.
func MortonOffset(x, y, bytesPerPixel uint32) uint32 {
	i := MortonInterleave(x, y)
	coarseX := x &^ 7
	return (i + coarseX*8) * bytesPerPixel
}

// TiledOffset returns the byte offset of pixel (x, y) in a tiled surface
// whose rows are width pixels wide.
func TiledOffset(x, y, width, bytesPerPixel uint32) uint32 {
	return MortonOffset(x, y, bytesPerPixel) + (y&^7)*width*bytesPerPixel
}
