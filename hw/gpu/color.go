package gpu

import (
	"encoding/binary"
	"image/color"
)

func convert1To8(v uint32) uint8 { return uint8(v * 255) }
func convert4To8(v uint32) uint8 { return uint8(v<<4 | v) }
func convert5To8(v uint32) uint8 { return uint8(v<<3 | v>>2) }
func convert6To8(v uint32) uint8 { return uint8(v<<2 | v>>4) }

func convert8To1(v uint8) uint16 { return uint16(v >> 7) }
func convert8To4(v uint8) uint16 { return uint16(v >> 4) }
func convert8To5(v uint8) uint16 { return uint16(v >> 3) }
func convert8To6(v uint8) uint16 { return uint16(v >> 2) }

// DecodePixel decodes the pixel at the start of src. src must hold at least
// BytesPerPixel(f) bytes. Unknown formats decode as transparent black.
func DecodePixel(f PixelFormat, src []byte) color.RGBA {
	switch f {
	case RGBA8:
		return color.RGBA{R: src[3], G: src[2], B: src[1], A: src[0]}
	case RGB8:
		return color.RGBA{R: src[2], G: src[1], B: src[0], A: 255}
	case RGB565:
		v := uint32(binary.LittleEndian.Uint16(src))
		return color.RGBA{
			R: convert5To8(v >> 11 & 0x1F),
			G: convert6To8(v >> 5 & 0x3F),
			B: convert5To8(v & 0x1F),
			A: 255,
		}
	case RGB5A1:
		v := uint32(binary.LittleEndian.Uint16(src))
		return color.RGBA{
			R: convert5To8(v >> 11 & 0x1F),
			G: convert5To8(v >> 6 & 0x1F),
			B: convert5To8(v >> 1 & 0x1F),
			A: convert1To8(v & 1),
		}
	case RGBA4:
		v := uint32(binary.LittleEndian.Uint16(src))
		return color.RGBA{
			R: convert4To8(v >> 12 & 0xF),
			G: convert4To8(v >> 8 & 0xF),
			B: convert4To8(v >> 4 & 0xF),
			A: convert4To8(v & 0xF),
		}
	}
	return color.RGBA{}
}

// EncodePixel encodes c at the start of dst. dst must hold at least
// BytesPerPixel(f) bytes. It returns false for unknown formats.
func EncodePixel(f PixelFormat, c color.RGBA, dst []byte) bool {
	switch f {
	case RGBA8:
		dst[3], dst[2], dst[1], dst[0] = c.R, c.G, c.B, c.A
	case RGB8:
		dst[2], dst[1], dst[0] = c.R, c.G, c.B
	case RGB565:
		binary.LittleEndian.PutUint16(dst,
			convert8To5(c.R)<<11|convert8To6(c.G)<<5|convert8To5(c.B))
	case RGB5A1:
		binary.LittleEndian.PutUint16(dst,
			convert8To5(c.R)<<11|convert8To5(c.G)<<6|convert8To5(c.B)<<1|convert8To1(c.A))
	case RGBA4:
		binary.LittleEndian.PutUint16(dst,
			convert8To4(c.R)<<12|convert8To4(c.G)<<8|convert8To4(c.B)<<4|convert8To4(c.A))
	default:
		return false
	}
	return true
}

// average returns the per-channel integer mean of colors.
func average(colors ...color.RGBA) color.RGBA {
	var r, g, b, a int
	for _, c := range colors {
		r += int(c.R)
		g += int(c.G)
		b += int(c.B)
		a += int(c.A)
	}
	n := len(colors)
	return color.RGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n), A: uint8(a / n)}
}
