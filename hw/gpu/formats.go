package gpu

//go:generate go tool stringer -type=PixelFormat,ScalingMode -output=formats_string.go

type PixelFormat uint32

const (
	RGBA8 PixelFormat = iota
	RGB8
	RGB565
	RGB5A1
	RGBA4
)

// BytesPerPixel returns the size of a pixel of format f, or 0 for unknown
// formats.
func BytesPerPixel(f PixelFormat) uint32 {
	switch f {
	case RGBA8:
		return 4
	case RGB8:
		return 3
	case RGB565, RGB5A1, RGBA4:
		return 2
	}
	return 0
}

type ScalingMode uint32

const (
	NoScale ScalingMode = iota // no scaling
	ScaleX                     // downscale horizontally by 2, averaging 2 pixels
	ScaleXY                    // downscale by 2 in both directions, averaging 4 pixels
)
