package gpu

import (
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodePixel(t *testing.T) {
	tests := []struct {
		format PixelFormat
		src    []byte
		want   color.RGBA
	}{
		{RGBA8, []byte{0x44, 0x33, 0x22, 0x11}, color.RGBA{0x11, 0x22, 0x33, 0x44}},
		{RGB8, []byte{0x33, 0x22, 0x11}, color.RGBA{0x11, 0x22, 0x33, 0xFF}},
		{RGB565, []byte{0x00, 0xF8}, color.RGBA{0xFF, 0x00, 0x00, 0xFF}},
		{RGB565, []byte{0xE0, 0x07}, color.RGBA{0x00, 0xFF, 0x00, 0xFF}},
		{RGB5A1, []byte{0x3F, 0x00}, color.RGBA{0x00, 0x00, 0xFF, 0xFF}},
		{RGB5A1, []byte{0x3E, 0x00}, color.RGBA{0x00, 0x00, 0xFF, 0x00}},
		{RGBA4, []byte{0x34, 0x12}, color.RGBA{0x11, 0x22, 0x33, 0x44}},
		{PixelFormat(7), []byte{0xFF, 0xFF, 0xFF, 0xFF}, color.RGBA{}},
	}
	for _, tt := range tests {
		if got := DecodePixel(tt.format, tt.src); got != tt.want {
			t.Errorf("DecodePixel(%v, % x) = %v, want %v", tt.format, tt.src, got, tt.want)
		}
	}
}

func TestEncodeDecodeLossless(t *testing.T) {
	// Colors whose channels are exactly representable in every format.
	colors := []color.RGBA{
		{0x00, 0x00, 0x00, 0xFF},
		{0xFF, 0xFF, 0xFF, 0xFF},
		{0xFF, 0x00, 0xFF, 0xFF},
	}
	for _, f := range []PixelFormat{RGBA8, RGB8, RGB565, RGB5A1, RGBA4} {
		for _, c := range colors {
			buf := make([]byte, BytesPerPixel(f))
			if !EncodePixel(f, c, buf) {
				t.Fatalf("EncodePixel(%v) failed", f)
			}
			if diff := cmp.Diff(c, DecodePixel(f, buf)); diff != "" {
				t.Errorf("%v round trip mismatch (-want +got):\n%s", f, diff)
			}
		}
	}
}

func TestAverage(t *testing.T) {
	got := average(color.RGBA{255, 0, 10, 1}, color.RGBA{255, 1, 20, 2}, color.RGBA{255, 2, 30, 3}, color.RGBA{254, 3, 40, 4})
	want := color.RGBA{254, 1, 25, 2}
	if got != want {
		t.Errorf("average = %v, want %v", got, want)
	}
}
