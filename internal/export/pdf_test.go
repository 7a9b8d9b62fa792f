package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for y := 10; y < 30; y++ {
		for x := 10; x < 30; x++ {
			img.Set(x, y, color.RGBA{0x0a, 0x93, 0x96, 0xff})
		}
	}
	return img
}

func TestPNGRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	src := testImage()
	if err := PNG(&buf, src); err != nil {
		t.Fatal(err)
	}
	got, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Bounds() != src.Bounds() {
		t.Errorf("bounds %v", got.Bounds())
	}
	r, g, b, a := got.At(20, 20).RGBA()
	if r>>8 != 0x0a || g>>8 != 0x93 || b>>8 != 0x96 || a>>8 != 0xff {
		t.Errorf("pixel = %x %x %x %x", r, g, b, a)
	}
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	if err := PDF(&buf, testImage(), "test mandala"); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", buf.Bytes()[:min(8, buf.Len())])
	}
	if !bytes.Contains(buf.Bytes(), []byte("%%EOF")) {
		t.Error("output has no EOF marker")
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h         float64
		x, y, fw, fh float64
	}{
		{100, 100, 15, 58.5, 180, 180},
		{100, 300, 60.5, 15, 89, 267},
	}
	for _, tt := range tests {
		x, y, fw, fh := fit(tt.w, tt.h)
		for _, v := range [][2]float64{{x, tt.x}, {y, tt.y}, {fw, tt.fw}, {fh, tt.fh}} {
			if math.Abs(v[0]-v[1]) > 1e-9 {
				t.Errorf("fit(%g, %g) = %g %g %g %g", tt.w, tt.h, x, y, fw, fh)
				break
			}
		}
	}
}
