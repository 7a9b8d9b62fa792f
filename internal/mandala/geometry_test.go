package mandala

import (
	"errors"
	"image"
	"math"
	"testing"
)

func TestNewGeometryInvalid(t *testing.T) {
	tests := []struct {
		name    string
		r       float64
		sectors int
	}{
		{"odd", 10, 7},
		{"zero sectors", 10, 0},
		{"negative sectors", 10, -4},
		{"one sector", 10, 1},
		{"zero radius", 0, 8},
		{"negative radius", -3, 8},
		{"nan radius", math.NaN(), 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGeometry(0, 0, tt.r, tt.sectors)
			if !errors.Is(err, ErrInvalidGeometry) {
				t.Errorf("err = %v, want ErrInvalidGeometry", err)
			}
		})
	}
}

func TestGeometryForCanvas(t *testing.T) {
	g, err := GeometryForCanvas(801, 600, 40, 16)
	if err != nil {
		t.Fatal(err)
	}
	if g.Center != (Point{401, 300}) || g.Radius != 260 {
		t.Errorf("got centre %v radius %g", g.Center, g.Radius)
	}
	if got, want := g.SectorAngle(), math.Pi/8; math.Abs(got-want) > 1e-12 {
		t.Errorf("SectorAngle = %g, want %g", got, want)
	}
}

func polar(c Point, r, a float64) (float64, float64) {
	return c.X + r*math.Cos(a), c.Y + r*math.Sin(a)
}

func TestBoundaries(t *testing.T) {
	g, err := NewGeometry(100, 100, 50, 8)
	if err != nil {
		t.Fatal(err)
	}
	disk, slice, comp := g.Boundaries()
	theta := g.SectorAngle()

	tests := []struct {
		name                    string
		x, y                    float64
		inDisk, inSlice, inComp bool
	}{
		{"centre", 100, 100, true, true, true},
		{"mid slice", 0, 0, true, true, false},
		{"opposite", 50, 100, true, false, true},
		{"outside", 151, 100, false, false, false},
		{"start radius", 140, 100, true, true, true},
	}
	tests[1].x, tests[1].y = polar(g.Center, 30, theta/2)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointIn(disk, tt.x, tt.y); got != tt.inDisk {
				t.Errorf("disk = %v", got)
			}
			if got := PointIn(slice, tt.x, tt.y); got != tt.inSlice {
				t.Errorf("slice = %v", got)
			}
			if got := PointIn(comp, tt.x, tt.y); got != tt.inComp {
				t.Errorf("complement = %v", got)
			}
		})
	}
}

func TestSliceAndComplementTileDisk(t *testing.T) {
	g, err := NewGeometry(40, 40, 30, 6)
	if err != nil {
		t.Fatal(err)
	}
	disk, slice, comp := g.Boundaries()
	sb, db := slice.Bounds(), disk.Bounds()
	for y := 0; y < 80; y++ {
		for x := 0; x < 80; x++ {
			d := ContainsPixel(disk, x, y)
			s := ContainsPixel(slice, x, y)
			c := ContainsPixel(comp, x, y)
			if d != (s || c) {
				t.Fatalf("pixel (%d,%d): disk %v slice %v complement %v", x, y, d, s, c)
			}
			if s && !(image.Point{x, y}).In(sb) {
				t.Fatalf("slice pixel (%d,%d) outside slice bounds %v", x, y, sb)
			}
			if d && !(image.Point{x, y}).In(db) {
				t.Fatalf("disk pixel (%d,%d) outside disk bounds %v", x, y, db)
			}
		}
	}
}
