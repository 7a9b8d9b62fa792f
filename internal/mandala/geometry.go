package mandala

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrInvalidGeometry is returned when the sector count is odd or below two,
// or the radius is not positive.
var ErrInvalidGeometry = errors.New("invalid mandala geometry")

// angleEps absorbs rounding when a point lies on a closing radius.
const angleEps = 1e-9

// Point is a position in canvas coordinates (y grows downwards).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Geometry describes the disk and its sector split.
type Geometry struct {
	Center  Point
	Radius  float64
	Sectors int
}

// NewGeometry validates and returns the geometry of a disk centred at
// (cx, cy) split into sectors equal wedges.
func NewGeometry(cx, cy, r float64, sectors int) (Geometry, error) {
	if sectors < 2 || sectors%2 != 0 {
		return Geometry{}, fmt.Errorf("%w: sector count %d must be even and at least 2", ErrInvalidGeometry, sectors)
	}
	if !(r > 0) {
		return Geometry{}, fmt.Errorf("%w: radius %g", ErrInvalidGeometry, r)
	}
	return Geometry{Center: Point{cx, cy}, Radius: r, Sectors: sectors}, nil
}

// GeometryForCanvas centres the disk on a w x h canvas and leaves margin
// pixels between the disk and the nearest canvas edge.
func GeometryForCanvas(w, h int, margin float64, sectors int) (Geometry, error) {
	cx := math.Round(float64(w) / 2)
	cy := math.Round(float64(h) / 2)
	return NewGeometry(cx, cy, math.Min(cx, cy)-margin, sectors)
}

// SectorAngle is the angular width of one sector in radians.
func (g Geometry) SectorAngle() float64 {
	return 2 * math.Pi / float64(g.Sectors)
}

// Boundaries returns the full disk, the canonical slice starting at angle
// zero and the slice's complement. Slice and complement share the centre
// and both closing radii.
func (g Geometry) Boundaries() (disk, slice, complement Wedge) {
	return g.Disk(), g.Slice(), g.Complement()
}

func (g Geometry) Disk() Wedge {
	return Wedge{Center: g.Center, Radius: g.Radius, Sweep: 2 * math.Pi}
}

func (g Geometry) Slice() Wedge {
	return Wedge{Center: g.Center, Radius: g.Radius, Sweep: g.SectorAngle()}
}

func (g Geometry) Complement() Wedge {
	theta := g.SectorAngle()
	return Wedge{Center: g.Center, Radius: g.Radius, Start: theta, Sweep: 2*math.Pi - theta}
}

// Boundary is a closed region used for containment tests.
type Boundary interface {
	Contains(x, y float64) bool
	// Bounds is a pixel rectangle covering every pixel whose centre
	// the boundary may contain.
	Bounds() image.Rectangle
}

// PointIn reports whether (x, y) lies inside b.
func PointIn(b Boundary, x, y float64) bool {
	return b.Contains(x, y)
}

// ContainsPixel tests the centre of pixel (x, y).
func ContainsPixel(b Boundary, x, y int) bool {
	return b.Contains(float64(x)+0.5, float64(y)+0.5)
}

// Wedge is a circular sector: the arc from Start through Start+Sweep
// (clockwise on screen) closed by two radii at Center. A sweep of 2π is
// the whole disk.
type Wedge struct {
	Center Point
	Radius float64
	Start  float64
	Sweep  float64
}

func (w Wedge) Contains(x, y float64) bool {
	dx, dy := x-w.Center.X, y-w.Center.Y
	if dx*dx+dy*dy > w.Radius*w.Radius {
		return false
	}
	if w.Sweep >= 2*math.Pi || (dx == 0 && dy == 0) {
		return true
	}
	rel := normAngle(math.Atan2(dy, dx) - w.Start)
	return rel <= w.Sweep+angleEps || rel >= 2*math.Pi-angleEps
}

func (w Wedge) Bounds() image.Rectangle {
	c, r := w.Center, w.Radius
	if w.Sweep >= 2*math.Pi {
		return image.Rect(
			int(math.Floor(c.X-r)), int(math.Floor(c.Y-r)),
			int(math.Ceil(c.X+r))+1, int(math.Ceil(c.Y+r))+1)
	}
	minX, minY, maxX, maxY := c.X, c.Y, c.X, c.Y
	add := func(a float64) {
		x, y := c.X+r*math.Cos(a), c.Y+r*math.Sin(a)
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	add(w.Start)
	add(w.Start + w.Sweep)
	for k := 0; k < 4; k++ {
		a := float64(k) * math.Pi / 2
		if normAngle(a-w.Start) <= w.Sweep {
			add(a)
		}
	}
	return image.Rect(
		int(math.Floor(minX))-1, int(math.Floor(minY))-1,
		int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1)
}

// normAngle maps a into [0, 2π).
func normAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
