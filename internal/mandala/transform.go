package mandala

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Affine maps are f64.Aff3 values laid out as golang.org/x/image/draw
// expects them:
//
//	x' = m[0]*x + m[1]*y + m[2]
//	y' = m[3]*x + m[4]*y + m[5]

// Identity is the identity transformation.
var Identity = f64.Aff3{1, 0, 0, 0, 1, 0}

// Rotation turns points by angle radians about c. In canvas coordinates
// a positive angle turns clockwise on screen.
func Rotation(c Point, angle float64) f64.Aff3 {
	sin, cos := math.Sincos(angle)
	return f64.Aff3{
		cos, -sin, c.X - cos*c.X + sin*c.Y,
		sin, cos, c.Y - sin*c.X - cos*c.Y,
	}
}

// MirrorX reflects across the vertical line x = cx.
func MirrorX(cx float64) f64.Aff3 {
	return f64.Aff3{-1, 0, 2 * cx, 0, 1, 0}
}

// MirrorY reflects across the horizontal line y = cy.
func MirrorY(cy float64) f64.Aff3 {
	return f64.Aff3{1, 0, 0, 0, -1, 2 * cy}
}

// Compose returns the map that applies a first and then b.
func Compose(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		b[0]*a[0] + b[1]*a[3],
		b[0]*a[1] + b[1]*a[4],
		b[0]*a[2] + b[1]*a[5] + b[2],
		b[3]*a[0] + b[4]*a[3],
		b[3]*a[1] + b[4]*a[4],
		b[3]*a[2] + b[4]*a[5] + b[5],
	}
}

// Apply transforms p by m.
func Apply(m f64.Aff3, p Point) Point {
	return Point{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}
