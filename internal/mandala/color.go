package mandala

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"strings"
)

// ErrBadHex is returned by ParseHex for anything but six hex digits.
var ErrBadHex = errors.New("malformed hex colour")

// Color is a non-premultiplied RGBA value. Two colours are the same pixel
// only when all four channels match exactly.
type Color struct {
	R, G, B, A uint8
}

var (
	White       = Color{255, 255, 255, 255}
	Transparent = Color{}
)

// FromHex builds an opaque colour from six hex digits such as "ddbea9".
// A leading '#' is accepted. Malformed input panics; use ParseHex for
// user-supplied values.
func FromHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseHex is FromHex with an error instead of a panic.
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrBadHex, s)
	}
	var b [3]byte
	if _, err := hex.Decode(b[:], []byte(s)); err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrBadHex, s)
	}
	return Color{R: b[0], G: b[1], B: b[2], A: 255}, nil
}

// FromChannels builds a colour from four explicit channel values.
func FromChannels(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

func (c Color) Equal(o Color) bool {
	return c == o
}

// IsWhite reports whether c is opaque pure white, the colour of an
// unfilled region.
func (c Color) IsWhite() bool {
	return c == White
}

// Hex returns the six-digit lower case form, dropping alpha.
func (c Color) Hex() string {
	return hex.EncodeToString([]byte{c.R, c.G, c.B})
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	a = uint32(c.A)
	r = uint32(c.R) * a / 255
	g = uint32(c.G) * a / 255
	b = uint32(c.B) * a / 255
	return r * 0x101, g * 0x101, b * 0x101, a * 0x101
}

// premul returns the bytes image.RGBA stores for c.
func (c Color) premul() [4]uint8 {
	a := uint32(c.A)
	return [4]uint8{
		uint8(uint32(c.R) * a / 255),
		uint8(uint32(c.G) * a / 255),
		uint8(uint32(c.B) * a / 255),
		c.A,
	}
}

// ColorAt reads pixel (x,y). Out of bounds pixels read as Transparent.
func ColorAt(img *image.RGBA, x, y int) Color {
	if !(image.Point{x, y}).In(img.Rect) {
		return Transparent
	}
	i := img.PixOffset(x, y)
	return pixelColor(img.Pix[i : i+4 : i+4])
}

// SetColor writes pixel (x,y). Out of bounds writes are dropped.
func SetColor(img *image.RGBA, x, y int, c Color) {
	if !(image.Point{x, y}).In(img.Rect) {
		return
	}
	i := img.PixOffset(x, y)
	p := c.premul()
	copy(img.Pix[i:i+4], p[:])
}

// pixelColor undoes the premultiplication of one image.RGBA pixel.
// Opaque and fully transparent pixels round-trip exactly.
func pixelColor(p []uint8) Color {
	a := p[3]
	switch a {
	case 0:
		return Transparent
	case 255:
		return Color{p[0], p[1], p[2], 255}
	}
	un := func(v uint8) uint8 {
		return uint8((uint32(v)*255 + uint32(a)/2) / uint32(a))
	}
	return Color{un(p[0]), un(p[1]), un(p[2]), a}
}
