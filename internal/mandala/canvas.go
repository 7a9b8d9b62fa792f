package mandala

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// CanvasOptions control how strokes are inked.
type CanvasOptions struct {
	Ink       Color
	LineWidth float64
}

// DefaultInk is a dark grey.
var DefaultInk = Color{50, 50, 50, 255}

const DefaultLineWidth = 2.0

// Canvas owns the pixel buffer a session draws into.
type Canvas struct {
	img   *image.RGBA
	geom  Geometry
	disk  Wedge
	opts  CanvasOptions
	z     *vector.Rasterizer
	cover *image.Alpha
}

// NewCanvas allocates a w x h canvas and resets it.
func NewCanvas(w, h int, g Geometry, opts CanvasOptions) *Canvas {
	if opts.Ink == (Color{}) {
		opts.Ink = DefaultInk
	}
	if opts.LineWidth <= 0 {
		opts.LineWidth = DefaultLineWidth
	}
	r := image.Rect(0, 0, w, h)
	c := &Canvas{
		img:   image.NewRGBA(r),
		geom:  g,
		disk:  g.Disk(),
		opts:  opts,
		z:     vector.NewRasterizer(w, h),
		cover: image.NewAlpha(r),
	}
	c.z.DrawOp = draw.Src
	c.Reset()
	return c
}

func (c *Canvas) Geometry() Geometry { return c.geom }

// Image is the live buffer. Callers must not hold on to it across Replace.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Snapshot returns a deep copy of the buffer.
func (c *Canvas) Snapshot() *image.RGBA {
	return cloneRGBA(c.img)
}

// Replace swaps in img as the canvas buffer. img must have the canvas
// bounds.
func (c *Canvas) Replace(img *image.RGBA) {
	if img.Rect != c.img.Rect {
		panic("mandala: replacement buffer has different bounds")
	}
	c.img = img
}

// Reset clears everything to transparent and paints the disk white.
func (c *Canvas) Reset() {
	clear(c.img.Pix)
	white := White.premul()
	r := c.disk.Bounds().Intersect(c.img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if ContainsPixel(c.disk, x, y) {
				i := c.img.PixOffset(x, y)
				copy(c.img.Pix[i:i+4], white[:])
			}
		}
	}
}

// Plot inks segs onto the canvas and returns the rectangle that changed.
// Coverage outside the disk is discarded, so pixels outside the disk are
// never touched.
func (c *Canvas) Plot(segs []Segment) image.Rectangle {
	if len(segs) == 0 {
		return image.Rectangle{}
	}
	b := c.img.Rect
	c.z.Reset(b.Dx(), b.Dy())
	dirty := image.Rectangle{}
	half := c.opts.LineWidth / 2
	for _, s := range segs {
		c.addQuad(s, half)
		dirty = dirty.Union(segmentBounds(s, half))
	}
	dirty = dirty.Intersect(b)
	if dirty.Empty() {
		return dirty
	}
	c.z.Draw(c.cover, b, image.Opaque, image.Point{})
	for y := dirty.Min.Y; y < dirty.Max.Y; y++ {
		for x := dirty.Min.X; x < dirty.Max.X; x++ {
			if !ContainsPixel(c.disk, x, y) {
				c.cover.Pix[c.cover.PixOffset(x, y)] = 0
			}
		}
	}
	draw.DrawMask(c.img, dirty, image.NewUniform(c.opts.Ink), image.Point{}, c.cover, dirty.Min, draw.Over)
	return dirty
}

// addQuad adds s as a rectangle of width 2*half with square caps. The
// vertex order only depends on the segment direction, so every quad has
// the same winding and overlapping quads never cancel.
func (c *Canvas) addQuad(s Segment, half float64) {
	dx, dy := s.To.X-s.From.X, s.To.Y-s.From.Y
	l := math.Hypot(dx, dy)
	if l < 1e-9 {
		dx, dy, l = 1, 0, 1
	}
	ux, uy := dx/l*half, dy/l*half
	nx, ny := -uy, ux
	sx, sy := s.From.X-ux, s.From.Y-uy
	ex, ey := s.To.X+ux, s.To.Y+uy
	bx, by := float64(c.img.Rect.Min.X), float64(c.img.Rect.Min.Y)
	c.z.MoveTo(float32(sx+nx-bx), float32(sy+ny-by))
	c.z.LineTo(float32(ex+nx-bx), float32(ey+ny-by))
	c.z.LineTo(float32(ex-nx-bx), float32(ey-ny-by))
	c.z.LineTo(float32(sx-nx-bx), float32(sy-ny-by))
	c.z.ClosePath()
}

func segmentBounds(s Segment, half float64) image.Rectangle {
	pad := half + 1
	return image.Rect(
		int(math.Floor(math.Min(s.From.X, s.To.X)-pad)),
		int(math.Floor(math.Min(s.From.Y, s.To.Y)-pad)),
		int(math.Ceil(math.Max(s.From.X, s.To.X)+pad)),
		int(math.Ceil(math.Max(s.From.Y, s.To.Y)+pad)),
	)
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := &image.RGBA{
		Pix:    make([]uint8, len(src.Pix)),
		Stride: src.Stride,
		Rect:   src.Rect,
	}
	copy(dst.Pix, src.Pix)
	return dst
}
