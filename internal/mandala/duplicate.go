package mandala

import (
	"context"
	"image"

	xdraw "golang.org/x/image/draw"
)

// Propagate stamps the filled canonical slice of img around the disk and
// returns the result as a new buffer.
//
// Everything outside the slice is cleared in img first. The slice and its
// reflection across the horizontal line through the centre form a tile two
// sectors wide that is symmetric at its own seam; the tile is then drawn
// rotated by i*2θ for every sector i. Opaque tile pixels overwrite,
// transparent ones leave the output alone.
func Propagate(ctx context.Context, img *image.RGBA, g Geometry) (*image.RGBA, error) {
	b := img.Rect
	slice, disk := g.Slice(), g.Disk()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !ContainsPixel(slice, x, y) {
				i := img.PixOffset(x, y)
				clear(img.Pix[i : i+4])
			}
		}
	}

	// Pixel centres sit at +0.5, which is also where x/image/draw samples,
	// so the transforms below map pixel centres onto pixel centres.
	tile := cloneRGBA(img)
	xdraw.NearestNeighbor.Transform(tile, MirrorY(g.Center.Y), img, b, xdraw.Over, nil)

	out := cloneRGBA(img)
	step := 2 * g.SectorAngle()
	for i := 0; i < g.Sectors; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		xdraw.NearestNeighbor.Transform(out, Rotation(g.Center, float64(i)*step), tile, b, xdraw.Over, nil)
	}

	sealSeams(out, disk)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !ContainsPixel(disk, x, y) {
				i := out.PixOffset(x, y)
				clear(out.Pix[i : i+4])
			}
		}
	}
	return out, nil
}

// sealSeams fills disk pixels that no rotated tile reached. Nearest
// neighbour sampling can miss single pixels along the closing radii and
// the rim; each such pixel copies an opaque 4-neighbour. Passes repeat
// until nothing changes.
func sealSeams(img *image.RGBA, disk Wedge) {
	r := disk.Bounds().Intersect(img.Rect)
	neighbours := [4]image.Point{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	for {
		changed := false
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				i := img.PixOffset(x, y)
				if img.Pix[i+3] != 0 || !ContainsPixel(disk, x, y) {
					continue
				}
				for _, d := range neighbours {
					q := image.Point{x + d.X, y + d.Y}
					if !q.In(img.Rect) {
						continue
					}
					j := img.PixOffset(q.X, q.Y)
					if img.Pix[j+3] != 0 && ContainsPixel(disk, q.X, q.Y) {
						copy(img.Pix[i:i+4], img.Pix[j:j+4])
						changed = true
						break
					}
				}
			}
		}
		if !changed {
			return
		}
	}
}
