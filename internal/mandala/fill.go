package mandala

import (
	"context"
	"errors"
	"fmt"
	"image"

	"MandalaBoard/internal/logger"

	"go.uber.org/zap"
)

// ErrFillBoundExceeded reports a region that hit the visit limit. The
// painted part of the region is left in place.
var ErrFillBoundExceeded = errors.New("flood fill bound exceeded")

// FloodFill recolours the 4-connected region of equal pixels containing
// (x, y) with fill. It returns the number of pixels painted.
//
// The work list is an explicit stack. limit caps the number of painted
// pixels; limit <= 0 means the buffer area, which no region can exceed.
// On reaching the cap with work left the fill stops and returns
// ErrFillBoundExceeded.
func FloodFill(img *image.RGBA, x, y int, fill Color, limit int) (int, error) {
	b := img.Rect
	if !(image.Point{x, y}).In(b) {
		return 0, nil
	}
	if limit <= 0 {
		limit = b.Dx() * b.Dy()
	}
	i := img.PixOffset(x, y)
	var target [4]uint8
	copy(target[:], img.Pix[i:i+4])
	paint := fill.premul()
	if target == paint {
		return 0, nil
	}

	painted := 0
	stack := []image.Point{{x, y}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !p.In(b) {
			continue
		}
		i := img.PixOffset(p.X, p.Y)
		px := img.Pix[i : i+4 : i+4]
		if px[0] != target[0] || px[1] != target[1] || px[2] != target[2] || px[3] != target[3] {
			continue
		}
		if painted == limit {
			return painted, fmt.Errorf("%w: seed (%d,%d), limit %d", ErrFillBoundExceeded, x, y, limit)
		}
		copy(px, paint[:])
		painted++
		stack = append(stack,
			image.Point{p.X - 1, p.Y},
			image.Point{p.X + 1, p.Y},
			image.Point{p.X, p.Y - 1},
			image.Point{p.X, p.Y + 1},
		)
	}
	return painted, nil
}

// FillStats summarises one FillSlice run.
type FillStats struct {
	Regions   int // regions seeded
	Pixels    int // pixels painted
	Truncated int // regions stopped by the limit
}

// FillSlice colours every white region that reaches into the canonical
// slice, taking a new colour from cycler for each region. Regions are
// grown over the whole buffer, not just the slice. Bound overruns are
// logged and counted, not returned. The scan stops with ctx.Err() when ctx
// is cancelled.
func FillSlice(ctx context.Context, img *image.RGBA, g Geometry, cycler *PaletteCycler, limit int) (FillStats, error) {
	var st FillStats
	slice := g.Slice()
	r := slice.Bounds().Intersect(img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		for x := r.Min.X; x < r.Max.X; x++ {
			if !ContainsPixel(slice, x, y) || !ColorAt(img, x, y).IsWhite() {
				continue
			}
			n, err := FloodFill(img, x, y, cycler.Next(), limit)
			st.Regions++
			st.Pixels += n
			if errors.Is(err, ErrFillBoundExceeded) {
				st.Truncated++
				logger.L(ctx).Warn("region truncated",
					zap.Int("x", x), zap.Int("y", y),
					zap.Int("painted", n), zap.Error(err))
			}
		}
	}
	return st, nil
}
