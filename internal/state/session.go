package state

import (
	"context"
	"errors"
	"image"
	"math/rand/v2"
	"sync"
	"time"

	"MandalaBoard/internal/logger"
	"MandalaBoard/internal/mandala"

	"go.uber.org/zap"
)

// ErrNotPainting is delivered by End when no stroke was started.
var ErrNotPainting = errors.New("no stroke in progress")

// SessionOptions configure the fill phase of a Session.
type SessionOptions struct {
	// FillLimit caps the pixels one region may paint; 0 means the buffer
	// area.
	FillLimit int
	// Palettes to choose from; DefaultPalettes when empty.
	Palettes []mandala.Palette
	// Rand picks the palette; seeded from the clock when nil.
	Rand *rand.Rand
}

// FillResult is delivered once per fill task.
type FillResult struct {
	Image   *image.RGBA
	Palette int
	Stats   mandala.FillStats
	Elapsed time.Duration
	Err     error
}

// Session is the drawing state of one board: whether a stroke is active,
// the last accepted pointer position and the canvas it inks. Pointer-up
// starts a background fill task that a new pointer-down cancels.
type Session struct {
	ctx    context.Context
	log    *zap.Logger
	canvas *mandala.Canvas
	geom   mandala.Geometry
	disk   mandala.Wedge
	opts   SessionOptions

	mu       sync.Mutex
	painting bool
	hasLast  bool
	last     mandala.Point
	points   []mandala.Point
	palette  int
	gen      uint64
	cancel   context.CancelFunc

	// OnFilled runs on the fill goroutine after a finished fill has been
	// installed on the canvas.
	OnFilled func(FillResult)
}

func NewSession(ctx context.Context, canvas *mandala.Canvas, opts SessionOptions) *Session {
	if len(opts.Palettes) == 0 {
		opts.Palettes = mandala.DefaultPalettes
	}
	if opts.Rand == nil {
		now := uint64(time.Now().UnixNano())
		opts.Rand = rand.New(rand.NewPCG(now, now>>17))
	}
	g := canvas.Geometry()
	return &Session{
		ctx:    ctx,
		log:    logger.L(ctx),
		canvas: canvas,
		geom:   g,
		disk:   g.Disk(),
		opts:   opts,
	}
}

// Image returns the canvas buffer currently on display.
func (s *Session) Image() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvas.Image()
}

// Snapshot returns a copy of the canvas buffer, safe to hand to a renderer
// while strokes keep landing on the live buffer.
func (s *Session) Snapshot() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvas.Snapshot()
}

func (s *Session) Geometry() mandala.Geometry { return s.geom }

// Painting reports whether a stroke is in progress.
func (s *Session) Painting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.painting
}

// Stroke returns the accepted points of the current or last stroke.
func (s *Session) Stroke() []mandala.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mandala.Point(nil), s.points...)
}

// Palette returns the index of the palette chosen by the last End and the
// palette itself.
func (s *Session) Palette() (int, mandala.Palette) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.palette, s.opts.Palettes[s.palette]
}

// Start begins a new stroke. Any fill still running is cancelled and its
// output discarded, and the canvas is cleared.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.painting = true
}

// Reset clears the canvas and abandons any stroke or fill in progress.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.canvas.Reset()
	s.painting = false
	s.hasLast = false
	s.points = nil
}

// Move extends the stroke to (x, y) in every sector and returns the
// segments it inked. Points outside the disk are dropped and never become
// the previous point, so re-entering the disk does not draw a chord.
func (s *Session) Move(x, y float64) []mandala.Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.painting || !s.disk.Contains(x, y) {
		return nil
	}
	p := mandala.Point{X: x, Y: y}
	var segs []mandala.Segment
	if s.hasLast {
		segs = mandala.ExtendStroke(s.last, p, s.geom)
		s.canvas.Plot(segs)
	}
	s.last, s.hasLast = p, true
	s.points = append(s.points, p)
	return segs
}

// End finishes the stroke and fills it in the background with a randomly
// chosen palette. The channel receives exactly one result.
func (s *Session) End() <-chan FillResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.painting {
		return done(FillResult{Err: ErrNotPainting})
	}
	return s.finishLocked(mandala.ChoosePalette(s.opts.Rand, len(s.opts.Palettes)))
}

// EndWithPalette is End with a given palette index, used to replay a
// stroke drawn elsewhere.
func (s *Session) EndWithPalette(palette int) <-chan FillResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.painting {
		return done(FillResult{Err: ErrNotPainting})
	}
	n := len(s.opts.Palettes)
	return s.finishLocked(((palette % n) + n) % n)
}

// Replay redraws a stroke point by point and fills it with the stroke's
// palette.
func (s *Session) Replay(st Stroke) <-chan FillResult {
	s.Start()
	for _, p := range st.Points {
		s.Move(p.X, p.Y)
	}
	return s.EndWithPalette(st.Palette)
}

// Close cancels any running fill.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) finishLocked(palette int) <-chan FillResult {
	s.painting = false
	s.hasLast = false
	s.palette = palette
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	ch := make(chan FillResult, 1)
	go s.fill(ctx, cancel, s.gen, s.canvas.Snapshot(), palette, ch)
	return ch
}

func (s *Session) fill(ctx context.Context, cancel context.CancelFunc, gen uint64, img *image.RGBA, palette int, ch chan<- FillResult) {
	defer close(ch)
	defer cancel()

	start := time.Now()
	res := FillResult{Palette: palette}
	cycler := mandala.NewPaletteCycler(s.opts.Palettes[palette])
	res.Stats, res.Err = mandala.FillSlice(ctx, img, s.geom, cycler, s.opts.FillLimit)
	if res.Err == nil {
		res.Image, res.Err = mandala.Propagate(ctx, img, s.geom)
	}
	res.Elapsed = time.Since(start)

	s.mu.Lock()
	if res.Err == nil && gen != s.gen {
		res.Err = context.Canceled
	}
	if res.Err == nil {
		s.canvas.Replace(res.Image)
	}
	s.mu.Unlock()

	if res.Err != nil {
		res.Image = nil
		s.log.Debug("fill discarded", zap.Error(res.Err))
		ch <- res
		return
	}
	s.log.Info("fill done",
		zap.Duration("took", res.Elapsed),
		zap.Int("palette", palette),
		zap.Int("regions", res.Stats.Regions),
		zap.Int("truncated", res.Stats.Truncated))
	if s.OnFilled != nil {
		s.OnFilled(res)
	}
	ch <- res
}

func done(res FillResult) <-chan FillResult {
	ch := make(chan FillResult, 1)
	ch <- res
	close(ch)
	return ch
}
