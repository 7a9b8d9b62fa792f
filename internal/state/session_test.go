package state

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"MandalaBoard/internal/mandala"

	"github.com/google/go-cmp/cmp"
)

func newTestSession(t *testing.T, seed uint64) *Session {
	t.Helper()
	g, err := mandala.GeometryForCanvas(120, 120, 10, 8)
	if err != nil {
		t.Fatal(err)
	}
	c := mandala.NewCanvas(120, 120, g, mandala.CanvasOptions{})
	s := NewSession(context.Background(), c, SessionOptions{Rand: rand.New(rand.NewPCG(seed, seed))})
	t.Cleanup(s.Close)
	return s
}

// drawTestStroke draws a short zigzag in the canonical slice.
func drawTestStroke(s *Session) {
	c := s.Geometry().Center
	for _, p := range []mandala.Point{
		{X: c.X + 10, Y: c.Y + 2},
		{X: c.X + 30, Y: c.Y + 8},
		{X: c.X + 20, Y: c.Y + 15},
		{X: c.X + 45, Y: c.Y + 5},
	} {
		s.Move(p.X, p.Y)
	}
}

func TestMoveRequiresStart(t *testing.T) {
	s := newTestSession(t, 1)
	if segs := s.Move(60, 60); segs != nil {
		t.Errorf("Move before Start drew %d segments", len(segs))
	}
	if len(s.Stroke()) != 0 {
		t.Error("point recorded before Start")
	}
}

func TestMoveIgnoresPointsOutsideDisk(t *testing.T) {
	s := newTestSession(t, 1)
	s.Start()
	a := mandala.Point{X: 70, Y: 65}
	b := mandala.Point{X: 80, Y: 62}
	if segs := s.Move(a.X, a.Y); segs != nil {
		t.Errorf("first move drew %d segments", len(segs))
	}
	if segs := s.Move(2, 2); segs != nil {
		t.Errorf("move outside the disk drew %d segments", len(segs))
	}
	segs := s.Move(b.X, b.Y)
	if len(segs) != 16 {
		t.Fatalf("got %d segments, want 16", len(segs))
	}
	if d := cmp.Diff(mandala.Segment{From: a, To: b}, segs[0]); d != "" {
		t.Errorf("segment should join the last point inside the disk: %s", d)
	}
	if d := cmp.Diff([]mandala.Point{a, b}, s.Stroke()); d != "" {
		t.Error(d)
	}
}

func TestEndFillsDisk(t *testing.T) {
	s := newTestSession(t, 7)
	var called FillResult
	s.OnFilled = func(r FillResult) { called = r }
	s.Start()
	drawTestStroke(s)
	res := <-s.End()
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if s.Painting() {
		t.Error("still painting after End")
	}
	if res.Image != s.Image() {
		t.Error("fill result not installed on the canvas")
	}
	if called.Image != res.Image {
		t.Error("OnFilled not called with the result")
	}
	idx, p := s.Palette()
	if idx != res.Palette || len(p) == 0 {
		t.Errorf("palette %d, result palette %d", idx, res.Palette)
	}

	disk := s.Geometry().Disk()
	for y := 0; y < 120; y++ {
		for x := 0; x < 120; x++ {
			if mandala.ContainsPixel(disk, x, y) && mandala.ColorAt(res.Image, x, y).IsWhite() {
				t.Fatalf("pixel (%d,%d) left white", x, y)
			}
		}
	}
}

func TestEndWithoutStart(t *testing.T) {
	s := newTestSession(t, 1)
	res := <-s.End()
	if !errors.Is(res.Err, ErrNotPainting) {
		t.Errorf("err = %v, want ErrNotPainting", res.Err)
	}
}

func TestStartDiscardsRunningFill(t *testing.T) {
	s := newTestSession(t, 3)
	s.Start()
	drawTestStroke(s)

	// start the fill and a new stroke before the fill can take the lock
	s.mu.Lock()
	ch := s.finishLocked(0)
	s.resetLocked()
	s.painting = true
	s.mu.Unlock()

	res := <-ch
	if !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", res.Err)
	}
	if res.Image != nil {
		t.Error("cancelled fill returned an image")
	}
	c := s.Geometry().Center
	if got := mandala.ColorAt(s.Image(), int(c.X)+20, int(c.Y)+3); !got.IsWhite() {
		t.Errorf("cancelled fill reached the canvas: %v", got)
	}
}

func TestReplayReproducesMandala(t *testing.T) {
	a := newTestSession(t, 11)
	a.Start()
	drawTestStroke(a)
	ra := <-a.End()
	if ra.Err != nil {
		t.Fatal(ra.Err)
	}

	b := newTestSession(t, 99)
	rb := <-b.Replay(Stroke{Points: a.Stroke(), Palette: ra.Palette})
	if rb.Err != nil {
		t.Fatal(rb.Err)
	}
	if rb.Palette != ra.Palette {
		t.Errorf("palette %d, want %d", rb.Palette, ra.Palette)
	}
	if !bytes.Equal(ra.Image.Pix, rb.Image.Pix) {
		t.Error("replayed mandala differs")
	}
}

func TestEndWithPaletteWraps(t *testing.T) {
	s := newTestSession(t, 1)
	s.Start()
	res := <-s.EndWithPalette(-1)
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if want := len(mandala.DefaultPalettes) - 1; res.Palette != want {
		t.Errorf("palette %d, want %d", res.Palette, want)
	}
}
