package ui

import (
	"image"
	"image/color"
	"sync"

	"MandalaBoard/internal/mandala"
	"MandalaBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

var (
	idleBackground = color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	doneBackground = color.White
)

// Board shows a session's canvas and turns pointer input into strokes.
// All methods must run on the fyne main goroutine; fill completions are
// handed over with fyne.Do.
type Board struct {
	widget.BaseWidget

	session *state.Session
	log     *zap.Logger

	background *canvas.Rectangle
	raster     *canvas.Image
	intro      *fyne.Container
	status     *widget.Label

	mu       sync.Mutex
	drawing  bool
	remote   bool
	imgSize  image.Point
	onChange []func()

	// OnStroke runs after a local stroke ends, with its accepted points and
	// the palette index chosen for its fill.
	OnStroke func(points []mandala.Point, palette int)
	// OnReset runs when the user clears the board.
	OnReset func()
}

var _ fyne.Widget = (*Board)(nil)
var _ fyne.Draggable = (*Board)(nil)
var _ desktop.Mouseable = (*Board)(nil)

// NewBoard wraps s. The session's OnFilled callback is taken over by the
// board.
func NewBoard(s *state.Session, log *zap.Logger) *Board {
	if log == nil {
		log = zap.NewNop()
	}
	img := s.Snapshot()
	b := &Board{
		session:    s,
		log:        log,
		background: canvas.NewRectangle(idleBackground),
		raster:     canvas.NewImageFromImage(img),
		status:     widget.NewLabel("Ready"),
		imgSize:    img.Bounds().Size(),
	}
	b.raster.FillMode = canvas.ImageFillContain
	b.raster.ScaleMode = canvas.ImageScalePixels
	b.intro = container.NewCenter(container.NewVBox(
		introText("Draw"), introText("Wait"), introText("Watch"),
	))

	s.OnFilled = func(res state.FillResult) {
		fyne.Do(func() { b.filled(res) })
	}
	b.ExtendBaseWidget(b)
	return b
}

func introText(s string) *canvas.Text {
	t := canvas.NewText(s, color.NRGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff})
	t.TextSize = 48
	t.TextStyle = fyne.TextStyle{Bold: true}
	t.Alignment = fyne.TextAlignCenter
	return t
}

// Status is the label the board reports its state in. The app places it.
func (b *Board) Status() *widget.Label { return b.status }

// Image returns a copy of the canvas as currently shown.
func (b *Board) Image() *image.RGBA { return b.session.Snapshot() }

// OnPaletteChange registers fn to run whenever a fill with a new palette
// is shown.
func (b *Board) OnPaletteChange(fn func()) {
	b.mu.Lock()
	b.onChange = append(b.onChange, fn)
	b.mu.Unlock()
}

// SetStatus updates the status line. Safe from any goroutine.
func (b *Board) SetStatus(text string) {
	fyne.Do(func() { b.status.SetText(text) })
}

// Reset clears the board locally.
func (b *Board) Reset() {
	b.drawing = false
	b.session.Reset()
	b.background.FillColor = idleBackground
	b.background.Refresh()
	b.redraw()
}

// Clear is the toolbar action: reset, then tell the peers.
func (b *Board) Clear() {
	b.Reset()
	b.status.SetText("Cleared")
	if b.OnReset != nil {
		b.OnReset()
	}
}

// Replay shows a stroke drawn on another board.
func (b *Board) Replay(st state.Stroke) {
	b.drawing = false
	b.remote = true
	b.hideIntro()
	b.background.FillColor = idleBackground
	b.background.Refresh()
	b.session.Replay(st)
	b.status.SetText("Wait")
	b.redraw()
}

func (b *Board) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	x, y, ok := viewToImage(e.Position, b.Size(), b.imgSize)
	if !ok {
		return
	}
	b.drawing = true
	b.remote = false
	b.hideIntro()
	b.background.FillColor = idleBackground
	b.background.Refresh()
	b.session.Start()
	b.session.Move(x, y)
	b.status.SetText("Draw")
	b.redraw()
}

func (b *Board) Dragged(e *fyne.DragEvent) {
	if !b.drawing {
		return
	}
	x, y, ok := viewToImage(e.Position, b.Size(), b.imgSize)
	if !ok {
		return
	}
	if len(b.session.Move(x, y)) > 0 {
		b.redraw()
	}
}

func (b *Board) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		b.finish()
	}
}

func (b *Board) DragEnd() { b.finish() }

func (b *Board) MouseIn(*desktop.MouseEvent)    {}
func (b *Board) MouseMoved(*desktop.MouseEvent) {}
func (b *Board) MouseOut()                      {}

func (b *Board) finish() {
	if !b.drawing {
		return
	}
	b.drawing = false
	points := b.session.Stroke()
	b.session.End()
	b.status.SetText("Wait")
	palette, _ := b.session.Palette()
	if b.OnStroke != nil && len(points) > 0 {
		b.OnStroke(points, palette)
	}
}

func (b *Board) filled(res state.FillResult) {
	b.background.FillColor = doneBackground
	b.background.Refresh()
	b.redraw()
	if b.remote {
		b.status.SetText("Watch")
	} else {
		b.status.SetText("Done")
	}
	b.log.Debug("fill shown", zap.Int("palette", res.Palette), zap.Duration("took", res.Elapsed))

	b.mu.Lock()
	fns := append([]func(){}, b.onChange...)
	b.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (b *Board) hideIntro() {
	if b.intro.Visible() {
		b.intro.Hide()
	}
}

func (b *Board) redraw() {
	b.raster.Image = b.session.Snapshot()
	b.raster.Refresh()
}

func (b *Board) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(b.background, b.raster, b.intro))
}

func (b *Board) MinSize() fyne.Size { return fyne.NewSize(300, 300) }

// viewToImage maps a widget position to image coordinates for an image of
// size img drawn contained and centred in a widget of size view. ok is
// false outside the drawn image.
func viewToImage(pos fyne.Position, view fyne.Size, img image.Point) (x, y float64, ok bool) {
	if img.X <= 0 || img.Y <= 0 || view.Width <= 0 || view.Height <= 0 {
		return 0, 0, false
	}
	scale := float64(view.Width) / float64(img.X)
	if s := float64(view.Height) / float64(img.Y); s < scale {
		scale = s
	}
	offX := (float64(view.Width) - float64(img.X)*scale) / 2
	offY := (float64(view.Height) - float64(img.Y)*scale) / 2
	x = (float64(pos.X) - offX) / scale
	y = (float64(pos.Y) - offY) / scale
	if x < 0 || y < 0 || x >= float64(img.X) || y >= float64(img.Y) {
		return 0, 0, false
	}
	return x, y, true
}
