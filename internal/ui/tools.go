package ui

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"MandalaBoard/internal/export"
	"MandalaBoard/internal/mandala"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

// colorSwatch shows one colour of the active palette.
type colorSwatch struct {
	widget.BaseWidget
	rect *canvas.Rectangle
}

func newColorSwatch(c color.Color) *colorSwatch {
	s := &colorSwatch{rect: canvas.NewRectangle(c)}
	s.rect.SetMinSize(fyne.NewSize(24, 24))
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1
	return widget.NewSimpleRenderer(container.NewStack(s.rect, border))
}

func swatches(p mandala.Palette) []fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, len(p))
	for i, c := range p {
		objs[i] = newColorSwatch(color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A})
	}
	return objs
}

// NewToolbar builds the actions row: clear, the two exports and the
// palette of the last fill.
func NewToolbar(board *Board, win fyne.Window) fyne.CanvasObject {
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentClearIcon(), board.Clear),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() {
			saveAs(win, board, "mandala.png", func(w io.Writer, img image.Image) error {
				return export.PNG(w, img)
			})
		}),
		widget.NewToolbarAction(theme.DocumentPrintIcon(), func() {
			saveAs(win, board, "mandala.pdf", func(w io.Writer, img image.Image) error {
				return export.PDF(w, img, "Mandala")
			})
		}),
	)

	colorBox := container.NewHBox()
	showPalette := func() {
		_, p := board.session.Palette()
		colorBox.Objects = swatches(p)
		colorBox.Refresh()
	}
	board.OnPaletteChange(showPalette)

	return container.NewHBox(
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Palette:"),
		colorBox,
		layout.NewSpacer(),
		board.Status(),
	)
}

func saveAs(win fyne.Window, board *Board, name string, write func(io.Writer, image.Image) error) {
	img := board.Image()
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		if w == nil {
			return
		}
		defer w.Close()
		if err := write(w, img); err != nil {
			board.log.Error("export failed", zap.String("uri", w.URI().String()), zap.Error(err))
			dialog.ShowError(err, win)
			return
		}
		board.status.SetText(fmt.Sprintf("Saved %s", w.URI().Name()))
	}, win)
	d.SetFileName(name)
	ext := name[len(name)-4:]
	d.SetFilter(storage.NewExtensionFileFilter([]string{ext}))
	d.Show()
}
