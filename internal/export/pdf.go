// Package export writes a finished mandala to PNG or PDF.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// a4 page with a 15 mm margin
const (
	pageW  = 210.0
	pageH  = 297.0
	margin = 15.0
)

// PNG encodes img as PNG.
func PNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// PDF writes img as a single A4 page, scaled to fit inside the margins and
// centred. title goes into the document metadata.
func PDF(w io.Writer, img image.Image, title string) error {
	var buf bytes.Buffer
	if err := PNG(&buf, img); err != nil {
		return err
	}

	p := gofpdf.New("P", "mm", "A4", "")
	p.SetTitle(title, true)
	p.SetCreator("MandalaBoard", true)
	p.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader("mandala", opts, &buf)
	if err := p.Error(); err != nil {
		return fmt.Errorf("embed image: %w", err)
	}

	b := img.Bounds()
	x, y, wmm, hmm := fit(float64(b.Dx()), float64(b.Dy()))
	p.ImageOptions("mandala", x, y, wmm, hmm, false, opts, 0, "")
	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// fit scales a w x h picture into the printable area of the page, keeping
// its aspect ratio, and returns its position and size in millimetres.
func fit(w, h float64) (x, y, fw, fh float64) {
	aw, ah := pageW-2*margin, pageH-2*margin
	scale := aw / w
	if ah/h < scale {
		scale = ah / h
	}
	fw, fh = w*scale, h*scale
	return (pageW - fw) / 2, (pageH - fh) / 2, fw, fh
}
