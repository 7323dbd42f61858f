// Package pdf encodes structured slides into a PDF document, one landscape
// page per slide, drawn natively from the extracted geometry. A raster
// fallback embeds pre-rendered page screenshots instead.
package pdf

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/k1LoW/errors"
	"github.com/scenezero/storyboard"
)

// Page size in points, matching the extraction canvas 1:1.
const (
	pageWidth  = float64(storyboard.CanvasWidth)
	pageHeight = float64(storyboard.CanvasHeight)
)

type Encoder struct {
	logger *slog.Logger
}

type Option func(*Encoder)

func WithLogger(l *slog.Logger) Option {
	return func(e *Encoder) {
		e.logger = l
	}
}

func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode writes one page per structured slide. Image elements whose source
// cannot be fetched or decoded are skipped with a warning; a broken image
// never fails the whole export.
func (e *Encoder) Encode(w *bytes.Buffer, title string, slides []*storyboard.StructuredSlide) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	doc := newDoc(title)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	for _, s := range slides {
		doc.AddPage()
		e.drawBackground(doc, s)
		for _, el := range s.Elements {
			switch el.Kind {
			case storyboard.ElementText:
				drawText(doc, tr, el)
			case storyboard.ElementImage:
				e.placeImage(doc, el.ID, el.Src, el.X, el.Y, el.Width, el.Height)
			case storyboard.ElementShape:
				drawShape(doc, el)
			}
		}
	}
	return doc.Output(w)
}

// EncodeRaster writes one page per screenshot, each image bleeding to the
// page edges.
func (e *Encoder) EncodeRaster(w *bytes.Buffer, title string, images [][]byte) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	doc := newDoc(title)
	for i, b := range images {
		doc.AddPage()
		name := fmt.Sprintf("page-%d", i+1)
		opt := fpdf.ImageOptions{ImageType: "PNG"}
		doc.RegisterImageOptionsReader(name, opt, bytes.NewReader(b))
		doc.ImageOptions(name, 0, 0, pageWidth, pageHeight, false, opt, 0, "")
	}
	return doc.Output(w)
}

func newDoc(title string) *fpdf.Fpdf {
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
	})
	doc.SetTitle(title, true)
	doc.SetAutoPageBreak(false, 0)
	doc.SetMargins(0, 0, 0)
	return doc
}

func (e *Encoder) drawBackground(doc *fpdf.Fpdf, s *storyboard.StructuredSlide) {
	r, g, b := hexRGB(s.BGColor)
	doc.SetFillColor(r, g, b)
	doc.Rect(0, 0, pageWidth, pageHeight, "F")
	if s.BGImage != "" {
		e.placeImage(doc, fmt.Sprintf("bg-%d", s.ID), s.BGImage, 0, 0, pageWidth, pageHeight)
	}
}

func drawText(doc *fpdf.Fpdf, tr func(string) string, el *storyboard.Element) {
	size := el.FontSize
	if size <= 0 {
		size = 16
	}
	style := ""
	if el.FontWeight == "bold" || el.FontWeight == "900" {
		style = "B"
	}
	doc.SetFont("Helvetica", style, size)
	r, g, b := hexRGB(el.Color)
	doc.SetTextColor(r, g, b)
	// baseline approximated as y+fontSize rather than ascent-aware placement
	for i, line := range strings.Split(el.Content, "\n") {
		t := tr(line)
		x := el.X
		switch el.TextAlign {
		case storyboard.AlignCenter:
			x += (el.Width - doc.GetStringWidth(t)) / 2
		case storyboard.AlignRight:
			x += el.Width - doc.GetStringWidth(t)
		}
		doc.Text(x, el.Y+size+float64(i)*size*1.3, t)
	}
}

func (e *Encoder) placeImage(doc *fpdf.Fpdf, name, src string, x, y, w, h float64) {
	if src == "" || src == "loading" {
		return
	}
	img, err := storyboard.NewImage(src)
	if err != nil {
		e.logger.Warn("skipped image", slog.String("src", src), slog.String("error", err.Error()))
		return
	}
	opt := fpdf.ImageOptions{ImageType: imageType(img.MIMEType())}
	doc.RegisterImageOptionsReader(name, opt, bytes.NewReader(img.Bytes()))
	doc.ImageOptions(name, x, y, w, h, false, opt, 0, "")
}

func drawShape(doc *fpdf.Fpdf, el *storyboard.Element) {
	r, g, b := hexRGB(el.Color)
	doc.SetFillColor(r, g, b)
	if el.Opacity > 0 && el.Opacity < 1 {
		doc.SetAlpha(el.Opacity, "Normal")
		defer doc.SetAlpha(1, "Normal")
	}
	if el.ShapeType == storyboard.ShapeCircle {
		doc.Ellipse(el.X+el.Width/2, el.Y+el.Height/2, el.Width/2, el.Height/2, 0, "F")
		return
	}
	doc.Rect(el.X, el.Y, el.Width, el.Height, "F")
}

func imageType(mime storyboard.MIMEType) string {
	switch mime {
	case storyboard.MIMETypeImageJPEG:
		return "JPG"
	case storyboard.MIMETypeImageGIF:
		return "GIF"
	default:
		return "PNG"
	}
}

// hexRGB parses a #rrggbb literal. Anything else comes back as black.
func hexRGB(hex string) (int, int, int) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0
	}
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0
	}
	return r, g, b
}
