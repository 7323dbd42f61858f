// Package pptx encodes structured slides into a PowerPoint (OOXML) package
// built directly with archive/zip and literal part XML. Slides keep their
// extracted geometry: text boxes, pictures, shapes, tables and native charts
// are emitted as first-class drawing elements, not flattened screenshots.
// A raster mode embeds pre-rendered page images instead.
package pptx

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/k1LoW/errors"
	"github.com/scenezero/storyboard"
)

// Slide size in English Metric Units (16:9).
const (
	slideCX = 12192000
	slideCY = 6858000
)

type Encoder struct {
	logger *slog.Logger
	now    func() time.Time
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
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// emuX converts a canvas-space x coordinate or width to EMU.
func emuX(px float64) int {
	return int(px / float64(storyboard.CanvasWidth) * slideCX)
}

// emuY converts a canvas-space y coordinate or height to EMU.
func emuY(px float64) int {
	return int(px / float64(storyboard.CanvasHeight) * slideCY)
}

// mediaPart is a binary part (an embedded image) queued for the archive.
type mediaPart struct {
	name        string // e.g. media/image1.png
	contentType string
	data        []byte
}

// Encode writes a presentation with one slide per structured slide.
func (e *Encoder) Encode(w io.Writer, title string, slides []*storyboard.StructuredSlide) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	zw := zip.NewWriter(w)

	var (
		slideXMLs []string
		slideRels []string
		charts    []string
		media     []mediaPart
	)
	for i, s := range slides {
		b := newSlideBuilder(e, i+1, &charts, &media)
		slideXMLs = append(slideXMLs, b.build(s))
		slideRels = append(slideRels, b.rels())
	}

	if err := e.writeStaticParts(zw, title, len(slides), len(charts)); err != nil {
		return err
	}
	for i, xmlBody := range slideXMLs {
		if err := writePart(zw, fmt.Sprintf("ppt/slides/slide%d.xml", i+1), xmlBody); err != nil {
			return err
		}
		if err := writePart(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), slideRels[i]); err != nil {
			return err
		}
	}
	for i, c := range charts {
		if err := writePart(zw, fmt.Sprintf("ppt/charts/chart%d.xml", i+1), c); err != nil {
			return err
		}
	}
	for _, m := range media {
		if err := writeBinaryPart(zw, "ppt/"+m.name, m.data); err != nil {
			return err
		}
	}
	return zw.Close()
}

// EncodeRaster writes a presentation where each slide is a single full-bleed
// picture built from the given page screenshot.
func (e *Encoder) EncodeRaster(w io.Writer, title string, images [][]byte) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	zw := zip.NewWriter(w)

	if err := e.writeStaticParts(zw, title, len(images), 0); err != nil {
		return err
	}
	for i, b := range images {
		mediaName := fmt.Sprintf("media/image%d.png", i+1)
		slideXML := xmlHeader + `<p:sld ` + sldNS + `><p:cSld><p:spTree>` + spTreeHeader +
			picXML(1, "rId2", fmt.Sprintf("Snapshot %d", i+1), 0, 0, slideCX, slideCY) +
			`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`
		rels := xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>` +
			`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../` + mediaName + `"/>` +
			`</Relationships>`
		if err := writePart(zw, fmt.Sprintf("ppt/slides/slide%d.xml", i+1), slideXML); err != nil {
			return err
		}
		if err := writePart(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), rels); err != nil {
			return err
		}
		if err := writeBinaryPart(zw, "ppt/"+mediaName, b); err != nil {
			return err
		}
	}
	return zw.Close()
}

func writePart(zw *zip.Writer, name, body string) error {
	f, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.WriteString(f, body)
	return err
}

func writeBinaryPart(zw *zip.Writer, name string, b []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = f.Write(b)
	return err
}
