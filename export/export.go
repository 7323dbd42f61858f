// Package export turns a deck into its downloadable artifacts: a round-trip
// JSON document, a vector or raster PDF, and a structural or raster PPTX.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"

	"github.com/k1LoW/errors"
	"github.com/scenezero/storyboard"
	"github.com/scenezero/storyboard/pdf"
	"github.com/scenezero/storyboard/pptx"
)

// Format selects an export target.
type Format string

const (
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
	FormatPPTX Format = "pptx"
)

// formatTag and version identify the JSON round-trip document.
const (
	formatTag = "storyboard"
	version   = "1.0"
)

// ErrIncompatibleFormat reports an import file whose shape is not a deck
// document, as opposed to one that merely failed to read.
var ErrIncompatibleFormat = errors.New("incompatible format")

// Document is the JSON round-trip envelope. Slide HTML is preserved verbatim
// so that exporting and re-importing reconstructs an equivalent deck.
type Document struct {
	Title              string            `json:"title"`
	ProjectTitle       string            `json:"projectTitle"`
	Description        string            `json:"description,omitempty"`
	ProjectDescription string            `json:"projectDescription,omitempty"`
	Slides             storyboard.Slides `json:"slides"`
	ExportedAt         time.Time         `json:"exportedAt"`
	Format             string            `json:"format"`
	Version            string            `json:"version"`
}

// EncodeJSON writes the round-trip document for a deck.
func EncodeJSON(w io.Writer, deck *storyboard.Deck, now time.Time) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	doc := Document{
		Title:              deck.Title,
		ProjectTitle:       deck.Title,
		Description:        deck.Description,
		ProjectDescription: deck.Description,
		Slides:             deck.Slides,
		ExportedAt:         now.UTC(),
		Format:             formatTag,
		Version:            version,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

// DecodeJSON reads a round-trip document back into a deck. The shape is
// validated before any deck is constructed: a file whose slides field is
// missing or not an array is rejected with ErrIncompatibleFormat.
func DecodeJSON(r io.Reader) (_ *storyboard.Deck, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var probe struct {
		Slides json.RawMessage `json:"slides"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrIncompatibleFormat, err)
	}
	trimmed := bytes.TrimSpace(probe.Slides)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: slides is not an array", ErrIncompatibleFormat)
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrIncompatibleFormat, err)
	}
	deck := &storyboard.Deck{
		Title:       doc.Title,
		Description: doc.Description,
		Slides:      doc.Slides,
	}
	if deck.Title == "" {
		deck.Title = doc.ProjectTitle
	}
	deck.Slides.Sort()
	return deck, nil
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// SafeFilename derives an output filename from a deck title by replacing
// whitespace runs with underscores.
func SafeFilename(title string, format Format) string {
	name := whitespaceRe.ReplaceAllString(title, "_")
	if name == "" {
		name = "storyboard"
	}
	return name + "." + string(format)
}

// Exporter orchestrates the full deck export pipeline: structural extraction
// or snapshotting, then encoding into the requested format.
type Exporter struct {
	extractor   *storyboard.Extractor
	snapshotter *storyboard.Snapshotter
	logger      *slog.Logger
	now         func() time.Time
}

type Option func(*Exporter)

func WithExtractor(e *storyboard.Extractor) Option {
	return func(x *Exporter) {
		x.extractor = e
	}
}

func WithSnapshotter(s *storyboard.Snapshotter) Option {
	return func(x *Exporter) {
		x.snapshotter = s
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(x *Exporter) {
		x.logger = l
	}
}

func New(opts ...Option) *Exporter {
	x := &Exporter{
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(x)
	}
	if x.extractor == nil {
		x.extractor = storyboard.NewExtractor()
	}
	return x
}

// Export writes the deck in the given format. When raster is true the PDF
// and PPTX paths embed whole-slide snapshots instead of re-deriving element
// geometry, which keeps free-form live edits pixel-exact.
func (x *Exporter) Export(ctx context.Context, w io.Writer, deck *storyboard.Deck, format Format, raster bool) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	switch format {
	case FormatJSON:
		return EncodeJSON(w, deck, x.now())
	case FormatPDF, FormatPPTX:
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}

	if raster {
		return x.exportRaster(ctx, w, deck, format)
	}

	structured, err := x.extractor.ExtractAll(ctx, deck.Slides)
	if err != nil {
		return err
	}
	for _, s := range structured {
		x.logger.Info("extracted slide", slog.Int("id", s.ID), slog.Int("elements", len(s.Elements)))
	}
	switch format {
	case FormatPDF:
		var buf bytes.Buffer
		enc := pdf.NewEncoder(pdf.WithLogger(x.logger))
		if err := enc.Encode(&buf, deck.Title, structured); err != nil {
			return err
		}
		_, err = w.Write(buf.Bytes())
		return err
	default:
		return pptx.NewEncoder(pptx.WithLogger(x.logger)).Encode(w, deck.Title, structured)
	}
}

func (x *Exporter) exportRaster(ctx context.Context, w io.Writer, deck *storyboard.Deck, format Format) error {
	if x.snapshotter == nil {
		return errors.New("raster export requires a snapshotter")
	}
	images, err := x.snapshotter.SnapshotAll(ctx, deck.Slides)
	if err != nil {
		return err
	}
	for i := range images {
		x.logger.Info("rendered snapshot", slog.Int("id", deck.Slides[i].ID))
	}
	switch format {
	case FormatPDF:
		var buf bytes.Buffer
		enc := pdf.NewEncoder(pdf.WithLogger(x.logger))
		if err := enc.EncodeRaster(&buf, deck.Title, images); err != nil {
			return err
		}
		_, err = w.Write(buf.Bytes())
		return err
	default:
		return pptx.NewEncoder(pptx.WithLogger(x.logger)).EncodeRaster(w, deck.Title, images)
	}
}
