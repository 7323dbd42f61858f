package storyboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/k1LoW/errors"
	"golang.org/x/sync/errgroup"
)

// Fixed canvas coordinate space of a slide.
const (
	CanvasWidth  = 1024
	CanvasHeight = 576
)

// settleDelay gives externally-loaded assets (web fonts, icon and chart
// libraries) time to lay out before measuring. A timing assumption, not a
// correctness guarantee.
const settleDelay = 200 * time.Millisecond

// ErrNoRenderer is returned by a Renderer when no rendering engine is
// available in the current environment.
var ErrNoRenderer = errors.New("no rendering engine available")

// Renderer is the layout-engine capability the extractor depends on. It
// renders the given HTML inside an isolated fixed-size off-screen surface
// and reports the resulting element tree with computed geometry and styles.
// Each call must use its own surface so concurrent renders do not collide.
type Renderer interface {
	Render(ctx context.Context, html string, width, height int) (*Node, error)
}

// Extractor converts a slide's HTML into a StructuredSlide.
type Extractor struct {
	renderer Renderer
	logger   *slog.Logger
}

type ExtractorOption func(*Extractor)

func WithRenderer(r Renderer) ExtractorOption {
	return func(e *Extractor) {
		e.renderer = r
	}
}

func WithExtractorLogger(l *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = l
	}
}

// NewExtractor creates an Extractor. Without a renderer every extraction
// yields the empty fallback slide.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract renders one slide and rebuilds its structured projection from
// scratch. Malformed or unsupported markup never fails the pass: unknown
// nodes are skipped and an unavailable rendering engine degrades to an
// empty, well-formed fallback so a degenerate export is still possible.
func (e *Extractor) Extract(ctx context.Context, slide *Slide) (*StructuredSlide, error) {
	fallback := &StructuredSlide{
		ID:       slide.ID,
		Elements: []*Element{},
		BGColor:  "#ffffff",
		Layout:   "free",
	}
	if e.renderer == nil {
		return fallback, nil
	}
	root, err := e.renderer.Render(ctx, slide.HTML, CanvasWidth, CanvasHeight)
	if err != nil {
		if errors.Is(err, ErrNoRenderer) {
			e.logger.Warn("no rendering engine, returning empty slide", slog.Int("slide", slide.ID))
			return fallback, nil
		}
		return nil, errors.WithStack(err)
	}

	s := &StructuredSlide{
		ID:       slide.ID,
		Elements: []*Element{},
		Layout:   "free",
	}
	bgColor, bgImage := resolveBackground(root)
	if bgColor == "" {
		bgColor = "#ffffff"
	}
	s.BGColor = bgColor
	s.BGImage = bgImage

	counter := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		if el := classify(n, elementID(slide.ID, counter)); el != nil {
			counter++
			s.Elements = append(s.Elements, el)
			if el.Kind == ElementImage {
				// image elements are traversal leaves
				return
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, c := range root.Children {
		walk(c)
	}

	e.logger.Info("extracted slide",
		slog.Int("slide", slide.ID),
		slog.Int("elements", len(s.Elements)))
	return s, nil
}

// ExtractAll extracts every slide of the deck. Extractions run concurrently;
// each uses its own isolated rendering surface. Results keep slide order.
func (e *Extractor) ExtractAll(ctx context.Context, slides Slides) (_ []*StructuredSlide, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	results := make([]*StructuredSlide, len(slides))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, slide := range slides {
		g.Go(func() error {
			s, err := e.Extract(ctx, slide)
			if err != nil {
				return err
			}
			results[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
