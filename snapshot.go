package storyboard

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"hash/crc32"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/k1LoW/errors"
	"github.com/k1LoW/exec"
	"github.com/scenezero/storyboard/template"
)

// Snapshotter produces whole-slide PNG raster snapshots for the raster
// export fallback. Snapshots are content-addressed by the slide HTML, so
// repeated exports of an unchanged slide hit the cache.
type Snapshotter struct {
	settle  time.Duration
	command string // external snapshot command template; empty means headless Chrome
	logger  *slog.Logger
}

type SnapshotterOption func(*Snapshotter)

// WithSnapshotCommand sets an external command used to render snapshots
// instead of headless Chrome. The command template may reference {{html}}
// (path of a temp file holding the slide document) and {{output}} (path the
// command must write the PNG to).
func WithSnapshotCommand(cmd string) SnapshotterOption {
	return func(s *Snapshotter) {
		s.command = cmd
	}
}

func WithSnapshotterLogger(l *slog.Logger) SnapshotterOption {
	return func(s *Snapshotter) {
		s.logger = l
	}
}

func NewSnapshotter(opts ...SnapshotterOption) *Snapshotter {
	s := &Snapshotter{
		settle: settleDelay,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot renders one slide to a PNG at canvas size.
func (s *Snapshotter) Snapshot(ctx context.Context, slide *Slide) (_ []byte, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	key := crc32.ChecksumIEEE([]byte(slide.HTML))
	if b, ok := LoadSnapshotCache(key); ok {
		return b, nil
	}
	var b []byte
	if s.command != "" {
		b, err = s.snapshotWithCommand(ctx, slide)
	} else {
		b, err = s.snapshotWithChrome(ctx, slide)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot slide %d: %w", slide.ID, err)
	}
	StoreSnapshotCache(key, b)
	s.logger.Info("rendered snapshot", slog.Int("slide", slide.ID), slog.Int("bytes", len(b)))
	return b, nil
}

// SnapshotAll renders snapshots for every slide, in order.
func (s *Snapshotter) SnapshotAll(ctx context.Context, slides Slides) ([][]byte, error) {
	images := make([][]byte, 0, len(slides))
	for _, slide := range slides {
		b, err := s.Snapshot(ctx, slide)
		if err != nil {
			return nil, err
		}
		images = append(images, b)
	}
	return images, nil
}

func (s *Snapshotter) snapshotWithChrome(ctx context.Context, slide *Slide) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	ctx, tcancel := context.WithTimeout(ctx, 30*time.Second)
	defer tcancel()

	doc := wrapDocument(slide.HTML, CanvasWidth, CanvasHeight)
	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(doc))

	var buf []byte
	if err := chromedp.Run(ctx,
		chromedp.EmulateViewport(CanvasWidth, CanvasHeight),
		chromedp.Navigate(dataURL),
		chromedp.Sleep(s.settle),
		chromedp.FullScreenshot(&buf, 100),
	); err != nil {
		return nil, err
	}
	return buf, nil
}

// snapshotWithCommand runs the configured external command. The slide
// document is written to a temp file; the command must produce a PNG at the
// {{output}} path, or on stdout when the template has no {{output}}.
func (s *Snapshotter) snapshotWithCommand(ctx context.Context, slide *Slide) ([]byte, error) {
	dir, err := os.MkdirTemp("", "storyboard-snapshot-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	htmlPath := filepath.Join(dir, "slide.html")
	doc := wrapDocument(slide.HTML, CanvasWidth, CanvasHeight)
	if err := os.WriteFile(htmlPath, []byte(doc), 0o600); err != nil {
		return nil, err
	}
	outputPath := filepath.Join(dir, "slide.png")

	store := map[string]any{
		"html":   htmlPath,
		"output": outputPath,
		"width":  CanvasWidth,
		"height": CanvasHeight,
	}
	expanded, err := template.Expand(s.command, store)
	if err != nil {
		return nil, fmt.Errorf("failed to expand snapshot command template: %w", err)
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", expanded)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to run snapshot command: %w\nstderr: %s", err, stderr.String())
	}

	if strings.Contains(s.command, "{{output}}") {
		b, err := os.ReadFile(outputPath)
		if err != nil {
			return nil, fmt.Errorf("snapshot command did not produce output: %w", err)
		}
		return b, nil
	}
	return stdout.Bytes(), nil
}

// SnapshotsEquivalent reports whether two snapshot PNGs show the same slide,
// tolerating re-encoding differences. Used by watch mode to skip re-export
// of visually unchanged slides.
func SnapshotsEquivalent(a, b []byte) bool {
	ia, err := newImageFromBuffer(bytes.NewReader(a))
	if err != nil {
		return false
	}
	ib, err := newImageFromBuffer(bytes.NewReader(b))
	if err != nil {
		return false
	}
	return ia.Equivalent(ib)
}
