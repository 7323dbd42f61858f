package storyboard

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/k1LoW/errors"
	"github.com/lestrrat-go/backoff/v2"
)

// extractScript walks the rendered wrapper and reports the raw node tree.
// Style and script subtrees are skipped entirely; IMG nodes are leaves.
// Classification happens on the Go side.
const extractScript = `(() => {
  const stage = document.getElementById('sb-stage');
  const sr = stage.getBoundingClientRect();
  const walk = (el) => {
    const tag = el.tagName;
    if (tag === 'STYLE' || tag === 'SCRIPT') return null;
    const r = el.getBoundingClientRect();
    const cs = window.getComputedStyle(el);
    let direct = '';
    for (const c of el.childNodes) {
      if (c.nodeType === 3) direct += c.textContent;
    }
    const n = {
      tag: tag,
      x: r.left - sr.left,
      y: r.top - sr.top,
      w: r.width,
      h: r.height,
      directText: direct.trim(),
      innerText: (el.innerText || '').trim(),
      src: tag === 'IMG' ? (el.currentSrc || el.src || '') : '',
      styles: {
        color: cs.color,
        backgroundColor: cs.backgroundColor,
        backgroundImage: cs.backgroundImage,
        fontSize: cs.fontSize,
        fontWeight: cs.fontWeight,
        textAlign: cs.textAlign,
        fontFamily: cs.fontFamily,
        objectFit: cs.objectFit,
        opacity: cs.opacity
      },
      children: []
    };
    if (tag !== 'IMG') {
      for (const c of el.children) {
        const cn = walk(c);
        if (cn) n.children.push(cn);
      }
    }
    return n;
  };
  return JSON.stringify(walk(stage));
})()`

// ChromeRenderer renders slide HTML in a headless Chrome tab. Each Render
// call allocates its own tab (the off-screen surface) and always releases it,
// even on error.
type ChromeRenderer struct {
	settle   time.Duration
	logger   *slog.Logger
	execOpts []chromedp.ExecAllocatorOption
}

var _ Renderer = (*ChromeRenderer)(nil)

type ChromeRendererOption func(*ChromeRenderer)

func WithSettleDelay(d time.Duration) ChromeRendererOption {
	return func(r *ChromeRenderer) {
		r.settle = d
	}
}

func WithRendererLogger(l *slog.Logger) ChromeRendererOption {
	return func(r *ChromeRenderer) {
		r.logger = l
	}
}

// NewChromeRenderer creates a ChromeRenderer.
func NewChromeRenderer(opts ...ChromeRendererOption) *ChromeRenderer {
	r := &ChromeRenderer{
		settle:   settleDelay,
		logger:   slog.New(slog.DiscardHandler),
		execOpts: chromedp.DefaultExecAllocatorOptions[:],
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render implements Renderer. Transient Chrome failures are retried with
// exponential backoff.
func (r *ChromeRenderer) Render(ctx context.Context, html string, width, height int) (_ *Node, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	p := backoff.Exponential(
		backoff.WithMinInterval(500*time.Millisecond),
		backoff.WithMaxRetries(2),
	)
	b := p.Start(ctx)
	var root *Node
	for backoff.Continue(b) {
		root, err = r.renderOnce(ctx, html, width, height)
		if err == nil {
			return root, nil
		}
		if missingBrowser(err) {
			// not transient, and the caller degrades on ErrNoRenderer
			return nil, fmt.Errorf("%w: %s", ErrNoRenderer, err)
		}
		r.logger.Info("retrying render", slog.String("error", err.Error()))
	}
	if err == nil {
		err = ctx.Err()
	}
	return nil, fmt.Errorf("failed to render slide: %w", err)
}

// missingBrowser reports whether a render failure means no browser binary
// exists in this environment. chromedp surfaces the lookup failure from
// os/exec; the string check covers transports that flatten the error chain.
func missingBrowser(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	return strings.Contains(err.Error(), "executable file not found")
}

func (r *ChromeRenderer) renderOnce(ctx context.Context, html string, width, height int) (*Node, error) {
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	ctx, tcancel := context.WithTimeout(ctx, 30*time.Second)
	defer tcancel()

	doc := wrapDocument(html, width, height)
	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(doc))

	var payload string
	if err := chromedp.Run(ctx,
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURL),
		chromedp.Sleep(r.settle),
		chromedp.Evaluate(extractScript, &payload),
	); err != nil {
		return nil, err
	}
	var root Node
	if err := json.Unmarshal([]byte(payload), &root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal node tree: %w", err)
	}
	return &root, nil
}

// wrapDocument places the slide markup inside a fixed-size wrapper that is
// rendered off-canvas rather than hidden: hidden elements often get zero
// layout boxes from the engine.
func wrapDocument(html string, width, height int) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="margin:0;padding:0;">
<div id="sb-stage" style="position:absolute;left:0;top:0;width:%dpx;height:%dpx;overflow:hidden;">%s</div>
</body>
</html>`, width, height, html)
}

// CheckChrome verifies that a headless Chrome instance can be started.
// Used by the doctor command.
func CheckChrome(ctx context.Context) error {
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	ctx, tcancel := context.WithTimeout(ctx, 15*time.Second)
	defer tcancel()
	return errors.WithStack(chromedp.Run(ctx, chromedp.Navigate("about:blank")))
}
