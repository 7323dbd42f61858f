package bridge

import (
	"context"
	"log/slog"
	"sync"

	"github.com/scenezero/storyboard"
)

// Host is the editor side of the live-edit protocol. It owns the deck's
// slide records and treats every HTML_UPDATED message as the new source of
// truth for that slide's HTML, replacing the whole field. It never parses
// or diffs the sandbox document.
type Host struct {
	mu       sync.Mutex
	deck     *storyboard.Deck
	conns    map[int]*Conn
	selected map[int]string // slide id -> selected element id
	onClick  func(slideID int, m Message)
	logger   *slog.Logger
}

type HostOption func(*Host)

// WithOnElementClicked registers a callback for selection events, e.g. to
// open a style panel for the selected element.
func WithOnElementClicked(fn func(slideID int, m Message)) HostOption {
	return func(h *Host) {
		h.onClick = fn
	}
}

func WithHostLogger(l *slog.Logger) HostOption {
	return func(h *Host) {
		h.logger = l
	}
}

// NewHost creates a host for the deck.
func NewHost(deck *storyboard.Deck, opts ...HostOption) *Host {
	h := &Host{
		deck:     deck,
		conns:    map[int]*Conn{},
		selected: map[int]string{},
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Attach wires a slide's sandbox connection and starts consuming its events.
func (h *Host) Attach(ctx context.Context, slideID int, conn *Conn) {
	h.mu.Lock()
	h.conns[slideID] = conn
	h.mu.Unlock()
	go pump(ctx, conn, func(m Message) {
		h.Handle(slideID, m)
	})
}

// Handle processes one sandbox-originated event for a slide.
func (h *Host) Handle(slideID int, m Message) {
	switch m.Kind {
	case KindElementClicked:
		h.mu.Lock()
		h.selected[slideID] = m.ElementID
		onClick := h.onClick
		h.mu.Unlock()
		h.logger.Info("element selected",
			slog.Int("slide", slideID),
			slog.String("element", m.ElementID),
			slog.String("tag", m.TagName))
		if onClick != nil {
			onClick(slideID, m)
		}
	case KindHTMLUpdated:
		h.mu.Lock()
		defer h.mu.Unlock()
		if s := h.deck.Slide(slideID); s != nil {
			// last-write-wins, whole-field replacement
			s.HTML = m.HTML
		}
	}
}

// SetEditMode arms or disarms a slide's sandbox.
func (h *Host) SetEditMode(slideID int, enabled bool) {
	if c := h.conn(slideID); c != nil {
		c.Send(Message{Kind: KindSetEditMode, Enabled: enabled})
	}
}

// UpdateElement sends a style/content patch to a slide's sandbox. The
// sandbox answers with HTML_UPDATED, which keeps the host's copy in sync
// without the host re-serializing anything itself.
func (h *Host) UpdateElement(slideID int, elementID string, changes map[string]string) {
	if c := h.conn(slideID); c != nil {
		c.Send(Message{Kind: KindUpdateElement, ElementID: elementID, Changes: changes})
	}
}

// Selected returns the currently selected element id of a slide, if any.
func (h *Host) Selected(slideID int) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.selected[slideID]
}

func (h *Host) conn(slideID int) *Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conns[slideID]
}
