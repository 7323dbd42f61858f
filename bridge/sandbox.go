package bridge

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/k1LoW/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// mode is the sandbox edit state.
type mode int

const (
	modeDisabled mode = iota // pointer events pass through inert
	modeArmed                // hover/select feedback active
	modeEditing              // one element is content-editable
)

// textBearing are tags whose childless nodes may enter inline editing.
var textBearing = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"p": true, "span": true, "div": true, "li": true,
	"b": true, "i": true, "strong": true, "em": true,
}

// Sandbox is the rendering-surface side of the live-edit protocol. It holds
// the slide markup as a parsed document and simulates the user-facing side
// of the state machine: click-to-select, double-click inline editing and
// host-originated style/content patches. Every accepted change emits exactly
// one HTML_UPDATED message.
type Sandbox struct {
	mu        sync.Mutex
	doc       *html.Node
	body      *html.Node
	mode      mode
	selected  *html.Node
	editing   *html.Node
	emit      func(Message)
	newElemID func() string
}

// NewSandbox creates a sandbox holding the given slide markup. emit receives
// every sandbox-originated event.
func NewSandbox(markup string, emit func(Message)) *Sandbox {
	if emit == nil {
		emit = func(Message) {}
	}
	s := &Sandbox{
		emit: emit,
		newElemID: func() string {
			return "el-" + uuid.NewString()[:8]
		},
	}
	s.load(markup)
	return s
}

// Attach runs the sandbox against a connection: control messages are handled
// and events are forwarded to the peer.
func (s *Sandbox) Attach(ctx context.Context, conn *Conn) {
	s.mu.Lock()
	s.emit = conn.Send
	s.mu.Unlock()
	go pump(ctx, conn, s.Handle)
}

// SetHTML replaces the whole document. All previously assigned element ids
// survive only if present in the new markup; selection is reset.
func (s *Sandbox) SetHTML(markup string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(markup)
	s.selected = nil
	s.editing = nil
	if s.mode == modeEditing {
		s.mode = modeArmed
	}
}

// HTML returns the current serialized markup.
func (s *Sandbox) HTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serialize()
}

// Handle processes one host-originated control message.
func (s *Sandbox) Handle(m Message) {
	switch m.Kind {
	case KindSetEditMode:
		s.setEditMode(m.Enabled)
	case KindUpdateElement:
		s.updateElement(m.ElementID, m.Changes)
	}
}

func (s *Sandbox) setEditMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if enabled {
		if s.mode == modeDisabled {
			s.mode = modeArmed
		}
		return
	}
	s.mode = modeDisabled
	s.selected = nil
	s.editing = nil
}

// Click simulates clicking the first element matched by the predicate.
// While armed it clears the previous selection, selects the element,
// assigns it a stable random id if it lacks one, and emits ELEMENT_CLICKED
// with a snapshot of its styles. Returns the element id, or "" when the
// click hit nothing or the sandbox is disabled.
func (s *Sandbox) Click(match func(tag string, attrs map[string]string) bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == modeDisabled {
		return ""
	}
	n := s.find(match)
	if n == nil {
		return ""
	}
	if s.mode == modeEditing {
		// clicking elsewhere ends the inline edit first
		s.blurLocked()
	}
	s.selected = n
	id := getAttr(n, "id")
	if id == "" {
		id = s.newElemID()
		setAttr(n, "id", id)
	}
	s.emit(Message{
		Kind:      KindElementClicked,
		ElementID: id,
		TagName:   strings.ToUpper(n.Data),
		Content:   strings.TrimSpace(innerText(n)),
		Styles:    styleSnapshot(n),
	})
	return id
}

// DoubleClick enters inline editing on the selected element. Only childless,
// text-bearing nodes are editable.
func (s *Sandbox) DoubleClick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != modeArmed || s.selected == nil {
		return false
	}
	if !textBearing[s.selected.Data] || hasElementChildren(s.selected) {
		return false
	}
	s.editing = s.selected
	s.mode = modeEditing
	return true
}

// SetText replaces the text of the element currently being edited.
func (s *Sandbox) SetText(text string) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != modeEditing || s.editing == nil {
		return errors.New("no element is being edited")
	}
	setTextContent(s.editing, text)
	return nil
}

// Blur ends inline editing and emits HTML_UPDATED. This is the only
// mechanism by which free-form text edits flow back out of the sandbox.
func (s *Sandbox) Blur() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != modeEditing {
		return
	}
	s.blurLocked()
}

func (s *Sandbox) blurLocked() {
	s.editing = nil
	s.mode = modeArmed
	s.emit(Message{Kind: KindHTMLUpdated, HTML: s.serialize()})
}

// updateElement applies a host patch: the key "innerText" replaces text
// content, any other key is an inline style property. An accepted patch
// always round-trips the full markup back to the host.
func (s *Sandbox) updateElement(elementID string, changes map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.find(func(_ string, attrs map[string]string) bool {
		return attrs["id"] == elementID
	})
	if n == nil {
		return
	}
	for k, v := range changes {
		if k == "innerText" {
			setTextContent(n, v)
			continue
		}
		setStyleProp(n, k, v)
	}
	s.emit(Message{Kind: KindHTMLUpdated, HTML: s.serialize()})
}

func (s *Sandbox) load(markup string) {
	// html.Parse repairs malformed markup rather than failing, and a
	// strings.Reader cannot error; keep the previous document on the
	// unreachable failure path.
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return
	}
	s.doc = doc
	s.body = findNode(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	})
}

func (s *Sandbox) serialize() string {
	if s.body == nil {
		return ""
	}
	var buf bytes.Buffer
	for c := s.body.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

func (s *Sandbox) find(match func(tag string, attrs map[string]string) bool) *html.Node {
	if s.body == nil {
		return nil
	}
	return findNode(s.body, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n == s.body {
			return false
		}
		return match(n.Data, attrMap(n))
	})
}

func findNode(root *html.Node, match func(*html.Node) bool) *html.Node {
	if match(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := findNode(c, match); n != nil {
			return n
		}
	}
	return nil
}

func hasElementChildren(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

func innerText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func setTextContent(n *html.Node, text string) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func attrMap(n *html.Node) map[string]string {
	m := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		m[a.Key] = a.Val
	}
	return m
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// styleSnapshot reports the seven style properties of the selection event,
// read from the element's inline style. Properties the element does not set
// inline are reported empty; the sandbox has no layout engine to compute
// inherited values.
func styleSnapshot(n *html.Node) map[string]string {
	inline := parseStyleAttr(getAttr(n, "style"))
	snap := make(map[string]string, len(styleSnapshotProps))
	for _, p := range styleSnapshotProps {
		snap[p] = inline[p]
	}
	return snap
}

func parseStyleAttr(style string) map[string]string {
	m := map[string]string{}
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		m[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return m
}

func setStyleProp(n *html.Node, prop, val string) {
	props := parseStyleAttr(getAttr(n, "style"))
	order := styleOrder(getAttr(n, "style"))
	if _, ok := props[prop]; !ok {
		order = append(order, prop)
	}
	props[prop] = val
	var sb strings.Builder
	for _, k := range order {
		if sb.Len() > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(k + ": " + props[k])
	}
	setAttr(n, "style", sb.String())
}

func styleOrder(style string) []string {
	var order []string
	for _, decl := range strings.Split(style, ";") {
		k, _, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		order = append(order, strings.TrimSpace(k))
	}
	return order
}
