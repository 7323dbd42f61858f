package bridge

import (
	"strings"
	"testing"
)

func matchTag(tag string) func(string, map[string]string) bool {
	return func(t string, _ map[string]string) bool {
		return t == tag
	}
}

func matchID(id string) func(string, map[string]string) bool {
	return func(_ string, attrs map[string]string) bool {
		return attrs["id"] == id
	}
}

func collect(events *[]Message) func(Message) {
	return func(m Message) {
		*events = append(*events, m)
	}
}

func countKind(events []Message, k Kind) int {
	n := 0
	for _, m := range events {
		if m.Kind == k {
			n++
		}
	}
	return n
}

func TestClickRequiresEditMode(t *testing.T) {
	var events []Message
	s := NewSandbox(`<h1>hello</h1>`, collect(&events))
	if id := s.Click(matchTag("h1")); id != "" {
		t.Errorf("Click() in disabled mode = %q, want empty", id)
	}
	if len(events) != 0 {
		t.Errorf("events = %d, want 0", len(events))
	}
}

func TestClickAssignsIDAndEmitsSelection(t *testing.T) {
	var events []Message
	s := NewSandbox(`<h1 style="color: #fff; font-size: 40px">  hello  </h1>`, collect(&events))
	s.Handle(Message{Kind: KindSetEditMode, Enabled: true})

	id := s.Click(matchTag("h1"))
	if id == "" {
		t.Fatal("Click() returned empty id")
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	e := events[0]
	if e.Kind != KindElementClicked {
		t.Errorf("Kind = %q", e.Kind)
	}
	if e.ElementID != id {
		t.Errorf("ElementID = %q, want %q", e.ElementID, id)
	}
	if e.TagName != "H1" {
		t.Errorf("TagName = %q, want H1", e.TagName)
	}
	if e.Content != "hello" {
		t.Errorf("Content = %q, want %q", e.Content, "hello")
	}
	if e.Styles["color"] != "#fff" || e.Styles["font-size"] != "40px" {
		t.Errorf("Styles = %v", e.Styles)
	}
	// properties not set inline are reported empty
	if v, ok := e.Styles["text-align"]; !ok || v != "" {
		t.Errorf("Styles[text-align] = %q, %v", v, ok)
	}
	// the assigned id must now be in the markup
	if !strings.Contains(s.HTML(), `id="`+id+`"`) {
		t.Errorf("assigned id missing from markup:\n%s", s.HTML())
	}

	// clicking again keeps the same id
	if again := s.Click(matchTag("h1")); again != id {
		t.Errorf("second Click() = %q, want %q", again, id)
	}
}

func TestInlineEditFlow(t *testing.T) {
	var events []Message
	s := NewSandbox(`<h1>old</h1><div><p>child</p></div>`, collect(&events))
	s.Handle(Message{Kind: KindSetEditMode, Enabled: true})

	s.Click(matchTag("h1"))
	if !s.DoubleClick() {
		t.Fatal("DoubleClick() = false, want true")
	}
	if err := s.SetText("new text"); err != nil {
		t.Fatalf("SetText() error = %v", err)
	}
	s.Blur()

	if got := countKind(events, KindHTMLUpdated); got != 1 {
		t.Fatalf("HTML_UPDATED count = %d, want 1", got)
	}
	var updated string
	for _, m := range events {
		if m.Kind == KindHTMLUpdated {
			updated = m.HTML
		}
	}
	if !strings.Contains(updated, "new text") || strings.Contains(updated, "old") {
		t.Errorf("updated markup = %q", updated)
	}
}

func TestDoubleClickRejectsParents(t *testing.T) {
	s := NewSandbox(`<div id="wrap"><p>child</p></div>`, nil)
	s.Handle(Message{Kind: KindSetEditMode, Enabled: true})
	s.Click(matchID("wrap"))
	if s.DoubleClick() {
		t.Error("DoubleClick() on element with children = true, want false")
	}
}

func TestSetTextWithoutEditing(t *testing.T) {
	s := NewSandbox(`<h1>x</h1>`, nil)
	s.Handle(Message{Kind: KindSetEditMode, Enabled: true})
	if err := s.SetText("y"); err == nil {
		t.Error("SetText() without editing expected error")
	}
}

func TestUpdateElementEmitsExactlyOneUpdate(t *testing.T) {
	var events []Message
	s := NewSandbox(`<h1 id="t1" style="color: #000">title</h1>`, collect(&events))

	s.Handle(Message{
		Kind:      KindUpdateElement,
		ElementID: "t1",
		Changes: map[string]string{
			"color":     "#ff0000",
			"font-size": "64px",
			"innerText": "patched",
		},
	})

	if got := countKind(events, KindHTMLUpdated); got != 1 {
		t.Fatalf("HTML_UPDATED count = %d, want 1", got)
	}
	html := events[len(events)-1].HTML
	if !strings.Contains(html, "color: #ff0000") {
		t.Errorf("style not patched: %q", html)
	}
	if !strings.Contains(html, "font-size: 64px") {
		t.Errorf("style not added: %q", html)
	}
	if !strings.Contains(html, "patched") {
		t.Errorf("text not replaced: %q", html)
	}
}

func TestUpdateElementUnknownIDEmitsNothing(t *testing.T) {
	var events []Message
	s := NewSandbox(`<h1 id="a">x</h1>`, collect(&events))
	s.Handle(Message{Kind: KindUpdateElement, ElementID: "nope", Changes: map[string]string{"color": "red"}})
	if len(events) != 0 {
		t.Errorf("events = %d, want 0", len(events))
	}
}

func TestSetHTMLResetsSelection(t *testing.T) {
	s := NewSandbox(`<h1>x</h1>`, nil)
	s.Handle(Message{Kind: KindSetEditMode, Enabled: true})
	id := s.Click(matchTag("h1"))
	if id == "" {
		t.Fatal("Click() failed")
	}
	s.SetHTML(`<p>fresh</p>`)
	// previously assigned ids are gone with the old document
	if strings.Contains(s.HTML(), id) {
		t.Errorf("old id survived wholesale reload: %s", s.HTML())
	}
	if s.DoubleClick() {
		t.Error("DoubleClick() after reload = true, want false (selection reset)")
	}
}

func TestSetHTMLToleratesMalformedMarkup(t *testing.T) {
	s := NewSandbox(`<h1>ok</h1>`, nil)
	s.SetHTML(`<div><p>unclosed`)
	// the parser repairs broken markup instead of rejecting it
	if got := s.HTML(); !strings.Contains(got, "unclosed") {
		t.Errorf("HTML() = %q, want repaired markup", got)
	}
	s.Handle(Message{Kind: KindSetEditMode, Enabled: true})
	if id := s.Click(matchTag("p")); id == "" {
		t.Error("repaired document is not selectable")
	}
}

func TestDisableClearsState(t *testing.T) {
	s := NewSandbox(`<h1>x</h1>`, nil)
	s.Handle(Message{Kind: KindSetEditMode, Enabled: true})
	s.Click(matchTag("h1"))
	s.Handle(Message{Kind: KindSetEditMode, Enabled: false})
	if id := s.Click(matchTag("h1")); id != "" {
		t.Errorf("Click() after disable = %q, want empty", id)
	}
}
