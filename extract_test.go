package storyboard

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// stubRenderer returns a canned node tree regardless of input.
type stubRenderer struct {
	root *Node
	err  error
}

func (r *stubRenderer) Render(_ context.Context, _ string, _, _ int) (*Node, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.root, nil
}

func emptyFallback(id int) *StructuredSlide {
	return &StructuredSlide{
		ID:       id,
		Elements: []*Element{},
		BGColor:  "#ffffff",
		Layout:   "free",
	}
}

func TestExtractWithoutRenderer(t *testing.T) {
	e := NewExtractor()
	got, err := e.Extract(context.Background(), &Slide{ID: 3, HTML: "<div>hi</div>"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if diff := cmp.Diff(emptyFallback(3), got); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractNoRendererError(t *testing.T) {
	e := NewExtractor(WithRenderer(&stubRenderer{err: ErrNoRenderer}))
	got, err := e.Extract(context.Background(), &Slide{ID: 1})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if diff := cmp.Diff(emptyFallback(1), got); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractWalk(t *testing.T) {
	root := &Node{
		Tag:    "DIV",
		Styles: NodeStyles{BackgroundColor: "#fafafa"},
		Children: []*Node{
			{
				Tag: "H1", X: 10, Y: 10, W: 500, H: 60,
				DirectText: "Title", InnerText: "Title",
				Styles: NodeStyles{FontSize: "40px", Color: "#111111"},
			},
			{
				Tag: "IMG", Src: "https://example.com/a.png",
				X: 600, Y: 100, W: 300, H: 200,
				// children under an IMG are never visited
				Children: []*Node{
					{Tag: "P", DirectText: "ghost", W: 10, H: 10},
				},
			},
			{
				Tag: "DIV", X: 0, Y: 400, W: 1024, H: 176,
				Styles: NodeStyles{BackgroundColor: "rgba(0, 0, 0, 0)"},
				Children: []*Node{
					{
						Tag: "P", X: 40, Y: 420, W: 400, H: 30,
						DirectText: "body", InnerText: "body",
					},
				},
			},
		},
	}
	e := NewExtractor(WithRenderer(&stubRenderer{root: root}))
	got, err := e.Extract(context.Background(), &Slide{ID: 2, HTML: "<h1>Title</h1>"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.BGColor != "#fafafa" {
		t.Errorf("BGColor = %q, want %q", got.BGColor, "#fafafa")
	}
	if len(got.Elements) != 3 {
		t.Fatalf("len(Elements) = %d, want 3", len(got.Elements))
	}
	wantIDs := []string{"s2-e0", "s2-e1", "s2-e2"}
	wantKinds := []ElementKind{ElementText, ElementImage, ElementText}
	for i, el := range got.Elements {
		if el.ID != wantIDs[i] {
			t.Errorf("Elements[%d].ID = %q, want %q", i, el.ID, wantIDs[i])
		}
		if el.Kind != wantKinds[i] {
			t.Errorf("Elements[%d].Kind = %q, want %q", i, el.Kind, wantKinds[i])
		}
	}
}

func TestExtractAllKeepsOrder(t *testing.T) {
	e := NewExtractor() // fallback path, no renderer
	slides := Slides{
		{ID: 1, HTML: "<p>a</p>"},
		{ID: 2, HTML: "<p>b</p>"},
		{ID: 3, HTML: "<p>c</p>"},
	}
	got, err := e.ExtractAll(context.Background(), slides)
	if err != nil {
		t.Fatalf("ExtractAll() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, s := range got {
		if s.ID != i+1 {
			t.Errorf("results[%d].ID = %d, want %d", i, s.ID, i+1)
		}
	}
}
