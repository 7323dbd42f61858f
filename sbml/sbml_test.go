package sbml

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/scenezero/storyboard"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantTitle string
		want      storyboard.Slides
	}{
		{
			name: "two slides with title directive",
			text: `<title name="Q3 Review"></title>
<slide-1 title="Intro">
<h1>Welcome</h1>
</slide-1>
<slide-2 title="Numbers">
<p>Revenue up</p>
</slide-2>`,
			wantTitle: "Q3 Review",
			want: storyboard.Slides{
				{ID: 1, Title: "Intro", HTML: "<h1>Welcome</h1>"},
				{ID: 2, Title: "Numbers", HTML: "<p>Revenue up</p>"},
			},
		},
		{
			name:      "no title directive falls back",
			text:      `<slide-1 title="Only"><p>x</p></slide-1>`,
			wantTitle: DefaultTitle,
			want: storyboard.Slides{
				{ID: 1, Title: "Only", HTML: "<p>x</p>"},
			},
		},
		{
			name: "last title directive wins",
			text: `<title name="Draft"></title>
<slide-1 title="a"><p>a</p></slide-1>
<title name="Final"></title>`,
			wantTitle: "Final",
			want: storyboard.Slides{
				{ID: 1, Title: "a", HTML: "<p>a</p>"},
			},
		},
		{
			name: "mismatched closing id skips the block",
			text: `<slide-1 title="broken"><p>a</p></slide-2>
<slide-3 title="ok"><p>b</p></slide-3>`,
			wantTitle: DefaultTitle,
			want: storyboard.Slides{
				{ID: 3, Title: "ok", HTML: "<p>b</p>"},
			},
		},
		{
			name: "duplicate id replaces in place",
			text: `<slide-1 title="first"><p>old</p></slide-1>
<slide-2 title="two"><p>t</p></slide-2>
<slide-1 title="revised"><p>new</p></slide-1>`,
			wantTitle: DefaultTitle,
			want: storyboard.Slides{
				{ID: 1, Title: "revised", HTML: "<p>new</p>"},
				{ID: 2, Title: "two", HTML: "<p>t</p>"},
			},
		},
		{
			name: "out-of-order ids are sorted",
			text: `<slide-3 title="c"><p>3</p></slide-3>
<slide-1 title="a"><p>1</p></slide-1>
<slide-2 title="b"><p>2</p></slide-2>`,
			wantTitle: DefaultTitle,
			want: storyboard.Slides{
				{ID: 1, Title: "a", HTML: "<p>1</p>"},
				{ID: 2, Title: "b", HTML: "<p>2</p>"},
				{ID: 3, Title: "c", HTML: "<p>3</p>"},
			},
		},
		{
			name:      "unterminated trailing block is ignored",
			text:      `<slide-1 title="done"><p>a</p></slide-1><slide-2 title="partial"><p>b`,
			wantTitle: DefaultTitle,
			want: storyboard.Slides{
				{ID: 1, Title: "done", HTML: "<p>a</p>"},
			},
		},
		{
			name: "single-quoted attributes",
			text: `<title name='Demo'></title>
<slide-1 title='A'>
<h1>a</h1>
</slide-1>
<slide-2 title='B'>
<p>b</p>
</slide-2>`,
			wantTitle: "Demo",
			want: storyboard.Slides{
				{ID: 1, Title: "A", HTML: "<h1>a</h1>"},
				{ID: 2, Title: "B", HTML: "<p>b</p>"},
			},
		},
		{
			name:      "plain prose yields an empty deck",
			text:      "Here are your slides!",
			wantTitle: DefaultTitle,
			want:      storyboard.Slides{},
		},
		{
			name:      "nested markup with angle brackets survives",
			text:      `<slide-1 title="rich"><div><span style="color: #fff">a &lt; b</span></div></slide-1>`,
			wantTitle: DefaultTitle,
			want: storyboard.Slides{
				{ID: 1, Title: "rich", HTML: `<div><span style="color: #fff">a &lt; b</span></div>`},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if got.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.wantTitle)
			}
			if diff := cmp.Diff(tt.want, got.Slides); diff != "" {
				t.Errorf("Slides mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// Incremental re-parsing of a growing buffer must be idempotent: the deck
// after each chunk equals a fresh parse of the accumulated text.
func TestParseIncremental(t *testing.T) {
	chunks := []string{
		`<title name="Streaming"></title>` + "\n",
		`<slide-1 title="One"><p>fir`,
		`st</p></slide-1>` + "\n",
		`<slide-2 title="Two"><p>second</p></slide`,
		`-2>` + "\n" + `<slide-1 title="One v2"><p>revised</p></slide-1>`,
	}
	var buf string
	var last *storyboard.Deck
	for _, c := range chunks {
		buf += c
		last = Parse(buf)
	}
	want := storyboard.Slides{
		{ID: 1, Title: "One v2", HTML: "<p>revised</p>"},
		{ID: 2, Title: "Two", HTML: "<p>second</p>"},
	}
	if last.Title != "Streaming" {
		t.Errorf("Title = %q", last.Title)
	}
	if diff := cmp.Diff(want, last.Slides); diff != "" {
		t.Errorf("Slides mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	deck := &storyboard.Deck{
		Title: `A "quoted" title`,
		Slides: storyboard.Slides{
			{ID: 1, Title: "Intro", HTML: "<h1>Welcome</h1>"},
			{ID: 2, Title: "Body", HTML: "<div>\n<p>multi\nline</p>\n</div>"},
		},
	}
	got := Parse(Format(deck))
	if got.Title != deck.Title {
		t.Errorf("Title = %q, want %q", got.Title, deck.Title)
	}
	if diff := cmp.Diff(deck.Slides, got.Slides); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
