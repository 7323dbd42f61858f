package sbml

import (
	"fmt"
	"html"
	"strings"

	"github.com/scenezero/storyboard"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FromOutline builds a storyboard deck from a Markdown outline: the first
// level-1 heading becomes the deck title, each level-2 heading starts a new
// slide, and following paragraphs and lists are rendered into the slide's
// HTML body. It gives the CLI a deterministic, offline way to scaffold a
// deck that the generation backend would normally produce.
func FromOutline(b []byte) (*storyboard.Deck, error) {
	md := goldmark.New()
	reader := text.NewReader(b)
	doc := md.Parser().Parse(reader)

	deck := &storyboard.Deck{
		Title:  DefaultTitle,
		Slides: storyboard.Slides{},
	}
	var current *slideDraft
	flush := func() {
		if current == nil {
			return
		}
		deck.Slides = append(deck.Slides, &storyboard.Slide{
			Title: current.title,
			HTML:  current.render(),
		})
		current = nil
	}

	if err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Heading:
			line := strings.TrimSpace(string(v.Lines().Value(b)))
			switch v.Level {
			case 1:
				deck.Title = line
			case 2:
				flush()
				current = &slideDraft{title: line}
			default:
				if current != nil {
					current.blocks = append(current.blocks,
						fmt.Sprintf("<h3>%s</h3>", html.EscapeString(line)))
				}
			}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			if _, inList := v.Parent().(*ast.ListItem); inList {
				return ast.WalkContinue, nil
			}
			if current != nil {
				current.blocks = append(current.blocks,
					fmt.Sprintf("<p>%s</p>", html.EscapeString(string(v.Lines().Value(b)))))
			}
			return ast.WalkSkipChildren, nil
		case *ast.List:
			if current != nil {
				current.blocks = append(current.blocks, renderList(b, v))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	}); err != nil {
		return nil, err
	}
	flush()

	for i, s := range deck.Slides {
		s.ID = i + 1
	}
	return deck, nil
}

type slideDraft struct {
	title  string
	blocks []string
}

func (d *slideDraft) render() string {
	var sb strings.Builder
	sb.WriteString(`<div class="slide" style="width:100%;height:100%;padding:48px;box-sizing:border-box;background:var(--background,#ffffff);color:var(--foreground,#111111);">`)
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("<h2 style=\"font-size:40px;margin:0 0 24px;\">%s</h2>\n", html.EscapeString(d.title)))
	for _, blk := range d.blocks {
		sb.WriteString(blk)
		sb.WriteString("\n")
	}
	sb.WriteString("</div>")
	return sb.String()
}

func renderList(b []byte, list *ast.List) string {
	tag := "ul"
	if list.IsOrdered() {
		tag = "ol"
	}
	var sb strings.Builder
	sb.WriteString("<" + tag + ">")
	for li := list.FirstChild(); li != nil; li = li.NextSibling() {
		var item strings.Builder
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			switch cv := c.(type) {
			case *ast.List:
				item.WriteString(renderList(b, cv))
			case *ast.TextBlock:
				item.WriteString(html.EscapeString(strings.TrimSpace(string(cv.Lines().Value(b)))))
			case *ast.Paragraph:
				item.WriteString(html.EscapeString(strings.TrimSpace(string(cv.Lines().Value(b)))))
			}
		}
		sb.WriteString("<li>" + item.String() + "</li>")
	}
	sb.WriteString("</" + tag + ">")
	return sb.String()
}
