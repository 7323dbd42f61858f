// Package sbml parses and formats the tagged storyboard markup dialect
// produced by the generation backend: an optional <title name="..."> directive
// followed by repeated <slide-N title="...">...</slide-N> blocks.
package sbml

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/scenezero/storyboard"
)

// DefaultTitle is used when the buffer carries no title directive.
const DefaultTitle = "Untitled Storyboard"

var (
	titleRe = regexp.MustCompile(`<title\s+name=["']([^"']*)["']\s*>`)
	openRe  = regexp.MustCompile(`<slide-(\d+)\s+title=["']([^"']*)["']\s*>`)
)

// Parse scans a storyboard markup buffer and returns the deck it describes.
//
// It is stateless and tolerant: the input originates from a
// probabilistic text generator, so malformed blocks are skipped, never
// rejected. Callers streaming a response re-run Parse on the whole
// accumulated buffer after every chunk; a slide block that arrives twice
// replaces its earlier version in place, which makes incremental re-parsing
// idempotent. An unterminated trailing block is simply not matched until its
// closing tag arrives.
//
// The deck title comes from the *last* title directive in the buffer:
// streaming responses may emit a provisional title early and a refined one
// later. Slides are returned sorted ascending by id.
func Parse(text string) *storyboard.Deck {
	deck := &storyboard.Deck{
		Title:  DefaultTitle,
		Slides: storyboard.Slides{},
	}
	for _, m := range titleRe.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			deck.Title = unescapeAttr(m[1])
		}
	}

	byID := map[int]*storyboard.Slide{}
	pos := 0
	for {
		loc := openRe.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		openEnd := pos + loc[1]
		idStr := text[pos+loc[2] : pos+loc[3]]
		title := unescapeAttr(text[pos+loc[4] : pos+loc[5]])

		id, err := strconv.Atoi(idStr)
		if err != nil {
			pos = openEnd
			continue
		}
		// The closing tag must carry the same id as the opening tag; a block
		// closed with a different id is ignored entirely.
		closing := "</slide-" + idStr + ">"
		rel := strings.Index(text[openEnd:], closing)
		if rel < 0 {
			pos = openEnd
			continue
		}
		html := strings.TrimSpace(text[openEnd : openEnd+rel])
		if prev, ok := byID[id]; ok {
			// later occurrence replaces the earlier one in place
			prev.Title = title
			prev.HTML = html
		} else {
			s := &storyboard.Slide{ID: id, Title: title, HTML: html}
			byID[id] = s
			deck.Slides = append(deck.Slides, s)
		}
		pos = openEnd + rel + len(closing)
	}

	deck.Slides.Sort()
	return deck
}

// Format serializes a deck back into storyboard markup. Parse(Format(d)) is
// the identity on {id, title, html} for decks with trimmed html.
func Format(deck *storyboard.Deck) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<title name=\"%s\"></title>\n\n", escapeAttr(deck.Title)))
	for _, s := range deck.Slides {
		sb.WriteString(fmt.Sprintf("<slide-%d title=\"%s\">\n", s.ID, escapeAttr(s.Title)))
		sb.WriteString(s.HTML)
		sb.WriteString(fmt.Sprintf("\n</slide-%d>\n\n", s.ID))
	}
	return sb.String()
}

func escapeAttr(s string) string {
	return strings.ReplaceAll(s, `"`, "&quot;")
}

func unescapeAttr(s string) string {
	return strings.ReplaceAll(s, "&quot;", `"`)
}
