package storyboard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Node is one rendered element reported by a Renderer: tag name, box in
// wrapper-local pixels and the computed styles the classifier needs. IMG
// nodes are traversal leaves and never carry children.
type Node struct {
	Tag        string     `json:"tag"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	W          float64    `json:"w"`
	H          float64    `json:"h"`
	DirectText string     `json:"directText"`
	InnerText  string     `json:"innerText"`
	Src        string     `json:"src"`
	Styles     NodeStyles `json:"styles"`
	Children   []*Node    `json:"children"`
}

// NodeStyles is the computed-style snapshot of a Node.
type NodeStyles struct {
	Color           string `json:"color"`
	BackgroundColor string `json:"backgroundColor"`
	BackgroundImage string `json:"backgroundImage"`
	FontSize        string `json:"fontSize"`
	FontWeight      string `json:"fontWeight"`
	TextAlign       string `json:"textAlign"`
	FontFamily      string `json:"fontFamily"`
	ObjectFit       string `json:"objectFit"`
	Opacity         string `json:"opacity"`
}

// textTags is the whitelist of text-bearing tag names.
var textTags = map[string]bool{
	"H1": true, "H2": true, "H3": true, "H4": true, "H5": true, "H6": true,
	"P": true, "SPAN": true, "DIV": true, "LI": true,
	"B": true, "I": true, "STRONG": true, "EM": true,
}

// Fallback box for images the engine laid out with zero area.
const (
	defaultImageWidth  = 400.0
	defaultImageHeight = 300.0
)

// classifierRule pairs a predicate with an element constructor. Rules are
// tried strictly in order; the first match wins and a node never produces
// more than one element.
type classifierRule struct {
	name  string
	match func(n *Node) bool
	build func(n *Node, id string) *Element
}

var classifierRules = []classifierRule{
	{
		name: "image",
		match: func(n *Node) bool {
			return n.Tag == "IMG"
		},
		build: buildImageElement,
	},
	{
		name: "text",
		match: func(n *Node) bool {
			return textTags[n.Tag] && strings.TrimSpace(n.DirectText) != ""
		},
		build: buildTextElement,
	},
	{
		name: "shape",
		match: func(n *Node) bool {
			return (n.Tag == "DIV" || n.Tag == "SPAN") &&
				!IsTransparent(n.Styles.BackgroundColor) &&
				n.W > 0 && n.H > 0
		},
		build: buildShapeElement,
	},
}

// classify returns the element for a node, or nil when the node contributes
// nothing of its own.
func classify(n *Node, id string) *Element {
	for _, rule := range classifierRules {
		if rule.match(n) {
			return rule.build(n, id)
		}
	}
	return nil
}

func buildImageElement(n *Node, id string) *Element {
	e := &Element{
		ID:        id,
		Kind:      ElementImage,
		Src:       n.Src,
		ObjectFit: normalizeObjectFit(n.Styles.ObjectFit),
	}
	e.X, e.Y, e.Width, e.Height = clampBox(n)
	if e.Width <= 0 || e.Height <= 0 {
		e.Width = defaultImageWidth
		e.Height = defaultImageHeight
	}
	return e
}

func buildTextElement(n *Node, id string) *Element {
	e := &Element{
		ID:         id,
		Kind:       ElementText,
		Content:    strings.TrimSpace(n.InnerText),
		FontSize:   parsePixels(n.Styles.FontSize, 16),
		Color:      ColorToHex(n.Styles.Color),
		FontWeight: normalizeFontWeight(n.Styles.FontWeight),
		TextAlign:  normalizeTextAlign(n.Styles.TextAlign),
		FontFamily: firstFontFamily(n.Styles.FontFamily),
	}
	e.X, e.Y, e.Width, e.Height = clampBox(n)
	return e
}

func buildShapeElement(n *Node, id string) *Element {
	e := &Element{
		ID:        id,
		Kind:      ElementShape,
		ShapeType: ShapeRectangle,
		Color:     ColorToHex(n.Styles.BackgroundColor),
		Opacity:   parseOpacity(n.Styles.Opacity),
	}
	e.X, e.Y, e.Width, e.Height = clampBox(n)
	return e
}

// clampBox clamps the near edge to the canvas origin. The far edge is not
// clamped; see Element.
func clampBox(n *Node) (x, y, w, h float64) {
	x, y, w, h = n.X, n.Y, n.W, n.H
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y, w, h
}

func parsePixels(s string, fallback float64) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return fallback
}

func parseOpacity(s string) float64 {
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && f >= 0 && f <= 1 {
		return f
	}
	return 1
}

func normalizeTextAlign(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "center":
		return AlignCenter
	case "right", "end":
		return AlignRight
	default:
		return AlignLeft
	}
}

func normalizeObjectFit(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "contain":
		return FitContain
	case "fill":
		return FitFill
	default:
		return FitCover
	}
}

func normalizeFontWeight(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "normal"
	}
	return s
}

// firstFontFamily reduces a CSS font-family list to its first family name.
func firstFontFamily(s string) string {
	if i := strings.Index(s, ","); i >= 0 {
		s = s[:i]
	}
	return strings.Trim(strings.TrimSpace(s), `"'`)
}

var cssURLRe = regexp.MustCompile(`url\(\s*['"]?([^'")]+)['"]?\s*\)`)

// resolveBackground resolves the slide background by depth-first descent
// from the wrapper root: the first node with a non-trivial background wins.
// A gradient is lossy-reduced to its first color literal.
func resolveBackground(n *Node) (bgColor, bgImage string) {
	if n == nil {
		return "", ""
	}
	if !IsTransparent(n.Styles.BackgroundColor) {
		return ColorToHex(n.Styles.BackgroundColor), ""
	}
	bi := strings.TrimSpace(n.Styles.BackgroundImage)
	if bi != "" && bi != "none" {
		if strings.Contains(bi, "gradient(") {
			if lit := FirstColorLiteral(bi); lit != "" {
				return ColorToHex(lit), ""
			}
		} else if m := cssURLRe.FindStringSubmatch(bi); m != nil {
			return "", m[1]
		}
	}
	for _, c := range n.Children {
		if col, img := resolveBackground(c); col != "" || img != "" {
			return col, img
		}
	}
	return "", ""
}

// elementID builds a stable per-extraction element id.
func elementID(slideID, n int) string {
	return fmt.Sprintf("s%d-e%d", slideID, n)
}
