package storyboard

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/k1LoW/errors"
)

// Theme is an immutable catalog entry of CSS custom-property values.
// Applying a theme never mutates the catalog; it rewrites slide HTML.
type Theme struct {
	ID                string `yaml:"id" json:"id"`
	Name              string `yaml:"name" json:"name"`
	Background        string `yaml:"background" json:"background"`
	Foreground        string `yaml:"foreground" json:"foreground"`
	Primary           string `yaml:"primary" json:"primary"`
	PrimaryForeground string `yaml:"primaryForeground" json:"primaryForeground"`
	Card              string `yaml:"card" json:"card"`
	CardForeground    string `yaml:"cardForeground" json:"cardForeground"`
	Secondary         string `yaml:"secondary" json:"secondary"`
	SecondaryFg       string `yaml:"secondaryForeground" json:"secondaryForeground"`
	Muted             string `yaml:"muted" json:"muted"`
	MutedForeground   string `yaml:"mutedForeground" json:"mutedForeground"`
	Accent            string `yaml:"accent" json:"accent"`
	AccentForeground  string `yaml:"accentForeground" json:"accentForeground"`
	Destructive       string `yaml:"destructive" json:"destructive"`
	Border            string `yaml:"border" json:"border"`
	Input             string `yaml:"input" json:"input"`
	Ring              string `yaml:"ring" json:"ring"`
	Radius            string `yaml:"radius" json:"radius"`
}

var (
	rootBlockRe = regexp.MustCompile(`(?s):root\s*\{[^}]*\}`)
	styleOpenRe = regexp.MustCompile(`(?i)<style[^>]*>`)
)

// rootBlock renders the :root custom-property block for the theme.
func (t *Theme) rootBlock() string {
	pairs := [][2]string{
		{"--background", t.Background},
		{"--foreground", t.Foreground},
		{"--primary", t.Primary},
		{"--primary-foreground", t.PrimaryForeground},
		{"--card", t.Card},
		{"--card-foreground", t.CardForeground},
		{"--secondary", t.Secondary},
		{"--secondary-foreground", t.SecondaryFg},
		{"--muted", t.Muted},
		{"--muted-foreground", t.MutedForeground},
		{"--accent", t.Accent},
		{"--accent-foreground", t.AccentForeground},
		{"--destructive", t.Destructive},
		{"--border", t.Border},
		{"--input", t.Input},
		{"--ring", t.Ring},
		{"--radius", t.Radius},
	}
	var sb strings.Builder
	sb.WriteString(":root {")
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf(" %s: %s;", p[0], p[1]))
	}
	sb.WriteString(" }")
	return sb.String()
}

// Apply rewrites the theme variables inside a slide's HTML. Injection point
// is a three-tier fallback: an existing :root block is replaced in place;
// otherwise the block is prepended into the first <style> element; otherwise
// a new <style> element is inserted before </head>, or prepended when the
// markup has no head at all.
func (t *Theme) Apply(html string) string {
	block := t.rootBlock()
	if rootBlockRe.MatchString(html) {
		return rootBlockRe.ReplaceAllString(html, block)
	}
	if loc := styleOpenRe.FindStringIndex(html); loc != nil {
		return html[:loc[1]] + "\n" + block + "\n" + html[loc[1]:]
	}
	styled := "<style>\n" + block + "\n</style>"
	if idx := strings.Index(strings.ToLower(html), "</head>"); idx >= 0 {
		return html[:idx] + styled + "\n" + html[idx:]
	}
	return styled + "\n" + html
}

// ApplyTheme applies a theme to every slide of the deck in place.
func (d *Deck) ApplyTheme(t *Theme) {
	if t == nil {
		return
	}
	for _, s := range d.Slides {
		s.HTML = t.Apply(s.HTML)
	}
}

// LoadThemes reads a YAML theme catalog.
func LoadThemes(path string) (_ []*Theme, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read themes file: %w", err)
	}
	var themes []*Theme
	if err := yaml.Unmarshal(b, &themes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal themes: %w", err)
	}
	return themes, nil
}

// FindTheme returns the theme with the given id or name, or nil.
func FindTheme(themes []*Theme, idOrName string) *Theme {
	for _, t := range themes {
		if t.ID == idOrName || t.Name == idOrName {
			return t
		}
	}
	return nil
}
