package storyboard

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

var (
	rgbRe      = regexp.MustCompile(`(?i)^rgba?\(\s*([\d.]+%?)\s*,\s*([\d.]+%?)\s*,\s*([\d.]+%?)\s*(?:,\s*[\d.]+\s*)?\)$`)
	hslRe      = regexp.MustCompile(`(?i)^hsla?\(\s*([\d.]+)(?:deg)?\s*,\s*([\d.]+)%\s*,\s*([\d.]+)%\s*(?:,\s*[\d.]+\s*)?\)$`)
	colorLitRe = regexp.MustCompile(`(?i)#[0-9a-f]{3,8}|rgba?\([^)]*\)|hsla?\([^)]*\)`)
)

// ColorToHex canonicalizes a CSS color expression to a 6-digit lowercase hex
// string. Input that cannot be resolved is returned unchanged, so callers
// must check for a leading "#" before trusting the result as hex. Every
// export path routes color values through here before serialization.
func ColorToHex(color string) string {
	c := strings.TrimSpace(color)
	if c == "" {
		return color
	}
	if strings.HasPrefix(c, "#") {
		if hex, ok := normalizeHex(c); ok {
			return hex
		}
		return color
	}
	if strings.Contains(strings.ToLower(c), "gradient(") {
		// Multi-stop gradients are lossy-reduced to their first color
		// literal. Known limitation: downstream encoders only understand
		// flat fills.
		if lit := FirstColorLiteral(c); lit != "" {
			return ColorToHex(lit)
		}
		return color
	}
	if m := rgbRe.FindStringSubmatch(c); m != nil {
		r, okR := parseRGBComponent(m[1])
		g, okG := parseRGBComponent(m[2])
		b, okB := parseRGBComponent(m[3])
		if okR && okG && okB {
			return fmt.Sprintf("#%02x%02x%02x", r, g, b)
		}
		return color
	}
	if m := hslRe.FindStringSubmatch(c); m != nil {
		h, errH := strconv.ParseFloat(m[1], 64)
		s, errS := strconv.ParseFloat(m[2], 64)
		l, errL := strconv.ParseFloat(m[3], 64)
		if errH == nil && errS == nil && errL == nil {
			r, g, b := hslToRGB(h, s/100, l/100)
			return fmt.Sprintf("#%02x%02x%02x", r, g, b)
		}
		return color
	}
	if rgba, ok := colornames.Map[strings.ToLower(c)]; ok {
		return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
	}
	return color
}

// FirstColorLiteral returns the first embedded color literal (hex, rgb() or
// hsl()) in a CSS value, or "".
func FirstColorLiteral(s string) string {
	return colorLitRe.FindString(s)
}

// IsTransparent reports whether a computed CSS color value resolves to a
// fully transparent color.
func IsTransparent(c string) bool {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" || c == "transparent" || c == "none" {
		return true
	}
	// rgba with zero alpha, e.g. "rgba(0, 0, 0, 0)"
	if strings.HasPrefix(c, "rgba(") && strings.HasSuffix(c, ")") {
		parts := strings.Split(strings.TrimSuffix(strings.TrimPrefix(c, "rgba("), ")"), ",")
		if len(parts) == 4 {
			if a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64); err == nil && a == 0 {
				return true
			}
		}
	}
	return false
}

func normalizeHex(c string) (string, bool) {
	h := strings.ToLower(strings.TrimPrefix(c, "#"))
	switch len(h) {
	case 3:
		var sb strings.Builder
		for _, r := range h {
			if !isHexDigit(r) {
				return "", false
			}
			sb.WriteRune(r)
			sb.WriteRune(r)
		}
		return "#" + sb.String(), true
	case 6, 8:
		for _, r := range h {
			if !isHexDigit(r) {
				return "", false
			}
		}
		// drop the alpha channel of #rrggbbaa
		return "#" + h[:6], true
	default:
		return "", false
	}
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}

func parseRGBComponent(s string) (int, bool) {
	if strings.HasSuffix(s, "%") {
		p, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}
		return clamp255(int(math.Round(p / 100 * 255))), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clamp255(int(math.Round(f))), true
}

func clamp255(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func hslToRGB(h, s, l float64) (int, int, int) {
	h = math.Mod(math.Mod(h, 360)+360, 360) / 360
	if s == 0 {
		v := clamp255(int(math.Round(l * 255)))
		return v, v, v
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	r := hueToRGB(p, q, h+1.0/3)
	g := hueToRGB(p, q, h)
	b := hueToRGB(p, q, h-1.0/3)
	return clamp255(int(math.Round(r * 255))), clamp255(int(math.Round(g * 255))), clamp255(int(math.Round(b * 255)))
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}
