// Command html2img is a stub snapshot command for tests. It reads slide HTML
// on stdin, strips the tags and renders the remaining text onto a fixed-size
// canvas, writing a PNG to stdout. It stands in for a real headless renderer
// wherever Chrome is unavailable.
package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"regexp"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	canvasWidth  = 1024
	canvasHeight = 576
)

var tagRe = regexp.MustCompile(`<[^>]*>`)

func main() {
	if err := _main(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func _main() error {
	stdin, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	text := tagRe.ReplaceAll(stdin, nil)
	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil()

	img := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}

	padding := 10
	y := padding + face.Metrics().Ascent.Ceil()
	for _, line := range bytes.Split(text, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		d.Dot = fixed.Point26_6{
			X: fixed.I(padding),
			Y: fixed.I(y),
		}
		d.DrawBytes(line)
		y += lineHeight
		if y > canvasHeight-padding {
			break
		}
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}

	if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
