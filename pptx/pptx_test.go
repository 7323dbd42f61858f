package pptx

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/scenezero/storyboard"
)

func readArchive(t *testing.T, b []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	parts := map[string]string{}
	for _, f := range zr.File {
		r, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open part %s: %v", f.Name, err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(r); err != nil {
			t.Fatalf("failed to read part %s: %v", f.Name, err)
		}
		_ = r.Close()
		parts[f.Name] = buf.String()
	}
	return parts
}

func testSlides() []*storyboard.StructuredSlide {
	return []*storyboard.StructuredSlide{
		{
			ID:      1,
			BGColor: "#112233",
			Layout:  "free",
			Elements: []*storyboard.Element{
				{
					ID: "s1-e0", Kind: storyboard.ElementText,
					X: 64, Y: 48, Width: 640, Height: 80,
					Content: "Hello <deck>", FontSize: 40, Color: "#ffffff",
					FontWeight: "bold", TextAlign: storyboard.AlignCenter,
				},
				{
					ID: "s1-e1", Kind: storyboard.ElementImage,
					X: 700, Y: 100, Width: 300, Height: 200,
					Src: "https://example.com/pic.png",
				},
				{
					ID: "s1-e2", Kind: storyboard.ElementShape,
					X: 0, Y: 400, Width: 200, Height: 100,
					ShapeType: storyboard.ShapeCircle, Color: "#ff0000", Opacity: 0.5,
				},
			},
		},
		{
			ID:      2,
			BGColor: "#ffffff",
			Layout:  "free",
			Elements: []*storyboard.Element{
				{
					ID: "s2-e0", Kind: storyboard.ElementTable,
					X: 100, Y: 100, Width: 800, Height: 300,
					Rows: [][]string{{"h1", "h2"}, {"a", "b"}},
				},
				{
					ID: "s2-e1", Kind: storyboard.ElementChart,
					X: 100, Y: 420, Width: 800, Height: 120,
					ChartType: "radial",
					Series: []storyboard.ChartSeries{
						{Name: "usage", Labels: []string{"a", "b"}, Values: []float64{30, 70}, Colors: []string{"#111111", "#222222"}},
					},
				},
			},
		},
	}
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder()
	slides := testSlides()
	if err := enc.Encode(&buf, "Test Deck", slides); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	parts := readArchive(t, buf.Bytes())

	for _, name := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"ppt/presentation.xml",
		"ppt/slides/slide1.xml",
		"ppt/slides/slide2.xml",
		"ppt/slides/_rels/slide1.xml.rels",
		"ppt/slideMasters/slideMaster1.xml",
		"ppt/slideLayouts/slideLayout1.xml",
		"ppt/theme/theme1.xml",
		"ppt/charts/chart1.xml",
	} {
		if _, ok := parts[name]; !ok {
			t.Errorf("missing part %s", name)
		}
	}

	s1 := parts["ppt/slides/slide1.xml"]
	if !strings.Contains(s1, `val="112233"`) {
		t.Error("slide 1 background color missing")
	}
	if !strings.Contains(s1, "Hello &lt;deck&gt;") {
		t.Error("text content not escaped")
	}
	if !strings.Contains(s1, `b="1"`) {
		t.Error("bold flag missing")
	}
	if !strings.Contains(s1, `algn="ctr"`) {
		t.Error("center alignment missing")
	}
	if !strings.Contains(s1, `sz="3000"`) { // 40px * 0.75 * 100
		t.Error("font size not scaled")
	}
	if !strings.Contains(s1, `prst="ellipse"`) {
		t.Error("circle shape missing")
	}
	if !strings.Contains(s1, `<a:alpha val="50000"/>`) {
		t.Error("shape opacity missing")
	}

	rels1 := parts["ppt/slides/_rels/slide1.xml.rels"]
	if !strings.Contains(rels1, `Target="https://example.com/pic.png" TargetMode="External"`) {
		t.Error("public image URL not referenced externally")
	}

	s2 := parts["ppt/slides/slide2.xml"]
	if !strings.Contains(s2, "<a:tbl>") || !strings.Contains(s2, "<a:t>h2</a:t>") {
		t.Error("table missing")
	}

	chart := parts["ppt/charts/chart1.xml"]
	if !strings.Contains(chart, "<c:pieChart>") {
		t.Error("radial chart did not degrade to pie")
	}
	if !strings.Contains(chart, `<c:pt idx="1"><c:v>70</c:v></c:pt>`) {
		t.Error("chart values missing")
	}
	if !strings.Contains(chart, `val="222222"`) {
		t.Error("per-point colors missing")
	}

	pres := parts["ppt/presentation.xml"]
	if !strings.Contains(pres, `cx="12192000" cy="6858000"`) {
		t.Error("slide size missing")
	}
	if strings.Count(pres, "<p:sldId ") != 2 {
		t.Error("slide id list wrong")
	}
}

func TestEncodeSkipsLoadingImages(t *testing.T) {
	slides := []*storyboard.StructuredSlide{
		{
			ID: 1, BGColor: "#ffffff", Layout: "free",
			Elements: []*storyboard.Element{
				{ID: "s1-e0", Kind: storyboard.ElementImage, Src: "loading", X: 0, Y: 0, Width: 100, Height: 100},
			},
		},
	}
	var buf bytes.Buffer
	if err := NewEncoder().Encode(&buf, "t", slides); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	parts := readArchive(t, buf.Bytes())
	if strings.Contains(parts["ppt/slides/slide1.xml"], "<p:pic>") {
		t.Error("pending image was emitted")
	}
}

func TestEncodeSkipsTableWithoutColumns(t *testing.T) {
	slides := []*storyboard.StructuredSlide{
		{
			ID: 1, BGColor: "#ffffff", Layout: "free",
			Elements: []*storyboard.Element{
				{ID: "s1-e0", Kind: storyboard.ElementTable, X: 0, Y: 0, Width: 400, Height: 200, Rows: [][]string{{}}},
				{ID: "s1-e1", Kind: storyboard.ElementText, X: 0, Y: 300, Width: 400, Height: 40, Content: "still here"},
			},
		},
	}
	var buf bytes.Buffer
	if err := NewEncoder().Encode(&buf, "t", slides); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	parts := readArchive(t, buf.Bytes())
	s1 := parts["ppt/slides/slide1.xml"]
	if strings.Contains(s1, "<a:tbl>") {
		t.Error("column-less table was emitted")
	}
	if !strings.Contains(s1, "still here") {
		t.Error("following elements dropped with the table")
	}
}

func TestEncodeRaster(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.Black)
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := NewEncoder().EncodeRaster(&buf, "t", [][]byte{pngBuf.Bytes(), pngBuf.Bytes()}); err != nil {
		t.Fatalf("EncodeRaster() error = %v", err)
	}
	parts := readArchive(t, buf.Bytes())
	for _, name := range []string{
		"ppt/slides/slide1.xml",
		"ppt/slides/slide2.xml",
		"ppt/media/image1.png",
		"ppt/media/image2.png",
	} {
		if _, ok := parts[name]; !ok {
			t.Errorf("missing part %s", name)
		}
	}
	if !strings.Contains(parts["ppt/slides/slide1.xml"], `cx="12192000" cy="6858000"`) {
		t.Error("raster picture does not fill the slide")
	}
}
