package pptx

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/scenezero/storyboard"
)

type relEntry struct {
	id       string
	relType  string
	target   string
	external bool
}

// slideBuilder accumulates the shape tree and relationships of one slide.
// Charts and embedded media are package-global parts, so the builder appends
// to the encoder-level collections.
type slideBuilder struct {
	enc     *Encoder
	slideNo int
	charts  *[]string
	media   *[]mediaPart

	relList []relEntry
	shapeID int
	body    strings.Builder
}

func newSlideBuilder(enc *Encoder, slideNo int, charts *[]string, media *[]mediaPart) *slideBuilder {
	b := &slideBuilder{
		enc:     enc,
		slideNo: slideNo,
		charts:  charts,
		media:   media,
		shapeID: 1,
	}
	b.relList = append(b.relList, relEntry{
		id:      "rId1",
		relType: "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout",
		target:  "../slideLayouts/slideLayout1.xml",
	})
	return b
}

func (b *slideBuilder) nextShapeID() int {
	b.shapeID++
	return b.shapeID
}

func (b *slideBuilder) addRel(relType, target string, external bool) string {
	id := fmt.Sprintf("rId%d", len(b.relList)+1)
	b.relList = append(b.relList, relEntry{id: id, relType: relType, target: target, external: external})
	return id
}

func (b *slideBuilder) build(s *storyboard.StructuredSlide) string {
	if s.BGImage != "" {
		b.writeImage(&storyboard.Element{
			ID: fmt.Sprintf("s%d-bg", s.ID), Src: s.BGImage,
			X: 0, Y: 0,
			Width:  float64(storyboard.CanvasWidth),
			Height: float64(storyboard.CanvasHeight),
		})
	}
	for _, el := range s.Elements {
		switch el.Kind {
		case storyboard.ElementText:
			b.writeText(el)
		case storyboard.ElementImage:
			b.writeImage(el)
		case storyboard.ElementShape:
			b.writeShape(el)
		case storyboard.ElementTable:
			b.writeTable(el)
		case storyboard.ElementChart:
			b.writeChart(el)
		}
	}

	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<p:sld ` + sldNS + `>`)
	sb.WriteString(`<p:cSld>`)
	fmt.Fprintf(&sb, `<p:bg><p:bgPr><a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>`, hexClr(s.BGColor, "FFFFFF"))
	sb.WriteString(`<p:spTree>` + spTreeHeader)
	sb.WriteString(b.body.String())
	sb.WriteString(`</p:spTree></p:cSld>`)
	sb.WriteString(`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`)
	sb.WriteString(`</p:sld>`)
	return sb.String()
}

func (b *slideBuilder) rels() string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, r := range b.relList {
		if r.external {
			fmt.Fprintf(&sb, `<Relationship Id="%s" Type="%s" Target="%s" TargetMode="External"/>`, r.id, r.relType, esc(r.target))
			continue
		}
		fmt.Fprintf(&sb, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.id, r.relType, esc(r.target))
	}
	sb.WriteString(`</Relationships>`)
	return sb.String()
}

func xfrm(el *storyboard.Element) string {
	return fmt.Sprintf(`<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`,
		emuX(el.X), emuY(el.Y), emuX(el.Width), emuY(el.Height))
}

func (b *slideBuilder) writeText(el *storyboard.Element) {
	id := b.nextShapeID()
	sz := int(el.FontSize * 0.75 * 100) // px -> pt -> hundredths
	if sz <= 0 {
		sz = 1200
	}
	bold := ""
	if el.FontWeight == "bold" || el.FontWeight == "900" {
		bold = ` b="1"`
	}
	algn := "l"
	switch el.TextAlign {
	case storyboard.AlignCenter:
		algn = "ctr"
	case storyboard.AlignRight:
		algn = "r"
	}
	face := el.FontFamily
	if face == "" {
		face = "Calibri"
	}
	color := hexClr(el.Color, "111111")

	fmt.Fprintf(&b.body, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, esc(el.ID))
	b.body.WriteString(`<p:spPr>` + xfrm(el) + `<a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr>`)
	b.body.WriteString(`<p:txBody><a:bodyPr wrap="square" rtlCol="0"><a:noAutofit/></a:bodyPr><a:lstStyle/>`)
	for _, line := range strings.Split(el.Content, "\n") {
		fmt.Fprintf(&b.body, `<a:p><a:pPr algn="%s"/><a:r><a:rPr lang="en-US" sz="%d"%s dirty="0"><a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:latin typeface="%s"/></a:rPr><a:t>%s</a:t></a:r></a:p>`,
			algn, sz, bold, color, esc(face), esc(line))
	}
	b.body.WriteString(`</p:txBody></p:sp>`)
}

func (b *slideBuilder) writeImage(el *storyboard.Element) {
	if el.Src == "" || el.Src == "loading" {
		b.enc.logger.Info("skipped pending image", slog.String("element", el.ID))
		return
	}
	var rID string
	if storyboard.IsPublicURL(el.Src) {
		rID = b.addRel("http://schemas.openxmlformats.org/officeDocument/2006/relationships/image", el.Src, true)
	} else {
		img, err := storyboard.NewImage(el.Src)
		if err != nil {
			b.enc.logger.Warn("skipped image", slog.String("src", el.Src), slog.String("error", err.Error()))
			return
		}
		name := fmt.Sprintf("media/image%d%s", len(*b.media)+1, mediaExt(img.MIMEType()))
		*b.media = append(*b.media, mediaPart{name: name, contentType: string(img.MIMEType()), data: img.Bytes()})
		rID = b.addRel("http://schemas.openxmlformats.org/officeDocument/2006/relationships/image", "../"+name, false)
	}
	b.body.WriteString(picXML(b.nextShapeID(), rID, el.ID, emuX(el.X), emuY(el.Y), emuX(el.Width), emuY(el.Height)))
}

func picXML(id int, rID, name string, x, y, cx, cy int) string {
	return fmt.Sprintf(`<p:pic><p:nvPicPr><p:cNvPr id="%d" name="%s"/><p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>`+
		`<p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`+
		`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`,
		id, esc(name), rID, x, y, cx, cy)
}

func (b *slideBuilder) writeShape(el *storyboard.Element) {
	id := b.nextShapeID()
	prst := "rect"
	if el.ShapeType == storyboard.ShapeCircle {
		prst = "ellipse"
	}
	alpha := ""
	if el.Opacity > 0 && el.Opacity < 1 {
		alpha = fmt.Sprintf(`<a:alpha val="%d"/>`, int(el.Opacity*100000))
	}
	fmt.Fprintf(&b.body, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>`, id, esc(el.ID))
	fmt.Fprintf(&b.body, `<p:spPr>%s<a:prstGeom prst="%s"><a:avLst/></a:prstGeom><a:solidFill><a:srgbClr val="%s">%s</a:srgbClr></a:solidFill></p:spPr>`,
		xfrm(el), prst, hexClr(el.Color, "CCCCCC"), alpha)
	b.body.WriteString(`<p:txBody><a:bodyPr/><a:lstStyle/><a:p/></p:txBody></p:sp>`)
}

func (b *slideBuilder) writeTable(el *storyboard.Element) {
	if len(el.Rows) == 0 {
		return
	}
	cols := 0
	for _, row := range el.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		b.enc.logger.Warn("skipped table without columns", slog.String("element", el.ID))
		return
	}
	id := b.nextShapeID()
	colW := emuX(el.Width) / cols
	rowH := emuY(el.Height) / len(el.Rows)

	fmt.Fprintf(&b.body, `<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="%d" name="%s"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr>`, id, esc(el.ID))
	fmt.Fprintf(&b.body, `<p:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></p:xfrm>`,
		emuX(el.X), emuY(el.Y), emuX(el.Width), emuY(el.Height))
	b.body.WriteString(`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table"><a:tbl>`)
	b.body.WriteString(`<a:tblPr firstRow="1" bandRow="1"/>`)
	b.body.WriteString(`<a:tblGrid>`)
	for i := 0; i < cols; i++ {
		fmt.Fprintf(&b.body, `<a:gridCol w="%d"/>`, colW)
	}
	b.body.WriteString(`</a:tblGrid>`)
	for _, row := range el.Rows {
		fmt.Fprintf(&b.body, `<a:tr h="%d">`, rowH)
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			fmt.Fprintf(&b.body, `<a:tc><a:txBody><a:bodyPr/><a:lstStyle/><a:p><a:r><a:rPr lang="en-US" dirty="0"/><a:t>%s</a:t></a:r></a:p></a:txBody><a:tcPr/></a:tc>`, esc(cell))
		}
		b.body.WriteString(`</a:tr>`)
	}
	b.body.WriteString(`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`)
}

func (b *slideBuilder) writeChart(el *storyboard.Element) {
	*b.charts = append(*b.charts, chartXML(el))
	chartNo := len(*b.charts)
	rID := b.addRel("http://schemas.openxmlformats.org/officeDocument/2006/relationships/chart",
		fmt.Sprintf("../charts/chart%d.xml", chartNo), false)
	id := b.nextShapeID()
	fmt.Fprintf(&b.body, `<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="%d" name="%s"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr>`, id, esc(el.ID))
	fmt.Fprintf(&b.body, `<p:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></p:xfrm>`,
		emuX(el.X), emuY(el.Y), emuX(el.Width), emuY(el.Height))
	fmt.Fprintf(&b.body, `<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/chart"><c:chart xmlns:c="http://schemas.openxmlformats.org/drawingml/2006/chart" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" r:id="%s"/></a:graphicData></a:graphic></p:graphicFrame>`, rID)
}

func mediaExt(mt storyboard.MIMEType) string {
	switch mt {
	case storyboard.MIMETypeImageJPEG:
		return ".jpeg"
	case storyboard.MIMETypeImageGIF:
		return ".gif"
	default:
		return ".png"
	}
}

// hexClr converts a #rrggbb literal to the OOXML RRGGBB form.
func hexClr(hex, fallback string) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return fallback
	}
	return strings.ToUpper(hex)
}
