package pptx

import (
	"fmt"
	"strings"

	"github.com/scenezero/storyboard"
)

// chartXML builds a chart part from a chart element. Data is inlined with
// strLit/numLit caches so the part stands alone without an embedded workbook.
func chartXML(el *storyboard.Element) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<c:chartSpace xmlns:c="http://schemas.openxmlformats.org/drawingml/2006/chart" ` +
		`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`)
	sb.WriteString(`<c:chart><c:plotArea><c:layout/>`)

	kind := chartKind(el.ChartType)
	switch kind {
	case "pie":
		sb.WriteString(`<c:pieChart><c:varyColors val="1"/>`)
		writeSeries(&sb, el.Series, true)
		sb.WriteString(`<c:firstSliceAng val="0"/></c:pieChart>`)
	case "bar":
		sb.WriteString(`<c:barChart><c:barDir val="col"/><c:grouping val="clustered"/><c:varyColors val="0"/>`)
		writeSeries(&sb, el.Series, false)
		sb.WriteString(axIDs + `</c:barChart>` + axes)
	case "line":
		sb.WriteString(`<c:lineChart><c:grouping val="standard"/><c:varyColors val="0"/>`)
		writeSeries(&sb, el.Series, false)
		sb.WriteString(`<c:marker val="1"/>` + axIDs + `</c:lineChart>` + axes)
	case "area":
		sb.WriteString(`<c:areaChart><c:grouping val="standard"/><c:varyColors val="0"/>`)
		writeSeries(&sb, el.Series, false)
		sb.WriteString(axIDs + `</c:areaChart>` + axes)
	case "radar":
		sb.WriteString(`<c:radarChart><c:radarStyle val="marker"/><c:varyColors val="0"/>`)
		writeSeries(&sb, el.Series, false)
		sb.WriteString(axIDs + `</c:radarChart>` + axes)
	}

	sb.WriteString(`</c:plotArea><c:plotVisOnly val="1"/></c:chart>`)
	sb.WriteString(`</c:chartSpace>`)
	return sb.String()
}

// chartKind maps the extracted chart type to an OOXML chart element. Radial
// gauges have no OOXML counterpart and degrade to a pie.
func chartKind(t string) string {
	switch t {
	case "pie", "doughnut", "radial":
		return "pie"
	case "line":
		return "line"
	case "area":
		return "area"
	case "radar":
		return "radar"
	default:
		return "bar"
	}
}

const axIDs = `<c:axId val="100001"/><c:axId val="100002"/>`

const axes = `<c:catAx><c:axId val="100001"/><c:scaling><c:orientation val="minMax"/></c:scaling>` +
	`<c:delete val="0"/><c:axPos val="b"/><c:crossAx val="100002"/></c:catAx>` +
	`<c:valAx><c:axId val="100002"/><c:scaling><c:orientation val="minMax"/></c:scaling>` +
	`<c:delete val="0"/><c:axPos val="l"/><c:crossAx val="100001"/></c:valAx>`

func writeSeries(sb *strings.Builder, series []storyboard.ChartSeries, perPointColors bool) {
	for i, s := range series {
		fmt.Fprintf(sb, `<c:ser><c:idx val="%d"/><c:order val="%d"/>`, i, i)
		if s.Name != "" {
			fmt.Fprintf(sb, `<c:tx><c:v>%s</c:v></c:tx>`, esc(s.Name))
		}
		if perPointColors {
			for j, c := range s.Colors {
				if j >= len(s.Values) {
					break
				}
				fmt.Fprintf(sb, `<c:dPt><c:idx val="%d"/><c:bubble3D val="0"/><c:spPr><a:solidFill><a:srgbClr val="%s"/></a:solidFill></c:spPr></c:dPt>`,
					j, hexClr(c, "4472C4"))
			}
		} else if len(s.Colors) > 0 {
			fmt.Fprintf(sb, `<c:spPr><a:solidFill><a:srgbClr val="%s"/></a:solidFill></c:spPr>`, hexClr(s.Colors[0], "4472C4"))
		}
		sb.WriteString(`<c:cat><c:strLit>`)
		fmt.Fprintf(sb, `<c:ptCount val="%d"/>`, len(s.Labels))
		for j, l := range s.Labels {
			fmt.Fprintf(sb, `<c:pt idx="%d"><c:v>%s</c:v></c:pt>`, j, esc(l))
		}
		sb.WriteString(`</c:strLit></c:cat>`)
		sb.WriteString(`<c:val><c:numLit><c:formatCode>General</c:formatCode>`)
		fmt.Fprintf(sb, `<c:ptCount val="%d"/>`, len(s.Values))
		for j, v := range s.Values {
			fmt.Fprintf(sb, `<c:pt idx="%d"><c:v>%v</c:v></c:pt>`, j, v)
		}
		sb.WriteString(`</c:numLit></c:val>`)
		sb.WriteString(`</c:ser>`)
	}
}
