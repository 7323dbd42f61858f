package storyboard

// ElementKind is the variant tag of an extracted element.
type ElementKind string

const (
	ElementText  ElementKind = "text"
	ElementImage ElementKind = "image"
	ElementShape ElementKind = "shape"
	ElementTable ElementKind = "table"
	ElementChart ElementKind = "chart"
)

// Text alignment values.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Shape types.
const (
	ShapeRectangle = "rectangle"
	ShapeCircle    = "circle"
)

// Object-fit values for image elements.
const (
	FitCover   = "cover"
	FitContain = "contain"
	FitFill    = "fill"
)

// Element is a tagged union over text, image, shape, table and chart
// variants. Coordinates are pixels in the fixed canvas space
// (CanvasWidth x CanvasHeight), wrapper-local. x and y are clamped to >= 0;
// the far edge is deliberately left unclamped so oversized decorative
// elements may bleed off-canvas for the consuming renderer to clip.
type Element struct {
	ID     string      `json:"id"`
	Kind   ElementKind `json:"type"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`

	// text
	Content    string  `json:"content,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	Color      string  `json:"color,omitempty"`
	FontWeight string  `json:"fontWeight,omitempty"`
	TextAlign  string  `json:"textAlign,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`

	// image
	Src       string `json:"src,omitempty"`
	ObjectFit string `json:"objectFit,omitempty"`

	// shape
	ShapeType string  `json:"shapeType,omitempty"`
	Opacity   float64 `json:"opacity,omitempty"`

	// table
	Rows [][]string `json:"rows,omitempty"`

	// chart
	ChartType string        `json:"chartType,omitempty"`
	Series    []ChartSeries `json:"series,omitempty"`
}

// ChartSeries is one data series of a chart element.
type ChartSeries struct {
	Name   string    `json:"name,omitempty"`
	Labels []string  `json:"labels,omitempty"`
	Values []float64 `json:"values,omitempty"`
	Colors []string  `json:"colors,omitempty"`
}

// StructuredSlide is the derived geometric projection of one slide, rebuilt
// from scratch on every extraction pass. It is never persisted back into the
// Slide; Slide.HTML remains the source of truth.
type StructuredSlide struct {
	ID       int        `json:"id"`
	Elements []*Element `json:"elements"`
	BGColor  string     `json:"bgColor"`
	BGImage  string     `json:"bgImage,omitempty"`
	Layout   string     `json:"layout"`
}
