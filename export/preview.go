package export

import (
	"html/template"
	"io"

	"github.com/k1LoW/errors"
	"github.com/scenezero/storyboard"
)

var previewTmpl = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
<style>
body { margin: 0; padding: 24px; background: #2b2b2b; font-family: sans-serif; }
h1 { color: #eee; font-size: 20px; }
.slide { width: 1024px; height: 576px; margin: 0 auto 32px; background: #fff; box-shadow: 0 4px 16px rgba(0,0,0,.4); overflow: hidden; position: relative; }
.slide iframe { width: 1024px; height: 576px; border: 0; }
.label { color: #999; font-size: 12px; width: 1024px; margin: 0 auto 4px; }
</style>
</head>
<body>
<h1>{{ .Title }}</h1>
{{ range .Slides }}
<div class="label">#{{ .ID }} {{ .Title }}</div>
<div class="slide"><iframe sandbox="" srcdoc="{{ .HTML }}"></iframe></div>
{{ end }}
</body>
</html>
`))

// Preview writes a self-contained HTML page that renders every slide in a
// fixed-size sandboxed frame, for eyeballing a deck in a browser without
// exporting it.
func Preview(w io.Writer, deck *storyboard.Deck) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	return previewTmpl.Execute(w, deck)
}
