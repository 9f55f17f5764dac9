package render

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
)

// md keeps goldmark's default of omitting raw HTML, so provider text cannot inject markup.
var md = goldmark.New()

// SummaryHTML renders summary text as Markdown for display. On failure the text is
// shown escaped instead.
func SummaryHTML(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(text) + "</p>")
	}
	return template.HTML(buf.String())
}
