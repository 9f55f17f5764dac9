// Package export writes a generation result out as Markdown or as a standalone
// HTML document.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"ai_content_optimizer/generator"
	"ai_content_optimizer/render"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Linkify))

// Markdown renders res with one section per summary, a numbered title list and
// the normalized tags on a single line.
func Markdown(sourceURL string, res generator.Result) string {
	v := render.NewView(res)

	var b strings.Builder
	b.WriteString("# " + render.TextTitle + "\n\n")
	if sourceURL != "" {
		b.WriteString(fmt.Sprintf("Source: <%s>\n\n", sourceURL))
	}

	if len(v.Summaries) > 0 {
		b.WriteString("## Generated Summaries\n\n")
		for _, s := range v.Summaries {
			b.WriteString(fmt.Sprintf("### %s\n\n%s\n\n", s.Label, s.Text))
		}
	}

	b.WriteString("## Suggested Titles\n\n")
	for i, t := range v.Titles {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, t))
	}
	b.WriteString("\n## Suggested Tags & Keywords\n\n")
	// a leading '#' would start a heading; escape the first one
	if len(v.Tags) > 0 {
		b.WriteString("\\" + strings.Join(v.Tags, " ") + "\n")
	}
	return b.String()
}

var docTmpl = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTML converts the Markdown export into a complete HTML document.
func HTML(sourceURL string, res generator.Result) (string, error) {
	body, err := mdToHTML(Markdown(sourceURL, res))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = docTmpl.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{Title: render.TextTitle, Body: template.HTML(body)})
	if err != nil {
		return "", fmt.Errorf("render export: %w", err)
	}
	return buf.String(), nil
}

func mdToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}
