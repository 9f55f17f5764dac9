package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"ai_content_optimizer/form"
	"ai_content_optimizer/options"
	"ai_content_optimizer/shell"
)

// Loader and page copy.
const (
	TextTitle    = "AI Content Optimizer"
	TextTagline  = "Paste an article link to instantly generate summaries, catchy titles, and social media tags in your chosen style and language."
	TextThinking = "AI is thinking... this may take a moment."
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTmpl = template.Must(template.New("page.html.tmpl").
	Funcs(template.FuncMap{"summaryHTML": SummaryHTML}).
	ParseFS(templateFS, "templates/*.tmpl"))

// LengthOption is one summary length checkbox.
type LengthOption struct {
	Key     string
	Label   string
	Checked bool
}

// Page is everything the HTML template needs.
type Page struct {
	Title        string
	Tagline      string
	Thinking     string
	Form         form.Form
	Submit       form.SubmitState
	Loading      bool
	Error        string
	View         *View
	Languages    []options.Choice[options.Language]
	Tones        []options.Choice[options.Tone]
	Lengths      []LengthOption
	CopiedMillis int64
}

// NewPage derives the page from the form and the shell state. Exactly one of
// loader, error banner or results is set.
func NewPage(f form.Form, st shell.State) Page {
	p := Page{
		Title:        TextTitle,
		Tagline:      TextTagline,
		Thinking:     TextThinking,
		Form:         f,
		Languages:    options.Languages(),
		Tones:        options.Tones(),
		CopiedMillis: CopiedDuration.Milliseconds(),
	}
	for _, l := range options.Lengths() {
		p.Lengths = append(p.Lengths, LengthOption{
			Key:     l.Key(),
			Label:   l.Label(),
			Checked: f.Lengths.Has(l),
		})
	}

	switch st := st.(type) {
	case shell.Loading:
		p.Loading = true
	case shell.Failed:
		p.Error = st.Message
	case shell.Success:
		v := NewView(st.Result)
		p.View = &v
	}
	p.Submit = f.Submit(p.Loading)
	return p
}

// Render writes the full HTML document.
func Render(w io.Writer, p Page) error {
	if err := pageTmpl.Execute(w, p); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
