// Package render turns a generation result into what users see: an ordered view
// model, the HTML page, and a terminal rendition.
package render

import (
	"strings"

	"ai_content_optimizer/generator"
	"ai_content_optimizer/options"
)

// TagMarker prefixes every displayed tag.
const TagMarker = "#"

// SummaryCard is one displayed summary bucket.
type SummaryCard struct {
	Length options.Length
	Label  string
	Text   string
}

// View is the display model of a result. Summaries are in canonical order and
// only cover buckets present with non-empty text.
type View struct {
	Summaries []SummaryCard
	Titles    []string
	Tags      []string
}

func NewView(res generator.Result) View {
	v := View{
		Titles: append([]string(nil), res.Titles...),
		Tags:   make([]string, 0, len(res.Tags)),
	}
	for _, l := range options.Lengths() {
		text := strings.TrimSpace(res.Summaries[l])
		if text == "" {
			continue
		}
		v.Summaries = append(v.Summaries, SummaryCard{Length: l, Label: l.Label(), Text: text})
	}
	for _, tag := range res.Tags {
		if tag = NormalizeTag(tag); tag == TagMarker {
			continue
		}
		v.Tags = append(v.Tags, tag)
	}
	return v
}

// NormalizeTag returns tag with exactly one leading marker, whatever the provider sent.
func NormalizeTag(tag string) string {
	body := strings.TrimLeft(strings.TrimSpace(tag), TagMarker+" \t")
	return TagMarker + body
}
