package generator

import (
	"fmt"
	"strings"

	"ai_content_optimizer/options"
)

const (
	TitleCount = 5
	TagCount   = 10

	schemaName = "content_optimizer_result"
)

// Prompt 表示发送给 LLM 的一次请求：指令文本 + 期望的 JSON 结构。
type Prompt struct {
	System     string
	User       string
	SchemaName string
	Schema     *Schema
}

// Schema is the subset of JSON Schema both providers understand.
type Schema struct {
	Type                 string             `json:"type"`
	Description          string             `json:"description,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
}

// Map converts the schema into plain maps, the form SDKs accept for "any" parameters.
func (s *Schema) Map() map[string]any {
	if s == nil {
		return nil
	}
	m := map[string]any{"type": s.Type}
	if s.Description != "" {
		m["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.Map()
		}
		m["properties"] = props
	}
	if s.Items != nil {
		m["items"] = s.Items.Map()
	}
	if len(s.Required) > 0 {
		m["required"] = append([]string(nil), s.Required...)
	}
	if s.AdditionalProperties != nil {
		m["additionalProperties"] = *s.AdditionalProperties
	}
	return m
}

// ResponseSchema builds the reply contract. The summaries object requires exactly
// the requested buckets.
func ResponseSchema(lengths []options.Length) *Schema {
	closed := false
	summaryProps := make(map[string]*Schema, len(lengths))
	required := make([]string, 0, len(lengths))
	for _, l := range options.SortLengths(lengths) {
		summaryProps[l.Key()] = &Schema{
			Type:        "string",
			Description: fmt.Sprintf("A %d-word summary.", l.Words()),
		}
		required = append(required, l.Key())
	}

	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"summaries": {
				Type:                 "object",
				Properties:           summaryProps,
				Required:             required,
				AdditionalProperties: &closed,
			},
			"titles": {
				Type:        "array",
				Items:       &Schema{Type: "string"},
				Description: fmt.Sprintf("An array of %d concise and catchy titles.", TitleCount),
			},
			"tags": {
				Type:        "array",
				Items:       &Schema{Type: "string"},
				Description: fmt.Sprintf("An array of %d relevant hashtags/keywords for YouTube or TikTok.", TagCount),
			},
		},
		Required:             []string{"summaries", "titles", "tags"},
		AdditionalProperties: &closed,
	}
}

// BuildPrompt renders the instruction for req. Lengths are used in canonical order.
func BuildPrompt(req Request) Prompt {
	lengths := options.SortLengths(req.Lengths)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Based on the content from the article at this URL: %s\n\n", strings.TrimSpace(req.URL)))
	sb.WriteString(fmt.Sprintf(
		"Please perform the following tasks. The output for all generated content must be in %s. The desired tone is %s.\n\n",
		req.Language, req.Tone,
	))

	which := "this summary"
	if len(lengths) > 1 {
		which = "these summaries"
	}
	sb.WriteString(fmt.Sprintf(
		"1. **Summaries**: Generate %s of the article with the following approximate word counts:\n", which,
	))
	for _, l := range lengths {
		sb.WriteString(fmt.Sprintf("   * A %d-word summary.\n", l.Words()))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(
		"2. **Titles**: Generate %d concise, catchy, and view-grabbing titles for this content.\n\n", TitleCount,
	))
	sb.WriteString(fmt.Sprintf(
		"3. **Tags**: Generate %d relevant hashtags or keywords suitable for increasing views on platforms like YouTube or TikTok.\n\n",
		TagCount,
	))
	sb.WriteString("Return the result strictly in the requested JSON format. ")
	sb.WriteString("Do not add any explanatory text before or after the JSON object.")

	return Prompt{
		System:     "You write summaries, titles and tags for online articles. Reply with a single JSON object only.",
		User:       sb.String(),
		SchemaName: schemaName,
		Schema:     ResponseSchema(lengths),
	}
}

// requiredSummaryKeys lists the summary keys a prompt's schema demands.
func requiredSummaryKeys(p Prompt) []string {
	if p.Schema == nil {
		return nil
	}
	summaries, ok := p.Schema.Properties["summaries"]
	if !ok || summaries == nil {
		return nil
	}
	return append([]string(nil), summaries.Required...)
}
