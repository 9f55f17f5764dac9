package generator

import (
	"encoding/json"
	"maps"
	"slices"

	"ai_content_optimizer/options"
)

// Request describes one submission: which article, in which language and tone,
// and which summary lengths to produce.
type Request struct {
	URL      string
	Language options.Language
	Tone     options.Tone
	Lengths  []options.Length
}

// Result is the validated provider output. Only requested lengths appear in Summaries.
type Result struct {
	Summaries map[options.Length]string
	Titles    []string
	Tags      []string
}

// Clone returns a deep copy so holders never share mutable state.
func (r Result) Clone() Result {
	return Result{
		Summaries: maps.Clone(r.Summaries),
		Titles:    slices.Clone(r.Titles),
		Tags:      slices.Clone(r.Tags),
	}
}

// Lengths returns the summary buckets present in the result, in canonical order.
func (r Result) Lengths() []options.Length {
	var out []options.Length
	for _, l := range options.Lengths() {
		if _, ok := r.Summaries[l]; ok {
			out = append(out, l)
		}
	}
	return out
}

// wireResult mirrors the JSON contract exchanged with the provider and API clients.
type wireResult struct {
	Summaries map[string]string `json:"summaries"`
	Titles    []string          `json:"titles"`
	Tags      []string          `json:"tags"`
}

// MarshalJSON encodes summaries under their wire keys ("s80", "s170", ...).
func (r Result) MarshalJSON() ([]byte, error) {
	w := wireResult{
		Summaries: make(map[string]string, len(r.Summaries)),
		Titles:    r.Titles,
		Tags:      r.Tags,
	}
	for l, text := range r.Summaries {
		w.Summaries[l.Key()] = text
	}
	if w.Titles == nil {
		w.Titles = []string{}
	}
	if w.Tags == nil {
		w.Tags = []string{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts the wire form. Unknown summary keys are ignored.
func (r *Result) UnmarshalJSON(b []byte) error {
	var w wireResult
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	r.Summaries = make(map[options.Length]string, len(w.Summaries))
	for key, text := range w.Summaries {
		if l, ok := options.ParseLengthKey(key); ok {
			r.Summaries[l] = text
		}
	}
	r.Titles = w.Titles
	r.Tags = w.Tags
	return nil
}
