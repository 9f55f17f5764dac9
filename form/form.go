// Package form holds the user-editable input state: article URL, language, tone and
// the set of requested summary lengths. It owns no request logic.
package form

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"mvdan.cc/xurls/v2"

	"ai_content_optimizer/generator"
	"ai_content_optimizer/options"
)

// Submit button labels.
const (
	LabelGenerating  = "Generating..."
	LabelNeedLengths = "Select at least one length"
	LabelGenerate    = "Generate Content"
)

// Field names used by the HTML form.
const (
	FieldURL      = "url"
	FieldLanguage = "language"
	FieldTone     = "tone"
	FieldLength   = "length"
)

// The texts match the browser's own validation messages and are shown verbatim.
var (
	ErrURLRequired = errors.New("Please fill out this field.")
	ErrURLInvalid  = errors.New("Please enter a URL.")
)

// Selection is a set of length buckets. The zero value is empty.
type Selection uint8

func bit(l options.Length) Selection {
	for i, known := range options.Lengths() {
		if known == l {
			return 1 << i
		}
	}
	return 0
}

// SelectAll returns a selection holding every bucket.
func SelectAll() Selection {
	var s Selection
	for _, l := range options.Lengths() {
		s |= bit(l)
	}
	return s
}

// Select returns a selection holding ls. Unknown values are ignored.
func Select(ls ...options.Length) Selection {
	var s Selection
	for _, l := range ls {
		s |= bit(l)
	}
	return s
}

// Toggle adds l if absent and removes it if present.
func (s *Selection) Toggle(l options.Length) {
	*s ^= bit(l)
}

func (s Selection) Has(l options.Length) bool {
	b := bit(l)
	return b != 0 && s&b != 0
}

func (s Selection) Len() int {
	n := 0
	for _, l := range options.Lengths() {
		if s.Has(l) {
			n++
		}
	}
	return n
}

// Sorted returns the selected buckets in canonical order.
func (s Selection) Sorted() []options.Length {
	out := make([]options.Length, 0, 4)
	for _, l := range options.Lengths() {
		if s.Has(l) {
			out = append(out, l)
		}
	}
	return out
}

// Form is the controlled state behind the input form.
type Form struct {
	URL      string
	Language options.Language
	Tone     options.Tone
	Lengths  Selection
}

// Default is the initial form: English, Professional and every length selected.
func Default() Form {
	return Form{
		Language: options.English,
		Tone:     options.Professional,
		Lengths:  SelectAll(),
	}
}

// SubmitState describes the submit button.
type SubmitState struct {
	Disabled bool
	Label    string
}

// Submit reports the button state for the given loading flag.
func (f Form) Submit(loading bool) SubmitState {
	switch {
	case loading:
		return SubmitState{Disabled: true, Label: LabelGenerating}
	case f.Lengths.Len() == 0:
		return SubmitState{Disabled: true, Label: LabelNeedLengths}
	default:
		return SubmitState{Label: LabelGenerate}
	}
}

// FromValues reads a posted HTML form. Missing language or tone fall back to the
// defaults; unknown values are an error. No checked length yields an empty selection.
func FromValues(v url.Values) (Form, error) {
	f := Default()
	f.URL = strings.TrimSpace(v.Get(FieldURL))

	if raw := v.Get(FieldLanguage); raw != "" {
		lang, err := options.ParseLanguage(raw)
		if err != nil {
			return Form{}, err
		}
		f.Language = lang
	}
	if raw := v.Get(FieldTone); raw != "" {
		tone, err := options.ParseTone(raw)
		if err != nil {
			return Form{}, err
		}
		f.Tone = tone
	}

	f.Lengths = 0
	for _, raw := range v[FieldLength] {
		l, err := options.ParseLength(raw)
		if err != nil {
			return Form{}, err
		}
		f.Lengths |= bit(l)
	}
	return f, nil
}

// Values encodes the form the way the HTML form posts it.
func (f Form) Values() url.Values {
	v := url.Values{}
	v.Set(FieldURL, f.URL)
	v.Set(FieldLanguage, string(f.Language))
	v.Set(FieldTone, string(f.Tone))
	for _, l := range f.Lengths.Sorted() {
		v.Add(FieldLength, l.Key())
	}
	return v
}

// Validate mirrors what a browser enforces for a required type=url input: the
// value must be present and be a single absolute http(s) URL. Trailing punctuation
// is part of the URL.
func (f Form) Validate() error {
	u := strings.TrimSpace(f.URL)
	if u == "" {
		return ErrURLRequired
	}
	if strings.ContainsFunc(u, unicode.IsSpace) {
		return ErrURLInvalid
	}

	re, err := xurls.StrictMatchingScheme(`https?://`)
	if err != nil {
		return fmt.Errorf("failed to create regexp: %w", err)
	}
	// xurls trims trailing punctuation, so only the start of the match is checked
	if loc := re.FindStringIndex(u); loc == nil || loc[0] != 0 {
		return ErrURLInvalid
	}

	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return ErrURLInvalid
	}
	if scheme := strings.ToLower(parsed.Scheme); scheme != "http" && scheme != "https" {
		return ErrURLInvalid
	}
	return nil
}

// Request snapshots the form into a generation request.
func (f Form) Request() generator.Request {
	return generator.Request{
		URL:      strings.TrimSpace(f.URL),
		Language: f.Language,
		Tone:     f.Tone,
		Lengths:  f.Lengths.Sorted(),
	}
}
