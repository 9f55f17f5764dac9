// Package options enumerates the choices a user can make when requesting content:
// output language, tone and summary length buckets.
package options

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Language is the language every generated field is written in.
type Language string

const (
	English    Language = "English"
	Vietnamese Language = "Vietnamese"
)

// Tone is the stylistic register requested for all generated text.
type Tone string

const (
	Professional Tone = "Professional"
	Objective    Tone = "Objective"
	Humorous     Tone = "Humorous"
	Tense        Tone = "Tense"
)

// Length is a summary length bucket expressed as a target word count.
type Length int

const (
	Words80  Length = 80
	Words170 Length = 170
	Words300 Length = 300
	Words600 Length = 600
)

// Choice pairs a value with the label shown to users.
type Choice[T comparable] struct {
	Value T
	Label string
}

var (
	languages = []Choice[Language]{
		{Value: English, Label: "English"},
		{Value: Vietnamese, Label: "Tiếng Việt"},
	}

	tones = []Choice[Tone]{
		{Value: Professional, Label: "Professional"},
		{Value: Objective, Label: "Objective"},
		{Value: Humorous, Label: "Humorous"},
		{Value: Tense, Label: "Tense"},
	}

	// canonical order: 80 → 170 → 300 → 600
	lengths = []Length{Words80, Words170, Words300, Words600}
)

// Languages returns the supported output languages in display order.
func Languages() []Choice[Language] { return slices.Clone(languages) }

// Tones returns the supported tones in display order.
func Tones() []Choice[Tone] { return slices.Clone(tones) }

// Lengths returns all length buckets in canonical order.
func Lengths() []Length { return slices.Clone(lengths) }

// Key is the wire name of the bucket in the provider's JSON, e.g. "s80".
func (l Length) Key() string { return "s" + strconv.Itoa(int(l)) }

// Label is the human-readable bucket name, e.g. "80 Words".
func (l Length) Label() string { return fmt.Sprintf("%d Words", int(l)) }

// Words returns the target word count.
func (l Length) Words() int { return int(l) }

// Valid reports whether l is one of the four known buckets.
func (l Length) Valid() bool { return slices.Contains(lengths, l) }

func (l Length) String() string { return l.Key() }

// Label returns the display label of the language.
func (l Language) Label() string {
	for _, c := range languages {
		if c.Value == l {
			return c.Label
		}
	}
	return string(l)
}

// ParseLanguage accepts a language value ("English") case-insensitively.
func ParseLanguage(s string) (Language, error) {
	s = strings.TrimSpace(s)
	for _, c := range languages {
		if strings.EqualFold(string(c.Value), s) {
			return c.Value, nil
		}
	}
	return "", fmt.Errorf("unknown language %q", s)
}

// ParseTone accepts a tone value ("Objective") case-insensitively.
func ParseTone(s string) (Tone, error) {
	s = strings.TrimSpace(s)
	for _, c := range tones {
		if strings.EqualFold(string(c.Value), s) {
			return c.Value, nil
		}
	}
	return "", fmt.Errorf("unknown tone %q", s)
}

// ParseLength accepts either the word count ("80") or the wire key ("s80").
func ParseLength(s string) (Length, error) {
	raw := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "s")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("unknown length %q", s)
	}
	l := Length(n)
	if !l.Valid() {
		return 0, fmt.Errorf("unknown length %q", s)
	}
	return l, nil
}

// ParseLengthKey resolves a wire key such as "s300". Bare numbers are rejected.
func ParseLengthKey(key string) (Length, bool) {
	if !strings.HasPrefix(key, "s") {
		return 0, false
	}
	l, err := ParseLength(key)
	if err != nil {
		return 0, false
	}
	return l, true
}

// ParseLengthList parses a comma-separated list such as "80,300".
func ParseLengthList(s string) ([]Length, error) {
	var out []Length
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		l, err := ParseLength(part)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return SortLengths(out), nil
}

// SortLengths returns a de-duplicated copy of ls in canonical order.
func SortLengths(ls []Length) []Length {
	out := make([]Length, 0, len(ls))
	for _, l := range lengths {
		if slices.Contains(ls, l) {
			out = append(out, l)
		}
	}
	return out
}
