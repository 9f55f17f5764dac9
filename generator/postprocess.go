package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"ai_content_optimizer/options"
)

// PostProcess 解析并校验模型输出，只有完整通过校验的结果才会返回。
func PostProcess(raw string, req Request) (Result, error) {
	text := stripCodeFence(strings.TrimSpace(raw))
	if text == "" {
		return Result{}, ErrEmptyOutput
	}

	var w wireResult
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return Result{}, fmt.Errorf("parse response: %w", err)
	}

	var missing []string
	if w.Summaries == nil {
		missing = append(missing, "summaries")
	}
	if w.Titles == nil {
		missing = append(missing, "titles")
	}
	if w.Tags == nil {
		missing = append(missing, "tags")
	}
	if len(missing) > 0 {
		return Result{}, fmt.Errorf("%w: missing %s", ErrInvalidStructure, strings.Join(missing, ", "))
	}

	summaries := make(map[options.Length]string, len(req.Lengths))
	for _, l := range options.SortLengths(req.Lengths) {
		text := strings.TrimSpace(w.Summaries[l.Key()])
		if text == "" {
			return Result{}, fmt.Errorf("%w: missing summary %s", ErrInvalidStructure, l.Key())
		}
		summaries[l] = text
	}

	titles := compact(w.Titles)
	if len(titles) == 0 {
		return Result{}, fmt.Errorf("%w: no titles", ErrInvalidStructure)
	}
	tags := compactTags(w.Tags)
	if len(tags) == 0 {
		return Result{}, fmt.Errorf("%w: no tags", ErrInvalidStructure)
	}

	return Result{
		Summaries: summaries,
		Titles:    titles,
		Tags:      tags,
	}, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some OpenAI-compatible gateways add.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		return s
	}
	body = strings.TrimSpace(body)
	if !strings.HasSuffix(body, "```") {
		return s
	}
	return strings.TrimSpace(strings.TrimSuffix(body, "```"))
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		out = append(out, it)
	}
	return out
}

// compactTags also drops tags that are nothing but hash markers.
func compactTags(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range compact(items) {
		if strings.TrimLeft(it, "# \t") == "" {
			continue
		}
		out = append(out, it)
	}
	return out
}
