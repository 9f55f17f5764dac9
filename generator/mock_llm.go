package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai_content_optimizer/options"
)

// MockLLM 一个简单的占位实现，便于本地调试，不调用外部模型。
// It answers with JSON that satisfies the prompt's schema.
type MockLLM struct{}

func (m MockLLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	summaries := make(map[string]string)
	for _, key := range requiredSummaryKeys(prompt) {
		words := key
		if l, ok := options.ParseLengthKey(key); ok {
			words = fmt.Sprintf("%d-word", l.Words())
		}
		summaries[key] = fmt.Sprintf("This is a mock %s summary generated without calling a provider.", words)
	}

	titles := make([]string, 0, TitleCount)
	for i := range TitleCount {
		titles = append(titles, fmt.Sprintf("Mock title %d", i+1))
	}
	tags := make([]string, 0, TagCount)
	for i := range TagCount {
		tags = append(tags, fmt.Sprintf("#mocktag%d", i+1))
	}

	b, err := json.MarshalIndent(wireResult{Summaries: summaries, Titles: titles, Tags: tags}, "", "  ")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
