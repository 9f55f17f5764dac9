package generator

import (
	"context"
	"errors"
	"log/slog"

	"ai_content_optimizer/options"
)

// Agent 负责把一次提交变成 prompt，调用模型，并校验返回的 JSON。
type Agent struct {
	llm      LLMClient
	provider string
	log      *slog.Logger
}

func NewAgent(llm LLMClient, provider string, log *slog.Logger) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Agent{llm: llm, provider: provider, log: log}, nil
}

// Generate validates req locally, makes exactly one provider call and returns the
// parsed result. Empty lengths fail with *ValidationError before any network I/O;
// every other failure is a *ProviderError.
func (a *Agent) Generate(ctx context.Context, req Request) (Result, error) {
	req.Lengths = options.SortLengths(req.Lengths)
	if len(req.Lengths) == 0 {
		return Result{}, &ValidationError{Cause: ErrNoLengths}
	}

	prompt := BuildPrompt(req)

	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		a.log.ErrorContext(ctx, "Failed to call provider",
			"error", err,
			"provider", a.provider,
			"url", req.URL)

		return Result{}, &ProviderError{Provider: a.provider, Cause: err}
	}

	res, err := PostProcess(raw, req)
	if err != nil {
		a.log.ErrorContext(ctx, "Failed to process provider reply",
			"error", err,
			"provider", a.provider,
			"url", req.URL,
			"replyLen", len(raw))

		return Result{}, &ProviderError{Provider: a.provider, Cause: err}
	}

	if len(res.Titles) != TitleCount || len(res.Tags) != TagCount {
		a.log.WarnContext(ctx, "Provider returned unexpected item counts",
			"provider", a.provider,
			"titles", len(res.Titles),
			"tags", len(res.Tags))
	}

	return res, nil
}
