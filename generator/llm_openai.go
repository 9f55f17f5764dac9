package generator

import (
	"context"
	"errors"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAILLM implements LLMClient using the official openai-go SDK (chat completions
// with a strict json_schema response format). Any OpenAI-compatible endpoint works
// through BaseURL.
type OpenAILLM struct {
	Model  string
	apiKey string
	Opts   []option.RequestOption
}

func NewOpenAILLMFromConfig(cfg *LLMSettings, extra ...option.RequestOption) (*OpenAILLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, extra...)
	return &OpenAILLM{Model: model, apiKey: strings.TrimSpace(cfg.APIKey), Opts: opts}, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if o.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	client := openai.NewClient(o.Opts...)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
	}
	if prompt.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   prompt.SchemaName,
					Schema: prompt.Schema.Map(),
					Strict: openai.Bool(true),
				},
			},
		}
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
