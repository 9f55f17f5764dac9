package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultGeminiModel   = "gemini-2.5-flash"
)

// GeminiLLM calls the native generateContent endpoint with responseSchema, which
// is how the provider constrains its reply to a JSON shape.
type GeminiLLM struct {
	Model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

func NewGeminiLLMFromConfig(cfg *LLMSettings, httpClient *http.Client) (*GeminiLLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultGeminiModel
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GeminiLLM{
		Model:      model,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

func (g *GeminiLLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if g.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt.User}},
		}},
	}
	if prompt.System != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: prompt.System}}}
	}
	if prompt.Schema != nil {
		payload.GenerationConfig = geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   geminiSchema(prompt.Schema),
		}
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.baseURL, url.PathEscape(g.Model), url.QueryEscape(g.apiKey))

	body, err := g.doJSON(ctx, endpoint, payload)
	if err != nil {
		return "", err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("gemini: parse response: %w", err)
	}
	if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini: prompt blocked (reason = %s)", parsed.PromptFeedback.BlockReason)
	}
	if len(parsed.Candidates) == 0 {
		return "", errors.New("gemini: empty candidates")
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

func (g *GeminiLLM) doJSON(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: do request: %w", redactKey(err, g.apiKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("gemini: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// geminiSchema converts to the provider's OpenAPI subset: upper-case type names and
// no additionalProperties.
func geminiSchema(s *Schema) map[string]any {
	if s == nil {
		return nil
	}
	m := map[string]any{"type": strings.ToUpper(s.Type)}
	if s.Description != "" {
		m["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = geminiSchema(p)
		}
		m["properties"] = props
	}
	if s.Items != nil {
		m["items"] = geminiSchema(s.Items)
	}
	if len(s.Required) > 0 {
		m["required"] = append([]string(nil), s.Required...)
	}
	return m
}

// url.Error embeds the full request URL, which carries the key.
func redactKey(err error, key string) error {
	if key == "" {
		return err
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s %q: %w", ue.Op, strings.ReplaceAll(ue.URL, url.QueryEscape(key), "REDACTED"), ue.Err)
	}
	return err
}
