package generator

import "context"

// Provider names accepted in configuration.
const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderGemini   = "gemini"
	ProviderMock     = "mock"
)

// LLMClient 抽象生成服务：一次调用，返回模型原始文本（应为 JSON）。
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings carries what every provider implementation needs.
// APIKey may be empty at startup; the failure surfaces on first use.
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}
