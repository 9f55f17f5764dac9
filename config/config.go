// Package config loads settings from an optional JSON or YAML file and overlays
// environment variables on top.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"ai_content_optimizer/generator"
)

const (
	DefaultServerAddr     = ":8080"
	DefaultRequestTimeout = 60 * time.Second
	DefaultSessionTTL     = 24 * time.Hour
)

// Config is the application configuration.
type Config struct {
	LLM            LLMConfig `json:"llm" yaml:"llm"`
	ServerAddr     string    `json:"server_addr,omitempty" yaml:"server_addr"`
	RequestTimeout Duration  `json:"request_timeout,omitempty" yaml:"request_timeout"`
	SessionTTL     Duration  `json:"session_ttl,omitempty" yaml:"session_ttl"`
}

// LLMConfig 选择模型服务商及其凭据。
type LLMConfig struct {
	Provider string `json:"provider,omitempty" yaml:"provider"`
	Model    string `json:"model,omitempty" yaml:"model"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key"`
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url"`
}

// Settings converts to what the provider constructors take.
func (c LLMConfig) Settings() *generator.LLMSettings {
	return &generator.LLMSettings{
		Provider: c.Provider,
		Model:    c.Model,
		APIKey:   c.APIKey,
		BaseURL:  c.BaseURL,
	}
}

// environment holds the overlay. Empty values leave the file value alone.
type environment struct {
	Provider       string        `env:"LLM_PROVIDER"`
	Model          string        `env:"LLM_MODEL"`
	APIKey         string        `env:"LLM_API_KEY"`
	FallbackAPIKey string        `env:"API_KEY"`
	BaseURL        string        `env:"LLM_BASE_URL"`
	ServerAddr     string        `env:"SERVER_ADDR"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	SessionTTL     time.Duration `env:"SESSION_TTL"`
}

// LoadConfig reads path when it exists, applies the environment and fills defaults.
// A missing file is not an error; the environment alone may configure everything.
func LoadConfig(path string) (Config, error) {
	return load(path, env.ToMap(os.Environ()))
}

func load(path string, environ map[string]string) (Config, error) {
	var cfg Config

	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	var e environment
	if err := env.ParseWithOptions(&e, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	cfg.apply(e)
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %q: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("config: unmarshal %q: %w", path, err)
	}
	return nil
}

func (c *Config) apply(e environment) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&c.LLM.Provider, e.Provider)
	set(&c.LLM.Model, e.Model)
	set(&c.LLM.APIKey, e.FallbackAPIKey)
	set(&c.LLM.APIKey, e.APIKey)
	set(&c.LLM.BaseURL, e.BaseURL)
	set(&c.ServerAddr, e.ServerAddr)
	if e.RequestTimeout > 0 {
		c.RequestTimeout = Duration(e.RequestTimeout)
	}
	if e.SessionTTL > 0 {
		c.SessionTTL = Duration(e.SessionTTL)
	}
}

func (c *Config) setDefaults() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = generator.ProviderGemini
	}
	if c.ServerAddr == "" {
		c.ServerAddr = DefaultServerAddr
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = Duration(DefaultRequestTimeout)
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = Duration(DefaultSessionTTL)
	}
}

// Validate checks the provider name. A missing API key is allowed here and only
// fails when the provider is first called.
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case generator.ProviderOpenAI, generator.ProviderGemini, generator.ProviderMock:
		return nil
	case generator.ProviderDeepSeek:
		// DeepSeek 走 OpenAI 兼容接口，必须提供 base_url。
		if c.LLM.BaseURL == "" {
			return errors.New("config: llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return nil
	default:
		return fmt.Errorf("config: llm provider %q not supported", c.LLM.Provider)
	}
}

// Duration is a time.Duration written as "60s" or "24h" in config files.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string such as \"60s\": %w", err)
	}
	return d.parse(s)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	if strings.TrimSpace(s) == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
