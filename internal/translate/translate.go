package translate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// interface for chunk translation, one remote call per Translate
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
	Close() error
}

// translation service provider
type Provider string

const (
	ProviderBedrock   Provider = "bedrock"
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGemini    Provider = "gemini"
)

const (
	DefaultMaxTokens = 2000
	DefaultTimeout   = 300 * time.Second
)

type Options struct {
	TargetLanguage string
	Model          string
	Region         string        // bedrock only
	BaseURL        string        // overrides the provider endpoint
	MaxTokens      int           // response token cap (default 2000)
	Temperature    float64       // sampling temperature
	Timeout        time.Duration // connect/read timeout (default 300s)
}

func (o Options) maxTokens() int {
	if o.MaxTokens > 0 {
		return o.MaxTokens
	}
	return DefaultMaxTokens
}

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return DefaultTimeout
}

// DefaultModel is the model used when Options.Model is empty.
func DefaultModel(provider Provider) string {
	switch provider {
	case ProviderBedrock:
		return "anthropic.claude-3-5-sonnet-20240620-v1:0"
	case ProviderAnthropic:
		return "claude-haiku-4-5"
	case ProviderOpenAI:
		return "gpt-5-mini"
	case ProviderGemini:
		return "gemini-2.5-flash"
	default:
		return ""
	}
}

// APIKeyEnv names the environment variable holding the provider's API key.
// Bedrock authenticates through the AWS credential chain and has none.
func APIKeyEnv(provider Provider) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// creates Translator based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Translator, error) {
	if opts.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}

	switch provider {
	case ProviderBedrock:
		return NewBedrockTranslator(ctx, opts)
	case ProviderAnthropic:
		return NewAnthropicTranslator(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranslator(ctx, apiKey, opts)
	case ProviderGemini:
		return NewGeminiTranslator(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}

var codeFenceRegex = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\\n(.*?)\\n?```$")

// strips a markdown fence wrapping the whole response, leaves anything else
// untouched
func cleanResponse(s string) string {
	trimmed := strings.TrimSpace(s)
	if m := codeFenceRegex.FindStringSubmatch(trimmed); m != nil {
		return m[1]
	}
	return s
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
