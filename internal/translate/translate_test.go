package translate

import (
	"context"
	"os"
	"strings"
	"testing"
)

func TestFactoryReturnsGeminiTranslator(t *testing.T) {
	ctx := context.Background()
	opts := Options{TargetLanguage: "Hebrew"}
	translator, err := Factory(ctx, ProviderGemini, "fake-key", opts)
	if err != nil {
		t.Fatalf("Factory(ProviderGemini) returned error: %v", err)
	}
	if _, ok := translator.(*GeminiTranslator); !ok {
		t.Errorf("expected *GeminiTranslator, got %T", translator)
	}
}

func TestFactoryReturnsOpenAITranslator(t *testing.T) {
	ctx := context.Background()
	opts := Options{TargetLanguage: "Hebrew"}
	translator, err := Factory(ctx, ProviderOpenAI, "fake-key", opts)
	if err != nil {
		t.Fatalf("Factory(ProviderOpenAI) returned error: %v", err)
	}
	if _, ok := translator.(*OpenAITranslator); !ok {
		t.Errorf("expected *OpenAITranslator, got %T", translator)
	}
}

func TestFactoryReturnsAnthropicTranslator(t *testing.T) {
	ctx := context.Background()
	opts := Options{TargetLanguage: "Hebrew"}
	translator, err := Factory(ctx, ProviderAnthropic, "fake-key", opts)
	if err != nil {
		t.Fatalf("Factory(ProviderAnthropic) returned error: %v", err)
	}
	at, ok := translator.(*AnthropicTranslator)
	if !ok {
		t.Fatalf("expected *AnthropicTranslator, got %T", translator)
	}
	if string(at.model) != DefaultModel(ProviderAnthropic) {
		t.Errorf("model = %q, want default %q", at.model, DefaultModel(ProviderAnthropic))
	}
}

func TestFactoryReturnsBedrockTranslator(t *testing.T) {
	setFakeAWSEnv(t)

	ctx := context.Background()
	opts := Options{TargetLanguage: "Hebrew"}
	translator, err := Factory(ctx, ProviderBedrock, "", opts)
	if err != nil {
		t.Fatalf("Factory(ProviderBedrock) returned error: %v", err)
	}
	bt, ok := translator.(*BedrockTranslator)
	if !ok {
		t.Fatalf("expected *BedrockTranslator, got %T", translator)
	}
	if bt.model != "anthropic.claude-3-5-sonnet-20240620-v1:0" {
		t.Errorf("model = %q, want claude 3.5 sonnet", bt.model)
	}
}

func TestFactoryRequiresTargetLanguage(t *testing.T) {
	ctx := context.Background()
	opts := Options{} // no TargetLanguage
	_, err := Factory(ctx, ProviderGemini, "fake-key", opts)
	if err == nil {
		t.Error("expected error for missing target language")
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	ctx := context.Background()
	opts := Options{TargetLanguage: "Hebrew"}
	_, err := Factory(ctx, Provider("unknown"), "fake-key", opts)
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	ctx := context.Background()
	opts := Options{TargetLanguage: "Hebrew"}
	for _, p := range []Provider{ProviderAnthropic, ProviderOpenAI, ProviderGemini} {
		if _, err := Factory(ctx, p, "", opts); err == nil {
			t.Errorf("%s: expected error for missing API key", p)
		}
	}
}

func TestAPIKeyEnv(t *testing.T) {
	tests := []struct {
		provider Provider
		want     string
	}{
		{ProviderBedrock, ""},
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderGemini, "GEMINI_API_KEY"},
	}
	for _, tt := range tests {
		if got := APIKeyEnv(tt.provider); got != tt.want {
			t.Errorf("APIKeyEnv(%s) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text untouched",
			input: "1\n00:00:01,000 --> 00:00:02,000\nשלום",
			want:  "1\n00:00:01,000 --> 00:00:02,000\nשלום",
		},
		{
			name:  "fenced with language",
			input: "```srt\n1\n00:00:01,000 --> 00:00:02,000\nשלום\n```",
			want:  "1\n00:00:01,000 --> 00:00:02,000\nשלום",
		},
		{
			name:  "bare fence with surrounding whitespace",
			input: "\n```\nשלום\n```\n",
			want:  "שלום",
		},
		{
			name:  "inline backticks kept",
			input: "use `code` here",
			want:  "use `code` here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanResponse(tt.input); got != tt.want {
				t.Errorf("cleanResponse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("short", 10); got != "short" {
		t.Errorf("truncateString kept = %q", got)
	}
	if got := truncateString(strings.Repeat("x", 20), 5); got != "xxxxx..." {
		t.Errorf("truncateString cut = %q", got)
	}
}

func setFakeAWSEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_SESSION_TOKEN", "")
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	t.Setenv("AWS_CONFIG_FILE", os.DevNull)
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", os.DevNull)
}

// Integration test: only runs if AWS credentials are set
func TestBedrockTranslatorIntegration(t *testing.T) {
	if os.Getenv("AWS_ACCESS_KEY_ID") == "" || os.Getenv("SRTBATCH_INTEGRATION") == "" {
		t.Skip("AWS credentials or SRTBATCH_INTEGRATION not set; skipping integration test")
	}

	ctx := context.Background()
	translator, err := NewBedrockTranslator(ctx, Options{
		TargetLanguage: "Hebrew",
		Temperature:    0.7,
	})
	if err != nil {
		t.Fatalf("NewBedrockTranslator error: %v", err)
	}

	out, err := translator.Translate(ctx, "1\n00:00:01,000 --> 00:00:02,000\nHello")
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if !strings.Contains(out, "00:00:01,000 --> 00:00:02,000") {
		t.Errorf("timestamp not preserved: %q", out)
	}
}
