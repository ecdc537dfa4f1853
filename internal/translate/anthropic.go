package translate

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// implements Translator using the Anthropic Messages API directly
type AnthropicTranslator struct {
	client  anthropic.Client
	model   anthropic.Model
	options Options
}

func NewAnthropicTranslator(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*AnthropicTranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(opts.timeout()),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := anthropic.NewClient(reqOpts...)

	model := anthropic.Model(opts.Model)
	if opts.Model == "" {
		model = anthropic.Model(DefaultModel(ProviderAnthropic))
	}

	return &AnthropicTranslator{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *AnthropicTranslator) Translate(
	ctx context.Context,
	text string,
) (string, error) {
	prompt := BuildPrompt(t.options.TargetLanguage, text)

	message, err := t.client.Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:       t.model,
			MaxTokens:   int64(t.options.maxTokens()),
			Temperature: anthropic.Float(t.options.Temperature),
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewTextBlock(prompt),
				),
			},
		},
	)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &ServiceError{
				Provider:   ProviderAnthropic,
				StatusCode: apiErr.StatusCode,
				Message:    truncateString(apiErr.RawJSON(), 200),
				Err:        err,
			}
		}
		return "", fmt.Errorf("translation failed: %w", err)
	}

	return t.parseResponse(message)
}

func (t *AnthropicTranslator) parseResponse(
	message *anthropic.Message,
) (string, error) {
	if message == nil || len(message.Content) == 0 {
		return "", fmt.Errorf("empty response from Anthropic")
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	if responseText == "" {
		return "", ErrEmptyTranslation
	}

	return cleanResponse(responseText), nil
}

func (t *AnthropicTranslator) Close() error {
	return nil
}
