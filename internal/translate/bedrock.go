package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	"github.com/tidwall/gjson"
)

const bedrockAnthropicVersion = "bedrock-2023-05-31"

// implements Translator using Anthropic models hosted on AWS Bedrock
type BedrockTranslator struct {
	client  *bedrockruntime.Client
	model   string
	options Options
}

type bedrockMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type bedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	Temperature      float64          `json:"temperature"`
	Messages         []bedrockMessage `json:"messages"`
}

// Credentials come from the default AWS chain (AWS_ACCESS_KEY_ID /
// AWS_SECRET_ACCESS_KEY, shared config, instance roles).
func NewBedrockTranslator(
	ctx context.Context,
	opts Options,
) (*BedrockTranslator, error) {
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	timeout := opts.timeout()
	httpClient := awshttp.NewBuildableClient().
		WithTimeout(timeout).
		WithDialerOptions(func(d *net.Dialer) {
			d.Timeout = timeout
		}).
		WithTransportOptions(func(tr *http.Transport) {
			tr.ResponseHeaderTimeout = timeout
		})

	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(region),
		config.WithHTTPClient(httpClient),
		config.WithRetryMaxAttempts(1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := bedrockruntime.NewFromConfig(cfg, func(o *bedrockruntime.Options) {
		if opts.BaseURL != "" {
			o.BaseEndpoint = aws.String(opts.BaseURL)
		}
	})

	model := opts.Model
	if model == "" {
		model = DefaultModel(ProviderBedrock)
	}

	return &BedrockTranslator{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *BedrockTranslator) Translate(
	ctx context.Context,
	text string,
) (string, error) {
	body, err := json.Marshal(bedrockRequest{
		AnthropicVersion: bedrockAnthropicVersion,
		MaxTokens:        t.options.maxTokens(),
		Temperature:      t.options.Temperature,
		Messages: []bedrockMessage{
			{Role: "user", Content: BuildPrompt(t.options.TargetLanguage, text)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	out, err := t.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(t.model),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return "", bedrockError(t.model, err)
	}

	return parseBedrockResponse(out.Body)
}

// joins the text of every content block in a Messages API response body
func parseBedrockResponse(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf(
			"malformed response body: %s",
			truncateString(string(body), 200),
		)
	}

	content := gjson.GetBytes(body, "content")
	if !content.IsArray() || len(content.Array()) == 0 {
		return "", fmt.Errorf(
			"'content' key not found in response body: %s",
			truncateString(string(body), 200),
		)
	}

	var sb strings.Builder
	content.ForEach(func(_, block gjson.Result) bool {
		sb.WriteString(block.Get("text").String())
		return true
	})

	if sb.Len() == 0 {
		return "", ErrEmptyTranslation
	}
	return cleanResponse(sb.String()), nil
}

func bedrockError(model string, err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("can't invoke %q: %w", model, err)
	}

	svcErr := &ServiceError{
		Provider: ProviderBedrock,
		Code:     apiErr.ErrorCode(),
		Message:  apiErr.ErrorMessage(),
		Err:      err,
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		svcErr.StatusCode = respErr.HTTPStatusCode()
	}
	return svcErr
}

func (t *BedrockTranslator) Close() error {
	return nil
}
