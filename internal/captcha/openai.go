// Package captcha reads portal captcha images with a vision model.
package captcha

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"merek-automation/internal/components/telemetry"
	"merek-automation/internal/config"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const prompt = "Extract and return only the text shown in this image."

var tracer = telemetry.Tracer("captcha")

var ErrNoApiKey = errors.New("captcha: no openai api key configured")

// OpenAIRecognizer asks a chat completion model to read the captcha. It makes a
// single request per image, failures are not retried.
type OpenAIRecognizer struct {
	client openai.Client
	model  string
}

func NewOpenAIRecognizer(cfg config.CaptchaConfig) (OpenAIRecognizer, error) {
	if cfg.ApiKey == "" {
		return OpenAIRecognizer{}, ErrNoApiKey
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.ApiKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseUrl != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseUrl))
	}

	model := cfg.Model
	if model == "" {
		model = string(openai.ChatModelGPT4o)
	}

	return OpenAIRecognizer{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Recognize returns the text shown in `image`, a data uri
// (data:image/png;base64,...).
func (r OpenAIRecognizer) Recognize(ctx context.Context, image string) (string, error) {
	ctx, span := tracer.Start(ctx, "Recognize")
	defer span.End()
	span.SetAttributes(attribute.String("captcha.model", r.model))

	res, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(r.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: image,
				}),
			}),
		},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat completion failed")
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(res.Choices) == 0 {
		span.SetStatus(codes.Error, "no choices")
		return "", fmt.Errorf("chat completion: model returned no choices")
	}

	return strings.TrimSpace(res.Choices[0].Message.Content), nil
}
