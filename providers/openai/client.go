package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/Rehodra/AI-Youtube-Analyser/core/analysis"
)

const (
	// MaxRetries bounds retries on rate-limit errors
	MaxRetries = 3

	// BaseBackoff is the exponential backoff base
	BaseBackoff = 2 * time.Second

	// MaxBackoff caps the backoff wait
	MaxBackoff = 32 * time.Second
)

var (
	// ErrAPIKeyNotSet means no OPENAI_API_KEY was configured
	ErrAPIKeyNotSet = errors.New("OpenAI API key not set")

	// ErrMaxRetriesExceeded means rate limiting outlasted the retry budget
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// Client calls the OpenAI chat completions API. Retries are internal and only
// for rate limiting; every other fault surfaces to the caller, which owns the
// failure classification.
type Client struct {
	client openai.Client
}

// NewClient creates a new OpenAI inference client
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	return &Client{client: openai.NewClient(option.WithAPIKey(apiKey))}, nil
}

var _ analysis.InferenceClient = (*Client)(nil)

// Complete runs one chat completion and returns the raw content text
func (c *Client) Complete(ctx context.Context, req analysis.CompletionRequest) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * BaseBackoff
			if backoff > MaxBackoff {
				backoff = MaxBackoff
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		params := openai.ChatCompletionNewParams{
			Model: shared.ChatModel(req.Model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(req.Prompt),
			},
			Temperature: openai.Float(req.Temperature),
		}
		if req.JSONMode {
			params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{
					Type: "json_object",
				},
			}
		}

		completion, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = err
			if isRateLimitError(err) {
				continue
			}
			return "", fmt.Errorf("OpenAI API call failed: %w", err)
		}

		if len(completion.Choices) == 0 {
			return "", fmt.Errorf("no completion choices returned")
		}
		return completion.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, lastErr)
}

func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
