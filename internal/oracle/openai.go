package oracle

import (
	"context"
	"encoding/json"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Defaults for the OpenAI-compatible backend
const (
	DefaultOpenAIBaseURL = "https://openrouter.ai/api/v1"
	DefaultOpenAIModel   = "qwen/qwq-32b:free"
)

// reasoningFields are the non-standard message fields reasoning models use
var reasoningFields = []string{"reasoning", "reasoning_content"}

// OpenAI talks to any OpenAI-compatible chat completions endpoint
type OpenAI struct {
	client    openai.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	retry     RetryConfig
}

// NewOpenAI creates an OpenAI-compatible oracle. Empty model and base URL
// select the OpenRouter defaults.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenAIBaseURL
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &OpenAI{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		retry:     cfg.Retry,
	}, nil
}

func (o *OpenAI) Name() string { return ProviderOpenAI }

func (o *OpenAI) Correct(ctx context.Context, req Request) Correction {
	return correct(ctx, o.Name(), o.timeout, o.retry, o.complete, req)
}

func (o *OpenAI) complete(ctx context.Context, system, user string) (reply, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	}
	if o.maxTokens > 0 {
		params.MaxTokens = openai.Int(o.maxTokens)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return reply{}, err
	}
	if len(resp.Choices) == 0 {
		return reply{}, ErrNoChoices
	}

	msg := resp.Choices[0].Message
	return reply{
		Content:   msg.Content,
		Reasoning: reasoningOf(msg),
	}, nil
}

// reasoningOf extracts the first string-valued reasoning field from msg
func reasoningOf(msg openai.ChatCompletionMessage) string {
	for _, name := range reasoningFields {
		field, ok := msg.JSON.ExtraFields[name]
		if !ok {
			continue
		}
		var text string
		if err := json.Unmarshal([]byte(field.Raw()), &text); err == nil && text != "" {
			return text
		}
	}
	return ""
}
