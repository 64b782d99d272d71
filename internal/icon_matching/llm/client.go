// Package llm adapts OpenAI chat completions to the extraction,
// classification and rewriting contracts of the icon pipeline.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/iconsmith/iconsmith-backend/internal/logger"
	"github.com/iconsmith/iconsmith-backend/internal/metrics"
)

const (
	DefaultTimeout = 90 * time.Second
	serviceName    = "openai"
)

var errEmptyCompletion = errors.New("completion has no content")

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	VisionModel string
	Temperature float64
	MaxTokens   int
	HTTPClient  *http.Client
}

// Client is safe for concurrent use. Calls are never retried.
type Client struct {
	api         openai.Client
	model       string
	visionModel string
	temperature float64
	maxTokens   int
}

func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(hc),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}
	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = cfg.Model
	}
	return &Client{
		api:         openai.NewClient(opts...),
		model:       cfg.Model,
		visionModel: visionModel,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// completion asks model for a JSON object matching schema and decodes it
// into out.
func (c *Client) completion(ctx context.Context, op, model string, messages []openai.ChatCompletionMessageParamUnion, schema map[string]any, out any) error {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Float(c.temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   op,
					Schema: schema,
					Strict: openai.Bool(true),
				},
			},
		},
	}
	if c.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(c.maxTokens))
	}

	start := time.Now()
	err := c.decode(ctx, params, out)
	metrics.ObserveExternal(serviceName, start, err)
	if err != nil {
		logger.FromContext(ctx).Error("llm call failed", "op", op, "model", model, "error", err)
	}
	return err
}

func (c *Client) decode(ctx context.Context, params openai.ChatCompletionNewParams, out any) error {
	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return errEmptyCompletion
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), out); err != nil {
		return fmt.Errorf("decode completion: %w", err)
	}
	return nil
}

// object builds a strict JSON schema with string properties.
func object(props map[string]any) map[string]any {
	required := make([]string, 0, len(props))
	for k := range props {
		required = append(required, k)
	}
	sort.Strings(required)
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func str(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func enum(values []string, description string) map[string]any {
	return map[string]any{"type": "string", "enum": values, "description": description}
}
