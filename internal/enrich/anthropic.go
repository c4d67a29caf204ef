package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	classifyTemperature = 0.1
	classifyMaxTokens   = 500
	locationTemperature = 0.2
	locationMaxTokens   = 2000
)

// AnthropicProvider runs enrichment against the Anthropic Messages API.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

func NewAnthropic(apiKey, model string) *AnthropicProvider {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicProvider{client: &client, model: model}
}

func (p *AnthropicProvider) Name() string         { return "anthropic" }
func (p *AnthropicProvider) ModelVersion() string { return p.model }

func (p *AnthropicProvider) Classify(ctx context.Context, in Input) (*Classification, error) {
	start := time.Now()
	raw, err := p.complete(ctx, classificationSystemPrompt, classificationUserPrompt(in),
		classifyTemperature, classifyMaxTokens)
	if err != nil {
		return nil, err
	}

	result, err := parseClassification(raw)
	if err != nil {
		return nil, err
	}
	result.ModelVersion = p.model
	result.ProcessingTime = time.Since(start)
	return result, nil
}

func (p *AnthropicProvider) ExtractLocations(ctx context.Context, in Input) (*Extraction, error) {
	start := time.Now()
	raw, err := p.complete(ctx, locationSystemPrompt, locationUserPrompt(in),
		locationTemperature, locationMaxTokens)
	if err != nil {
		return nil, err
	}

	result, err := parseExtraction(raw)
	if err != nil {
		return nil, err
	}
	result.ModelVersion = p.model
	result.ProcessingTime = time.Since(start)
	return result, nil
}

func (p *AnthropicProvider) complete(ctx context.Context, system, user string, temperature float64, maxTokens int64) (string, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("empty response from anthropic")
	}
	return resp.Content[0].Text, nil
}
