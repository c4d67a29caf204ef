package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider runs enrichment against the OpenAI chat completions API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAI(apiKey, model string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: &client, model: model}
}

func (p *OpenAIProvider) Name() string         { return "openai" }
func (p *OpenAIProvider) ModelVersion() string { return p.model }

func (p *OpenAIProvider) Classify(ctx context.Context, in Input) (*Classification, error) {
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

func (p *OpenAIProvider) ExtractLocations(ctx context.Context, in Input) (*Extraction, error) {
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

func (p *OpenAIProvider) complete(ctx context.Context, system, user string, temperature float64, maxTokens int64) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from openai")
	}
	return resp.Choices[0].Message.Content, nil
}
