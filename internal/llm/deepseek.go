// DeepSeek Provider implementation using go-openai library.
//
// Information Hiding:
// - Uses OpenAI-compatible API with a different base URL
// - Supports deepseek-chat and deepseek-reasoner models

package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const deepseekBaseURL = "https://api.deepseek.com/v1"

// DeepSeekProvider implements Provider for DeepSeek, reusing OpenAI's
// message/tool conversion since the DeepSeek API is OpenAI-compatible.
type DeepSeekProvider struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewDeepSeekProvider creates a new DeepSeek provider.
func NewDeepSeekProvider(apiKey, model string, maxTokens uint32, temperature float32) *DeepSeekProvider {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = deepseekBaseURL

	return &DeepSeekProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		maxTokens:   int(maxTokens),
		temperature: temperature,
	}
}

func (p *DeepSeekProvider) Name() string  { return "deepseek" }
func (p *DeepSeekProvider) Model() string { return p.model }

// Chat sends one request and returns one response.
func (p *DeepSeekProvider) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	maxTokens := p.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = int(req.MaxTokens)
	}
	temperature := p.temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}

	oaiReq := openai.ChatCompletionRequest{
		Model:               p.model,
		Messages:            convertToOpenAIMessagesWithTools(req.Messages),
		MaxCompletionTokens: maxTokens,
		Temperature:         temperature,
	}
	if len(req.Tools) > 0 {
		oaiReq.Tools = convertToOpenAITools(req.Tools)
	}

	resp, err := p.client.CreateChatCompletion(ctx, oaiReq)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("deepseek chat completion failed: %w", err)
	}

	content := ""
	var toolCalls []ToolCall
	finish := FinishReasonStop
	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		content = choice.Message.Content
		for _, tc := range choice.Message.ToolCalls {
			toolCalls = append(toolCalls, ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: []byte(tc.Function.Arguments),
			})
		}
		if choice.FinishReason == openai.FinishReasonLength {
			finish = FinishReasonLength
		}
	}
	if len(toolCalls) > 0 {
		finish = FinishReasonToolCalls
	}

	usage := &TokenUsage{
		PromptTokens:     uint32(resp.Usage.PromptTokens),
		CompletionTokens: uint32(resp.Usage.CompletionTokens),
		TotalTokens:      uint32(resp.Usage.TotalTokens),
	}

	return ChatResponse{AssistantText: content, ToolInvocations: toolCalls, Usage: usage, FinishReason: finish}, nil
}

var _ Provider = (*DeepSeekProvider)(nil)
