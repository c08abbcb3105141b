// OpenAI Provider implementation using go-openai library.
//
// Information Hiding:
// - API endpoint and authentication
// - Request/response format for OpenAI Chat Completions API

package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider for OpenAI.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey, model string, maxTokens uint32, temperature float32) *OpenAIProvider {
	return &OpenAIProvider{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   int(maxTokens),
		temperature: temperature,
	}
}

func (p *OpenAIProvider) Name() string  { return "openai" }
func (p *OpenAIProvider) Model() string { return p.model }

// Chat sends one request and returns one response.
func (p *OpenAIProvider) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	maxTokens := p.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = int(req.MaxTokens)
	}
	temperature := p.temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}

	oaiReq := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    convertToOpenAIMessagesWithTools(req.Messages),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	if len(req.Tools) > 0 {
		oaiReq.Tools = convertToOpenAITools(req.Tools)
	}

	resp, err := p.client.CreateChatCompletion(ctx, oaiReq)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("openai chat completion failed: %w", err)
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
		switch choice.FinishReason {
		case openai.FinishReasonToolCalls:
			finish = FinishReasonToolCalls
		case openai.FinishReasonLength:
			finish = FinishReasonLength
		case openai.FinishReasonStop:
			finish = FinishReasonStop
		default:
			finish = FinishReasonOther
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

// convertToOpenAIMessagesWithTools maps the neutral transcript, including
// assistant tool-call messages and tool-result messages, to go-openai's
// ChatCompletionMessage shape.
func convertToOpenAIMessagesWithTools(messages []ChatMessage) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		oaiMsg := openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
		for _, tc := range msg.ToolCalls {
			oaiMsg.ToolCalls = append(oaiMsg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: string(tc.Arguments),
				},
			})
		}
		if msg.ToolCallID != "" {
			oaiMsg.ToolCallID = msg.ToolCallID
		}
		result[i] = oaiMsg
	}
	return result
}

// convertToOpenAITools converts tool definitions to OpenAI's function-tool format.
func convertToOpenAITools(tools []ToolDefinition) []openai.Tool {
	result := make([]openai.Tool, len(tools))
	for i, t := range tools {
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return result
}

var _ Provider = (*OpenAIProvider)(nil)
