package openai

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/queryms/msconsole/internal/model"
	"github.com/queryms/msconsole/internal/model/contract"

	"github.com/sashabaranov/go-openai"
)

// Provider implements model.StreamProvider over the OpenAI chat completions
// API (or any compatible endpoint via baseURL).
type Provider struct {
	client *openai.Client
}

func New(apiKey, baseURL string) *Provider {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}

	return &Provider{client: openai.NewClientWithConfig(cfg)}
}

func (p *Provider) Name() string {
	return "openai"
}

func (p *Provider) CreateStream(ctx context.Context, req contract.CompletionRequest) (model.Stream, error) {
	var messages []openai.ChatCompletionMessage
	for _, m := range req.Messages {
		msg := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}

		if len(m.ToolCalls) > 0 {
			var tcs []openai.ToolCall
			for _, tc := range m.ToolCalls {
				tcs = append(tcs, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
			msg.ToolCalls = tcs
		}

		messages = append(messages, msg)
	}

	var tools []openai.Tool
	for _, t := range req.Tools {
		params := t.Parameters
		if params == nil {
			params = map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			}
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
		Tools:    tools,
	}
	if len(tools) > 0 {
		chatReq.ToolChoice = "auto"
	}

	s, err := p.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("openai stream request failed: %w", err)
	}

	return &stream{inner: s}, nil
}

func (p *Provider) Health(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai health check failed: %w", err)
	}
	return nil
}

// stream adapts the SDK's chat completion stream to the contract delta shape.
type stream struct {
	inner *openai.ChatCompletionStream
}

func (s *stream) Recv() (contract.StreamDelta, error) {
	resp, err := s.inner.Recv()
	if err != nil {
		// io.EOF passes through untouched as the end-of-stream marker.
		return contract.StreamDelta{}, err
	}
	if len(resp.Choices) == 0 {
		return contract.StreamDelta{}, nil
	}

	delta := resp.Choices[0].Delta
	out := contract.StreamDelta{Content: delta.Content}
	for _, tc := range delta.ToolCalls {
		idx := 0
		if tc.Index != nil {
			idx = *tc.Index
		}
		out.ToolCalls = append(out.ToolCalls, contract.ToolCallDelta{
			Index:     idx,
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return out, nil
}

func (s *stream) Close() error {
	return s.inner.Close()
}
