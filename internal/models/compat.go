// Package models adapts chat completion providers to the ADK model.LLM interface.
package models

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sort"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// chatModel talks to any OpenAI-compatible chat completions endpoint.
type chatModel struct {
	client   *openai.Client
	name     string
	provider string
}

// pendingCall accumulates a streamed tool call.
type pendingCall struct {
	id   string
	name string
	args strings.Builder
}

func newChatModel(provider, baseURL, apiKey, modelName string) (*chatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if strings.TrimSpace(modelName) == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	opts = append(opts, option.WithHeader("User-Agent", "neuromirror/"+provider))
	client := openai.NewClient(opts...)

	return &chatModel{
		client:   &client,
		name:     modelName,
		provider: provider,
	}, nil
}

func (m *chatModel) Name() string {
	return m.name
}

func (m *chatModel) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	ensureUserTurn(req)
	params := buildParams(req, m.name)

	if stream {
		return m.stream(ctx, params)
	}
	return func(yield func(*model.LLMResponse, error) bool) {
		yield(m.complete(ctx, params))
	}
}

func (m *chatModel) complete(ctx context.Context, params openai.ChatCompletionNewParams) (*model.LLMResponse, error) {
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		slog.Error("failed to call chat completions", "provider", m.provider, "error", err.Error())
		return nil, fmt.Errorf("failed to call %s API: %w", m.provider, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return &model.LLMResponse{TurnComplete: true}, nil
	}

	message := resp.Choices[0].Message
	content := &genai.Content{Role: genai.RoleModel}
	if text := strings.TrimSpace(message.Content); text != "" {
		content.Parts = append(content.Parts, genai.NewPartFromText(text))
	}
	for _, call := range message.ToolCalls {
		if call.Type != "function" || call.ID == "" || call.Function.Name == "" {
			continue
		}
		content.Parts = append(content.Parts, &genai.Part{
			FunctionCall: &genai.FunctionCall{
				ID:   call.ID,
				Name: call.Function.Name,
				Args: decodeArgs(call.Function.Arguments),
			},
		})
	}

	return &model.LLMResponse{Content: content, TurnComplete: true}, nil
}

func (m *chatModel) stream(ctx context.Context, params openai.ChatCompletionNewParams) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		stream := m.client.Chat.Completions.NewStreaming(ctx, params)
		defer func() {
			if err := stream.Close(); err != nil {
				slog.Error("failed to close stream", "provider", m.provider, "error", err.Error())
			}
		}()

		calls := make(map[int64]*pendingCall)
		var text strings.Builder
		finished := false

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			choice := chunk.Choices[0]

			if delta := choice.Delta.Content; delta != "" {
				text.WriteString(delta)
				partial := &model.LLMResponse{
					Content: genai.NewContentFromText(delta, genai.RoleModel),
					Partial: true,
				}
				if !yield(partial, nil) {
					return
				}
			}

			for _, tc := range choice.Delta.ToolCalls {
				call, ok := calls[tc.Index]
				if !ok {
					call = &pendingCall{}
					calls[tc.Index] = call
				}
				if tc.ID != "" {
					call.id = tc.ID
				}
				if tc.Function.Name != "" {
					call.name = tc.Function.Name
				}
				call.args.WriteString(tc.Function.Arguments)
			}

			if choice.FinishReason != "" && !finished {
				finished = true
				if !yield(finalResponse(text.String(), calls), nil) {
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				yield(nil, fmt.Errorf("context cancelled: %w", err))
				return
			}
			slog.Error("failed to stream chat completions", "provider", m.provider, "error", err.Error())
			yield(nil, fmt.Errorf("stream error: %w", err))
			return
		}
		if !finished {
			yield(finalResponse(text.String(), calls), nil)
		}
	}
}

// finalResponse builds the turn-complete response from streamed text and tool calls.
func finalResponse(text string, calls map[int64]*pendingCall) *model.LLMResponse {
	content := &genai.Content{Role: genai.RoleModel}
	if len(calls) == 0 {
		if text = strings.TrimSpace(text); text != "" {
			content.Parts = append(content.Parts, genai.NewPartFromText(text))
		}
		return &model.LLMResponse{Content: content, TurnComplete: true}
	}

	indices := make([]int64, 0, len(calls))
	for idx := range calls {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	for _, idx := range indices {
		call := calls[idx]
		content.Parts = append(content.Parts, &genai.Part{
			FunctionCall: &genai.FunctionCall{
				ID:   call.id,
				Name: call.name,
				Args: decodeArgs(call.args.String()),
			},
		})
	}
	return &model.LLMResponse{Content: content, TurnComplete: true}
}

// ensureUserTurn makes sure the conversation ends with a user message, which
// chat completion endpoints expect.
func ensureUserTurn(req *model.LLMRequest) {
	if len(req.Contents) == 0 {
		req.Contents = append(req.Contents, genai.NewContentFromText("Follow the system instruction.", genai.RoleUser))
		return
	}
	last := req.Contents[len(req.Contents)-1]
	if last == nil || last.Role == genai.RoleUser {
		return
	}
	for _, part := range last.Parts {
		if part != nil && part.FunctionResponse != nil {
			return
		}
	}
	req.Contents = append(req.Contents, genai.NewContentFromText("Continue.", genai.RoleUser))
}
