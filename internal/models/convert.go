package models

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/openai/openai-go/v3"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// buildParams converts an ADK request into chat completion parameters.
func buildParams(req *model.LLMRequest, fallbackModel string) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{Model: req.Model}
	if params.Model == "" {
		params.Model = fallbackModel
	}

	var messages []openai.ChatCompletionMessageParamUnion
	cfg := req.Config
	if cfg != nil {
		if system := strings.TrimSpace(contentText(cfg.SystemInstruction)); system != "" {
			messages = append(messages, openai.SystemMessage(system))
		}
	}
	messages = append(messages, toMessages(req.Contents)...)
	params.Messages = messages

	if cfg == nil {
		return params
	}
	if cfg.Temperature != nil {
		params.Temperature = openai.Float(float64(*cfg.Temperature))
	}
	if cfg.TopP != nil {
		params.TopP = openai.Float(float64(*cfg.TopP))
	}
	if cfg.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(cfg.MaxOutputTokens))
	}
	if cfg.ResponseMIMEType == "application/json" {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}
	if tools := toTools(cfg.Tools); len(tools) > 0 {
		params.Tools = tools
	}
	return params
}

// toMessages maps genai contents onto chat messages. Function calls become
// assistant tool calls and function responses become tool messages.
func toMessages(contents []*genai.Content) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	for _, content := range contents {
		if content == nil {
			continue
		}

		var calls []openai.ChatCompletionMessageToolCallUnionParam
		var responded bool
		for _, part := range content.Parts {
			if part == nil {
				continue
			}
			if fc := part.FunctionCall; fc != nil {
				args, err := json.Marshal(fc.Args)
				if err != nil {
					slog.Error("failed to marshal function call args", "name", fc.Name, "error", err.Error())
					args = []byte("{}")
				}
				calls = append(calls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: fc.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      fc.Name,
							Arguments: string(args),
						},
					},
				})
			}
			if fr := part.FunctionResponse; fr != nil && fr.ID != "" {
				responded = true
				payload, err := json.Marshal(fr.Response)
				if err != nil {
					slog.Error("failed to marshal function response", "name", fr.Name, "error", err.Error())
					continue
				}
				messages = append(messages, openai.ToolMessage(string(payload), fr.ID))
			}
		}
		if responded {
			continue
		}

		text := contentText(content)
		switch {
		case len(calls) > 0:
			assistant := openai.ChatCompletionAssistantMessageParam{ToolCalls: calls}
			if text != "" {
				assistant.Content.OfString = openai.String(text)
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		case content.Role == genai.RoleModel:
			messages = append(messages, openai.AssistantMessage(text))
		case content.Role == "system":
			messages = append(messages, openai.SystemMessage(text))
		default:
			messages = append(messages, openai.UserMessage(text))
		}
	}
	return messages
}

func toTools(tools []*genai.Tool) []openai.ChatCompletionToolUnionParam {
	var out []openai.ChatCompletionToolUnionParam
	for _, t := range tools {
		if t == nil {
			continue
		}
		for _, fn := range t.FunctionDeclarations {
			if fn == nil {
				continue
			}
			def := openai.FunctionDefinitionParam{
				Name:       fn.Name,
				Parameters: toParameters(fn.ParametersJsonSchema),
			}
			if fn.Description != "" {
				def.Description = openai.String(fn.Description)
			}
			out = append(out, openai.ChatCompletionToolUnionParam{
				OfFunction: &openai.ChatCompletionFunctionToolParam{Function: def},
			})
		}
	}
	return out
}

// toParameters renders a tool parameter schema as a plain JSON object.
func toParameters(schema any) openai.FunctionParameters {
	switch s := schema.(type) {
	case nil:
		return openai.FunctionParameters{"type": "object", "properties": map[string]any{}}
	case map[string]any:
		return openai.FunctionParameters(s)
	case *jsonschema.Schema:
		raw, err := json.Marshal(s)
		if err != nil {
			slog.Error("failed to marshal tool schema", "error", err.Error())
			return nil
		}
		var params map[string]any
		if err := json.Unmarshal(raw, &params); err != nil {
			slog.Error("failed to decode tool schema", "error", err.Error())
			return nil
		}
		if _, ok := params["type"]; !ok {
			params["type"] = "object"
		}
		return openai.FunctionParameters(params)
	default:
		slog.Warn("unsupported tool schema type", "type", schema)
		return nil
	}
}

func contentText(content *genai.Content) string {
	if content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func decodeArgs(raw string) map[string]any {
	args := make(map[string]any)
	if strings.TrimSpace(raw) == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		slog.Error("failed to parse function arguments", "error", err.Error(), "json", raw)
		return make(map[string]any)
	}
	return args
}
