package models

import (
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

func TestBuildParamsSystemInstructionAndModel(t *testing.T) {
	temp := float32(0.2)
	req := &model.LLMRequest{
		Contents: []*genai.Content{genai.NewContentFromText("HR 110, temp 32.5", genai.RoleUser)},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText("You are a calm coach.", genai.RoleUser),
			Temperature:       &temp,
			MaxOutputTokens:   256,
			ResponseMIMEType:  "application/json",
		},
	}

	params := buildParams(req, "grok-4-fast")
	if params.Model != "grok-4-fast" {
		t.Fatalf("expected fallback model, got %s", params.Model)
	}
	if len(params.Messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(params.Messages))
	}
	if params.Messages[0].OfSystem == nil || params.Messages[0].OfSystem.Content.OfString.Value != "You are a calm coach." {
		t.Fatalf("expected system message first, got %+v", params.Messages[0])
	}
	if params.Messages[1].OfUser == nil {
		t.Fatalf("expected user message second")
	}
	if !params.Temperature.Valid() || !params.MaxTokens.Valid() || params.MaxTokens.Value != 256 {
		t.Fatalf("expected sampling options to be copied")
	}
	if params.ResponseFormat.OfJSONObject == nil {
		t.Fatalf("expected json object response format")
	}
}

func TestToMessagesToolRoundTrip(t *testing.T) {
	contents := []*genai.Content{
		genai.NewContentFromText("how am I doing?", genai.RoleUser),
		{
			Role: genai.RoleModel,
			Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{
				ID:   "call_1",
				Name: "estimate_emotion",
				Args: map[string]any{"heart_rate": 100.0},
			}}},
		},
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{{FunctionResponse: &genai.FunctionResponse{
				ID:       "call_1",
				Name:     "estimate_emotion",
				Response: map[string]any{"label": "Stress"},
			}}},
		},
	}

	messages := toMessages(contents)
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	assistant := messages[1].OfAssistant
	if assistant == nil || len(assistant.ToolCalls) != 1 {
		t.Fatalf("expected assistant tool call, got %+v", messages[1])
	}
	call := assistant.ToolCalls[0].OfFunction
	if call.ID != "call_1" || call.Function.Name != "estimate_emotion" || call.Function.Arguments != `{"heart_rate":100}` {
		t.Fatalf("unexpected tool call: %+v", call)
	}
	tool := messages[2].OfTool
	if tool == nil || tool.ToolCallID != "call_1" {
		t.Fatalf("expected tool message, got %+v", messages[2])
	}
}

func TestToToolsUsesJSONSchema(t *testing.T) {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"heart_rate": {Type: "number", Description: "beats per minute"},
		},
		Required: []string{"heart_rate"},
	}
	tools := toTools([]*genai.Tool{{FunctionDeclarations: []*genai.FunctionDeclaration{{
		Name:                 "estimate_emotion",
		Description:          "Estimate arousal and valence.",
		ParametersJsonSchema: schema,
	}}}})

	if len(tools) != 1 || tools[0].OfFunction == nil {
		t.Fatalf("expected one function tool, got %+v", tools)
	}
	fn := tools[0].OfFunction.Function
	if fn.Name != "estimate_emotion" || fn.Description.Value != "Estimate arousal and valence." {
		t.Fatalf("unexpected function: %+v", fn)
	}
	props, ok := fn.Parameters["properties"].(map[string]any)
	if !ok || props["heart_rate"] == nil {
		t.Fatalf("expected heart_rate property, got %v", fn.Parameters)
	}
	if fn.Parameters["type"] != "object" {
		t.Fatalf("expected object type, got %v", fn.Parameters["type"])
	}
}

func TestEnsureUserTurn(t *testing.T) {
	req := &model.LLMRequest{}
	ensureUserTurn(req)
	if len(req.Contents) != 1 || req.Contents[0].Role != genai.RoleUser {
		t.Fatalf("expected a user turn to be added, got %+v", req.Contents)
	}

	req = &model.LLMRequest{Contents: []*genai.Content{genai.NewContentFromText("ok", genai.RoleModel)}}
	ensureUserTurn(req)
	if len(req.Contents) != 2 {
		t.Fatalf("expected a user turn after a model turn")
	}

	req = &model.LLMRequest{Contents: []*genai.Content{{
		Role:  genai.RoleModel,
		Parts: []*genai.Part{{FunctionResponse: &genai.FunctionResponse{ID: "x", Name: "suggest_tip"}}},
	}}}
	ensureUserTurn(req)
	if len(req.Contents) != 1 {
		t.Fatalf("expected function responses to end the turn as is")
	}
}

func TestFinalResponseOrdersToolCalls(t *testing.T) {
	calls := map[int64]*pendingCall{
		1: {id: "b", name: "suggest_tip"},
		0: {id: "a", name: "estimate_emotion"},
	}
	calls[0].args.WriteString(`{"heart_rate":`)
	calls[0].args.WriteString(`90}`)

	resp := finalResponse("ignored", calls)
	if !resp.TurnComplete || len(resp.Content.Parts) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	first := resp.Content.Parts[0].FunctionCall
	if first.ID != "a" || first.Args["heart_rate"] != 90.0 {
		t.Fatalf("expected first call by index, got %+v", first)
	}

	text := finalResponse("  hello ", nil)
	if len(text.Content.Parts) != 1 || text.Content.Parts[0].Text != "hello" {
		t.Fatalf("expected trimmed text, got %+v", text.Content)
	}
}

func TestDecodeArgsInvalid(t *testing.T) {
	if got := decodeArgs("{not json"); len(got) != 0 {
		t.Fatalf("expected empty args, got %v", got)
	}
}
