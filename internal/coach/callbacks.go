package coach

import (
	"log/slog"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// WrapBeforeCallback adds logging and panic recovery around a before-agent callback.
func WrapBeforeCallback(name string, cb agent.BeforeAgentCallback) agent.BeforeAgentCallback {
	return func(ctx agent.CallbackContext) (content *genai.Content, err error) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("before callback panic", "name", name, "error", r)
				content, err = nil, nil
			}
		}()

		content, err = cb(ctx)
		if err != nil {
			slog.Error("before callback error", "name", name, "error", err.Error())
			return content, err
		}
		slog.Debug("before callback done", "name", name, "has_content", content != nil)
		return content, nil
	}
}

// WrapAfterModelCallback adds logging and panic recovery around an after-model callback.
func WrapAfterModelCallback(name string, cb llmagent.AfterModelCallback) llmagent.AfterModelCallback {
	return func(ctx agent.CallbackContext, resp *model.LLMResponse, respErr error) (out *model.LLMResponse, err error) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("after model callback panic", "name", name, "error", r)
				out, err = nil, nil
			}
		}()

		out, err = cb(ctx, resp, respErr)
		if err != nil {
			slog.Error("after model callback error", "name", name, "error", err.Error())
		}
		return out, err
	}
}

// logTurn records who is talking to the coach.
func logTurn(ctx agent.CallbackContext) (*genai.Content, error) {
	slog.Info("coach turn",
		"user_id", ctx.UserID(),
		"session_id", ctx.SessionID(),
		"chars", len(contentText(ctx.UserContent())))
	return nil, nil
}

// logToolCalls records the tools the model asked for. It never rewrites the response.
func logToolCalls(ctx agent.CallbackContext, resp *model.LLMResponse, respErr error) (*model.LLMResponse, error) {
	if respErr != nil {
		slog.Warn("coach model error", "session_id", ctx.SessionID(), "error", respErr.Error())
		return nil, nil
	}
	if resp == nil || resp.Content == nil || resp.Partial {
		return nil, nil
	}
	for _, part := range resp.Content.Parts {
		if part != nil && part.FunctionCall != nil {
			slog.Info("coach tool call", "session_id", ctx.SessionID(), "tool", part.FunctionCall.Name)
		}
	}
	return nil, nil
}
