package coach

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

// AppName identifies coach sessions.
const AppName = "neuromirror"

type agentRunner interface {
	Run(ctx context.Context, userID, sessionID string, msg *genai.Content, cfg agent.RunConfig) iter.Seq2[*session.Event, error]
}

// Chat runs single coach conversations over an in-process session store.
type Chat struct {
	runner         agentRunner
	sessionService session.Service
}

// NewChat wraps a coach agent in a runner with in-memory sessions.
func NewChat(a agent.Agent) (*Chat, error) {
	if a == nil {
		return nil, fmt.Errorf("agent is required")
	}
	sessionService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        AppName,
		Agent:          a,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create coach runner: %w", err)
	}
	return &Chat{runner: r, sessionService: sessionService}, nil
}

// Ask sends message in the user's session and returns the final reply text.
// The session is created on first use so follow-up questions keep context.
func (c *Chat) Ask(ctx context.Context, userID, sessionID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("message cannot be empty")
	}
	if userID == "" {
		userID = "anonymous"
	}
	if sessionID == "" {
		sessionID = userID
	}
	if err := c.ensureSession(ctx, userID, sessionID); err != nil {
		return "", err
	}

	events := c.runner.Run(ctx, userID, sessionID, genai.NewContentFromText(message, genai.RoleUser), agent.RunConfig{
		StreamingMode: agent.StreamingModeNone,
	})

	var last string
	for event, err := range events {
		if err != nil {
			return "", fmt.Errorf("failed to run coach: %w", err)
		}
		if event == nil || event.Content == nil || event.Author == "user" {
			continue
		}
		if text := strings.TrimSpace(contentText(event.Content)); text != "" {
			last = text
		}
		if event.IsFinalResponse() && last != "" {
			break
		}
	}
	if last == "" {
		return "", fmt.Errorf("empty coach response")
	}
	return last, nil
}

func (c *Chat) ensureSession(ctx context.Context, userID, sessionID string) error {
	if _, err := c.sessionService.Get(ctx, &session.GetRequest{
		AppName:   AppName,
		UserID:    userID,
		SessionID: sessionID,
	}); err == nil {
		return nil
	}
	if _, err := c.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   AppName,
		UserID:    userID,
		SessionID: sessionID,
	}); err != nil {
		return fmt.Errorf("failed to create coach session: %w", err)
	}
	return nil
}
