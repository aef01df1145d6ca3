package coach

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"github.com/easeaico/neuromirror/internal/emotion"
	"github.com/easeaico/neuromirror/internal/tips"
)

type estimateArgs struct {
	UserID          string  `json:"user_id,omitempty" jsonschema:"user whose stored baseline should be used"`
	HeartRate       float64 `json:"heart_rate" jsonschema:"current heart rate in beats per minute"`
	SkinTemperature float64 `json:"skin_temperature" jsonschema:"current skin temperature in degrees Celsius"`
}

type expressionArgs struct {
	Expression string  `json:"expression" jsonschema:"detected facial expression, empty when no face was found"`
	Confidence float64 `json:"confidence" jsonschema:"detector confidence between 0 and 1"`
}

type tipArgs struct {
	Query string `json:"query,omitempty" jsonschema:"what the user needs help with; empty for a random tip"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of tips to return"`
}

type tipResult struct {
	Tips []tips.Match `json:"tips"`
}

// Toolbox holds the services the coach tools call into.
type Toolbox struct {
	Emotions *emotion.Service
	Tips     *tips.Service
}

func (b Toolbox) estimate(ctx context.Context, args estimateArgs) (emotion.EmotionEstimate, error) {
	reading := emotion.Reading{HeartRate: args.HeartRate, SkinTemperature: args.SkinTemperature}
	if b.Emotions == nil {
		return emotion.Estimate(reading, emotion.DefaultBaseline())
	}
	return b.Emotions.EstimateForUser(ctx, args.UserID, reading)
}

func (b Toolbox) readExpression(args expressionArgs) emotion.ExpressionReading {
	expr := strings.TrimSpace(args.Expression)
	if expr == "" {
		return emotion.NoFace()
	}
	return emotion.ReadExpression(emotion.Expression(expr), args.Confidence)
}

func (b Toolbox) suggestTips(ctx context.Context, args tipArgs) (tipResult, error) {
	if b.Tips == nil {
		return tipResult{}, fmt.Errorf("tip library not configured")
	}
	if strings.TrimSpace(args.Query) == "" {
		return tipResult{Tips: []tips.Match{{Tip: b.Tips.Random(), Score: 1}}}, nil
	}
	matches, err := b.Tips.Search(ctx, args.Query, args.Limit)
	if err != nil {
		return tipResult{}, err
	}
	return tipResult{Tips: matches}, nil
}

// Tools returns the function tools exposed to the coach agent.
func (b Toolbox) Tools() ([]tool.Tool, error) {
	estimateTool, err := functiontool.New(functiontool.Config{
		Name:        "estimate_emotion",
		Description: "Estimates arousal, valence and an emotion label from heart rate and skin temperature.",
	}, func(ctx tool.Context, args estimateArgs) (emotion.EmotionEstimate, error) {
		return b.estimate(ctx, args)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create estimate_emotion tool: %w", err)
	}

	expressionTool, err := functiontool.New(functiontool.Config{
		Name:        "read_expression",
		Description: "Maps a detected facial expression to a traffic-light level and a recommendation.",
	}, func(ctx tool.Context, args expressionArgs) (emotion.ExpressionReading, error) {
		return b.readExpression(args), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create read_expression tool: %w", err)
	}

	tipTool, err := functiontool.New(functiontool.Config{
		Name:        "suggest_tip",
		Description: "Finds calming tips from the tip library that match the user's need.",
	}, func(ctx tool.Context, args tipArgs) (tipResult, error) {
		return b.suggestTips(ctx, args)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create suggest_tip tool: %w", err)
	}

	return []tool.Tool{estimateTool, expressionTool, tipTool}, nil
}
