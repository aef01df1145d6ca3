// Package coach turns emotion estimates into short, actionable advice using an
// LLM, and exposes the estimator to conversational agents as tools.
package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/easeaico/neuromirror/internal/emotion"
)

// Advice sources.
const (
	SourceModel    = "model"
	SourceFallback = "fallback"
)

const maxSteps = 4

// Advice is the coach's answer for one estimate.
type Advice struct {
	Summary string   `json:"summary"`
	Steps   []string `json:"steps"`
	Source  string   `json:"source"`
}

// adviceOutput is the shape the model must return.
type adviceOutput struct {
	Summary string   `json:"summary" jsonschema:"one or two sentences reflecting the user's current state"`
	Steps   []string `json:"steps" jsonschema:"short concrete actions the user can take now"`
}

const adviceInstruction = `You are NeuroMirror, a calm wellbeing coach.
You receive an arousal/valence estimate computed from heart rate and skin temperature.
Write a short reflection of the user's state and up to four concrete actions
(breathing patterns, posture, hydration, short breaks).
Never give medical diagnoses.
Return only a JSON object: {"summary": string, "steps": [string]}.`

// Coach asks an LLM for advice and falls back to the static recommendation
// when the model is unavailable or misbehaves.
type Coach struct {
	model  model.LLM
	schema *jsonschema.Resolved
}

// New returns a Coach. llm may be nil, in which case Advise always falls back.
func New(llm model.LLM) (*Coach, error) {
	schema, err := adviceSchema()
	if err != nil {
		return nil, err
	}
	return &Coach{model: llm, schema: schema}, nil
}

func adviceSchema() (*jsonschema.Resolved, error) {
	schema, err := jsonschema.For[adviceOutput](nil)
	if err != nil {
		return nil, fmt.Errorf("failed to infer advice schema: %w", err)
	}
	schema.Properties["summary"].MinLength = jsonschema.Ptr(1)
	steps := schema.Properties["steps"]
	steps.MinItems = jsonschema.Ptr(1)
	steps.MaxItems = jsonschema.Ptr(maxSteps)
	steps.Items.MinLength = jsonschema.Ptr(1)

	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve advice schema: %w", err)
	}
	return resolved, nil
}

// Advise returns advice for estimate. It never fails: any model problem
// yields the fallback advice built from the estimate itself.
func (c *Coach) Advise(ctx context.Context, estimate emotion.EmotionEstimate) Advice {
	if c == nil || c.model == nil {
		return Fallback(estimate)
	}

	req := &model.LLMRequest{
		Contents: []*genai.Content{
			genai.NewContentFromText(describeEstimate(estimate), genai.RoleUser),
		},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(adviceInstruction, genai.RoleUser),
			ResponseMIMEType:  "application/json",
		},
	}

	var resp *model.LLMResponse
	var err error
	for r, e := range c.model.GenerateContent(ctx, req, false) {
		resp, err = r, e
		if e != nil || (r != nil && !r.Partial) {
			break
		}
	}
	if err != nil {
		slog.Warn("coach model failed, using fallback", "model", c.model.Name(), "error", err.Error())
		return Fallback(estimate)
	}

	advice, err := c.parse(responseText(resp))
	if err != nil {
		slog.Warn("coach returned invalid advice, using fallback", "model", c.model.Name(), "error", err.Error())
		return Fallback(estimate)
	}
	return advice
}

// parse extracts the JSON object from raw model text and validates it.
func (c *Coach) parse(raw string) (Advice, error) {
	clean := strings.TrimSpace(raw)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start < 0 || end <= start {
		return Advice{}, fmt.Errorf("no json object in response")
	}
	clean = clean[start : end+1]

	var instance map[string]any
	if err := json.Unmarshal([]byte(clean), &instance); err != nil {
		return Advice{}, fmt.Errorf("failed to parse advice json: %w", err)
	}
	if err := c.schema.Validate(instance); err != nil {
		return Advice{}, fmt.Errorf("advice does not match schema: %w", err)
	}

	var out adviceOutput
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return Advice{}, fmt.Errorf("failed to decode advice: %w", err)
	}
	steps := make([]string, 0, len(out.Steps))
	for _, step := range out.Steps {
		if step = strings.TrimSpace(step); step != "" {
			steps = append(steps, step)
		}
	}
	return Advice{
		Summary: strings.TrimSpace(out.Summary),
		Steps:   steps,
		Source:  SourceModel,
	}, nil
}

// Fallback builds advice from the estimate's own recommendation.
func Fallback(estimate emotion.EmotionEstimate) Advice {
	advice := Advice{
		Summary: fmt.Sprintf("You seem to be in a %s state.", strings.ToLower(string(estimate.Label))),
		Source:  SourceFallback,
	}
	if estimate.Label == emotion.EmotionUnknown {
		advice.Summary = "Your state could not be determined from this reading."
	}
	if estimate.Recommendation != "" {
		advice.Steps = []string{estimate.Recommendation}
	}
	return advice
}

func describeEstimate(estimate emotion.EmotionEstimate) string {
	return fmt.Sprintf("arousal=%s valence=%s label=%s color=%s default_recommendation=%q",
		emotion.FormatScore(estimate.Arousal),
		emotion.FormatScore(estimate.Valence),
		estimate.Label,
		estimate.Color,
		estimate.Recommendation)
}

func responseText(resp *model.LLMResponse) string {
	if resp == nil {
		return ""
	}
	return contentText(resp.Content)
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
