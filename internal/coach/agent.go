package coach

import (
	"fmt"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
)

// AgentName is the name the coach agent registers under.
const AgentName = "neuromirror_coach"

const agentInstruction = `You are NeuroMirror, a calm wellbeing coach for people watching their own biosignals.
Use the tools instead of guessing:
- estimate_emotion when the user shares a heart rate and a skin temperature;
- read_expression when the user reports a facial expression;
- suggest_tip when the user asks for something to try.
Keep answers short and concrete. Never give medical diagnoses.`

// NewAgent builds the conversational coach agent backed by llm.
func NewAgent(llm model.LLM, box Toolbox) (agent.Agent, error) {
	if llm == nil {
		return nil, fmt.Errorf("llm model is required")
	}

	tools, err := box.Tools()
	if err != nil {
		return nil, err
	}

	llmAgent, err := llmagent.New(llmagent.Config{
		Name:        AgentName,
		Description: "Coach that reads biosignal estimates and suggests calming actions.",
		Model:       llm,
		Instruction: agentInstruction,
		Tools:       tools,
		BeforeAgentCallbacks: []agent.BeforeAgentCallback{
			WrapBeforeCallback("log_turn", logTurn),
		},
		AfterModelCallbacks: []llmagent.AfterModelCallback{
			WrapAfterModelCallback("log_tool_calls", logToolCalls),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create coach agent: %w", err)
	}
	return llmAgent, nil
}
