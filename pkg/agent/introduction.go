package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/scholarforge/scholarforge/pkg/agent/prompt"
	"github.com/scholarforge/scholarforge/pkg/models"
)

// IntroductionAgent writes the proposal's introduction from the topic
// and the literature review.
type IntroductionAgent struct {
	llm     LLMClient
	prompts *prompt.Builder
}

// NewIntroductionAgent builds the agent.
func NewIntroductionAgent(llm LLMClient) *IntroductionAgent {
	return &IntroductionAgent{llm: llm, prompts: prompt.NewBuilder()}
}

// Kind implements Agent.
func (a *IntroductionAgent) Kind() models.TaskKind { return models.TaskIntroduction }

// ValidateInput implements Agent.
func (a *IntroductionAgent) ValidateInput(in *Input) error {
	if err := validateRequest(in); err != nil {
		return err
	}
	return requireDeps(in, models.TaskLiterature)
}

// Execute implements Agent.
func (a *IntroductionAgent) Execute(ctx context.Context, in *Input) (*models.AgentOutput, error) {
	lit, err := in.Dependency(models.TaskLiterature)
	if err != nil {
		return nil, err
	}

	text, err := a.llm.Generate(ctx, &GenerateRequest{
		SystemPrompt: a.prompts.System(a.Kind()),
		Prompt:       a.prompts.IntroductionUser(in.Request, lit.Literature),
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, Permanentf(nil, "llm returned empty introduction")
	}

	sections := mdSections(text)
	problem := sectionOr(sections, "Problem Statement", strings.TrimSpace(text))

	objectives := mdBullets(sectionOr(sections, "Objectives", ""))
	if len(objectives) == 0 {
		objectives = fallbackObjectives(in.Request)
	}
	questions := mdBullets(sectionOr(sections, "Research Questions", ""))
	if len(questions) == 0 {
		questions = make([]string, 0, len(objectives))
		for _, obj := range objectives {
			questions = append(questions, fmt.Sprintf("How can the project %s?",
				strings.TrimSuffix(lowerFirst(obj), ".")))
		}
	}

	return &models.AgentOutput{
		Kind: models.TaskIntroduction,
		Introduction: &models.IntroductionOutput{
			Content:           strings.TrimSpace(text),
			ProblemStatement:  problem,
			Objectives:        objectives,
			ResearchQuestions: questions,
			Metadata: models.OutputMetadata{
				WordCount: models.CountWords(text),
				Counts:    map[string]int{"objectives": len(objectives), "questions": len(questions)},
			},
		},
	}, nil
}

// fallbackObjectives derives objectives from the request when the model
// returned prose without the requested structure.
func fallbackObjectives(req *models.ProposalRequest) []string {
	if len(req.KeyPoints) > 0 {
		objectives := make([]string, 0, len(req.KeyPoints))
		for _, kp := range req.KeyPoints {
			objectives = append(objectives, "Investigate "+strings.TrimSuffix(kp, "."))
		}
		return objectives
	}
	return []string{"Investigate " + strings.TrimSuffix(req.Topic, ".")}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToLower(string(r[0])) + string(r[1:])
}
