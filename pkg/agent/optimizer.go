package agent

import (
	"context"
	"strings"

	"github.com/scholarforge/scholarforge/pkg/agent/prompt"
	"github.com/scholarforge/scholarforge/pkg/models"
)

// OptimizerAgent produces the execution plan: timeline, resource plan,
// and recommendations. Its output reaches no downstream task, so its
// failure degrades the proposal rather than failing the job.
type OptimizerAgent struct {
	llm     LLMClient
	prompts *prompt.Builder
}

// NewOptimizerAgent builds the agent.
func NewOptimizerAgent(llm LLMClient) *OptimizerAgent {
	return &OptimizerAgent{llm: llm, prompts: prompt.NewBuilder()}
}

// Kind implements Agent.
func (a *OptimizerAgent) Kind() models.TaskKind { return models.TaskOptimizer }

// ValidateInput implements Agent.
func (a *OptimizerAgent) ValidateInput(in *Input) error {
	if err := validateRequest(in); err != nil {
		return err
	}
	return requireDeps(in, models.TaskMethodology, models.TaskIntroduction)
}

// Execute implements Agent.
func (a *OptimizerAgent) Execute(ctx context.Context, in *Input) (*models.AgentOutput, error) {
	intro, err := in.Dependency(models.TaskIntroduction)
	if err != nil {
		return nil, err
	}
	meth, err := in.Dependency(models.TaskMethodology)
	if err != nil {
		return nil, err
	}

	text, err := a.llm.Generate(ctx, &GenerateRequest{
		SystemPrompt: a.prompts.System(a.Kind()),
		Prompt:       a.prompts.OptimizerUser(in.Request, intro.Introduction, meth.Methodology),
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, Permanentf(nil, "llm returned empty plan")
	}

	sections := mdSections(text)

	timeline := parseTimeline(mdBullets(sectionOr(sections, "Timeline", "")))
	if len(timeline) == 0 {
		timeline = fallbackTimeline(meth.Methodology.Procedures)
	}

	resourcePlan := sectionOr(sections, "Resource Plan", strings.TrimSpace(text))

	recommendations := mdBullets(sectionOr(sections, "Recommendations", ""))
	if len(recommendations) == 0 {
		recommendations = mdSentences(text, 3)
	}

	return &models.AgentOutput{
		Kind: models.TaskOptimizer,
		Optimizer: &models.OptimizerOutput{
			Recommendations: recommendations,
			Timeline:        timeline,
			ResourcePlan:    resourcePlan,
			Metadata: models.OutputMetadata{
				WordCount: models.CountWords(text),
				Counts:    map[string]int{"phases": len(timeline), "recommendations": len(recommendations)},
			},
		},
	}, nil
}

// parseTimeline parses "phase | duration | milestone" bullets.
func parseTimeline(bullets []string) []models.TimelinePhase {
	phases := make([]models.TimelinePhase, 0, len(bullets))
	for _, line := range bullets {
		parts := strings.Split(line, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) < 2 || parts[0] == "" {
			continue
		}
		phase := models.TimelinePhase{Phase: parts[0], Duration: parts[1]}
		if len(parts) > 2 {
			phase.Activities = parts[2:]
		}
		phases = append(phases, phase)
	}
	return phases
}

// fallbackTimeline distributes the methodology's procedures over three
// canonical phases.
func fallbackTimeline(procedures []string) []models.TimelinePhase {
	prep := models.TimelinePhase{Phase: "Preparation", Duration: "3 months",
		Activities: []string{"Finalize instruments and obtain approvals"}}
	exec := models.TimelinePhase{Phase: "Execution", Duration: "6 months", Activities: procedures}
	if len(exec.Activities) == 0 {
		exec.Activities = []string{"Data collection and analysis"}
	}
	wrap := models.TimelinePhase{Phase: "Analysis and write-up", Duration: "3 months",
		Activities: []string{"Synthesize findings and draft publications"}}
	return []models.TimelinePhase{prep, exec, wrap}
}
