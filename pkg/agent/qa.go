package agent

import (
	"context"
	"strconv"
	"strings"

	"github.com/scholarforge/scholarforge/pkg/agent/prompt"
	"github.com/scholarforge/scholarforge/pkg/models"
)

// qaCriteria are the scored review dimensions.
var qaCriteria = []string{"coherence", "completeness", "rigor", "writing"}

// QAAgent reviews the draft sections and scores them. Its output is
// advisory: consumed by formatting and assembly, never fed back to the
// writing agents.
type QAAgent struct {
	llm     LLMClient
	prompts *prompt.Builder
}

// NewQAAgent builds the agent.
func NewQAAgent(llm LLMClient) *QAAgent {
	return &QAAgent{llm: llm, prompts: prompt.NewBuilder()}
}

// Kind implements Agent.
func (a *QAAgent) Kind() models.TaskKind { return models.TaskQA }

// ValidateInput implements Agent.
func (a *QAAgent) ValidateInput(in *Input) error {
	if err := validateRequest(in); err != nil {
		return err
	}
	return requireDeps(in,
		models.TaskIntroduction, models.TaskLiterature,
		models.TaskMethodology, models.TaskRisk)
}

// Execute implements Agent.
func (a *QAAgent) Execute(ctx context.Context, in *Input) (*models.AgentOutput, error) {
	intro, err := in.Dependency(models.TaskIntroduction)
	if err != nil {
		return nil, err
	}
	lit, err := in.Dependency(models.TaskLiterature)
	if err != nil {
		return nil, err
	}
	meth, err := in.Dependency(models.TaskMethodology)
	if err != nil {
		return nil, err
	}
	risk, err := in.Dependency(models.TaskRisk)
	if err != nil {
		return nil, err
	}

	drafts := map[string]string{
		"Introduction":      intro.Introduction.Content,
		"Literature Review": lit.Literature.Content,
		"Methodology":       meth.Methodology.Content,
		"Risk Assessment":   risk.Risk.Content,
	}

	text, err := a.llm.Generate(ctx, &GenerateRequest{
		SystemPrompt: a.prompts.System(a.Kind()),
		Prompt:       a.prompts.QAUser(in.Request, drafts),
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, Permanentf(nil, "llm returned empty review")
	}

	sections := mdSections(text)
	report := sectionOr(sections, "Review Report", strings.TrimSpace(text))

	scores := parseScores(mdBullets(sectionOr(sections, "Scores", "")))
	if len(scores) == 0 {
		scores = heuristicScores(drafts)
	}

	feedback := mdBullets(sectionOr(sections, "Feedback", ""))
	if len(feedback) == 0 {
		feedback = mdSentences(report, 3)
	}

	return &models.AgentOutput{
		Kind: models.TaskQA,
		QA: &models.QAOutput{
			ReviewReport:    report,
			QualityScores:   scores,
			Feedback:        feedback,
			FinalValidation: finalValidation(scores),
			Metadata: models.OutputMetadata{
				WordCount: models.CountWords(report),
				Counts:    map[string]int{"feedback": len(feedback)},
			},
		},
	}, nil
}

// parseScores parses "criterion | score" bullets, keeping only known
// criteria with scores in [0, 10].
func parseScores(bullets []string) map[string]float64 {
	scores := map[string]float64{}
	for _, line := range bullets {
		parts := strings.SplitN(line, "|", 2)
		if len(parts) != 2 {
			continue
		}
		criterion := strings.ToLower(strings.TrimSpace(parts[0]))
		fields := strings.Fields(parts[1])
		if len(fields) == 0 {
			continue
		}
		value, err := strconv.ParseFloat(fields[0], 64)
		if err != nil || value < 0 || value > 10 {
			continue
		}
		for _, known := range qaCriteria {
			if criterion == known {
				scores[criterion] = value
			}
		}
	}
	return scores
}

// heuristicScores derives coarse scores from draft presence and length
// when the model returned no usable score bullets.
func heuristicScores(drafts map[string]string) map[string]float64 {
	var present, substantial int
	for _, draft := range drafts {
		if strings.TrimSpace(draft) != "" {
			present++
		}
		if models.CountWords(draft) >= 50 {
			substantial++
		}
	}
	completeness := 10 * float64(present) / float64(len(drafts))
	depth := 5 + 5*float64(substantial)/float64(len(drafts))
	return map[string]float64{
		"coherence":    depth,
		"completeness": completeness,
		"rigor":        depth,
		"writing":      depth,
	}
}

// finalValidation summarizes the scores: every criterion at 6 or above
// passes.
func finalValidation(scores map[string]float64) string {
	for _, criterion := range qaCriteria {
		if score, ok := scores[criterion]; ok && score < 6 {
			return "needs_revision"
		}
	}
	return "approved"
}
