package agent

import (
	"context"
	"strings"

	"github.com/scholarforge/scholarforge/pkg/agent/prompt"
	"github.com/scholarforge/scholarforge/pkg/models"
)

// RiskAgent assesses risks to the proposed research based on the
// methodology.
type RiskAgent struct {
	llm     LLMClient
	prompts *prompt.Builder
}

// NewRiskAgent builds the agent.
func NewRiskAgent(llm LLMClient) *RiskAgent {
	return &RiskAgent{llm: llm, prompts: prompt.NewBuilder()}
}

// Kind implements Agent.
func (a *RiskAgent) Kind() models.TaskKind { return models.TaskRisk }

// ValidateInput implements Agent.
func (a *RiskAgent) ValidateInput(in *Input) error {
	if err := validateRequest(in); err != nil {
		return err
	}
	return requireDeps(in, models.TaskMethodology)
}

// Execute implements Agent.
func (a *RiskAgent) Execute(ctx context.Context, in *Input) (*models.AgentOutput, error) {
	meth, err := in.Dependency(models.TaskMethodology)
	if err != nil {
		return nil, err
	}

	text, err := a.llm.Generate(ctx, &GenerateRequest{
		SystemPrompt: a.prompts.System(a.Kind()),
		Prompt:       a.prompts.RiskUser(in.Request, meth.Methodology),
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, Permanentf(nil, "llm returned empty risk assessment")
	}

	sections := mdSections(text)

	risks := parseRiskItems(mdBullets(sectionOr(sections, "Risks", "")))
	if len(risks) == 0 {
		risks = fallbackRisks(text)
	}

	plans := mdBullets(sectionOr(sections, "Contingency Plans", ""))
	if len(plans) == 0 {
		plans = []string{"Re-scope procedures and timeline if a high-impact risk materializes."}
	}

	return &models.AgentOutput{
		Kind: models.TaskRisk,
		Risk: &models.RiskOutput{
			Content:          strings.TrimSpace(text),
			Risks:            risks,
			ContingencyPlans: plans,
			Metadata: models.OutputMetadata{
				WordCount: models.CountWords(text),
				Counts:    map[string]int{"risks": len(risks), "plans": len(plans)},
			},
		},
	}, nil
}

// parseRiskItems parses "name | likelihood | impact | mitigation"
// bullets. Bullets that do not fit the shape are kept as medium/medium
// risks with the whole line as name.
func parseRiskItems(bullets []string) []models.RiskItem {
	risks := make([]models.RiskItem, 0, len(bullets))
	for _, line := range bullets {
		parts := strings.Split(line, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		switch {
		case len(parts) >= 4:
			risks = append(risks, models.RiskItem{
				Name:       parts[0],
				Likelihood: normalizeRating(parts[1]),
				Impact:     normalizeRating(parts[2]),
				Mitigation: strings.Join(parts[3:], "; "),
			})
		case parts[0] != "":
			risks = append(risks, models.RiskItem{
				Name:       parts[0],
				Likelihood: "medium",
				Impact:     "medium",
			})
		}
	}
	return risks
}

func normalizeRating(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "medium", "high":
		return strings.ToLower(strings.TrimSpace(s))
	}
	return "medium"
}

// fallbackRisks builds a minimal register when the model returned prose
// without the requested bullet shape.
func fallbackRisks(text string) []models.RiskItem {
	sentences := mdSentences(text, 2)
	mitigation := ""
	if len(sentences) > 1 {
		mitigation = sentences[1]
	}
	return []models.RiskItem{{
		Name:       "Execution risk",
		Likelihood: "medium",
		Impact:     "medium",
		Mitigation: mitigation,
	}}
}
