package agent

import (
	"context"
	"strings"

	"github.com/scholarforge/scholarforge/pkg/agent/prompt"
	"github.com/scholarforge/scholarforge/pkg/models"
)

// MethodologyAgent designs the research methodology from the
// introduction's objectives and research questions.
type MethodologyAgent struct {
	llm     LLMClient
	prompts *prompt.Builder
}

// NewMethodologyAgent builds the agent.
func NewMethodologyAgent(llm LLMClient) *MethodologyAgent {
	return &MethodologyAgent{llm: llm, prompts: prompt.NewBuilder()}
}

// Kind implements Agent.
func (a *MethodologyAgent) Kind() models.TaskKind { return models.TaskMethodology }

// ValidateInput implements Agent.
func (a *MethodologyAgent) ValidateInput(in *Input) error {
	if err := validateRequest(in); err != nil {
		return err
	}
	return requireDeps(in, models.TaskIntroduction)
}

// Execute implements Agent.
func (a *MethodologyAgent) Execute(ctx context.Context, in *Input) (*models.AgentOutput, error) {
	intro, err := in.Dependency(models.TaskIntroduction)
	if err != nil {
		return nil, err
	}

	text, err := a.llm.Generate(ctx, &GenerateRequest{
		SystemPrompt: a.prompts.System(a.Kind()),
		Prompt:       a.prompts.MethodologyUser(in.Request, intro.Introduction),
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, Permanentf(nil, "llm returned empty methodology")
	}

	sections := mdSections(text)
	design := sectionOr(sections, "Research Design", strings.TrimSpace(text))

	procedures := mdBullets(sectionOr(sections, "Procedures", ""))
	if len(procedures) == 0 {
		procedures = mdSentences(design, 4)
	}

	ethics := sectionOr(sections, "Ethical Considerations", "")
	if ethics == "" {
		ethics = "The study follows institutional review requirements; informed consent and data protection procedures apply to all collected data."
	} else if items := mdBullets(ethics); len(items) > 0 {
		ethics = strings.Join(items, " ")
	}

	return &models.AgentOutput{
		Kind: models.TaskMethodology,
		Methodology: &models.MethodologyOutput{
			Content:               strings.TrimSpace(text),
			ResearchDesign:        design,
			Procedures:            procedures,
			EthicalConsiderations: ethics,
			Metadata: models.OutputMetadata{
				WordCount: models.CountWords(text),
				Counts:    map[string]int{"procedures": len(procedures)},
			},
		},
	}, nil
}
