package agent

import (
	"context"
	"sort"
	"strings"

	"github.com/scholarforge/scholarforge/pkg/agent/prompt"
	"github.com/scholarforge/scholarforge/pkg/models"
)

// FrontMatterAgent writes the abstract, keywords, and acknowledgements,
// and indexes the figures produced by the visualization agent.
type FrontMatterAgent struct {
	llm     LLMClient
	prompts *prompt.Builder
}

// NewFrontMatterAgent builds the agent.
func NewFrontMatterAgent(llm LLMClient) *FrontMatterAgent {
	return &FrontMatterAgent{llm: llm, prompts: prompt.NewBuilder()}
}

// Kind implements Agent.
func (a *FrontMatterAgent) Kind() models.TaskKind { return models.TaskFrontMatter }

// ValidateInput implements Agent.
func (a *FrontMatterAgent) ValidateInput(in *Input) error {
	if err := validateRequest(in); err != nil {
		return err
	}
	return requireDeps(in,
		models.TaskIntroduction, models.TaskLiterature,
		models.TaskMethodology, models.TaskVisualization)
}

// Execute implements Agent.
func (a *FrontMatterAgent) Execute(ctx context.Context, in *Input) (*models.AgentOutput, error) {
	intro, err := in.Dependency(models.TaskIntroduction)
	if err != nil {
		return nil, err
	}
	if _, err := in.Dependency(models.TaskLiterature); err != nil {
		return nil, err
	}
	meth, err := in.Dependency(models.TaskMethodology)
	if err != nil {
		return nil, err
	}
	viz, err := in.Dependency(models.TaskVisualization)
	if err != nil {
		return nil, err
	}

	text, err := a.llm.Generate(ctx, &GenerateRequest{
		SystemPrompt: a.prompts.System(a.Kind()),
		Prompt:       a.prompts.FrontMatterUser(in.Request, intro.Introduction, meth.Methodology),
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, Permanentf(nil, "llm returned empty front matter")
	}

	sections := mdSections(text)

	abstract := sectionOr(sections, "Abstract", "")
	if abstract == "" {
		abstract = truncateWords(strings.TrimSpace(text), 250)
	}

	keywords := mdBullets(sectionOr(sections, "Keywords", ""))
	if len(keywords) == 0 {
		keywords = fallbackKeywords(in.Request)
	}

	figures := make([]string, 0, len(viz.Visualization.Diagrams))
	for _, d := range viz.Visualization.Diagrams {
		figures = append(figures, d.Title)
	}
	sort.Strings(figures)

	return &models.AgentOutput{
		Kind: models.TaskFrontMatter,
		FrontMatter: &models.FrontMatterOutput{
			Abstract: models.AbstractBlock{
				Text:      abstract,
				WordCount: models.CountWords(abstract),
			},
			Keywords:         keywords,
			Acknowledgements: sectionOr(sections, "Acknowledgements", ""),
			ListOfFigures:    figures,
			ListOfTables:     []string{},
			Metadata: models.OutputMetadata{
				WordCount: models.CountWords(abstract),
				Counts:    map[string]int{"keywords": len(keywords), "figures": len(figures)},
			},
		},
	}, nil
}

// fallbackKeywords derives keywords from the topic and key points.
func fallbackKeywords(req *models.ProposalRequest) []string {
	seen := map[string]bool{}
	var keywords []string
	add := func(s string) {
		for _, word := range strings.Fields(strings.ToLower(s)) {
			word = strings.Trim(word, ".,;:()\"'")
			if len(word) < 5 || seen[word] || len(keywords) >= 8 {
				continue
			}
			seen[word] = true
			keywords = append(keywords, word)
		}
	}
	add(req.Topic)
	for _, kp := range req.KeyPoints {
		add(kp)
	}
	if len(keywords) == 0 {
		keywords = []string{"research"}
	}
	return keywords
}

// truncateWords bounds s to max words.
func truncateWords(s string, max int) string {
	words := strings.Fields(s)
	if len(words) <= max {
		return s
	}
	return strings.Join(words[:max], " ")
}
