package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/scholarforge/scholarforge/pkg/agent/prompt"
	"github.com/scholarforge/scholarforge/pkg/models"
)

// PaperSearch is the literature agent's view of the source connectors.
// Implemented by sources.Multiplexer.
type PaperSearch interface {
	SearchTopic(ctx context.Context, topic string, limit int) ([]models.Paper, error)
}

// DefaultSearchLimit bounds how many papers the literature agent
// retrieves per job.
const DefaultSearchLimit = 20

// LiteratureAgent retrieves papers from the configured sources and
// synthesizes the literature review. It is the graph's single root.
type LiteratureAgent struct {
	llm     LLMClient
	search  PaperSearch
	prompts *prompt.Builder
	limit   int
}

// NewLiteratureAgent builds the agent. limit <= 0 selects the default.
func NewLiteratureAgent(llm LLMClient, search PaperSearch, limit int) *LiteratureAgent {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return &LiteratureAgent{llm: llm, search: search, prompts: prompt.NewBuilder(), limit: limit}
}

// Kind implements Agent.
func (a *LiteratureAgent) Kind() models.TaskKind { return models.TaskLiterature }

// ValidateInput implements Agent.
func (a *LiteratureAgent) ValidateInput(in *Input) error {
	return validateRequest(in)
}

// Execute implements Agent.
func (a *LiteratureAgent) Execute(ctx context.Context, in *Input) (*models.AgentOutput, error) {
	// No configured sources is a valid deployment; the review is then
	// written from the request alone.
	var papers []models.Paper
	if a.search != nil {
		var err error
		papers, err = a.search.SearchTopic(ctx, in.Request.Topic, a.limit)
		if err != nil {
			return nil, err
		}
	}

	text, err := a.llm.Generate(ctx, &GenerateRequest{
		SystemPrompt: a.prompts.System(a.Kind()),
		Prompt:       a.prompts.LiteratureUser(in.Request, papers),
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, Permanentf(nil, "llm returned empty literature review")
	}

	sections := mdSections(text)
	content := sectionOr(sections, "Review", strings.TrimSpace(text))

	gaps := mdBullets(sectionOr(sections, "Research Gaps", ""))
	if len(gaps) == 0 {
		gaps = []string{fmt.Sprintf("Limited prior work directly addressing %q", in.Request.Topic)}
	}

	citations := make([]string, 0, len(papers))
	for i := range papers {
		citations = append(citations, inTextCitation(&papers[i]))
	}

	return &models.AgentOutput{
		Kind: models.TaskLiterature,
		Literature: &models.LiteratureOutput{
			Content:        content,
			PapersReviewed: len(papers),
			Papers:         papers,
			ResearchGaps:   gaps,
			Citations:      citations,
			Metadata: models.OutputMetadata{
				WordCount: models.CountWords(content),
				Counts:    map[string]int{"papers": len(papers), "gaps": len(gaps)},
			},
		},
	}, nil
}
