package agent

import (
	"context"
	"sort"

	"github.com/scholarforge/scholarforge/pkg/models"
)

const citationGuide = "References follow APA style (7th edition). In-text citations use " +
	"author-date form; entries are ordered alphabetically by first author surname."

// ReferencesAgent formats the reviewed papers as an APA reference list.
// Deterministic: no LLM call.
type ReferencesAgent struct{}

// NewReferencesAgent builds the agent.
func NewReferencesAgent() *ReferencesAgent { return &ReferencesAgent{} }

// Kind implements Agent.
func (a *ReferencesAgent) Kind() models.TaskKind { return models.TaskReferences }

// ValidateInput implements Agent.
func (a *ReferencesAgent) ValidateInput(in *Input) error {
	if err := validateRequest(in); err != nil {
		return err
	}
	return requireDeps(in, models.TaskLiterature)
}

// Execute implements Agent.
func (a *ReferencesAgent) Execute(_ context.Context, in *Input) (*models.AgentOutput, error) {
	lit, err := in.Dependency(models.TaskLiterature)
	if err != nil {
		return nil, err
	}

	papers := lit.Literature.Papers
	refs := make([]models.Reference, 0, len(papers))
	for i := range papers {
		refs = append(refs, formatAPA(&papers[i]))
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Formatted < refs[j].Formatted })

	return &models.AgentOutput{
		Kind: models.TaskReferences,
		References: &models.ReferencesOutput{
			References:      refs,
			CitationGuide:   citationGuide,
			TotalReferences: len(refs),
			CitationStyle:   "APA",
		},
	}, nil
}
