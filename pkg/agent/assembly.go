package agent

import (
	"context"
	"time"

	"github.com/scholarforge/scholarforge/pkg/models"
)

// AssemblyAgent builds the terminal Proposal from the formatting
// output. Job-level metadata (request ID, agents involved, partial
// success) is stamped by the workflow assembler, which sees the whole
// run. Deterministic: no LLM call.
type AssemblyAgent struct {
	now func() time.Time
}

// NewAssemblyAgent builds the agent.
func NewAssemblyAgent() *AssemblyAgent {
	return &AssemblyAgent{now: time.Now}
}

// Kind implements Agent.
func (a *AssemblyAgent) Kind() models.TaskKind { return models.TaskAssembly }

// ValidateInput implements Agent.
func (a *AssemblyAgent) ValidateInput(in *Input) error {
	if err := validateRequest(in); err != nil {
		return err
	}
	return requireDeps(in, models.TaskFormatting)
}

// Execute implements Agent.
func (a *AssemblyAgent) Execute(_ context.Context, in *Input) (*models.AgentOutput, error) {
	fmtOut, err := in.Dependency(models.TaskFormatting)
	if err != nil {
		return nil, err
	}
	f := fmtOut.Formatting

	total := 0
	for i := range f.Sections {
		total += f.Sections[i].TotalWords()
	}
	for i := range f.Appendices {
		total += f.Appendices[i].TotalWords()
	}

	return &models.AgentOutput{
		Kind: models.TaskAssembly,
		Assembly: &models.Proposal{
			RequestID: in.JobID,
			Metadata: models.ProposalMetadata{
				Topic:          in.Request.Topic,
				TotalWordCount: total,
			},
			Sections:    f.Sections,
			References:  f.References,
			Appendices:  f.Appendices,
			AssembledAt: a.now().UTC(),
		},
	}, nil
}
