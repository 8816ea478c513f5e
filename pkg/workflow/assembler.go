package workflow

import (
	"time"

	"github.com/scholarforge/scholarforge/pkg/agent"
	"github.com/scholarforge/scholarforge/pkg/models"
)

// FinalizeProposal stamps job-level metadata onto the assembled
// proposal: request ID, the agents actually involved, the partial
// success flag, and the advisory quality validation. Pure over the
// outputs map; agent outputs are not mutated.
func FinalizeProposal(jobID string, req *models.ProposalRequest, outputs map[models.TaskKind]*models.AgentOutput) (*models.Proposal, error) {
	asm, ok := outputs[models.TaskAssembly]
	if !ok || asm.Assembly == nil {
		return nil, agent.Internalf(nil, "assembly output missing for job %s", jobID)
	}

	proposal := *asm.Assembly
	proposal.RequestID = jobID
	proposal.Metadata.Topic = req.Topic

	var involved []models.TaskKind
	for _, kind := range models.AllTaskKinds() {
		if _, ok := outputs[kind]; ok {
			involved = append(involved, kind)
		}
	}
	proposal.Metadata.AgentsInvolved = involved
	proposal.Metadata.PartialSuccess = len(involved) < len(models.AllTaskKinds())

	if qa, ok := outputs[models.TaskQA]; ok && qa.QA != nil {
		proposal.Validation = map[string]any{
			"final_validation": qa.QA.FinalValidation,
			"quality_scores":   qa.QA.QualityScores,
		}
	}

	if proposal.AssembledAt.IsZero() {
		proposal.AssembledAt = time.Now().UTC()
	}
	return &proposal, nil
}
