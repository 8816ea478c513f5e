package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarforge/scholarforge/pkg/models"
)

func TestFinalizeProposalRequiresAssembly(t *testing.T) {
	outputs := map[models.TaskKind]*models.AgentOutput{
		models.TaskLiterature: minimalOutput(models.TaskLiterature),
	}
	_, err := FinalizeProposal("job-1", schedulerRequest(), outputs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assembly output missing")
}

func TestFinalizeProposalStampsMetadata(t *testing.T) {
	outputs := make(map[models.TaskKind]*models.AgentOutput)
	for _, kind := range models.AllTaskKinds() {
		outputs[kind] = minimalOutput(kind)
	}
	outputs[models.TaskQA].QA.QualityScores = map[string]float64{"coherence": 8}

	proposal, err := FinalizeProposal("job-7", schedulerRequest(), outputs)
	require.NoError(t, err)

	assert.Equal(t, "job-7", proposal.RequestID)
	assert.Equal(t, schedulerRequest().Topic, proposal.Metadata.Topic)
	assert.Equal(t, models.AllTaskKinds(), proposal.Metadata.AgentsInvolved)
	assert.False(t, proposal.Metadata.PartialSuccess)
	assert.Equal(t, "approved", proposal.Validation["final_validation"])
	assert.Equal(t, map[string]float64{"coherence": 8}, proposal.Validation["quality_scores"])
	assert.False(t, proposal.AssembledAt.IsZero())

	// The assembly agent's own output is never mutated.
	assert.Empty(t, outputs[models.TaskAssembly].Assembly.RequestID)
}

func TestFinalizeProposalPartialSuccess(t *testing.T) {
	outputs := make(map[models.TaskKind]*models.AgentOutput)
	for _, kind := range models.AllTaskKinds() {
		if kind == models.TaskOptimizer {
			continue
		}
		outputs[kind] = minimalOutput(kind)
	}

	proposal, err := FinalizeProposal("job-7", schedulerRequest(), outputs)
	require.NoError(t, err)
	assert.True(t, proposal.Metadata.PartialSuccess)
	assert.Len(t, proposal.Metadata.AgentsInvolved, 10)
	assert.NotContains(t, proposal.Metadata.AgentsInvolved, models.TaskOptimizer)
}

func TestFinalizeProposalKeepsAssembledAt(t *testing.T) {
	outputs := make(map[models.TaskKind]*models.AgentOutput)
	for _, kind := range models.AllTaskKinds() {
		outputs[kind] = minimalOutput(kind)
	}
	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	outputs[models.TaskAssembly].Assembly.AssembledAt = stamp

	proposal, err := FinalizeProposal("job-7", schedulerRequest(), outputs)
	require.NoError(t, err)
	assert.Equal(t, stamp, proposal.AssembledAt)
}
