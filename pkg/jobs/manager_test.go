package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarforge/scholarforge/pkg/agent"
	"github.com/scholarforge/scholarforge/pkg/config"
	"github.com/scholarforge/scholarforge/pkg/jobs"
	"github.com/scholarforge/scholarforge/pkg/llm"
	"github.com/scholarforge/scholarforge/pkg/models"
	"github.com/scholarforge/scholarforge/pkg/store"
	"github.com/scholarforge/scholarforge/pkg/workflow"
)

type stubSearch struct{}

func (stubSearch) SearchTopic(_ context.Context, _ string, _ int) ([]models.Paper, error) {
	return []models.Paper{
		{
			PaperID: "p1", Title: "Adaptive Scheduling in Distributed Systems",
			Authors: []string{"Jane Doe", "Alan Smith"}, Year: 2021,
			Abstract: "A study of adaptive scheduling.", Venue: "OSDI",
			CitationCount: 42, DOI: "10.1000/p1", Source: "semantic_scholar",
		},
		{
			PaperID: "p2", Title: "Energy-Aware Workload Placement",
			Authors: []string{"Mei Chen"}, Year: 2019,
			Abstract: "Placement under power budgets.", Venue: "SoCC",
			CitationCount: 17, Source: "openalex",
		},
	}, nil
}

func schedulerConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		MaxParallelTasks: 3,
		TaskTimeout:      10 * time.Second,
		RetryBase:        time.Millisecond,
		OutputTTL:        time.Hour,
	}
}

// newTestManager wires the full fleet against the deterministic mock
// provider, exercising the real pipeline end to end.
func newTestManager(t *testing.T, cfg config.SchedulerConfig) (*jobs.Manager, store.Store) {
	t.Helper()

	llmCfg := config.Default().LLM
	llmCfg.RetryBase = time.Millisecond
	gateway := llm.NewGateway(llm.NewMockProvider(), &llmCfg)
	t.Cleanup(func() { _ = gateway.Close() })

	registry, err := agent.NewDefaultRegistry(gateway, stubSearch{}, 5)
	require.NoError(t, err)

	st := store.NewMemoryStore()
	t.Cleanup(func() { _ = st.Close() })

	scheduler := workflow.NewScheduler(registry, st, cfg)
	return jobs.NewManager(registry, scheduler, cfg), st
}

func testRequest() *models.ProposalRequest {
	return &models.ProposalRequest{
		Topic:     "Energy-aware scheduling for heterogeneous clusters",
		KeyPoints: []string{"power budgets", "heterogeneity"},
		Author:    "R. Ramírez",
	}
}

func TestManagerRunCompletes(t *testing.T) {
	mgr, st := newTestManager(t, schedulerConfig())

	snap, err := mgr.Run(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, jobs.StatusCompleted, snap.Status)
	require.NotNil(t, snap.Proposal)
	assert.Equal(t, snap.ID, snap.Proposal.RequestID)
	assert.False(t, snap.Proposal.Metadata.PartialSuccess)
	assert.NotEmpty(t, snap.Proposal.Sections)
	assert.Len(t, snap.Tasks, 11)
	for _, task := range snap.Tasks {
		assert.Equal(t, "succeeded", task.Status, task.Kind)
	}

	// Task outputs are retained in the store for diagnostics.
	var out models.AgentOutput
	ok, err := st.Get(context.Background(), store.TaskKey(snap.ID, "assembly"), &out)
	require.NoError(t, err)
	assert.True(t, ok)

	// Get returns the same terminal snapshot.
	again, err := mgr.Get(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusCompleted, again.Status)
}

func TestManagerRejectsInvalidRequest(t *testing.T) {
	mgr, _ := newTestManager(t, schedulerConfig())

	_, err := mgr.Submit(&models.ProposalRequest{Topic: "short"})
	var verr *models.RequestValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "topic", verr.Field)
}

func TestManagerStartAndPoll(t *testing.T) {
	mgr, _ := newTestManager(t, schedulerConfig())

	id, err := mgr.Start(testRequest())
	require.NoError(t, err)

	deadline := time.After(30 * time.Second)
	for {
		snap, err := mgr.Get(id)
		require.NoError(t, err)
		if snap.Status.Terminal() {
			assert.Equal(t, jobs.StatusCompleted, snap.Status)
			assert.NotNil(t, snap.Proposal)
			break
		}
		select {
		case <-deadline:
			t.Fatalf("job %s still %s", id, snap.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}
	assert.Equal(t, 0, mgr.ActiveCount())
}

func TestManagerGetUnknown(t *testing.T) {
	mgr, _ := newTestManager(t, schedulerConfig())

	_, err := mgr.Get("nope")
	assert.ErrorIs(t, err, jobs.ErrUnknownJob)
	assert.ErrorIs(t, mgr.Cancel("nope"), jobs.ErrUnknownJob)
}

func TestManagerCancelFinished(t *testing.T) {
	mgr, _ := newTestManager(t, schedulerConfig())

	snap, err := mgr.Run(context.Background(), testRequest())
	require.NoError(t, err)
	assert.ErrorIs(t, mgr.Cancel(snap.ID), jobs.ErrJobFinished)
}

func TestManagerJobDeadlineCancels(t *testing.T) {
	// The mock pipeline finishes in milliseconds, so exercise the
	// deadline path with a 1ns budget: cancellation lands before any
	// task can end.
	cfg := schedulerConfig()
	cfg.JobDeadline = time.Nanosecond
	mgr, _ := newTestManager(t, cfg)

	id, err := mgr.Start(testRequest())
	require.NoError(t, err)

	deadline := time.After(10 * time.Second)
	for {
		snap, err := mgr.Get(id)
		require.NoError(t, err)
		if snap.Status.Terminal() {
			assert.Equal(t, jobs.StatusCancelled, snap.Status)
			assert.Nil(t, snap.Proposal, "no partial result on cancellation")
			break
		}
		select {
		case <-deadline:
			t.Fatalf("job %s still %s", id, snap.Status)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestManagerStopRejectsIntake(t *testing.T) {
	mgr, _ := newTestManager(t, schedulerConfig())

	mgr.Stop(100 * time.Millisecond)
	_, err := mgr.Submit(testRequest())
	assert.ErrorIs(t, err, jobs.ErrShuttingDown)
}

func TestManagerDeterministicUnderMock(t *testing.T) {
	mgr, _ := newTestManager(t, schedulerConfig())

	first, err := mgr.Run(context.Background(), testRequest())
	require.NoError(t, err)
	second, err := mgr.Run(context.Background(), testRequest())
	require.NoError(t, err)

	a, b := *first.Proposal, *second.Proposal
	a.RequestID, b.RequestID = "", ""
	a.AssembledAt, b.AssembledAt = time.Time{}, time.Time{}
	assert.Equal(t, a, b, "mock runs differ only in request_id and timestamps")
}

func TestManagerList(t *testing.T) {
	mgr, _ := newTestManager(t, schedulerConfig())

	first, err := mgr.Run(context.Background(), testRequest())
	require.NoError(t, err)
	second, err := mgr.Run(context.Background(), testRequest())
	require.NoError(t, err)

	list := mgr.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, first.ID, list[1].ID)
}
