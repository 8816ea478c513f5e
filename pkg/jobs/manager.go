// Package jobs is the job facade: it validates requests, creates jobs,
// runs them synchronously or in the background, and exposes status and
// results. Jobs live in process memory only; durable storage of
// in-flight jobs is out of scope.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scholarforge/scholarforge/pkg/agent"
	"github.com/scholarforge/scholarforge/pkg/config"
	"github.com/scholarforge/scholarforge/pkg/models"
	"github.com/scholarforge/scholarforge/pkg/workflow"
)

var (
	// ErrShuttingDown is returned by Submit after Stop has begun.
	ErrShuttingDown = errors.New("job manager is shutting down")
	// ErrUnknownJob is returned for job IDs the manager has never seen.
	ErrUnknownJob = errors.New("unknown job")
	// ErrJobFinished is returned when cancelling a terminal job.
	ErrJobFinished = errors.New("job already finished")
)

// Status is a job's lifecycle state.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// TaskSummary is a task's state within a job snapshot.
type TaskSummary struct {
	Kind     models.TaskKind `json:"kind"`
	Status   string          `json:"status"`
	Attempts int             `json:"attempts"`
	Error    string          `json:"error,omitempty"`
}

// Snapshot is a point-in-time view of a job. Task detail is populated
// once the job is terminal; while running, the scheduler owns the graph.
type Snapshot struct {
	ID         string           `json:"id"`
	Status     Status           `json:"status"`
	Topic      string           `json:"topic"`
	CreatedAt  time.Time        `json:"created_at"`
	StartedAt  time.Time        `json:"started_at,omitempty"`
	FinishedAt time.Time        `json:"finished_at,omitempty"`
	Error      string           `json:"error,omitempty"`
	FailedTask models.TaskKind  `json:"failed_task,omitempty"`
	Tasks      []TaskSummary    `json:"tasks,omitempty"`
	Proposal   *models.Proposal `json:"proposal,omitempty"`
}

// job is the manager's mutable record of one pipeline execution.
type job struct {
	mu sync.Mutex

	id    string
	req   *models.ProposalRequest
	graph *workflow.TaskGraph

	status     Status
	createdAt  time.Time
	startedAt  time.Time
	finishedAt time.Time
	err        string
	failedTask models.TaskKind
	proposal   *models.Proposal
}

func (j *job) snapshot() *Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	snap := &Snapshot{
		ID:         j.id,
		Status:     j.status,
		Topic:      j.req.Topic,
		CreatedAt:  j.createdAt,
		StartedAt:  j.startedAt,
		FinishedAt: j.finishedAt,
		Error:      j.err,
		FailedTask: j.failedTask,
		Proposal:   j.proposal,
	}
	if j.status.Terminal() {
		for _, kind := range models.AllTaskKinds() {
			node := j.graph.Nodes[kind]
			snap.Tasks = append(snap.Tasks, TaskSummary{
				Kind:     kind,
				Status:   string(node.Status),
				Attempts: node.Attempts,
				Error:    node.Err,
			})
		}
	}
	return snap
}

// Manager owns the set of jobs for this process.
type Manager struct {
	registry  *agent.Registry
	scheduler *workflow.Scheduler
	cfg       config.SchedulerConfig
	logger    *slog.Logger

	mu      sync.Mutex
	jobs    map[string]*job
	cancels map[string]context.CancelFunc
	closed  bool

	wg sync.WaitGroup
}

// NewManager builds a manager over the registry and scheduler.
func NewManager(registry *agent.Registry, scheduler *workflow.Scheduler, cfg config.SchedulerConfig) *Manager {
	return &Manager{
		registry:  registry,
		scheduler: scheduler,
		cfg:       cfg,
		logger:    slog.With("component", "jobs"),
		jobs:      make(map[string]*job),
		cancels:   make(map[string]context.CancelFunc),
	}
}

// Submit validates the request and registers a queued job. The task
// graph is synthesized up front so a missing agent rejects the job
// before any work starts.
func (m *Manager) Submit(req *models.ProposalRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if req.KeyPoints == nil {
		req.KeyPoints = []string{}
	}

	id := uuid.NewString()
	graph, err := workflow.BuildGraph(id, m.registry)
	if err != nil {
		return "", err
	}

	j := &job{
		id:        id,
		req:       req,
		graph:     graph,
		status:    StatusQueued,
		createdAt: time.Now().UTC(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", ErrShuttingDown
	}
	m.jobs[id] = j
	m.logger.Info("Job submitted", "job_id", id, "topic", req.Topic)
	return id, nil
}

// Run submits and executes a job synchronously, returning its terminal
// snapshot. The returned error is the job's terminal failure, nil on
// completion.
func (m *Manager) Run(ctx context.Context, req *models.ProposalRequest) (*Snapshot, error) {
	id, err := m.Submit(req)
	if err != nil {
		return nil, err
	}
	runErr := m.execute(ctx, id)
	snap, _ := m.Get(id)
	return snap, runErr
}

// Start submits a job and executes it in the background.
func (m *Manager) Start(req *models.ProposalRequest) (string, error) {
	id, err := m.Submit(req)
	if err != nil {
		return "", err
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		_ = m.execute(context.Background(), id)
	}()
	return id, nil
}

func (m *Manager) execute(ctx context.Context, id string) error {
	m.mu.Lock()
	j, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return ErrUnknownJob
	}

	var jobCtx context.Context
	var cancel context.CancelFunc
	if m.cfg.JobDeadline > 0 {
		jobCtx, cancel = context.WithTimeout(ctx, m.cfg.JobDeadline)
	} else {
		jobCtx, cancel = context.WithCancel(ctx)
	}
	m.cancels[id] = cancel
	m.mu.Unlock()

	defer func() {
		cancel()
		m.mu.Lock()
		delete(m.cancels, id)
		m.mu.Unlock()
	}()

	j.mu.Lock()
	j.status = StatusRunning
	j.startedAt = time.Now().UTC()
	j.mu.Unlock()

	outputs, err := m.scheduler.Run(jobCtx, j.graph, j.req)

	j.mu.Lock()
	defer j.mu.Unlock()
	j.finishedAt = time.Now().UTC()

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			j.status = StatusCancelled
		} else {
			j.status = StatusFailed
		}
		j.err = err.Error()
		var jerr *workflow.JobError
		if errors.As(err, &jerr) {
			j.failedTask = jerr.Kind
		}
		m.logger.Error("Job finished", "job_id", id, "status", j.status, "error", err)
		return err
	}

	proposal, err := workflow.FinalizeProposal(id, j.req, outputs)
	if err != nil {
		j.status = StatusFailed
		j.err = err.Error()
		m.logger.Error("Job finished", "job_id", id, "status", j.status, "error", err)
		return err
	}

	j.status = StatusCompleted
	j.proposal = proposal
	m.logger.Info("Job finished", "job_id", id, "status", j.status,
		"partial", proposal.Metadata.PartialSuccess,
		"duration", j.finishedAt.Sub(j.startedAt))
	return nil
}

// Get returns a snapshot of the job.
func (m *Manager) Get(id string) (*Snapshot, error) {
	m.mu.Lock()
	j, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrUnknownJob
	}
	return j.snapshot(), nil
}

// Cancel signals cancellation to a running job. Queued jobs cannot be
// cancelled because execution begins immediately after submission.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return ErrUnknownJob
	}
	cancel, ok := m.cancels[id]
	if !ok {
		return ErrJobFinished
	}
	cancel()
	m.logger.Info("Job cancellation requested", "job_id", id)
	return nil
}

// ActiveCount returns the number of jobs currently executing.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cancels)
}

// List returns snapshots of all known jobs, newest first.
func (m *Manager) List() []*Snapshot {
	m.mu.Lock()
	all := make([]*job, 0, len(m.jobs))
	for _, j := range m.jobs {
		all = append(all, j)
	}
	m.mu.Unlock()

	snaps := make([]*Snapshot, 0, len(all))
	for _, j := range all {
		snaps = append(snaps, j.snapshot())
	}
	sort.Slice(snaps, func(i, k int) bool { return snaps[i].CreatedAt.After(snaps[k].CreatedAt) })
	return snaps
}

// Stop stops intake, cancels running jobs, and waits up to grace for
// background jobs to drain.
func (m *Manager) Stop(grace time.Duration) {
	m.mu.Lock()
	m.closed = true
	for id, cancel := range m.cancels {
		m.logger.Info("Cancelling job for shutdown", "job_id", id)
		cancel()
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(grace):
		m.logger.Warn("Shutdown grace period expired with jobs still draining")
	}
}
