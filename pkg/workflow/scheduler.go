package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/scholarforge/scholarforge/pkg/agent"
	"github.com/scholarforge/scholarforge/pkg/config"
	"github.com/scholarforge/scholarforge/pkg/models"
	"github.com/scholarforge/scholarforge/pkg/store"
)

// JobError is the terminal failure of a job: the first critical task
// failure, or the cancellation cause.
type JobError struct {
	JobID string
	Kind  models.TaskKind
	Err   error
}

func (e *JobError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("job %s: task %s: %v", e.JobID, e.Kind, e.Err)
	}
	return fmt.Sprintf("job %s: %v", e.JobID, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }

// Scheduler executes task graphs with bounded parallelism. One control
// goroutine owns all graph state; workers execute agents and report
// back over a completion channel. Safe for concurrent use across jobs:
// per-job state lives in the graph, not the scheduler.
type Scheduler struct {
	registry *agent.Registry
	store    store.Store
	cfg      config.SchedulerConfig

	// maxObserved tracks the peak number of concurrently running tasks
	// across all jobs. Exposed for tests and the status endpoint.
	maxObserved atomic.Int64
}

// NewScheduler builds a scheduler over the registry and store.
func NewScheduler(registry *agent.Registry, st store.Store, cfg config.SchedulerConfig) *Scheduler {
	return &Scheduler{registry: registry, store: st, cfg: cfg}
}

// MaxObservedParallel returns the peak concurrent task count seen.
func (s *Scheduler) MaxObservedParallel() int {
	return int(s.maxObserved.Load())
}

// taskResult is a worker's report to the control loop.
type taskResult struct {
	kind   models.TaskKind
	output *models.AgentOutput
	err    error
}

// Run executes the graph to completion and returns the outputs of every
// succeeded task. The error is non-nil when a critical task failed or
// the context was cancelled; outputs of tasks that succeeded before the
// failure are still returned.
func (s *Scheduler) Run(ctx context.Context, g *TaskGraph, req *models.ProposalRequest) (map[models.TaskKind]*models.AgentOutput, error) {
	logger := slog.With("component", "scheduler", "job_id", g.JobID)

	maxParallel := req.MaxParallelTasks()
	if maxParallel < 1 {
		maxParallel = s.cfg.MaxParallelTasks
	}

	// Workers run under a job-scoped context so a critical failure can
	// stop in-flight siblings.
	jobCtx, cancelJob := context.WithCancel(ctx)
	defer cancelJob()

	outputs := make(map[models.TaskKind]*models.AgentOutput, len(g.Nodes))
	completions := make(chan taskResult, len(g.Nodes))
	retries := make(chan models.TaskKind, len(g.Nodes))

	for _, node := range g.Nodes {
		if len(node.Deps) == 0 {
			node.Status = StatusReady
		}
	}

	running := 0
	pendingRetries := 0
	var jobErr *JobError

	dispatch := func() {
		if jobErr != nil {
			return
		}
		for _, kind := range g.readyKinds() {
			if running >= maxParallel {
				return
			}
			node := g.Nodes[kind]
			node.Status = StatusRunning
			node.Attempts++
			if node.Attempts == 1 {
				node.StartedAt = time.Now()
			}
			running++
			for n := int64(running); ; {
				p := s.maxObserved.Load()
				if n <= p || s.maxObserved.CompareAndSwap(p, n) {
					break
				}
			}

			input := &agent.Input{
				JobID:        g.JobID,
				Request:      req,
				Dependencies: dependencyView(g, outputs, kind),
			}
			logger.Info("Dispatching task", "kind", kind, "attempt", node.Attempts)
			go s.runTask(jobCtx, g.JobID, kind, input, completions)
		}
	}

	dispatch()

	for {
		if running == 0 && pendingRetries == 0 {
			if g.done() {
				break
			}
			if len(g.readyKinds()) == 0 {
				// The remaining nodes are unreachable: their upstream
				// failed without being critical.
				break
			}
			dispatch()
			continue
		}

		select {
		case <-ctx.Done():
			if jobErr == nil {
				jobErr = &JobError{JobID: g.JobID, Err: ctx.Err()}
			}
			cancelJob()
			s.drain(g, completions, &running)
			s.cancelRemaining(g, "job cancelled")
			return outputs, jobErr

		case kind := <-retries:
			pendingRetries--
			node := g.Nodes[kind]
			if node.Status == StatusPending {
				node.Status = StatusReady
			}
			dispatch()

		case res := <-completions:
			running--
			node := g.Nodes[res.kind]

			if res.err == nil {
				node.Status = StatusSucceeded
				node.FinishedAt = time.Now()
				outputs[res.kind] = res.output
				logger.Info("Task succeeded", "kind", res.kind, "attempts", node.Attempts)
				for _, succ := range g.Successors(res.kind) {
					sn := g.Nodes[succ]
					if sn.Status == StatusPending && g.depsSucceeded(succ) {
						sn.Status = StatusReady
					}
				}
				dispatch()
				continue
			}

			if jobErr != nil {
				// Already aborting: workers report cancellation as they drain.
				node.Status = StatusCancelled
				node.FinishedAt = time.Now()
				node.Err = res.err.Error()
				continue
			}

			if agent.IsRetryable(res.err) && node.Attempts <= node.MaxRetries {
				backoff := s.cfg.RetryBase << (node.Attempts - 1)
				logger.Warn("Task failed, retrying",
					"kind", res.kind, "attempt", node.Attempts, "backoff", backoff, "error", res.err)
				node.Status = StatusPending
				pendingRetries++
				kind := res.kind
				go func() {
					select {
					case <-time.After(backoff):
						retries <- kind
					case <-jobCtx.Done():
						retries <- kind
					}
				}()
				continue
			}

			node.Status = StatusFailed
			node.FinishedAt = time.Now()
			node.Err = res.err.Error()
			logger.Error("Task failed", "kind", res.kind, "attempts", node.Attempts, "error", res.err)

			s.cancelDescendants(g, res.kind)

			if g.Critical(res.kind) {
				jobErr = &JobError{JobID: g.JobID, Kind: res.kind, Err: res.err}
				cancelJob()
				s.drain(g, completions, &running)
				s.cancelRemaining(g, fmt.Sprintf("critical task %s failed", res.kind))
				return outputs, jobErr
			}
			dispatch()
		}
	}

	return outputs, nil
}

// runTask executes one agent attempt under the per-task timeout and
// writes the output to the State Store before reporting success, so the
// write happens-before any downstream read.
func (s *Scheduler) runTask(ctx context.Context, jobID string, kind models.TaskKind, input *agent.Input, completions chan<- taskResult) {
	a, ok := s.registry.Get(kind)
	if !ok {
		completions <- taskResult{kind: kind, err: agent.Internalf(nil, "no agent registered for %s", kind)}
		return
	}

	taskCtx, cancel := context.WithTimeout(ctx, s.cfg.TaskTimeout)
	defer cancel()

	output, err := s.executeOnce(taskCtx, a, input)
	if err != nil {
		// A task-deadline expiry is transient and retryable; job
		// cancellation is not.
		if taskCtx.Err() != nil && ctx.Err() == nil {
			err = agent.NewError(agent.ErrorKindTimeout, err, "task %s timed out", kind)
		}
		completions <- taskResult{kind: kind, err: err}
		return
	}

	if serr := s.store.Set(ctx, store.TaskKey(jobID, kind.String()), output, s.cfg.OutputTTL); serr != nil {
		completions <- taskResult{kind: kind, err: agent.Transientf(serr, "store output for %s", kind)}
		return
	}
	completions <- taskResult{kind: kind, output: output}
}

func (s *Scheduler) executeOnce(ctx context.Context, a agent.Agent, input *agent.Input) (output *models.AgentOutput, err error) {
	// A panicking agent fails its task, not the process.
	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = agent.Internalf(nil, "agent %s panicked: %v", a.Kind(), r)
		}
	}()

	if err := a.ValidateInput(input); err != nil {
		return nil, err
	}
	output, err = a.Execute(ctx, input)
	if err != nil {
		return nil, err
	}
	if output == nil {
		return nil, agent.Internalf(nil, "agent %s returned no output", a.Kind())
	}
	if err := output.Validate(); err != nil {
		return nil, agent.Permanentf(err, "agent %s output invalid", a.Kind())
	}
	return output, nil
}

// dependencyView copies exactly the declared dependency outputs for a
// task. Siblings are never visible.
func dependencyView(g *TaskGraph, outputs map[models.TaskKind]*models.AgentOutput, kind models.TaskKind) map[models.TaskKind]*models.AgentOutput {
	deps := g.Nodes[kind].Deps
	view := make(map[models.TaskKind]*models.AgentOutput, len(deps))
	for _, dep := range deps {
		if out, ok := outputs[dep]; ok {
			view[dep] = out
		}
	}
	return view
}

// cancelDescendants cancels every non-terminal task downstream of kind.
func (s *Scheduler) cancelDescendants(g *TaskGraph, kind models.TaskKind) {
	for _, desc := range g.Descendants(kind) {
		node := g.Nodes[desc]
		if !node.Status.Terminal() && node.Status != StatusRunning {
			node.Status = StatusCancelled
			node.FinishedAt = time.Now()
			node.Err = fmt.Sprintf("upstream task %s failed", kind)
		}
	}
}

// cancelRemaining cancels every node that is not yet terminal.
func (s *Scheduler) cancelRemaining(g *TaskGraph, reason string) {
	for _, node := range g.Nodes {
		if !node.Status.Terminal() {
			node.Status = StatusCancelled
			node.FinishedAt = time.Now()
			if node.Err == "" {
				node.Err = reason
			}
		}
	}
}

// drain collects completions for in-flight workers after an abort so no
// goroutine is left blocked on the channel.
func (s *Scheduler) drain(g *TaskGraph, completions <-chan taskResult, running *int) {
	for *running > 0 {
		res := <-completions
		*running--
		node := g.Nodes[res.kind]
		if res.err == nil {
			// The worker finished before observing cancellation; keep the
			// status but drop the output, the job is already failed.
			node.Status = StatusCancelled
			node.FinishedAt = time.Now()
			continue
		}
		node.Status = StatusCancelled
		node.FinishedAt = time.Now()
		node.Err = res.err.Error()
	}
}
