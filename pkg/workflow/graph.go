// Package workflow executes the canonical task graph for one proposal
// job: graph construction and validation, the bounded-parallel
// scheduler, and the final proposal assembly.
package workflow

import (
	"fmt"
	"time"

	"github.com/scholarforge/scholarforge/pkg/agent"
	"github.com/scholarforge/scholarforge/pkg/models"
)

// TaskStatus is a task node's lifecycle state. The scheduler's control
// loop is the only writer.
type TaskStatus string

const (
	// StatusPending — waiting on dependencies or a retry backoff.
	StatusPending TaskStatus = "pending"
	// StatusReady — all dependencies succeeded, eligible for dispatch.
	StatusReady TaskStatus = "ready"
	// StatusRunning — dispatched to a worker.
	StatusRunning TaskStatus = "running"
	// StatusSucceeded — output recorded in the State Store.
	StatusSucceeded TaskStatus = "succeeded"
	// StatusFailed — permanent failure or retry budget exhausted.
	StatusFailed TaskStatus = "failed"
	// StatusCancelled — job cancelled or an upstream dependency failed.
	StatusCancelled TaskStatus = "cancelled"
)

// Terminal reports whether the status is final.
func (s TaskStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCancelled
}

// canonicalDeps is the hard dependency graph for the proposal domain.
var canonicalDeps = map[models.TaskKind][]models.TaskKind{
	models.TaskLiterature:   {},
	models.TaskIntroduction: {models.TaskLiterature},
	models.TaskMethodology:  {models.TaskIntroduction},
	models.TaskRisk:         {models.TaskMethodology},
	models.TaskOptimizer:    {models.TaskMethodology, models.TaskIntroduction},
	models.TaskVisualization: {
		models.TaskMethodology,
	},
	models.TaskQA: {
		models.TaskIntroduction, models.TaskLiterature,
		models.TaskMethodology, models.TaskRisk,
	},
	models.TaskReferences: {models.TaskLiterature},
	models.TaskFrontMatter: {
		models.TaskIntroduction, models.TaskLiterature,
		models.TaskMethodology, models.TaskVisualization,
	},
	models.TaskFormatting: {
		models.TaskFrontMatter, models.TaskIntroduction, models.TaskLiterature,
		models.TaskMethodology, models.TaskVisualization, models.TaskRisk,
		models.TaskReferences, models.TaskQA,
	},
	models.TaskAssembly: {models.TaskFormatting},
}

// defaultMaxRetries is the transient retry budget for tasks that reach
// the network. The two terminal document tasks are deterministic and
// get no budget: if they fail, retrying cannot help.
const defaultMaxRetries = 2

func retryBudget(kind models.TaskKind) int {
	switch kind {
	case models.TaskFormatting, models.TaskAssembly:
		return 0
	}
	return defaultMaxRetries
}

// TaskNode is one scheduled execution of an agent within a job.
type TaskNode struct {
	ID         string
	Kind       models.TaskKind
	Deps       []models.TaskKind
	Status     TaskStatus
	Attempts   int
	MaxRetries int
	StartedAt  time.Time
	FinishedAt time.Time
	Err        string
}

// GraphError is a structured graph construction failure.
type GraphError struct {
	Kind    models.TaskKind
	Message string
}

func (e *GraphError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("task graph: %s: %s", e.Kind, e.Message)
	}
	return "task graph: " + e.Message
}

// TaskGraph is the DAG of task nodes for one job.
type TaskGraph struct {
	JobID string
	Nodes map[models.TaskKind]*TaskNode

	successors map[models.TaskKind][]models.TaskKind
	critical   map[models.TaskKind]bool
}

// BuildGraph synthesizes the canonical graph for a job, failing fast
// when an agent is missing from the registry or the graph shape is
// invalid.
func BuildGraph(jobID string, registry *agent.Registry) (*TaskGraph, error) {
	g := &TaskGraph{
		JobID:      jobID,
		Nodes:      make(map[models.TaskKind]*TaskNode, len(canonicalDeps)),
		successors: make(map[models.TaskKind][]models.TaskKind),
	}

	for kind, deps := range canonicalDeps {
		if _, ok := registry.Get(kind); !ok {
			return nil, &GraphError{Kind: kind, Message: "no agent registered"}
		}
		g.Nodes[kind] = &TaskNode{
			ID:         fmt.Sprintf("%s:%s", jobID, kind),
			Kind:       kind,
			Deps:       deps,
			Status:     StatusPending,
			MaxRetries: retryBudget(kind),
		}
	}

	var roots []models.TaskKind
	for kind, node := range g.Nodes {
		if len(node.Deps) == 0 {
			roots = append(roots, kind)
		}
		for _, dep := range node.Deps {
			if _, ok := g.Nodes[dep]; !ok {
				return nil, &GraphError{Kind: kind, Message: fmt.Sprintf("dependency %q has no node", dep)}
			}
			g.successors[dep] = append(g.successors[dep], kind)
		}
	}

	if len(roots) != 1 || roots[0] != models.TaskLiterature {
		return nil, &GraphError{Message: fmt.Sprintf("graph must have the single root %q, got roots %v",
			models.TaskLiterature, roots)}
	}
	if cycle := findCycle(g.Nodes); cycle != "" {
		return nil, &GraphError{Kind: cycle, Message: "dependency cycle detected"}
	}

	g.critical = computeCritical(g)
	return g, nil
}

// findCycle runs a three-color DFS; returns a kind on a cycle, or "".
func findCycle(nodes map[models.TaskKind]*TaskNode) models.TaskKind {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[models.TaskKind]int, len(nodes))

	var visit func(kind models.TaskKind) models.TaskKind
	visit = func(kind models.TaskKind) models.TaskKind {
		color[kind] = gray
		for _, dep := range nodes[kind].Deps {
			switch color[dep] {
			case gray:
				return dep
			case white:
				if hit := visit(dep); hit != "" {
					return hit
				}
			}
		}
		color[kind] = black
		return ""
	}

	for kind := range nodes {
		if color[kind] == white {
			if hit := visit(kind); hit != "" {
				return hit
			}
		}
	}
	return ""
}

// computeCritical marks every kind with a dependency path to assembly.
// A critical task's failure fails the job; a non-critical one degrades
// the proposal.
func computeCritical(g *TaskGraph) map[models.TaskKind]bool {
	critical := map[models.TaskKind]bool{models.TaskAssembly: true}
	// Walk predecessors from assembly until the set stops growing.
	for changed := true; changed; {
		changed = false
		for target := range critical {
			for _, dep := range g.Nodes[target].Deps {
				if !critical[dep] {
					critical[dep] = true
					changed = true
				}
			}
		}
	}
	return critical
}

// Successors returns the direct downstream kinds of a task.
func (g *TaskGraph) Successors(kind models.TaskKind) []models.TaskKind {
	return g.successors[kind]
}

// Descendants returns every kind transitively downstream of a task.
func (g *TaskGraph) Descendants(kind models.TaskKind) []models.TaskKind {
	seen := map[models.TaskKind]bool{}
	var walk func(k models.TaskKind)
	walk = func(k models.TaskKind) {
		for _, succ := range g.successors[k] {
			if !seen[succ] {
				seen[succ] = true
				walk(succ)
			}
		}
	}
	walk(kind)

	out := make([]models.TaskKind, 0, len(seen))
	for _, k := range models.AllTaskKinds() {
		if seen[k] {
			out = append(out, k)
		}
	}
	return out
}

// Critical reports whether a task lies on a dependency path to assembly.
func (g *TaskGraph) Critical(kind models.TaskKind) bool {
	return g.critical[kind]
}

// readyKinds returns the ready nodes in deterministic pipeline order.
func (g *TaskGraph) readyKinds() []models.TaskKind {
	var out []models.TaskKind
	for _, kind := range models.AllTaskKinds() {
		if node, ok := g.Nodes[kind]; ok && node.Status == StatusReady {
			out = append(out, kind)
		}
	}
	return out
}

// depsSucceeded reports whether every dependency of kind has succeeded.
func (g *TaskGraph) depsSucceeded(kind models.TaskKind) bool {
	for _, dep := range g.Nodes[kind].Deps {
		if g.Nodes[dep].Status != StatusSucceeded {
			return false
		}
	}
	return true
}

// done reports whether every node is terminal.
func (g *TaskGraph) done() bool {
	for _, node := range g.Nodes {
		if !node.Status.Terminal() {
			return false
		}
	}
	return true
}
