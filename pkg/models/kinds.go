// Package models defines the shared data model for ScholarForge:
// proposal requests, task kinds, normalized literature records, per-kind
// agent output payloads, and the assembled proposal artifact.
package models

// TaskKind identifies an agent role within a proposal job.
// The set is closed and known at build time.
type TaskKind string

const (
	TaskLiterature    TaskKind = "literature"
	TaskIntroduction  TaskKind = "introduction"
	TaskMethodology   TaskKind = "methodology"
	TaskRisk          TaskKind = "risk"
	TaskOptimizer     TaskKind = "optimizer"
	TaskVisualization TaskKind = "visualization"
	TaskQA            TaskKind = "qa"
	TaskReferences    TaskKind = "references"
	TaskFrontMatter   TaskKind = "front_matter"
	TaskFormatting    TaskKind = "formatting"
	TaskAssembly      TaskKind = "assembly"
)

// AllTaskKinds returns every task kind in deterministic (pipeline) order.
func AllTaskKinds() []TaskKind {
	return []TaskKind{
		TaskLiterature,
		TaskIntroduction,
		TaskMethodology,
		TaskRisk,
		TaskOptimizer,
		TaskVisualization,
		TaskQA,
		TaskReferences,
		TaskFrontMatter,
		TaskFormatting,
		TaskAssembly,
	}
}

// Valid reports whether k is one of the known task kinds.
func (k TaskKind) Valid() bool {
	switch k {
	case TaskLiterature, TaskIntroduction, TaskMethodology, TaskRisk,
		TaskOptimizer, TaskVisualization, TaskQA, TaskReferences,
		TaskFrontMatter, TaskFormatting, TaskAssembly:
		return true
	}
	return false
}

func (k TaskKind) String() string { return string(k) }
