// Package agent provides the core agent framework for ScholarForge.
// Agents are stateless workers: each implements one task kind, reads the
// request plus its declared dependencies' outputs, and produces a typed
// output blob. Agents never invoke other agents; fan-in and fan-out happen
// only through dependency edges in the task graph.
package agent

import (
	"context"

	"github.com/scholarforge/scholarforge/pkg/models"
)

// Agent is the contract every worker implements.
//
// ValidateInput is pure and cheap: it checks that mandatory dependencies
// and fields are present and well-typed, returning a validation-kind
// *Error on rejection. Execute performs the work; it may call the LLM
// gateway and source connectors. Given identical input and identical LLM
// responses, Execute is deterministic — this enables mock-mode replay.
//
// Failures are signaled through the error taxonomy in this package so the
// scheduler can distinguish retryable from fatal outcomes.
type Agent interface {
	Kind() models.TaskKind
	ValidateInput(in *Input) error
	Execute(ctx context.Context, in *Input) (*models.AgentOutput, error)
}
