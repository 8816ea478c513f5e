package agent

import "github.com/scholarforge/scholarforge/pkg/models"

// Input is the view an agent receives for one task execution.
// Dependencies contains exactly the outputs of the task's declared
// dependencies — siblings are never visible.
type Input struct {
	JobID        string
	Request      *models.ProposalRequest
	Dependencies map[models.TaskKind]*models.AgentOutput
}

// Dependency returns the output of a declared dependency. A missing or
// malformed entry is a validation failure: the canonical graph leaves no
// room for optional dependencies.
func (in *Input) Dependency(kind models.TaskKind) (*models.AgentOutput, error) {
	out, ok := in.Dependencies[kind]
	if !ok || out == nil {
		return nil, Validationf("missing dependency output %q", kind)
	}
	if err := out.Validate(); err != nil {
		return nil, Validationf("dependency output %q: %v", kind, err)
	}
	return out, nil
}

// validateRequest checks the fields every agent needs.
func validateRequest(in *Input) error {
	if in == nil || in.Request == nil {
		return Validationf("request is required")
	}
	if err := in.Request.Validate(); err != nil {
		return Validationf("%v", err)
	}
	return nil
}

// requireDeps checks that every listed dependency output is present and
// carries its payload.
func requireDeps(in *Input, kinds ...models.TaskKind) error {
	for _, kind := range kinds {
		if _, err := in.Dependency(kind); err != nil {
			return err
		}
	}
	return nil
}
