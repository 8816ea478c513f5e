package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/scholarforge/scholarforge/pkg/models"
)

// VisualizationAgent renders Mermaid diagrams from the methodology.
// It is deterministic: no LLM call, no external I/O.
type VisualizationAgent struct{}

// NewVisualizationAgent builds the agent.
func NewVisualizationAgent() *VisualizationAgent { return &VisualizationAgent{} }

// Kind implements Agent.
func (a *VisualizationAgent) Kind() models.TaskKind { return models.TaskVisualization }

// ValidateInput implements Agent.
func (a *VisualizationAgent) ValidateInput(in *Input) error {
	if err := validateRequest(in); err != nil {
		return err
	}
	return requireDeps(in, models.TaskMethodology)
}

// Execute implements Agent.
func (a *VisualizationAgent) Execute(_ context.Context, in *Input) (*models.AgentOutput, error) {
	meth, err := in.Dependency(models.TaskMethodology)
	if err != nil {
		return nil, err
	}

	diagrams := map[string]models.Diagram{
		"methodology_flow": methodologyFlow(meth.Methodology.Procedures),
		"research_structure": researchStructure(in.Request.Topic,
			meth.Methodology.Procedures),
	}

	return &models.AgentOutput{
		Kind: models.TaskVisualization,
		Visualization: &models.VisualizationOutput{
			Diagrams: diagrams,
			Metadata: models.OutputMetadata{
				Counts: map[string]int{"diagrams": len(diagrams)},
			},
		},
	}, nil
}

// methodologyFlow chains the procedures into a top-down flowchart.
func methodologyFlow(procedures []string) models.Diagram {
	var sb strings.Builder
	sb.WriteString("flowchart TD\n")
	if len(procedures) == 0 {
		sb.WriteString("    P1[\"Data collection\"] --> P2[\"Analysis\"]\n")
	}
	for i, proc := range procedures {
		fmt.Fprintf(&sb, "    P%d[%q]\n", i+1, mermaidLabel(proc))
		if i > 0 {
			fmt.Fprintf(&sb, "    P%d --> P%d\n", i, i+1)
		}
	}
	return models.Diagram{
		Type:        "flowchart",
		Title:       "Methodology Flow",
		MermaidCode: sb.String(),
		Description: "Sequential view of the planned research procedures.",
	}
}

// researchStructure fans the procedures out from the research topic.
func researchStructure(topic string, procedures []string) models.Diagram {
	var sb strings.Builder
	sb.WriteString("flowchart LR\n")
	fmt.Fprintf(&sb, "    T[%q]\n", mermaidLabel(topic))
	if len(procedures) == 0 {
		sb.WriteString("    T --> M[\"Methodology\"]\n")
	}
	for i, proc := range procedures {
		fmt.Fprintf(&sb, "    T --> S%d[%q]\n", i+1, mermaidLabel(proc))
	}
	return models.Diagram{
		Type:        "flowchart",
		Title:       "Research Structure",
		MermaidCode: sb.String(),
		Description: "The research topic and the procedures addressing it.",
	}
}

// mermaidLabel truncates and sanitizes free text for a node label.
func mermaidLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.Join(strings.Fields(s), " ")
	if words := strings.Fields(s); len(words) > 8 {
		s = strings.Join(words[:8], " ") + "…"
	}
	return s
}
