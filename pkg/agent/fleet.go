package agent

// NewDefaultRegistry registers the full agent fleet: one agent per task
// kind in the canonical graph.
func NewDefaultRegistry(llm LLMClient, search PaperSearch, searchLimit int) (*Registry, error) {
	registry := NewRegistry()
	fleet := []Agent{
		NewLiteratureAgent(llm, search, searchLimit),
		NewIntroductionAgent(llm),
		NewMethodologyAgent(llm),
		NewRiskAgent(llm),
		NewOptimizerAgent(llm),
		NewVisualizationAgent(),
		NewQAAgent(llm),
		NewReferencesAgent(),
		NewFrontMatterAgent(llm),
		NewFormattingAgent(),
		NewAssemblyAgent(),
	}
	for _, a := range fleet {
		if err := registry.Register(a); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
