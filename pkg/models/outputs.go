package models

import "fmt"

// OutputMetadata is the common metadata sub-record every agent output carries.
type OutputMetadata struct {
	WordCount int            `json:"word_count,omitempty"`
	Counts    map[string]int `json:"counts,omitempty"`
}

// LiteratureOutput is the literature agent's payload.
type LiteratureOutput struct {
	Content        string         `json:"content"`
	Subsections    []Section      `json:"subsections,omitempty"`
	PapersReviewed int            `json:"papers_reviewed"`
	Papers         []Paper        `json:"papers"`
	ResearchGaps   []string       `json:"research_gaps"`
	Citations      []string       `json:"citations"`
	Metadata       OutputMetadata `json:"metadata"`
}

// IntroductionOutput is the introduction agent's payload.
type IntroductionOutput struct {
	Content           string         `json:"content"`
	Subsections       []Section      `json:"subsections,omitempty"`
	ProblemStatement  string         `json:"problem_statement"`
	Objectives        []string       `json:"objectives"`
	ResearchQuestions []string       `json:"research_questions"`
	Metadata          OutputMetadata `json:"metadata"`
}

// MethodologyOutput is the methodology agent's payload.
type MethodologyOutput struct {
	Content               string         `json:"content"`
	Subsections           []Section      `json:"subsections,omitempty"`
	ResearchDesign        string         `json:"research_design"`
	Procedures            []string       `json:"procedures"`
	EthicalConsiderations string         `json:"ethical_considerations"`
	Metadata              OutputMetadata `json:"metadata"`
}

// RiskItem is one entry in the risk register.
type RiskItem struct {
	Name       string `json:"name"`
	Likelihood string `json:"likelihood"`
	Impact     string `json:"impact"`
	Mitigation string `json:"mitigation"`
}

// RiskOutput is the risk agent's payload.
type RiskOutput struct {
	Content          string         `json:"content"`
	Risks            []RiskItem     `json:"risks"`
	ContingencyPlans []string       `json:"contingency_plans"`
	Metadata         OutputMetadata `json:"metadata"`
}

// TimelinePhase is one phase of the optimizer's project timeline.
type TimelinePhase struct {
	Phase      string   `json:"phase"`
	Duration   string   `json:"duration"`
	Activities []string `json:"activities"`
}

// OptimizerOutput is the optimizer agent's payload.
type OptimizerOutput struct {
	Recommendations []string        `json:"recommendations"`
	Timeline        []TimelinePhase `json:"timeline"`
	ResourcePlan    string          `json:"resource_plan"`
	Metadata        OutputMetadata  `json:"metadata"`
}

// Diagram is a single named visualization.
type Diagram struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	MermaidCode string `json:"mermaid_code"`
	Description string `json:"description"`
}

// VisualizationOutput is the visualization agent's payload.
type VisualizationOutput struct {
	Diagrams map[string]Diagram `json:"diagrams"`
	Metadata OutputMetadata     `json:"metadata"`
}

// QAOutput is the quality-review agent's payload. It is advisory:
// consumed only by formatting and assembly, never fed back upstream.
type QAOutput struct {
	ReviewReport    string             `json:"review_report"`
	QualityScores   map[string]float64 `json:"quality_scores"`
	Feedback        []string           `json:"feedback"`
	FinalValidation string             `json:"final_validation"`
	Metadata        OutputMetadata     `json:"metadata"`
}

// ReferencesOutput is the references agent's payload.
type ReferencesOutput struct {
	References      []Reference `json:"references"`
	CitationGuide   string      `json:"citation_guide"`
	TotalReferences int         `json:"total_references"`
	CitationStyle   string      `json:"citation_style"`
}

// AbstractBlock is the front matter abstract with its own word count.
type AbstractBlock struct {
	Text      string `json:"text"`
	WordCount int    `json:"word_count"`
}

// FrontMatterOutput is the front matter agent's payload.
type FrontMatterOutput struct {
	Abstract         AbstractBlock     `json:"abstract"`
	Keywords         []string          `json:"keywords"`
	Dedication       string            `json:"dedication,omitempty"`
	Acknowledgements string            `json:"acknowledgements,omitempty"`
	Abbreviations    map[string]string `json:"abbreviations,omitempty"`
	ListOfFigures    []string          `json:"list_of_figures"`
	ListOfTables     []string          `json:"list_of_tables"`
	Metadata         OutputMetadata    `json:"metadata"`
}

// TOCEntry is one line of the table of contents.
type TOCEntry struct {
	Title string `json:"title"`
	Level int    `json:"level"`
}

// TitlePage holds title page fields resolved from the request.
type TitlePage struct {
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Institution string `json:"institution,omitempty"`
	Department  string `json:"department,omitempty"`
}

// FormattingOutput is the formatting agent's payload. It carries the
// fully-ordered document content forward so the assembly task can build
// the proposal from its single declared dependency.
type FormattingOutput struct {
	Sections           []Section         `json:"sections"`
	References         []Reference       `json:"references"`
	Appendices         []Section         `json:"appendices,omitempty"`
	TableOfContents    []TOCEntry        `json:"table_of_contents"`
	FontSpecifications map[string]string `json:"font_specifications"`
	PageConfiguration  map[string]string `json:"page_configuration"`
	TitlePage          TitlePage         `json:"title_page"`
	Metadata           OutputMetadata    `json:"metadata"`
}

// AgentOutput is the typed union of per-kind payloads. Exactly one payload
// pointer is set, matching Kind. Consumers tolerate unknown JSON fields.
type AgentOutput struct {
	Kind          TaskKind             `json:"kind"`
	Literature    *LiteratureOutput    `json:"literature,omitempty"`
	Introduction  *IntroductionOutput  `json:"introduction,omitempty"`
	Methodology   *MethodologyOutput   `json:"methodology,omitempty"`
	Risk          *RiskOutput          `json:"risk,omitempty"`
	Optimizer     *OptimizerOutput     `json:"optimizer,omitempty"`
	Visualization *VisualizationOutput `json:"visualization,omitempty"`
	QA            *QAOutput            `json:"qa,omitempty"`
	References    *ReferencesOutput    `json:"references,omitempty"`
	FrontMatter   *FrontMatterOutput   `json:"front_matter,omitempty"`
	Formatting    *FormattingOutput    `json:"formatting,omitempty"`
	Assembly      *Proposal            `json:"assembly,omitempty"`
}

// Validate checks that the payload matching Kind is present.
func (o *AgentOutput) Validate() error {
	var present bool
	switch o.Kind {
	case TaskLiterature:
		present = o.Literature != nil
	case TaskIntroduction:
		present = o.Introduction != nil
	case TaskMethodology:
		present = o.Methodology != nil
	case TaskRisk:
		present = o.Risk != nil
	case TaskOptimizer:
		present = o.Optimizer != nil
	case TaskVisualization:
		present = o.Visualization != nil
	case TaskQA:
		present = o.QA != nil
	case TaskReferences:
		present = o.References != nil
	case TaskFrontMatter:
		present = o.FrontMatter != nil
	case TaskFormatting:
		present = o.Formatting != nil
	case TaskAssembly:
		present = o.Assembly != nil
	default:
		return fmt.Errorf("unknown task kind %q", o.Kind)
	}
	if !present {
		return fmt.Errorf("output for %q is missing its payload", o.Kind)
	}
	return nil
}

// WordCount returns the payload's word count where the kind has one.
func (o *AgentOutput) WordCount() int {
	switch o.Kind {
	case TaskLiterature:
		if o.Literature != nil {
			return o.Literature.Metadata.WordCount
		}
	case TaskIntroduction:
		if o.Introduction != nil {
			return o.Introduction.Metadata.WordCount
		}
	case TaskMethodology:
		if o.Methodology != nil {
			return o.Methodology.Metadata.WordCount
		}
	case TaskRisk:
		if o.Risk != nil {
			return o.Risk.Metadata.WordCount
		}
	case TaskFrontMatter:
		if o.FrontMatter != nil {
			return o.FrontMatter.Abstract.WordCount
		}
	}
	return 0
}
