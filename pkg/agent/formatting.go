package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/scholarforge/scholarforge/pkg/models"
)

// Document defaults applied by the formatting agent.
var (
	defaultFonts = map[string]string{
		"body":     "Times New Roman, 12pt",
		"headings": "Times New Roman, 14pt, bold",
		"code":     "Courier New, 10pt",
	}
	defaultPage = map[string]string{
		"size":         "A4",
		"margins":      "2.5cm",
		"line_spacing": "1.5",
	}
)

// FormattingAgent orders the document: sections in canonical order,
// references, appendices, table of contents, and page setup. It carries
// the full content forward so the assembly task can build the proposal
// from this single output. Deterministic: no LLM call.
type FormattingAgent struct{}

// NewFormattingAgent builds the agent.
func NewFormattingAgent() *FormattingAgent { return &FormattingAgent{} }

// Kind implements Agent.
func (a *FormattingAgent) Kind() models.TaskKind { return models.TaskFormatting }

// ValidateInput implements Agent.
func (a *FormattingAgent) ValidateInput(in *Input) error {
	if err := validateRequest(in); err != nil {
		return err
	}
	return requireDeps(in,
		models.TaskFrontMatter, models.TaskIntroduction, models.TaskLiterature,
		models.TaskMethodology, models.TaskVisualization, models.TaskRisk,
		models.TaskReferences, models.TaskQA)
}

// Execute implements Agent.
func (a *FormattingAgent) Execute(_ context.Context, in *Input) (*models.AgentOutput, error) {
	deps := make(map[models.TaskKind]*models.AgentOutput, len(in.Dependencies))
	for _, kind := range []models.TaskKind{
		models.TaskFrontMatter, models.TaskIntroduction, models.TaskLiterature,
		models.TaskMethodology, models.TaskVisualization, models.TaskRisk,
		models.TaskReferences, models.TaskQA,
	} {
		out, err := in.Dependency(kind)
		if err != nil {
			return nil, err
		}
		deps[kind] = out
	}

	sections := []models.Section{
		frontMatterSection(deps[models.TaskFrontMatter].FrontMatter),
		introductionSection(deps[models.TaskIntroduction].Introduction),
		literatureSection(deps[models.TaskLiterature].Literature),
		methodologySection(deps[models.TaskMethodology].Methodology),
		visualizationSection(deps[models.TaskVisualization].Visualization),
		riskSection(deps[models.TaskRisk].Risk),
	}
	for i := range sections {
		sections[i].WordCount = sections[i].TotalWords()
	}

	appendices := []models.Section{qaAppendix(deps[models.TaskQA].QA)}
	for i := range appendices {
		appendices[i].WordCount = appendices[i].TotalWords()
	}

	return &models.AgentOutput{
		Kind: models.TaskFormatting,
		Formatting: &models.FormattingOutput{
			Sections:           sections,
			References:         deps[models.TaskReferences].References.References,
			Appendices:         appendices,
			TableOfContents:    tableOfContents(sections, appendices),
			FontSpecifications: defaultFonts,
			PageConfiguration:  defaultPage,
			TitlePage: models.TitlePage{
				Title:       in.Request.Topic,
				Author:      in.Request.Author,
				Institution: in.Request.Institution,
				Department:  in.Request.Department,
			},
			Metadata: models.OutputMetadata{
				Counts: map[string]int{
					"sections":   len(sections),
					"appendices": len(appendices),
					"references": len(deps[models.TaskReferences].References.References),
				},
			},
		},
	}, nil
}

func frontMatterSection(fm *models.FrontMatterOutput) models.Section {
	subs := []models.Section{
		{Title: "Abstract", Content: fm.Abstract.Text},
		{Title: "Keywords", Content: strings.Join(fm.Keywords, ", ")},
	}
	if fm.Acknowledgements != "" {
		subs = append(subs, models.Section{Title: "Acknowledgements", Content: fm.Acknowledgements})
	}
	if len(fm.ListOfFigures) > 0 {
		subs = append(subs, models.Section{Title: "List of Figures", Content: bulleted(fm.ListOfFigures)})
	}
	for i := range subs {
		subs[i].WordCount = subs[i].TotalWords()
	}
	return models.Section{Title: "Front Matter", Subsections: subs}
}

func introductionSection(intro *models.IntroductionOutput) models.Section {
	subs := []models.Section{
		{Title: "Objectives", Content: bulleted(intro.Objectives)},
		{Title: "Research Questions", Content: bulleted(intro.ResearchQuestions)},
	}
	for i := range subs {
		subs[i].WordCount = subs[i].TotalWords()
	}
	return models.Section{Title: "Introduction", Content: intro.Content, Subsections: subs}
}

func literatureSection(lit *models.LiteratureOutput) models.Section {
	subs := []models.Section{{Title: "Research Gaps", Content: bulleted(lit.ResearchGaps)}}
	subs[0].WordCount = subs[0].TotalWords()
	return models.Section{Title: "Literature Review", Content: lit.Content, Subsections: subs}
}

func methodologySection(meth *models.MethodologyOutput) models.Section {
	subs := []models.Section{
		{Title: "Procedures", Content: bulleted(meth.Procedures)},
		{Title: "Ethical Considerations", Content: meth.EthicalConsiderations},
	}
	for i := range subs {
		subs[i].WordCount = subs[i].TotalWords()
	}
	return models.Section{Title: "Methodology", Content: meth.ResearchDesign, Subsections: subs}
}

func visualizationSection(viz *models.VisualizationOutput) models.Section {
	names := make([]string, 0, len(viz.Diagrams))
	for name := range viz.Diagrams {
		names = append(names, name)
	}
	sort.Strings(names)

	subs := make([]models.Section, 0, len(names))
	for _, name := range names {
		d := viz.Diagrams[name]
		content := d.Description + "\n\n```mermaid\n" + d.MermaidCode + "```"
		subs = append(subs, models.Section{Title: d.Title, Content: content, WordCount: models.CountWords(d.Description)})
	}
	return models.Section{Title: "Visualizations", Subsections: subs}
}

func riskSection(risk *models.RiskOutput) models.Section {
	lines := make([]string, 0, len(risk.Risks))
	for _, r := range risk.Risks {
		lines = append(lines, fmt.Sprintf("%s (likelihood: %s, impact: %s). Mitigation: %s",
			r.Name, r.Likelihood, r.Impact, r.Mitigation))
	}
	subs := []models.Section{
		{Title: "Risk Register", Content: bulleted(lines)},
		{Title: "Contingency Plans", Content: bulleted(risk.ContingencyPlans)},
	}
	for i := range subs {
		subs[i].WordCount = subs[i].TotalWords()
	}
	return models.Section{Title: "Risk Assessment", Content: risk.Content, Subsections: subs}
}

func qaAppendix(qa *models.QAOutput) models.Section {
	criteria := make([]string, 0, len(qa.QualityScores))
	for criterion := range qa.QualityScores {
		criteria = append(criteria, criterion)
	}
	sort.Strings(criteria)
	scores := make([]string, 0, len(criteria))
	for _, criterion := range criteria {
		scores = append(scores, fmt.Sprintf("%s: %.1f/10", criterion, qa.QualityScores[criterion]))
	}

	subs := []models.Section{
		{Title: "Quality Scores", Content: bulleted(scores)},
		{Title: "Reviewer Feedback", Content: bulleted(qa.Feedback)},
	}
	for i := range subs {
		subs[i].WordCount = subs[i].TotalWords()
	}
	return models.Section{Title: "Appendix A: Quality Review", Content: qa.ReviewReport, Subsections: subs}
}

// tableOfContents lists sections at level 1 and subsections at level 2,
// with References between sections and appendices.
func tableOfContents(sections, appendices []models.Section) []models.TOCEntry {
	var toc []models.TOCEntry
	walk := func(list []models.Section) {
		for _, s := range list {
			toc = append(toc, models.TOCEntry{Title: s.Title, Level: 1})
			for _, sub := range s.Subsections {
				toc = append(toc, models.TOCEntry{Title: sub.Title, Level: 2})
			}
		}
	}
	walk(sections)
	toc = append(toc, models.TOCEntry{Title: "References", Level: 1})
	walk(appendices)
	return toc
}

func bulleted(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return "- " + strings.Join(items, "\n- ")
}
