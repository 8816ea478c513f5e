package prompt

import (
	"sort"
	"strings"

	"github.com/scholarforge/scholarforge/pkg/models"
)

// Builder builds all prompt text for the writing agents. Stateless —
// all state comes from parameters. Thread-safe — no mutable state.
type Builder struct{}

// NewBuilder creates a Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// System returns the system prompt for a task kind.
func (b *Builder) System(kind models.TaskKind) string {
	return SystemPrompt(kind)
}

// LiteratureUser builds the user message for the literature review.
func (b *Builder) LiteratureUser(req *models.ProposalRequest, papers []models.Paper) string {
	var sb strings.Builder
	sb.WriteString(FormatRequestSection(req))
	sb.WriteString("\n")
	sb.WriteString(FormatPapersSection(papers, 25))
	sb.WriteString("\n")
	sb.WriteString(literatureTask)
	return sb.String()
}

// IntroductionUser builds the user message for the introduction,
// grounded in the literature review.
func (b *Builder) IntroductionUser(req *models.ProposalRequest, lit *models.LiteratureOutput) string {
	var sb strings.Builder
	sb.WriteString(FormatRequestSection(req))
	sb.WriteString("\n")
	sb.WriteString(FormatContextSection("Literature Review", lit.Content))
	sb.WriteString("\n")
	sb.WriteString(FormatListSection("Identified Research Gaps", lit.ResearchGaps))
	sb.WriteString("\n")
	sb.WriteString(introductionTask)
	return sb.String()
}

// MethodologyUser builds the user message for the methodology design.
func (b *Builder) MethodologyUser(req *models.ProposalRequest, intro *models.IntroductionOutput) string {
	var sb strings.Builder
	sb.WriteString(FormatRequestSection(req))
	sb.WriteString("\n")
	sb.WriteString(FormatContextSection("Problem Statement", intro.ProblemStatement))
	sb.WriteString("\n")
	sb.WriteString(FormatListSection("Objectives", intro.Objectives))
	sb.WriteString("\n")
	sb.WriteString(FormatListSection("Research Questions", intro.ResearchQuestions))
	sb.WriteString("\n")
	sb.WriteString(methodologyTask)
	return sb.String()
}

// RiskUser builds the user message for the risk assessment.
func (b *Builder) RiskUser(req *models.ProposalRequest, meth *models.MethodologyOutput) string {
	var sb strings.Builder
	sb.WriteString(FormatRequestSection(req))
	sb.WriteString("\n")
	sb.WriteString(FormatContextSection("Research Design", meth.ResearchDesign))
	sb.WriteString("\n")
	sb.WriteString(FormatListSection("Planned Procedures", meth.Procedures))
	sb.WriteString("\n")
	sb.WriteString(riskTask)
	return sb.String()
}

// OptimizerUser builds the user message for the planning pass.
func (b *Builder) OptimizerUser(req *models.ProposalRequest, intro *models.IntroductionOutput, meth *models.MethodologyOutput) string {
	var sb strings.Builder
	sb.WriteString(FormatRequestSection(req))
	sb.WriteString("\n")
	sb.WriteString(FormatListSection("Objectives", intro.Objectives))
	sb.WriteString("\n")
	sb.WriteString(FormatContextSection("Research Design", meth.ResearchDesign))
	sb.WriteString("\n")
	sb.WriteString(FormatListSection("Planned Procedures", meth.Procedures))
	sb.WriteString("\n")
	sb.WriteString(optimizerTask)
	return sb.String()
}

// QAUser builds the user message for the quality review. drafts maps a
// section label to its draft text; sections are rendered in sorted
// label order so the prompt is deterministic.
func (b *Builder) QAUser(req *models.ProposalRequest, drafts map[string]string) string {
	var sb strings.Builder
	sb.WriteString(FormatRequestSection(req))
	sb.WriteString("\n")

	labels := make([]string, 0, len(drafts))
	for label := range drafts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		sb.WriteString(FormatContextSection(label, drafts[label]))
		sb.WriteString("\n")
	}

	sb.WriteString(qaTask)
	return sb.String()
}

// FrontMatterUser builds the user message for abstract and keywords.
func (b *Builder) FrontMatterUser(req *models.ProposalRequest, intro *models.IntroductionOutput, meth *models.MethodologyOutput) string {
	var sb strings.Builder
	sb.WriteString(FormatRequestSection(req))
	sb.WriteString("\n")
	sb.WriteString(FormatContextSection("Problem Statement", intro.ProblemStatement))
	sb.WriteString("\n")
	sb.WriteString(FormatContextSection("Research Design", meth.ResearchDesign))
	sb.WriteString("\n")
	sb.WriteString(frontMatterTask)
	return sb.String()
}
