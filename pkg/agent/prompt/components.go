package prompt

import (
	"fmt"
	"strings"

	"github.com/scholarforge/scholarforge/pkg/models"
)

// FormatRequestSection builds the research request section present in
// every user prompt.
func FormatRequestSection(req *models.ProposalRequest) string {
	var sb strings.Builder
	sb.WriteString("## Research Request\n\n")
	sb.WriteString("**Topic:** ")
	sb.WriteString(req.Topic)
	sb.WriteString("\n")

	if len(req.KeyPoints) > 0 {
		sb.WriteString("\n**Key Points:**\n")
		for _, kp := range req.KeyPoints {
			sb.WriteString("- ")
			sb.WriteString(kp)
			sb.WriteString("\n")
		}
	}
	if req.Author != "" {
		fmt.Fprintf(&sb, "\n**Author:** %s", req.Author)
		if req.Institution != "" {
			fmt.Fprintf(&sb, ", %s", req.Institution)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatPapersSection lists retrieved papers for the literature prompt.
// max bounds how many are included; zero means all.
func FormatPapersSection(papers []models.Paper, max int) string {
	if len(papers) == 0 {
		return "## Retrieved Papers\nNo papers were retrieved. Note the lack of directly relevant prior work.\n"
	}
	if max > 0 && len(papers) > max {
		papers = papers[:max]
	}

	var sb strings.Builder
	sb.WriteString("## Retrieved Papers\n\n")
	for i, p := range papers {
		fmt.Fprintf(&sb, "%d. **%s**", i+1, p.Title)
		if len(p.Authors) > 0 {
			fmt.Fprintf(&sb, " — %s", strings.Join(p.Authors, ", "))
		}
		if p.Year > 0 {
			fmt.Fprintf(&sb, " (%d)", p.Year)
		}
		if p.Venue != "" {
			fmt.Fprintf(&sb, ". %s", p.Venue)
		}
		fmt.Fprintf(&sb, ". Citations: %d.\n", p.CitationCount)
		if p.Abstract != "" {
			fmt.Fprintf(&sb, "   Abstract: %.500s\n", p.Abstract)
		}
	}
	return sb.String()
}

// FormatContextSection wraps upstream agent output passed as context.
// title names the source, e.g. "Literature Review".
func FormatContextSection(title, content string) string {
	if content == "" {
		return fmt.Sprintf("## %s\nNot available.\n", title)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", title)
	sb.WriteString(content)
	sb.WriteString("\n")
	return sb.String()
}

// FormatListSection renders a titled bullet list, or nothing when the
// list is empty.
func FormatListSection(title string, items []string) string {
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", title)
	for _, item := range items {
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	return sb.String()
}
