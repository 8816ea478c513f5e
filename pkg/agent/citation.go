package agent

import (
	"fmt"
	"strings"

	"github.com/scholarforge/scholarforge/pkg/models"
)

// surname returns the family name from a full author name, assuming the
// Western name order the source APIs return.
func surname(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// apaAuthor renders "Surname, F. M." from a full name.
func apaAuthor(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}
	var initials []string
	for _, given := range parts[:len(parts)-1] {
		r := []rune(given)
		initials = append(initials, strings.ToUpper(string(r[0]))+".")
	}
	return parts[len(parts)-1] + ", " + strings.Join(initials, " ")
}

// inTextCitation renders the APA in-text form for a paper:
// "(Doe, 2020)", "(Doe & Smith, 2020)", "(Doe et al., 2020)".
func inTextCitation(p *models.Paper) string {
	year := "n.d."
	if p.Year > 0 {
		year = fmt.Sprintf("%d", p.Year)
	}
	switch len(p.Authors) {
	case 0:
		return fmt.Sprintf("(%s, %s)", firstWords(p.Title, 3), year)
	case 1:
		return fmt.Sprintf("(%s, %s)", surname(p.Authors[0]), year)
	case 2:
		return fmt.Sprintf("(%s & %s, %s)", surname(p.Authors[0]), surname(p.Authors[1]), year)
	default:
		return fmt.Sprintf("(%s et al., %s)", surname(p.Authors[0]), year)
	}
}

// formatAPA renders a full APA reference entry for a paper.
func formatAPA(p *models.Paper) models.Reference {
	var sb strings.Builder

	switch len(p.Authors) {
	case 0:
		sb.WriteString(p.Title)
	case 1:
		sb.WriteString(apaAuthor(p.Authors[0]))
	default:
		formatted := make([]string, 0, len(p.Authors))
		for _, a := range p.Authors {
			formatted = append(formatted, apaAuthor(a))
		}
		sb.WriteString(strings.Join(formatted[:len(formatted)-1], ", "))
		sb.WriteString(", & ")
		sb.WriteString(formatted[len(formatted)-1])
	}

	if p.Year > 0 {
		fmt.Fprintf(&sb, " (%d).", p.Year)
	} else {
		sb.WriteString(" (n.d.).")
	}
	if len(p.Authors) > 0 {
		fmt.Fprintf(&sb, " %s.", strings.TrimSuffix(p.Title, "."))
	}
	if p.Venue != "" {
		fmt.Fprintf(&sb, " %s.", strings.TrimSuffix(p.Venue, "."))
	}
	switch {
	case p.DOI != "":
		fmt.Fprintf(&sb, " https://doi.org/%s", p.DOI)
	case p.URL != "":
		fmt.Fprintf(&sb, " %s", p.URL)
	}

	return models.Reference{
		Authors:   p.Authors,
		Year:      p.Year,
		Title:     p.Title,
		Venue:     p.Venue,
		DOI:       p.DOI,
		URL:       p.URL,
		Formatted: sb.String(),
		InText:    inTextCitation(p),
	}
}

// firstWords returns up to n leading words of s.
func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
