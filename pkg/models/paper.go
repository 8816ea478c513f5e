package models

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Paper is a normalized literature record returned by source connectors.
type Paper struct {
	PaperID       string   `json:"paper_id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Year          int      `json:"year,omitempty"`
	Abstract      string   `json:"abstract"`
	Venue         string   `json:"venue"`
	CitationCount int      `json:"citation_count"`
	DOI           string   `json:"doi,omitempty"`
	URL           string   `json:"url"`
	Source        string   `json:"source"`
}

// NormalizeTitle canonicalizes a paper title for identity comparison:
// Unicode NFKC, casefold, whitespace collapse.
func NormalizeTitle(title string) string {
	s := norm.NFKC.String(title)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeDOI canonicalizes a DOI for identity comparison.
// DOIs compare case-insensitively; common URL prefixes are stripped.
func NormalizeDOI(doi string) string {
	s := strings.TrimSpace(strings.ToLower(doi))
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "doi:"} {
		s = strings.TrimPrefix(s, prefix)
	}
	return s
}

// SamePaper reports whether two records identify the same paper:
// normalized titles match or DOIs match.
func SamePaper(a, b *Paper) bool {
	if a.DOI != "" && b.DOI != "" && NormalizeDOI(a.DOI) == NormalizeDOI(b.DOI) {
		return true
	}
	return NormalizeTitle(a.Title) == NormalizeTitle(b.Title)
}
