package models

import (
	"strings"
	"time"
)

// Section is one unit of proposal content. Word counts derive from content;
// they are recomputed on assembly and are not independently authoritative.
type Section struct {
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Subsections []Section `json:"subsections,omitempty"`
	WordCount   int       `json:"word_count"`
}

// TotalWords returns the word count of this section including subsections.
func (s *Section) TotalWords() int {
	total := CountWords(s.Content)
	for i := range s.Subsections {
		total += s.Subsections[i].TotalWords()
	}
	return total
}

// Reference is a formatted bibliographic entry.
type Reference struct {
	Authors   []string `json:"authors"`
	Year      int      `json:"year,omitempty"`
	Title     string   `json:"title"`
	Venue     string   `json:"venue"`
	DOI       string   `json:"doi,omitempty"`
	URL       string   `json:"url,omitempty"`
	Formatted string   `json:"formatted"`
	InText    string   `json:"in_text"`
}

// ProposalMetadata summarizes an assembled proposal.
type ProposalMetadata struct {
	Topic          string     `json:"topic"`
	TotalWordCount int        `json:"total_word_count"`
	AgentsInvolved []TaskKind `json:"agents_involved"`
	PartialSuccess bool       `json:"partial_success,omitempty"`
}

// Proposal is the terminal artifact of a successful job.
type Proposal struct {
	RequestID   string           `json:"request_id"`
	Metadata    ProposalMetadata `json:"metadata"`
	Sections    []Section        `json:"sections"`
	References  []Reference      `json:"references"`
	Appendices  []Section        `json:"appendices,omitempty"`
	Validation  map[string]any   `json:"validation,omitempty"`
	AssembledAt time.Time        `json:"assembled_at"`
}

// CountWords counts whitespace-separated words in s.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
