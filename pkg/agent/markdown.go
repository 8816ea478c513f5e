package agent

import "strings"

// mdSections splits LLM output on top-level "# Heading" lines into a
// heading-to-body map. Text before the first heading is keyed "". The
// prompt templates name the headings each agent expects; when a model
// ignores them (notably the mock provider), agents fall back to the
// raw text.
func mdSections(text string) map[string]string {
	sections := map[string]string{}
	current := ""
	var body strings.Builder

	flush := func() {
		if trimmed := strings.TrimSpace(body.String()); trimmed != "" {
			sections[current] = trimmed
		}
		body.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			flush()
			current = strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
			continue
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	flush()
	return sections
}

// mdBullets extracts bullet items ("- x", "* x", "1. x") from a section
// body.
func mdBullets(body string) []string {
	var items []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		var item string
		switch {
		case strings.HasPrefix(trimmed, "- "):
			item = strings.TrimPrefix(trimmed, "- ")
		case strings.HasPrefix(trimmed, "* "):
			item = strings.TrimPrefix(trimmed, "* ")
		default:
			if i := strings.Index(trimmed, ". "); i >= 1 && i <= 3 && isDigits(trimmed[:i]) {
				item = trimmed[i+2:]
			}
		}
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// mdSentences splits text into up to max sentences, for fallbacks when
// the model returned prose instead of the requested bullets.
func mdSentences(text string, max int) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range strings.TrimSpace(text) {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); len(s) > 1 {
				sentences = append(sentences, s)
			}
			current.Reset()
			if len(sentences) == max {
				return sentences
			}
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" && len(sentences) < max {
		sentences = append(sentences, s)
	}
	return sentences
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// sectionOr returns the named section's body, or fallback when absent.
func sectionOr(sections map[string]string, name, fallback string) string {
	if body, ok := sections[name]; ok {
		return body
	}
	return fallback
}
