package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMdSections(t *testing.T) {
	text := "preamble\n# Review\nbody one\nbody two\n\n# Research Gaps\n- gap a\n- gap b\n"
	sections := mdSections(text)

	assert.Equal(t, "preamble", sections[""])
	assert.Equal(t, "body one\nbody two", sections["Review"])
	assert.Contains(t, sections["Research Gaps"], "gap a")
}

func TestMdSectionsWithoutHeadings(t *testing.T) {
	sections := mdSections("just plain prose with no structure")
	assert.Equal(t, "just plain prose with no structure", sections[""])
	assert.Len(t, sections, 1)
}

func TestMdBullets(t *testing.T) {
	body := "- dash item\n* star item\n1. numbered item\nnot a bullet\n-\n"
	assert.Equal(t, []string{"dash item", "star item", "numbered item"}, mdBullets(body))
}

func TestMdSentences(t *testing.T) {
	text := "First sentence. Second one! Third? Fourth."
	assert.Equal(t, []string{"First sentence.", "Second one!", "Third?"}, mdSentences(text, 3))
	assert.Equal(t, []string{"No terminator here"}, mdSentences("No terminator here", 5))
}

func TestSectionOr(t *testing.T) {
	sections := map[string]string{"A": "body"}
	assert.Equal(t, "body", sectionOr(sections, "A", "fb"))
	assert.Equal(t, "fb", sectionOr(sections, "B", "fb"))
}
