package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scholarforge/scholarforge/pkg/models"
)

func TestApaAuthor(t *testing.T) {
	assert.Equal(t, "Doe, J.", apaAuthor("Jane Doe"))
	assert.Equal(t, "Vaswani, A. N.", apaAuthor("Ashish Noam Vaswani"))
	assert.Equal(t, "Plato", apaAuthor("Plato"))
	assert.Equal(t, "", apaAuthor(""))
}

func TestInTextCitation(t *testing.T) {
	cases := []struct {
		authors []string
		year    int
		want    string
	}{
		{[]string{"Jane Doe"}, 2020, "(Doe, 2020)"},
		{[]string{"Jane Doe", "Ann Smith"}, 2020, "(Doe & Smith, 2020)"},
		{[]string{"Jane Doe", "Ann Smith", "Bo Li"}, 2020, "(Doe et al., 2020)"},
		{[]string{"Jane Doe"}, 0, "(Doe, n.d.)"},
	}
	for _, tc := range cases {
		p := models.Paper{Title: "Some Long Title Here", Authors: tc.authors, Year: tc.year}
		assert.Equal(t, tc.want, inTextCitation(&p))
	}
}

func TestFormatAPA(t *testing.T) {
	p := models.Paper{
		Title:   "Attention Is All You Need",
		Authors: []string{"Ashish Vaswani", "Noam Shazeer"},
		Year:    2017,
		Venue:   "NeurIPS",
		DOI:     "10.5555/3295222",
	}
	ref := formatAPA(&p)
	assert.Equal(t, "Vaswani, A., & Shazeer, N. (2017). Attention Is All You Need. NeurIPS. https://doi.org/10.5555/3295222", ref.Formatted)
	assert.Equal(t, "(Vaswani & Shazeer, 2017)", ref.InText)
	assert.Equal(t, 2017, ref.Year)
}
