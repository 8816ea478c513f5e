package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposalRequestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		r := ProposalRequest{Topic: "Machine learning for clinical trials", KeyPoints: []string{"one"}}
		assert.NoError(t, r.Validate())
	})

	t.Run("topic too short", func(t *testing.T) {
		r := ProposalRequest{Topic: "  short  "}
		var verr *RequestValidationError
		require.ErrorAs(t, r.Validate(), &verr)
		assert.Equal(t, "topic", verr.Field)
	})

	t.Run("empty key point", func(t *testing.T) {
		r := ProposalRequest{Topic: "A sufficiently long topic", KeyPoints: []string{"ok", "  "}}
		var verr *RequestValidationError
		require.ErrorAs(t, r.Validate(), &verr)
		assert.Equal(t, "key_points", verr.Field)
	})
}

func TestMaxParallelTasksFromPreferences(t *testing.T) {
	r := ProposalRequest{}
	assert.Equal(t, 0, r.MaxParallelTasks(), "absent preference defers to scheduler config")

	r.Preferences = map[string]any{"max_parallel_tasks": float64(2)}
	assert.Equal(t, 2, r.MaxParallelTasks(), "JSON numbers decode as float64")

	r.Preferences = map[string]any{"max_parallel_tasks": 5}
	assert.Equal(t, 5, r.MaxParallelTasks())

	r.Preferences = map[string]any{"max_parallel_tasks": 0}
	assert.Equal(t, 0, r.MaxParallelTasks(), "invalid values defer to scheduler config")
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, NormalizeTitle("Deep  Residual\tLearning"), NormalizeTitle("deep residual learning"))
	assert.Equal(t, NormalizeTitle("Ｆｕｌｌｗｉｄｔｈ"), NormalizeTitle("fullwidth"), "NFKC folds compatibility forms")
}

func TestNormalizeDOI(t *testing.T) {
	assert.Equal(t, "10.1000/xyz", NormalizeDOI("https://doi.org/10.1000/XYZ"))
	assert.Equal(t, "10.1000/xyz", NormalizeDOI("doi:10.1000/xyz"))
	assert.Equal(t, "", NormalizeDOI(""))
}

func TestSamePaper(t *testing.T) {
	a := Paper{Title: "A Title", DOI: "10.1/x"}
	b := Paper{Title: "Completely Different", DOI: "10.1/X"}
	assert.True(t, SamePaper(&a, &b), "DOI match wins over title")

	c := Paper{Title: "a  title"}
	d := Paper{Title: "A Title"}
	assert.True(t, SamePaper(&c, &d), "normalized title match without DOIs")

	e := Paper{Title: "Other", DOI: "10.1/y"}
	assert.False(t, SamePaper(&a, &e))
}

func TestTaskKindValid(t *testing.T) {
	for _, kind := range AllTaskKinds() {
		assert.True(t, kind.Valid(), kind)
	}
	assert.False(t, TaskKind("planning").Valid())
	assert.Len(t, AllTaskKinds(), 11)
}

func TestAgentOutputValidate(t *testing.T) {
	out := AgentOutput{Kind: TaskLiterature, Literature: &LiteratureOutput{Content: "x"}}
	assert.NoError(t, out.Validate())

	missing := AgentOutput{Kind: TaskLiterature}
	assert.Error(t, missing.Validate())

	unknown := AgentOutput{Kind: TaskKind("nope")}
	assert.Error(t, unknown.Validate())
}

func TestAgentOutputJSONRoundTrip(t *testing.T) {
	out := AgentOutput{
		Kind: TaskRisk,
		Risk: &RiskOutput{
			Content: "body",
			Risks:   []RiskItem{{Name: "r", Likelihood: "low", Impact: "high", Mitigation: "m"}},
		},
	}
	data, err := json.Marshal(&out)
	require.NoError(t, err)

	var decoded AgentOutput
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, out, decoded)
	assert.NoError(t, decoded.Validate())
}

func TestSectionTotalWords(t *testing.T) {
	s := Section{
		Content: "one two three",
		Subsections: []Section{
			{Content: "four five"},
			{Content: "six"},
		},
	}
	assert.Equal(t, 6, s.TotalWords())
	assert.Equal(t, 0, CountWords("   "))
}
