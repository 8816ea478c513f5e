package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarforge/scholarforge/pkg/models"
	"github.com/scholarforge/scholarforge/pkg/store"
)

func TestMergePapers(t *testing.T) {
	t.Run("duplicate by DOI keeps higher citation count", func(t *testing.T) {
		a := []models.Paper{{Title: "Attention Is All You Need", DOI: "10.1000/x", CitationCount: 10, Source: "crossref"}}
		b := []models.Paper{{Title: "Attention is all you need", DOI: "10.1000/x", CitationCount: 90000, Abstract: "The dominant sequence transduction models", Source: "semantic_scholar"}}

		merged := MergePapers(a, b)
		require.Len(t, merged, 1)
		assert.Equal(t, 90000, merged[0].CitationCount)
		assert.Equal(t, "semantic_scholar", merged[0].Source)
	})

	t.Run("duplicate by normalized title without DOI", func(t *testing.T) {
		a := []models.Paper{{Title: "Deep  Residual Learning", CitationCount: 5}}
		b := []models.Paper{{Title: "deep residual learning", CitationCount: 3, Venue: "CVPR"}}

		merged := MergePapers(a, b)
		require.Len(t, merged, 1)
		assert.Equal(t, 5, merged[0].CitationCount)
		assert.Equal(t, "CVPR", merged[0].Venue, "missing fields filled from the duplicate")
	})

	t.Run("distinct papers are kept", func(t *testing.T) {
		a := []models.Paper{{Title: "Paper One", DOI: "10.1/a"}}
		b := []models.Paper{{Title: "Paper Two", DOI: "10.1/b"}}

		merged := MergePapers(a, b)
		assert.Len(t, merged, 2)
	})
}

func TestInvertAbstract(t *testing.T) {
	index := map[string][]int{
		"models":   {3},
		"the":      {0},
		"dominant": {1},
		"sequence": {2},
	}
	assert.Equal(t, "the dominant sequence models", invertAbstract(index))
	assert.Equal(t, "", invertAbstract(nil))
}

func TestStripJATS(t *testing.T) {
	in := "<jats:p>We present a <jats:italic>novel</jats:italic> approach.</jats:p>"
	assert.Equal(t, "We present a novel approach.", stripJATS(in))
	assert.Equal(t, "plain text", stripJATS("plain text"))
}

func TestSemanticScholarSearch(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/paper/search", r.URL.Path)
		assert.Equal(t, "graph neural networks", r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"total": 1,
			"data": [{
				"paperId": "abc123",
				"title": "Graph Neural Networks: A Review",
				"abstract": "We survey GNNs.",
				"year": 2021,
				"venue": "IEEE TNNLS",
				"citationCount": 4210,
				"url": "https://example.org/abc123",
				"authors": [{"name": "A. Author"}, {"name": "B. Author"}],
				"externalIds": {"DOI": "10.1109/TNNLS.2021.123"}
			}]
		}`))
	}))
	defer srv.Close()

	st := store.NewMemoryStore()
	conn := NewSemanticScholar(st, time.Hour, 5*time.Second, 1)
	conn.baseURL = srv.URL

	q := Query{Text: "graph neural networks", Limit: 10, UseCache: true}
	papers, err := conn.Search(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, papers, 1)

	p := papers[0]
	assert.Equal(t, "abc123", p.PaperID)
	assert.Equal(t, "Graph Neural Networks: A Review", p.Title)
	assert.Equal(t, []string{"A. Author", "B. Author"}, p.Authors)
	assert.Equal(t, 2021, p.Year)
	assert.Equal(t, 4210, p.CitationCount)
	assert.Equal(t, "10.1109/tnnls.2021.123", p.DOI)
	assert.Equal(t, "semantic_scholar", p.Source)

	// Second identical search is served from the cache.
	again, err := conn.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, papers, again)
	assert.Equal(t, int64(1), hits.Load())

	h := conn.Health()
	assert.True(t, h.Healthy)
	assert.Equal(t, int64(1), h.Requests)
}

func TestSemanticScholarRetriesTransient(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"total": 0, "data": []}`))
	}))
	defer srv.Close()

	conn := NewSemanticScholar(nil, 0, 5*time.Second, 3)
	conn.baseURL = srv.URL
	conn.rest.retryBase = time.Millisecond

	papers, err := conn.Search(context.Background(), Query{Text: "x", Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, papers)
	assert.Equal(t, int64(2), hits.Load())
}

func TestCrossrefGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/works/10.1000%2Fxyz", r.URL.EscapedPath())
		assert.Contains(t, r.Header.Get("User-Agent"), "scholarforge")
		_, _ = w.Write([]byte(`{
			"message": {
				"DOI": "10.1000/XYZ",
				"title": ["A Study of Things"],
				"author": [{"given": "Jane", "family": "Doe"}],
				"container-title": ["Journal of Things"],
				"issued": {"date-parts": [[2019, 4]]},
				"is-referenced-by-count": 17,
				"URL": "https://doi.org/10.1000/xyz",
				"abstract": "<jats:p>Things were studied.</jats:p>"
			}
		}`))
	}))
	defer srv.Close()

	conn := NewCrossref(nil, 0, 5*time.Second, 1)
	conn.baseURL = srv.URL

	p, err := conn.Get(context.Background(), "https://doi.org/10.1000/XYZ", false)
	require.NoError(t, err)
	assert.Equal(t, "10.1000/xyz", p.DOI)
	assert.Equal(t, "A Study of Things", p.Title)
	assert.Equal(t, []string{"Jane Doe"}, p.Authors)
	assert.Equal(t, 2019, p.Year)
	assert.Equal(t, "Journal of Things", p.Venue)
	assert.Equal(t, 17, p.CitationCount)
	assert.Equal(t, "Things were studied.", p.Abstract)
}

func TestOpenAlexNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	conn := NewOpenAlex(nil, 0, 5*time.Second, 3)
	conn.baseURL = srv.URL

	_, err := conn.Get(context.Background(), "W000", false)
	require.Error(t, err)
	assert.ErrorContains(t, err, "not found")

	h := conn.Health()
	assert.False(t, h.Healthy)
	assert.Equal(t, int64(1), h.Requests, "permanent failures are not retried")
}

// stubConnector is a canned Connector for multiplexer tests.
type stubConnector struct {
	name   string
	papers []models.Paper
	err    error
}

func (s *stubConnector) Name() string { return s.name }

func (s *stubConnector) Search(_ context.Context, _ Query) ([]models.Paper, error) {
	return s.papers, s.err
}

func (s *stubConnector) Get(_ context.Context, _ string, _ bool) (*models.Paper, error) {
	if len(s.papers) == 0 {
		return nil, s.err
	}
	return &s.papers[0], s.err
}

func (s *stubConnector) Health() *Health {
	return &Health{Name: s.name, Healthy: s.err == nil}
}

func TestMultiplexerMergesAcrossSources(t *testing.T) {
	mux := NewMultiplexer(
		&stubConnector{name: "a", papers: []models.Paper{
			{Title: "Shared Paper", DOI: "10.1/shared", CitationCount: 10},
			{Title: "Only In A", DOI: "10.1/a", CitationCount: 3},
		}},
		&stubConnector{name: "b", papers: []models.Paper{
			{Title: "Shared Paper", DOI: "10.1/shared", CitationCount: 25},
			{Title: "Only In B", DOI: "10.1/b", CitationCount: 7},
		}},
	)

	papers, err := mux.Search(context.Background(), Query{Text: "q", Limit: 10})
	require.NoError(t, err)
	require.Len(t, papers, 3)
	assert.Equal(t, "Shared Paper", papers[0].Title)
	assert.Equal(t, 25, papers[0].CitationCount)
	assert.Equal(t, "Only In B", papers[1].Title)
	assert.Equal(t, "Only In A", papers[2].Title)
}

func TestMultiplexerToleratesPartialFailure(t *testing.T) {
	mux := NewMultiplexer(
		&stubConnector{name: "down", err: context.DeadlineExceeded},
		&stubConnector{name: "up", papers: []models.Paper{{Title: "Still Here", DOI: "10.1/x"}}},
	)

	papers, err := mux.Search(context.Background(), Query{Text: "q", Limit: 10})
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "Still Here", papers[0].Title)
}

func TestMultiplexerFailsWhenAllSourcesFail(t *testing.T) {
	mux := NewMultiplexer(
		&stubConnector{name: "a", err: assert.AnError},
		&stubConnector{name: "b", err: assert.AnError},
	)

	_, err := mux.Search(context.Background(), Query{Text: "q", Limit: 10})
	require.Error(t, err)
	assert.ErrorContains(t, err, "all 2 sources failed")
}

func TestMultiplexerLimitTruncatesMerged(t *testing.T) {
	mux := NewMultiplexer(&stubConnector{name: "a", papers: []models.Paper{
		{Title: "P1", DOI: "10.1/1", CitationCount: 3},
		{Title: "P2", DOI: "10.1/2", CitationCount: 2},
		{Title: "P3", DOI: "10.1/3", CitationCount: 1},
	}})

	papers, err := mux.Search(context.Background(), Query{Text: "q", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, papers, 2)
}
