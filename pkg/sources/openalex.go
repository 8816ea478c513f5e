package sources

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/scholarforge/scholarforge/pkg/models"
	"github.com/scholarforge/scholarforge/pkg/store"
)

const (
	openAlexName    = "openalex"
	openAlexBaseURL = "https://api.openalex.org"
)

// OpenAlexConnector queries the OpenAlex works API. OpenAlex allows
// around 10 requests per second; a mailto parameter opts into the
// polite pool.
type OpenAlexConnector struct {
	rest    *restClient
	cache   *queryCache
	baseURL string
	mailto  string
}

// NewOpenAlex builds the connector. st may be nil to disable caching.
func NewOpenAlex(st store.Store, cacheTTL, timeout time.Duration, maxAttempts int) *OpenAlexConnector {
	return &OpenAlexConnector{
		rest:    newRESTClient(openAlexName, rateLimits{PerSecond: 10, PerMinute: 600}, timeout, maxAttempts),
		cache:   &queryCache{store: st, ttl: cacheTTL, source: openAlexName},
		baseURL: openAlexBaseURL,
	}
}

// WithMailto adds the contact address OpenAlex asks for on heavy use.
func (c *OpenAlexConnector) WithMailto(addr string) *OpenAlexConnector {
	c.mailto = addr
	return c
}

// Name implements Connector.
func (c *OpenAlexConnector) Name() string { return openAlexName }

type openAlexWork struct {
	ID              string `json:"id"`
	DisplayName     string `json:"display_name"`
	PublicationYear int    `json:"publication_year"`
	DOI             string `json:"doi"`
	CitedByCount    int    `json:"cited_by_count"`
	Authorships     []struct {
		Author struct {
			DisplayName string `json:"display_name"`
		} `json:"author"`
	} `json:"authorships"`
	PrimaryLocation struct {
		Source struct {
			DisplayName string `json:"display_name"`
		} `json:"source"`
		LandingPageURL string `json:"landing_page_url"`
	} `json:"primary_location"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
}

type openAlexSearchResponse struct {
	Results []openAlexWork `json:"results"`
}

// Search implements Connector.
func (c *OpenAlexConnector) Search(ctx context.Context, q Query) ([]models.Paper, error) {
	key := c.cache.searchKey(q)
	if q.UseCache {
		if papers, ok := c.cache.getPapers(ctx, key); ok {
			return papers, nil
		}
	}

	params := url.Values{}
	params.Set("search", q.Text)
	params.Set("per-page", fmt.Sprintf("%d", q.Limit))
	if year := q.Filters["year"]; year != "" {
		params.Set("filter", "publication_year:"+year)
	}
	if c.mailto != "" {
		params.Set("mailto", c.mailto)
	}

	var resp openAlexSearchResponse
	u := c.baseURL + "/works?" + params.Encode()
	if err := c.rest.getJSON(ctx, u, nil, &resp); err != nil {
		return nil, err
	}

	papers := make([]models.Paper, 0, len(resp.Results))
	for _, raw := range resp.Results {
		papers = append(papers, c.normalize(raw))
	}
	if q.UseCache {
		c.cache.putPapers(ctx, key, papers)
	}
	return papers, nil
}

// Get implements Connector. paperID is an OpenAlex work ID such as
// "W2741809807", or a full OpenAlex URL.
func (c *OpenAlexConnector) Get(ctx context.Context, paperID string, useCache bool) (*models.Paper, error) {
	id := paperID
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}

	key := c.cache.paperKey(id)
	if useCache {
		if papers, ok := c.cache.getPapers(ctx, key); ok && len(papers) == 1 {
			return &papers[0], nil
		}
	}

	var raw openAlexWork
	u := c.baseURL + "/works/" + url.PathEscape(id)
	if c.mailto != "" {
		u += "?mailto=" + url.QueryEscape(c.mailto)
	}
	if err := c.rest.getJSON(ctx, u, nil, &raw); err != nil {
		return nil, err
	}
	paper := c.normalize(raw)
	if useCache {
		c.cache.putPapers(ctx, key, []models.Paper{paper})
	}
	return &paper, nil
}

// Health implements Connector.
func (c *OpenAlexConnector) Health() *Health { return c.rest.health() }

func (c *OpenAlexConnector) normalize(raw openAlexWork) models.Paper {
	authors := make([]string, 0, len(raw.Authorships))
	for _, a := range raw.Authorships {
		if a.Author.DisplayName != "" {
			authors = append(authors, a.Author.DisplayName)
		}
	}
	return models.Paper{
		PaperID:       strings.TrimPrefix(raw.ID, "https://openalex.org/"),
		Title:         raw.DisplayName,
		Authors:       authors,
		Year:          raw.PublicationYear,
		Abstract:      invertAbstract(raw.AbstractInvertedIndex),
		Venue:         raw.PrimaryLocation.Source.DisplayName,
		CitationCount: raw.CitedByCount,
		DOI:           models.NormalizeDOI(raw.DOI),
		URL:           raw.PrimaryLocation.LandingPageURL,
		Source:        openAlexName,
	}
}

// invertAbstract reconstructs abstract text from OpenAlex's inverted
// index, which maps each word to the positions it occupies.
func invertAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}
	type posWord struct {
		pos  int
		word string
	}
	var entries []posWord
	for word, positions := range index {
		for _, pos := range positions {
			entries = append(entries, posWord{pos: pos, word: word})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].pos < entries[j].pos })

	words := make([]string, 0, len(entries))
	for _, e := range entries {
		words = append(words, e.word)
	}
	return strings.Join(words, " ")
}
