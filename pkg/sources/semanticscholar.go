package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/scholarforge/scholarforge/pkg/models"
	"github.com/scholarforge/scholarforge/pkg/store"
)

const (
	semanticScholarName    = "semantic_scholar"
	semanticScholarBaseURL = "https://api.semanticscholar.org/graph/v1"
	semanticScholarFields  = "title,authors,year,abstract,venue,citationCount,externalIds,url"
)

// SemanticScholarConnector queries the Semantic Scholar Graph API.
// The public tier allows roughly 1 request per second and 100 per
// minute; an API key raises the per-minute ceiling.
type SemanticScholarConnector struct {
	rest    *restClient
	cache   *queryCache
	baseURL string
	apiKey  string
}

// NewSemanticScholar builds the connector. st may be nil to disable caching.
func NewSemanticScholar(st store.Store, cacheTTL, timeout time.Duration, maxAttempts int) *SemanticScholarConnector {
	return &SemanticScholarConnector{
		rest:    newRESTClient(semanticScholarName, rateLimits{PerSecond: 1, PerMinute: 100}, timeout, maxAttempts),
		cache:   &queryCache{store: st, ttl: cacheTTL, source: semanticScholarName},
		baseURL: semanticScholarBaseURL,
	}
}

// WithAPIKey sets the x-api-key header on subsequent requests.
func (c *SemanticScholarConnector) WithAPIKey(key string) *SemanticScholarConnector {
	c.apiKey = key
	return c
}

// Name implements Connector.
func (c *SemanticScholarConnector) Name() string { return semanticScholarName }

type s2Paper struct {
	PaperID  string `json:"paperId"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Year     int    `json:"year"`
	Venue    string `json:"venue"`
	URL      string `json:"url"`
	Citation int    `json:"citationCount"`
	Authors  []struct {
		Name string `json:"name"`
	} `json:"authors"`
	ExternalIDs struct {
		DOI string `json:"DOI"`
	} `json:"externalIds"`
}

type s2SearchResponse struct {
	Total int       `json:"total"`
	Data  []s2Paper `json:"data"`
}

// Search implements Connector.
func (c *SemanticScholarConnector) Search(ctx context.Context, q Query) ([]models.Paper, error) {
	key := c.cache.searchKey(q)
	if q.UseCache {
		if papers, ok := c.cache.getPapers(ctx, key); ok {
			return papers, nil
		}
	}

	params := url.Values{}
	params.Set("query", q.Text)
	params.Set("limit", fmt.Sprintf("%d", q.Limit))
	params.Set("fields", semanticScholarFields)
	if year := q.Filters["year"]; year != "" {
		params.Set("year", year)
	}

	var resp s2SearchResponse
	u := c.baseURL + "/paper/search?" + params.Encode()
	if err := c.rest.getJSON(ctx, u, c.header(), &resp); err != nil {
		return nil, err
	}

	papers := make([]models.Paper, 0, len(resp.Data))
	for _, raw := range resp.Data {
		papers = append(papers, c.normalize(raw))
	}
	if q.UseCache {
		c.cache.putPapers(ctx, key, papers)
	}
	return papers, nil
}

// Get implements Connector.
func (c *SemanticScholarConnector) Get(ctx context.Context, paperID string, useCache bool) (*models.Paper, error) {
	key := c.cache.paperKey(paperID)
	if useCache {
		if papers, ok := c.cache.getPapers(ctx, key); ok && len(papers) == 1 {
			return &papers[0], nil
		}
	}

	var raw s2Paper
	u := fmt.Sprintf("%s/paper/%s?fields=%s", c.baseURL, url.PathEscape(paperID), semanticScholarFields)
	if err := c.rest.getJSON(ctx, u, c.header(), &raw); err != nil {
		return nil, err
	}
	paper := c.normalize(raw)
	if useCache {
		c.cache.putPapers(ctx, key, []models.Paper{paper})
	}
	return &paper, nil
}

// Health implements Connector.
func (c *SemanticScholarConnector) Health() *Health { return c.rest.health() }

func (c *SemanticScholarConnector) header() http.Header {
	if c.apiKey == "" {
		return nil
	}
	h := http.Header{}
	h.Set("x-api-key", c.apiKey)
	return h
}

func (c *SemanticScholarConnector) normalize(raw s2Paper) models.Paper {
	authors := make([]string, 0, len(raw.Authors))
	for _, a := range raw.Authors {
		if a.Name != "" {
			authors = append(authors, a.Name)
		}
	}
	return models.Paper{
		PaperID:       raw.PaperID,
		Title:         raw.Title,
		Authors:       authors,
		Year:          raw.Year,
		Abstract:      raw.Abstract,
		Venue:         raw.Venue,
		CitationCount: raw.Citation,
		DOI:           models.NormalizeDOI(raw.ExternalIDs.DOI),
		URL:           raw.URL,
		Source:        semanticScholarName,
	}
}
