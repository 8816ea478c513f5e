package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/scholarforge/scholarforge/pkg/models"
	"github.com/scholarforge/scholarforge/pkg/store"
)

const (
	crossrefName    = "crossref"
	crossrefBaseURL = "https://api.crossref.org"
)

// CrossrefConnector queries the Crossref REST API. The polite pool
// (identified by a mailto in the User-Agent) allows roughly 50
// requests per second.
type CrossrefConnector struct {
	rest    *restClient
	cache   *queryCache
	baseURL string
	mailto  string
}

// NewCrossref builds the connector. st may be nil to disable caching.
func NewCrossref(st store.Store, cacheTTL, timeout time.Duration, maxAttempts int) *CrossrefConnector {
	return &CrossrefConnector{
		rest:    newRESTClient(crossrefName, rateLimits{PerSecond: 50, PerMinute: 3000}, timeout, maxAttempts),
		cache:   &queryCache{store: st, ttl: cacheTTL, source: crossrefName},
		baseURL: crossrefBaseURL,
	}
}

// WithMailto joins the Crossref polite pool.
func (c *CrossrefConnector) WithMailto(addr string) *CrossrefConnector {
	c.mailto = addr
	return c
}

// Name implements Connector.
func (c *CrossrefConnector) Name() string { return crossrefName }

type crossrefWork struct {
	DOI    string   `json:"DOI"`
	Title  []string `json:"title"`
	URL    string   `json:"URL"`
	Author []struct {
		Given  string `json:"given"`
		Family string `json:"family"`
	} `json:"author"`
	ContainerTitle []string `json:"container-title"`
	Abstract       string   `json:"abstract"`
	Referenced     int      `json:"is-referenced-by-count"`
	Issued         struct {
		DateParts [][]int `json:"date-parts"`
	} `json:"issued"`
}

type crossrefSearchResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefWorkResponse struct {
	Message crossrefWork `json:"message"`
}

// Search implements Connector.
func (c *CrossrefConnector) Search(ctx context.Context, q Query) ([]models.Paper, error) {
	key := c.cache.searchKey(q)
	if q.UseCache {
		if papers, ok := c.cache.getPapers(ctx, key); ok {
			return papers, nil
		}
	}

	params := url.Values{}
	params.Set("query", q.Text)
	params.Set("rows", fmt.Sprintf("%d", q.Limit))
	if year := q.Filters["year"]; year != "" {
		params.Set("filter", "from-pub-date:"+year+"-01-01,until-pub-date:"+year+"-12-31")
	}

	var resp crossrefSearchResponse
	u := c.baseURL + "/works?" + params.Encode()
	if err := c.rest.getJSON(ctx, u, c.header(), &resp); err != nil {
		return nil, err
	}

	papers := make([]models.Paper, 0, len(resp.Message.Items))
	for _, raw := range resp.Message.Items {
		papers = append(papers, c.normalize(raw))
	}
	if q.UseCache {
		c.cache.putPapers(ctx, key, papers)
	}
	return papers, nil
}

// Get implements Connector. paperID is a DOI.
func (c *CrossrefConnector) Get(ctx context.Context, paperID string, useCache bool) (*models.Paper, error) {
	doi := models.NormalizeDOI(paperID)

	key := c.cache.paperKey(doi)
	if useCache {
		if papers, ok := c.cache.getPapers(ctx, key); ok && len(papers) == 1 {
			return &papers[0], nil
		}
	}

	var resp crossrefWorkResponse
	u := c.baseURL + "/works/" + url.PathEscape(doi)
	if err := c.rest.getJSON(ctx, u, c.header(), &resp); err != nil {
		return nil, err
	}
	paper := c.normalize(resp.Message)
	if useCache {
		c.cache.putPapers(ctx, key, []models.Paper{paper})
	}
	return &paper, nil
}

// Health implements Connector.
func (c *CrossrefConnector) Health() *Health { return c.rest.health() }

func (c *CrossrefConnector) header() http.Header {
	h := http.Header{}
	ua := "scholarforge/1.0"
	if c.mailto != "" {
		ua += " (mailto:" + c.mailto + ")"
	}
	h.Set("User-Agent", ua)
	return h
}

func (c *CrossrefConnector) normalize(raw crossrefWork) models.Paper {
	authors := make([]string, 0, len(raw.Author))
	for _, a := range raw.Author {
		name := strings.TrimSpace(a.Given + " " + a.Family)
		if name != "" {
			authors = append(authors, name)
		}
	}
	year := 0
	if len(raw.Issued.DateParts) > 0 && len(raw.Issued.DateParts[0]) > 0 {
		year = raw.Issued.DateParts[0][0]
	}
	title := ""
	if len(raw.Title) > 0 {
		title = raw.Title[0]
	}
	venue := ""
	if len(raw.ContainerTitle) > 0 {
		venue = raw.ContainerTitle[0]
	}
	doi := models.NormalizeDOI(raw.DOI)
	return models.Paper{
		PaperID:       doi,
		Title:         title,
		Authors:       authors,
		Year:          year,
		Abstract:      stripJATS(raw.Abstract),
		Venue:         venue,
		CitationCount: raw.Referenced,
		DOI:           doi,
		URL:           raw.URL,
		Source:        crossrefName,
	}
}

// stripJATS removes the JATS XML tags Crossref wraps abstracts in.
func stripJATS(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
