package sources

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/scholarforge/scholarforge/pkg/agent"
	"github.com/scholarforge/scholarforge/pkg/models"
)

// Multiplexer fans a search out to every registered connector in
// parallel and merges the deduplicated results. Individual connector
// failures are tolerated; the search fails only when every connector
// does.
type Multiplexer struct {
	connectors []Connector
}

// NewMultiplexer builds a multiplexer over the given connectors.
func NewMultiplexer(connectors ...Connector) *Multiplexer {
	return &Multiplexer{connectors: connectors}
}

// Connectors returns the registered connectors.
func (m *Multiplexer) Connectors() []Connector { return m.connectors }

// Search implements the fan-out. Results are merged with MergePapers
// and sorted by citation count descending, title ascending, so the
// same inputs always yield the same ordering.
func (m *Multiplexer) Search(ctx context.Context, q Query) ([]models.Paper, error) {
	if len(m.connectors) == 0 {
		return nil, agent.Internalf(nil, "no source connectors configured")
	}

	var mu sync.Mutex
	sets := make([][]models.Paper, 0, len(m.connectors))
	var errs []error

	g, gctx := errgroup.WithContext(ctx)
	for _, conn := range m.connectors {
		g.Go(func() error {
			papers, err := conn.Search(gctx, q)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Warn("Source search failed", "source", conn.Name(), "error", err)
				errs = append(errs, fmt.Errorf("%s: %w", conn.Name(), err))
				return nil
			}
			sets = append(sets, papers)
			return nil
		})
	}
	_ = g.Wait()

	if len(sets) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, agent.Transientf(errs[0], "all %d sources failed", len(errs))
	}

	merged := MergePapers(sets...)
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].CitationCount != merged[j].CitationCount {
			return merged[i].CitationCount > merged[j].CitationCount
		}
		return merged[i].Title < merged[j].Title
	})
	if q.Limit > 0 && len(merged) > q.Limit {
		merged = merged[:q.Limit]
	}
	return merged, nil
}

// SearchTopic implements the literature agent's search contract with
// caching enabled.
func (m *Multiplexer) SearchTopic(ctx context.Context, topic string, limit int) ([]models.Paper, error) {
	return m.Search(ctx, Query{Text: topic, Limit: limit, UseCache: true})
}

// HealthAll reports every connector's health, sorted by name.
func (m *Multiplexer) HealthAll() []*Health {
	out := make([]*Health, 0, len(m.connectors))
	for _, conn := range m.connectors {
		out = append(out, conn.Health())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
