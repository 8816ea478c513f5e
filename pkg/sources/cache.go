package sources

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/scholarforge/scholarforge/pkg/models"
	"github.com/scholarforge/scholarforge/pkg/store"
)

// queryCache caches connector responses through the State Store under
// the canonical sha256(query|filters|source) key. Cache failures are
// logged and ignored — the store is advisory here.
type queryCache struct {
	store  store.Store
	ttl    time.Duration
	source string
}

func (c *queryCache) searchKey(q Query) string {
	return store.QueryHash(fmt.Sprintf("%s|limit=%d", q.Text, q.Limit), q.Filters, c.source)
}

func (c *queryCache) paperKey(paperID string) string {
	return store.QueryHash("paper:"+paperID, nil, c.source)
}

func (c *queryCache) getPapers(ctx context.Context, key string) ([]models.Paper, bool) {
	if c.store == nil {
		return nil, false
	}
	var papers []models.Paper
	ok, err := store.CacheGet(ctx, c.store, key, &papers)
	if err != nil {
		slog.Warn("Connector cache read failed", "source", c.source, "error", err)
		return nil, false
	}
	return papers, ok
}

func (c *queryCache) putPapers(ctx context.Context, key string, papers []models.Paper) {
	if c.store == nil {
		return
	}
	if err := store.CacheSet(ctx, c.store, key, papers, c.ttl); err != nil {
		slog.Warn("Connector cache write failed", "source", c.source, "error", err)
	}
}
