package sheet

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/abristow3/Hunt-Bot/internal/domain"
	"github.com/abristow3/Hunt-Bot/internal/metrics"
)

// Provider caches the most recent grid of one sheet together with its table
// map. Refresh replaces the cache atomically; concurrent refreshes collapse
// into a single fetch. Readers always see a complete snapshot.
type Provider struct {
	source    domain.SheetSource
	sheetName string

	group singleflight.Group

	mu     sync.RWMutex
	grid   [][]string
	tables TableMap
}

func NewProvider(source domain.SheetSource, sheetName string) *Provider {
	return &Provider{source: source, sheetName: sheetName}
}

// Refresh re-fetches the grid and rebuilds the table map. An empty grid
// means the fetch failed upstream; the previous snapshot is kept.
func (p *Provider) Refresh(ctx context.Context) error {
	_, err, _ := p.group.Do("refresh", func() (any, error) {
		grid := p.source.Rows(ctx, p.sheetName)
		if len(grid) == 0 {
			metrics.SheetRefreshes.WithLabelValues("failure").Inc()
			return nil, &domain.Error{
				Kind:    domain.KindInternal,
				Message: "sheet returned no rows",
				Context: map[string]any{"sheet": p.sheetName},
			}
		}

		tables := BuildTableMap(grid)

		p.mu.Lock()
		p.grid = grid
		p.tables = tables
		p.mu.Unlock()

		metrics.SheetRefreshes.WithLabelValues("success").Inc()
		return nil, nil
	})
	return err
}

// Table extracts the named table from the cached grid. Unknown names and a
// never-refreshed provider both yield an empty record set.
func (p *Provider) Table(name string) RecordSet {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return PullTable(p.grid, p.tables, name)
}

// Tables returns the cached table map.
func (p *Provider) Tables() TableMap {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tables
}
