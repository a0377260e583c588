// Package imgcache memoizes catalog lookups and image fetches for the
// duration of a single run. There is no cross-run persistence.
package imgcache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/arcanaland/deckpress/internal/card"
	"github.com/arcanaland/deckpress/internal/catalog"
)

// Cache resolves identifiers through a catalog client at most once per
// canonical key. Concurrent requests for the same key share a single
// in-flight fetch instead of issuing duplicate network calls.
type Cache struct {
	client catalog.Client
	group  singleflight.Group

	mu      sync.RWMutex
	records map[string]*card.Record
}

// New creates a run-scoped cache backed by client
func New(client catalog.Client) *Cache {
	return &Cache{
		client:  client,
		records: make(map[string]*card.Record),
	}
}

// GetOrFetch returns the record for id, fetching card data and image bytes
// on first use. A record fetched under one identifier form is reused when
// the same card is requested by its set/number later.
func (c *Cache) GetOrFetch(ctx context.Context, id card.Identifier) (*card.Record, error) {
	key := id.Canonical()

	c.mu.RLock()
	rec, ok := c.records[key]
	c.mu.RUnlock()
	if ok {
		return rec, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A sibling request may have stored the record under another key
		// form before this one was deduplicated
		c.mu.RLock()
		rec, ok := c.records[key]
		c.mu.RUnlock()
		if ok {
			return rec, nil
		}
		return c.fetch(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*card.Record), nil
}

func (c *Cache) fetch(ctx context.Context, id card.Identifier) (*card.Record, error) {
	rec, err := c.client.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	if rec.ImageURL == "" {
		return nil, fmt.Errorf("catalog entry for %s has no printable image", id)
	}
	rec.Image, err = c.client.FetchImage(ctx, rec.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("fetching image for %s: %w", rec.Name, err)
	}

	c.mu.Lock()
	c.records[id.Canonical()] = rec
	// Index under the card's own set/number so other identifier forms of
	// the same card hit the cache
	c.records[rec.SetNumber().Canonical()] = rec
	c.mu.Unlock()

	return rec, nil
}

// Size returns the number of distinct cached records
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[*card.Record]bool, len(c.records))
	for _, rec := range c.records {
		seen[rec] = true
	}
	return len(seen)
}
