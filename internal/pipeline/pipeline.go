// Package pipeline wires deck loading, catalog resolution, token
// discovery, layout and PDF assembly into one run
package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arcanaland/deckpress/internal/card"
	"github.com/arcanaland/deckpress/internal/catalog"
	"github.com/arcanaland/deckpress/internal/deck"
	"github.com/arcanaland/deckpress/internal/imgcache"
	"github.com/arcanaland/deckpress/internal/pdf"
	"github.com/arcanaland/deckpress/internal/sheet"
	"github.com/arcanaland/deckpress/internal/token"
)

// Options configures a run
type Options struct {
	DiscoverTokens bool     // resolve tokens referenced by deck cards
	TokenOverrides []string // user-supplied token identifiers, any accepted form
	TokenCount     int      // printed copies per token, default 1
	Workers        int      // concurrent catalog fetches, default 4
	LandVariety    bool     // expand basic lands into random printings
	Geometry       sheet.Geometry
	Rand           *rand.Rand       // source for land variety, default time-seeded
	Status         func(msg string) // optional progress sink
}

// ResolvedEntry pairs a resolved card with its effective print count
type ResolvedEntry struct {
	Record *card.Record
	Count  int
}

// ResolvedDeck holds primaries in deck order and tokens in discovery
// order. Primaries never repeat a record; duplicates collapse by summing
// counts.
type ResolvedDeck struct {
	Primaries []ResolvedEntry
	Tokens    []ResolvedEntry
}

// Pipeline executes deck-to-PDF runs against a catalog client. The image
// cache is scoped to the pipeline and discarded with it.
type Pipeline struct {
	client catalog.Client
	cache  *imgcache.Cache
	opts   Options
}

// New creates a pipeline. Zero option fields get working defaults.
func New(client catalog.Client, opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.TokenCount <= 0 {
		opts.TokenCount = 1
	}
	if opts.Geometry.DPI == 0 {
		opts.Geometry = sheet.Letter(150)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Pipeline{
		client: client,
		cache:  imgcache.New(client),
		opts:   opts,
	}
}

// Run loads the deck at deckPath, resolves and lays it out, and writes the
// finished PDF adjacent to the deck file. It returns the output path.
func (p *Pipeline) Run(ctx context.Context, deckPath string) (string, error) {
	entries, err := deck.Load(deckPath)
	if err != nil {
		return "", err
	}
	p.statusf("Loaded %d entries (%d cards) from %s", len(entries), deck.TotalCount(entries), deckPath)

	resolved, err := p.Resolve(ctx, entries)
	if err != nil {
		return "", err
	}

	cards, err := p.Expand(ctx, resolved)
	if err != nil {
		return "", err
	}

	engine := sheet.NewEngine(p.opts.Geometry)
	pages, err := engine.Layout(cards)
	if err != nil {
		return "", err
	}
	p.statusf("Laid out %d cards on %d pages", len(cards), len(pages))

	outPath := OutputPath(deckPath)
	if err := pdf.WriteFile(outPath, pages); err != nil {
		return "", err
	}
	return outPath, nil
}

// Resolve fetches every deck entry and collects referenced tokens.
// Independent identifiers are fetched concurrently up to the worker bound;
// the cache guarantees one fetch per canonical identifier.
func (p *Pipeline) Resolve(ctx context.Context, entries []deck.Entry) (*ResolvedDeck, error) {
	records := make([]*card.Record, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			rec, err := p.cache.GetOrFetch(gctx, entry.Identifier)
			if err != nil {
				return fmt.Errorf("deck line %d (%s): %w", entry.Line, entry.Identifier, err)
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Collapse repeated cards, preserving first-appearance order
	var primaries []ResolvedEntry
	position := make(map[string]int)
	for i, rec := range records {
		if at, seen := position[rec.ID]; seen {
			primaries[at].Count += entries[i].Count
			continue
		}
		position[rec.ID] = len(primaries)
		primaries = append(primaries, ResolvedEntry{Record: rec, Count: entries[i].Count})
	}

	tokens, err := p.resolveTokens(ctx, primaries)
	if err != nil {
		return nil, err
	}
	p.statusf("Resolved %d cards and %d tokens", len(primaries), len(tokens))

	return &ResolvedDeck{Primaries: primaries, Tokens: tokens}, nil
}

func (p *Pipeline) resolveTokens(ctx context.Context, primaries []ResolvedEntry) ([]ResolvedEntry, error) {
	primaryRecords := make([]*card.Record, len(primaries))
	primaryIDs := make(map[string]bool, len(primaries))
	for i, entry := range primaries {
		primaryRecords[i] = entry.Record
		primaryIDs[entry.Record.ID] = true
	}

	discoverer := token.NewDiscoverer(primaryRecords)
	if p.opts.DiscoverTokens {
		for _, rec := range primaryRecords {
			discoverer.Discover(rec)
		}
	}
	// Explicit overrides land regardless of the discovery toggle
	for _, raw := range p.opts.TokenOverrides {
		id, err := card.ParseIdentifier(raw)
		if err != nil {
			return nil, fmt.Errorf("token override %q: %w", raw, err)
		}
		discoverer.AddOverride(id)
	}

	ids := discoverer.Identifiers()
	records := make([]*card.Record, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			rec, err := p.cache.GetOrFetch(gctx, id)
			if err != nil {
				return fmt.Errorf("token %s: %w", id, err)
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var tokens []ResolvedEntry
	seen := make(map[string]bool)
	for _, rec := range records {
		if primaryIDs[rec.ID] || seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true
		tokens = append(tokens, ResolvedEntry{Record: rec, Count: p.opts.TokenCount})
	}
	return tokens, nil
}

// Expand flattens the resolved deck into the print sequence: deck order,
// each entry repeated by its count, tokens appended after all primaries.
func (p *Pipeline) Expand(ctx context.Context, resolved *ResolvedDeck) ([]sheet.Card, error) {
	var cards []sheet.Card
	for _, entry := range resolved.Primaries {
		if p.opts.LandVariety && entry.Record.IsBasicLand() {
			variety, err := p.landPrintings(ctx, entry.Record, entry.Count)
			if err != nil {
				return nil, err
			}
			cards = append(cards, variety...)
			continue
		}
		for i := 0; i < entry.Count; i++ {
			cards = append(cards, sheet.Card{Name: entry.Record.Name, Data: entry.Record.Image})
		}
	}
	for _, entry := range resolved.Tokens {
		for i := 0; i < entry.Count; i++ {
			cards = append(cards, sheet.Card{Name: entry.Record.Name, Data: entry.Record.Image})
		}
	}
	return cards, nil
}

// landPrintings picks count random printings of a basic land so sheets
// show varied art instead of identical copies
func (p *Pipeline) landPrintings(ctx context.Context, rec *card.Record, count int) ([]sheet.Card, error) {
	printings, err := p.client.ListPrintings(ctx, rec.Name)
	if err != nil {
		return nil, fmt.Errorf("printings of %s: %w", rec.Name, err)
	}

	var usable []*card.Record
	for _, printing := range printings {
		if printing.ImageURL != "" {
			usable = append(usable, printing)
		}
	}
	if len(usable) == 0 {
		usable = []*card.Record{rec}
	}

	picks := p.opts.Rand.Perm(len(usable))
	cards := make([]sheet.Card, 0, count)
	for i := 0; i < count; i++ {
		choice := usable[picks[i%len(picks)]]
		fetched, err := p.cache.GetOrFetch(ctx, choice.SetNumber())
		if err != nil {
			return nil, fmt.Errorf("printing %s: %w", choice.SetNumber(), err)
		}
		cards = append(cards, sheet.Card{Name: fetched.Name, Data: fetched.Image})
	}
	return cards, nil
}

func (p *Pipeline) statusf(format string, args ...interface{}) {
	if p.opts.Status != nil {
		p.opts.Status(fmt.Sprintf(format, args...))
	}
}

// OutputPath returns the PDF path for a deck file: same base name with a
// .pdf extension, adjacent to the input
func OutputPath(deckPath string) string {
	ext := filepath.Ext(deckPath)
	return strings.TrimSuffix(deckPath, ext) + ".pdf"
}
