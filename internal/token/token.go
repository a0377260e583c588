// Package token collects the token cards a resolved deck references
package token

import "github.com/arcanaland/deckpress/internal/card"

// Set is an insertion-ordered, deduplicated identifier set
type Set struct {
	ids  []card.Identifier
	keys map[string]bool
}

// NewSet creates an empty set
func NewSet() *Set {
	return &Set{keys: make(map[string]bool)}
}

// Add inserts id unless its canonical key is already present or excluded.
// It reports whether the identifier was inserted.
func (s *Set) Add(id card.Identifier) bool {
	key := id.Canonical()
	if s.keys[key] {
		return false
	}
	s.keys[key] = true
	s.ids = append(s.ids, id)
	return true
}

// Exclude marks a key so later Add calls with it are rejected
func (s *Set) Exclude(key string) {
	s.keys[key] = true
}

// Identifiers returns the collected identifiers in insertion order
func (s *Set) Identifiers() []card.Identifier {
	return s.ids
}

// Discoverer gathers token identifiers referenced by resolved cards,
// excluding any card already part of the deck. Overrides supplied by the
// user are collected independently of whether automatic discovery is
// enabled.
type Discoverer struct {
	set       *Set
	autoCount int
}

// NewDiscoverer creates a discoverer that treats the given primary deck
// records as already covered
func NewDiscoverer(primaries []*card.Record) *Discoverer {
	d := &Discoverer{set: NewSet()}
	for _, rec := range primaries {
		d.set.Exclude((card.Identifier{Kind: card.KindID, ID: rec.ID}).Canonical())
		d.set.Exclude(rec.SetNumber().Canonical())
	}
	return d
}

// Discover adds every token identifier the record references
func (d *Discoverer) Discover(rec *card.Record) {
	for _, ref := range rec.TokenRefs {
		if d.set.Add(ref) {
			d.autoCount++
		}
	}
}

// AddOverride adds a user-specified token identifier
func (d *Discoverer) AddOverride(id card.Identifier) {
	d.set.Add(id)
}

// Identifiers returns all collected token identifiers, discovery results
// first, in insertion order
func (d *Discoverer) Identifiers() []card.Identifier {
	return d.set.Identifiers()
}
