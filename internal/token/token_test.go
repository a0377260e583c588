package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/deckpress/internal/card"
)

func idRef(id string) card.Identifier {
	return card.Identifier{Kind: card.KindID, ID: id}
}

func TestDiscoverDeduplicates(t *testing.T) {
	a := &card.Record{ID: "card-a", SetCode: "onc", Number: "2", TokenRefs: []card.Identifier{idRef("tok-1"), idRef("tok-2")}}
	b := &card.Record{ID: "card-b", SetCode: "onc", Number: "9", TokenRefs: []card.Identifier{idRef("tok-2"), idRef("tok-3")}}

	d := NewDiscoverer([]*card.Record{a, b})
	d.Discover(a)
	d.Discover(b)

	ids := d.Identifiers()
	require.Len(t, ids, 3)
	assert.Equal(t, "tok-1", ids[0].ID)
	assert.Equal(t, "tok-2", ids[1].ID)
	assert.Equal(t, "tok-3", ids[2].ID)
}

func TestDiscoverExcludesDeckCards(t *testing.T) {
	// A deck that already contains the token its commander makes
	treasure := &card.Record{ID: "tok-treasure", SetCode: "tm3c", Number: "24"}
	maker := &card.Record{ID: "card-m", SetCode: "onc", Number: "2", TokenRefs: []card.Identifier{idRef("tok-treasure")}}

	d := NewDiscoverer([]*card.Record{maker, treasure})
	d.Discover(maker)

	assert.Empty(t, d.Identifiers())
}

func TestOverridesIndependentOfDiscovery(t *testing.T) {
	maker := &card.Record{ID: "card-m", SetCode: "onc", Number: "2", TokenRefs: []card.Identifier{idRef("tok-1")}}

	// Discovery disabled: the caller never invokes Discover, but the
	// override still lands
	d := NewDiscoverer([]*card.Record{maker})
	override, err := card.ParseIdentifier("tm3c/24")
	require.NoError(t, err)
	d.AddOverride(override)

	ids := d.Identifiers()
	require.Len(t, ids, 1)
	assert.Equal(t, "tm3c/24", ids[0].Canonical())
}

func TestOverrideDedupedAgainstDiscovered(t *testing.T) {
	maker := &card.Record{ID: "card-m", SetCode: "onc", Number: "2", TokenRefs: []card.Identifier{idRef("tok-1")}}

	d := NewDiscoverer([]*card.Record{maker})
	d.Discover(maker)
	d.AddOverride(idRef("tok-1"))

	assert.Len(t, d.Identifiers(), 1)
}

func TestSetInsertionOrder(t *testing.T) {
	s := NewSet()
	assert.True(t, s.Add(idRef("c")))
	assert.True(t, s.Add(idRef("a")))
	assert.False(t, s.Add(idRef("c")))

	ids := s.Identifiers()
	require.Len(t, ids, 2)
	assert.Equal(t, "c", ids[0].ID)
	assert.Equal(t, "a", ids[1].ID)
}
