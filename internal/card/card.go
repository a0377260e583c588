package card

import "strings"

// Record represents a single card resolved against the catalog
type Record struct {
	ID        string       // Catalog UUID
	Name      string       // Display name
	SetCode   string       // Set code (e.g., tm3c)
	Number    string       // Collector number within the set
	TypeLine  string       // Full type line (e.g., "Basic Land — Island")
	ImageURL  string       // URL of the printable image
	Image     []byte       // Fetched image bytes, populated by the cache
	IsToken   bool         // True for token and emblem printings
	TokenRefs []Identifier // Tokens this card's catalog entry references
}

// IsBasicLand reports whether the card is a basic land printing
func (r *Record) IsBasicLand() bool {
	return strings.HasPrefix(r.TypeLine, "Basic Land")
}

// SetNumber returns the card's own set/number identifier
func (r *Record) SetNumber() Identifier {
	return Identifier{Kind: KindSetNumber, Set: r.SetCode, Number: r.Number}
}
