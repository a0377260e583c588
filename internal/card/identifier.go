package card

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Kind discriminates the source form of an identifier
type Kind int

const (
	KindName      Kind = iota // Bare card name
	KindSetNumber             // set/number pair, from shorthand or URL
	KindID                    // Catalog UUID, used for token references
)

// Identifier is a normalized reference to a card. Exactly one source form
// is active, discriminated by Kind. Both the shorthand and URL forms reduce
// to a set/number pair before lookup.
type Identifier struct {
	Kind   Kind
	Name   string // KindName
	Set    string // KindSetNumber
	Number string // KindSetNumber
	ID     string // KindID
	Raw    string // Original input text, kept for error messages
}

// ErrMalformedIdentifier reports empty or whitespace-only identifier input
var ErrMalformedIdentifier = fmt.Errorf("malformed identifier: empty input")

// set/number shorthand: a short alphanumeric set code, a slash, an
// alphanumeric collector number (covers entries like "123a" or "tm3c/24")
var shorthandPattern = regexp.MustCompile(`^([0-9A-Za-z]{1,6})/([0-9A-Za-z]+)$`)

// ParseIdentifier classifies raw deck-entry text into an Identifier.
// Classification is ordered: card-detail URL, then set/number shorthand,
// then bare name. The function is a pure string transform and always yields
// the same variant for the same input.
func ParseIdentifier(raw string) (Identifier, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Identifier{}, ErrMalformedIdentifier
	}

	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		if id, ok := parseCardURL(text); ok {
			return id, nil
		}
	}

	if m := shorthandPattern.FindStringSubmatch(text); m != nil {
		return Identifier{Kind: KindSetNumber, Set: strings.ToLower(m[1]), Number: strings.ToLower(m[2]), Raw: raw}, nil
	}

	return Identifier{Kind: KindName, Name: text, Raw: raw}, nil
}

// parseCardURL extracts set and number from a card-detail URL with a path
// like /card/{set}/{number}/{name}
func parseCardURL(text string) (Identifier, bool) {
	u, err := url.Parse(text)
	if err != nil {
		return Identifier{}, false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 3 || parts[0] != "card" {
		return Identifier{}, false
	}
	return Identifier{
		Kind:   KindSetNumber,
		Set:    strings.ToLower(parts[1]),
		Number: strings.ToLower(parts[2]),
		Raw:    text,
	}, true
}

// Canonical returns the dedup and cache key for the identifier. Set/number
// forms share a key regardless of the source text that produced them.
func (id Identifier) Canonical() string {
	switch id.Kind {
	case KindSetNumber:
		return strings.ToLower(id.Set) + "/" + strings.ToLower(id.Number)
	case KindID:
		return "id:" + strings.ToLower(id.ID)
	default:
		return "name:" + strings.ToLower(id.Name)
	}
}

// String returns a user-facing rendition of the identifier, preferring the
// original input text when it is available
func (id Identifier) String() string {
	if id.Raw != "" {
		return id.Raw
	}
	switch id.Kind {
	case KindSetNumber:
		return id.Set + "/" + id.Number
	case KindID:
		return id.ID
	default:
		return id.Name
	}
}
