package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/arcanaland/deckpress/internal/card"
)

// Client is the catalog lookup capability the pipeline depends on.
// Implementations classify failures into the package's error taxonomy:
// *AmbiguousError, ErrNotFound, *RateLimitedError, *TransientError.
type Client interface {
	// Lookup resolves an identifier to exactly one card record
	Lookup(ctx context.Context, id card.Identifier) (*card.Record, error)
	// ListPrintings returns every printing of the named card
	ListPrintings(ctx context.Context, name string) ([]*card.Record, error)
	// FetchImage downloads raw image bytes from a record's image URL
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)
}

// ScryfallClient looks cards up against the Scryfall REST API
type ScryfallClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewScryfall creates a catalog client. requestsPerSecond bounds the
// client-side request pacing shared by all concurrent workers.
func NewScryfall(baseURL, userAgent string, requestsPerSecond float64) *ScryfallClient {
	return &ScryfallClient{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// scryfallCard is the subset of the catalog's card object the pipeline uses
type scryfallCard struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Set             string `json:"set"`
	CollectorNumber string `json:"collector_number"`
	TypeLine        string `json:"type_line"`
	Layout          string `json:"layout"`
	ImageURIs       struct {
		Normal string `json:"normal"`
	} `json:"image_uris"`
	CardFaces []struct {
		ImageURIs struct {
			Normal string `json:"normal"`
		} `json:"image_uris"`
	} `json:"card_faces"`
	AllParts []struct {
		ID        string `json:"id"`
		Component string `json:"component"`
		Name      string `json:"name"`
	} `json:"all_parts"`
}

type scryfallError struct {
	Code    string `json:"code"`
	Type    string `json:"type"`
	Details string `json:"details"`
}

type scryfallList struct {
	Data []scryfallCard `json:"data"`
}

func (c *ScryfallClient) Lookup(ctx context.Context, id card.Identifier) (*card.Record, error) {
	var endpoint string
	switch id.Kind {
	case card.KindSetNumber:
		endpoint = fmt.Sprintf("%s/cards/%s/%s", c.baseURL, url.PathEscape(id.Set), url.PathEscape(id.Number))
	case card.KindID:
		endpoint = fmt.Sprintf("%s/cards/%s", c.baseURL, url.PathEscape(id.ID))
	default:
		endpoint = fmt.Sprintf("%s/cards/named?fuzzy=%s", c.baseURL, url.QueryEscape(id.Name))
	}

	body, err := c.get(ctx, endpoint, id.String())
	if err != nil {
		return nil, err
	}

	var sc scryfallCard
	if err := json.Unmarshal(body, &sc); err != nil {
		return nil, &TransientError{Err: fmt.Errorf("decoding catalog response for %s: %w", id, err)}
	}
	return recordFromScryfall(sc), nil
}

func (c *ScryfallClient) ListPrintings(ctx context.Context, name string) ([]*card.Record, error) {
	query := fmt.Sprintf("!%q", name)
	endpoint := fmt.Sprintf("%s/cards/search?unique=prints&q=%s", c.baseURL, url.QueryEscape(query))

	body, err := c.get(ctx, endpoint, name)
	if err != nil {
		return nil, err
	}

	var list scryfallList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &TransientError{Err: fmt.Errorf("decoding printings for %s: %w", name, err)}
	}

	records := make([]*card.Record, 0, len(list.Data))
	for _, sc := range list.Data {
		records = append(records, recordFromScryfall(sc))
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no printings of %q", ErrNotFound, name)
	}
	return records, nil
}

func (c *ScryfallClient) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	return c.get(ctx, imageURL, imageURL)
}

// get performs one paced GET and classifies the response
func (c *ScryfallClient) get(ctx context.Context, endpoint, subject string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building catalog request for %s: %w", subject, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		var se scryfallError
		if json.Unmarshal(body, &se) == nil && se.Type == "ambiguous" {
			return nil, &AmbiguousError{Query: subject}
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, subject)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitedError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode >= 500:
		return nil, &TransientError{Err: fmt.Errorf("catalog returned HTTP %d for %s", resp.StatusCode, subject)}
	default:
		return nil, fmt.Errorf("catalog returned HTTP %d for %s", resp.StatusCode, subject)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func recordFromScryfall(sc scryfallCard) *card.Record {
	rec := &card.Record{
		ID:       sc.ID,
		Name:     sc.Name,
		SetCode:  sc.Set,
		Number:   sc.CollectorNumber,
		TypeLine: sc.TypeLine,
		ImageURL: sc.ImageURIs.Normal,
		IsToken:  sc.Layout == "token" || sc.Layout == "emblem" || sc.Layout == "double_faced_token",
	}

	// Multi-faced cards keep their images on the faces
	if rec.ImageURL == "" && len(sc.CardFaces) > 0 {
		rec.ImageURL = sc.CardFaces[0].ImageURIs.Normal
	}

	for _, part := range sc.AllParts {
		if part.Component != "token" || part.ID == sc.ID {
			continue
		}
		rec.TokenRefs = append(rec.TokenRefs, card.Identifier{Kind: card.KindID, ID: part.ID, Raw: part.Name})
	}
	return rec
}
