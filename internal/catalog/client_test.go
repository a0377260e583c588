package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/deckpress/internal/card"
)

const treasureJSON = `{
	"id": "aa11bb22",
	"name": "Treasure",
	"set": "tm3c",
	"collector_number": "24",
	"type_line": "Token Artifact — Treasure",
	"layout": "token",
	"image_uris": {"normal": "https://img.example/tm3c/24.jpg"}
}`

const otharriJSON = `{
	"id": "cc33dd44",
	"name": "Otharri, Suns' Glory",
	"set": "onc",
	"collector_number": "2",
	"type_line": "Legendary Creature — Phoenix",
	"layout": "normal",
	"image_uris": {"normal": "https://img.example/onc/2.jpg"},
	"all_parts": [
		{"id": "cc33dd44", "component": "combo_piece", "name": "Otharri, Suns' Glory"},
		{"id": "ee55ff66", "component": "token", "name": "Rebel"}
	]
}`

func newTestClient(handler http.Handler) (*ScryfallClient, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewScryfall(srv.URL, "deckpress-test/1.0", 1000)
	return client, srv
}

func TestLookupBySetNumber(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cards/tm3c/24", r.URL.Path)
		assert.Contains(t, r.Header.Get("User-Agent"), "deckpress-test")
		fmt.Fprint(w, treasureJSON)
	}))
	defer srv.Close()

	id, err := card.ParseIdentifier("tm3c/24")
	require.NoError(t, err)

	rec, err := client.Lookup(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Treasure", rec.Name)
	assert.Equal(t, "tm3c", rec.SetCode)
	assert.Equal(t, "24", rec.Number)
	assert.True(t, rec.IsToken)
	assert.Equal(t, "https://img.example/tm3c/24.jpg", rec.ImageURL)
}

func TestLookupByName(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cards/named", r.URL.Path)
		assert.Equal(t, "Otharri, Suns' Glory", r.URL.Query().Get("fuzzy"))
		fmt.Fprint(w, otharriJSON)
	}))
	defer srv.Close()

	id, err := card.ParseIdentifier("Otharri, Suns' Glory")
	require.NoError(t, err)

	rec, err := client.Lookup(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, rec.IsToken)
	require.Len(t, rec.TokenRefs, 1, "only token components become references")
	assert.Equal(t, card.KindID, rec.TokenRefs[0].Kind)
	assert.Equal(t, "ee55ff66", rec.TokenRefs[0].ID)
}

func TestLookupSameRecordAcrossForms(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, treasureJSON)
	}))
	defer srv.Close()

	forms := []string{"tm3c/24", "https://scryfall.com/card/tm3c/24/treasure", "Treasure"}
	for _, form := range forms {
		id, err := card.ParseIdentifier(form)
		require.NoError(t, err)
		rec, err := client.Lookup(context.Background(), id)
		require.NoError(t, err, "form %q", form)
		assert.Equal(t, "aa11bb22", rec.ID, "form %q", form)
	}
}

func TestLookupNotFound(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"object":"error","code":"not_found","details":"No card found"}`)
	}))
	defer srv.Close()

	id, _ := card.ParseIdentifier("No Such Card")
	_, err := client.Lookup(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "No Such Card")
	assert.False(t, Retriable(err))
}

func TestLookupAmbiguous(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"object":"error","code":"not_found","type":"ambiguous","details":"Too many cards match"}`)
	}))
	defer srv.Close()

	id, _ := card.ParseIdentifier("Jace")
	_, err := client.Lookup(context.Background(), id)
	var amb *AmbiguousError
	require.ErrorAs(t, err, &amb)
	assert.Equal(t, "Jace", amb.Query)
	assert.False(t, Retriable(err))
}

func TestLookupRateLimited(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	id, _ := card.ParseIdentifier("tm3c/24")
	_, err := client.Lookup(context.Background(), id)
	var rl *RateLimitedError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 2*time.Second, rl.RetryAfter)
	assert.True(t, Retriable(err))
}

func TestLookupServerError(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	id, _ := card.ParseIdentifier("tm3c/24")
	_, err := client.Lookup(context.Background(), id)
	var tr *TransientError
	require.ErrorAs(t, err, &tr)
	assert.True(t, Retriable(err))
}

func TestListPrintings(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cards/search", r.URL.Path)
		assert.Equal(t, "prints", r.URL.Query().Get("unique"))
		assert.Contains(t, r.URL.Query().Get("q"), "Island")
		fmt.Fprintf(w, `{"data": [%s, %s]}`, treasureJSON, otharriJSON)
	}))
	defer srv.Close()

	recs, err := client.ListPrintings(context.Background(), "Island")
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestListPrintingsEmpty(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": []}`)
	}))
	defer srv.Close()

	_, err := client.ListPrintings(context.Background(), "Island")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchImage(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte{0xff, 0xd8, 0xff})
	}))
	defer srv.Close()

	data, err := client.FetchImage(context.Background(), srv.URL+"/img.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, data)
}

func TestFetchImageNetworkErrorIsTransient(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := client.FetchImage(context.Background(), srv.URL+"/img.jpg")
	var tr *TransientError
	assert.True(t, errors.As(err, &tr))
}
