package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestListingAnchors_DocumentOrder(t *testing.T) {
	t.Parallel()

	doc := parseHTML(t, listingPage(
		RawAnchor{Name: "Bulbasaur", Href: "/pokedex/bulbasaur"},
		RawAnchor{Name: "Ivysaur", Href: "/pokedex/ivysaur"},
		RawAnchor{Name: "Venusaur", Href: "/pokedex/venusaur"},
	))

	anchors := ListingAnchors(doc.Selection)
	assert.Equal(t, []RawAnchor{
		{Name: "Bulbasaur", Href: "/pokedex/bulbasaur"},
		{Name: "Ivysaur", Href: "/pokedex/ivysaur"},
		{Name: "Venusaur", Href: "/pokedex/venusaur"},
	}, anchors)
}

func TestResolveReferences_CollapsesVariantPair(t *testing.T) {
	t.Parallel()

	refs, err := ResolveReferences("https://pokemondb.net", []RawAnchor{
		{Name: "Venusaur", Href: "/pokedex/venusaur"},
		{Name: "Mega Venusaur", Href: "/pokedex/venusaur"},
	})
	require.NoError(t, err)
	assert.Equal(t, []EntityReference{
		{Name: "Venusaur", URL: "https://pokemondb.net/pokedex/venusaur"},
	}, refs)
}

func TestResolveReferences_UniqueURLsInFirstSeenOrder(t *testing.T) {
	t.Parallel()

	anchors := []RawAnchor{
		{Name: "Charmander", Href: "/pokedex/charmander"},
		{Name: "Charizard", Href: "/pokedex/charizard"},
		{Name: "Mega Charizard X", Href: "/pokedex/charizard"},
		{Name: "Mega Charizard Y", Href: "https://pokemondb.net/pokedex/charizard#mega-y"},
		{Name: "Squirtle", Href: "pokedex/squirtle"},
		{Name: "Nameless", Href: ""},
	}

	refs, err := ResolveReferences("https://pokemondb.net/", anchors)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(refs), len(anchors))

	seen := make(map[string]bool)
	var names []string
	for _, r := range refs {
		assert.False(t, seen[r.URL], "duplicate url %s", r.URL)
		seen[r.URL] = true
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Charmander", "Charizard", "Squirtle"}, names)
	assert.Equal(t, "https://pokemondb.net/pokedex/squirtle", refs[2].URL)
}

func TestResolveReferences_InvalidBase(t *testing.T) {
	t.Parallel()

	_, err := ResolveReferences("://bad", []RawAnchor{{Name: "A", Href: "/a"}})
	require.Error(t, err)
}

func TestFetchListing_FromServer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(listingPage(
			RawAnchor{Name: "Bulbasaur", Href: "/pokedex/bulbasaur"},
			RawAnchor{Name: "Pikachu", Href: "/pokedex/pikachu"},
		)))
	}))
	t.Cleanup(srv.Close)

	fetcher, err := NewPageFetcher(FetcherConfig{}, zap.NewNop())
	require.NoError(t, err)

	anchors, err := FetchListing(fetcher, srv.URL+"/pokedex/all")
	require.NoError(t, err)
	require.Len(t, anchors, 2)
	assert.Equal(t, "Pikachu", anchors[1].Name)
}

func TestFetchListing_StatusFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	fetcher, err := NewPageFetcher(FetcherConfig{}, zap.NewNop())
	require.NoError(t, err)

	_, err = FetchListing(fetcher, srv.URL+"/pokedex/all")
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	assert.Equal(t, srv.URL+"/pokedex/all", fetchErr.URL)
}

func TestFetchListing_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	fetcher, err := NewPageFetcher(FetcherConfig{}, zap.NewNop())
	require.NoError(t, err)

	_, err = FetchListing(fetcher, addr+"/pokedex/all")
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
}
