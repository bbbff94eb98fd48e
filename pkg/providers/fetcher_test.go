package providers

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestDefaultFetcherRegistryResolvesKnownTypes(t *testing.T) {
	reg := DefaultFetcherRegistry(nil, nil)

	f, err := reg.FetcherFor(Provider{ID: "news", Type: "Marketaux"})
	assert.Equal(t, nil, err)
	assert.Equal(t, ProviderTypeMarketaux, f.ID())

	f, err = reg.FetcherFor(Provider{ID: "feeds", Type: "rss"})
	assert.Equal(t, nil, err)
	assert.Equal(t, ProviderTypeRSS, f.ID())
}

func TestFetcherForUnknownType(t *testing.T) {
	reg := NewFetcherRegistry()

	_, err := reg.FetcherFor(Provider{ID: "x", Type: "newsapi"})
	assert.NotEqual(t, nil, err)

	_, err = reg.FetcherFor(Provider{ID: "x"})
	assert.NotEqual(t, nil, err)
}

func TestHeadersMergesProviderHeaders(t *testing.T) {
	h := Headers(Provider{Headers: map[string]string{"X-Key": "v", " ": "dropped"}})

	assert.Equal(t, "v", h["X-Key"])
	assert.NotEqual(t, "", h["Accept"])
	assert.Equal(t, 2, len(h))
}

func TestResponseSnippet(t *testing.T) {
	assert.Equal(t, "<empty>", responseSnippet([]byte("   ")))
	long := make([]byte, 600)
	for i := range long {
		long[i] = 'a'
	}
	assert.Equal(t, 515, len(responseSnippet(long)))
}
