package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/Adda-Baaj/bazaar-samachar/pkg/httpclient"
)

func TestGoogleTranslateJoinsSegments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "gtx", q.Get("client"))
		assert.Equal(t, "en", q.Get("sl"))
		assert.Equal(t, "hi", q.Get("tl"))
		assert.Equal(t, "Fed raises rates. Markets fall.", q.Get("q"))
		w.Write([]byte(`[[["फेड ने दरें बढ़ाईं। ","Fed raises rates. ",null,null,10],["बाज़ार गिरे।","Markets fall.",null,null,10]],null,"en"]`))
	}))
	defer srv.Close()

	g := NewGoogleTranslator(httpclient.NewRestyClient(5*time.Second), srv.URL)
	out, err := g.Translate(context.Background(), "Fed raises rates. Markets fall.", "en", "hi")

	assert.Equal(t, nil, err)
	assert.Equal(t, "फेड ने दरें बढ़ाईं। बाज़ार गिरे।", out)
}

func TestGoogleTranslateNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGoogleTranslator(httpclient.NewRestyClient(5*time.Second), srv.URL)
	_, err := g.Translate(context.Background(), "gold", "en", "hi")

	assert.NotEqual(t, nil, err)
}

func TestParseGoogleResponseRejectsGarbage(t *testing.T) {
	_, err := parseGoogleResponse([]byte(`{"not":"an array"}`))
	assert.NotEqual(t, nil, err)

	_, err = parseGoogleResponse([]byte(`[]`))
	assert.NotEqual(t, nil, err)

	_, err = parseGoogleResponse([]byte(`["x"]`))
	assert.NotEqual(t, nil, err)
}

func TestAdapterOverGoogleFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewAdapter(NewGoogleTranslator(httpclient.NewRestyClient(5*time.Second), srv.URL))
	res := a.Translate(context.Background(), "Sensex hits record")

	assert.Equal(t, "Sensex hits record", res.Text)
	assert.Equal(t, FallbackOriginal, res.Kind)
}
