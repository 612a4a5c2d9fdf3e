package crawler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><title>home</title></head><body>
			<a href="/a">a</a>
			<a href="b.html">b</a>
			<a href="#top">top</a>
			<a href="http://other.example/x">x</a>
		</body></html>`)
	})
	mux.HandleFunc("/private", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><a href="/a">a</a></body></html>`)
	})
	mux.HandleFunc("/noindex", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><meta name="ROBOTS" content="noindex, nofollow"></head>
			<body><a href="/a">a</a></body></html>`)
	})
	mux.HandleFunc("/image", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestFetcher(obeyRobots bool) *CollyFetcher {
	return NewCollyFetcher(FetcherConfig{
		UserAgent:  "rank-weaver-test",
		ObeyRobots: obeyRobots,
		Timeout:    5 * time.Second,
	})
}

func TestCollyFetcherExtractsLinks(t *testing.T) {
	t.Parallel()

	server := newSiteServer(t)
	f := newTestFetcher(false)

	page, err := f.Fetch(Link(server.URL + "/"))
	require.NoError(t, err)
	require.False(t, page.IsEmpty())
	assert.True(t, page.IsIndexable())
	assert.Equal(t, http.StatusOK, page.StatusCode)

	assert.Equal(t, []Link{
		Link(server.URL + "/a"),
		Link(server.URL + "/b.html"),
		"http://other.example/x",
	}, page.OutboundLinks())
}

func TestCollyFetcherMissingPageIsEmpty(t *testing.T) {
	t.Parallel()

	server := newSiteServer(t)
	f := newTestFetcher(false)

	page, err := f.Fetch(Link(server.URL + "/missing"))
	require.NoError(t, err)
	assert.True(t, page.IsEmpty())
}

func TestCollyFetcherUnreachableHostIsEmpty(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	page, err := newTestFetcher(false).Fetch(Link(addr + "/"))
	require.NoError(t, err)
	assert.True(t, page.IsEmpty())
}

func TestCollyFetcherNonHTMLIsEmpty(t *testing.T) {
	t.Parallel()

	server := newSiteServer(t)
	page, err := newTestFetcher(false).Fetch(Link(server.URL + "/image"))
	require.NoError(t, err)
	assert.True(t, page.IsEmpty())
}

func TestCollyFetcherRobots(t *testing.T) {
	t.Parallel()

	server := newSiteServer(t)

	t.Run("obeyed", func(t *testing.T) {
		f := newTestFetcher(true)

		_, err := f.Fetch(Link(server.URL + "/private"))
		require.ErrorIs(t, err, ErrFetchDenied)

		page, err := f.Fetch(Link(server.URL + "/noindex"))
		require.NoError(t, err)
		assert.False(t, page.IsEmpty())
		assert.False(t, page.IsIndexable())
		assert.Empty(t, page.OutboundLinks())
	})

	t.Run("ignored", func(t *testing.T) {
		f := newTestFetcher(false)

		page, err := f.Fetch(Link(server.URL + "/private"))
		require.NoError(t, err)
		assert.True(t, page.IsIndexable())

		page, err = f.Fetch(Link(server.URL + "/noindex"))
		require.NoError(t, err)
		assert.True(t, page.IsIndexable())
		assert.Len(t, page.OutboundLinks(), 1)
	})
}

func TestCollyFetcherAccepts(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(false)
	assert.True(t, f.Accepts("http://example.com/"))
	assert.True(t, f.Accepts("https://example.com/page"))
	assert.False(t, f.Accepts("https://example.com/photo.jpg"))
	assert.False(t, f.Accepts("mailto:someone@example.com"))
}
