package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkCanonicalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   Link
		want Link
	}{
		{"HTTP://Example.COM", "http://example.com/"},
		{"http://example.com:80/a#frag", "http://example.com/a"},
		{"https://example.com:443/", "https://example.com/"},
		{"//example.com/x", "http://example.com/x"},
		{"  http://example.com/a  ", "http://example.com/a"},
		{"http://example.com/a/../b", "http://example.com/b"},
		{"http://example.com/?q=1", "http://example.com/?q=1"},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			got, err := tt.in.Canonicalize()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := got.Canonicalize()
			require.NoError(t, err)
			assert.Equal(t, got, again, "canonical form must be stable")
		})
	}
}

func TestLinkCanonicalizeRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, in := range []Link{"", "   ", "not a url"} {
		_, err := in.Canonicalize()
		assert.Error(t, err, "input %q", in)
	}
}

func TestLinkPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, Link("http://example.com/").IsHTTP())
	assert.True(t, Link("https://example.com/a.html").IsHTTP())
	assert.False(t, Link("mailto:someone@example.com").IsHTTP())
	assert.False(t, Link("ftp://example.com/file").IsHTTP())

	assert.True(t, Link("http://example.com/").LooksLikeHTML())
	assert.True(t, Link("http://example.com/docs").LooksLikeHTML())
	assert.True(t, Link("http://example.com/index.html").LooksLikeHTML())
	assert.True(t, Link("http://example.com/page.php?id=3").LooksLikeHTML())
	assert.False(t, Link("http://example.com/logo.PNG").LooksLikeHTML())
	assert.False(t, Link("http://example.com/paper.pdf").LooksLikeHTML())
	assert.False(t, Link("http://example.com/app.js").LooksLikeHTML())
}
