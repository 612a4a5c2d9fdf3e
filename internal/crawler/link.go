package crawler

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	whatwgUrl "github.com/nlnwa/whatwg-url/url"
)

// urlParser matches the parser colly uses internally, so links canonicalized
// here compare equal to the request URLs colly reports back.
var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// Paths that never lead to an HTML page
var nonHTMLPattern = regexp.MustCompile(`(?i)\.(?:jpe?g|png|gif|bmp|ico|svg|webp|tiff?|css|js|json|xml|rss|pdf|docx?|xlsx?|pptx?|ps|txt|csv|zip|gz|tgz|tar|rar|7z|exe|dmg|iso|mp3|wav|ogg|mp4|avi|mov|mpe?g|wmv|flv)$`)

// Link is a URL reference discovered during the crawl.
// Two links are the same page when their canonical forms are equal.
type Link string

// Canonicalize normalizes the link to a stable absolute form: lowercase
// scheme and host, default port removed, empty path replaced by "/" and
// the fragment dropped.
func (l Link) Canonicalize() (Link, error) {
	raw := strings.TrimSpace(string(l))
	if raw == "" {
		return "", fmt.Errorf("empty link")
	}

	// Handle protocol-relative URLs
	if strings.HasPrefix(raw, "//") {
		raw = "http:" + raw
	}

	parsed, err := urlParser.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse link %q: %w", raw, err)
	}

	return Link(parsed.Href(true)), nil
}

// String returns the link as a plain string
func (l Link) String() string {
	return string(l)
}

// IsHTTP reports whether the link uses the http or https scheme
func (l Link) IsHTTP() bool {
	u, err := url.Parse(string(l))
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// LooksLikeHTML reports whether the link path may refer to an HTML page.
// Extensionless paths and directory paths are assumed to be HTML.
func (l Link) LooksLikeHTML() bool {
	u, err := url.Parse(string(l))
	if err != nil {
		return false
	}
	return !nonHTMLPattern.MatchString(u.Path)
}
