package crawler

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
)

var headTagPattern = regexp.MustCompile(`(?i)<head(?:\s[^>]*)?>`)

// CrawledPage is the result of fetching a single link
type CrawledPage struct {
	Link       Link
	StatusCode int
	Body       []byte
	Links      []Link // outbound links in document order
	NoIndex    bool
	NoFollow   bool
}

// IsEmpty reports whether nothing usable was retrieved
func (p *CrawledPage) IsEmpty() bool {
	return p == nil || len(p.Body) == 0
}

// IsIndexable reports whether the page may be indexed
func (p *CrawledPage) IsIndexable() bool {
	return !p.IsEmpty() && !p.NoIndex
}

// OutboundLinks returns the links the crawl may follow from this page
func (p *CrawledPage) OutboundLinks() []Link {
	if p.IsEmpty() || p.NoFollow {
		return nil
	}
	return p.Links
}

// Persist writes the page body to <dir>/<id>.html with a <base> element
// so relative links still resolve from the cached copy.
func (p *CrawledPage) Persist(dir, id string) error {
	if p.IsEmpty() {
		return fmt.Errorf("empty page body")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create page dir %s: %w", dir, err)
	}

	target := filepath.Join(dir, id+".html")
	if err := os.WriteFile(target, withBaseHref(p.Body, p.Link), 0o600); err != nil {
		return fmt.Errorf("write page %s: %w", target, err)
	}
	return nil
}

func withBaseHref(body []byte, link Link) []byte {
	base := []byte(fmt.Sprintf(`<base href="%s">`, html.EscapeString(link.String())))

	loc := headTagPattern.FindIndex(body)
	if loc == nil {
		return append(base, body...)
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + len(base))
	buf.Write(body[:loc[1]])
	buf.Write(base)
	buf.Write(body[loc[1]:])
	return buf.Bytes()
}
