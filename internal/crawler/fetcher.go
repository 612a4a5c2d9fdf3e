package crawler

import (
	"errors"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

// ErrFetchDenied is returned when robots.txt disallows a link
var ErrFetchDenied = errors.New("fetch disallowed by robots policy")

// Fetcher retrieves pages for the frontier.
//
// Accepts is the resource-type predicate: links it rejects are never fetched.
// Fetch returns ErrFetchDenied on a policy disallow and an empty page when
// the page could not be retrieved.
type Fetcher interface {
	Accepts(link Link) bool
	Fetch(link Link) (*CrawledPage, error)
}

// FetcherConfig controls collector behavior
type FetcherConfig struct {
	UserAgent  string
	ObeyRobots bool
	Timeout    time.Duration
}

// CollyFetcher implements Fetcher with a synchronous colly collector
type CollyFetcher struct {
	cfg  FetcherConfig
	base *colly.Collector
}

// NewCollyFetcher creates a fetcher; the base collector is cloned per fetch
// so callbacks never leak between pages while robots.txt data is shared.
func NewCollyFetcher(cfg FetcherConfig) *CollyFetcher {
	opts := []colly.CollectorOption{}
	if cfg.UserAgent != "" {
		opts = append(opts, colly.UserAgent(cfg.UserAgent))
	}

	base := colly.NewCollector(opts...)
	// Deduplication is owned by the frontier
	base.AllowURLRevisit = true
	base.IgnoreRobotsTxt = !cfg.ObeyRobots
	if cfg.Timeout > 0 {
		base.SetRequestTimeout(cfg.Timeout)
	}

	return &CollyFetcher{cfg: cfg, base: base}
}

// Accepts reports whether the link targets a resource that may be an HTML page
func (f *CollyFetcher) Accepts(link Link) bool {
	return link.IsHTTP() && link.LooksLikeHTML()
}

// Fetch retrieves the page behind link
func (f *CollyFetcher) Fetch(link Link) (*CrawledPage, error) {
	page := &CrawledPage{Link: link}
	collector := f.base.Clone()
	f.registerCallbacks(collector, page)

	err := collector.Visit(link.String())
	if errors.Is(err, colly.ErrRobotsTxtBlocked) {
		return nil, ErrFetchDenied
	}
	if err != nil {
		logrus.Debugf("Fetch of %s failed: %v", link, err)
		return &CrawledPage{Link: link, StatusCode: page.StatusCode}, nil
	}

	return page, nil
}

func (f *CollyFetcher) registerCallbacks(collector *colly.Collector, page *CrawledPage) {
	collector.OnResponse(func(r *colly.Response) {
		page.StatusCode = r.StatusCode
		if r.Headers != nil {
			contentType := r.Headers.Get("Content-Type")
			if contentType != "" && !strings.Contains(strings.ToLower(contentType), "html") {
				logrus.Debugf("Skipping non-HTML content %q at %s", contentType, r.Request.URL)
				return
			}
		}
		page.Body = append([]byte(nil), r.Body...)
	})

	// Robots META directives only bind when robots policy is obeyed
	collector.OnHTML("meta[name]", func(e *colly.HTMLElement) {
		if !f.cfg.ObeyRobots || !strings.EqualFold(e.Attr("name"), "robots") {
			return
		}
		content := strings.ToLower(e.Attr("content"))
		if strings.Contains(content, "noindex") || strings.Contains(content, "none") {
			page.NoIndex = true
		}
		if strings.Contains(content, "nofollow") || strings.Contains(content, "none") {
			page.NoFollow = true
		}
	})

	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		abs := e.Request.AbsoluteURL(e.Attr("href"))
		if abs == "" {
			return
		}
		page.Links = append(page.Links, Link(abs))
	})
}
