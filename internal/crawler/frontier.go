package crawler

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrEmptyFrontier is returned when a crawl starts with nothing to visit
var ErrEmptyFrontier = errors.New("no pages to visit")

// Outcome classifies what happened to a link popped from the frontier
type Outcome int

const (
	OutcomeIndexed Outcome = iota
	OutcomeNotIndexable
	OutcomeAlreadyVisited
	OutcomeUnsupported
	OutcomeDenied
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIndexed:
		return "indexed"
	case OutcomeNotIndexable:
		return "not_indexable"
	case OutcomeAlreadyVisited:
		return "already_visited"
	case OutcomeUnsupported:
		return "unsupported"
	case OutcomeDenied:
		return "denied"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Termination reasons reported in CrawlResult
const (
	ReasonFrontierEmpty = "frontier_empty"
	ReasonMaxCount      = "max_count"
)

// Options controls a crawl run
type Options struct {
	MaxCount int
	SaveDir  string // pages are persisted here when non-empty
	Slow     bool
	Delay    time.Duration
}

// CrawlResult is everything the graph builder needs from a finished crawl
type CrawlResult struct {
	// Index maps canonical URL to assigned node ID, indexed pages only
	Index map[string]string
	// Pending maps a source URL to its canonical outbound URLs in page order
	Pending map[string][]string
	// Order lists indexed URLs in indexing order
	Order     []string
	Processed int
	Visited   int
	Reason    string
}

// Session is the mutable state of one crawl run
type Session struct {
	queue     *Queue
	visited   map[Link]struct{}
	index     map[string]string
	order     []string
	pending   map[string][]string
	processed int
	maxCount  int
	idWidth   int
}

// NewSession creates the state for a run capped at maxCount indexed pages
func NewSession(maxCount int, seeds ...Link) *Session {
	return &Session{
		queue:    NewQueue(seeds...),
		visited:  make(map[Link]struct{}),
		index:    make(map[string]string),
		pending:  make(map[string][]string),
		maxCount: maxCount,
		idWidth:  len(strconv.Itoa(maxCount)),
	}
}

// markVisited adds link to the visited set; false if it was already there
func (s *Session) markVisited(link Link) bool {
	if _, seen := s.visited[link]; seen {
		return false
	}
	s.visited[link] = struct{}{}
	return true
}

// assignID records link as indexed and returns its node ID
func (s *Session) assignID(link Link) string {
	s.processed++
	id := fmt.Sprintf("P%0*d", s.idWidth, s.processed)
	s.index[link.String()] = id
	s.order = append(s.order, link.String())
	return id
}

func (s *Session) underCap() bool {
	return s.processed < s.maxCount
}

func (s *Session) result() *CrawlResult {
	reason := ReasonFrontierEmpty
	if !s.underCap() {
		reason = ReasonMaxCount
	}
	return &CrawlResult{
		Index:     s.index,
		Pending:   s.pending,
		Order:     s.order,
		Processed: s.processed,
		Visited:   len(s.visited),
		Reason:    reason,
	}
}

// Frontier drives a breadth-first crawl
type Frontier struct {
	fetcher         Fetcher
	opts            Options
	sleep           func(time.Duration)
	metricsCallback func(Outcome)
}

// NewFrontier creates a frontier; metricsCallback may be nil
func NewFrontier(fetcher Fetcher, opts Options, metricsCallback func(Outcome)) *Frontier {
	return &Frontier{
		fetcher:         fetcher,
		opts:            opts,
		sleep:           time.Sleep,
		metricsCallback: metricsCallback,
	}
}

// Run crawls breadth-first from seeds until the queue empties or
// MaxCount pages have been indexed.
func (f *Frontier) Run(seeds ...Link) (*CrawlResult, error) {
	if len(seeds) == 0 {
		return nil, ErrEmptyFrontier
	}
	if f.opts.MaxCount < 1 {
		return nil, fmt.Errorf("max count must be >= 1, got %d", f.opts.MaxCount)
	}

	s := NewSession(f.opts.MaxCount, seeds...)

	for !s.queue.IsEmpty() && s.underCap() {
		if f.opts.Slow {
			f.sleep(f.opts.Delay)
		}

		next, _ := s.queue.Pop()
		f.step(s, next)
	}

	result := s.result()
	logrus.Infof("Crawl finished (%s): %d indexed, %d visited, %d queued",
		result.Reason, result.Processed, result.Visited, s.queue.Size())
	return result, nil
}

// step processes a single link popped from the queue
func (f *Frontier) step(s *Session, next Link) {
	link, err := next.Canonicalize()
	if err != nil {
		logrus.Debugf("Skipping malformed link %q: %v", next, err)
		f.record(OutcomeUnsupported)
		return
	}

	logrus.Debugf("Trying: %s", link)

	if !s.markVisited(link) {
		logrus.Debug("Already visited")
		f.record(OutcomeAlreadyVisited)
		return
	}

	if !f.fetcher.Accepts(link) {
		logrus.Debug("Not HTML page")
		f.record(OutcomeUnsupported)
		return
	}

	page, err := f.fetcher.Fetch(link)
	if errors.Is(err, ErrFetchDenied) {
		logrus.Debugf("Disallowed: %s", link)
		f.record(OutcomeDenied)
		return
	}
	if err != nil || page.IsEmpty() {
		logrus.Debugf("No page found: %s", link)
		f.record(OutcomeFailed)
		return
	}

	indexed := page.IsIndexable()
	if indexed {
		id := s.assignID(link)
		logrus.Infof("Indexing(%d): %s", s.processed, link)
		f.persist(page, id)
		f.record(OutcomeIndexed)
	} else {
		f.record(OutcomeNotIndexable)
	}

	// The page that reaches the cap contributes no outbound links
	if !s.underCap() {
		return
	}

	outbound := page.OutboundLinks()
	discovered := make([]Link, 0, len(outbound))
	targets := make([]string, 0, len(outbound))
	for _, raw := range outbound {
		canonical, err := raw.Canonicalize()
		if err != nil {
			continue
		}
		discovered = append(discovered, canonical)
		targets = append(targets, canonical.String())
	}

	if indexed {
		s.pending[link.String()] = targets
	}
	s.queue.Push(discovered...)
}

func (f *Frontier) persist(page *CrawledPage, id string) {
	if f.opts.SaveDir == "" {
		return
	}
	if err := page.Persist(f.opts.SaveDir, id); err != nil {
		logrus.Warnf("Failed to persist %s as %s: %v", page.Link, id, err)
	}
}

func (f *Frontier) record(outcome Outcome) {
	if f.metricsCallback != nil {
		f.metricsCallback(outcome)
	}
}
