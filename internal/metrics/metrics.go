package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alvmarrod/rank-weaver/internal/crawler"
	"github.com/alvmarrod/rank-weaver/internal/storage"
)

// Tracker holds and manages crawl metrics
type Tracker struct {
	mu   sync.Mutex
	data storage.Metrics
}

// NewTracker creates a new metrics tracker
func NewTracker(runID string) *Tracker {
	return &Tracker{
		data: storage.Metrics{
			RunID:     runID,
			StartTime: time.Now(),
		},
	}
}

// RecordOutcome counts one link popped from the frontier
func (t *Tracker) RecordOutcome(outcome crawler.Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data.LinksTried++
	switch outcome {
	case crawler.OutcomeIndexed:
		t.data.PagesIndexed++
	case crawler.OutcomeNotIndexable:
		t.data.PagesNotIndexable++
	case crawler.OutcomeAlreadyVisited:
		t.data.AlreadyVisited++
	case crawler.OutcomeUnsupported:
		t.data.Unsupported++
	case crawler.OutcomeDenied:
		t.data.FetchesDenied++
	case crawler.OutcomeFailed:
		t.data.FetchesFailed++
	}
}

// SetGraphStats records the size of the built graph
func (t *Tracker) SetGraphStats(nodes, edges int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.GraphNodes = nodes
	t.data.GraphEdges = edges
}

// IncrementRankPasses counts a completed PageRank pass
func (t *Tracker) IncrementRankPasses() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.RankPasses++
}

// GetSnapshot returns a copy of current metrics
func (t *Tracker) GetSnapshot() storage.Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data
}

// WriteToFile exports metrics to a JSON file
func (t *Tracker) WriteToFile(path, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Finalize metrics
	t.data.EndTime = time.Now()
	t.data.TerminationReason = reason

	jsonData, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create metrics dir: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0o644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	return nil
}

// LogProgress formats current metrics for a log line
func (t *Tracker) LogProgress() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fmt.Sprintf("Links: %d tried, %d indexed, %d visited, %d unsupported | Fetches: %d denied, %d failed | Graph: %d nodes, %d edges | Passes: %d",
		t.data.LinksTried,
		t.data.PagesIndexed,
		t.data.AlreadyVisited,
		t.data.Unsupported,
		t.data.FetchesDenied,
		t.data.FetchesFailed,
		t.data.GraphNodes,
		t.data.GraphEdges,
		t.data.RankPasses,
	)
}
