package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alvmarrod/rank-weaver/internal/config"
	"github.com/alvmarrod/rank-weaver/internal/crawler"
	"github.com/alvmarrod/rank-weaver/internal/graph"
	"github.com/alvmarrod/rank-weaver/internal/metrics"
	"github.com/alvmarrod/rank-weaver/internal/pagerank"
	"github.com/alvmarrod/rank-weaver/internal/report"
	"github.com/alvmarrod/rank-weaver/internal/storage"
	"github.com/alvmarrod/rank-weaver/internal/version"
	"github.com/sirupsen/logrus"
)

// runSummary is what a completed run produced
type runSummary struct {
	RunID      string
	Crawl      *crawler.CrawlResult
	Graph      *graph.Graph
	Ranks      pagerank.Table
	ReportPath string
	Metrics    storage.Metrics
}

// reasonCrawlFailed marks a run row whose crawl returned an error
const reasonCrawlFailed = "crawl_failed"

// run executes crawl, graph build, ranking and reporting in sequence.
// The summary is returned with the run ID even when the crawl fails.
func run(cfg *config.Config, fetcher crawler.Fetcher) (*runSummary, error) {
	logrus.Infof("Rank Weaver v%s starting...", version.Version)
	logrus.Infof("Configuration loaded: start=%s, max_count=%d, alpha=%g, passes=%d, robots=%t",
		cfg.StartURL, cfg.MaxCount, cfg.Alpha, cfg.Passes, cfg.ObeyRobots)

	if err := os.MkdirAll(cfg.OutputDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	store, err := storage.NewStorage(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	logrus.Infof("Database initialized: %s", cfg.DBPath)

	summary := &runSummary{RunID: storage.NewRunID()}
	tracker := metrics.NewTracker(summary.RunID)

	if err := store.CreateRun(storage.Run{
		RunID:     summary.RunID,
		StartURL:  cfg.StartURL,
		MaxCount:  cfg.MaxCount,
		Alpha:     cfg.Alpha,
		Passes:    cfg.Passes,
		StartedAt: time.Now(),
	}); err != nil {
		return nil, err
	}

	logrus.Info("Step 1/4: Crawling...")

	var seeds []crawler.Link
	if cfg.StartURL != "" {
		seeds = append(seeds, crawler.Link(cfg.StartURL))
	}

	frontier := crawler.NewFrontier(fetcher, crawler.Options{
		MaxCount: cfg.MaxCount,
		SaveDir:  cfg.OutputDir,
		Slow:     cfg.Slow,
		Delay:    time.Duration(cfg.SlowDelayMs) * time.Millisecond,
	}, tracker.RecordOutcome)

	result, err := frontier.Run(seeds...)
	if err != nil {
		if finishErr := store.FinishRun(summary.RunID, 0, reasonCrawlFailed, time.Now()); finishErr != nil {
			logrus.Errorf("Failed to finish run: %v", finishErr)
		}
		return summary, fmt.Errorf("crawl failed: %w", err)
	}
	summary.Crawl = result

	logrus.Info("Step 2/4: Building link graph...")

	summary.Graph = graph.Build(result.Index, result.Pending)
	nodes, edges := summary.Graph.GetStats()
	tracker.SetGraphStats(nodes, edges)
	logrus.Infof("Graph built: %d nodes, %d edges", nodes, edges)

	if nodes == 0 {
		logrus.Warn("No pages were indexed, skipping ranking")
	} else {
		logrus.Infof("Step 3/4: Ranking %d pages...", nodes)

		engine := pagerank.New(cfg.Alpha, cfg.Passes)
		engine.OnPass = func(pass int, ranks pagerank.Table) {
			tracker.IncrementRankPasses()
			logrus.Debugf("Pass %d complete, rank mass %.12f", pass, ranks.Sum())
		}
		summary.Ranks = engine.Rank(summary.Graph)

		summary.ReportPath = report.WriteFile(cfg.OutputDir, summary.Ranks)
		logrus.Infof("Ranks written to %s", summary.ReportPath)
	}

	logrus.Info("Step 4/4: Persisting run...")
	persistRun(store, summary)

	logrus.Info("Final stats: " + tracker.LogProgress())
	if err := tracker.WriteToFile(cfg.MetricsPath, result.Reason); err != nil {
		logrus.Errorf("Failed to write metrics: %v", err)
	} else {
		logrus.Infof("Metrics written to %s", cfg.MetricsPath)
	}
	summary.Metrics = tracker.GetSnapshot()

	return summary, nil
}

// persistRun stores graph and ranks; failures are logged, not returned
func persistRun(store *storage.Storage, summary *runSummary) {
	if err := summary.Graph.Flush(store, summary.RunID); err != nil {
		logrus.Errorf("Failed to flush graph: %v", err)
	}

	if len(summary.Ranks) > 0 {
		if err := store.SaveRanks(summary.RunID, summary.Ranks); err != nil {
			logrus.Errorf("Failed to save ranks: %v", err)
		}
	}

	if err := store.FinishRun(summary.RunID, summary.Crawl.Processed, summary.Crawl.Reason, time.Now()); err != nil {
		logrus.Errorf("Failed to finish run: %v", err)
	}
}
