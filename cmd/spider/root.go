package main

import (
	"time"

	"github.com/alvmarrod/rank-weaver/internal/config"
	"github.com/alvmarrod/rank-weaver/internal/crawler"
	"github.com/alvmarrod/rank-weaver/internal/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type rootOptions struct {
	configPath string
	startURL   string
	outputDir  string
	maxCount   int
	safe       bool
	slow       bool
	alpha      float64
	passes     int
	dbPath     string
	verbose    bool
}

// NewRootCmd creates the spider command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spider",
		Short: "Crawl a bounded set of pages and rank them with PageRank",
		Long: `spider crawls breadth-first from a start URL, saving up to a fixed number
of pages, builds the link graph between the saved pages and writes a
PageRank score for each of them to page_ranks.txt in the output directory.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config(cmd.Flags())
			if err != nil {
				return err
			}
			setupLogging(opts.verbose)

			fetcher := crawler.NewCollyFetcher(crawler.FetcherConfig{
				UserAgent:  cfg.UserAgent,
				ObeyRobots: cfg.ObeyRobots,
				Timeout:    time.Duration(cfg.RequestTimeoutMs) * time.Millisecond,
			})

			_, err = run(cfg, fetcher)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "JSON configuration file")
	flags.StringVarP(&opts.startURL, "url", "u", "", "start crawling at `url`")
	flags.StringVarP(&opts.outputDir, "dir", "d", "", "store indexed pages and reports in `dir`")
	flags.IntVarP(&opts.maxCount, "count", "c", 0, "index at most `n` pages (default 10000)")
	flags.BoolVar(&opts.safe, "safe", false, "obey robots.txt and robots META directives")
	flags.BoolVar(&opts.slow, "slow", false, "pause before fetching each page")
	flags.Float64Var(&opts.alpha, "alpha", 0, "PageRank teleportation probability (default 0.15)")
	flags.IntVar(&opts.passes, "passes", 0, "number of PageRank passes (default 50)")
	flags.StringVar(&opts.dbPath, "db", "", "SQLite database path (default <dir>/spider.db)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

// config merges the config file with flags that were set explicitly
func (o *rootOptions) config(flags *pflag.FlagSet) (*config.Config, error) {
	return config.LoadConfig(o.configPath, func(cfg *config.Config) {
		if flags.Changed("url") {
			cfg.StartURL = o.startURL
		}
		if flags.Changed("dir") {
			cfg.OutputDir = o.outputDir
		}
		if flags.Changed("count") {
			cfg.MaxCount = o.maxCount
		}
		if flags.Changed("safe") {
			cfg.ObeyRobots = o.safe
		}
		if flags.Changed("slow") {
			cfg.Slow = o.slow
		}
		if flags.Changed("alpha") {
			cfg.Alpha = o.alpha
		}
		if flags.Changed("passes") {
			cfg.Passes = o.passes
		}
		if flags.Changed("db") {
			cfg.DBPath = o.dbPath
		}
	})
}

func setupLogging(verbose bool) {
	logrus.SetLevel(logrus.InfoLevel)
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}
