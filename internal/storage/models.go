package storage

import "time"

// Run describes one crawl-and-rank execution
type Run struct {
	RunID      string
	StartURL   string
	MaxCount   int
	Alpha      float64
	Passes     int
	Indexed    int
	Reason     string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Page is an indexed page and its assigned node ID
type Page struct {
	RunID  string
	PageID string
	URL    string
}

// Edge represents a directed link between two indexed pages
type Edge struct {
	RunID      string
	FromPageID string
	ToPageID   string
}

// Metrics tracks crawl statistics for export on exit
type Metrics struct {
	RunID             string    `json:"run_id"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	LinksTried        int       `json:"links_tried"`
	PagesIndexed      int       `json:"pages_indexed"`
	PagesNotIndexable int       `json:"pages_not_indexable"`
	AlreadyVisited    int       `json:"already_visited"`
	Unsupported       int       `json:"unsupported"`
	FetchesDenied     int       `json:"fetches_denied"`
	FetchesFailed     int       `json:"fetches_failed"`
	GraphNodes        int       `json:"graph_nodes"`
	GraphEdges        int       `json:"graph_edges"`
	RankPasses        int       `json:"rank_passes"`
	TerminationReason string    `json:"termination_reason"`
}
