package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Storage handles all database operations
type Storage struct {
	db *sql.DB
}

// NewRunID returns a fresh identifier for a run
func NewRunID() string {
	return uuid.NewString()
}

// NewStorage creates a new Storage instance, opening/creating the DB and initializing schema
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	storage := &Storage{db: db}

	// Initialize schema
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema creates tables and indices if they don't exist
func (s *Storage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		start_url TEXT NOT NULL,
		max_count INTEGER NOT NULL,
		alpha REAL NOT NULL,
		passes INTEGER NOT NULL,
		indexed INTEGER DEFAULT 0,
		reason TEXT DEFAULT '',
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS pages (
		run_id TEXT NOT NULL,
		page_id TEXT NOT NULL,
		url TEXT NOT NULL,
		PRIMARY KEY (run_id, page_id),
		FOREIGN KEY (run_id) REFERENCES runs(run_id)
	);

	CREATE TABLE IF NOT EXISTS edges (
		run_id TEXT NOT NULL,
		from_page_id TEXT NOT NULL,
		to_page_id TEXT NOT NULL,
		PRIMARY KEY (run_id, from_page_id, to_page_id),
		FOREIGN KEY (run_id) REFERENCES runs(run_id)
	);

	CREATE TABLE IF NOT EXISTS ranks (
		run_id TEXT NOT NULL,
		page_id TEXT NOT NULL,
		rank REAL NOT NULL,
		PRIMARY KEY (run_id, page_id),
		FOREIGN KEY (run_id) REFERENCES runs(run_id)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(run_id, url);
	CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(run_id, to_page_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateRun inserts the run row
func (s *Storage) CreateRun(run Run) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (run_id, start_url, max_count, alpha, passes, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.RunID, run.StartURL, run.MaxCount, run.Alpha, run.Passes, run.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// FinishRun records the crawl outcome of a run
func (s *Storage) FinishRun(runID string, indexed int, reason string, finishedAt time.Time) error {
	res, err := s.db.Exec(`
		UPDATE runs SET indexed = ?, reason = ?, finished_at = ? WHERE run_id = ?
	`, indexed, reason, finishedAt, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// GetRun retrieves a run by ID, returns nil if not found
func (s *Storage) GetRun(runID string) (*Run, error) {
	var run Run
	var finished sql.NullTime
	err := s.db.QueryRow(`
		SELECT run_id, start_url, max_count, alpha, passes, indexed, reason, started_at, finished_at
		FROM runs
		WHERE run_id = ?
	`, runID).Scan(&run.RunID, &run.StartURL, &run.MaxCount, &run.Alpha, &run.Passes,
		&run.Indexed, &run.Reason, &run.StartedAt, &finished)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return &run, nil
}

// InsertPages stores indexed pages in a single transaction
func (s *Storage) InsertPages(pages []Page) error {
	return s.inTx(`INSERT INTO pages (run_id, page_id, url) VALUES (?, ?, ?)`, len(pages),
		func(stmt *sql.Stmt, i int) error {
			p := pages[i]
			_, err := stmt.Exec(p.RunID, p.PageID, p.URL)
			return err
		})
}

// InsertEdges stores graph edges in a single transaction
func (s *Storage) InsertEdges(edges []Edge) error {
	return s.inTx(`INSERT INTO edges (run_id, from_page_id, to_page_id) VALUES (?, ?, ?)`, len(edges),
		func(stmt *sql.Stmt, i int) error {
			e := edges[i]
			_, err := stmt.Exec(e.RunID, e.FromPageID, e.ToPageID)
			return err
		})
}

// SaveRanks stores the final rank table of a run
func (s *Storage) SaveRanks(runID string, ranks map[string]float64) error {
	ids := make([]string, 0, len(ranks))
	for id := range ranks {
		ids = append(ids, id)
	}
	return s.inTx(`INSERT INTO ranks (run_id, page_id, rank) VALUES (?, ?, ?)`, len(ids),
		func(stmt *sql.Stmt, i int) error {
			_, err := stmt.Exec(runID, ids[i], ranks[ids[i]])
			return err
		})
}

// LoadRanks returns the rank table stored for a run
func (s *Storage) LoadRanks(runID string) (map[string]float64, error) {
	rows, err := s.db.Query(`SELECT page_id, rank FROM ranks WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ranks: %w", err)
	}
	defer rows.Close()

	ranks := make(map[string]float64)
	for rows.Next() {
		var id string
		var rank float64
		if err := rows.Scan(&id, &rank); err != nil {
			return nil, fmt.Errorf("failed to scan rank: %w", err)
		}
		ranks[id] = rank
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ranks: %w", err)
	}

	return ranks, nil
}

// ListPages returns the pages of a run ordered by page ID
func (s *Storage) ListPages(runID string) ([]Page, error) {
	rows, err := s.db.Query(`
		SELECT run_id, page_id, url FROM pages WHERE run_id = ? ORDER BY page_id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.RunID, &p.PageID, &p.URL); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pages: %w", err)
	}

	return pages, nil
}

// ListEdges returns the edges of a run ordered by source then destination
func (s *Storage) ListEdges(runID string) ([]Edge, error) {
	rows, err := s.db.Query(`
		SELECT run_id, from_page_id, to_page_id
		FROM edges
		WHERE run_id = ?
		ORDER BY from_page_id ASC, to_page_id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list edges: %w", err)
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.RunID, &e.FromPageID, &e.ToPageID); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		edges = append(edges, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating edges: %w", err)
	}

	return edges, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// inTx executes a prepared statement n times inside one transaction
func (s *Storage) inTx(query string, n int, exec func(stmt *sql.Stmt, i int) error) error {
	if n == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(query)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if err := exec(stmt, i); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
