package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/optifeed/optifeed/internal/models"
)

// Store wraps the embedded news database. One pipeline process writes at a
// time; WAL mode keeps concurrent readers safe.
type Store struct {
	conn *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS news (
	id TEXT PRIMARY KEY,
	text TEXT,
	tickers TEXT,
	date TEXT,
	source TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS analyzed_news (
	id TEXT PRIMARY KEY,
	text TEXT,
	impact_score REAL,
	magnitude_score REAL,
	affected_sectors TEXT,
	sent INTEGER DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// NewStore opens (creating if needed) the database file and applies the
// idempotent schema.
func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("[Store] failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("[Store] failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("[Store] failed to ping database: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		return nil, fmt.Errorf("[Store] failed to initialize schema: %w", err)
	}

	conn.SetMaxOpenConns(1)

	slog.Info("[Store] Database initialized", slog.String("path", dbPath))
	return &Store{conn: conn, path: dbPath}, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// IsCached reports whether a news id has already been ingested.
func (s *Store) IsCached(newsID string) (bool, error) {
	var one int
	err := s.conn.QueryRow("SELECT 1 FROM news WHERE id = ?", newsID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("[Store] cache lookup failed: %w", err)
	}
	return true, nil
}

// SaveNewsItems inserts each item, silently skipping ids already present.
// Duplicates are expected, not an error.
func (s *Store) SaveNewsItems(items []models.NewsItem) error {
	for _, item := range items {
		_, err := s.conn.Exec(
			`INSERT INTO news (id, text, tickers, date, source)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO NOTHING`,
			item.ID, item.Text, item.Tickers, item.Date, item.Source,
		)
		if err != nil {
			return fmt.Errorf("[Store] failed to save news item %s: %w", item.ID, err)
		}
	}
	slog.Info("[Store] Saved raw news items", slog.Int("count", len(items)))
	return nil
}

// SaveAnalyzedNews stores one analysis row with sent=0, skipping duplicates.
func (s *Store) SaveAnalyzedNews(news models.AnalyzedNews) error {
	_, err := s.conn.Exec(
		`INSERT INTO analyzed_news (id, text, impact_score, magnitude_score, affected_sectors, sent)
		 VALUES (?, ?, ?, ?, ?, 0)
		 ON CONFLICT(id) DO NOTHING`,
		news.ID, news.Text, news.ImpactScore, news.MagnitudeScore,
		strings.Join(news.AffectedSectors, ","),
	)
	if err != nil {
		return fmt.Errorf("[Store] failed to save analyzed news %s: %w", news.ID, err)
	}
	return nil
}

// GetAllCachedNews returns every ingested item, newest first.
func (s *Store) GetAllCachedNews() ([]models.NewsItem, error) {
	rows, err := s.conn.Query(
		"SELECT id, text, tickers, date, source FROM news ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("[Store] failed to query news: %w", err)
	}
	defer rows.Close()

	var items []models.NewsItem
	for rows.Next() {
		var item models.NewsItem
		if err := rows.Scan(&item.ID, &item.Text, &item.Tickers, &item.Date, &item.Source); err != nil {
			return nil, fmt.Errorf("[Store] failed to scan news row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetUnsentAnalyzedNews returns undelivered analysis rows, newest first.
func (s *Store) GetUnsentAnalyzedNews() ([]models.AnalyzedNews, error) {
	rows, err := s.conn.Query(
		`SELECT id, text, impact_score, magnitude_score, affected_sectors
		 FROM analyzed_news
		 WHERE sent IS NULL OR sent = 0
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("[Store] failed to query analyzed news: %w", err)
	}
	defer rows.Close()

	var items []models.AnalyzedNews
	for rows.Next() {
		var item models.AnalyzedNews
		var sectors string
		if err := rows.Scan(&item.ID, &item.Text, &item.ImpactScore, &item.MagnitudeScore, &sectors); err != nil {
			return nil, fmt.Errorf("[Store] failed to scan analyzed news row: %w", err)
		}
		if sectors != "" {
			item.AffectedSectors = strings.Split(sectors, ",")
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// MarkAsSent flips the delivery flag for one analysis row. Idempotent.
func (s *Store) MarkAsSent(newsID string) error {
	_, err := s.conn.Exec("UPDATE analyzed_news SET sent = 1 WHERE id = ?", newsID)
	if err != nil {
		return fmt.Errorf("[Store] failed to mark %s as sent: %w", newsID, err)
	}
	slog.Debug("[Store] Marked analyzed news as sent", slog.String("id", newsID))
	return nil
}
