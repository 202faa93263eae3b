package analytics

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists page views in a SQLite database. Timestamps are stored as
// unix seconds; daily grouping happens in SQL via strftime.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at path, ensures the parent
// directory exists, and runs schema setup.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL plus a busy timeout so the beacon's concurrent writes wait instead
	// of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS page_views (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    visitor TEXT NOT NULL,
    ip_hash TEXT NOT NULL,
    browser TEXT NOT NULL,
    os TEXT NOT NULL,
    device TEXT NOT NULL,
    locale TEXT NOT NULL,
    path TEXT NOT NULL,
    referrer TEXT NOT NULL,
    viewed_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS crawler_views (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    crawler TEXT NOT NULL,
    user_agent TEXT NOT NULL,
    path TEXT NOT NULL,
    viewed_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_page_views_viewed_at ON page_views(viewed_at);
CREATE INDEX IF NOT EXISTS idx_page_views_visitor ON page_views(visitor);
CREATE INDEX IF NOT EXISTS idx_crawler_views_viewed_at ON crawler_views(viewed_at);
`)
	return err
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Setting returns the stored value for key, or empty string when unset.
func (s *Store) Setting(key string) (string, error) {
	var val string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return val, err
}

// SetSetting stores a value under key, replacing any previous one.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// SaveView records one human page view.
func (s *Store) SaveView(v PageView) error {
	_, err := s.db.Exec(`
INSERT INTO page_views (visitor, ip_hash, browser, os, device, locale, path, referrer, viewed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.Visitor, v.IPHash, v.Browser, v.OS, v.Device, v.Locale, v.Path, v.Referrer, v.ViewedAt.Unix())
	return err
}

// SaveCrawlerView records one crawler page view.
func (s *Store) SaveCrawlerView(v CrawlerView) error {
	_, err := s.db.Exec(`
INSERT INTO crawler_views (crawler, user_agent, path, viewed_at) VALUES (?, ?, ?, ?)`,
		v.Crawler, v.UserAgent, v.Path, v.ViewedAt.Unix())
	return err
}

const breakdownLimit = 10

// Stats aggregates human traffic between from and to (half-open interval).
func (s *Store) Stats(from, to time.Time) (*Stats, error) {
	stats := &Stats{
		Period:    from.Format("2006-01-02") + " to " + to.Format("2006-01-02"),
		TopPages:  []PageCount{},
		Referrers: []NameCount{},
		Browsers:  []NameCount{},
		Devices:   []NameCount{},
		Locales:   []NameCount{},
		Daily:     []DailyCount{},
	}
	lo, hi := from.Unix(), to.Unix()

	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM page_views WHERE viewed_at >= ? AND viewed_at < ?`, lo, hi).
		Scan(&stats.TotalViews)
	if err != nil {
		return nil, fmt.Errorf("count views: %w", err)
	}
	err = s.db.QueryRow(
		`SELECT COUNT(DISTINCT visitor) FROM page_views WHERE viewed_at >= ? AND viewed_at < ?`, lo, hi).
		Scan(&stats.UniqueVisitors)
	if err != nil {
		return nil, fmt.Errorf("count visitors: %w", err)
	}

	stats.TopPages, err = s.pageCounts(
		`SELECT path, COUNT(*) AS views FROM page_views
		 WHERE viewed_at >= ? AND viewed_at < ?
		 GROUP BY path ORDER BY views DESC, path LIMIT ?`, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("top pages: %w", err)
	}

	for _, dim := range []struct {
		column string
		dest   *[]NameCount
	}{
		{"referrer", &stats.Referrers},
		{"browser", &stats.Browsers},
		{"device", &stats.Devices},
		{"locale", &stats.Locales},
	} {
		*dim.dest, err = s.nameCounts(fmt.Sprintf(
			`SELECT %s AS name, COUNT(*) AS count FROM page_views
			 WHERE viewed_at >= ? AND viewed_at < ?
			 GROUP BY name ORDER BY count DESC, name LIMIT ?`, dim.column), lo, hi)
		if err != nil {
			return nil, fmt.Errorf("%s breakdown: %w", dim.column, err)
		}
	}

	stats.Daily, err = s.dailyCounts(
		`SELECT strftime('%Y-%m-%d', viewed_at, 'unixepoch') AS day, COUNT(*) AS views
		 FROM page_views WHERE viewed_at >= ? AND viewed_at < ?
		 GROUP BY day ORDER BY day`, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("daily views: %w", err)
	}
	return stats, nil
}

// CrawlerStats aggregates bot traffic between from and to.
func (s *Store) CrawlerStats(from, to time.Time) (*CrawlerStats, error) {
	stats := &CrawlerStats{
		Period:      from.Format("2006-01-02") + " to " + to.Format("2006-01-02"),
		TopCrawlers: []NameCount{},
		TopPages:    []PageCount{},
		Daily:       []DailyCount{},
	}
	lo, hi := from.Unix(), to.Unix()

	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM crawler_views WHERE viewed_at >= ? AND viewed_at < ?`, lo, hi).
		Scan(&stats.TotalVisits)
	if err != nil {
		return nil, fmt.Errorf("count crawler visits: %w", err)
	}

	stats.TopCrawlers, err = s.nameCounts(
		`SELECT crawler AS name, COUNT(*) AS count FROM crawler_views
		 WHERE viewed_at >= ? AND viewed_at < ?
		 GROUP BY name ORDER BY count DESC, name LIMIT ?`, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("top crawlers: %w", err)
	}

	stats.TopPages, err = s.pageCounts(
		`SELECT path, COUNT(*) AS views FROM crawler_views
		 WHERE viewed_at >= ? AND viewed_at < ?
		 GROUP BY path ORDER BY views DESC, path LIMIT ?`, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("top crawler pages: %w", err)
	}

	stats.Daily, err = s.dailyCounts(
		`SELECT strftime('%Y-%m-%d', viewed_at, 'unixepoch') AS day, COUNT(*) AS views
		 FROM crawler_views WHERE viewed_at >= ? AND viewed_at < ?
		 GROUP BY day ORDER BY day`, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("daily crawler visits: %w", err)
	}
	return stats, nil
}

func (s *Store) pageCounts(query string, lo, hi int64) ([]PageCount, error) {
	rows, err := s.db.Query(query, lo, hi, breakdownLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []PageCount{}
	for rows.Next() {
		var pc PageCount
		if err := rows.Scan(&pc.Path, &pc.Views); err != nil {
			return nil, err
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}

func (s *Store) nameCounts(query string, lo, hi int64) ([]NameCount, error) {
	rows, err := s.db.Query(query, lo, hi, breakdownLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []NameCount{}
	for rows.Next() {
		var nc NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, err
		}
		out = append(out, nc)
	}
	return out, rows.Err()
}

func (s *Store) dailyCounts(query string, lo, hi int64) ([]DailyCount, error) {
	rows, err := s.db.Query(query, lo, hi)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []DailyCount{}
	for rows.Next() {
		var dc DailyCount
		if err := rows.Scan(&dc.Date, &dc.Views); err != nil {
			return nil, err
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

// RealtimeVisitors counts distinct visitors seen in the last five minutes.
func (s *Store) RealtimeVisitors(now time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(DISTINCT visitor) FROM page_views WHERE viewed_at >= ?`,
		now.Add(-5*time.Minute).Unix()).Scan(&count)
	return count, err
}

// PurgeBefore deletes every view older than cutoff from both tables.
func (s *Store) PurgeBefore(cutoff time.Time) error {
	if _, err := s.db.Exec(`DELETE FROM page_views WHERE viewed_at < ?`, cutoff.Unix()); err != nil {
		return fmt.Errorf("purge page views: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM crawler_views WHERE viewed_at < ?`, cutoff.Unix()); err != nil {
		return fmt.Errorf("purge crawler views: %w", err)
	}
	return nil
}

// StartRetentionSweep periodically drops views older than retention and
// returns a stop function.
func (s *Store) StartRetentionSweep(retention, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = s.PurgeBefore(time.Now().Add(-retention))
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}
