package newsletter

import (
	"context"
	"database/sql"
	"fmt"
	"github.com/google/uuid"
	"kadmeia/internal/domain/content"
	_ "modernc.org/sqlite"
	"os"
	"path/filepath"
	"time"
)

type Subscriber struct {
	ID        string
	Email     string
	Lang      content.Lang
	IP        string
	CreatedAt time.Time
}

// Store keeps subscribers in SQLite. Writes go through a single
// connection; reads use a separate read-only pool.
type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating newsletter dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	s := &Store{readDB: readDB, writeDB: writeDB}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS subscribers (
			id         TEXT PRIMARY KEY,
			email      TEXT NOT NULL UNIQUE,
			lang       TEXT NOT NULL DEFAULT 'es',
			ip         TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_subscribers_created ON subscribers(created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	var first error
	for _, db := range []*sql.DB{s.readDB, s.writeDB} {
		if db == nil {
			continue
		}
		if err := db.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Add inserts sub unless its email is already present. It reports whether
// a row was created; either way the stored subscriber is returned.
func (s *Store) Add(ctx context.Context, sub Subscriber) (Subscriber, bool, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	if sub.Lang == "" {
		sub.Lang = content.DefaultLang
	}

	res, err := s.writeDB.ExecContext(ctx, `
		INSERT INTO subscribers (id, email, lang, ip, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(email) DO NOTHING
	`, sub.ID, sub.Email, string(sub.Lang), sub.IP, sub.CreatedAt)
	if err != nil {
		return Subscriber{}, false, fmt.Errorf("inserting subscriber: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Subscriber{}, false, err
	}
	if n == 1 {
		return sub, true, nil
	}

	existing, err := s.ByEmail(ctx, sub.Email)
	if err != nil {
		return Subscriber{}, false, err
	}
	return existing, false, nil
}

func (s *Store) ByEmail(ctx context.Context, email string) (Subscriber, error) {
	var (
		sub  Subscriber
		lang string
	)
	err := s.writeDB.QueryRowContext(ctx,
		"SELECT id, email, lang, ip, created_at FROM subscribers WHERE email = ?", email,
	).Scan(&sub.ID, &sub.Email, &lang, &sub.IP, &sub.CreatedAt)
	if err != nil {
		return Subscriber{}, fmt.Errorf("loading subscriber: %w", err)
	}
	sub.Lang = content.Lang(lang)
	return sub, nil
}

// List returns subscribers newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Subscriber, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := s.readDB.QueryContext(ctx,
		"SELECT id, email, lang, ip, created_at FROM subscribers ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying subscribers: %w", err)
	}
	defer rows.Close()

	var out []Subscriber
	for rows.Next() {
		var (
			sub  Subscriber
			lang string
		)
		if err := rows.Scan(&sub.ID, &sub.Email, &lang, &sub.IP, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning subscriber: %w", err)
		}
		sub.Lang = content.Lang(lang)
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.readDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM subscribers").Scan(&n)
	return n, err
}
