package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/bassamadnan/lumimail/mailbox"
)

// SQLiteStore persists snapshots in a local SQLite database so they
// survive restarts.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

type sectionRow struct {
	Section            string `db:"section"`
	FetchedAt          int64  `db:"fetched_at"`
	NextPageToken      string `db:"next_page_token"`
	TotalEmails        int    `db:"total_emails"`
	ResultSizeEstimate int64  `db:"result_size_estimate"`
	IsComplete         bool   `db:"is_complete"`
	Emails             string `db:"emails"`
}

// NewSQLiteStore opens (or creates) the database at dbPath, enables WAL
// mode, and runs any pending schema migrations. Missing parent directories
// are created.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// A single connection serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'")
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}
	if tableCount > 0 {
		if err := s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, section mailbox.Section) (*SectionCache, error) {
	var row sectionRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM sections WHERE section = ?", string(section))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting section %s: %w", section, err)
	}

	entry := SectionCache{
		Meta: Meta{
			Timestamp:          time.UnixMilli(row.FetchedAt),
			NextPageToken:      row.NextPageToken,
			TotalEmails:        row.TotalEmails,
			ResultSizeEstimate: row.ResultSizeEstimate,
			IsComplete:         row.IsComplete,
		},
	}
	if err := json.Unmarshal([]byte(row.Emails), &entry.Emails); err != nil {
		return nil, fmt.Errorf("unmarshaling emails for %s: %w", section, err)
	}
	return &entry, nil
}

// Put replaces the section's row in a single statement.
func (s *SQLiteStore) Put(ctx context.Context, section mailbox.Section, entry SectionCache) error {
	entry = entry.Normalize()
	emails, err := json.Marshal(entry.Emails)
	if err != nil {
		return fmt.Errorf("marshaling emails for %s: %w", section, err)
	}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT OR REPLACE INTO sections (
			section, fetched_at, next_page_token, total_emails,
			result_size_estimate, is_complete, emails
		) VALUES (
			:section, :fetched_at, :next_page_token, :total_emails,
			:result_size_estimate, :is_complete, :emails
		)`,
		sectionRow{
			Section:            string(section),
			FetchedAt:          entry.Meta.Timestamp.UnixMilli(),
			NextPageToken:      entry.Meta.NextPageToken,
			TotalEmails:        entry.Meta.TotalEmails,
			ResultSizeEstimate: entry.Meta.ResultSizeEstimate,
			IsComplete:         entry.Meta.IsComplete,
			Emails:             string(emails),
		},
	)
	if err != nil {
		return fmt.Errorf("storing section %s: %w", section, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, section mailbox.Section) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sections WHERE section = ?", string(section)); err != nil {
		return fmt.Errorf("deleting section %s: %w", section, err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sections"); err != nil {
		return fmt.Errorf("clearing sections: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sections WHERE fetched_at < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("pruning sections: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
