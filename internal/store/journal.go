package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Journal outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeRejected     = "rejected"
	OutcomeRefreshError = "refresh_failed"
)

// JournalEntry records one persistence attempt made by the sync layer and how it
// was reconciled. The journal is diagnostic only; it is never replayed.
type JournalEntry struct {
	ID         string    `json:"id"`
	At         time.Time `json:"at"`
	BoardID    int64     `json:"boardId"`
	CardID     int64     `json:"cardId"`
	Op         string    `json:"op"`
	FromListID int64     `json:"fromListId,omitempty"`
	ToListID   int64     `json:"toListId,omitempty"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	ElapsedMS  int64     `json:"elapsedMs"`
}

// Journal is an append-only SQLite log. It is safe for concurrent use; sync
// requests record from their own goroutines.
type Journal struct {
	db *sql.DB
}

func JournalPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "journal.sqlite"), nil
}

func OpenJournal(ctx context.Context, path string) (*Journal, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("journal: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the TUI write while a CLI process reads the journal.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateJournal(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func migrateJournal(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sync_journal (
			id TEXT PRIMARY KEY,
			at_unixms INTEGER NOT NULL,
			board_id INTEGER NOT NULL,
			card_id INTEGER NOT NULL,
			op TEXT NOT NULL,
			from_list_id INTEGER,
			to_list_id INTEGER,
			outcome TEXT NOT NULL,
			error TEXT,
			elapsed_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sync_journal_at ON sync_journal(at_unixms);`,
		`CREATE INDEX IF NOT EXISTS idx_sync_journal_card ON sync_journal(card_id, at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) Record(ctx context.Context, e JournalEntry) error {
	if j == nil {
		return nil
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	_, err := j.db.ExecContext(ctx, `INSERT INTO sync_journal
		(id, at_unixms, board_id, card_id, op, from_list_id, to_list_id, outcome, error, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.At.UnixMilli(), e.BoardID, e.CardID, e.Op,
		nullInt(e.FromListID), nullInt(e.ToListID), e.Outcome, nullString(e.Error), e.ElapsedMS,
	)
	return err
}

// Recent returns the newest entries first. limit <= 0 returns everything.
func (j *Journal) Recent(ctx context.Context, limit int) ([]JournalEntry, error) {
	q := `SELECT id, at_unixms, board_id, card_id, op, from_list_id, to_list_id, outcome, error, elapsed_ms
		FROM sync_journal ORDER BY at_unixms DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]JournalEntry, 0)
	for rows.Next() {
		var (
			e          JournalEntry
			atMS       int64
			from, to   sql.NullInt64
			errMessage sql.NullString
		)
		if err := rows.Scan(&e.ID, &atMS, &e.BoardID, &e.CardID, &e.Op, &from, &to, &e.Outcome, &errMessage, &e.ElapsedMS); err != nil {
			return nil, err
		}
		e.At = time.UnixMilli(atMS).UTC()
		e.FromListID = from.Int64
		e.ToListID = to.Int64
		e.Error = errMessage.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
