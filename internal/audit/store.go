package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration
)

// ErrNotFound is returned when an entry doesn't exist.
var ErrNotFound = errors.New("entry not found")

// ChainError reports the first entry that breaks the hash chain.
type ChainError struct {
	Sequence uint64
	Reason   string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("history entry %d: %s", e.Sequence, e.Reason)
}

// busyTimeout is how long a writer waits for another process holding the
// database lock.
const busyTimeout = 5 * time.Second

// Store is a hash-chained invocation history backed by SQLite. Several
// processes may append to the same database; the chain head is read under
// the write lock on every Record.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenStore opens or creates a history store at the given path.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS invocations (
			seq          INTEGER PRIMARY KEY,
			ts           TEXT NOT NULL,
			prev_hash    TEXT NOT NULL,
			id           TEXT NOT NULL,
			source       TEXT NOT NULL,
			model_id     TEXT NOT NULL,
			region       TEXT NOT NULL,
			prompt_chars INTEGER NOT NULL,
			output_chars INTEGER NOT NULL,
			duration_ms  INTEGER NOT NULL,
			ok           INTEGER NOT NULL,
			error        TEXT NOT NULL,
			hash         TEXT NOT NULL UNIQUE
		);
		CREATE INDEX IF NOT EXISTS idx_invocations_ts ON invocations(ts);
		CREATE INDEX IF NOT EXISTS idx_invocations_source ON invocations(source);
	`)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// lastEntry returns the sequence and hash of the chain head, zero values
// for an empty store.
func lastEntry(ctx context.Context, conn *sql.Conn) (uint64, string, error) {
	var seq uint64
	var hash string
	err := conn.QueryRowContext(ctx, `
		SELECT seq, hash FROM invocations ORDER BY seq DESC LIMIT 1
	`).Scan(&seq, &hash)
	if err == sql.ErrNoRows {
		return 0, "", nil
	}
	if err != nil {
		return 0, "", fmt.Errorf("loading last entry: %w", err)
	}
	return seq, hash, nil
}

// Record appends an invocation to the history, returning the created entry.
func (s *Store) Record(inv Invocation) (_ *Entry, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()

	// IMMEDIATE takes the write lock before the head is read, so two
	// writers cannot build on the same head.
	if _, err := conn.ExecContext(ctx, `BEGIN IMMEDIATE`); err != nil {
		return nil, fmt.Errorf("locking history: %w", err)
	}
	defer func() {
		if err != nil {
			conn.ExecContext(ctx, `ROLLBACK`)
		}
	}()

	seq, hash, err := lastEntry(ctx, conn)
	if err != nil {
		return nil, err
	}
	entry := NewEntry(seq+1, hash, inv)

	_, err = conn.ExecContext(ctx, `
		INSERT INTO invocations (seq, ts, prev_hash, id, source, model_id, region,
			prompt_chars, output_chars, duration_ms, ok, error, hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.Sequence, entry.Timestamp.Format(time.RFC3339Nano), entry.PrevHash,
		inv.ID, inv.Source, inv.ModelID, inv.Region,
		inv.PromptChars, inv.OutputChars, inv.DurationMs, inv.OK, inv.Error,
		entry.Hash)
	if err != nil {
		return nil, fmt.Errorf("inserting entry: %w", err)
	}

	if _, err = conn.ExecContext(ctx, `COMMIT`); err != nil {
		return nil, fmt.Errorf("committing entry: %w", err)
	}
	return entry, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const selectColumns = `
	SELECT seq, ts, prev_hash, id, source, model_id, region,
		prompt_chars, output_chars, duration_ms, ok, error, hash
	FROM invocations`

// Get retrieves an entry by sequence number.
func (s *Store) Get(seq uint64) (*Entry, error) {
	row := s.db.QueryRow(selectColumns+` WHERE seq = ?`, seq)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return e, err
}

// Count returns the total number of entries.
func (s *Store) Count() (uint64, error) {
	var count uint64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM invocations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return count, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]*Entry, error) {
	rows, err := s.db.Query(selectColumns+` ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent: %w", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

// Verify walks the whole history checking every hash and link.
func (s *Store) Verify() error {
	rows, err := s.db.Query(selectColumns + ` ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	entries, err := scanAll(rows)
	if err != nil {
		return err
	}

	expectSeq := FirstSequence
	prevHash := ""
	for _, e := range entries {
		if e.Sequence != expectSeq {
			return &ChainError{Sequence: expectSeq, Reason: "missing"}
		}
		if e.PrevHash != prevHash {
			return &ChainError{Sequence: e.Sequence, Reason: "previous hash does not match"}
		}
		if !e.Verify() {
			return &ChainError{Sequence: e.Sequence, Reason: "hash mismatch"}
		}
		prevHash = e.Hash
		expectSeq++
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var e Entry
	var tsStr string
	inv := &e.Invocation
	err := row.Scan(&e.Sequence, &tsStr, &e.PrevHash,
		&inv.ID, &inv.Source, &inv.ModelID, &inv.Region,
		&inv.PromptChars, &inv.OutputChars, &inv.DurationMs, &inv.OK, &inv.Error,
		&e.Hash)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning entry: %w", err)
	}

	e.Timestamp, err = time.Parse(time.RFC3339Nano, tsStr)
	if err != nil {
		return nil, fmt.Errorf("entry %d: parsing timestamp: %w", e.Sequence, err)
	}
	return &e, nil
}

func scanAll(rows *sql.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
