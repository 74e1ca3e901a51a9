package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// Snapshot is one accepted configuration document.
type Snapshot struct {
	// ID is a UUID v4 assigned when the snapshot is taken.
	ID string `json:"id"`

	// Time is when the apply that produced this snapshot succeeded.
	Time time.Time `json:"time"`

	// Hash is the hex-encoded SHA-256 of Text.
	Hash string `json:"hash"`

	// Source describes where the document came from.
	Source string `json:"source,omitempty"`

	// Text is the full configuration document. List leaves it empty;
	// Get and Latest populate it.
	Text string `json:"text,omitempty"`
}

// Config configures the snapshot store.
type Config struct {
	// Path is the database file path. The parent directory must exist.
	Path string

	// Keep is how many snapshots to retain. Saving past the limit
	// deletes the oldest. 0 keeps everything.
	Keep int

	// BusyTimeout is how long a statement waits on a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// Store persists configuration snapshots in SQLite.
// It keeps one row per accepted document, newest-first by save time.
type Store struct {
	db     *sql.DB
	config *Config
	logger *slog.Logger
	mu     sync.RWMutex

	saveStmt   *sql.Stmt
	latestStmt *sql.Stmt
	listStmt   *sql.Stmt
	getStmt    *sql.Stmt
	pruneStmt  *sql.Stmt

	closeOnce sync.Once
}

// New opens (or creates) the snapshot database and initializes the
// schema.
func New(config *Config) (*Store, error) {
	if config == nil || config.Path == "" {
		return nil, fmt.Errorf("history: database path cannot be empty")
	}
	if config.BusyTimeout == 0 {
		config.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		config.Path, config.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{
		db:     db,
		config: config,
		logger: slog.Default().With("component", "history"),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize snapshot schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare snapshot statements: %w", err)
	}

	s.logger.Debug("snapshot store opened",
		"path", config.Path,
		"keep", config.Keep,
	)

	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id         TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		hash       TEXT NOT NULL,
		source     TEXT,
		document   TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) prepareStatements() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO snapshots (id, created_at, hash, source, document)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare save statement: %w", err)
	}

	s.latestStmt, err = s.db.Prepare(`
		SELECT id, created_at, hash, source, document
		FROM snapshots
		ORDER BY created_at DESC
		LIMIT 1
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare latest statement: %w", err)
	}

	s.listStmt, err = s.db.Prepare(`
		SELECT id, created_at, hash, source
		FROM snapshots
		ORDER BY created_at DESC
		LIMIT ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}

	s.getStmt, err = s.db.Prepare(`
		SELECT id, created_at, hash, source, document
		FROM snapshots
		WHERE id LIKE ? || '%'
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}

	s.pruneStmt, err = s.db.Prepare(`
		DELETE FROM snapshots
		WHERE id NOT IN (SELECT id FROM snapshots ORDER BY created_at DESC LIMIT ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare prune statement: %w", err)
	}

	return nil
}

// HashText returns the hex-encoded SHA-256 of a document.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Save stores a new snapshot and prunes past the Keep limit. Saving a
// document identical to the latest snapshot returns the existing
// snapshot instead of duplicating it, so restart loops cannot churn
// real history out of the retention window.
func (s *Store) Save(ctx context.Context, source, text string) (*Snapshot, error) {
	hash := HashText(text)

	latest, err := s.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if latest != nil && latest.Hash == hash {
		s.logger.Debug("document unchanged, reusing latest snapshot",
			"snapshot_id", latest.ID,
		)
		return latest, nil
	}

	snapshot := &Snapshot{
		ID:     uuid.New().String(),
		Time:   time.Now(),
		Hash:   hash,
		Source: source,
		Text:   text,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.saveStmt.ExecContext(ctx,
		snapshot.ID,
		snapshot.Time.UnixNano(),
		snapshot.Hash,
		snapshot.Source,
		snapshot.Text,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	if s.config.Keep > 0 {
		result, err := s.pruneStmt.ExecContext(ctx, s.config.Keep)
		if err != nil {
			return nil, fmt.Errorf("failed to prune snapshots: %w", err)
		}
		if pruned, _ := result.RowsAffected(); pruned > 0 {
			s.logger.Debug("pruned old snapshots",
				"pruned", pruned,
				"keep", s.config.Keep,
			)
		}
	}

	s.logger.Info("configuration snapshot saved",
		"snapshot_id", snapshot.ID,
		"hash", snapshot.Hash[:12],
		"source", snapshot.Source,
	)

	return snapshot, nil
}

// Latest returns the most recent snapshot with its full text, or nil
// when the store is empty.
func (s *Store) Latest(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snapshot Snapshot
	var createdAt int64

	err := s.latestStmt.QueryRowContext(ctx).Scan(
		&snapshot.ID, &createdAt, &snapshot.Hash, &snapshot.Source, &snapshot.Text,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}

	snapshot.Time = time.Unix(0, createdAt)
	return &snapshot, nil
}

// List returns snapshot metadata, newest first. Text is not populated;
// use Get for the full document. limit <= 0 returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// LIMIT -1 is SQLite for "no limit".
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.listStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []*Snapshot{}
	for rows.Next() {
		var snapshot Snapshot
		var createdAt int64
		if err := rows.Scan(&snapshot.ID, &createdAt, &snapshot.Hash, &snapshot.Source); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snapshot.Time = time.Unix(0, createdAt)
		snapshots = append(snapshots, &snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}

	return snapshots, nil
}

// Get returns the snapshot whose ID starts with the given prefix,
// including its full text. A prefix matching more than one snapshot is
// an error.
func (s *Store) Get(ctx context.Context, idPrefix string) (*Snapshot, error) {
	if idPrefix == "" {
		return nil, fmt.Errorf("snapshot id cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.getStmt.QueryContext(ctx, idPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	defer rows.Close()

	var found *Snapshot
	for rows.Next() {
		var snapshot Snapshot
		var createdAt int64
		if err := rows.Scan(&snapshot.ID, &createdAt, &snapshot.Hash, &snapshot.Source, &snapshot.Text); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snapshot.Time = time.Unix(0, createdAt)

		if found != nil {
			return nil, fmt.Errorf("snapshot id %q is ambiguous", idPrefix)
		}
		found = &snapshot
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("no snapshot with id %q", idPrefix)
	}

	return found, nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close checkpoints the WAL and closes the database.
// Close is idempotent.
func (s *Store) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.saveStmt, s.latestStmt, s.listStmt, s.getStmt, s.pruneStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}

		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}
