package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"enigma/internal/codec"
	"enigma/internal/domain"
	"enigma/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

var _ repository.Repository = (*Repository)(nil)

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: pragmas are per connection and :memory: databases are
	// per connection too.
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := r.db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		name TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		settings TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		settings_name TEXT,
		settings TEXT NOT NULL,
		positions TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		input TEXT NOT NULL,
		output TEXT NOT NULL,
		start_positions TEXT NOT NULL,
		end_positions TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_settings_fingerprint ON settings(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Close closes the database
func (r *Repository) Close() error {
	return r.db.Close()
}

// ============================================================================
// Settings
// ============================================================================

// execer is satisfied by *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// SaveSettings inserts or replaces settings by name. The fingerprint and
// timestamps are filled in on ns.
func (r *Repository) SaveSettings(ctx context.Context, ns *domain.NamedSettings) error {
	return r.saveSettings(ctx, r.db, ns)
}

func (r *Repository) saveSettings(ctx context.Context, db execer, ns *domain.NamedSettings) error {
	if ns.Name == "" {
		return fmt.Errorf("settings name is required")
	}

	fp, err := codec.Fingerprint(ns.Settings)
	if err != nil {
		return err
	}
	data, err := marshalJSON(ns.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	now := r.now()
	// An overwrite keeps the row's original created_at
	var createdAt int64
	err = db.QueryRowContext(ctx, `
		INSERT INTO settings (name, fingerprint, settings, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			settings = excluded.settings,
			updated_at = excluded.updated_at
		RETURNING created_at
	`, ns.Name, fp, data, toMillis(now), toMillis(now)).Scan(&createdAt)
	if err != nil {
		return fmt.Errorf("failed to save settings %s: %w", ns.Name, err)
	}

	ns.Fingerprint = fp
	ns.CreatedAt = fromMillis(createdAt)
	ns.UpdatedAt = fromMillis(toMillis(now))
	return nil
}

// ImportSettings saves a batch of settings in one transaction
func (r *Repository) ImportSettings(ctx context.Context, batch []domain.NamedSettings) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range batch {
		if err := r.saveSettings(ctx, tx, &batch[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

// GetSettings returns settings by name, or nil if absent
func (r *Repository) GetSettings(ctx context.Context, name string) (*domain.NamedSettings, error) {
	var row settingsRow
	err := r.db.QueryRowContext(ctx,
		`SELECT `+settingsColumns+` FROM settings WHERE name = ?`, name,
	).Scan(row.scanArgs()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query settings %s: %w", name, err)
	}
	return row.toDomain()
}

// ListSettings returns all settings ordered by name
func (r *Repository) ListSettings(ctx context.Context) ([]domain.NamedSettings, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+settingsColumns+` FROM settings ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	out := []domain.NamedSettings{}
	for rows.Next() {
		var row settingsRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan settings: %w", err)
		}
		ns, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *ns)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}
	return out, nil
}

// DeleteSettings removes settings by name. Sessions keep their snapshot.
func (r *Repository) DeleteSettings(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete settings %s: %w", name, err)
	}
	return expectAffected(res, "settings "+name)
}

// ============================================================================
// Sessions
// ============================================================================

// CreateSession stores a new session
func (r *Repository) CreateSession(ctx context.Context, s *domain.Session) error {
	settings, err := marshalJSON(s.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	positions, err := marshalJSON(s.Positions)
	if err != nil {
		return fmt.Errorf("failed to marshal positions: %w", err)
	}

	now := fromMillis(toMillis(r.now()))
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID, stringToNull(s.SettingsName), settings, positions, toMillis(now), toMillis(now))
	if err != nil {
		return fmt.Errorf("failed to create session %s: %w", s.ID, err)
	}

	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

// GetSession returns a session by ID, or nil if absent
func (r *Repository) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	var row sessionRow
	err := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id,
	).Scan(row.scanArgs()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session %s: %w", id, err)
	}
	return row.toDomain()
}

// UpdateSessionPositions stores new rotor positions for a session
func (r *Repository) UpdateSessionPositions(ctx context.Context, id string, positions []int) error {
	return r.updatePositions(ctx, r.db, id, positions)
}

func (r *Repository) updatePositions(ctx context.Context, db execer, id string, positions []int) error {
	data, err := marshalJSON(positions)
	if err != nil {
		return fmt.Errorf("failed to marshal positions: %w", err)
	}
	res, err := db.ExecContext(ctx,
		`UPDATE sessions SET positions = ?, updated_at = ? WHERE id = ?`,
		data, toMillis(r.now()), id)
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", id, err)
	}
	return expectAffected(res, "session "+id)
}

// DeleteSession removes a session and its journal
func (r *Repository) DeleteSession(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return expectAffected(res, "session "+id)
}

// ============================================================================
// Messages
// ============================================================================

// RecordMessage appends a journal entry and moves the session to the
// message's end positions in one transaction
func (r *Repository) RecordMessage(ctx context.Context, msg *domain.Message) error {
	start, err := marshalJSON(msg.StartPositions)
	if err != nil {
		return fmt.Errorf("failed to marshal start positions: %w", err)
	}
	end, err := marshalJSON(msg.EndPositions)
	if err != nil {
		return fmt.Errorf("failed to marshal end positions: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.updatePositions(ctx, tx, msg.SessionID, msg.EndPositions); err != nil {
		return err
	}

	now := fromMillis(toMillis(r.now()))
	res, err := tx.ExecContext(ctx, `
		INSERT INTO messages (session_id, input, output, start_positions, end_positions, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.SessionID, msg.Input, msg.Output, start, end, toMillis(now))
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read message id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit message: %w", err)
	}

	msg.ID = id
	msg.CreatedAt = now
	return nil
}

// ListMessages returns a session's journal in the order it was written
func (r *Repository) ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	out := []domain.Message{}
	for rows.Next() {
		var row messageRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return out, nil
}

func expectAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, repository.ErrNotFound)
	}
	return nil
}
