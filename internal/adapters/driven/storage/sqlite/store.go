package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/patrimonia-labs/sitechat/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/patrimonia-labs/sitechat/internal/core/domain"
	"github.com/patrimonia-labs/sitechat/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.HistoryStore = (*Store)(nil)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Store is a SQLite-backed conversation history store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.sitechat/data/history.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sitechat", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// CreateConversation creates a conversation and returns its id.
func (s *Store) CreateConversation(ctx context.Context, title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		title = domain.DefaultConversationTitle
	}

	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, id, title, now, now)
	if err != nil {
		return "", fmt.Errorf("%w: creating conversation: %v", domain.ErrPersistence, err)
	}

	return id, nil
}

// AppendTurn appends a turn to a conversation and bumps its updated_at.
func (s *Store) AppendTurn(ctx context.Context, conversationID string, turn domain.ConversationTurn) error {
	if err := turn.Validate(); err != nil {
		return err
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	sourcesJSON, err := json.Marshal(turn.Sources)
	if err != nil {
		return fmt.Errorf("marshalling sources: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", domain.ErrPersistence, err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `
		UPDATE conversations SET updated_at = ? WHERE id = ?
	`, turn.CreatedAt, conversationID)
	if err != nil {
		return fmt.Errorf("%w: updating conversation: %v", domain.ErrPersistence, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking conversation: %v", domain.ErrPersistence, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO turns (conversation_id, role, content, sources, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, conversationID, string(turn.Role), turn.Content, string(sourcesJSON), turn.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: appending turn: %v", domain.ErrPersistence, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", domain.ErrPersistence, err)
	}
	return nil
}

// GetTurns returns a conversation's turns in chronological order.
func (s *Store) GetTurns(ctx context.Context, conversationID string) ([]domain.ConversationTurn, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM conversations WHERE id = ?", conversationID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: checking conversation: %v", domain.ErrPersistence, err)
	}
	if exists == 0 {
		return nil, domain.ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, sources, created_at
		FROM turns WHERE conversation_id = ?
		ORDER BY id
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying turns: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var turns []domain.ConversationTurn //nolint:prealloc // size unknown from query
	for rows.Next() {
		var turn domain.ConversationTurn
		var role string
		var sourcesJSON sql.NullString
		if err := rows.Scan(&role, &turn.Content, &sourcesJSON, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}

		turn.Role, err = domain.ParseRole(role)
		if err != nil {
			return nil, fmt.Errorf("%w: turn has invalid role %q", domain.ErrDataIntegrity, role)
		}

		if sourcesJSON.Valid && sourcesJSON.String != "" && sourcesJSON.String != jsonNull {
			if err := json.Unmarshal([]byte(sourcesJSON.String), &turn.Sources); err != nil {
				return nil, fmt.Errorf("unmarshaling sources: %w", err)
			}
		}

		turns = append(turns, turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns: %w", err)
	}

	return turns, nil
}

// ListConversations returns conversation summaries, newest-updated first.
// A non-empty searchTerm matches titles or turn content, case-insensitive.
func (s *Store) ListConversations(ctx context.Context, searchTerm string) ([]domain.ConversationSummary, error) {
	query := `
		SELECT c.id, c.title, c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM turns t WHERE t.conversation_id = c.id) AS turn_count
		FROM conversations c
	`
	args := []any{}
	if searchTerm != "" {
		query += `
		WHERE c.title LIKE ? COLLATE NOCASE
			OR EXISTS (
				SELECT 1 FROM turns t
				WHERE t.conversation_id = c.id AND t.content LIKE ? COLLATE NOCASE
			)`
		pattern := "%" + searchTerm + "%"
		args = append(args, pattern, pattern)
	}
	query += " ORDER BY c.updated_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying conversations: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var summaries []domain.ConversationSummary //nolint:prealloc // size unknown from query
	for rows.Next() {
		var summary domain.ConversationSummary
		if err := rows.Scan(&summary.ID, &summary.Title,
			&summary.CreatedAt, &summary.UpdatedAt, &summary.TurnCount); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversations: %w", err)
	}

	return summaries, nil
}

// RenameConversation updates a conversation title.
func (s *Store) RenameConversation(ctx context.Context, conversationID, title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: empty title", domain.ErrInvalidInput)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE conversations SET title = ?, updated_at = ? WHERE id = ?
	`, title, time.Now().UTC(), conversationID)
	if err != nil {
		return fmt.Errorf("%w: renaming conversation: %v", domain.ErrPersistence, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rename: %v", domain.ErrPersistence, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteConversation removes a conversation; its turns cascade.
func (s *Store) DeleteConversation(ctx context.Context, conversationID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM conversations WHERE id = ?", conversationID)
	if err != nil {
		return fmt.Errorf("%w: deleting conversation: %v", domain.ErrPersistence, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking delete: %v", domain.ErrPersistence, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Stats returns overall history counts.
func (s *Store) Stats(ctx context.Context) (driven.HistoryStats, error) {
	var stats driven.HistoryStats

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM conversations").Scan(&stats.Conversations)
	if err != nil {
		return stats, fmt.Errorf("%w: counting conversations: %v", domain.ErrPersistence, err)
	}

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM turns").Scan(&stats.Turns)
	if err != nil {
		return stats, fmt.Errorf("%w: counting turns: %v", domain.ErrPersistence, err)
	}

	return stats, nil
}
