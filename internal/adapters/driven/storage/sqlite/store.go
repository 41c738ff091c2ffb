// Package sqlite provides the durable storage tier: the cache table and
// the append-only correction log, in one SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/artisnova/aria/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/artisnova/aria/internal/core/domain"
	"github.com/artisnova/aria/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides the durable
// cache tier and the correction log through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.aria/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".aria", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

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

// CacheStore returns a CacheStore interface backed by this store.
func (s *Store) CacheStore() driven.CacheStore {
	return &cacheStore{store: s}
}

// CorrectionStore returns a CorrectionStore interface backed by this store.
func (s *Store) CorrectionStore() driven.CorrectionStore {
	return &correctionStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

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

// ==================== Cache Store ====================

// cacheStore implements driven.CacheStore.
type cacheStore struct {
	store *Store
}

var _ driven.CacheStore = (*cacheStore)(nil)

// Get retrieves the cache entry for a key, expired or not.
func (s *cacheStore) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT key, payload, created_at, expires_at, access_count, last_accessed_at
		FROM cache_entries WHERE key = ?
	`, key)

	entry, err := scanCacheEntry(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("%w: scanning cache entry: %w", domain.ErrCacheUnavailable, err)
	}
	return entry, nil
}

// Set writes the entry, replacing any previous entry for the key.
// The upsert is atomic at single-key granularity.
func (s *cacheStore) Set(ctx context.Context, entry domain.CacheEntry) error {
	payloadJSON, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("marshalling payload: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, payload, created_at, expires_at, access_count, last_accessed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at,
			access_count = excluded.access_count,
			last_accessed_at = excluded.last_accessed_at
	`, entry.Key, string(payloadJSON), entry.CreatedAt.UTC(), entry.ExpiresAt.UTC(),
		entry.AccessCount, entry.LastAccessedAt.UTC())

	if err != nil {
		return fmt.Errorf("saving cache entry: %w", err)
	}
	return nil
}

// Touch updates access metadata for a key after a hit.
func (s *cacheStore) Touch(ctx context.Context, key string, accessedAt time.Time) error {
	_, err := s.store.db.ExecContext(ctx, `
		UPDATE cache_entries
		SET access_count = access_count + 1, last_accessed_at = ?
		WHERE key = ?
	`, accessedAt.UTC(), key)
	if err != nil {
		return fmt.Errorf("touching cache entry: %w", err)
	}
	return nil
}

// Invalidate removes the entry for the key.
func (s *cacheStore) Invalidate(ctx context.Context, key string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// Purge removes all entries expired at the given instant.
func (s *cacheStore) Purge(ctx context.Context, now time.Time) (int, error) {
	result, err := s.store.db.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE expires_at < ?", now.UTC())
	if err != nil {
		return 0, fmt.Errorf("purging cache entries: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting purged entries: %w", err)
	}
	return int(removed), nil
}

// Entries returns all non-expired entries.
func (s *cacheStore) Entries(ctx context.Context, now time.Time) ([]domain.CacheEntry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT key, payload, created_at, expires_at, access_count, last_accessed_at
		FROM cache_entries WHERE expires_at >= ?
	`, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("querying cache entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.CacheEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		entry, err := scanCacheEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning cache entry: %w", err)
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cache entries: %w", err)
	}
	return entries, nil
}

// Close is a no-op; the parent Store owns the connection.
func (s *cacheStore) Close() error {
	return nil
}

// scanCacheEntry hydrates one row via the given scan function.
func scanCacheEntry(scan func(dest ...any) error) (*domain.CacheEntry, error) {
	var entry domain.CacheEntry
	var payloadJSON string
	var createdAt, expiresAt, lastAccessedAt sql.NullTime
	if err := scan(&entry.Key, &payloadJSON, &createdAt, &expiresAt,
		&entry.AccessCount, &lastAccessedAt); err != nil {
		return nil, err
	}

	if payloadJSON != "" && payloadJSON != "null" {
		if err := json.Unmarshal([]byte(payloadJSON), &entry.Payload); err != nil {
			return nil, fmt.Errorf("unmarshaling payload: %w", err)
		}
	}
	if createdAt.Valid {
		entry.CreatedAt = createdAt.Time
	}
	if expiresAt.Valid {
		entry.ExpiresAt = expiresAt.Time
	}
	if lastAccessedAt.Valid {
		entry.LastAccessedAt = lastAccessedAt.Time
	}
	return &entry, nil
}

// ==================== Correction Store ====================

// correctionStore implements driven.CorrectionStore.
type correctionStore struct {
	store *Store
}

var _ driven.CorrectionStore = (*correctionStore)(nil)

// Append adds a correction to the log. Insert-only: the log is never
// updated in place.
func (s *correctionStore) Append(ctx context.Context, correction domain.Correction) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO corrections (id, entity_type, entity_id, field_name, original_value, corrected_value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, correction.ID, string(correction.EntityType), correction.EntityID,
		correction.FieldName, correction.OriginalValue, correction.CorrectedValue,
		correction.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("appending correction: %w", err)
	}
	return nil
}

// ForEntity returns all corrections for an entity, oldest first.
func (s *correctionStore) ForEntity(ctx context.Context, entityID string) ([]domain.Correction, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, entity_type, entity_id, field_name, original_value, corrected_value, created_at
		FROM corrections WHERE entity_id = ?
		ORDER BY created_at ASC
	`, entityID)
	if err != nil {
		return nil, fmt.Errorf("querying corrections: %w", err)
	}
	defer rows.Close()

	var corrections []domain.Correction //nolint:prealloc // size unknown from query
	for rows.Next() {
		correction, err := scanCorrection(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning correction: %w", err)
		}
		corrections = append(corrections, *correction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating corrections: %w", err)
	}
	return corrections, nil
}

// Latest returns the winning correction for (entityID, fieldName).
func (s *correctionStore) Latest(ctx context.Context, entityID, fieldName string) (*domain.Correction, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, entity_type, entity_id, field_name, original_value, corrected_value, created_at
		FROM corrections WHERE entity_id = ? AND field_name = ?
		ORDER BY created_at DESC LIMIT 1
	`, entityID, fieldName)

	correction, err := scanCorrection(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning correction: %w", err)
	}
	return correction, nil
}

// Close is a no-op; the parent Store owns the connection.
func (s *correctionStore) Close() error {
	return nil
}

func scanCorrection(scan func(dest ...any) error) (*domain.Correction, error) {
	var correction domain.Correction
	var entityType string
	var originalValue sql.NullString
	var createdAt sql.NullTime
	if err := scan(&correction.ID, &entityType, &correction.EntityID,
		&correction.FieldName, &originalValue, &correction.CorrectedValue,
		&createdAt); err != nil {
		return nil, err
	}

	correction.EntityType = domain.EntityType(entityType)
	correction.OriginalValue = originalValue.String
	if createdAt.Valid {
		correction.CreatedAt = createdAt.Time
	}
	return &correction, nil
}
