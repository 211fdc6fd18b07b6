package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/knn"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// dbFile is the database file name inside the data directory.
const dbFile = "index.db"

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is a SQLite-backed vector store.
type VectorStore struct {
	db     *sql.DB
	path   string
	metric domain.DistanceMetric
}

// Option configures the store.
type Option func(*VectorStore)

// WithMetric sets the distance metric used by Search. Defaults to cosine.
func WithMetric(metric domain.DistanceMetric) Option {
	return func(s *VectorStore) {
		if metric.IsValid() {
			s.metric = metric
		}
	}
}

// NewVectorStore opens (or creates) the store in the specified data directory.
// If dataDir is empty, defaults to ~/.sercha-rag/data/index.db.
// Open and migration failures return domain.ErrIndexUnavailable.
func NewVectorStore(dataDir string, opts ...Option) (*VectorStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: getting home directory: %w", domain.ErrIndexUnavailable, err)
		}
		dataDir = filepath.Join(home, ".sercha-rag", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %w", domain.ErrIndexUnavailable, err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrIndexUnavailable, err)
	}

	s := &VectorStore{
		db:     db,
		path:   dbPath,
		metric: domain.MetricCosine,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %w", domain.ErrIndexUnavailable, err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *VectorStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *VectorStore) Path() string {
	return s.path
}

// Metric returns the distance metric.
func (s *VectorStore) Metric() domain.DistanceMetric {
	return s.metric
}

// Backend returns "sqlite".
func (s *VectorStore) Backend() string {
	return domain.IndexBackendSQLite.String()
}

// Location returns the database file path.
func (s *VectorStore) Location() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *VectorStore) migrate(fsys embed.FS) error {
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
			continue
		}

		if version <= currentVersion {
			continue
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

// ==================== Vector Store ====================

// Add stores all entries in a single transaction.
func (s *VectorStore) Add(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", domain.ErrStorageFailed, err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := insertEntries(ctx, tx, entries); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %w", domain.ErrStorageFailed, err)
	}
	return nil
}

// ReplaceSource deletes the fragments of sourceID and inserts entries in
// the same transaction.
func (s *VectorStore) ReplaceSource(ctx context.Context, sourceID string, entries []domain.IndexEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", domain.ErrStorageFailed, err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, "DELETE FROM fragments WHERE source_id = ?", sourceID); err != nil {
		return fmt.Errorf("%w: deleting fragments of %s: %w", domain.ErrStorageFailed, sourceID, err)
	}
	if len(entries) > 0 {
		if err := insertEntries(ctx, tx, entries); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %w", domain.ErrStorageFailed, err)
	}
	return nil
}

// insertEntries writes a non-empty batch inside tx.
func insertEntries(ctx context.Context, tx *sql.Tx, entries []domain.IndexEntry) error {
	if err := checkDimensions(ctx, tx, entries); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fragments (id, source_id, chunk_index, content, start_offset, end_offset, metadata, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing insert: %w", domain.ErrStorageFailed, err)
	}
	defer stmt.Close()

	for _, e := range entries {
		f := e.Fragment
		metadataJSON, err := json.Marshal(f.Metadata)
		if err != nil {
			return fmt.Errorf("%w: marshalling metadata: %w", domain.ErrStorageFailed, err)
		}

		if _, err := stmt.ExecContext(ctx, f.ID, f.SourceID, f.Index, f.Text,
			f.Start, f.End, string(metadataJSON), float32SliceToBytes(e.Embedding)); err != nil {
			return fmt.Errorf("%w: inserting fragment %s: %w", domain.ErrStorageFailed, f.ID, err)
		}
	}
	return nil
}

// Search scans every stored embedding and returns the k nearest.
func (s *VectorStore) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievalResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_id, chunk_index, content, start_offset, end_offset, metadata, embedding
		FROM fragments
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying fragments: %w", domain.ErrStorageFailed, err)
	}
	defer rows.Close()

	c := knn.NewCollector(k)
	for rows.Next() {
		f, embedding, err := scanFragment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrStorageFailed, err)
		}
		c.Offer(f, s.metric.Distance(query, embedding))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating fragments: %w", domain.ErrStorageFailed, err)
	}

	return c.Results(), nil
}

// Clear removes every fragment.
func (s *VectorStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM fragments"); err != nil {
		return fmt.Errorf("%w: clearing fragments: %w", domain.ErrStorageFailed, err)
	}
	return nil
}

// Count returns the number of stored fragments.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fragments").Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting fragments: %w", domain.ErrStorageFailed, err)
	}
	return count, nil
}

// ==================== Helper Functions ====================

// checkDimensions rejects a batch whose vectors differ from each other or from
// what is already stored.
func checkDimensions(ctx context.Context, tx *sql.Tx, entries []domain.IndexEntry) error {
	dims := len(entries[0].Embedding)

	var storedBytes int
	err := tx.QueryRowContext(ctx, "SELECT length(embedding) FROM fragments LIMIT 1").Scan(&storedBytes)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("%w: reading stored dimensions: %w", domain.ErrStorageFailed, err)
	default:
		dims = storedBytes / 4
	}

	for i, e := range entries {
		if len(e.Embedding) == 0 || len(e.Embedding) != dims {
			return fmt.Errorf("%w: entry %d has %d dimensions, expected %d",
				domain.ErrInvalidInput, i, len(e.Embedding), dims)
		}
	}
	return nil
}

// scanFragment scans a fragment row and its embedding.
func scanFragment(rows *sql.Rows) (domain.Fragment, []float32, error) {
	var f domain.Fragment
	var metadataJSON string
	var embeddingBlob []byte

	if err := rows.Scan(&f.ID, &f.SourceID, &f.Index, &f.Text,
		&f.Start, &f.End, &metadataJSON, &embeddingBlob); err != nil {
		return f, nil, fmt.Errorf("scanning fragment: %w", err)
	}

	if metadataJSON != "" && metadataJSON != "null" {
		if err := json.Unmarshal([]byte(metadataJSON), &f.Metadata); err != nil {
			return f, nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}
	f.Metadata = restoreIntegers(f.Metadata, f.Index)

	return f, bytesToFloat32Slice(embeddingBlob), nil
}

// restoreIntegers converts JSON numbers back to the integer types the
// chunker and ingest service write.
func restoreIntegers(meta map[string]any, index int) map[string]any {
	if meta == nil {
		meta = make(map[string]any, 1)
	}
	meta[domain.MetaChunkIndex] = index
	if size, ok := meta[domain.MetaFileSize].(float64); ok {
		meta[domain.MetaFileSize] = int64(size)
	}
	return meta
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
