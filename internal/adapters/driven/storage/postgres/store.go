// Package postgres provides a driven.VectorStore on Postgres with the pgvector extension.
//
// Search is delegated to the database using the cosine distance operator (<=>),
// so large corpora do not have to be scanned in process.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore stores fragments in the rag_fragments table.
type VectorStore struct {
	pool       *pgxpool.Pool
	dimensions int
	location   string
}

// NewVectorStore connects to dsn and creates the schema if needed.
// dimensions fixes the embedding column width; 0 leaves it unconstrained
// and skips the ivfflat index. Connection and schema failures return
// domain.ErrIndexUnavailable.
func NewVectorStore(ctx context.Context, dsn string, dimensions int) (*VectorStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to postgres: %w", domain.ErrIndexUnavailable, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: pinging postgres: %w", domain.ErrIndexUnavailable, err)
	}

	cfg := pool.Config().ConnConfig
	s := &VectorStore{
		pool:       pool,
		dimensions: dimensions,
		location:   fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.Database),
	}

	if err := s.createTables(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: creating schema: %w", domain.ErrIndexUnavailable, err)
	}

	return s, nil
}

func (s *VectorStore) createTables(ctx context.Context) error {
	column := "vector"
	if s.dimensions > 0 {
		column = fmt.Sprintf("vector(%d)", s.dimensions)
	}

	query := fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS rag_fragments (
		id UUID PRIMARY KEY,
		source_id TEXT NOT NULL,
		chunk_index INT NOT NULL,
		content TEXT NOT NULL,
		start_offset INT NOT NULL,
		end_offset INT NOT NULL,
		metadata JSONB NOT NULL DEFAULT '{}',
		embedding %s NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_rag_fragments_source ON rag_fragments(source_id, chunk_index);
	`, column)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return err
	}

	if s.dimensions > 0 {
		_, err := s.pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_rag_fragments_embedding ON rag_fragments
		USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)
		`)
		return err
	}
	return nil
}

// Add stores all entries in a single transaction.
func (s *VectorStore) Add(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", domain.ErrStorageFailed, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := insertEntries(ctx, tx, entries); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: committing transaction: %w", domain.ErrStorageFailed, err)
	}
	return nil
}

// ReplaceSource deletes the fragments of sourceID and inserts entries in
// the same transaction.
func (s *VectorStore) ReplaceSource(ctx context.Context, sourceID string, entries []domain.IndexEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", domain.ErrStorageFailed, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx, "DELETE FROM rag_fragments WHERE source_id = $1", sourceID); err != nil {
		return fmt.Errorf("%w: deleting fragments of %s: %w", domain.ErrStorageFailed, sourceID, err)
	}
	if err := insertEntries(ctx, tx, entries); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: committing transaction: %w", domain.ErrStorageFailed, err)
	}
	return nil
}

func insertEntries(ctx context.Context, tx pgx.Tx, entries []domain.IndexEntry) error {
	query := `
	INSERT INTO rag_fragments (id, source_id, chunk_index, content, start_offset, end_offset, metadata, embedding)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, e := range entries {
		f := e.Fragment
		metadataJSON, err := json.Marshal(f.Metadata)
		if err != nil {
			return fmt.Errorf("%w: marshalling metadata: %w", domain.ErrStorageFailed, err)
		}

		if _, err := tx.Exec(ctx, query,
			f.ID, f.SourceID, f.Index, f.Text, f.Start, f.End,
			string(metadataJSON), pgvector.NewVector(e.Embedding),
		); err != nil {
			return fmt.Errorf("%w: inserting fragment %s: %w", domain.ErrStorageFailed, f.ID, err)
		}
	}
	return nil
}

// Search returns the k nearest fragments by cosine distance.
func (s *VectorStore) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievalResult, error) {
	results := []domain.RetrievalResult{}
	if k <= 0 || len(query) == 0 {
		return results, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id::text, source_id, chunk_index, content, start_offset, end_offset, metadata,
		       embedding <=> $1 AS distance
		FROM rag_fragments
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgvector.NewVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("%w: querying fragments: %w", domain.ErrStorageFailed, err)
	}
	defer rows.Close()

	for rows.Next() {
		var f domain.Fragment
		var metadataJSON []byte
		var distance float64

		if err := rows.Scan(&f.ID, &f.SourceID, &f.Index, &f.Text,
			&f.Start, &f.End, &metadataJSON, &distance); err != nil {
			return nil, fmt.Errorf("%w: scanning fragment: %w", domain.ErrStorageFailed, err)
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &f.Metadata); err != nil {
				return nil, fmt.Errorf("%w: unmarshaling metadata: %w", domain.ErrStorageFailed, err)
			}
		}
		if f.Metadata == nil {
			f.Metadata = make(map[string]any, 1)
		}
		f.Metadata[domain.MetaChunkIndex] = f.Index
		if size, ok := f.Metadata[domain.MetaFileSize].(float64); ok {
			f.Metadata[domain.MetaFileSize] = int64(size)
		}

		results = append(results, domain.RetrievalResult{Fragment: f, Distance: distance})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating fragments: %w", domain.ErrStorageFailed, err)
	}

	return results, nil
}

// Clear removes every fragment.
func (s *VectorStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "TRUNCATE rag_fragments"); err != nil {
		return fmt.Errorf("%w: clearing fragments: %w", domain.ErrStorageFailed, err)
	}
	return nil
}

// Count returns the number of stored fragments.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM rag_fragments").Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting fragments: %w", domain.ErrStorageFailed, err)
	}
	return count, nil
}

// Metric returns cosine; the <=> operator is cosine distance.
func (s *VectorStore) Metric() domain.DistanceMetric {
	return domain.MetricCosine
}

// Backend returns "postgres".
func (s *VectorStore) Backend() string {
	return domain.IndexBackendPostgres.String()
}

// Location returns host:port/database. Credentials are never included.
func (s *VectorStore) Location() string {
	return s.location
}

// Close closes the connection pool.
func (s *VectorStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
