package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taxlens/taxdoc/internal/common"
	"github.com/taxlens/taxdoc/internal/index"
)

// PGChunkStore persists chunks in a pgvector table. Besides the ChunkStore
// contract it supports nearest-neighbor search in the database, ordered by
// cosine distance, so a postgres deployment can serve retrieval without
// loading the index into process memory.
type PGChunkStore struct {
	pool *pgxpool.Pool
}

func NewPGChunkStore(ctx context.Context, pool *pgxpool.Pool, dim int) (*PGChunkStore, error) {
	s := &PGChunkStore{pool: pool}
	if dim > 0 {
		if err := s.migrate(ctx, dim); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *PGChunkStore) migrate(ctx context.Context, dim int) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;
CREATE TABLE IF NOT EXISTS index_meta (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	model    TEXT    NOT NULL,
	dim      INTEGER NOT NULL,
	built_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS guideline_chunks (
	id         UUID PRIMARY KEY,
	source_id  TEXT NOT NULL,
	chunk_offset INTEGER NOT NULL,
	chunk_text TEXT NOT NULL,
	embedding  vector(%d) NOT NULL
);`, dim))
	if err != nil {
		return fmt.Errorf("migrate pg chunk store: %w", err)
	}
	return nil
}

// formatVector renders an embedding in pgvector literal syntax.
func formatVector(vec []float32) string {
	parts := make([]string, len(vec))
	for i, v := range vec {
		parts[i] = fmt.Sprintf("%.6f", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (s *PGChunkStore) ReplaceAll(ctx context.Context, meta index.Metadata, chunks []StoredChunk) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM guideline_chunks`); err != nil {
		return fmt.Errorf("clear chunks: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM index_meta`); err != nil {
		return fmt.Errorf("clear meta: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO index_meta(id, model, dim) VALUES (1, $1, $2)`,
		meta.Model, meta.Dim); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	for _, c := range chunks {
		id := c.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO guideline_chunks(id, source_id, chunk_offset, chunk_text, embedding)
			 VALUES ($1, $2, $3, $4, $5::vector)`,
			id, c.Chunk.SourceID, c.Chunk.Offset, c.Chunk.Text, formatVector(c.Vector)); err != nil {
			return fmt.Errorf("insert chunk %s: %w", id, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PGChunkStore) LoadAll(ctx context.Context) (index.Metadata, []StoredChunk, error) {
	meta, err := s.Metadata(ctx)
	if err != nil {
		return index.Metadata{}, nil, err
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, source_id, chunk_offset, chunk_text, embedding::text FROM guideline_chunks`)
	if err != nil {
		return index.Metadata{}, nil, fmt.Errorf("load chunks: %w", err)
	}
	defer rows.Close()

	var out []StoredChunk
	for rows.Next() {
		var sc StoredChunk
		var vecStr string
		if err := rows.Scan(&sc.ID, &sc.Chunk.SourceID, &sc.Chunk.Offset, &sc.Chunk.Text, &vecStr); err != nil {
			return index.Metadata{}, nil, fmt.Errorf("scan chunk: %w", err)
		}
		sc.Vector = parseVector(vecStr)
		out = append(out, sc)
	}
	return meta, out, rows.Err()
}

// Metadata reads the embedding-model binding of the stored index.
func (s *PGChunkStore) Metadata(ctx context.Context) (index.Metadata, error) {
	var meta index.Metadata
	err := s.pool.QueryRow(ctx, `SELECT model, dim FROM index_meta WHERE id = 1`).
		Scan(&meta.Model, &meta.Dim)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return index.Metadata{}, common.NewAppError("INDEX_NOT_BUILT", "no index metadata found", common.ErrNotFound)
		}
		return index.Metadata{}, fmt.Errorf("load meta: %w", err)
	}
	return meta, nil
}

// Search returns up to k chunks ordered by cosine distance to the query.
func (s *PGChunkStore) Search(ctx context.Context, query []float32, k int) ([]index.Hit, error) {
	if k <= 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT source_id, chunk_offset, chunk_text, embedding <=> $1::vector AS distance
		FROM guideline_chunks
		ORDER BY embedding <=> $1::vector
		LIMIT $2`, formatVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var hits []index.Hit
	for rows.Next() {
		var h index.Hit
		if err := rows.Scan(&h.Chunk.SourceID, &h.Chunk.Offset, &h.Chunk.Text, &h.Distance); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (s *PGChunkStore) Close() error {
	s.pool.Close()
	return nil
}

func parseVector(s string) []float32 {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]float32, 0, len(parts))
	for _, p := range parts {
		var v float32
		if _, err := fmt.Sscanf(strings.TrimSpace(p), "%f", &v); err != nil {
			return nil
		}
		out = append(out, v)
	}
	return out
}
