package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taxlens/taxdoc/internal/common"
	"github.com/taxlens/taxdoc/internal/index"
)

// StoredChunk is one persisted (vector, chunk) pair.
type StoredChunk struct {
	ID     string
	Chunk  index.Chunk
	Vector []float32
}

// ChunkStore persists a built vector index keyed by its embedding-model
// metadata. ReplaceAll swaps the whole index in one transaction so a
// concurrent loader never observes a half-written index.
type ChunkStore interface {
	ReplaceAll(ctx context.Context, meta index.Metadata, chunks []StoredChunk) error
	LoadAll(ctx context.Context) (index.Metadata, []StoredChunk, error)
	Close() error
}

// SQLiteChunkStore stores chunks and vectors (JSON-encoded) in a sqlite file
// inside the index directory.
type SQLiteChunkStore struct {
	db *sql.DB
}

func NewSQLiteChunkStore(db *sql.DB) (*SQLiteChunkStore, error) {
	s := &SQLiteChunkStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteChunkStore) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS index_meta (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	model    TEXT    NOT NULL,
	dim      INTEGER NOT NULL,
	built_at TEXT    NOT NULL
);
CREATE TABLE IF NOT EXISTS chunks (
	id           TEXT    PRIMARY KEY,
	source_id    TEXT    NOT NULL,
	chunk_offset INTEGER NOT NULL,
	chunk_text   TEXT    NOT NULL,
	vector       TEXT    NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("migrate chunk store: %w", err)
	}
	return nil
}

func (s *SQLiteChunkStore) ReplaceAll(ctx context.Context, meta index.Metadata, chunks []StoredChunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks`); err != nil {
		return fmt.Errorf("clear chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM index_meta`); err != nil {
		return fmt.Errorf("clear meta: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO index_meta(id, model, dim, built_at) VALUES (1, ?, ?, ?)`,
		meta.Model, meta.Dim, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}

	for _, c := range chunks {
		id := c.ID
		if id == "" {
			id = uuid.New().String()
		}
		vec, err := json.Marshal(c.Vector)
		if err != nil {
			return fmt.Errorf("encode vector: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chunks(id, source_id, chunk_offset, chunk_text, vector) VALUES (?, ?, ?, ?, ?)`,
			id, c.Chunk.SourceID, c.Chunk.Offset, c.Chunk.Text, string(vec)); err != nil {
			return fmt.Errorf("insert chunk %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteChunkStore) LoadAll(ctx context.Context) (index.Metadata, []StoredChunk, error) {
	var meta index.Metadata
	row := s.db.QueryRowContext(ctx, `SELECT model, dim FROM index_meta WHERE id = 1`)
	if err := row.Scan(&meta.Model, &meta.Dim); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return index.Metadata{}, nil, common.NewAppError("INDEX_NOT_BUILT", "no index metadata found", common.ErrNotFound)
		}
		return index.Metadata{}, nil, fmt.Errorf("load meta: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, source_id, chunk_offset, chunk_text, vector FROM chunks`)
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
		if err := json.Unmarshal([]byte(vecStr), &sc.Vector); err != nil || len(sc.Vector) != meta.Dim {
			// dimension mismatch means a foreign model's leftovers; skip
			continue
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return index.Metadata{}, nil, err
	}
	return meta, out, nil
}

func (s *SQLiteChunkStore) Close() error { return s.db.Close() }

// BuildIndex loads a persisted index wholesale into memory.
func BuildIndex(ctx context.Context, store ChunkStore) (*index.Index, error) {
	meta, chunks, err := store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	ix := index.New(meta)
	for _, c := range chunks {
		if err := ix.Add(c.Vector, c.Chunk); err != nil {
			return nil, err
		}
	}
	ix.Seal()
	return ix, nil
}
