// Package pgvectorDB stores document sections in Postgres with the pgvector
// extension. Similarity is cosine similarity, 1 - cosine distance.
package pgvectorDB

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/metrics"
	"github.com/akolanti/DocQA/internal/rag/vectorDB"
	"github.com/akolanti/DocQA/pkg/logger_i"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

const tableName = "document_sections"

type Store struct {
	pool      *pgxpool.Pool
	dimension int
	logger    *logger_i.Logger
}

func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	s := &Store{
		pool:      pool,
		dimension: int(config.EmbeddingOutputDimensionality),
		logger:    logger_i.NewLogger("pgvector"),
	}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	s.logger.Info("pgvector store ready", "table", tableName)
	return s, nil
}

func (s *Store) Close() error {
	s.logger.Info("Closing postgres pool")
	s.pool.Close()
	return nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements(s.dimension) {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}

func schemaStatements(dimension int) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS ` + tableName + ` (
			id              uuid PRIMARY KEY,
			document_id     text NOT NULL,
			section_order   integer NOT NULL,
			section_content text NOT NULL,
			embedding       vector(` + strconv.Itoa(dimension) + `) NOT NULL,
			meta            jsonb NOT NULL DEFAULT '{}'::jsonb,
			created_at      timestamptz NOT NULL DEFAULT now(),
			UNIQUE (document_id, section_order)
		)`,
		`CREATE INDEX IF NOT EXISTS ` + tableName + `_document_id_idx ON ` + tableName + ` (document_id)`,
	}
}

func (s *Store) Insert(ctx context.Context, section commonModels.DocumentSection) error {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("pgvector_insert", time.Since(start)) }()

	meta, err := json.Marshal(section.Meta)
	if err != nil {
		return fmt.Errorf("encoding section meta: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO `+tableName+` (id, document_id, section_order, section_content, embedding, meta)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (document_id, section_order) DO UPDATE
		SET section_content = EXCLUDED.section_content, embedding = EXCLUDED.embedding, meta = EXCLUDED.meta`,
		vectorDB.SectionID(section.DocumentId, section.SectionOrder),
		section.DocumentId,
		section.SectionOrder,
		section.Content,
		pgvector.NewVector(section.Embedding),
		meta,
	)
	if err != nil {
		return fmt.Errorf("pgvector insert failed: %w", err)
	}
	return nil
}

func (s *Store) DeleteByDocument(ctx context.Context, documentID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+tableName+` WHERE document_id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("pgvector delete failed: %w", err)
	}
	s.logger.Debug("cleared sections", "documentId", documentID, "rows", tag.RowsAffected())
	return nil
}

func (s *Store) NearestNeighbors(ctx context.Context, vector []float32, topK int, threshold *float32) ([]commonModels.QueryMatch, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	sql, args := searchQuery(pgvector.NewVector(vector), topK, threshold)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		log.Error("Error querying pgvector", "error", err)
		return nil, err
	}
	defer rows.Close()

	var matches []commonModels.QueryMatch
	for rows.Next() {
		var (
			m          commonModels.QueryMatch
			rawMeta    []byte
			similarity float64
		)
		if err := rows.Scan(&m.SectionId, &m.DocumentId, &m.SectionOrder, &m.Content, &rawMeta, &similarity); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		if len(rawMeta) > 0 {
			if err := json.Unmarshal(rawMeta, &m.Meta); err != nil {
				log.Warn("unreadable section meta", "sectionId", m.SectionId, "error", err)
			}
		}
		m.Similarity = float32(similarity)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	log.Debug("Found matches", "count", len(matches), "topK", topK)
	return matches, nil
}

// searchQuery orders by cosine distance so the vector index can be used; the
// optional threshold is applied on similarity.
func searchQuery(vector pgvector.Vector, topK int, threshold *float32) (string, []any) {
	sql := `SELECT id::text, document_id, section_order, section_content, meta, 1 - (embedding <=> $1) AS similarity
		FROM ` + tableName
	args := []any{vector, topK}
	if threshold != nil {
		sql += ` WHERE 1 - (embedding <=> $1) >= $3`
		args = append(args, float64(*threshold))
	}
	sql += ` ORDER BY embedding <=> $1 LIMIT $2`
	return sql, args
}
