// Package postgres backs the retrieval index with Postgres + pgvector
// through bun. Cosine distance comes straight from the <=> operator.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"call-copilot/internal/config"
	"call-copilot/internal/models"
	"call-copilot/internal/segmenter"
	"call-copilot/internal/store"
)

type chunkRow struct {
	bun.BaseModel `bun:"table:transcript_chunks,alias:tc"`

	ID         string  `bun:"id,pk"`
	CallID     string  `bun:"call_id,notnull"`
	CallTitle  string  `bun:"call_title,notnull"`
	ChunkIndex int     `bun:"chunk_index,notnull"`
	Text       string  `bun:"text,notnull"`
	StartChar  int     `bun:"start_char,notnull"`
	EndChar    int     `bun:"end_char,notnull"`
	Embedding  string  `bun:"embedding,notnull"`
	Distance   float64 `bun:"distance,scanonly"`
}

// Store implements store.Index over a transcript_chunks table.
type Store struct {
	db         *bun.DB
	embedder   store.Embedder
	vectorSize int
}

// New connects to the database described by cfg. The connection is
// lazy; call InitSchema before first use.
func New(cfg config.PostgresConfig, embedder store.Embedder) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: postgres dsn is empty", models.ErrConfiguration)
	}
	opts := []pgdriver.Option{pgdriver.WithDSN(cfg.DSN)}
	if cfg.Password != "" {
		opts = append(opts, pgdriver.WithPassword(cfg.Password))
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &Store{db: db, embedder: embedder, vectorSize: cfg.VectorSize}, nil
}

// InitSchema creates the extension, table and call index if missing.
func (s *Store) InitSchema(ctx context.Context) error {
	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS transcript_chunks (
			id text PRIMARY KEY,
			call_id text NOT NULL,
			call_title text NOT NULL,
			chunk_index integer NOT NULL,
			text text NOT NULL,
			start_char integer NOT NULL,
			end_char integer NOT NULL,
			embedding vector(%d) NOT NULL
		)`, s.vectorSize),
		"CREATE INDEX IF NOT EXISTS transcript_chunks_call_id_idx ON transcript_chunks (call_id)",
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Upsert(ctx context.Context, callID, callTitle string, pieces []segmenter.Piece) (string, error) {
	rows := make([]chunkRow, 0, len(pieces))
	for i, p := range pieces {
		vec, err := s.embedder.EmbedQuery(ctx, p.Text)
		if err != nil {
			return "", fmt.Errorf("embed chunk %d: %w", i, err)
		}
		rows = append(rows, chunkRow{
			ID:         store.ChunkID(callID, i),
			CallID:     callID,
			CallTitle:  callTitle,
			ChunkIndex: i,
			Text:       p.Text,
			StartChar:  p.Start,
			EndChar:    p.End,
			Embedding:  vectorLiteral(vec),
		})
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*chunkRow)(nil)).Where("call_id = ?", callID).Exec(ctx); err != nil {
			return fmt.Errorf("delete previous chunks for %s: %w", callID, err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert chunks for %s: %w", callID, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return callID, nil
}

func (s *Store) ListCallIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.NewSelect().
		Model((*chunkRow)(nil)).
		ColumnExpr("DISTINCT call_id").
		OrderExpr("call_id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("list call ids: %w", err)
	}
	return ids, nil
}

func (s *Store) Search(ctx context.Context, query, callID string, topK int) ([]models.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	lit := vectorLiteral(vec)

	var rows []chunkRow
	q := s.db.NewSelect().
		Model(&rows).
		ColumnExpr("tc.*").
		ColumnExpr("embedding <=> ?::vector AS distance", lit).
		OrderExpr("embedding <=> ?::vector ASC", lit).
		Limit(topK)
	if callID != "" {
		q = q.Where("call_id = ?", callID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	out := make([]models.SearchResult, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.SearchResult{Chunk: r.toChunk(), Distance: r.Distance})
	}
	return out, nil
}

func (s *Store) GetAllChunks(ctx context.Context, callID string) ([]models.Chunk, error) {
	var rows []chunkRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("call_id = ?", callID).
		OrderExpr("chunk_index ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("get chunks for %s: %w", callID, err)
	}
	out := make([]models.Chunk, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toChunk())
	}
	return out, nil
}

func (r chunkRow) toChunk() models.Chunk {
	return models.Chunk{
		ChunkID:    r.ID,
		CallID:     r.CallID,
		CallTitle:  r.CallTitle,
		ChunkIndex: r.ChunkIndex,
		Text:       r.Text,
		StartChar:  r.StartChar,
		EndChar:    r.EndChar,
	}
}

// vectorLiteral renders a pgvector input literal like [0.1,0.2].
func vectorLiteral(vec []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}
