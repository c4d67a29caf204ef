// Package postgres implements the store contract on top of pgx.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/redline-bd/redline/internal/store"
)

// DB is the subset of pgxpool.Pool the store needs. pgxmock satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Config carries connection settings for the article database.
type Config struct {
	DSN      string
	MaxConns int32
}

// Store persists articles, enrichment output and run bookkeeping.
type Store struct {
	db     DB
	logger *zap.Logger
}

// New connects a pool and verifies it with a ping.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("database connected", zap.Int32("max_conns", poolCfg.MaxConns))
	return &Store{db: pool, logger: logger}, nil
}

// NewWithDB wraps an existing connection, used by tests.
func NewWithDB(db DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Close() {
	s.db.Close()
}

const sourceIDQuery = `SELECT id FROM sources WHERE name = $1`

func (s *Store) SourceIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, sourceIDQuery, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, &store.SourceNotFoundError{Name: name}
	}
	if err != nil {
		return 0, fmt.Errorf("looking up source %q: %w", name, err)
	}
	return id, nil
}

const existsQuery = `SELECT EXISTS (SELECT 1 FROM articles WHERE url = $1)`

func (s *Store) Exists(ctx context.Context, url string) (bool, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, existsQuery, url).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking article existence: %w", err)
	}
	return exists, nil
}

const upsertArticleQuery = `
INSERT INTO articles (source_id, url, title, content, author, published_at, scraped_at, content_hash)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (url) DO UPDATE SET
    title = EXCLUDED.title,
    content = EXCLUDED.content,
    author = EXCLUDED.author,
    published_at = EXCLUDED.published_at,
    content_hash = EXCLUDED.content_hash,
    updated_at = CURRENT_TIMESTAMP
RETURNING id, (xmax = 0) AS inserted`

func (s *Store) UpsertArticle(ctx context.Context, a store.Article) (int64, bool, error) {
	var (
		id       int64
		inserted bool
	)
	err := s.db.QueryRow(ctx, upsertArticleQuery,
		a.SourceID, a.URL, a.Title, a.Content, a.Author,
		a.PublishedAt, a.ScrapedAt, a.ContentHash,
	).Scan(&id, &inserted)
	if err != nil {
		return 0, false, fmt.Errorf("upserting article %s: %w", a.URL, err)
	}
	return id, inserted, nil
}

const unprocessedQuery = `
SELECT a.id, a.title, a.content, a.published_at, s.name
FROM articles a
JOIN sources s ON s.id = a.source_id
WHERE a.is_processed = false
ORDER BY a.scraped_at ASC
LIMIT $1`

func (s *Store) ListUnprocessed(ctx context.Context, limit int) ([]store.PendingArticle, error) {
	rows, err := s.db.Query(ctx, unprocessedQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("listing unprocessed articles: %w", err)
	}
	return scanPending(rows)
}

const unclassifiedQuery = `
SELECT a.id, a.title, a.content, a.published_at, s.name
FROM articles a
JOIN sources s ON s.id = a.source_id
WHERE NOT EXISTS (
    SELECT 1 FROM classifications c
    WHERE c.article_id = a.id AND c.model_version = $1
)
ORDER BY a.scraped_at ASC
LIMIT $2`

func (s *Store) ListUnclassified(ctx context.Context, modelVersion string, limit int) ([]store.PendingArticle, error) {
	rows, err := s.db.Query(ctx, unclassifiedQuery, modelVersion, limit)
	if err != nil {
		return nil, fmt.Errorf("listing unclassified articles: %w", err)
	}
	return scanPending(rows)
}

func scanPending(rows pgx.Rows) ([]store.PendingArticle, error) {
	defer rows.Close()

	var out []store.PendingArticle
	for rows.Next() {
		var p store.PendingArticle
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.PublishedAt, &p.SourceName); err != nil {
			return nil, fmt.Errorf("scanning pending article: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending articles: %w", err)
	}
	return out, nil
}

const saveClassificationQuery = `
INSERT INTO classifications (article_id, is_political_violence, confidence, reasoning, key_indicators, model_version, processing_time_ms, processed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (article_id, model_version) DO UPDATE SET
    is_political_violence = EXCLUDED.is_political_violence,
    confidence = EXCLUDED.confidence,
    reasoning = EXCLUDED.reasoning,
    key_indicators = EXCLUDED.key_indicators,
    processing_time_ms = EXCLUDED.processing_time_ms,
    processed_at = EXCLUDED.processed_at
RETURNING id`

func (s *Store) SaveClassification(ctx context.Context, c store.Classification) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, saveClassificationQuery,
		c.ArticleID, c.IsPoliticalViolence, c.Confidence, c.Reasoning,
		c.KeyIndicators, c.ModelVersion, c.ProcessingTimeMs, c.ProcessedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("saving classification for article %d: %w", c.ArticleID, err)
	}
	return id, nil
}

const insertLocationQuery = `
INSERT INTO article_locations (article_id, extracted_text, normalized_name, coordinates, confidence, extraction_method, context)
VALUES ($1, $2, $3, ST_GeomFromText($4, 4326), $5, $6, $7)
RETURNING id`

const markProcessedQuery = `
UPDATE articles SET is_processed = true, processed_at = $2 WHERE id = $1`

func (s *Store) SaveLocations(ctx context.Context, articleID int64, locs []store.LocationRow, at time.Time) ([]int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning location transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ids := make([]int64, 0, len(locs))
	for _, loc := range locs {
		var id int64
		err := tx.QueryRow(ctx, insertLocationQuery,
			articleID, loc.ExtractedText, loc.NormalizedName,
			loc.WKT, loc.Confidence, loc.Method, loc.Context,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("inserting location %q: %w", loc.ExtractedText, err)
		}
		ids = append(ids, id)
	}

	if _, err := tx.Exec(ctx, markProcessedQuery, articleID, at); err != nil {
		return nil, fmt.Errorf("marking article %d processed: %w", articleID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing location transaction: %w", err)
	}
	return ids, nil
}

const recordSessionQuery = `
INSERT INTO scraping_sessions (source_id, started_at, completed_at, status, articles_found, articles_new, articles_updated, errors_count, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func (s *Store) RecordSession(ctx context.Context, sess store.Session) error {
	meta, err := json.Marshal(map[string]string{"run_id": sess.RunID})
	if err != nil {
		return fmt.Errorf("encoding session metadata: %w", err)
	}

	_, err = s.db.Exec(ctx, recordSessionQuery,
		sess.SourceID, sess.StartedAt, sess.CompletedAt, sess.Status,
		sess.ArticlesFound, sess.ArticlesNew, sess.ArticlesUpdated,
		sess.ErrorsCount, meta,
	)
	if err != nil {
		return fmt.Errorf("recording scraping session: %w", err)
	}
	return nil
}

const touchSourceQuery = `
UPDATE sources SET last_scraped_at = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`

func (s *Store) TouchSourceScraped(ctx context.Context, sourceID int64, at time.Time) error {
	if _, err := s.db.Exec(ctx, touchSourceQuery, sourceID, at); err != nil {
		return fmt.Errorf("touching source %d: %w", sourceID, err)
	}
	return nil
}
