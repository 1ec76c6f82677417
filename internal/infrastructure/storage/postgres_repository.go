package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"TrendsLibrary/internal/domain"
	"TrendsLibrary/internal/ports"
)

const publicationsTable = "publications"

const schema = `CREATE TABLE IF NOT EXISTS publications (
    id           BIGSERIAL PRIMARY KEY,
    title        TEXT NOT NULL,
    country      TEXT NOT NULL,
    category     TEXT NOT NULL,
    image_url    TEXT NOT NULL DEFAULT '',
    response     JSONB,
    published_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresRepository records articles accepted by the CMS.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.PublicationRepository = (*PostgresRepository)(nil)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the publications table when it is missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create publications table: %w", err)
	}
	return nil
}

// SavePublication appends one row to the log.
func (r *PostgresRepository) SavePublication(ctx context.Context, pub domain.Publication) error {
	if r.db == nil {
		return nil
	}

	var response any
	if len(pub.Response) > 0 {
		response = string(pub.Response)
	}

	query, args, err := sq.Insert(publicationsTable).
		Columns("title", "country", "category", "image_url", "response", "published_at").
		Values(pub.Title, pub.Country, pub.Category, pub.ImageURL, response, pub.PublishedAt).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert publication: %w", err)
	}
	return nil
}
