package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"SecurityNewsScanner/internal/domain"
	"SecurityNewsScanner/internal/ports"
)

// ErrDuplicate is returned when the title already exists in the table.
var ErrDuplicate = errors.New("article title already stored")

// Schema creates the table served by PostgresRepository.
const Schema = `CREATE TABLE IF NOT EXISTS %s (
    id         BIGSERIAL PRIMARY KEY,
    title      TEXT NOT NULL UNIQUE,
    date       TEXT NOT NULL,
    category   TEXT NOT NULL,
    summary    TEXT NOT NULL,
    source     TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresRepository persists ingested articles into Postgres.
type PostgresRepository struct {
	db    *sql.DB
	table string
	psql  sq.StatementBuilderType
}

var _ ports.ArticleStore = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB, table string) *PostgresRepository {
	if table == "" {
		table = "security_articles"
	}
	return &PostgresRepository{
		db:    db,
		table: table,
		psql:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema creates the articles table when it is missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, fmt.Sprintf(Schema, r.table)); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// ListTitles returns every stored title.
func (r *PostgresRepository) ListTitles(ctx context.Context) ([]string, error) {
	query, args, err := r.psql.Select("title").From(r.table).OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query titles: %w", err)
	}

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, title)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return titles, nil
}

// Create inserts one article; an existing title is reported as ErrDuplicate.
func (r *PostgresRepository) Create(ctx context.Context, article domain.Article) error {
	query, args, err := r.psql.
		Insert(r.table).
		Columns("title", "date", "category", "summary", "source").
		Values(article.Title, article.Date, string(article.Category), article.Summary, article.Source).
		Suffix("ON CONFLICT (title) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, article.Title)
	}
	return nil
}
