package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/primizht/materials/pkg/materials"
)

// Schema is the flat materials table this repository reads and writes.
// Apply it once before pointing the server at the database.
const Schema = `
CREATE TABLE IF NOT EXISTS materials (
    id         TEXT PRIMARY KEY,
    title      TEXT NOT NULL DEFAULT '',
    category   TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL,
    type       TEXT NOT NULL DEFAULT '',
    content    TEXT,
    url        TEXT,
    public_id  TEXT
);`

// DBTX is the subset of pgx a repository needs, satisfied by both a
// connection pool and a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Repository implements materials.Repository using PostgreSQL.
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository.
func New(db DBTX) materials.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository from a connection pool.
func NewWithPool(pool *pgxpool.Pool) materials.Repository {
	return &Repository{db: pool}
}

// EnsureSchema creates the materials table if it does not exist.
func EnsureSchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to ensure materials schema: %w", err)
	}
	return nil
}

func (r *Repository) NewID() string {
	return uuid.NewString()
}

func (r *Repository) Get(ctx context.Context, id string) (*materials.Material, error) {
	query := `
        SELECT id, title, category, created_at, type,
               COALESCE(content, ''), COALESCE(url, ''), COALESCE(public_id, '')
        FROM materials WHERE id = $1`

	var m materials.Material
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Title, &m.Category, &m.CreatedAt, &m.Type,
		&m.Content, &m.URL, &m.PublicID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, materials.ErrMaterialNotFound
		}
		return nil, handlePostgresError("get material", err)
	}

	return &m, nil
}

func (r *Repository) List(ctx context.Context) (map[string]*materials.Material, error) {
	query := `
        SELECT id, title, category, created_at, type,
               COALESCE(content, ''), COALESCE(url, ''), COALESCE(public_id, '')
        FROM materials`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, handlePostgresError("list materials", err)
	}
	defer rows.Close()

	result := make(map[string]*materials.Material)
	for rows.Next() {
		var m materials.Material
		if err := rows.Scan(
			&m.ID, &m.Title, &m.Category, &m.CreatedAt, &m.Type,
			&m.Content, &m.URL, &m.PublicID); err != nil {
			return nil, handlePostgresError("scan material", err)
		}
		result[m.ID] = &m
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("list materials", err)
	}

	return result, nil
}

func (r *Repository) Create(ctx context.Context, m *materials.Material) error {
	query := `
        INSERT INTO materials (id, title, category, created_at, type, content, url, public_id)
        VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''))`

	_, err := r.db.Exec(ctx, query,
		m.ID, m.Title, m.Category, m.CreatedAt, m.Type,
		m.Content, m.URL, m.PublicID)
	if err != nil {
		return handlePostgresError("create material", err)
	}

	return nil
}

func (r *Repository) Update(ctx context.Context, id string, patch materials.MaterialPatch) error {
	// Content merges only when supplied; type, url and public_id are never
	// touched by an update.
	query := `
        UPDATE materials
        SET title = $2,
            category = $3,
            content = CASE WHEN $4 <> '' THEN $4 ELSE content END
        WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, patch.Title, patch.Category, patch.Content)
	if err != nil {
		return handlePostgresError("update material", err)
	}
	if tag.RowsAffected() == 0 {
		return materials.ErrMaterialNotFound
	}

	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	// Idempotent: zero affected rows is fine.
	if _, err := r.db.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id); err != nil {
		return handlePostgresError("delete material", err)
	}
	return nil
}

func handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("material already exists")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("materials table does not exist - apply postgres.Schema first")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}
