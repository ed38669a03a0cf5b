package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"docbridge/internal/model"
	"docbridge/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db    *sql.DB
	table string
}

// NewDocumentPostgres creates a new DocumentPostgres repository over table.
// A dotted name is treated as schema-qualified; every part is quoted.
func NewDocumentPostgres(db *sql.DB, table string) (*DocumentPostgres, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	quoted, err := QuoteTable(table)
	if err != nil {
		return nil, err
	}
	return &DocumentPostgres{db: db, table: quoted}, nil
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// QuoteTable turns a configured table name into a safe SQL identifier.
func QuoteTable(table string) (string, error) {
	if strings.TrimSpace(table) == "" {
		return "", fmt.Errorf("table name is required")
	}
	parts := strings.Split(table, ".")
	for _, p := range parts {
		if p == "" {
			return "", fmt.Errorf("invalid table name %q", table)
		}
	}
	return pgx.Identifier(parts).Sanitize(), nil
}

// Upsert inserts the row or overwrites name and url of the row with the same id.
func (r *DocumentPostgres) Upsert(ctx context.Context, doc *model.Document) error {
	q := `
		INSERT INTO ` + r.table + ` (id, name, url)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, url = EXCLUDED.url
	`
	_, err := r.db.ExecContext(ctx, q, doc.ID, doc.Name, doc.URL)
	return err
}

// List returns all rows in storage order.
func (r *DocumentPostgres) List(ctx context.Context) ([]model.Document, error) {
	q := `SELECT id, name, url FROM ` + r.table
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(&d.ID, &d.Name, &d.URL); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
