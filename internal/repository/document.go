package repository

import (
	"context"

	"docbridge/internal/model"
)

// DocumentRepository is the table store side of the storage gateway.
// Persistence only; no business logic.
type DocumentRepository interface {
	// Upsert inserts the record or replaces the one with the same ID, so a
	// redelivered message never fails on a duplicate key.
	Upsert(ctx context.Context, doc *model.Document) error

	// List returns every stored record. Order is whatever the store yields.
	List(ctx context.Context) ([]model.Document, error)
}
