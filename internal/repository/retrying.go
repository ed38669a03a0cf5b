package repository

import (
	"context"

	"docbridge/internal/model"
	"docbridge/internal/retry"
)

// retryingRepository runs every call of the wrapped repository under a retry
// policy. Callers see a single call that either succeeded or failed for good.
type retryingRepository struct {
	inner  DocumentRepository
	policy retry.Policy
}

// NewRetrying decorates inner with policy.
func NewRetrying(inner DocumentRepository, policy retry.Policy) DocumentRepository {
	return &retryingRepository{inner: inner, policy: policy}
}

func (r *retryingRepository) Upsert(ctx context.Context, doc *model.Document) error {
	return r.policy.Do(ctx, func(ctx context.Context) error {
		return r.inner.Upsert(ctx, doc)
	})
}

func (r *retryingRepository) List(ctx context.Context) ([]model.Document, error) {
	return retry.Value(ctx, r.policy, r.inner.List)
}
