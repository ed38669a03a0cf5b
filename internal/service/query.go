package service

import (
	"context"
	"errors"
	"fmt"

	"docbridge/internal/model"
	"docbridge/internal/repository"
)

// DocumentView is the listing shape: exactly id, name and url.
type DocumentView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Lister answers the metadata listing query.
type Lister interface {
	// List returns every stored record. The slice is never nil on success.
	List(ctx context.Context) ([]DocumentView, error)
}

type lister struct {
	repo repository.DocumentRepository
}

// NewLister constructs a Lister over repo.
func NewLister(repo repository.DocumentRepository) Lister {
	return &lister{repo: repo}
}

func (s *lister) List(ctx context.Context) ([]DocumentView, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		if errors.Is(err, model.ErrRecordRead) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", model.ErrRecordRead, err)
	}

	views := make([]DocumentView, 0, len(docs))
	for _, d := range docs {
		views = append(views, DocumentView{ID: d.ID, Name: d.Name, URL: d.URL})
	}
	return views, nil
}
