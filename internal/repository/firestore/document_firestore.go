// Package firestore stores document records in a Cloud Firestore collection.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"docbridge/internal/model"
	"docbridge/internal/repository"
)

// documentItem is the Firestore shape of a record; the document ID is the record id.
type documentItem struct {
	ID   string `firestore:"id"`
	Name string `firestore:"name"`
	URL  string `firestore:"url"`
}

// DocumentFirestore implements repository.DocumentRepository on Firestore.
type DocumentFirestore struct {
	client     *firestore.Client
	collection string
}

var _ repository.DocumentRepository = (*DocumentFirestore)(nil)

// NewClient creates a Firestore client for projectID.
func NewClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return client, nil
}

// NewDocumentFirestore builds the repository over an existing client.
func NewDocumentFirestore(client *firestore.Client, collection string) (*DocumentFirestore, error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client is required")
	}
	if collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	return &DocumentFirestore{client: client, collection: collection}, nil
}

// Upsert writes the record under its id, replacing any previous version.
func (r *DocumentFirestore) Upsert(ctx context.Context, doc *model.Document) error {
	_, err := r.client.Collection(r.collection).Doc(doc.ID).Set(ctx, documentItem{
		ID:   doc.ID,
		Name: doc.Name,
		URL:  doc.URL,
	})
	return err
}

// List reads the whole collection.
func (r *DocumentFirestore) List(ctx context.Context) ([]model.Document, error) {
	snaps, err := r.client.Collection(r.collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	items := make([]model.Document, 0, len(snaps))
	for _, snap := range snaps {
		var item documentItem
		if err := snap.DataTo(&item); err != nil {
			return nil, fmt.Errorf("decode %s: %w", snap.Ref.ID, err)
		}
		if item.ID == "" {
			item.ID = snap.Ref.ID
		}
		items = append(items, model.Document{ID: item.ID, Name: item.Name, URL: item.URL})
	}
	return items, nil
}

// IsTransient reports whether a Firestore error is expected to clear on retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.Aborted, codes.DeadlineExceeded, codes.ResourceExhausted:
		return true
	default:
		return false
	}
}
