package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-hymnal-backend/internal/selection"
)

// Store adapts the repository free functions to the key/blob store contract
// consumed by the service layer.
type Store struct {
	DB *gorm.DB
}

// NewStore returns a Store bound to db.
func NewStore(db *gorm.DB) *Store { return &Store{DB: db} }

// Get returns the raw source of document id.
func (s *Store) Get(ctx context.Context, id string) ([]byte, error) {
	d, err := GetDocument(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	return d.Raw, nil
}

// Put stores raw under id.
func (s *Store) Put(ctx context.Context, id string, raw []byte) error {
	_, err := PutDocument(ctx, s.DB, id, raw)
	return err
}

// Delete removes document id and everything derived from it.
func (s *Store) Delete(ctx context.Context, id string) error {
	return DeleteDocument(ctx, s.DB, id)
}

// GetIndex proxies repo.GetIndex.
func (s *Store) GetIndex(ctx context.Context, id string) ([]byte, error) {
	return GetIndex(ctx, s.DB, id)
}

// PutIndex proxies repo.PutIndex.
func (s *Store) PutIndex(ctx context.Context, id string, blob []byte) error {
	return PutIndex(ctx, s.DB, id, blob)
}

// List returns the ids of all stored documents, ascending.
func (s *Store) List(ctx context.Context) ([]string, error) {
	docs, err := ListDocuments(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

// GetSelection proxies repo.GetSelection.
func (s *Store) GetSelection(ctx context.Context, docID, scope string) (selection.Selection, error) {
	return GetSelection(ctx, s.DB, docID, scope)
}

// PutSelection proxies repo.PutSelection.
func (s *Store) PutSelection(ctx context.Context, docID, scope string, sel selection.Selection) error {
	return PutSelection(ctx, s.DB, docID, scope, sel)
}

// Stats proxies repo.DocumentsStats.
func (s *Store) Stats(ctx context.Context) (int64, *time.Time, error) {
	return DocumentsStats(ctx, s.DB)
}
