// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for persisted
// selection state, one row per (document, context).
package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-hymnal-backend/internal/domain"
	"github.com/tbourn/go-hymnal-backend/internal/selection"
)

// GetSelection loads the selection stored for (docID, scope), or
// ErrNotFound when none was ever saved.
func GetSelection(ctx context.Context, db *gorm.DB, docID, scope string) (selection.Selection, error) {
	var row domain.Selection
	err := db.WithContext(ctx).
		Where("document_id = ? AND context = ?", docID, scope).
		First(&row).Error
	if err != nil {
		return selection.Selection{}, err
	}
	if row.All {
		return selection.All(), nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(row.IDs), &ids); err != nil {
		return selection.Selection{}, err
	}
	return selection.Of(ids...), nil
}

// PutSelection upserts the selection for (docID, scope).
func PutSelection(ctx context.Context, db *gorm.DB, docID, scope string, s selection.Selection) error {
	ids := s.IDs()
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	row := &domain.Selection{
		ID:         uuid.NewString(),
		DocumentID: docID,
		Context:    scope,
		All:        s.IsAll(),
		IDs:        string(raw),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return db.WithContext(ctx).
		Omit("Document").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "document_id"}, {Name: "context"}},
			DoUpdates: clause.AssignmentColumns([]string{"select_all", "ids", "updated_at"}),
		}).
		Create(row).Error
}
