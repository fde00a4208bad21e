// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for raw documents
// and their serialized search indexes.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a row is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-hymnal-backend/internal/domain"
	"github.com/tbourn/go-hymnal-backend/internal/hymnal"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// PutDocument inserts or replaces the raw source stored under id. The
// fingerprint and size columns are derived from raw.
func PutDocument(ctx context.Context, db *gorm.DB, id string, raw []byte) (*domain.Document, error) {
	now := time.Now().UTC()
	d := &domain.Document{
		ID:          id,
		Fingerprint: hymnal.Fingerprint(raw),
		Raw:         raw,
		Size:        len(raw),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"fingerprint", "raw", "size", "updated_at"}),
		}).
		Create(d).Error
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetDocument fetches a document row, including its raw bytes. If the row
// does not exist, it returns ErrNotFound.
func GetDocument(ctx context.Context, db *gorm.DB, id string) (*domain.Document, error) {
	var d domain.Document
	if err := db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDocuments returns document metadata ordered by id, without raw bytes.
func ListDocuments(ctx context.Context, db *gorm.DB) ([]domain.Document, error) {
	var out []domain.Document
	err := db.WithContext(ctx).
		Select("id", "fingerprint", "size", "created_at", "updated_at").
		Order("id asc").
		Find(&out).Error
	return out, err
}

// DeleteDocument removes a document together with its index and selections
// in one transaction. It returns ErrNotFound when no document row existed.
func DeleteDocument(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&domain.Selection{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", id).Delete(&domain.SearchIndex{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Document{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// PutIndex inserts or replaces the serialized index of document id.
func PutIndex(ctx context.Context, db *gorm.DB, id string, blob []byte) error {
	now := time.Now().UTC()
	row := &domain.SearchIndex{
		DocumentID: id,
		Blob:       blob,
		Size:       len(blob),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return db.WithContext(ctx).
		Omit("Document").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "document_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"blob", "size", "updated_at"}),
		}).
		Create(row).Error
}

// GetIndex returns the serialized index of document id, or ErrNotFound.
func GetIndex(ctx context.Context, db *gorm.DB, id string) ([]byte, error) {
	var row domain.SearchIndex
	if err := db.WithContext(ctx).Where("document_id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return row.Blob, nil
}
