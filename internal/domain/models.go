// Package domain defines the persistence models for stored hymnal documents,
// their serialized search indexes, and per-context selection state. These
// types are mapped with GORM and form the relational storage layer of the
// hymnal backend.
package domain

import (
	"time"
)

// Document is a raw hymnal source as uploaded. The parsed model is never
// stored; it is derived from Raw on demand.
//
// Fields:
//   - ID: the document id (root id attribute of the markup); primary key.
//   - Fingerprint: SHA-256 hex of Raw; used to detect stale indexes.
//   - Raw: the source markup bytes, verbatim.
//   - Size: len(Raw), kept for listings without loading the blob.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Document struct {
	ID          string    `json:"id"          gorm:"type:varchar(128);primaryKey"`
	Fingerprint string    `json:"fingerprint" gorm:"type:char(64);not null;index"`
	Raw         []byte    `json:"-"           gorm:"type:blob;not null"`
	Size        int       `json:"size"        gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Document.
func (Document) TableName() string { return "documents" }

// SearchIndex is the opaque serialized index of one document. The blob is
// produced by search.Encode and only ever read back by search.Decode.
//
// Fields:
//   - DocumentID: owning document; primary key (one index per document).
//   - Blob: versioned, compressed index payload.
//   - Size: len(Blob).
//   - Document: FK association, cascade-deleted with the document.
type SearchIndex struct {
	DocumentID string    `json:"document_id" gorm:"type:varchar(128);primaryKey"`
	Blob       []byte    `json:"-"           gorm:"type:blob;not null"`
	Size       int       `json:"size"        gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Document Document `json:"-" gorm:"foreignKey:DocumentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for SearchIndex.
func (SearchIndex) TableName() string { return "search_indexes" }

// Selection is the persisted expand/collapse state of one context (a facet
// type, or "search") within a document. A document has at most one row per
// context (enforced by unique index).
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - DocumentID / Context: the unique key.
//   - All: true for the "everything selected" sentinel; IDs is then ignored.
//   - IDs: JSON array of selected category ids when All is false.
type Selection struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	DocumentID string    `json:"document_id" gorm:"type:varchar(128);not null;uniqueIndex:ux_selection_doc_ctx,priority:1"`
	Context    string    `json:"context"     gorm:"type:varchar(64);not null;uniqueIndex:ux_selection_doc_ctx,priority:2"`
	All        bool      `json:"all"         gorm:"column:select_all;not null;default:false"`
	IDs        string    `json:"ids"         gorm:"type:text;not null;default:'[]'"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Document Document `json:"-" gorm:"foreignKey:DocumentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Selection.
func (Selection) TableName() string { return "selections" }
