// Document HTTP handlers.
//
// This file exposes REST endpoints for hymnal documents:
//   - PUT    /documents/{id}                  (store or replace)
//   - GET    /documents                       (list ids, ETag support)
//   - GET    /documents/{id}                  (metadata)
//   - DELETE /documents/{id}                  (remove)
//   - GET    /documents/{id}/entries/{entry}  (one entry, rendered)
//
// Handlers are transport-thin: they validate input, call the catalog service,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-hymnal-backend/internal/category"
	"github.com/tbourn/go-hymnal-backend/internal/hymnal"
	"github.com/tbourn/go-hymnal-backend/internal/search"
	"github.com/tbourn/go-hymnal-backend/internal/selection"
)

//
// Service contract (context-aware)
//

// Catalog defines the document operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type Catalog interface {
	// PutDocument validates and stores raw markup under id.
	PutDocument(ctx context.Context, id string, raw []byte) (*hymnal.Document, error)
	// GetDocument returns the parsed document.
	GetDocument(ctx context.Context, id string) (*hymnal.Document, error)
	// DeleteDocument removes a document with its index and selections.
	DeleteDocument(ctx context.Context, id string) error
	// ListDocuments returns all stored ids.
	ListDocuments(ctx context.Context) ([]string, error)
	// Stats returns the document count and last update for ETags; ok is
	// false when the backend cannot tell.
	Stats(ctx context.Context) (count int64, updated *time.Time, ok bool, err error)
	// Entry returns one entry of a document.
	Entry(ctx context.Context, id, entryID string) (*hymnal.Entry, error)
	// Search runs a query against a document.
	Search(ctx context.Context, id, q string) ([]search.Result, error)
	// Categories groups a document's entries (optionally those matching q).
	Categories(ctx context.Context, id, facet, q string, mode category.SortMode) ([]category.Category, error)
	// Selection returns the stored selection of a context.
	Selection(ctx context.Context, id, scope string) (selection.Selection, error)
	// ApplySelection updates and stores the selection of a context.
	ApplySelection(ctx context.Context, id, scope string, op selection.Op, targets selection.Selection, q string) (selection.Selection, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for documents, queries and selections.
// It depends on an abstract service interface to keep transport concerns
// separate from business logic.
type Handlers struct {
	svc      Catalog
	maxBytes int64
}

// New constructs and returns a Handlers instance bound to svc. Uploads larger
// than maxDocumentBytes are rejected (<= 0 means unlimited).
func New(svc Catalog, maxDocumentBytes int64) *Handlers {
	return &Handlers{svc: svc, maxBytes: maxDocumentBytes}
}

//
// DTOs
//

// DocumentResponse describes a stored document without its entries.
type DocumentResponse struct {
	*hymnal.Document
	// Entries is the number of hymns in the document.
	Entries int `json:"entries" example:"812"`
}

// ListDocumentsResponse wraps the stored document ids.
type ListDocumentsResponse struct {
	Documents []string `json:"documents"`
}

// EntryResponse is an entry together with its verses expanded for display.
type EntryResponse struct {
	*hymnal.Entry
	Rendered RenderedEntry `json:"rendered"`
}

// RenderedEntry holds display lines with repeats expanded.
type RenderedEntry struct {
	Verses  [][]string `json:"verses"`
	Refrain []string   `json:"refrain,omitempty"`
	Chorus  []string   `json:"chorus,omitempty"`
}

func render(e *hymnal.Entry) RenderedEntry {
	out := RenderedEntry{Verses: make([][]string, len(e.Verses))}
	for i := range e.Verses {
		out.Verses[i] = hymnal.RenderLines(&e.Verses[i])
	}
	if e.Refrain != nil {
		out.Refrain = hymnal.RenderLines(e.Refrain)
	}
	if e.Chorus != nil {
		out.Chorus = hymnal.RenderLines(e.Chorus)
	}
	return out
}

//
// Handlers
//

// PutDocument godoc
// @ID          putDocument
// @Summary     Store or replace a document
// @Description Uploads hymnal XML under an id. The root element's id must match the path id. The search index is rebuilt on every upload.
// @Tags        Documents
// @Accept      xml
// @Produce     json
//
// @Param       id    path  string  true  "Document ID"  example(hb)
// @Param       body  body  string  true  "Hymnal XML"
//
// @Success     201  {object}  handlers.DocumentResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid document"
// @Failure     409  {object}  handlers.ErrorResponse  "Id mismatch"
// @Failure     413  {object}  handlers.ErrorResponse  "Too large"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /documents/{id} [put]
func (h *Handlers) PutDocument(c *gin.Context) {
	id := c.Param("id")
	raw, err := hymnal.ReadSource(c.Request.Body, h.maxBytes)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.Is(err, hymnal.ErrSourceTooLarge) || errors.As(err, &mbe) {
			fail(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "document too large")
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable body")
		return
	}
	if len(raw) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "empty body")
		return
	}

	doc, err := h.svc.PutDocument(c.Request.Context(), id, raw)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, DocumentResponse{Document: doc, Entries: doc.Len()})
}

// ListDocuments godoc
// @ID          listDocuments
// @Summary     List documents
// @Description Returns the ids of all stored documents. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Documents
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
//
// @Success     200  {object} handlers.ListDocumentsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /documents [get]
func (h *Handlers) ListDocuments(c *gin.Context) {
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	if count, maxTS, known, err := h.svc.Stats(ctx); err == nil && known {
		var ts int64
		if maxTS != nil {
			ts = maxTS.UnixNano()
		}
		etag := fmt.Sprintf(`W/"documents:%d:%d"`, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	ids, err := h.svc.ListDocuments(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if ids == nil {
		ids = []string{}
	}
	ok(c, http.StatusOK, ListDocumentsResponse{Documents: ids})
}

// GetDocument godoc
// @ID          getDocument
// @Summary     Get document metadata
// @Description Returns title, facet tables, index descriptors and the entry count.
// @Tags        Documents
// @Produce     json
//
// @Param       id  path  string  true  "Document ID"  example(hb)
//
// @Success     200  {object} handlers.DocumentResponse
// @Failure     404  {object} handlers.ErrorResponse "Document not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /documents/{id} [get]
func (h *Handlers) GetDocument(c *gin.Context) {
	doc, err := h.svc.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, DocumentResponse{Document: doc, Entries: doc.Len()})
}

// DeleteDocument godoc
// @ID          deleteDocument
// @Summary     Delete a document
// @Description Removes the document, its search index and its stored selections.
// @Tags        Documents
//
// @Param       id  path  string  true  "Document ID"  example(hb)
//
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Document not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /documents/{id} [delete]
func (h *Handlers) DeleteDocument(c *gin.Context) {
	if err := h.svc.DeleteDocument(c.Request.Context(), c.Param("id")); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// GetEntry godoc
// @ID          getEntry
// @Summary     Get one entry
// @Description Returns an entry with its structured verses and the display lines with repeats expanded.
// @Tags        Documents
// @Produce     json
//
// @Param       id     path  string  true  "Document ID"  example(hb)
// @Param       entry  path  string  true  "Entry ID"     example(42)
//
// @Success     200  {object} handlers.EntryResponse
// @Failure     404  {object} handlers.ErrorResponse "Document or entry not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /documents/{id}/entries/{entry} [get]
func (h *Handlers) GetEntry(c *gin.Context) {
	e, err := h.svc.Entry(c.Request.Context(), c.Param("id"), c.Param("entry"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, EntryResponse{Entry: e, Rendered: render(e)})
}
