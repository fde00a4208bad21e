// Query HTTP handlers.
//
// This file exposes read-only views over a stored document:
//   - GET /documents/{id}/search             (paginated full-text + filters)
//   - GET /documents/{id}/categories/{facet} (entries grouped by facet)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-hymnal-backend/internal/category"
	"github.com/tbourn/go-hymnal-backend/internal/search"
	"github.com/tbourn/go-hymnal-backend/internal/utils"
)

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// SearchResponse wraps a page of search results and pagination information.
type SearchResponse struct {
	Query      string          `json:"query" example:"grace #lang=en"`
	Results    []search.Result `json:"results"`
	Pagination Pagination      `json:"pagination"`
}

// CategoriesResponse lists the categories of one facet.
type CategoriesResponse struct {
	Facet      string              `json:"facet" example:"topic"`
	Sort       category.SortMode   `json:"sort" example:"default"`
	Categories []category.Category `json:"categories"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// Search godoc
// @ID          searchDocument
// @Summary     Search a document (paginated)
// @Description Free-text terms must all prefix-match words on the same line. Filters use "#type=value" (or legacy "type:value"): topic, tune, day, origin, author, transl, lang, deleted, restricted, refrain, chorus, repeat. Words are normalized before matching and tokens made only of digits or punctuation are dropped, so a query such as "1779" has no terms. Without terms every entry passing the filters is returned.
// @Tags        Queries
// @Produce     json
//
// @Param       id         path   string  true   "Document ID"     example(hb)
// @Param       q          query  string  false  "Query"           example(grace #lang=en)
// @Param       page       query  int     false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.SearchResponse
// @Failure     404  {object} handlers.ErrorResponse "Document not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /documents/{id}/search [get]
func (h *Handlers) Search(c *gin.Context) {
	q := c.Query("q")
	page, pageSize := clampPagination(c)

	res, err := h.svc.Search(c.Request.Context(), c.Param("id"), q)
	if err != nil {
		failService(c, err)
		return
	}

	lo, hi, totalPages := utils.PageBounds(len(res), page, pageSize)
	items := res[lo:hi]
	if items == nil {
		items = []search.Result{}
	}
	ok(c, http.StatusOK, SearchResponse{
		Query:   q,
		Results: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int64(len(res)),
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// Categories godoc
// @ID          listCategories
// @Summary     Group entries by facet
// @Description Returns the categories of a facet with their member entry ids. Defined categories come first (table order), then ad-hoc ones, then the uncategorized bucket. A query restricts the grouping to matching entries.
// @Tags        Queries
// @Produce     json
//
// @Param       id     path   string  true   "Document ID"  example(hb)
// @Param       facet  path   string  true   "Facet type"   Enums(topic, tune, day, origin, language, author, translator, contributor)
// @Param       sort   query  string  false  "Sort mode"    Enums(default, name, count) default(default)
// @Param       q      query  string  false  "Restrict to entries matching this query"
//
// @Success     200  {object} handlers.CategoriesResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad sort mode"
// @Failure     404  {object} handlers.ErrorResponse "Document or facet not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /documents/{id}/categories/{facet} [get]
func (h *Handlers) Categories(c *gin.Context) {
	mode, err := category.ParseSortMode(c.Query("sort"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidSort, err.Error())
		return
	}
	facet := c.Param("facet")

	cs, err := h.svc.Categories(c.Request.Context(), c.Param("id"), facet, c.Query("q"), mode)
	if err != nil {
		failService(c, err)
		return
	}
	if cs == nil {
		cs = []category.Category{}
	}
	ok(c, http.StatusOK, CategoriesResponse{Facet: facet, Sort: mode, Categories: cs})
}
