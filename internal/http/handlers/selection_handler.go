// Selection HTTP handlers.
//
// Each document keeps one selection per context (a facet type or "search"):
//   - GET  /documents/{id}/selections/{context}
//   - POST /documents/{id}/selections/{context}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-hymnal-backend/internal/selection"
)

// SelectionResponse is the stored selection of a context.
type SelectionResponse struct {
	Context string `json:"context" example:"topic"`
	// All is true when everything is selected; IDs is then omitted.
	All bool     `json:"all"`
	IDs []string `json:"ids"`
}

// ApplySelectionRequest is the JSON payload for changing a selection.
type ApplySelectionRequest struct {
	// Op is "select" or "deselect".
	Op string `json:"op" binding:"required" example:"deselect"`
	// All targets every id instead of IDs.
	All bool `json:"all"`
	// IDs are the category (or entry) ids to apply Op to.
	IDs []string `json:"ids" example:"A,B"`
	// Q restricts the id universe to the current query, as in the list views.
	Q string `json:"q" example:"grace"`
}

func selectionResponse(scope string, s selection.Selection) SelectionResponse {
	ids := s.IDs()
	if !s.IsAll() && ids == nil {
		ids = []string{}
	}
	return SelectionResponse{Context: scope, All: s.IsAll(), IDs: ids}
}

// GetSelection godoc
// @ID          getSelection
// @Summary     Get a selection
// @Description Returns the selection stored for a context; everything is selected until changed.
// @Tags        Selections
// @Produce     json
//
// @Param       id       path  string  true  "Document ID"                   example(hb)
// @Param       context  path  string  true  "Facet type or \"search\""      example(topic)
//
// @Success     200  {object} handlers.SelectionResponse
// @Failure     404  {object} handlers.ErrorResponse "Document or context not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /documents/{id}/selections/{context} [get]
func (h *Handlers) GetSelection(c *gin.Context) {
	scope := c.Param("context")
	s, err := h.svc.Selection(c.Request.Context(), c.Param("id"), scope)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, selectionResponse(scope, s))
}

// ApplySelection godoc
// @ID          applySelection
// @Summary     Select or deselect
// @Description Applies select/deselect to the stored selection. Explicit results are restricted to the ids currently listed for the context (category ids, or entry ids of the search results for "search").
// @Tags        Selections
// @Accept      json
// @Produce     json
//
// @Param       id       path  string  true  "Document ID"               example(hb)
// @Param       context  path  string  true  "Facet type or \"search\""  example(topic)
// @Param       body     body  handlers.ApplySelectionRequest  true  "Operation"
//
// @Success     200  {object} handlers.SelectionResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Document or context not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /documents/{id}/selections/{context} [post]
func (h *Handlers) ApplySelection(c *gin.Context) {
	var req ApplySelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	op, err := selection.ParseOp(req.Op)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidOp, err.Error())
		return
	}
	targets := selection.Of(req.IDs...)
	if req.All {
		targets = selection.All()
	}

	scope := c.Param("context")
	s, err := h.svc.ApplySelection(c.Request.Context(), c.Param("id"), scope, op, targets, req.Q)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, selectionResponse(scope, s))
}
