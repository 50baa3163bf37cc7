package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docquery/internal/ai"
	"docquery/internal/app"
	"docquery/internal/registry"
	"docquery/internal/transport/http/response"
)

type QueryHandler struct {
	queryService *app.QueryService
}

type QueryRequest struct {
	Question  string `json:"question" binding:"required"`
	SessionID string `json:"session_id"`
}

func NewQueryHandler(queryService *app.QueryService) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

// Query answers a question about a document, creating or reusing a session.
func (h *QueryHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.queryService.Query(c.Request.Context(), app.QueryInput{
		DocumentID: c.Param("document_id"),
		SessionID:  req.SessionID,
		Question:   req.Question,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, ai.ErrUpstream):
			response.Error(c, http.StatusInternalServerError, response.CodeUpstreamModel, "upstream model call failed")
		case errors.Is(err, registry.ErrDocumentNotLoaded):
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to initialize query engine")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "query processing failed")
		}
		return
	}

	response.OK(c, result)
}
