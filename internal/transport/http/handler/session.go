package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docquery/internal/app"
	"docquery/internal/transport/http/response"
)

type SessionHandler struct {
	queryService *app.QueryService
}

func NewSessionHandler(queryService *app.QueryService) *SessionHandler {
	return &SessionHandler{queryService: queryService}
}

// ListByDocument lists all sessions of one document.
func (h *SessionHandler) ListByDocument(c *gin.Context) {
	sessions, err := h.queryService.ListSessions(c.Param("document_id"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list sessions failed")
		}
		return
	}
	response.OK(c, sessions)
}

// History serves GET /sessions/history/:session_id. The route is registered
// as /sessions/:document_id/:session_id because gin's tree cannot mix the
// static "history" segment with the :document_id wildcard; the first segment
// must therefore be the literal "history".
func (h *SessionHandler) History(c *gin.Context) {
	if c.Param("document_id") != "history" {
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "not found")
		return
	}
	sessionID := c.Param("session_id")

	limit := 0
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	messages, err := h.queryService.GetHistory(c.Request.Context(), sessionID, limit)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get history failed")
		}
		return
	}

	response.OK(c, gin.H{
		"session_id": sessionID,
		"messages":   messages,
	})
}

// Clear removes a session's persisted messages and in-memory transcript.
func (h *SessionHandler) Clear(c *gin.Context) {
	sessionID := c.Param("session_id")
	if err := h.queryService.ClearSession(c.Request.Context(), sessionID); err != nil {
		switch {
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "clear session failed")
		}
		return
	}
	response.OK(c, gin.H{"cleared_session_id": sessionID})
}
