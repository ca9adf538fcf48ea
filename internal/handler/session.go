package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoyda/auth-service/internal/constants"
	"github.com/yoyda/auth-service/internal/dto"
	apperrors "github.com/yoyda/auth-service/internal/errors"
	"github.com/yoyda/auth-service/internal/service"
)

type SessionHandler struct {
	sessions *service.SessionService
}

func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// List returns the caller's sessions, most recently active first. The stored
// payload embeds token material and is deliberately not part of the response.
func (h *SessionHandler) List(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, apperrors.ErrUnauthenticated)
		return
	}

	sessions, err := h.sessions.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, dto.SessionResponse{
			ID:           s.ID,
			IPAddress:    s.IPAddress,
			UserAgent:    s.UserAgent,
			DeviceType:   s.DeviceType,
			LastActivity: s.LastActivity,
		})
	}

	c.JSON(http.StatusOK, constants.BuildListResponse("Active sessions", gin.H{"sessions": out}, constants.Pagination{
		Total:     int64(len(out)),
		Page:      1,
		PageTotal: 1,
	}))
}

// Delete removes one of the caller's sessions by id.
func (h *SessionHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, apperrors.ErrUnauthenticated)
		return
	}

	if err := h.sessions.Delete(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Session deleted", nil))
}
