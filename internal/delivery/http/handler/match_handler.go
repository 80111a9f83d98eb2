package handler

import (
	"net/http"

	"github.com/duetapp/duet-backend/internal/usecase/session"
	"github.com/gin-gonic/gin"
)

type MatchHandler struct {
	sessionUseCase *session.UseCase
}

func NewMatchHandler(sessionUseCase *session.UseCase) *MatchHandler {
	return &MatchHandler{
		sessionUseCase: sessionUseCase,
	}
}

// GetMyMatches handles GET /matches
// @Summary List my matches
// @Description Get the current user's active matches
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.Match
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /matches [get]
func (h *MatchHandler) GetMyMatches(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	matches, err := h.sessionUseCase.ActiveMatches(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to get matches",
		})
		return
	}

	c.JSON(http.StatusOK, matches)
}
