package handler

import (
	"errors"
	"net/http"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/usecase/matchmaking"
	"github.com/gin-gonic/gin"
)

type CallHandler struct {
	matchmakingUseCase *matchmaking.UseCase
}

func NewCallHandler(matchmakingUseCase *matchmaking.UseCase) *CallHandler {
	return &CallHandler{
		matchmakingUseCase: matchmakingUseCase,
	}
}

// DirectCallRequest represents a direct call invite
type DirectCallRequest struct {
	CalleeID  string `json:"callee_id" binding:"required"`
	MatchType string `json:"match_type" binding:"required,match_type"`
}

// InviteDirect handles POST /calls/direct
// @Summary Invite to a direct call
// @Description Invite a matched user to a call, bypassing the queue
// @Tags calls
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body DirectCallRequest true "Invite data"
// @Success 201 {object} store.DirectInvite
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /calls/direct [post]
func (h *CallHandler) InviteDirect(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	var req DirectCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	invite, err := h.matchmakingUseCase.InviteDirect(c.Request.Context(), userID, req.CalleeID, domain.MatchType(req.MatchType))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserBanned):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "account banned"})
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to create invite"})
		}
		return
	}

	c.JSON(http.StatusCreated, invite)
}

// AcceptDirect handles POST /calls/direct/:invite_id/accept
// @Summary Accept a direct call invite
// @Description Accept an invite and create the call room
// @Tags calls
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.Room
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /calls/direct/{invite_id}/accept [post]
func (h *CallHandler) AcceptDirect(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	room, err := h.matchmakingUseCase.AcceptDirect(c.Request.Context(), userID, c.Param("invite_id"))
	if err != nil {
		if errors.Is(err, domain.ErrInviteNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "invite not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to accept invite"})
		return
	}

	c.JSON(http.StatusOK, room)
}

// DeclineDirect handles POST /calls/direct/:invite_id/decline
// @Summary Decline a direct call invite
// @Tags calls
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /calls/direct/{invite_id}/decline [post]
func (h *CallHandler) DeclineDirect(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	if err := h.matchmakingUseCase.DeclineDirect(c.Request.Context(), userID, c.Param("invite_id")); err != nil {
		if errors.Is(err, domain.ErrInviteNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "invite not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to decline invite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "declined"})
}
