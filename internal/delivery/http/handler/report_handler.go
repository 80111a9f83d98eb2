package handler

import (
	"net/http"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/usecase/moderation"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	moderationUseCase *moderation.UseCase
}

func NewReportHandler(moderationUseCase *moderation.UseCase) *ReportHandler {
	return &ReportHandler{
		moderationUseCase: moderationUseCase,
	}
}

// CreateReportRequest represents a user report
type CreateReportRequest struct {
	ReportedUserID string `json:"reported_user_id" binding:"required"`
	Reason         string `json:"reason" binding:"required,min=3,max=1000"`
}

// CreateReport handles POST /reports
// @Summary Report a user
// @Description Flag a user for investigation
// @Tags reports
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateReportRequest true "Report data"
// @Success 202 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /reports [post]
func (h *ReportHandler) CreateReport(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}
	if req.ReportedUserID == userID {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "cannot report yourself",
		})
		return
	}

	report := &domain.Report{
		ReporterID: userID,
		ReportedID: req.ReportedUserID,
		Reason:     req.Reason,
	}
	if err := h.moderationUseCase.FlagForInvestigation(c.Request.Context(), report); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to submit report",
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
