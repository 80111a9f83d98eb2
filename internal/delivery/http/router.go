package http

import (
	"github.com/duetapp/duet-backend/internal/delivery/http/handler"
	"github.com/duetapp/duet-backend/internal/delivery/http/middleware"
	"github.com/duetapp/duet-backend/internal/delivery/ws"
	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type Router struct {
	profileHandler     *handler.ProfileHandler
	matchHandler       *handler.MatchHandler
	reportHandler      *handler.ReportHandler
	callHandler        *handler.CallHandler
	matchmakingHandler *ws.MatchmakingHandler
	callWSHandler      *ws.CallHandler
	authMiddleware     *middleware.AuthMiddleware
}

func NewRouter(
	profileHandler *handler.ProfileHandler,
	matchHandler *handler.MatchHandler,
	reportHandler *handler.ReportHandler,
	callHandler *handler.CallHandler,
	matchmakingHandler *ws.MatchmakingHandler,
	callWSHandler *ws.CallHandler,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		profileHandler:     profileHandler,
		matchHandler:       matchHandler,
		reportHandler:      reportHandler,
		callHandler:        callHandler,
		matchmakingHandler: matchmakingHandler,
		callWSHandler:      callWSHandler,
		authMiddleware:     authMiddleware,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.Default()

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("match_type", func(fl validator.FieldLevel) bool {
			return domain.MatchType(fl.Field().String()).Valid()
		})
	}

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// API v1
	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(r.authMiddleware.RequireAuth())
		{
			// Profile routes
			profile := protected.Group("/profile")
			{
				profile.GET("/me", r.profileHandler.GetMyProfile)
				profile.PUT("/me", r.profileHandler.UpdateMyProfile)
				profile.POST("/complete-onboarding", r.profileHandler.CompleteOnboarding)
			}

			// Match routes
			protected.GET("/matches", r.matchHandler.GetMyMatches)

			// Report routes
			protected.POST("/reports", r.reportHandler.CreateReport)

			// Direct call routes
			calls := protected.Group("/calls")
			{
				calls.POST("/direct", r.callHandler.InviteDirect)
				calls.POST("/direct/:invite_id/accept", r.callHandler.AcceptDirect)
				calls.POST("/direct/:invite_id/decline", r.callHandler.DeclineDirect)
			}
		}

		// Profile modules (public)
		v1.GET("/profile/modules", r.profileHandler.GetModules)
	}

	// Websocket channels. Tokens arrive as query parameters here.
	wsGroup := router.Group("/ws")
	wsGroup.Use(r.authMiddleware.RequireAuth())
	{
		wsGroup.GET("/find-room", r.matchmakingHandler.Handle)
		wsGroup.GET("/call", r.callWSHandler.Handle)
	}

	return router
}
