package http

import (
	"net/http"

	"github.com/gdugdh24/kindred-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/kindred-backend/internal/delivery/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Router struct {
	profileHandler *handler.ProfileHandler
	feedHandler    *handler.FeedHandler
	swipeHandler   *handler.SwipeHandler
	chatHandler    *handler.ChatHandler
	logger         *zap.Logger
}

func NewRouter(
	profileHandler *handler.ProfileHandler,
	feedHandler *handler.FeedHandler,
	swipeHandler *handler.SwipeHandler,
	chatHandler *handler.ChatHandler,
	logger *zap.Logger,
) *Router {
	return &Router{
		profileHandler: profileHandler,
		feedHandler:    feedHandler,
		swipeHandler:   swipeHandler,
		chatHandler:    chatHandler,
		logger:         logger,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(r.logger),
		middleware.Recovery(r.logger),
	)

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	v1 := router.Group("/api/v1")
	{
		// Registration is the only call made before an identity exists
		v1.POST("/profiles", r.profileHandler.CreateProfile)

		protected := v1.Group("")
		protected.Use(middleware.RequireUser())
		{
			profiles := protected.Group("/profiles")
			{
				profiles.GET("/me", r.profileHandler.GetMyProfile)
				profiles.PUT("/me", r.profileHandler.UpdateMyProfile)
				profiles.POST("/me/activity", r.profileHandler.TouchActivity)
				profiles.GET("/:id", r.profileHandler.GetProfile)
			}

			discover := protected.Group("/discover")
			{
				discover.GET("", r.feedHandler.Discover)
				discover.GET("/interests", r.feedHandler.ByInterests)
				discover.GET("/location", r.feedHandler.ByLocation)
				discover.GET("/nearby", r.feedHandler.Nearby)
			}

			likes := protected.Group("/likes")
			{
				likes.POST("", r.swipeHandler.CreateLike)
				likes.GET("/received", r.swipeHandler.GetLikesReceived)
			}

			matches := protected.Group("/matches")
			{
				matches.GET("", r.swipeHandler.GetMatches)
				matches.GET("/:id/icebreakers", r.swipeHandler.GetIcebreakers)
			}

			messages := protected.Group("/messages")
			{
				messages.POST("", r.chatHandler.SendMessage)
				messages.GET("/:id", r.chatHandler.GetThread)
			}

			protected.GET("/conversations", r.chatHandler.GetConversations)
		}
	}

	return router
}
