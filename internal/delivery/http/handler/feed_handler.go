package handler

import (
	"net/http"

	"github.com/gdugdh24/kindred-backend/internal/usecase/feed"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FeedHandler struct {
	feedUseCase *feed.FeedUseCase
	logger      *zap.Logger
}

func NewFeedHandler(feedUseCase *feed.FeedUseCase, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{
		feedUseCase: feedUseCase,
		logger:      logger,
	}
}

// Discover handles GET /discover
// @Summary Ranked candidates
// @Tags feed
// @Produce json
// @Param limit query int false "Max candidates"
// @Success 200 {object} feed.CandidateList
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /discover [get]
func (h *FeedHandler) Discover(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	list, err := h.feedUseCase.SelectCandidates(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// ByInterests handles GET /discover/interests
func (h *FeedHandler) ByInterests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	profiles, err := h.feedUseCase.SelectByInterest(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// ByLocation handles GET /discover/location
func (h *FeedHandler) ByLocation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	profiles, err := h.feedUseCase.SelectByLocation(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// Nearby handles GET /discover/nearby
func (h *FeedHandler) Nearby(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	nearby, err := h.feedUseCase.SelectNearby(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"candidates": nearby})
}
