package handler

import (
	"net/http"

	"github.com/gdugdh24/kindred-backend/internal/usecase/swipe"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SwipeHandler struct {
	swipeUseCase *swipe.SwipeUseCase
	logger       *zap.Logger
}

func NewSwipeHandler(swipeUseCase *swipe.SwipeUseCase, logger *zap.Logger) *SwipeHandler {
	return &SwipeHandler{
		swipeUseCase: swipeUseCase,
		logger:       logger,
	}
}

// LikeRequest is the body of POST /likes
type LikeRequest struct {
	LikedID int `json:"liked_id" binding:"required,gt=0"`
}

// CreateLike handles POST /likes
// @Summary Like a profile
// @Tags swipe
// @Accept json
// @Produce json
// @Param request body LikeRequest true "Target profile"
// @Success 201 {object} domain.LikeResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /likes [post]
func (h *SwipeHandler) CreateLike(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	result, err := h.swipeUseCase.RecordLike(c.Request.Context(), userID, req.LikedID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetLikesReceived handles GET /likes/received
func (h *SwipeHandler) GetLikesReceived(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profiles, err := h.swipeUseCase.LikesReceived(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// GetMatches handles GET /matches
// @Summary Mutual matches
// @Tags swipe
// @Produce json
// @Success 200 {object} map[string][]domain.Profile
// @Failure 404 {object} ErrorResponse
// @Router /matches [get]
func (h *SwipeHandler) GetMatches(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	matches, err := h.swipeUseCase.GetMatches(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// GetIcebreakers handles GET /matches/:id/icebreakers
func (h *SwipeHandler) GetIcebreakers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	otherID, ok := pathID(c, "id")
	if !ok {
		return
	}

	suggestions, err := h.swipeUseCase.Icebreakers(c.Request.Context(), userID, otherID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"icebreakers": suggestions})
}
