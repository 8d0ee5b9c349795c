package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gdugdh24/kindred-backend/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", &domain.ValidationError{Reason: "limit must be between 1 and 100"}, http.StatusBadRequest, `{"error":"limit must be between 1 and 100"}`},
		{"not found", fmt.Errorf("load: %w", domain.ErrProfileNotFound), http.StatusNotFound, `{"error":"profile not found"}`},
		{"already liked", domain.ErrAlreadyLiked, http.StatusConflict, `{"error":"already liked"}`},
		{"not matched", domain.ErrNotMatched, http.StatusForbidden, `{"error":"profiles are not matched"}`},
		{"transient", fmt.Errorf("query: %w", domain.ErrTransientStore), http.StatusServiceUnavailable, `{"error":"service temporarily unavailable"}`},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			writeError(c, zap.NewNop(), tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}
