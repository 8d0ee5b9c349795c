package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gdugdh24/kindred-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/kindred-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/kindred-backend/internal/repository/memory"
	"github.com/gdugdh24/kindred-backend/internal/usecase/chat"
	"github.com/gdugdh24/kindred-backend/internal/usecase/feed"
	"github.com/gdugdh24/kindred-backend/internal/usecase/profile"
	"github.com/gdugdh24/kindred-backend/internal/usecase/swipe"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()
	profiles := memory.NewProfileRepository()
	likes := memory.NewLikeRepository()

	swipeUseCase := swipe.NewSwipeUseCase(profiles, likes, nil, nil, nil, log)
	chatUseCase := chat.NewChatUseCase(profiles, memory.NewMessageRepository(), swipeUseCase, nil, log)

	router := NewRouter(
		handler.NewProfileHandler(profile.NewProfileUseCase(profiles, nil, log), log),
		handler.NewFeedHandler(feed.NewFeedUseCase(profiles, likes, nil, feed.Config{FallbackEnabled: true}, log), log),
		handler.NewSwipeHandler(swipeUseCase, log),
		handler.NewChatHandler(chatUseCase, log),
		log,
	)
	return router.Setup()
}

func do(t *testing.T, r *gin.Engine, method, path string, userID int, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		req.Header.Set(middleware.UserIDHeader, strconv.Itoa(userID))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createProfile(t *testing.T, r *gin.Engine, body map[string]any) int {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/profiles", 0, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out.ID
}

func TestHealth(t *testing.T) {
	w := do(t, newTestEngine(), http.MethodGet, "/health", 0, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCreateProfileValidation(t *testing.T) {
	r := newTestEngine()

	w := do(t, r, http.MethodPost, "/api/v1/profiles", 0, map[string]any{
		"display_name": "Kid", "age": 16, "gender": "F", "gender_preference": "M",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/profiles", 0, map[string]any{
		"display_name": "Ana", "age": 30, "gender": "F", "gender_preference": "M",
		"age_range_min": 40, "age_range_max": 30,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/profiles/1", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDiscoverAndMatchFlow(t *testing.T) {
	r := newTestEngine()

	ana := createProfile(t, r, map[string]any{
		"display_name": "Ana", "age": 28, "gender": "F", "gender_preference": "M",
		"interests": []string{"jazz", "surf"}, "location": "Lisbon",
	})
	rui := createProfile(t, r, map[string]any{
		"display_name": "Rui", "age": 30, "gender": "M", "gender_preference": "F",
		"interests": []string{"jazz"}, "location": "Lisbon",
	})

	w := do(t, r, http.MethodGet, "/api/v1/discover", ana, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list feed.CandidateList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Candidates, 1)
	assert.Equal(t, rui, list.Candidates[0].Profile.ID)
	// interests 20, age 18, location 20, activity 20
	assert.Equal(t, 78, list.Candidates[0].Score)

	w = do(t, r, http.MethodGet, "/api/v1/discover?limit=abc", ana, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, http.MethodGet, "/api/v1/discover?limit=500", ana, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/likes", ana, map[string]any{"liked_id": rui})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"is_match":false`)

	w = do(t, r, http.MethodPost, "/api/v1/likes", ana, map[string]any{"liked_id": rui})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/matches/"+strconv.Itoa(rui)+"/icebreakers", ana, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/likes/received", rui, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"display_name":"Ana"`)

	w = do(t, r, http.MethodPost, "/api/v1/likes", rui, map[string]any{"liked_id": ana})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"is_match":true`)

	w = do(t, r, http.MethodGet, "/api/v1/matches", ana, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var matches struct {
		Matches []struct {
			ID int `json:"id"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &matches))
	require.Len(t, matches.Matches, 1)
	assert.Equal(t, rui, matches.Matches[0].ID)

	w = do(t, r, http.MethodGet, "/api/v1/matches/"+strconv.Itoa(rui)+"/icebreakers", ana, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "I noticed we both like jazz!")

	w = do(t, r, http.MethodGet, "/api/v1/discover", ana, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"candidates":[],"degraded":false}`, w.Body.String())
}

func TestLikeErrors(t *testing.T) {
	r := newTestEngine()
	ana := createProfile(t, r, map[string]any{
		"display_name": "Ana", "age": 28, "gender": "F", "gender_preference": "M",
	})

	w := do(t, r, http.MethodPost, "/api/v1/likes", ana, map[string]any{"liked_id": ana})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/likes", ana, map[string]any{"liked_id": 404})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/likes", ana, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/matches", 999, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileRoutes(t *testing.T) {
	r := newTestEngine()
	ana := createProfile(t, r, map[string]any{
		"display_name": "Ana", "age": 28, "gender": "F", "gender_preference": "M",
	})

	w := do(t, r, http.MethodGet, "/api/v1/profiles/me", ana, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"display_name":"Ana"`)

	w = do(t, r, http.MethodPut, "/api/v1/profiles/me", ana, map[string]any{"location": "Porto"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"location":"Porto"`)

	w = do(t, r, http.MethodPost, "/api/v1/profiles/me/activity", ana, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/profiles/"+strconv.Itoa(ana), ana, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/profiles/77", ana, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/profiles/abc", ana, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/discover/nearby", ana, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"candidates":[]}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/v1/discover/interests", ana, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"profiles":[]}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/v1/discover/location", ana, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"profiles":[]}`, w.Body.String())
}

func TestMessagingFlow(t *testing.T) {
	r := newTestEngine()
	ana := createProfile(t, r, map[string]any{
		"display_name": "Ana", "age": 28, "gender": "F", "gender_preference": "M",
	})
	rui := createProfile(t, r, map[string]any{
		"display_name": "Rui", "age": 30, "gender": "M", "gender_preference": "F",
	})

	w := do(t, r, http.MethodPost, "/api/v1/messages", ana, map[string]any{"receiver_id": rui, "content": "hi"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/api/v1/likes", ana, map[string]any{"liked_id": rui}).Code)
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/api/v1/likes", rui, map[string]any{"liked_id": ana}).Code)

	w = do(t, r, http.MethodPost, "/api/v1/messages", ana, map[string]any{"receiver_id": rui, "content": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/messages", ana, map[string]any{"receiver_id": 404, "content": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/messages", ana, map[string]any{"receiver_id": rui, "content": " hi Rui "})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"content":"hi Rui"`)
	assert.Contains(t, w.Body.String(), `"read":false`)

	w = do(t, r, http.MethodGet, "/api/v1/conversations", rui, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var inbox struct {
		Conversations []struct {
			User struct {
				ID int `json:"id"`
			} `json:"user"`
			LastMessage struct {
				Content string `json:"content"`
			} `json:"last_message"`
		} `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inbox))
	require.Len(t, inbox.Conversations, 1)
	assert.Equal(t, ana, inbox.Conversations[0].User.ID)
	assert.Equal(t, "hi Rui", inbox.Conversations[0].LastMessage.Content)

	w = do(t, r, http.MethodGet, "/api/v1/messages/"+strconv.Itoa(ana), rui, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"read":false`)

	w = do(t, r, http.MethodGet, "/api/v1/messages/"+strconv.Itoa(ana), rui, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"read":true`)

	w = do(t, r, http.MethodGet, "/api/v1/messages/999", rui, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
