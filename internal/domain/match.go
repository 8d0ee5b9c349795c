package domain

import "time"

// Like is a directed affinity edge. At most one exists per ordered pair.
type Like struct {
	ID        int       `json:"id" db:"id"`
	LikerID   int       `json:"liker_id" db:"liker_id"`
	LikedID   int       `json:"liked_id" db:"liked_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LikeResult is returned by the resolver after a like is persisted.
// MatchedProfile is set only when the like completed a mutual pair.
type LikeResult struct {
	Like           *Like    `json:"like"`
	EdgeCreated    bool     `json:"edge_created"`
	IsMatch        bool     `json:"is_match"`
	MatchedProfile *Profile `json:"matched_profile,omitempty"`
}

// MatchEvent is published once per newly mutual pair, from the side that
// completed it.
type MatchEvent struct {
	UserID        int       `json:"user_id"`
	MatchedUserID int       `json:"matched_user_id"`
	MatchedAt     time.Time `json:"matched_at"`
}

// HasUser mirrors the pair check used by match consumers.
func (e *MatchEvent) HasUser(userID int) bool {
	return e.UserID == userID || e.MatchedUserID == userID
}

// GetOtherUserID returns the counterpart of userID in the pair.
func (e *MatchEvent) GetOtherUserID(userID int) (int, bool) {
	if e.UserID == userID {
		return e.MatchedUserID, true
	}
	if e.MatchedUserID == userID {
		return e.UserID, true
	}
	return 0, false
}

// ScoredCandidate is request-scoped output of candidate selection.
type ScoredCandidate struct {
	Profile *Profile `json:"profile"`
	Score   int      `json:"compatibility_score"`
}
