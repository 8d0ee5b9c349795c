package repository

import (
	"context"

	"github.com/gdugdh24/kindred-backend/internal/domain"
)

// LikeRepository is the affinity ledger. CreateEdge must be atomic with
// respect to the (liker, liked) pair and return domain.ErrAlreadyLiked when
// the edge exists.
type LikeRepository interface {
	HasEdge(ctx context.Context, from, to int) (bool, error)
	CreateEdge(ctx context.Context, from, to int) (*domain.Like, error)
	EdgesFrom(ctx context.Context, userID int) ([]*domain.Like, error)
	EdgesTo(ctx context.Context, userID int) ([]*domain.Like, error)
}
