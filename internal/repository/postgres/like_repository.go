package postgres

import (
	"context"
	"time"

	"github.com/gdugdh24/kindred-backend/internal/domain"
	"github.com/gdugdh24/kindred-backend/internal/repository"
	"github.com/jmoiron/sqlx"
)

type likeRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewLikeRepository returns the postgres ledger. It relies on the
// likes_liker_liked_key unique index to reject duplicate edges.
func NewLikeRepository(db *sqlx.DB, timeout time.Duration) repository.LikeRepository {
	return &likeRepository{db: db, timeout: timeout}
}

func (r *likeRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *likeRepository) HasEdge(ctx context.Context, from, to int) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM likes WHERE liker_id = $1 AND liked_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, from, to); err != nil {
		return false, classify("lookup like", err)
	}
	return exists, nil
}

// CreateEdge commits the insert before returning, so a reverse-edge read
// issued afterwards by any caller observes it.
func (r *likeRepository) CreateEdge(ctx context.Context, from, to int) (*domain.Like, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	like := &domain.Like{LikerID: from, LikedID: to}
	query := `
		INSERT INTO likes (liker_id, liked_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, from, to).Scan(&like.ID, &like.CreatedAt)
	if err != nil {
		switch {
		case hasCode(err, codeUniqueViolation):
			return nil, domain.ErrAlreadyLiked
		case hasCode(err, codeForeignKeyViolation):
			return nil, domain.ErrProfileNotFound
		}
		return nil, classify("create like", err)
	}
	return like, nil
}

func (r *likeRepository) EdgesFrom(ctx context.Context, userID int) ([]*domain.Like, error) {
	query := `
		SELECT id, liker_id, liked_id, created_at
		FROM likes
		WHERE liker_id = $1
		ORDER BY id
	`
	return r.selectLikes(ctx, "likes from", query, userID)
}

func (r *likeRepository) EdgesTo(ctx context.Context, userID int) ([]*domain.Like, error) {
	query := `
		SELECT id, liker_id, liked_id, created_at
		FROM likes
		WHERE liked_id = $1
		ORDER BY id
	`
	return r.selectLikes(ctx, "likes to", query, userID)
}

func (r *likeRepository) selectLikes(ctx context.Context, op, query string, userID int) ([]*domain.Like, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	likes := []*domain.Like{}
	if err := r.db.SelectContext(ctx, &likes, query, userID); err != nil {
		return nil, classify(op, err)
	}
	return likes, nil
}
