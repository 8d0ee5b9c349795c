package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gdugdh24/kindred-backend/internal/domain"
)

type edgeKey struct {
	from, to int
}

// LikeRepository is a mutex-guarded ledger. The existence check and the
// insert happen under one lock, which gives the same guarantee as a unique
// index on (liker_id, liked_id).
type LikeRepository struct {
	mu     sync.RWMutex
	edges  map[edgeKey]*domain.Like
	nextID int
	now    func() time.Time
}

func NewLikeRepository() *LikeRepository {
	return &LikeRepository{
		edges:  make(map[edgeKey]*domain.Like),
		nextID: 1,
		now:    time.Now,
	}
}

func (r *LikeRepository) HasEdge(_ context.Context, from, to int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.edges[edgeKey{from, to}]
	return ok, nil
}

func (r *LikeRepository) CreateEdge(_ context.Context, from, to int) (*domain.Like, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := edgeKey{from, to}
	if _, ok := r.edges[key]; ok {
		return nil, domain.ErrAlreadyLiked
	}

	like := &domain.Like{
		ID:        r.nextID,
		LikerID:   from,
		LikedID:   to,
		CreatedAt: r.now().UTC(),
	}
	r.nextID++
	r.edges[key] = like

	out := *like
	return &out, nil
}

func (r *LikeRepository) EdgesFrom(_ context.Context, userID int) ([]*domain.Like, error) {
	return r.collect(func(k edgeKey) bool { return k.from == userID }), nil
}

func (r *LikeRepository) EdgesTo(_ context.Context, userID int) ([]*domain.Like, error) {
	return r.collect(func(k edgeKey) bool { return k.to == userID }), nil
}

func (r *LikeRepository) collect(match func(edgeKey) bool) []*domain.Like {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Like, 0)
	for k, like := range r.edges {
		if match(k) {
			c := *like
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
