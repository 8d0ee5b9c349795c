package swipe

import (
	"context"
	"fmt"
	"time"

	"github.com/gdugdh24/kindred-backend/internal/domain"
	"github.com/gdugdh24/kindred-backend/internal/repository"
	"go.uber.org/zap"
)

// EventPublisher delivers match events to whatever notifies the two users.
type EventPublisher interface {
	PublishMatch(ctx context.Context, event domain.MatchEvent) error
}

// CacheInvalidator drops cached candidate lists for a requester.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, requesterID int) error
}

type IcebreakerGenerator interface {
	GenerateIcebreakers(ctx context.Context, user1Interests, user2Interests []string) ([]string, error)
}

type SwipeUseCase struct {
	profileRepo repository.ProfileRepository
	likeRepo    repository.LikeRepository
	publisher   EventPublisher
	cache       CacheInvalidator
	icebreakers IcebreakerGenerator
	logger      *zap.Logger
	now         func() time.Time
}

func NewSwipeUseCase(
	profileRepo repository.ProfileRepository,
	likeRepo repository.LikeRepository,
	publisher EventPublisher,
	cache CacheInvalidator,
	icebreakers IcebreakerGenerator,
	logger *zap.Logger,
) *SwipeUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SwipeUseCase{
		profileRepo: profileRepo,
		likeRepo:    likeRepo,
		publisher:   publisher,
		cache:       cache,
		icebreakers: icebreakers,
		logger:      logger,
		now:         time.Now,
	}
}

// RecordLike persists likerID -> likedID and reports whether the reverse edge
// already existed. The reverse read runs after the insert is committed, so of
// two concurrent opposite likes at least one observes the other.
func (uc *SwipeUseCase) RecordLike(ctx context.Context, likerID, likedID int) (*domain.LikeResult, error) {
	if likerID == likedID {
		return nil, &domain.ValidationError{Reason: "cannot like own profile"}
	}

	if _, err := uc.profileRepo.GetByID(ctx, likerID); err != nil {
		return nil, err
	}
	liked, err := uc.profileRepo.GetByID(ctx, likedID)
	if err != nil {
		return nil, err
	}

	like, err := uc.likeRepo.CreateEdge(ctx, likerID, likedID)
	if err != nil {
		return nil, err
	}
	uc.invalidateCandidates(ctx, likerID)

	isMutual, err := uc.likeRepo.HasEdge(ctx, likedID, likerID)
	if err != nil {
		// The edge is stored; GetMatches will still surface the pair.
		return nil, fmt.Errorf("check reverse like: %w", err)
	}

	result := &domain.LikeResult{
		Like:        like,
		EdgeCreated: true,
		IsMatch:     isMutual,
	}
	if !isMutual {
		return result, nil
	}

	result.MatchedProfile = liked
	uc.logger.Info("match created", zap.Int("user_id", likerID), zap.Int("matched_user_id", likedID))

	if uc.publisher != nil {
		event := domain.MatchEvent{
			UserID:        likerID,
			MatchedUserID: likedID,
			MatchedAt:     uc.now().UTC(),
		}
		if err := uc.publisher.PublishMatch(ctx, event); err != nil {
			uc.logger.Error("publish match event failed",
				zap.Int("user_id", likerID),
				zap.Int("matched_user_id", likedID),
				zap.Error(err),
			)
		}
	}

	return result, nil
}

// GetMatches derives the mutual pairs for userID from the edge set.
func (uc *SwipeUseCase) GetMatches(ctx context.Context, userID int) ([]*domain.Profile, error) {
	if _, err := uc.profileRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	outgoing, err := uc.likeRepo.EdgesFrom(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load outgoing likes: %w", err)
	}
	incoming, err := uc.likeRepo.EdgesTo(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load incoming likes: %w", err)
	}

	likedMe := make(map[int]struct{}, len(incoming))
	for _, e := range incoming {
		likedMe[e.LikerID] = struct{}{}
	}

	seen := make(map[int]struct{}, len(outgoing))
	ids := make([]int, 0, len(outgoing))
	for _, e := range outgoing {
		other := e.LikedID
		if other == userID {
			continue
		}
		if _, ok := likedMe[other]; !ok {
			continue
		}
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}
		ids = append(ids, other)
	}

	return repository.NewProfileLoader(uc.profileRepo).LoadMany(ctx, ids)
}

// IsMatched reports whether both directed edges between the two profiles
// exist.
func (uc *SwipeUseCase) IsMatched(ctx context.Context, userID, otherID int) (bool, error) {
	forward, err := uc.likeRepo.HasEdge(ctx, userID, otherID)
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	if !forward {
		return false, nil
	}
	reverse, err := uc.likeRepo.HasEdge(ctx, otherID, userID)
	if err != nil {
		return false, fmt.Errorf("check reverse like: %w", err)
	}
	return reverse, nil
}

// LikesReceived lists profiles that liked userID and were not liked back.
func (uc *SwipeUseCase) LikesReceived(ctx context.Context, userID int) ([]*domain.Profile, error) {
	if _, err := uc.profileRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	incoming, err := uc.likeRepo.EdgesTo(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load incoming likes: %w", err)
	}
	outgoing, err := uc.likeRepo.EdgesFrom(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load outgoing likes: %w", err)
	}

	likedBack := make(map[int]struct{}, len(outgoing))
	for _, e := range outgoing {
		likedBack[e.LikedID] = struct{}{}
	}

	ids := make([]int, 0, len(incoming))
	for _, e := range incoming {
		if _, ok := likedBack[e.LikerID]; ok || e.LikerID == userID {
			continue
		}
		ids = append(ids, e.LikerID)
	}

	return repository.NewProfileLoader(uc.profileRepo).LoadMany(ctx, ids)
}

func (uc *SwipeUseCase) invalidateCandidates(ctx context.Context, requesterID int) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, requesterID); err != nil {
		uc.logger.Warn("candidate cache invalidation failed", zap.Int("requester_id", requesterID), zap.Error(err))
	}
}
