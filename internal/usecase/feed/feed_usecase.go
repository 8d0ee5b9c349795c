package feed

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/gdugdh24/kindred-backend/internal/domain"
	"github.com/gdugdh24/kindred-backend/internal/repository"
	redisrepo "github.com/gdugdh24/kindred-backend/internal/repository/redis"
	"github.com/gdugdh24/kindred-backend/internal/usecase/matching"
	"go.uber.org/zap"
)

const (
	// overFetchFactor leaves headroom for ranking since the coarse filter
	// is not score ordered.
	overFetchFactor = 2
	// boxFetchFactor covers the corners of the bounding box that fall
	// outside the radius.
	boxFetchFactor = 4
)

// CandidateCache stores ranked lists per requester generation. Entries
// written under an older generation are never read back.
type CandidateCache interface {
	Generation(ctx context.Context, requesterID int) (int64, error)
	Get(ctx context.Context, requesterID int, generation int64, limit int) (*redisrepo.CachedCandidates, bool, error)
	Set(ctx context.Context, requesterID int, generation int64, limit int, value *redisrepo.CachedCandidates) error
}

type Config struct {
	DefaultLimit    int
	AuxLimit        int
	MaxLimit        int
	FallbackEnabled bool
}

type FeedUseCase struct {
	profileRepo repository.ProfileRepository
	likeRepo    repository.LikeRepository
	cache       CandidateCache
	cfg         Config
	logger      *zap.Logger
}

func NewFeedUseCase(
	profileRepo repository.ProfileRepository,
	likeRepo repository.LikeRepository,
	cache CandidateCache,
	cfg Config,
	logger *zap.Logger,
) *FeedUseCase {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 50
	}
	if cfg.AuxLimit <= 0 {
		cfg.AuxLimit = 10
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedUseCase{
		profileRepo: profileRepo,
		likeRepo:    likeRepo,
		cache:       cache,
		cfg:         cfg,
		logger:      logger,
	}
}

// CandidateList is a ranked selection. Degraded is set when the looser
// fallback query produced it.
type CandidateList struct {
	Candidates []domain.ScoredCandidate `json:"candidates"`
	Degraded   bool                     `json:"degraded"`
}

// NearbyCandidate is a radius search hit.
type NearbyCandidate struct {
	Profile    *domain.Profile `json:"profile"`
	DistanceKm float64         `json:"distance_km"`
}

// SelectCandidates returns up to limit mutually eligible profiles the
// requester has not liked yet, best score first and ties by ascending id.
func (uc *FeedUseCase) SelectCandidates(ctx context.Context, requesterID, limit int) (*CandidateList, error) {
	limit, err := uc.resolveLimit(limit, uc.cfg.DefaultLimit)
	if err != nil {
		return nil, err
	}

	// Must be read before the requester and the liked set.
	generation, cacheable := uc.cacheGeneration(ctx, requesterID)

	requester, err := uc.profileRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if cached, ok := uc.readCache(ctx, requesterID, generation, limit); ok {
			return cached, nil
		}
	}

	liked, err := uc.likedSet(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	// Liked rows are dropped after the fetch; widen the window to match.
	fetch := overFetchFactor*limit + len(liked)

	degraded := false
	rows, err := uc.profileRepo.QueryEligible(ctx, requester, fetch)
	if err != nil {
		if !uc.cfg.FallbackEnabled {
			return nil, fmt.Errorf("query eligible candidates: %w", err)
		}
		uc.logger.Warn("primary eligibility query failed, using fallback",
			zap.Int("requester_id", requesterID),
			zap.Error(errors.Join(domain.ErrDegradedSelection, err)),
		)
		rows, err = uc.profileRepo.QueryEligibleLoose(ctx, requester, fetch)
		if err != nil {
			return nil, fmt.Errorf("query fallback candidates: %w", err)
		}
		degraded = true
	}

	candidates := make([]domain.ScoredCandidate, 0, len(rows))
	for _, c := range rows {
		if c.ID == requesterID {
			continue
		}
		if _, ok := liked[c.ID]; ok {
			continue
		}
		candidates = append(candidates, domain.ScoredCandidate{
			Profile: c,
			Score:   matching.Score(requester, c),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Profile.ID < candidates[j].Profile.ID
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	result := &CandidateList{Candidates: candidates, Degraded: degraded}
	if cacheable && !degraded {
		uc.writeCache(ctx, requesterID, generation, limit, result)
	}
	return result, nil
}

// SelectByInterest returns profiles sharing at least one interest tag, in
// directory order. An empty interest list yields an empty result.
func (uc *FeedUseCase) SelectByInterest(ctx context.Context, requesterID, limit int) ([]*domain.Profile, error) {
	limit, err := uc.resolveLimit(limit, uc.cfg.AuxLimit)
	if err != nil {
		return nil, err
	}

	requester, err := uc.profileRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if len(requester.Interests) == 0 {
		return []*domain.Profile{}, nil
	}

	liked, err := uc.likedSet(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	rows, err := uc.profileRepo.QueryByInterestOverlap(ctx, requester.Interests, requesterID, limit+len(liked))
	if err != nil {
		return nil, fmt.Errorf("query by interests: %w", err)
	}
	return excludeLiked(rows, requesterID, liked, limit), nil
}

// SelectByLocation matches on the exact location label. Coordinates are
// not consulted here; SelectNearby does the radius search.
func (uc *FeedUseCase) SelectByLocation(ctx context.Context, requesterID, limit int) ([]*domain.Profile, error) {
	limit, err := uc.resolveLimit(limit, uc.cfg.AuxLimit)
	if err != nil {
		return nil, err
	}

	requester, err := uc.profileRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	label := requester.LocationLabel()
	if label == "" {
		return []*domain.Profile{}, nil
	}

	liked, err := uc.likedSet(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	rows, err := uc.profileRepo.QueryByLocationLabel(ctx, label, requesterID, limit+len(liked))
	if err != nil {
		return nil, fmt.Errorf("query by location: %w", err)
	}
	return excludeLiked(rows, requesterID, liked, limit), nil
}

// SelectNearby runs a bounding-box prefilter and keeps candidates within both
// users' search radius, nearest first.
func (uc *FeedUseCase) SelectNearby(ctx context.Context, requesterID, limit int) ([]NearbyCandidate, error) {
	limit, err := uc.resolveLimit(limit, uc.cfg.AuxLimit)
	if err != nil {
		return nil, err
	}

	requester, err := uc.profileRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	lat, lon, ok := requester.Coordinates()
	if !ok {
		return []NearbyCandidate{}, nil
	}

	liked, err := uc.likedSet(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	radius := float64(requester.SearchRadiusKm())
	box := matching.BoundingBox(lat, lon, radius)
	rows, err := uc.profileRepo.QueryWithinBox(ctx, box, requesterID, boxFetchFactor*limit+len(liked))
	if err != nil {
		return nil, fmt.Errorf("query within radius: %w", err)
	}

	nearby := make([]NearbyCandidate, 0, len(rows))
	for _, c := range rows {
		if c.ID == requesterID {
			continue
		}
		if _, ok := liked[c.ID]; ok {
			continue
		}
		cLat, cLon, ok := c.Coordinates()
		if !ok {
			continue
		}
		d := matching.HaversineKM(lat, lon, cLat, cLon)
		if d > float64(min(requester.SearchRadiusKm(), c.SearchRadiusKm())) {
			continue
		}
		nearby = append(nearby, NearbyCandidate{Profile: c, DistanceKm: d})
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		if nearby[i].DistanceKm != nearby[j].DistanceKm {
			return nearby[i].DistanceKm < nearby[j].DistanceKm
		}
		return nearby[i].Profile.ID < nearby[j].Profile.ID
	})
	if len(nearby) > limit {
		nearby = nearby[:limit]
	}
	return nearby, nil
}

func (uc *FeedUseCase) resolveLimit(limit, fallback int) (int, error) {
	if limit == 0 {
		return fallback, nil
	}
	if limit < 0 || limit > uc.cfg.MaxLimit {
		return 0, &domain.ValidationError{Reason: fmt.Sprintf("limit must be between 1 and %d", uc.cfg.MaxLimit)}
	}
	return limit, nil
}

func (uc *FeedUseCase) likedSet(ctx context.Context, requesterID int) (map[int]struct{}, error) {
	edges, err := uc.likeRepo.EdgesFrom(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("load likes: %w", err)
	}
	liked := make(map[int]struct{}, len(edges))
	for _, e := range edges {
		liked[e.LikedID] = struct{}{}
	}
	return liked, nil
}

func (uc *FeedUseCase) cacheGeneration(ctx context.Context, requesterID int) (int64, bool) {
	if uc.cache == nil {
		return 0, false
	}
	generation, err := uc.cache.Generation(ctx, requesterID)
	if err != nil {
		uc.logger.Warn("candidate cache generation read failed", zap.Int("requester_id", requesterID), zap.Error(err))
		return 0, false
	}
	return generation, true
}

func (uc *FeedUseCase) readCache(ctx context.Context, requesterID int, generation int64, limit int) (*CandidateList, bool) {
	cached, ok, err := uc.cache.Get(ctx, requesterID, generation, limit)
	if err != nil {
		uc.logger.Warn("candidate cache read failed", zap.Int("requester_id", requesterID), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return &CandidateList{Candidates: cached.Candidates, Degraded: cached.Degraded}, true
}

func (uc *FeedUseCase) writeCache(ctx context.Context, requesterID int, generation int64, limit int, list *CandidateList) {
	err := uc.cache.Set(ctx, requesterID, generation, limit, &redisrepo.CachedCandidates{
		Candidates: list.Candidates,
		Degraded:   list.Degraded,
	})
	if err != nil {
		uc.logger.Warn("candidate cache write failed", zap.Int("requester_id", requesterID), zap.Error(err))
	}
}

func excludeLiked(rows []*domain.Profile, requesterID int, liked map[int]struct{}, limit int) []*domain.Profile {
	out := make([]*domain.Profile, 0, min(len(rows), limit))
	for _, p := range rows {
		if len(out) >= limit {
			break
		}
		if p.ID == requesterID {
			continue
		}
		if _, ok := liked[p.ID]; ok {
			continue
		}
		out = append(out, p)
	}
	return out
}
