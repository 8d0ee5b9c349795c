package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gdugdh24/kindred-backend/internal/domain"
	"github.com/gdugdh24/kindred-backend/internal/repository"
)

// ProfileRepository keeps profiles in process memory. Query results follow
// ascending id order, which stands in for the directory's natural order.
type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[int]*domain.Profile
	nextID   int
	now      func() time.Time
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{
		profiles: make(map[int]*domain.Profile),
		nextID:   1,
		now:      time.Now,
	}
}

func (r *ProfileRepository) Create(_ context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	profile.ID = r.nextID
	r.nextID++
	profile.CreatedAt = now
	profile.UpdatedAt = now
	if profile.LastActiveAt.IsZero() {
		profile.LastActiveAt = now
	}
	r.profiles[profile.ID] = cloneProfile(profile)
	return nil
}

func (r *ProfileRepository) GetByID(_ context.Context, id int) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return cloneProfile(p), nil
}

func (r *ProfileRepository) GetByIDs(_ context.Context, ids []int) (map[int]*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[int]*domain.Profile, len(ids))
	for _, id := range ids {
		if p, ok := r.profiles[id]; ok {
			out[id] = cloneProfile(p)
		}
	}
	return out, nil
}

func (r *ProfileRepository) Update(_ context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.profiles[profile.ID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	profile.CreatedAt = existing.CreatedAt
	profile.UpdatedAt = r.now().UTC()
	r.profiles[profile.ID] = cloneProfile(profile)
	return nil
}

func (r *ProfileRepository) TouchLastActive(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[id]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.LastActiveAt = r.now().UTC()
	return nil
}

func (r *ProfileRepository) QueryEligible(_ context.Context, requester *domain.Profile, limit int) ([]*domain.Profile, error) {
	return r.scan(limit, requester.MutuallyEligible), nil
}

func (r *ProfileRepository) QueryEligibleLoose(_ context.Context, requester *domain.Profile, limit int) ([]*domain.Profile, error) {
	return r.scan(limit, func(c *domain.Profile) bool {
		return c.ID != requester.ID &&
			c.Gender == requester.GenderPreference &&
			requester.AcceptsAge(c.Age)
	}), nil
}

func (r *ProfileRepository) QueryByInterestOverlap(_ context.Context, interests []string, excludeID, limit int) ([]*domain.Profile, error) {
	if len(interests) == 0 {
		return []*domain.Profile{}, nil
	}
	return r.scan(limit, func(c *domain.Profile) bool {
		if c.ID == excludeID {
			return false
		}
		for _, tag := range interests {
			if c.HasInterest(tag) {
				return true
			}
		}
		return false
	}), nil
}

func (r *ProfileRepository) QueryByLocationLabel(_ context.Context, label string, excludeID, limit int) ([]*domain.Profile, error) {
	if label == "" {
		return []*domain.Profile{}, nil
	}
	return r.scan(limit, func(c *domain.Profile) bool {
		return c.ID != excludeID && c.LocationLabel() == label
	}), nil
}

func (r *ProfileRepository) QueryWithinBox(_ context.Context, box repository.BoundingBox, excludeID, limit int) ([]*domain.Profile, error) {
	return r.scan(limit, func(c *domain.Profile) bool {
		if c.ID == excludeID {
			return false
		}
		lat, lon, ok := c.Coordinates()
		if !ok {
			return false
		}
		return lat >= box.MinLat && lat <= box.MaxLat && lon >= box.MinLon && lon <= box.MaxLon
	}), nil
}

func (r *ProfileRepository) scan(limit int, keep func(*domain.Profile) bool) []*domain.Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]*domain.Profile, 0)
	for _, id := range ids {
		if limit > 0 && len(out) >= limit {
			break
		}
		p := r.profiles[id]
		if keep(p) {
			out = append(out, cloneProfile(p))
		}
	}
	return out
}

func cloneProfile(p *domain.Profile) *domain.Profile {
	c := *p
	if p.Interests != nil {
		c.Interests = append([]string(nil), p.Interests...)
	}
	return &c
}
