package repository

import (
	"context"

	"github.com/gdugdh24/kindred-backend/internal/domain"
)

// BoundingBox is an inclusive lat/lon rectangle used as a radius prefilter.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// ProfileRepository is the profile directory. Lookups that find nothing
// return domain.ErrProfileNotFound; timeouts surface as domain.ErrTransientStore.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id int) (*domain.Profile, error)
	GetByIDs(ctx context.Context, ids []int) (map[int]*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
	TouchLastActive(ctx context.Context, id int) error

	// QueryEligible applies the reciprocal gender and age-range filter and
	// excludes the requester. Rows are not score ordered.
	QueryEligible(ctx context.Context, requester *domain.Profile, limit int) ([]*domain.Profile, error)
	// QueryEligibleLoose is the degraded fallback: the requester's own
	// gender preference and age range only, no reciprocal check.
	QueryEligibleLoose(ctx context.Context, requester *domain.Profile, limit int) ([]*domain.Profile, error)
	QueryByInterestOverlap(ctx context.Context, interests []string, excludeID, limit int) ([]*domain.Profile, error)
	QueryByLocationLabel(ctx context.Context, label string, excludeID, limit int) ([]*domain.Profile, error)
	QueryWithinBox(ctx context.Context, box BoundingBox, excludeID, limit int) ([]*domain.Profile, error)
}
