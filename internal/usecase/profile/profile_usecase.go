package profile

import (
	"context"
	"fmt"

	"github.com/gdugdh24/kindred-backend/internal/domain"
	"github.com/gdugdh24/kindred-backend/internal/repository"
	"go.uber.org/zap"
)

// CacheInvalidator drops cached candidate lists for a requester.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, requesterID int) error
}

type ProfileUseCase struct {
	profileRepo repository.ProfileRepository
	cache       CacheInvalidator
	logger      *zap.Logger
}

func NewProfileUseCase(profileRepo repository.ProfileRepository, cache CacheInvalidator, logger *zap.Logger) *ProfileUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileUseCase{
		profileRepo: profileRepo,
		cache:       cache,
		logger:      logger,
	}
}

// CreateProfileRequest represents profile registration
type CreateProfileRequest struct {
	DisplayName      string   `json:"display_name" binding:"required,min=2,max=100"`
	Age              int      `json:"age" binding:"required,min=18"`
	Gender           string   `json:"gender" binding:"required"`
	GenderPreference string   `json:"gender_preference" binding:"required"`
	Bio              *string  `json:"bio" binding:"omitempty,max=500"`
	Location         *string  `json:"location" binding:"omitempty,max=100"`
	LocationLat      *float64 `json:"location_lat" binding:"omitempty,min=-90,max=90"`
	LocationLon      *float64 `json:"location_lon" binding:"omitempty,min=-180,max=180"`
	Interests        []string `json:"interests" binding:"omitempty,max=20,dive,min=1,max=50"`
	AgeRangeMin      *int     `json:"age_range_min" binding:"omitempty,min=18"`
	AgeRangeMax      *int     `json:"age_range_max" binding:"omitempty,min=18"`
	MaxDistanceKm    *int     `json:"max_distance_km" binding:"omitempty,min=1,max=1000"`
}

// UpdateProfileRequest represents a profile edit. Age cannot be changed.
type UpdateProfileRequest struct {
	DisplayName      *string   `json:"display_name" binding:"omitempty,min=2,max=100"`
	Gender           *string   `json:"gender" binding:"omitempty,min=1"`
	GenderPreference *string   `json:"gender_preference" binding:"omitempty,min=1"`
	Bio              *string   `json:"bio" binding:"omitempty,max=500"`
	Location         *string   `json:"location" binding:"omitempty,max=100"`
	LocationLat      *float64  `json:"location_lat" binding:"omitempty,min=-90,max=90"`
	LocationLon      *float64  `json:"location_lon" binding:"omitempty,min=-180,max=180"`
	Interests        *[]string `json:"interests" binding:"omitempty,max=20,dive,min=1,max=50"`
	AgeRangeMin      *int      `json:"age_range_min" binding:"omitempty,min=18"`
	AgeRangeMax      *int      `json:"age_range_max" binding:"omitempty,min=18"`
	MaxDistanceKm    *int      `json:"max_distance_km" binding:"omitempty,min=1,max=1000"`
}

// CreateProfile registers a new profile
func (uc *ProfileUseCase) CreateProfile(ctx context.Context, req *CreateProfileRequest) (*domain.Profile, error) {
	profile := &domain.Profile{
		DisplayName:      req.DisplayName,
		Age:              req.Age,
		Gender:           req.Gender,
		GenderPreference: req.GenderPreference,
		Bio:              req.Bio,
		Location:         req.Location,
		LocationLat:      req.LocationLat,
		LocationLon:      req.LocationLon,
		Interests:        dedupe(req.Interests),
		AgeRangeMin:      domain.DefaultAgeRangeMin,
		AgeRangeMax:      domain.DefaultAgeRangeMax,
		MaxDistanceKm:    domain.DefaultMaxDistance,
	}
	if req.AgeRangeMin != nil {
		profile.AgeRangeMin = *req.AgeRangeMin
	}
	if req.AgeRangeMax != nil {
		profile.AgeRangeMax = *req.AgeRangeMax
	}
	if req.MaxDistanceKm != nil {
		profile.MaxDistanceKm = *req.MaxDistanceKm
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	if err := uc.profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	uc.logger.Info("profile created", zap.Int("profile_id", profile.ID))
	return profile, nil
}

// GetProfile returns a profile by id
func (uc *ProfileUseCase) GetProfile(ctx context.Context, id int) (*domain.Profile, error) {
	return uc.profileRepo.GetByID(ctx, id)
}

// UpdateProfile applies the provided fields and re-validates the result
func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, id int, req *UpdateProfileRequest) (*domain.Profile, error) {
	profile, err := uc.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		profile.DisplayName = *req.DisplayName
	}
	if req.Gender != nil {
		profile.Gender = *req.Gender
	}
	if req.GenderPreference != nil {
		profile.GenderPreference = *req.GenderPreference
	}
	if req.Bio != nil {
		profile.Bio = req.Bio
	}
	if req.Location != nil {
		profile.Location = req.Location
	}
	if req.LocationLat != nil {
		profile.LocationLat = req.LocationLat
	}
	if req.LocationLon != nil {
		profile.LocationLon = req.LocationLon
	}
	if req.Interests != nil {
		profile.Interests = dedupe(*req.Interests)
	}
	if req.AgeRangeMin != nil {
		profile.AgeRangeMin = *req.AgeRangeMin
	}
	if req.AgeRangeMax != nil {
		profile.AgeRangeMax = *req.AgeRangeMax
	}
	if req.MaxDistanceKm != nil {
		profile.MaxDistanceKm = *req.MaxDistanceKm
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	// Eligibility and scores of the cached lists depend on every edited field.
	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx, id); err != nil {
			uc.logger.Warn("candidate cache invalidation failed", zap.Int("profile_id", id), zap.Error(err))
		}
	}

	return profile, nil
}

// Touch records that the profile was just active.
func (uc *ProfileUseCase) Touch(ctx context.Context, id int) error {
	return uc.profileRepo.TouchLastActive(ctx, id)
}

// dedupe keeps the first occurrence of each tag, preserving display order.
func dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
