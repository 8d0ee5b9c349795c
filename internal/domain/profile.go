package domain

import (
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	MinAge = 18

	DefaultAgeRangeMin = 18
	DefaultAgeRangeMax = 100
	DefaultMaxDistance = 50
)

type Profile struct {
	ID               int        `json:"id" db:"id"`
	DisplayName      string     `json:"display_name" db:"display_name" validate:"required,max=100"`
	Age              int        `json:"age" db:"age" validate:"gte=18"`
	Gender           string     `json:"gender" db:"gender" validate:"required"`
	GenderPreference string     `json:"gender_preference" db:"gender_preference" validate:"required"`
	Bio              *string    `json:"bio" db:"bio"`
	Location         *string    `json:"location" db:"location"`
	LocationLat      *float64   `json:"location_lat" db:"location_lat"`
	LocationLon      *float64   `json:"location_lon" db:"location_lon"`
	Interests        []string   `json:"interests" db:"interests"`
	AgeRangeMin      int        `json:"age_range_min" db:"age_range_min" validate:"gte=18"`
	AgeRangeMax      int        `json:"age_range_max" db:"age_range_max" validate:"gtefield=AgeRangeMin"`
	MaxDistanceKm    int        `json:"max_distance_km" db:"max_distance_km" validate:"gte=0"`
	IsPremium        bool       `json:"is_premium" db:"is_premium"`
	PremiumUntil     *time.Time `json:"premium_until,omitempty" db:"premium_until"`
	LastActiveAt     time.Time  `json:"last_active_at" db:"last_active_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

var validate = validator.New()

// Validate checks the registration invariants. A failure wraps ErrInvalidInput.
func (p *Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	if strings.TrimSpace(p.DisplayName) == "" {
		return &ValidationError{Reason: "display name is blank"}
	}
	if p.LocationLat != nil || p.LocationLon != nil {
		if _, _, ok := p.Coordinates(); !ok {
			return &ValidationError{Reason: "coordinates must be a finite lat/lon pair"}
		}
	}
	return nil
}

// Coordinates returns the profile position when both values are present and sane.
func (p *Profile) Coordinates() (lat, lon float64, ok bool) {
	if p.LocationLat == nil || p.LocationLon == nil {
		return 0, 0, false
	}
	lat, lon = *p.LocationLat, *p.LocationLon
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}

// LocationLabel returns the free-text location or "" when unset.
func (p *Profile) LocationLabel() string {
	if p.Location == nil {
		return ""
	}
	return *p.Location
}

// SearchRadiusKm falls back to DefaultMaxDistance when unset.
func (p *Profile) SearchRadiusKm() int {
	if p.MaxDistanceKm <= 0 {
		return DefaultMaxDistance
	}
	return p.MaxDistanceKm
}

// AcceptsAge reports whether age lies inside the profile's accepted range.
func (p *Profile) AcceptsAge(age int) bool {
	return age >= p.AgeRangeMin && age <= p.AgeRangeMax
}

// MutuallyEligible is the coarse reciprocal gender/age filter.
func (p *Profile) MutuallyEligible(c *Profile) bool {
	return p.ID != c.ID &&
		p.GenderPreference == c.Gender &&
		c.GenderPreference == p.Gender &&
		p.AcceptsAge(c.Age) &&
		c.AcceptsAge(p.Age)
}

// HasInterest is an exact, case-sensitive tag lookup.
func (p *Profile) HasInterest(tag string) bool {
	for _, t := range p.Interests {
		if t == tag {
			return true
		}
	}
	return false
}
