package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gdugdh24/kindred-backend/internal/domain"
	"github.com/gdugdh24/kindred-backend/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const profileColumns = `
	id, display_name, age, gender, gender_preference, bio, location,
	location_lat, location_lon, interests, age_range_min, age_range_max,
	max_distance_km, is_premium, premium_until, last_active_at, created_at, updated_at`

type profileRow struct {
	ID               int            `db:"id"`
	DisplayName      string         `db:"display_name"`
	Age              int            `db:"age"`
	Gender           string         `db:"gender"`
	GenderPreference string         `db:"gender_preference"`
	Bio              *string        `db:"bio"`
	Location         *string        `db:"location"`
	LocationLat      *float64       `db:"location_lat"`
	LocationLon      *float64       `db:"location_lon"`
	Interests        pq.StringArray `db:"interests"`
	AgeRangeMin      int            `db:"age_range_min"`
	AgeRangeMax      int            `db:"age_range_max"`
	MaxDistanceKm    int            `db:"max_distance_km"`
	IsPremium        bool           `db:"is_premium"`
	PremiumUntil     *time.Time     `db:"premium_until"`
	LastActiveAt     time.Time      `db:"last_active_at"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (r profileRow) toDomain() *domain.Profile {
	interests := []string(r.Interests)
	if interests == nil {
		interests = []string{}
	}
	return &domain.Profile{
		ID:               r.ID,
		DisplayName:      r.DisplayName,
		Age:              r.Age,
		Gender:           r.Gender,
		GenderPreference: r.GenderPreference,
		Bio:              r.Bio,
		Location:         r.Location,
		LocationLat:      r.LocationLat,
		LocationLon:      r.LocationLon,
		Interests:        interests,
		AgeRangeMin:      r.AgeRangeMin,
		AgeRangeMax:      r.AgeRangeMax,
		MaxDistanceKm:    r.MaxDistanceKm,
		IsPremium:        r.IsPremium,
		PremiumUntil:     r.PremiumUntil,
		LastActiveAt:     r.LastActiveAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

type profileRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewProfileRepository returns the postgres directory. Every call runs under
// its own timeout so a stuck connection surfaces as domain.ErrTransientStore.
func NewProfileRepository(db *sqlx.DB, timeout time.Duration) repository.ProfileRepository {
	return &profileRepository{db: db, timeout: timeout}
}

func (r *profileRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO profiles (
			display_name, age, gender, gender_preference, bio, location,
			location_lat, location_lon, interests, age_range_min, age_range_max,
			max_distance_km, is_premium, premium_until
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, last_active_at, created_at, updated_at
	`
	err := r.db.QueryRowContext(
		ctx, query,
		profile.DisplayName, profile.Age, profile.Gender, profile.GenderPreference,
		profile.Bio, profile.Location, profile.LocationLat, profile.LocationLon,
		pq.Array(profile.Interests), profile.AgeRangeMin, profile.AgeRangeMax,
		profile.MaxDistanceKm, profile.IsPremium, profile.PremiumUntil,
	).Scan(&profile.ID, &profile.LastActiveAt, &profile.CreatedAt, &profile.UpdatedAt)
	return classify("create profile", err)
}

func (r *profileRepository) GetByID(ctx context.Context, id int) (*domain.Profile, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var row profileRow
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, classify("get profile", err)
	}
	return row.toDomain(), nil
}

func (r *profileRepository) GetByIDs(ctx context.Context, ids []int) (map[int]*domain.Profile, error) {
	out := make(map[int]*domain.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var rows []profileRow
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = ANY($1)`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, classify("get profiles", err)
	}
	for _, row := range rows {
		out[row.ID] = row.toDomain()
	}
	return out, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE profiles
		SET display_name = $1, gender = $2, gender_preference = $3, bio = $4,
		    location = $5, location_lat = $6, location_lon = $7, interests = $8,
		    age_range_min = $9, age_range_max = $10, max_distance_km = $11,
		    is_premium = $12, premium_until = $13,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $14
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(
		ctx, query,
		profile.DisplayName, profile.Gender, profile.GenderPreference, profile.Bio,
		profile.Location, profile.LocationLat, profile.LocationLon, pq.Array(profile.Interests),
		profile.AgeRangeMin, profile.AgeRangeMax, profile.MaxDistanceKm,
		profile.IsPremium, profile.PremiumUntil,
		profile.ID,
	).Scan(&profile.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrProfileNotFound
	}
	return classify("update profile", err)
}

func (r *profileRepository) TouchLastActive(ctx context.Context, id int) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `UPDATE profiles SET last_active_at = CURRENT_TIMESTAMP WHERE id = $1`, id)
	if err != nil {
		return classify("touch profile", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return classify("touch profile", err)
	}
	if rows == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *profileRepository) QueryEligible(ctx context.Context, requester *domain.Profile, limit int) ([]*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles
		WHERE id <> $1
		  AND gender = $2
		  AND gender_preference = $3
		  AND age BETWEEN $4 AND $5
		  AND $6 BETWEEN age_range_min AND age_range_max
		ORDER BY id
		LIMIT $7`
	return r.selectProfiles(ctx, "query eligible", query,
		requester.ID, requester.GenderPreference, requester.Gender,
		requester.AgeRangeMin, requester.AgeRangeMax, requester.Age, limit)
}

func (r *profileRepository) QueryEligibleLoose(ctx context.Context, requester *domain.Profile, limit int) ([]*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles
		WHERE id <> $1
		  AND gender = $2
		  AND age BETWEEN $3 AND $4
		ORDER BY id
		LIMIT $5`
	return r.selectProfiles(ctx, "query eligible loose", query,
		requester.ID, requester.GenderPreference, requester.AgeRangeMin, requester.AgeRangeMax, limit)
}

func (r *profileRepository) QueryByInterestOverlap(ctx context.Context, interests []string, excludeID, limit int) ([]*domain.Profile, error) {
	if len(interests) == 0 {
		return []*domain.Profile{}, nil
	}
	query := `SELECT ` + profileColumns + ` FROM profiles
		WHERE id <> $1 AND interests && $2
		ORDER BY id
		LIMIT $3`
	return r.selectProfiles(ctx, "query by interests", query, excludeID, pq.Array(interests), limit)
}

func (r *profileRepository) QueryByLocationLabel(ctx context.Context, label string, excludeID, limit int) ([]*domain.Profile, error) {
	if label == "" {
		return []*domain.Profile{}, nil
	}
	query := `SELECT ` + profileColumns + ` FROM profiles
		WHERE id <> $1 AND location = $2
		ORDER BY id
		LIMIT $3`
	return r.selectProfiles(ctx, "query by location", query, excludeID, label, limit)
}

func (r *profileRepository) QueryWithinBox(ctx context.Context, box repository.BoundingBox, excludeID, limit int) ([]*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles
		WHERE id <> $1
		  AND location_lat BETWEEN $2 AND $3
		  AND location_lon BETWEEN $4 AND $5
		ORDER BY id
		LIMIT $6`
	return r.selectProfiles(ctx, "query within box", query,
		excludeID, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon, limit)
}

func (r *profileRepository) selectProfiles(ctx context.Context, op, query string, args ...interface{}) ([]*domain.Profile, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var rows []profileRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, classify(op, err)
	}

	profiles := make([]*domain.Profile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, row.toDomain())
	}
	return profiles, nil
}
