package profile

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gdugdh24/kindred-backend/internal/domain"
	"github.com/gdugdh24/kindred-backend/internal/repository/memory"
	redisrepo "github.com/gdugdh24/kindred-backend/internal/repository/redis"
	"github.com/gdugdh24/kindred-backend/internal/usecase/feed"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCreateProfileDefaults(t *testing.T) {
	uc := NewProfileUseCase(memory.NewProfileRepository(), nil, nil)

	p, err := uc.CreateProfile(context.Background(), &CreateProfileRequest{
		DisplayName:      "Ana",
		Age:              27,
		Gender:           "F",
		GenderPreference: "M",
		Interests:        []string{"jazz", "chess", "jazz"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, p.ID)
	assert.Equal(t, domain.DefaultAgeRangeMin, p.AgeRangeMin)
	assert.Equal(t, domain.DefaultAgeRangeMax, p.AgeRangeMax)
	assert.Equal(t, domain.DefaultMaxDistance, p.MaxDistanceKm)
	assert.Equal(t, []string{"jazz", "chess"}, p.Interests)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestCreateProfileRejectsInvalid(t *testing.T) {
	uc := NewProfileUseCase(memory.NewProfileRepository(), nil, nil)

	tests := []struct {
		name string
		req  CreateProfileRequest
	}{
		{"minor", CreateProfileRequest{DisplayName: "Kid", Age: 16, Gender: "F", GenderPreference: "M"}},
		{"inverted range", CreateProfileRequest{DisplayName: "Ana", Age: 30, Gender: "F", GenderPreference: "M",
			AgeRangeMin: ptr(40), AgeRangeMax: ptr(30)}},
		{"half coordinates", CreateProfileRequest{DisplayName: "Ana", Age: 30, Gender: "F", GenderPreference: "M",
			LocationLat: ptr(10.0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.CreateProfile(context.Background(), &tt.req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	uc := NewProfileUseCase(memory.NewProfileRepository(), nil, nil)
	ctx := context.Background()

	created, err := uc.CreateProfile(ctx, &CreateProfileRequest{
		DisplayName: "Ana", Age: 27, Gender: "F", GenderPreference: "M",
	})
	require.NoError(t, err)

	updated, err := uc.UpdateProfile(ctx, created.ID, &UpdateProfileRequest{
		Location:    ptr("Lisbon"),
		Interests:   &[]string{"surf"},
		AgeRangeMax: ptr(40),
	})
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", updated.LocationLabel())
	assert.Equal(t, []string{"surf"}, updated.Interests)
	assert.Equal(t, 40, updated.AgeRangeMax)
	assert.Equal(t, 27, updated.Age)

	_, err = uc.UpdateProfile(ctx, created.ID, &UpdateProfileRequest{AgeRangeMin: ptr(50)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	stored, err := uc.GetProfile(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 18, stored.AgeRangeMin, "rejected update is not persisted")

	_, err = uc.UpdateProfile(ctx, 99, &UpdateProfileRequest{})
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestTouch(t *testing.T) {
	uc := NewProfileUseCase(memory.NewProfileRepository(), nil, nil)
	ctx := context.Background()

	created, err := uc.CreateProfile(ctx, &CreateProfileRequest{
		DisplayName: "Ana", Age: 27, Gender: "F", GenderPreference: "M",
	})
	require.NoError(t, err)

	assert.NoError(t, uc.Touch(ctx, created.ID))
	assert.ErrorIs(t, uc.Touch(ctx, 99), domain.ErrProfileNotFound)
}

func TestUpdateProfileRefreshesCandidates(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := redisrepo.NewCandidateCache(client, time.Minute)

	profiles := memory.NewProfileRepository()
	uc := NewProfileUseCase(profiles, cache, nil)
	feedUC := feed.NewFeedUseCase(profiles, memory.NewLikeRepository(), cache, feed.Config{}, nil)
	ctx := context.Background()

	for _, req := range []CreateProfileRequest{
		{DisplayName: "Rui", Age: 30, Gender: "M", GenderPreference: "F"},
		{DisplayName: "Ana", Age: 30, Gender: "F", GenderPreference: "M"},
		{DisplayName: "Tom", Age: 30, Gender: "M", GenderPreference: "M"},
	} {
		_, err := uc.CreateProfile(ctx, &req)
		require.NoError(t, err)
	}

	list, err := feedUC.SelectCandidates(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, list.Candidates, 1)
	assert.Equal(t, 2, list.Candidates[0].Profile.ID)

	_, err = uc.UpdateProfile(ctx, 1, &UpdateProfileRequest{GenderPreference: ptr("M")})
	require.NoError(t, err)

	list, err = feedUC.SelectCandidates(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, list.Candidates, 1)
	assert.Equal(t, 3, list.Candidates[0].Profile.ID)
}

type countingInvalidator struct {
	ids []int
}

func (c *countingInvalidator) Invalidate(_ context.Context, requesterID int) error {
	c.ids = append(c.ids, requesterID)
	return nil
}

func TestUpdateProfileInvalidatesOnlyOnSuccess(t *testing.T) {
	cache := &countingInvalidator{}
	uc := NewProfileUseCase(memory.NewProfileRepository(), cache, nil)
	ctx := context.Background()

	created, err := uc.CreateProfile(ctx, &CreateProfileRequest{
		DisplayName: "Ana", Age: 27, Gender: "F", GenderPreference: "M",
	})
	require.NoError(t, err)
	assert.Empty(t, cache.ids)

	_, err = uc.UpdateProfile(ctx, created.ID, &UpdateProfileRequest{AgeRangeMin: ptr(200)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, cache.ids)

	_, err = uc.UpdateProfile(ctx, created.ID, &UpdateProfileRequest{Interests: &[]string{"surf"}})
	require.NoError(t, err)
	assert.Equal(t, []int{created.ID}, cache.ids)
}
