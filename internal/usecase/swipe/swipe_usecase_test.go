package swipe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gdugdh24/kindred-backend/internal/domain"
	"github.com/gdugdh24/kindred-backend/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.MatchEvent
	err    error
}

func (p *recordingPublisher) PublishMatch(_ context.Context, e domain.MatchEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

type recordingInvalidator struct {
	mu  sync.Mutex
	ids []int
}

func (r *recordingInvalidator) Invalidate(_ context.Context, requesterID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, requesterID)
	return nil
}

type stubGenerator struct {
	lines []string
	err   error
}

func (g stubGenerator) GenerateIcebreakers(context.Context, []string, []string) ([]string, error) {
	return g.lines, g.err
}

type fixture struct {
	profiles  *memory.ProfileRepository
	likes     *memory.LikeRepository
	publisher *recordingPublisher
	cache     *recordingInvalidator
	uc        *SwipeUseCase
}

func newFixture(t *testing.T, n int) *fixture {
	t.Helper()
	f := &fixture{
		profiles:  memory.NewProfileRepository(),
		likes:     memory.NewLikeRepository(),
		publisher: &recordingPublisher{},
		cache:     &recordingInvalidator{},
	}
	for i := 0; i < n; i++ {
		require.NoError(t, f.profiles.Create(context.Background(), &domain.Profile{
			DisplayName: "user", Age: 25, Gender: "F", GenderPreference: "M",
			AgeRangeMin: 18, AgeRangeMax: 99,
		}))
	}
	f.uc = NewSwipeUseCase(f.profiles, f.likes, f.publisher, f.cache, nil, nil)
	f.uc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return f
}

func TestRecordLikeOneWayThenMatch(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	res, err := f.uc.RecordLike(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, res.EdgeCreated)
	assert.False(t, res.IsMatch)
	assert.Nil(t, res.MatchedProfile)
	assert.Empty(t, f.publisher.events)

	res, err = f.uc.RecordLike(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, res.IsMatch)
	require.NotNil(t, res.MatchedProfile)
	assert.Equal(t, 1, res.MatchedProfile.ID)
	assert.Equal(t, 2, res.Like.LikerID)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, domain.MatchEvent{
		UserID:        2,
		MatchedUserID: 1,
		MatchedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}, f.publisher.events[0])
	assert.Equal(t, []int{1, 2}, f.cache.ids)
}

func TestRecordLikeErrors(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	_, err := f.uc.RecordLike(ctx, 1, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.RecordLike(ctx, 1, 9)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)

	_, err = f.uc.RecordLike(ctx, 9, 1)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)

	_, err = f.uc.RecordLike(ctx, 1, 2)
	require.NoError(t, err)
	_, err = f.uc.RecordLike(ctx, 1, 2)
	assert.ErrorIs(t, err, domain.ErrAlreadyLiked)

	edges, err := f.likes.EdgesFrom(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, edges, 1)
}

func TestRecordLikePublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, 2)
	f.publisher.err = errors.New("broker down")
	ctx := context.Background()

	_, err := f.uc.RecordLike(ctx, 1, 2)
	require.NoError(t, err)
	res, err := f.uc.RecordLike(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, res.IsMatch)
}

func TestRecordLikeConcurrentOpposites(t *testing.T) {
	for i := 0; i < 50; i++ {
		f := newFixture(t, 2)
		ctx := context.Background()

		var wg sync.WaitGroup
		results := make([]*domain.LikeResult, 2)
		for j, pair := range [][2]int{{1, 2}, {2, 1}} {
			wg.Add(1)
			go func(j int, from, to int) {
				defer wg.Done()
				res, err := f.uc.RecordLike(ctx, from, to)
				assert.NoError(t, err)
				results[j] = res
			}(j, pair[0], pair[1])
		}
		wg.Wait()

		require.NotNil(t, results[0])
		require.NotNil(t, results[1])
		assert.True(t, results[0].IsMatch || results[1].IsMatch, "at least one side observes the match")
	}
}

func TestRecordLikeConcurrentDuplicates(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		dupes   int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.RecordLike(ctx, 1, 2)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, domain.ErrAlreadyLiked):
				dupes++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 19, dupes)
}

func TestGetMatches(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	for _, e := range [][2]int{{1, 2}, {2, 1}, {1, 3}, {4, 1}, {1, 5}, {5, 1}} {
		_, err := f.likes.CreateEdge(ctx, e[0], e[1])
		require.NoError(t, err)
	}

	matches, err := f.uc.GetMatches(ctx, 1)
	require.NoError(t, err)
	got := make([]int, 0, len(matches))
	for _, p := range matches {
		got = append(got, p.ID)
	}
	assert.Equal(t, []int{2, 5}, got)

	matches, err = f.uc.GetMatches(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, err = f.uc.GetMatches(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestLikesReceived(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()

	for _, e := range [][2]int{{2, 1}, {3, 1}, {1, 3}, {4, 1}} {
		_, err := f.likes.CreateEdge(ctx, e[0], e[1])
		require.NoError(t, err)
	}

	received, err := f.uc.LikesReceived(ctx, 1)
	require.NoError(t, err)
	got := make([]int, 0, len(received))
	for _, p := range received {
		got = append(got, p.ID)
	}
	assert.Equal(t, []int{2, 4}, got)
}

func TestIcebreakers(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	me, err := f.profiles.GetByID(ctx, 1)
	require.NoError(t, err)
	me.Interests = []string{"chess", "jazz"}
	require.NoError(t, f.profiles.Update(ctx, me))

	other, err := f.profiles.GetByID(ctx, 2)
	require.NoError(t, err)
	other.DisplayName = "Rui"
	other.Interests = []string{"surf", "jazz"}
	other.Location = ptr("Porto")
	other.Bio = ptr("Coffee first.")
	require.NoError(t, f.profiles.Update(ctx, other))

	_, err = f.uc.Icebreakers(ctx, 1, 2)
	assert.ErrorIs(t, err, domain.ErrNotMatched)

	_, err = f.likes.CreateEdge(ctx, 1, 2)
	require.NoError(t, err)
	_, err = f.uc.Icebreakers(ctx, 1, 2)
	assert.ErrorIs(t, err, domain.ErrNotMatched)

	_, err = f.likes.CreateEdge(ctx, 2, 1)
	require.NoError(t, err)

	lines, err := f.uc.Icebreakers(ctx, 1, 2)
	require.NoError(t, err)
	texts := make([]string, 0, len(lines))
	for _, l := range lines {
		texts = append(texts, l.Text)
	}
	assert.Contains(t, texts, "Hey Rui, nice to match with you! How's your day going?")
	assert.Contains(t, texts, "I noticed we both like jazz! What's your favorite thing about it?")
	assert.Contains(t, texts, "I see you're into surf! What got you interested in that?")
	assert.Contains(t, texts, "I see you're from Porto! What's your favorite local spot?")
	assert.Contains(t, texts, "I enjoyed reading your bio! Tell me more about yourself.")

	again, err := f.uc.Icebreakers(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, lines, again)

	_, err = f.uc.Icebreakers(ctx, 1, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.Icebreakers(ctx, 1, 9)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestIcebreakersGenerator(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	_, err := f.likes.CreateEdge(ctx, 1, 2)
	require.NoError(t, err)
	_, err = f.likes.CreateEdge(ctx, 2, 1)
	require.NoError(t, err)

	f.uc.icebreakers = stubGenerator{lines: []string{"Generated hello"}}
	lines, err := f.uc.Icebreakers(ctx, 1, 2)
	require.NoError(t, err)
	require.NotEmpty(t, lines)
	assert.Equal(t, Icebreaker{Text: "Generated hello", Category: CategoryGenerated}, lines[0])

	f.uc.icebreakers = stubGenerator{err: errors.New("quota")}
	lines, err = f.uc.Icebreakers(ctx, 1, 2)
	require.NoError(t, err)
	for _, l := range lines {
		assert.NotEqual(t, CategoryGenerated, l.Category)
	}
}
