package matching

import (
	"math"
	"testing"

	"github.com/gdugdh24/kindred-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestScoreScenario(t *testing.T) {
	requester := &domain.Profile{
		ID: 1, Age: 28, Gender: "M", GenderPreference: "F",
		AgeRangeMin: 24, AgeRangeMax: 35,
		Interests: []string{"hiking", "jazz", "chess"},
		Location:  ptr("Lisbon"),
	}
	candidate := &domain.Profile{
		ID: 2, Age: 26, Gender: "F", GenderPreference: "M",
		AgeRangeMin: 25, AgeRangeMax: 35,
		Interests: []string{"hiking", "jazz", "yoga", "film"},
		Location:  ptr("Lisbon"),
	}

	b := Breakdown(requester, candidate)
	assert.Equal(t, 16, b.Interest)
	assert.Equal(t, 18, b.Age)
	assert.Equal(t, 20, b.Location)
	assert.Equal(t, 20, b.Activity)
	assert.Equal(t, 74, Score(requester, candidate))
}

func TestScoreSelf(t *testing.T) {
	p := &domain.Profile{Age: 30, Interests: []string{"a", "b"}}
	assert.Equal(t, 100, Score(p, p))

	p.Interests = nil
	assert.Equal(t, 80, Score(p, p))
}

func TestScoreSymmetricAndBounded(t *testing.T) {
	profiles := []*domain.Profile{
		{Age: 18, Interests: []string{"a"}, LocationLat: ptr(38.7), LocationLon: ptr(-9.1), MaxDistanceKm: 10},
		{Age: 65, Interests: []string{"a", "b", "c"}, LocationLat: ptr(38.8), LocationLon: ptr(-9.2), MaxDistanceKm: 200},
		{Age: 40, Location: ptr("Porto")},
		{Age: 33, Interests: []string{"b", "b", "c"}, Location: ptr("Lisbon")},
	}
	for _, a := range profiles {
		for _, b := range profiles {
			s := Score(a, b)
			assert.Equal(t, s, Score(b, a))
			assert.GreaterOrEqual(t, s, 0)
			assert.LessOrEqual(t, s, MaxScore)
		}
	}
}

func TestAgeScore(t *testing.T) {
	assert.Equal(t, 20, ageScore(30, 30))
	assert.Equal(t, 18, ageScore(28, 26))
	assert.Equal(t, 10, ageScore(20, 30))
	assert.Equal(t, 0, ageScore(20, 40))
	assert.Equal(t, 0, ageScore(18, 80))
}

func TestInterestScore(t *testing.T) {
	assert.Equal(t, 0, interestScore(nil, nil))
	assert.Equal(t, 0, interestScore([]string{"a"}, nil))
	assert.Equal(t, 40, interestScore([]string{"a", "a"}, []string{"a"}))
	// 1 shared of 3 distinct: 13.33 rounds to 13
	assert.Equal(t, 13, interestScore([]string{"a", "b"}, []string{"a", "c"}))
	// 1 of 8: 5.0
	assert.Equal(t, 5, interestScore([]string{"a", "b", "c", "d"}, []string{"a", "e", "f", "g", "h"}))
	assert.Equal(t, 0, interestScore([]string{"Jazz"}, []string{"jazz"}))
}

func TestLocationScore(t *testing.T) {
	at := func(lat, lon float64, maxKm int) *domain.Profile {
		return &domain.Profile{LocationLat: ptr(lat), LocationLon: ptr(lon), MaxDistanceKm: maxKm}
	}

	assert.Equal(t, 20, locationScore(at(10, 10, 50), at(10, 10, 50)))

	// roughly 111 km per degree of latitude
	assert.Equal(t, 0, locationScore(at(0, 0, 100), at(1, 0, 100)))
	assert.Equal(t, 10, locationScore(at(0, 0, 300), at(1.0, 0, 222)))

	// the smaller radius wins in both directions
	assert.Equal(t, 0, locationScore(at(0, 0, 500), at(1, 0, 50)))
	assert.Equal(t, 0, locationScore(at(1, 0, 50), at(0, 0, 500)))

	labelled := func(l string) *domain.Profile { return &domain.Profile{Location: ptr(l)} }
	assert.Equal(t, 20, locationScore(labelled("Lisbon"), labelled("Lisbon")))
	assert.Equal(t, 0, locationScore(labelled("Lisbon"), labelled("Porto")))
	assert.Equal(t, 20, locationScore(labelled("Lisbon"), &domain.Profile{}))

	broken := &domain.Profile{LocationLat: ptr(math.NaN()), LocationLon: ptr(0.0), Location: ptr("Porto")}
	assert.Equal(t, 0, locationScore(broken, labelled("Lisbon")))
	assert.Equal(t, 20, locationScore(broken, at(0, 0, 50)))
}

func TestLocationScoreRadiusBoundary(t *testing.T) {
	// along a meridian the great-circle distance is R * dLat
	northBy := func(km float64) *domain.Profile {
		deg := km / earthRadiusKm * 180 / math.Pi
		return &domain.Profile{LocationLat: ptr(deg), LocationLon: ptr(0.0), MaxDistanceKm: 100}
	}
	origin := &domain.Profile{LocationLat: ptr(0.0), LocationLon: ptr(0.0), MaxDistanceKm: 100}

	edge := northBy(100)
	assert.InDelta(t, 100.0, HaversineKM(0, 0, *edge.LocationLat, 0), 1e-9)
	assert.Equal(t, 0, locationScore(origin, edge))
	assert.Equal(t, 0, locationScore(edge, origin))

	assert.Equal(t, 1, locationScore(origin, northBy(95)))
	assert.Equal(t, 0, locationScore(origin, northBy(100.5)))
	assert.Equal(t, 20, locationScore(origin, northBy(0)))
}
