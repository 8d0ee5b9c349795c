package matching

import (
	"math"

	"github.com/gdugdh24/kindred-backend/internal/domain"
)

const (
	InterestWeight = 40
	AgeWeight      = 20
	LocationWeight = 20
	ActivityWeight = 20

	MaxScore = 100

	// ageBandYears is the age gap at which the age subscore reaches zero.
	ageBandYears = 20
)

// ScoreBreakdown holds the four subscores, each already clamped to its weight.
type ScoreBreakdown struct {
	Interest int `json:"interest"`
	Age      int `json:"age"`
	Location int `json:"location"`
	Activity int `json:"activity"`
}

func (b ScoreBreakdown) Total() int {
	return clamp(b.Interest+b.Age+b.Location+b.Activity, 0, MaxScore)
}

// Score returns the 0-100 compatibility of candidate c for requester p.
// It is pure and never fails; unusable coordinates count as unknown.
func Score(p, c *domain.Profile) int {
	return Breakdown(p, c).Total()
}

func Breakdown(p, c *domain.Profile) ScoreBreakdown {
	return ScoreBreakdown{
		Interest: interestScore(p.Interests, c.Interests),
		Age:      ageScore(p.Age, c.Age),
		Location: locationScore(p, c),
		Activity: ActivityWeight,
	}
}

func interestScore(a, b []string) int {
	union := make(map[string]struct{}, len(a)+len(b))
	inA := make(map[string]struct{}, len(a))
	for _, tag := range a {
		union[tag] = struct{}{}
		inA[tag] = struct{}{}
	}

	shared := make(map[string]struct{})
	for _, tag := range b {
		union[tag] = struct{}{}
		if _, ok := inA[tag]; ok {
			shared[tag] = struct{}{}
		}
	}

	if len(union) == 0 {
		return 0
	}
	score := roundHalfUp(InterestWeight * float64(len(shared)) / float64(len(union)))
	return clamp(score, 0, InterestWeight)
}

func ageScore(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	penalty := roundHalfUp(AgeWeight * float64(d) / ageBandYears)
	return clamp(AgeWeight-penalty, 0, AgeWeight)
}

func locationScore(p, c *domain.Profile) int {
	lat1, lon1, ok1 := p.Coordinates()
	lat2, lon2, ok2 := c.Coordinates()
	if ok1 && ok2 {
		maxD := float64(min(p.SearchRadiusKm(), c.SearchRadiusKm()))
		distance := HaversineKM(lat1, lon1, lat2, lon2)
		if distance > maxD {
			return 0
		}
		return clamp(roundHalfUp(LocationWeight*(1-distance/maxD)), 0, LocationWeight)
	}

	l1, l2 := p.LocationLabel(), c.LocationLabel()
	if l1 != "" && l2 != "" {
		if l1 == l2 {
			return LocationWeight
		}
		return 0
	}

	// No usable signal on at least one side: assume compatible.
	return LocationWeight
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
