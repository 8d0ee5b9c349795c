package matching

import (
	"math"

	"github.com/gdugdh24/kindred-backend/internal/repository"
)

const earthRadiusKm = 6371.0

// HaversineKM returns the great-circle distance between two points.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(v float64) float64 { return v * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// BoundingBox returns a rectangle that contains every point within radiusKm
// of (lat, lon). Near the poles or across the antimeridian it widens to the
// full longitude range; the Haversine check afterwards does the exact cut.
func BoundingBox(lat, lon, radiusKm float64) repository.BoundingBox {
	dLat := radiusKm / earthRadiusKm * 180 / math.Pi
	box := repository.BoundingBox{
		MinLat: math.Max(-90, lat-dLat),
		MaxLat: math.Min(90, lat+dLat),
		MinLon: -180,
		MaxLon: 180,
	}

	if box.MinLat <= -90 || box.MaxLat >= 90 {
		return box
	}

	dLon := dLat / math.Cos(lat*math.Pi/180)
	if lon-dLon < -180 || lon+dLon > 180 {
		return box
	}
	box.MinLon = lon - dLon
	box.MaxLon = lon + dLon
	return box
}
