// Package geo implements great-circle distance and nearest-neighbour ranking
// over in-memory located records.
package geo

import "math"

// KmPerDegree converts one degree of great-circle arc to kilometres:
// 60 nautical miles per degree, 1.1515 statute miles per nautical mile,
// 1.609344 km per statute mile.
const KmPerDegree = 60 * 1.1515 * 1.609344

// Distance returns the great-circle distance in kilometres between two points
// given in degrees, using the spherical law of cosines.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	// acos is unstable for coincident points
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	radLat1 := toRadians(lat1)
	radLat2 := toRadians(lat2)
	radTheta := toRadians(lon1 - lon2)

	cosArg := math.Sin(radLat1)*math.Sin(radLat2) +
		math.Cos(radLat1)*math.Cos(radLat2)*math.Cos(radTheta)

	// rounding can push the argument just outside acos's domain
	if cosArg > 1 {
		cosArg = 1
	} else if cosArg < -1 {
		cosArg = -1
	}

	return toDegrees(math.Acos(cosArg)) * KmPerDegree
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
