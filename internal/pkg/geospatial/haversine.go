package geospatial

import "math"

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push a just past 1 for antipodal points.
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// DistanceMatrix returns the symmetric n×n great-circle distance matrix in
// meters. The diagonal is zero and only the upper triangle is computed.
func DistanceMatrix(points []Point) [][]float64 {
	n := len(points)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := Haversine(points[i].Lat, points[i].Lon, points[j].Lat, points[j].Lon)
			m[i][j] = d
			m[j][i] = d
		}
	}
	return m
}

// PathLength sums the distances along order. When closed is true the hop
// from the last point back to the first is included.
func PathLength(dist [][]float64, order []int, closed bool) float64 {
	if len(order) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(order); i++ {
		total += dist[order[i-1]][order[i]]
	}
	if closed {
		total += dist[order[len(order)-1]][order[0]]
	}
	return total
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
