// Package compass converts wind directions between degrees and the 16 points of the compass rose.
package compass

import "math"

const points = 16

// Directions lists the 16 compass points clockwise from the north.
var Directions = [points]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

var indexes = func() map[string]int {
	m := make(map[string]int, points)
	for i, d := range Directions {
		m[d] = i
	}
	return m
}()

// FromDegrees returns the compass point of the given angle (north is 0, clockwise).
// An empty string is returned for NaN.
func FromDegrees(degree float64) string {
	if math.IsNaN(degree) {
		return ""
	}

	// 22.5 degrees per sector, centered on each point.
	v := int(degree/22.5 + 0.5)
	return Directions[((v%points)+points)%points]
}

// Index returns the position of the given point on the compass rose.
func Index(direction string) (int, bool) {
	i, ok := indexes[direction]
	return i, ok
}

// Radians returns the angle of the given point or NaN when unknown.
func Radians(direction string) float64 {
	i, ok := Index(direction)
	if !ok {
		return math.NaN()
	}
	return 2 * math.Pi * float64(i) / points
}

// Mean returns the index of the circular mean of the given directions.
// Unknown directions are ignored and NaN is returned when nothing remains.
func Mean(directions []string) float64 {
	var sin, cos float64
	var n int

	for _, d := range directions {
		rad := Radians(d)
		if math.IsNaN(rad) {
			continue
		}

		sin += math.Sin(rad)
		cos += math.Cos(rad)
		n++
	}
	if n == 0 {
		return math.NaN()
	}

	mean := math.Atan2(sin/float64(n), cos/float64(n))
	if mean < 0 {
		mean += 2 * math.Pi
	}

	return float64(int(math.RoundToEven(mean*points/(2*math.Pi))) % points)
}
