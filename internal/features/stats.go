package features

import "math"

// The following aggregates skip NaN values.

func mean(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// sum returns 0 for an empty series.
func sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		if !math.IsNaN(v) {
			s += v
		}
	}
	return s
}

func maximum(values []float64) float64 {
	m := math.NaN()
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(m) || v > m {
			m = v
		}
	}
	return m
}

func minimum(values []float64) float64 {
	m := math.NaN()
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(m) || v < m {
			m = v
		}
	}
	return m
}

// std is the sample standard deviation, NaN with less than 2 values.
func std(values []float64) float64 {
	m := mean(values)
	if math.IsNaN(m) {
		return m
	}

	var sq float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sq += (v - m) * (v - m)
		n++
	}
	if n < 2 {
		return math.NaN()
	}
	return math.Sqrt(sq / float64(n-1))
}
