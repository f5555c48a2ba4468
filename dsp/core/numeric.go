package core

import "math"

// Round rounds x to the given number of decimal places, with halves rounded
// away from zero. NaN and infinities are returned unchanged, as are values too
// large to carry a fraction at that precision. A negative zero result is
// normalized to 0.
func Round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}

	scale := math.Pow10(places)
	scaled := x * scale
	if math.Abs(scaled) >= 1<<53 {
		return x
	}

	r := math.Round(scaled) / scale
	if r == 0 {
		return 0
	}

	return r
}

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// IsFinite reports whether x is neither NaN nor an infinity.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention),
// flooring the result at floorDB for zero or tiny inputs.
func LinearToDB(linear, floorDB float64) float64 {
	if linear <= 0 {
		return floorDB
	}

	db := 20 * math.Log10(linear)
	if db < floorDB {
		return floorDB
	}

	return db
}
