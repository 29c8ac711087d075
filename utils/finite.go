package utils

import "math"

// Finite は NaN と ±Inf を弾く。
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
