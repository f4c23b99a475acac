package expr

import (
	"math"
	"strconv"
)

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// RoundHalfAwayFromZero rounds v to decimals digits, rounding exact halves
// away from zero (2.5 at 0 decimals rounds to 3, -2.5 to -3), the
// convention the contracts normalizer and calculated columns use. The
// scaling is float64 arithmetic, so a value with no exact binary form
// rounds from its stored approximation (1.005 at 2 decimals gives 1.00).
func RoundHalfAwayFromZero(v float64, decimals int) float64 {
	mult := math.Pow(10, float64(decimals))
	if v >= 0 {
		return math.Floor(v*mult+0.5) / mult
	}
	return math.Ceil(v*mult-0.5) / mult
}
