package assessment

import (
	"math"
	"strconv"
)

// round rounds half away from zero at the given decimal places. The scaled
// value is passed through a fixed 9-digit decimal form first so a product
// like 0.195*10 that lands a few ulps under 1.95 still rounds up.
func round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	scale := math.Pow10(places)
	scaled, err := strconv.ParseFloat(strconv.FormatFloat(x*scale, 'f', 9, 64), 64)
	if err != nil {
		return 0
	}
	r := math.Round(scaled) / scale
	if r == 0 {
		// normalise -0
		return 0
	}
	return r
}

func round1(x float64) float64 { return round(x, 1) }
func round3(x float64) float64 { return round(x, 3) }
