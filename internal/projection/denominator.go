package projection

import "math"

// GridGrowthRate is the exogenous yearly growth of total system capacity.
const GridGrowthRate = 0.05

// TotalCapacity projects total system capacity at each offset t (years from
// the start year) as total0·exp(0.05·t). It does not depend on the scenario.
func TotalCapacity(total0 float64, offsets []float64) []float64 {
	out := make([]float64, len(offsets))
	for i, t := range offsets {
		out[i] = total0 * math.Exp(GridGrowthRate*t)
	}
	return out
}

// Offsets returns 0, 1, ..., n-1.
func Offsets(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}
