package dice

import "math"

// StandardNormal draws one N(0,1) variate from src with the Box–Muller transform.
//
// Exactly two uniforms are consumed per call, so consecutive calls never share
// entropy. A zero first uniform is lifted to the smallest positive float to keep
// the logarithm finite.
func StandardNormal(src Source) float64 {
	u1 := src.Float64()
	u2 := src.Float64()
	if u1 <= 0 {
		u1 = math.SmallestNonzeroFloat64
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
