package smoothing

// ExponentialMovingAverage blends the new raw value with the previous
// smoothed value using alpha = s / (1 + n).
type ExponentialMovingAverage struct {
	samples int     // n
	factor  float64 // s
}

var _ Strategy = ExponentialMovingAverage{}

// NewExponentialMovingAverage creates an EMA strategy. The sample count is
// clamped to at least 1 and the smoothing factor to at least 0.
func NewExponentialMovingAverage(samples int, factor float64) ExponentialMovingAverage {
	if samples < 1 {
		samples = 1
	}
	if factor < 0 {
		factor = 0
	}
	return ExponentialMovingAverage{samples: samples, factor: factor}
}

// Apply computes price*alpha + prev*(1-alpha) where prev is the most recent
// smoothed value. An empty history seeds the series with the raw price.
// Alpha at or above 1 passes the price through; alpha at or below 0 repeats prev.
func (e ExponentialMovingAverage) Apply(history []float64, price float64) float64 {
	if len(history) == 0 {
		return price
	}

	alpha := e.factor / (1.0 + float64(e.samples))
	prev := history[0]

	switch {
	case alpha >= 1.0:
		return price
	case alpha <= 0.0:
		return prev
	default:
		return price*alpha + prev*(1.0-alpha)
	}
}
