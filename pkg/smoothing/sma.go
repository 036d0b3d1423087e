package smoothing

// SimpleMovingAverage averages the new raw value with the most recent
// history entries inside a fixed window.
type SimpleMovingAverage struct {
	window int
}

var _ Strategy = SimpleMovingAverage{}

// NewSimpleMovingAverage creates an SMA strategy. A window below 1 is clamped to 1.
func NewSimpleMovingAverage(window int) SimpleMovingAverage {
	if window < 1 {
		window = 1
	}
	return SimpleMovingAverage{window: window}
}

// Apply averages price together with up to window-1 most recent history
// entries. With window 1 or an empty history the price passes through unchanged.
func (s SimpleMovingAverage) Apply(history []float64, price float64) float64 {
	if s.window == 1 || len(history) == 0 {
		return price
	}

	sum := price
	count := 1
	for i, v := range history {
		if i >= s.window-1 {
			break
		}
		sum += v
		count++
	}

	return sum / float64(count)
}
