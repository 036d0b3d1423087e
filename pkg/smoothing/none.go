package smoothing

// NoSmoothing returns the raw value unchanged.
type NoSmoothing struct{}

var _ Strategy = NoSmoothing{}

// Apply returns the current price, ignoring history.
func (NoSmoothing) Apply(_ []float64, price float64) float64 {
	return price
}
