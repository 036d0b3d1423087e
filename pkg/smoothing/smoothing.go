// Package smoothing provides the smoothing strategies applied to raw index values.
package smoothing

import "fmt"

// Type identifies a smoothing algorithm.
type Type string

const (
	// TypeNone publishes raw values unchanged.
	TypeNone Type = "none"
	// TypeSMA publishes a simple moving average over the recent raw values.
	TypeSMA Type = "sma"
	// TypeEMA publishes an exponential moving average seeded with the first raw value.
	TypeEMA Type = "ema"
)

const (
	defaultSMAWindow       = 20
	defaultEMASamples      = 20
	defaultEMASmoothFactor = 2.0
)

// Policy is the configured smoothing choice for one index.
// Zero parameter fields fall back to the package defaults.
type Policy struct {
	Type            Type    `yaml:"type"`
	Window          int     `yaml:"window"`           // SMA only
	SampleCount     int     `yaml:"sample_count"`     // EMA only
	SmoothingFactor float64 `yaml:"smoothing_factor"` // EMA only
}

// UnmarshalYAML accepts either a bare algorithm name ("ema") or a mapping
// with parameters ({type: ema, sample_count: 10, smoothing_factor: 2.0}).
func (p *Policy) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err == nil {
		p.Type = Type(name)
		return nil
	}

	type policy Policy // avoid recursing into this method
	var full policy
	if err := unmarshal(&full); err != nil {
		return err
	}
	*p = Policy(full)
	return nil
}

// Validate checks that the policy names a known algorithm.
func (p Policy) Validate() error {
	switch p.Type {
	case TypeNone, TypeSMA, TypeEMA:
		return nil
	default:
		return fmt.Errorf("%w: %q (supported: none, sma, ema)", ErrUnknownType, p.Type)
	}
}

// Strategy computes a published value from the recent history and a new raw value.
// The history slice is ordered most-recent-first.
type Strategy interface {
	Apply(history []float64, price float64) float64
}

// New creates the strategy for a policy, applying parameter defaults.
func New(p Policy) (Strategy, error) {
	switch p.Type {
	case TypeNone:
		return NoSmoothing{}, nil
	case TypeSMA:
		window := p.Window
		if window == 0 {
			window = defaultSMAWindow
		}
		return NewSimpleMovingAverage(window), nil
	case TypeEMA:
		samples := p.SampleCount
		if samples == 0 {
			samples = defaultEMASamples
		}
		factor := p.SmoothingFactor
		if factor == 0 {
			factor = defaultEMASmoothFactor
		}
		return NewExponentialMovingAverage(samples, factor), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, p.Type)
	}
}
