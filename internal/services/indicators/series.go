package indicators

import (
	"fmt"
	"math"

	"SignalScan/internal/domain/models"
)

// Series is an indicator output aligned 1:1 with its input.
// NaN marks an undefined (warm-up) value.
type Series []float64

// Defined reports whether index i holds a value.
func (s Series) Defined(i int) bool {
	return i >= 0 && i < len(s) && !math.IsNaN(s[i])
}

// FirstDefined returns the index of the first defined value, or len(s) if none.
func (s Series) FirstDefined() int {
	for i, v := range s {
		if !math.IsNaN(v) {
			return i
		}
	}
	return len(s)
}

// Undefined returns an all-NaN series of length n.
func Undefined(n int) Series {
	out := make(Series, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func insufficient(name string, have, need int) error {
	return fmt.Errorf("%w: %s needs %d bars, have %d", models.ErrInsufficientHistory, name, need, have)
}

func invalidPeriod(name string, p int) error {
	return fmt.Errorf("%w: %s period must be positive, got %d", models.ErrInvalidConfig, name, p)
}
