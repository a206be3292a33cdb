package strategy

import (
	"time"

	"SignalScan/internal/domain/models"
	"SignalScan/internal/services/indicators"
)

// Detector turns a bar series into a boolean "signal active" timeline.
type Detector interface {
	Name() string
	// Detect never fails on short history: it returns an all-false timeline
	// together with an error wrapping models.ErrInsufficientHistory.
	Detect(s models.BarSeries) (Detection, error)
}

// Detection is the output of one detector over one series.
type Detection struct {
	Active []bool
	// Last is the timestamp of the most recent active bar; zero if none.
	Last time.Time
}

// Triggered reports whether the detector fired at least once.
func (d Detection) Triggered() bool { return !d.Last.IsZero() }

// Count returns the number of active bars.
func (d Detection) Count() int {
	n := 0
	for _, a := range d.Active {
		if a {
			n++
		}
	}
	return n
}

// Indices returns the positions of active bars in ascending order.
func (d Detection) Indices() []int {
	out := make([]int, 0, 4)
	for i, a := range d.Active {
		if a {
			out = append(out, i)
		}
	}
	return out
}

func newDetection(s models.BarSeries, active []bool) Detection {
	d := Detection{Active: active}
	for i := len(active) - 1; i >= 0; i-- {
		if active[i] {
			d.Last = s.Bars[i].Timestamp
			break
		}
	}
	return d
}

func inactive(s models.BarSeries) Detection {
	return Detection{Active: make([]bool, s.Len())}
}

// both reports whether a and b are defined at i.
func both(a, b indicators.Series, i int) bool {
	return a.Defined(i) && b.Defined(i)
}
