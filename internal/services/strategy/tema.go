package strategy

import (
	"SignalScan/internal/domain/models"
	"SignalScan/internal/services/indicators"
)

const NameTEMA = "TEMA"

// TEMATrend is a level condition: true on every bar where TEMA is rising and
// the close sits above it.
type TEMATrend struct {
	p indicators.TEMAParams
	// requireClose disables the close > TEMA leg when false.
	requireClose bool
}

func NewTEMATrend(p indicators.TEMAParams) *TEMATrend {
	return &TEMATrend{p: p, requireClose: true}
}

func (d *TEMATrend) Name() string {
	if !d.requireClose {
		return "TEMA rising"
	}
	return NameTEMA
}

func (d *TEMATrend) Detect(s models.BarSeries) (Detection, error) {
	tema, err := indicators.TEMA(s.Closes(), d.p.Period)
	if err != nil {
		return inactive(s), err
	}
	active := make([]bool, s.Len())
	for t := 1; t < len(active); t++ {
		if !tema.Defined(t - 1) {
			continue
		}
		up := tema[t] > tema[t-1]
		if d.requireClose {
			up = up && s.Bars[t].Close > tema[t]
		}
		active[t] = up
	}
	return newDetection(s, active), nil
}
