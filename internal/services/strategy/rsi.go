package strategy

import (
	"SignalScan/internal/domain/models"
	"SignalScan/internal/services/indicators"
)

const NameRSI = "RSI"

// RSIThreshold fires on the bar where RSI drops below the cutoff:
// rsi[t] < cutoff and rsi[t-1] >= cutoff.
type RSIThreshold struct {
	p indicators.RSIParams
}

func NewRSIThreshold(p indicators.RSIParams) *RSIThreshold { return &RSIThreshold{p: p} }

func (d *RSIThreshold) Name() string { return NameRSI }

func (d *RSIThreshold) Detect(s models.BarSeries) (Detection, error) {
	rsi, err := indicators.RSI(s.Closes(), d.p.Period)
	if err != nil {
		return inactive(s), err
	}
	active := make([]bool, s.Len())
	for t := 1; t < len(active); t++ {
		if !rsi.Defined(t - 1) {
			continue
		}
		active[t] = rsi[t] < d.p.Cutoff && rsi[t-1] >= d.p.Cutoff
	}
	return newDetection(s, active), nil
}
