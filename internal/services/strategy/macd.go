package strategy

import (
	"SignalScan/internal/domain/models"
	"SignalScan/internal/services/indicators"
)

const NameMACD = "MACD"

// MACDCross fires on the bar where the MACD line crosses above its signal line:
// macd[t-1] <= signal[t-1] and macd[t] > signal[t].
type MACDCross struct {
	p indicators.MACDParams
}

func NewMACDCross(p indicators.MACDParams) *MACDCross { return &MACDCross{p: p} }

func (d *MACDCross) Name() string { return NameMACD }

func (d *MACDCross) Detect(s models.BarSeries) (Detection, error) {
	m, err := indicators.MACD(s.Closes(), d.p)
	if err != nil {
		return inactive(s), err
	}
	active := make([]bool, s.Len())
	for t := 1; t < len(active); t++ {
		if !both(m.MACD, m.Signal, t-1) || !both(m.MACD, m.Signal, t) {
			continue
		}
		active[t] = m.MACD[t-1] <= m.Signal[t-1] && m.MACD[t] > m.Signal[t]
	}
	return newDetection(s, active), nil
}

// macdAboveAverage is true while the MACD line sits above a simple moving
// average of itself.
type macdAboveAverage struct {
	p indicators.MACDParams
}

func (d *macdAboveAverage) Name() string { return "MACD>SMA" }

func (d *macdAboveAverage) Detect(s models.BarSeries) (Detection, error) {
	m, err := indicators.MACD(s.Closes(), d.p)
	if err != nil {
		return inactive(s), err
	}
	avg, err := indicators.SMA(m.MACD, d.p.Signal)
	if err != nil {
		return inactive(s), err
	}
	active := make([]bool, s.Len())
	for t := range active {
		active[t] = both(m.MACD, avg, t) && m.MACD[t] > avg[t]
	}
	return newDetection(s, active), nil
}
