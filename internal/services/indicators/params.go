package indicators

import (
	"fmt"

	"SignalScan/internal/domain/models"
)

// MACDParams configures the MACD indicator.
type MACDParams struct {
	Fast   int
	Slow   int
	Signal int
}

// DefaultMACD returns the conventional 12/26/9 setting.
func DefaultMACD() MACDParams { return MACDParams{Fast: 12, Slow: 26, Signal: 9} }

func (p MACDParams) Validate() error {
	if p.Fast <= 0 || p.Slow <= 0 || p.Signal <= 0 {
		return fmt.Errorf("%w: macd periods must be positive (fast=%d slow=%d signal=%d)", models.ErrInvalidConfig, p.Fast, p.Slow, p.Signal)
	}
	if p.Fast >= p.Slow {
		return fmt.Errorf("%w: macd fast (%d) must be less than slow (%d)", models.ErrInvalidConfig, p.Fast, p.Slow)
	}
	return nil
}

// WarmUp is the minimum number of bars for MACD to evaluate a crossover.
func (p MACDParams) WarmUp() int { return p.Slow + p.Signal }

// RSIParams configures the RSI indicator and its threshold.
type RSIParams struct {
	Period int
	Cutoff float64
}

// DefaultRSI returns a 14 period RSI with an oversold cutoff of 30.
func DefaultRSI() RSIParams { return RSIParams{Period: 14, Cutoff: 30} }

func (p RSIParams) Validate() error {
	if p.Period <= 0 {
		return invalidPeriod("rsi", p.Period)
	}
	if p.Cutoff <= 0 || p.Cutoff >= 100 {
		return fmt.Errorf("%w: rsi cutoff must be in (0, 100), got %v", models.ErrInvalidConfig, p.Cutoff)
	}
	return nil
}

// WarmUp is the minimum number of bars for a defined RSI value.
func (p RSIParams) WarmUp() int { return p.Period + 1 }

// TEMAParams configures the triple exponential moving average.
type TEMAParams struct {
	Period int
}

// DefaultTEMA returns a 20 period TEMA.
func DefaultTEMA() TEMAParams { return TEMAParams{Period: 20} }

func (p TEMAParams) Validate() error {
	if p.Period <= 0 {
		return invalidPeriod("tema", p.Period)
	}
	return nil
}

// WarmUp is the minimum number of bars for a defined TEMA value.
func (p TEMAParams) WarmUp() int { return 3*p.Period - 2 }
