package indicators

import (
	"github.com/markcheno/go-talib"
)

// EMA computes an exponential moving average with factor 2/(period+1), seeded
// with the simple mean of the first period values. Leading NaNs of the input
// are skipped, so nested averages line up with their source.
func EMA(values []float64, period int) (Series, error) {
	return smooth("ema", values, period, talib.Ema)
}

// SMA computes a simple rolling mean.
func SMA(values []float64, period int) (Series, error) {
	return smooth("sma", values, period, talib.Sma)
}

func smooth(name string, values []float64, period int, kernel func([]float64, int) []float64) (Series, error) {
	if period <= 0 {
		return Undefined(len(values)), invalidPeriod(name, period)
	}
	in := Series(values)
	start := in.FirstDefined()
	if len(values)-start < period {
		return Undefined(len(values)), insufficient(name, len(values)-start, period)
	}
	out := Undefined(len(values))
	k := kernel(values[start:], period)
	for i := period - 1; i < len(k); i++ {
		out[start+i] = k[i]
	}
	return out, nil
}

// MACDResult holds the three aligned MACD lines.
type MACDResult struct {
	MACD      Series
	Signal    Series
	Histogram Series
}

// MACD computes EMA(fast) - EMA(slow), its signal EMA and the histogram.
func MACD(values []float64, p MACDParams) (MACDResult, error) {
	n := len(values)
	empty := MACDResult{MACD: Undefined(n), Signal: Undefined(n), Histogram: Undefined(n)}
	if err := p.Validate(); err != nil {
		return empty, err
	}
	if n < p.WarmUp() {
		return empty, insufficient("macd", n, p.WarmUp())
	}

	fast, err := EMA(values, p.Fast)
	if err != nil {
		return empty, err
	}
	slow, err := EMA(values, p.Slow)
	if err != nil {
		return empty, err
	}
	line := Undefined(n)
	for i := range line {
		if fast.Defined(i) && slow.Defined(i) {
			line[i] = fast[i] - slow[i]
		}
	}
	signal, err := EMA(line, p.Signal)
	if err != nil {
		return empty, err
	}
	hist := Undefined(n)
	for i := range hist {
		if signal.Defined(i) {
			hist[i] = line[i] - signal[i]
		}
	}
	return MACDResult{MACD: line, Signal: signal, Histogram: hist}, nil
}

// RSI computes the relative strength index with Wilder smoothing. The first
// value sits at index period; a window without losses reads 100.
func RSI(values []float64, period int) (Series, error) {
	n := len(values)
	if period <= 0 {
		return Undefined(n), invalidPeriod("rsi", period)
	}
	if n < period+1 {
		return Undefined(n), insufficient("rsi", n, period+1)
	}

	out := Undefined(n)
	var gain, loss float64
	for i := 1; i <= period; i++ {
		d := values[i] - values[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	p := float64(period)
	gain /= p
	loss /= p
	out[period] = rsiValue(gain, loss)

	for i := period + 1; i < n; i++ {
		d := values[i] - values[i-1]
		var g, l float64
		if d > 0 {
			g = d
		} else {
			l = -d
		}
		gain = (gain*(p-1) + g) / p
		loss = (loss*(p-1) + l) / p
		out[i] = rsiValue(gain, loss)
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

// TEMA computes 3*(ema1-ema2)+ema3 where each EMA smooths the previous one.
func TEMA(values []float64, period int) (Series, error) {
	n := len(values)
	if period <= 0 {
		return Undefined(n), invalidPeriod("tema", period)
	}
	need := TEMAParams{Period: period}.WarmUp()
	if n < need {
		return Undefined(n), insufficient("tema", n, need)
	}
	e1, err := EMA(values, period)
	if err != nil {
		return Undefined(n), err
	}
	e2, err := EMA(e1, period)
	if err != nil {
		return Undefined(n), err
	}
	e3, err := EMA(e2, period)
	if err != nil {
		return Undefined(n), err
	}
	out := Undefined(n)
	for i := range out {
		if e3.Defined(i) {
			out[i] = 3*(e1[i]-e2[i]) + e3[i]
		}
	}
	return out, nil
}
