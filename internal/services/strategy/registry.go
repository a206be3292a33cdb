package strategy

import (
	"fmt"
	"sort"

	"SignalScan/internal/domain/models"
	"SignalScan/internal/services/indicators"
)

const (
	NameMACDTEMA   = "MACD+TEMA"
	NameRSITEMA    = "RSI+TEMA"
	NameITGScalper = "ITG Scalper"
)

// DefaultStrategies are screened when the configuration names none.
var DefaultStrategies = []string{NameMACD, NameRSI, NameTEMA}

// Params carries the indicator settings shared by all detectors.
type Params struct {
	MACD indicators.MACDParams
	RSI  indicators.RSIParams
	TEMA indicators.TEMAParams
	// ScalperTEMA is the ITG Scalper's own TEMA, independent of TEMA.
	ScalperTEMA indicators.TEMAParams
}

// DefaultScalperTEMAPeriod is the ITG Scalper TEMA length.
const DefaultScalperTEMAPeriod = 14

// DefaultParams returns conventional indicator settings.
func DefaultParams() Params {
	return Params{
		MACD:        indicators.DefaultMACD(),
		RSI:         indicators.DefaultRSI(),
		TEMA:        indicators.DefaultTEMA(),
		ScalperTEMA: indicators.TEMAParams{Period: DefaultScalperTEMAPeriod},
	}
}

func (p Params) Validate() error {
	if err := p.MACD.Validate(); err != nil {
		return err
	}
	if err := p.RSI.Validate(); err != nil {
		return err
	}
	if err := p.TEMA.Validate(); err != nil {
		return err
	}
	return p.ScalperTEMA.Validate()
}

// Factory builds a detector from shared params.
type Factory func(Params) Detector

// Registry maps strategy names to detector factories.
type Registry struct {
	params    Params
	factories map[string]Factory
}

// NewRegistry validates params and returns the registry of built-in strategies.
func NewRegistry(p Params) (*Registry, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Registry{
		params: p,
		factories: map[string]Factory{
			NameMACD: func(p Params) Detector { return NewMACDCross(p.MACD) },
			NameRSI:  func(p Params) Detector { return NewRSIThreshold(p.RSI) },
			NameTEMA: func(p Params) Detector { return NewTEMATrend(p.TEMA) },
			NameMACDTEMA: func(p Params) Detector {
				return NewComposite(NameMACDTEMA, NewMACDCross(p.MACD), NewTEMATrend(p.TEMA))
			},
			NameRSITEMA: func(p Params) Detector {
				return NewComposite(NameRSITEMA, NewRSIThreshold(p.RSI), NewTEMATrend(p.TEMA))
			},
			NameITGScalper: func(p Params) Detector {
				return NewComposite(NameITGScalper,
					&macdAboveAverage{p: p.MACD},
					&TEMATrend{p: p.ScalperTEMA},
				)
			},
		},
	}, nil
}

// Names lists the registered strategies, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Build returns detectors for names in the given order. Duplicates are dropped.
func (r *Registry) Build(names []string) ([]Detector, error) {
	if len(names) == 0 {
		names = DefaultStrategies
	}
	out := make([]Detector, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		f, ok := r.factories[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown strategy %q (known: %v)", models.ErrInvalidConfig, name, r.Names())
		}
		seen[name] = struct{}{}
		out = append(out, f(r.params))
	}
	return out, nil
}
