package strategy

import (
	"strings"

	"SignalScan/internal/domain/models"
)

// Composite fires where all of its members fire on the same bar.
type Composite struct {
	name    string
	members []Detector
}

// NewComposite combines two or more detectors. An empty name derives one
// from the member names, e.g. "MACD+TEMA".
func NewComposite(name string, members ...Detector) *Composite {
	if name == "" {
		parts := make([]string, len(members))
		for i, m := range members {
			parts[i] = m.Name()
		}
		name = strings.Join(parts, "+")
	}
	return &Composite{name: name, members: members}
}

func (c *Composite) Name() string { return c.name }

func (c *Composite) Detect(s models.BarSeries) (Detection, error) {
	if len(c.members) == 0 {
		return inactive(s), nil
	}
	active := make([]bool, s.Len())
	for i := range active {
		active[i] = true
	}
	for _, m := range c.members {
		d, err := m.Detect(s)
		if err != nil {
			return inactive(s), err
		}
		for i := range active {
			active[i] = active[i] && d.Active[i]
		}
	}
	return newDetection(s, active), nil
}
