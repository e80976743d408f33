package alerting

import (
	"fmt"

	"github.com/diwise/aquavise-dashboard/pkg/types"
)

// Table holds the hard safety envelope per variable. A value outside it
// raises an alert.
type Table struct {
	Temperature types.Range `yaml:"temperature"`
	PH          types.Range `yaml:"ph"`
	Turbidity   types.Range `yaml:"turbidity"`
}

func DefaultTable() Table {
	return Table{
		Temperature: types.Range{Min: 25, Max: 32},
		PH:          types.Range{Min: 6.5, Max: 8.5},
		Turbidity:   types.Range{Min: 10, Max: 60},
	}
}

// AlertsFor checks a reading against the default safety envelope.
func AlertsFor(r types.Reading) []types.Alert {
	return DefaultTable().AlertsFor(r)
}

// AlertsFor returns every violation in the reading, temperature first, then
// pH and turbidity. The result is never nil.
func (t Table) AlertsFor(r types.Reading) []types.Alert {
	alerts := []types.Alert{}

	check := func(v types.Variable, bounds types.Range, name, unit string) {
		value := r.Value(v)
		if value > bounds.Max {
			alerts = append(alerts, types.Alert{
				Variable:  v,
				Direction: types.DirectionHigh,
				Message:   fmt.Sprintf("%s too high (>%g%s)", name, bounds.Max, unit),
				Value:     value,
			})
		} else if value < bounds.Min {
			alerts = append(alerts, types.Alert{
				Variable:  v,
				Direction: types.DirectionLow,
				Message:   fmt.Sprintf("%s too low (<%g%s)", name, bounds.Min, unit),
				Value:     value,
			})
		}
	}

	check(types.VariableTemperature, t.Temperature, "Temperature", "°C")
	check(types.VariablePH, t.PH, "pH", "")
	check(types.VariableTurbidity, t.Turbidity, "Turbidity", " NTU")

	return alerts
}
