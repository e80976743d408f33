package classifier

import (
	"github.com/diwise/aquavise-dashboard/pkg/types"
)

// NearBoundaryMargin is the share of a range, measured inward from either
// edge, that is reported as monitor even though the value is in range.
const NearBoundaryMargin = 0.2

// Table holds the soft display bounds per variable.
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

func (t Table) For(v types.Variable) types.Range {
	switch v {
	case types.VariablePH:
		return t.PH
	case types.VariableTurbidity:
		return t.Turbidity
	default:
		return t.Temperature
	}
}

// Classify maps a value to a status given its safe range.
func Classify(value, min, max float64) types.Status {
	if value < min || value > max {
		return types.StatusCritical
	}

	margin := (max - min) * NearBoundaryMargin
	if value < min+margin || value > max-margin {
		return types.StatusMonitor
	}

	return types.StatusOptimal
}

// Classify returns the status of every variable in the reading.
func (t Table) Classify(r types.Reading) map[types.Variable]types.VariableStatus {
	statuses := make(map[types.Variable]types.VariableStatus, len(types.Variables))

	for _, v := range types.Variables {
		bounds := t.For(v)
		status := Classify(r.Value(v), bounds.Min, bounds.Max)
		statuses[v] = types.VariableStatus{
			Status: status,
			Label:  Label(v, status),
		}
	}

	return statuses
}

// Label is the badge text shown for a status. Critical values share the
// monitor badge, the alert list carries the severity.
func Label(v types.Variable, s types.Status) string {
	if s != types.StatusOptimal {
		return "Monitor"
	}
	if v == types.VariableTurbidity {
		return "Clear"
	}
	return "Optimal"
}
