package insights

import (
	"github.com/diwise/aquavise-dashboard/pkg/types"
)

const AllOptimal = "All parameters within optimal ranges - system performing well"

// Table holds the advisory thresholds.
type Table struct {
	Temperature  types.Range `yaml:"temperature"`
	PH           types.Range `yaml:"ph"`
	TurbidityMax float64     `yaml:"turbidityMax"`
}

func DefaultTable() Table {
	return Table{
		Temperature:  types.Range{Min: 26, Max: 30},
		PH:           types.Range{Min: 7.0, Max: 8.0},
		TurbidityMax: 45,
	}
}

func InsightsFor(r types.Reading) []string {
	return DefaultTable().InsightsFor(r)
}

// InsightsFor returns at least one advisory message for the reading.
func (t Table) InsightsFor(r types.Reading) []string {
	insights := []string{}

	if r.Temperature > t.Temperature.Max {
		insights = append(insights, "Temperature is elevated - consider increasing water circulation")
	} else if r.Temperature < t.Temperature.Min {
		insights = append(insights, "Temperature is low - monitor fish behavior closely")
	}

	if r.PH < t.PH.Min {
		insights = append(insights, "pH is slightly acidic - check alkalinity levels")
	} else if r.PH > t.PH.Max {
		insights = append(insights, "pH is elevated - consider water treatment")
	}

	if float64(r.Turbidity) > t.TurbidityMax {
		insights = append(insights, "High turbidity detected - filtration system check recommended")
	}

	if len(insights) == 0 {
		insights = append(insights, AllOptimal)
	}

	return insights
}
