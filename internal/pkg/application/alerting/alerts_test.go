package alerting

import (
	"strings"
	"testing"

	"github.com/diwise/aquavise-dashboard/pkg/types"
	"github.com/matryer/is"
)

func TestThatHighTemperatureRaisesOneAlert(t *testing.T) {
	is := is.New(t)

	alerts := AlertsFor(types.Reading{Temperature: 33, PH: 7.2, Turbidity: 25})

	is.Equal(len(alerts), 1)
	is.Equal(alerts[0].Variable, types.VariableTemperature)
	is.Equal(alerts[0].Direction, types.DirectionHigh)
	is.True(strings.Contains(alerts[0].Message, "too high"))
	is.Equal(alerts[0].Message, "Temperature too high (>32°C)")
	is.Equal(alerts[0].Value, 33.0)
}

func TestThatLowTemperatureRaisesOneAlert(t *testing.T) {
	is := is.New(t)

	alerts := AlertsFor(types.Reading{Temperature: 24.9, PH: 7.2, Turbidity: 25})

	is.Equal(len(alerts), 1)
	is.Equal(alerts[0].Message, "Temperature too low (<25°C)")
	is.Equal(alerts[0].Value, 24.9)
}

func TestThatReadingInsideBoundsRaisesNoAlerts(t *testing.T) {
	is := is.New(t)

	alerts := AlertsFor(types.Reading{Temperature: 28, PH: 7.2, Turbidity: 25})

	is.True(alerts != nil)
	is.Equal(len(alerts), 0)
}

func TestThatBoundsAreInclusive(t *testing.T) {
	is := is.New(t)

	alerts := AlertsFor(types.Reading{Temperature: 32, PH: 6.5, Turbidity: 60})
	is.Equal(len(alerts), 0)

	alerts = AlertsFor(types.Reading{Temperature: 25, PH: 8.5, Turbidity: 10})
	is.Equal(len(alerts), 0)
}

func TestThatSeveralVariablesCanAlertAtOnce(t *testing.T) {
	is := is.New(t)

	alerts := AlertsFor(types.Reading{Temperature: 33, PH: 9.0, Turbidity: 25})

	is.Equal(len(alerts), 2)
	is.Equal(alerts[0].Variable, types.VariableTemperature)
	is.Equal(alerts[0].Direction, types.DirectionHigh)
	is.Equal(alerts[1].Variable, types.VariablePH)
	is.Equal(alerts[1].Message, "pH too high (>8.5)")
}

func TestThatAlertsAreOrderedByVariable(t *testing.T) {
	is := is.New(t)

	alerts := AlertsFor(types.Reading{Temperature: 20, PH: 6.0, Turbidity: 80})

	is.Equal(len(alerts), 3)
	is.Equal(alerts[0].Variable, types.VariableTemperature)
	is.Equal(alerts[1].Variable, types.VariablePH)
	is.Equal(alerts[1].Message, "pH too low (<6.5)")
	is.Equal(alerts[2].Variable, types.VariableTurbidity)
	is.Equal(alerts[2].Message, "Turbidity too high (>60 NTU)")
	is.Equal(alerts[2].Value, 80.0)
}

func TestThatLowTurbidityRaisesAlert(t *testing.T) {
	is := is.New(t)

	alerts := AlertsFor(types.Reading{Temperature: 28, PH: 7.2, Turbidity: 9})

	is.Equal(len(alerts), 1)
	is.Equal(alerts[0].Message, "Turbidity too low (<10 NTU)")
}
