package types

import (
	"time"
)

type Variable string

const (
	VariableTemperature Variable = "temperature"
	VariablePH          Variable = "ph"
	VariableTurbidity   Variable = "turbidity"
)

// Variables lists the monitored variables in display and evaluation order.
var Variables = []Variable{VariableTemperature, VariablePH, VariableTurbidity}

// Reading is one simulated snapshot of the water quality. Temperature and pH
// carry one decimal, turbidity is whole NTU.
type Reading struct {
	Temperature float64   `json:"temperature"`
	PH          float64   `json:"ph"`
	Turbidity   int       `json:"turbidity"`
	Timestamp   time.Time `json:"timestamp"`
}

func (r Reading) Value(v Variable) float64 {
	switch v {
	case VariableTemperature:
		return r.Temperature
	case VariablePH:
		return r.PH
	case VariableTurbidity:
		return float64(r.Turbidity)
	}
	return 0
}

type Status string

const (
	StatusOptimal  Status = "optimal"
	StatusMonitor  Status = "monitor"
	StatusCritical Status = "critical"
)

type Direction string

const (
	DirectionHigh Direction = "high"
	DirectionLow  Direction = "low"
)

type Alert struct {
	Variable  Variable  `json:"variable"`
	Direction Direction `json:"direction"`
	Message   string    `json:"message"`
	Value     float64   `json:"value"`
}

type AlertRecord struct {
	ID         string     `json:"id"`
	Variable   Variable   `json:"variable"`
	Direction  Direction  `json:"direction"`
	Message    string     `json:"message"`
	Value      float64    `json:"value"`
	Active     bool       `json:"active"`
	RaisedAt   time.Time  `json:"raisedAt"`
	ObservedAt time.Time  `json:"observedAt"`
	ClearedAt  *time.Time `json:"clearedAt,omitempty"`
}

type VariableStatus struct {
	Status Status `json:"status"`
	Label  string `json:"label"`
}

type Snapshot struct {
	Reading    Reading                     `json:"reading"`
	Statuses   map[Variable]VariableStatus `json:"statuses"`
	Alerts     []Alert                     `json:"alerts"`
	Insights   []string                    `json:"insights"`
	LastUpdate time.Time                   `json:"lastUpdate"`
}

type TrendPoint struct {
	Label       string    `json:"time"`
	Time        time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	PH          float64   `json:"ph"`
	Turbidity   int       `json:"turbidity"`
}

type Trends struct {
	Daily  []TrendPoint `json:"daily"`
	Weekly []TrendPoint `json:"weekly"`
}

const (
	DeviceAerator        = "aerator"
	DeviceWastewaterPump = "wastewaterPump"
	DeviceFreshwaterPump = "freshwaterPump"
)

type Equipment struct {
	Aerator        bool `json:"aerator"`
	WastewaterPump bool `json:"wastewaterPump"`
	FreshwaterPump bool `json:"freshwaterPump"`
}

type Preferences struct {
	Theme    string `json:"theme" validate:"oneof=light blue green"`
	Language string `json:"language" validate:"oneof=en yo ha ig"`
}

type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

func (r Range) Contains(value float64) bool {
	return value >= r.Min && value <= r.Max
}

func (r Range) Clamp(value float64) float64 {
	if value < r.Min {
		return r.Min
	}
	if value > r.Max {
		return r.Max
	}
	return value
}
