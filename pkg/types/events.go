package types

import (
	"time"
)

type AlertRaised struct {
	Alert     AlertRecord `json:"alert"`
	Timestamp time.Time   `json:"timestamp"`
}

func (a *AlertRaised) ContentType() string {
	return "application/json"
}
func (a *AlertRaised) TopicName() string {
	return "aquavise.alertRaised"
}

type AlertCleared struct {
	ID        string    `json:"id"`
	Variable  Variable  `json:"variable"`
	Timestamp time.Time `json:"timestamp"`
}

func (a *AlertCleared) ContentType() string {
	return "application/json"
}
func (a *AlertCleared) TopicName() string {
	return "aquavise.alertCleared"
}
