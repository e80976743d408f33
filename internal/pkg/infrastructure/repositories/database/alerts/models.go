package alerts

import (
	"time"

	"github.com/diwise/aquavise-dashboard/pkg/types"
)

type Alert struct {
	ID        string    `gorm:"primarykey"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Variable   string `gorm:"index"`
	Direction  string
	Message    string
	Value      float64
	Active     bool `gorm:"index"`
	RaisedAt   time.Time
	ObservedAt time.Time
	ClearedAt  *time.Time
}

func fromRecord(r types.AlertRecord) Alert {
	a := Alert{
		ID:         r.ID,
		Variable:   string(r.Variable),
		Direction:  string(r.Direction),
		Message:    r.Message,
		Value:      r.Value,
		Active:     r.Active,
		RaisedAt:   r.RaisedAt.UTC(),
		ObservedAt: r.ObservedAt.UTC(),
	}

	if r.ClearedAt != nil {
		clearedAt := r.ClearedAt.UTC()
		a.ClearedAt = &clearedAt
	}

	return a
}

func (a Alert) toRecord() types.AlertRecord {
	r := types.AlertRecord{
		ID:         a.ID,
		Variable:   types.Variable(a.Variable),
		Direction:  types.Direction(a.Direction),
		Message:    a.Message,
		Value:      a.Value,
		Active:     a.Active,
		RaisedAt:   a.RaisedAt,
		ObservedAt: a.ObservedAt,
		ClearedAt:  a.ClearedAt,
	}

	return r
}
