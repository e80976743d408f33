package trends

import (
	"fmt"
	"math"
	"time"

	"github.com/diwise/aquavise-dashboard/pkg/types"
)

type RandomSource interface {
	Float64() float64
}

const (
	DailyPoints  = 24
	WeeklyPoints = 7
)

var weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Ranges of the synthetic chart data. These are independent of the live
// simulator.
var (
	temperatureRange = types.Range{Min: 27, Max: 30}
	phRange          = types.Range{Min: 6.8, Max: 7.8}
	turbidityRange   = types.Range{Min: 15, Max: 40}
)

// DailySeries returns one point per hour for the last 24 hours, oldest first,
// ending with the hour of now.
func DailySeries(now time.Time, rnd RandomSource) []types.TrendPoint {
	points := make([]types.TrendPoint, 0, DailyPoints)

	for i := DailyPoints - 1; i >= 0; i-- {
		at := now.Add(-time.Duration(i) * time.Hour)
		y, m, d := at.Date()
		t := time.Date(y, m, d, at.Hour(), 0, 0, 0, at.Location())
		points = append(points, sample(fmt.Sprintf("%d:00", t.Hour()), t, rnd))
	}

	return points
}

// WeeklySeries returns one point per weekday, Monday through Sunday of the
// week containing now.
func WeeklySeries(now time.Time, rnd RandomSource) []types.TrendPoint {
	points := make([]types.TrendPoint, 0, WeeklyPoints)

	offset := (int(now.Weekday()) + 6) % 7
	y, m, d := now.Date()
	monday := time.Date(y, m, d-offset, 0, 0, 0, 0, now.Location())

	for i, label := range weekdays {
		points = append(points, sample(label, monday.AddDate(0, 0, i), rnd))
	}

	return points
}

func Generate(now time.Time, rnd RandomSource) types.Trends {
	return types.Trends{
		Daily:  DailySeries(now, rnd),
		Weekly: WeeklySeries(now, rnd),
	}
}

func sample(label string, t time.Time, rnd RandomSource) types.TrendPoint {
	return types.TrendPoint{
		Label:       label,
		Time:        t,
		Temperature: math.Round(uniform(temperatureRange, rnd)*10) / 10,
		PH:          math.Round(uniform(phRange, rnd)*10) / 10,
		Turbidity:   int(math.Round(uniform(turbidityRange, rnd))),
	}
}

func uniform(r types.Range, rnd RandomSource) float64 {
	return r.Min + rnd.Float64()*(r.Max-r.Min)
}
