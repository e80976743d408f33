package simulator

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

type sequence struct {
	values []float64
	pos    int
}

func (s *sequence) Float64() float64 {
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}

func TestThatTickWithCenteredRandomKeepsStartValues(t *testing.T) {
	is := is.New(t)

	s := New(DefaultConfig(), &sequence{values: []float64{0.5}})
	r := s.Tick()

	is.Equal(r.Temperature, 28.5)
	is.Equal(r.PH, 7.2)
	is.Equal(r.Turbidity, 25)
}

func TestThatMaximalStepsMoveByStepMagnitude(t *testing.T) {
	is := is.New(t)

	s := New(DefaultConfig(), &sequence{values: []float64{1.0}})
	r := s.Tick()

	is.Equal(r.Temperature, 28.8)
	is.Equal(r.PH, 7.3)
	is.Equal(r.Turbidity, 28)

	state := s.State()
	is.True(state.Temperature > 28.799 && state.Temperature < 28.801)
}

func TestThatValuesAreClampedToLimits(t *testing.T) {
	is := is.New(t)

	up := New(DefaultConfig(), &sequence{values: []float64{0.999}})
	for i := 0; i < 100; i++ {
		up.Tick()
	}
	r := up.Tick()
	is.Equal(r.Temperature, 31.0)
	is.Equal(r.PH, 8.2)
	is.Equal(r.Turbidity, 45)

	down := New(DefaultConfig(), &sequence{values: []float64{0.0}})
	for i := 0; i < 100; i++ {
		down.Tick()
	}
	r = down.Tick()
	is.Equal(r.Temperature, 26.0)
	is.Equal(r.PH, 6.8)
	is.Equal(r.Turbidity, 15)
}

func TestThatRandomWalkStaysWithinLimits(t *testing.T) {
	is := is.New(t)

	cfg := DefaultConfig()
	s := New(cfg, NewRandomSource(42))

	for i := 0; i < 10000; i++ {
		r := s.Tick()
		is.True(cfg.Limits.Temperature.Contains(r.Temperature))
		is.True(cfg.Limits.PH.Contains(r.PH))
		is.True(cfg.Limits.Turbidity.Contains(float64(r.Turbidity)))

		st := s.State()
		is.True(cfg.Limits.Temperature.Contains(st.Temperature))
		is.True(cfg.Limits.PH.Contains(st.PH))
		is.True(cfg.Limits.Turbidity.Contains(st.Turbidity))
	}
}

func TestThatReadingsAreRounded(t *testing.T) {
	is := is.New(t)

	r := ToReading(State{Temperature: 28.46, PH: 7.249, Turbidity: 24.5}, time.Time{})

	is.Equal(r.Temperature, 28.5)
	is.Equal(r.PH, 7.2)
	is.Equal(r.Turbidity, 25)
}

func TestThatTickIsStampedWithClock(t *testing.T) {
	is := is.New(t)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := New(DefaultConfig(), &sequence{values: []float64{0.5}}, WithClock(func() time.Time { return at }))

	is.Equal(s.Tick().Timestamp, at)
}

func TestThatSimulatorsDoNotShareState(t *testing.T) {
	is := is.New(t)

	a := New(DefaultConfig(), &sequence{values: []float64{0.999}})
	b := New(DefaultConfig(), &sequence{values: []float64{0.5}})

	a.Tick()
	a.Tick()

	is.Equal(b.Tick().Temperature, 28.5)
}
