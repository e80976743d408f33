package simulator

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/diwise/aquavise-dashboard/pkg/types"
)

// RandomSource yields uniformly distributed values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

func NewRandomSource(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed))
}

// State is the unrounded value of each variable carried between ticks.
type State struct {
	Temperature float64 `yaml:"temperature"`
	PH          float64 `yaml:"ph"`
	Turbidity   float64 `yaml:"turbidity"`
}

type Limits struct {
	Temperature types.Range `yaml:"temperature"`
	PH          types.Range `yaml:"ph"`
	Turbidity   types.Range `yaml:"turbidity"`
}

type Config struct {
	Interval time.Duration `yaml:"interval"`
	Start    State         `yaml:"start"`
	Steps    State         `yaml:"steps"`
	Limits   Limits        `yaml:"limits"`
}

func DefaultConfig() Config {
	return Config{
		Interval: 3 * time.Second,
		Start:    State{Temperature: 28.5, PH: 7.2, Turbidity: 25},
		Steps:    State{Temperature: 0.3, PH: 0.1, Turbidity: 3},
		Limits: Limits{
			Temperature: types.Range{Min: 26, Max: 31},
			PH:          types.Range{Min: 6.8, Max: 8.2},
			Turbidity:   types.Range{Min: 15, Max: 45},
		},
	}
}

// Advance applies one random-walk step to every variable and clamps the
// result. Random values are drawn in the order temperature, pH, turbidity.
func Advance(s State, rnd RandomSource, cfg Config) State {
	return State{
		Temperature: walk(s.Temperature, cfg.Steps.Temperature, cfg.Limits.Temperature, rnd),
		PH:          walk(s.PH, cfg.Steps.PH, cfg.Limits.PH, rnd),
		Turbidity:   walk(s.Turbidity, cfg.Steps.Turbidity, cfg.Limits.Turbidity, rnd),
	}
}

func walk(value, magnitude float64, limits types.Range, rnd RandomSource) float64 {
	value += (rnd.Float64() - 0.5) * 2 * magnitude
	return limits.Clamp(value)
}

// ToReading rounds a state for display and stamps it.
func ToReading(s State, at time.Time) types.Reading {
	return types.Reading{
		Temperature: roundTenth(s.Temperature),
		PH:          roundTenth(s.PH),
		Turbidity:   int(math.Round(s.Turbidity)),
		Timestamp:   at,
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

type Simulator struct {
	mu    sync.Mutex
	state State
	cfg   Config
	rnd   RandomSource
	now   func() time.Time
}

type Option func(*Simulator)

func WithClock(now func() time.Time) Option {
	return func(s *Simulator) {
		s.now = now
	}
}

func New(cfg Config, rnd RandomSource, opts ...Option) *Simulator {
	s := &Simulator{
		state: cfg.Start,
		cfg:   cfg,
		rnd:   rnd,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Tick advances the simulator state one step and returns the resulting reading.
func (s *Simulator) Tick() types.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Advance(s.state, s.rnd, s.cfg)
	return ToReading(s.state, s.now())
}

func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Simulator) Interval() time.Duration {
	return s.cfg.Interval
}
