package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/diwise/aquavise-dashboard/internal/pkg/application/alerting"
	"github.com/diwise/aquavise-dashboard/internal/pkg/application/classifier"
	"github.com/diwise/aquavise-dashboard/internal/pkg/application/insights"
	"github.com/diwise/aquavise-dashboard/internal/pkg/application/schedule"
	"github.com/diwise/aquavise-dashboard/internal/pkg/application/simulator"
	"github.com/diwise/aquavise-dashboard/internal/pkg/application/trends"
	"github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/logging"
	"github.com/diwise/aquavise-dashboard/pkg/types"
	"github.com/patrickmn/go-cache"
)

var ErrUnknownDevice = errors.New("unknown device")

const DefaultSession = "default"

// Listener is called with every new snapshot, in tick order.
type Listener func(ctx context.Context, snapshot types.Snapshot)

type Dashboard interface {
	Current(ctx context.Context) types.Snapshot
	Activate()
	Deactivate()
	Viewers() int

	Trends(ctx context.Context, session string) types.Trends
	Equipment(ctx context.Context, session string) types.Equipment
	SetEquipment(ctx context.Context, session, device string, on bool) (types.Equipment, error)

	Close()
}

type Thresholds struct {
	Classifier classifier.Table `yaml:"classifier"`
	Alerts     alerting.Table   `yaml:"alerts"`
	Insights   insights.Table   `yaml:"insights"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Classifier: classifier.DefaultTable(),
		Alerts:     alerting.DefaultTable(),
		Insights:   insights.DefaultTable(),
	}
}

type dashboardSvc struct {
	ctx        context.Context
	sim        *simulator.Simulator
	thresholds Thresholds
	listeners  []Listener
	now        func() time.Time

	// serializes ticks so that listeners observe snapshots in order
	tickMu   sync.Mutex
	mu       sync.RWMutex
	snapshot *types.Snapshot

	lifecycle sync.Mutex
	viewers   int
	ticker    *schedule.Repeating

	rndMu    sync.Mutex
	rnd      trends.RandomSource
	equipMu  sync.Mutex
	sessions *cache.Cache
}

type Option func(*dashboardSvc)

func WithListener(l Listener) Option {
	return func(d *dashboardSvc) {
		d.listeners = append(d.listeners, l)
	}
}

// WithSessionTTL sets how long trends and equipment state are kept for an
// idle session.
func WithSessionTTL(ttl time.Duration) Option {
	return func(d *dashboardSvc) {
		d.sessions = cache.New(ttl, 2*ttl)
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *dashboardSvc) {
		d.now = now
	}
}

// New creates a dashboard over the simulator. The simulator only advances
// while at least one viewer is active, or lazily when a snapshot is requested
// before the first tick.
func New(ctx context.Context, sim *simulator.Simulator, thresholds Thresholds, rnd trends.RandomSource, opts ...Option) Dashboard {
	d := &dashboardSvc{
		ctx:        ctx,
		sim:        sim,
		thresholds: thresholds,
		now:        time.Now,
		rnd:        rnd,
		sessions:   cache.New(30*time.Minute, time.Hour),
	}

	for _, opt := range opts {
		opt(d)
	}

	d.ticker = schedule.Every(sim.Interval(), d.tick)

	return d
}

func (d *dashboardSvc) Current(ctx context.Context) types.Snapshot {
	if s, ok := d.latest(); ok {
		return s
	}

	d.tickMu.Lock()
	defer d.tickMu.Unlock()

	if s, ok := d.latest(); ok {
		return s
	}

	return d.advance(ctx)
}

func (d *dashboardSvc) latest() (types.Snapshot, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.snapshot == nil {
		return types.Snapshot{}, false
	}
	return *d.snapshot, true
}

func (d *dashboardSvc) tick(ctx context.Context) {
	d.tickMu.Lock()
	defer d.tickMu.Unlock()

	d.advance(ctx)
}

// advance must be called with tickMu held.
func (d *dashboardSvc) advance(ctx context.Context) types.Snapshot {
	reading := d.sim.Tick()
	s := d.build(reading)

	d.mu.Lock()
	d.snapshot = &s
	d.mu.Unlock()

	for _, l := range d.listeners {
		l(ctx, s)
	}

	return s
}

func (d *dashboardSvc) build(r types.Reading) types.Snapshot {
	return types.Snapshot{
		Reading:    r,
		Statuses:   d.thresholds.Classifier.Classify(r),
		Alerts:     d.thresholds.Alerts.AlertsFor(r),
		Insights:   d.thresholds.Insights.InsightsFor(r),
		LastUpdate: r.Timestamp,
	}
}

// Activate registers a viewer. The first viewer starts the periodic updates.
func (d *dashboardSvc) Activate() {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()

	d.viewers++
	if d.viewers == 1 {
		log := logging.GetLoggerFromContext(d.ctx)
		log.Debug().Msg("first viewer connected, starting simulation")
		d.ticker.Start(d.ctx)
	}
}

// Deactivate releases a viewer. Updates stop when the last viewer leaves.
func (d *dashboardSvc) Deactivate() {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()

	if d.viewers == 0 {
		return
	}

	d.viewers--
	if d.viewers == 0 {
		log := logging.GetLoggerFromContext(d.ctx)
		log.Debug().Msg("last viewer disconnected, pausing simulation")
		d.ticker.Stop()
	}
}

func (d *dashboardSvc) Viewers() int {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()
	return d.viewers
}

func (d *dashboardSvc) Close() {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()

	d.viewers = 0
	d.ticker.Stop()
}

func sessionOrDefault(session string) string {
	if session == "" {
		return DefaultSession
	}
	return session
}

// Trends returns the chart series of a session. They are generated on first
// request and stay fixed for the lifetime of the session.
func (d *dashboardSvc) Trends(ctx context.Context, session string) types.Trends {
	key := "trends:" + sessionOrDefault(session)

	if x, found := d.sessions.Get(key); found {
		return x.(types.Trends)
	}

	d.rndMu.Lock()
	t := trends.Generate(d.now(), d.rnd)
	d.rndMu.Unlock()

	if err := d.sessions.Add(key, t, cache.DefaultExpiration); err != nil {
		// another request generated them first
		if x, found := d.sessions.Get(key); found {
			return x.(types.Trends)
		}
	}

	return t
}

func defaultEquipment() types.Equipment {
	return types.Equipment{
		Aerator:        true,
		WastewaterPump: false,
		FreshwaterPump: true,
	}
}

func (d *dashboardSvc) Equipment(ctx context.Context, session string) types.Equipment {
	d.equipMu.Lock()
	defer d.equipMu.Unlock()

	return d.equipment(sessionOrDefault(session))
}

func (d *dashboardSvc) equipment(session string) types.Equipment {
	if x, found := d.sessions.Get("equipment:" + session); found {
		return x.(types.Equipment)
	}
	return defaultEquipment()
}

func (d *dashboardSvc) SetEquipment(ctx context.Context, session, device string, on bool) (types.Equipment, error) {
	d.equipMu.Lock()
	defer d.equipMu.Unlock()

	session = sessionOrDefault(session)
	e := d.equipment(session)

	switch device {
	case types.DeviceAerator:
		e.Aerator = on
	case types.DeviceWastewaterPump:
		e.WastewaterPump = on
	case types.DeviceFreshwaterPump:
		e.FreshwaterPump = on
	default:
		return e, ErrUnknownDevice
	}

	d.sessions.Set("equipment:"+session, e, cache.DefaultExpiration)

	log := logging.GetLoggerFromContext(ctx)
	log.Info().Str("session", session).Str("device", device).Bool("on", on).Msg("equipment toggled")

	return e, nil
}
