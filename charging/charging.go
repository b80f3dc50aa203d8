package charging

import (
	"context"
	"sync"
	"time"
)

// Chargeable is what a station needs from a robot. The robot hands itself to
// the pool; while docked, the station owns its status and battery.
type Chargeable interface {
	// ID identifies the robot in snapshots and events.
	ID() string
	// BeginCharging marks the robot as charging.
	BeginCharging()
	// AddCharge adds units of battery, clamped at maximum, and reports
	// whether the battery is now full.
	AddCharge(units int) bool
	// Release returns the robot to idle. Called on every exit path,
	// including cancellation mid-charge.
	Release()
}

// Emitter receives charge lifecycle events.
type Emitter interface {
	EmitChargingStarted(stationID, robotID string)
	EmitChargingFinished(stationID, robotID string, full bool)
}

// Pool multiplexes a FIFO queue of low-battery robots over a fixed set of
// stations. The handoff channel is unbuffered: a successful send means a
// station has committed to serving the robot, and a timed-out Enqueue
// guarantees the robot is not left in the queue.
type Pool struct {
	queue    chan Chargeable
	stations []*Station
	tick     time.Duration
	perTick  int
	emitter  Emitter
}

// Station serves one robot at a time from the shared queue.
type Station struct {
	id   string
	pool *Pool

	mu       sync.Mutex
	occupant Chargeable
}

// StationSnapshot is a read-only view for the dashboard.
type StationSnapshot struct {
	ID       string `json:"id"`
	Occupant string `json:"occupant,omitempty"`
}

// NewPool creates a pool with stationCount stations named "CS-A", "CS-B", ...
func NewPool(stationCount int, tick time.Duration, perTick int, emitter Emitter) *Pool {
	p := &Pool{
		queue:   make(chan Chargeable),
		tick:    tick,
		perTick: perTick,
		emitter: emitter,
	}
	for i := 0; i < stationCount; i++ {
		p.stations = append(p.stations, &Station{
			id:   "CS-" + string(rune('A'+i)),
			pool: p,
		})
	}
	return p
}

// Stations returns the pool's stations for the orchestrator to run.
func (p *Pool) Stations() []*Station { return p.stations }

// Enqueue offers a robot for charging, waiting up to timeout for a station
// to take it. Returns false on timeout or cancellation; either way the robot
// is no longer queued.
func (p *Pool) Enqueue(ctx context.Context, c Chargeable, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case p.queue <- c:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// Snapshot returns the current occupancy of every station.
func (p *Pool) Snapshot() []StationSnapshot {
	out := make([]StationSnapshot, 0, len(p.stations))
	for _, s := range p.stations {
		snap := StationSnapshot{ID: s.id}
		s.mu.Lock()
		if s.occupant != nil {
			snap.Occupant = s.occupant.ID()
		}
		s.mu.Unlock()
		out = append(out, snap)
	}
	return out
}

// ID returns the station identifier.
func (s *Station) ID() string { return s.id }

// Occupant returns the id of the docked robot, or "" when free.
func (s *Station) Occupant() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.occupant == nil {
		return ""
	}
	return s.occupant.ID()
}

// Run is the station's serve loop: block on the queue, charge a robot to
// full, release, repeat until cancelled.
func (s *Station) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-s.pool.queue:
			s.serve(ctx, c)
		}
	}
}

// serve charges one robot. The deferred release guarantees the robot leaves
// CHARGING and the station becomes unoccupied on every exit path.
func (s *Station) serve(ctx context.Context, c Chargeable) {
	s.mu.Lock()
	s.occupant = c
	s.mu.Unlock()

	c.BeginCharging()
	if s.pool.emitter != nil {
		s.pool.emitter.EmitChargingStarted(s.id, c.ID())
	}

	full := false
	defer func() {
		c.Release()
		s.mu.Lock()
		s.occupant = nil
		s.mu.Unlock()
		if s.pool.emitter != nil {
			s.pool.emitter.EmitChargingFinished(s.id, c.ID(), full)
		}
	}()

	ticker := time.NewTicker(s.pool.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.AddCharge(s.pool.perTick) {
				full = true
				return
			}
		}
	}
}
