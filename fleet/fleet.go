package fleet

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"warebot/catalog"
	"warebot/charging"
	"warebot/config"
	"warebot/inventory"
	"warebot/request"
	"warebot/robot"
)

var (
	// ErrNotRunning is returned by Stop when the fleet never started.
	ErrNotRunning = errors.New("fleet is not running")
	// ErrAlreadyStarted is returned by Start on a fleet that has already
	// run. A stopped fleet is not restartable; build a new one.
	ErrAlreadyStarted = errors.New("fleet already started")
	// ErrUnknownPart is returned by Submit for a part id not in the catalog.
	ErrUnknownPart = errors.New("unknown part")
)

const (
	stateNew = iota
	stateRunning
	stateStopped
)

// Emitter receives fleet-level events.
type Emitter interface {
	EmitFleetStarted(robots, stations int)
	EmitFleetStopped()
	EmitRequestQueued(req request.Request, source string)
}

// Fleet owns the shared resources of the simulation and the goroutines that
// animate them: one per robot, one per station.
type Fleet struct {
	queue  *request.Queue
	inv    *inventory.Inventory
	pool   *charging.Pool
	ledger *request.Ledger
	robots []*robot.Robot

	acquireMu sync.Mutex
	emitter   Emitter

	state  atomic.Int32
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New wires queue, inventory, charging pool, ledger and robots together.
// Robots are named "R-001".."R-NNN", stations "CS-A".."CS-Z".
func New(cfg *config.Config, inv *inventory.Inventory, robotEmitter robot.Emitter, chargeEmitter charging.Emitter, fleetEmitter Emitter) *Fleet {
	f := &Fleet{
		queue:   request.NewQueue(),
		inv:     inv,
		ledger:  request.NewLedger(),
		emitter: fleetEmitter,
	}
	f.pool = charging.NewPool(cfg.Fleet.StationCount, cfg.Battery.ChargeTick, cfg.Battery.ChargePerTick, chargeEmitter)

	rcfg := robot.Config{
		MaxBattery:      cfg.Battery.Max,
		LowThreshold:    cfg.Battery.LowThreshold,
		AvgDrain:        cfg.Battery.AvgDrain,
		TaskDuration:    cfg.Fleet.TaskDuration,
		IdlePoll:        cfg.Fleet.IdlePoll,
		ChargingTimeout: cfg.Battery.ChargingTimeout,
	}
	for i := 0; i < cfg.Fleet.RobotCount; i++ {
		id := fmt.Sprintf("R-%03d", i+1)
		f.robots = append(f.robots, robot.New(id, rcfg, robot.Deps{
			Queue:     f.queue,
			Inventory: inv,
			Pool:      f.pool,
			Ledger:    f.ledger,
			Emitter:   robotEmitter,
			AcquireMu: &f.acquireMu,
		}))
	}
	return f
}

// Start spawns the station and robot goroutines. A fleet runs at most once.
func (f *Fleet) Start() error {
	if !f.state.CompareAndSwap(stateNew, stateRunning) {
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel

	for _, s := range f.pool.Stations() {
		f.wg.Add(1)
		go func(s *charging.Station) {
			defer f.wg.Done()
			s.Run(ctx)
		}(s)
	}
	for _, r := range f.robots {
		f.wg.Add(1)
		go func(r *robot.Robot) {
			defer f.wg.Done()
			r.Run(ctx)
		}(r)
	}

	log.Printf("fleet: started %d robots, %d stations", len(f.robots), len(f.pool.Stations()))
	if f.emitter != nil {
		f.emitter.EmitFleetStarted(len(f.robots), len(f.pool.Stations()))
	}
	return nil
}

// Stop cancels every robot and station and waits for them to exit. After
// Stop returns, every recorded request id carries a terminal status.
func (f *Fleet) Stop() error {
	if !f.state.CompareAndSwap(stateRunning, stateStopped) {
		return ErrNotRunning
	}
	f.cancel()
	f.wg.Wait()
	log.Printf("fleet: stopped")
	if f.emitter != nil {
		f.emitter.EmitFleetStopped()
	}
	return nil
}

// Running reports whether the fleet goroutines are live.
func (f *Fleet) Running() bool {
	return f.state.Load() == stateRunning
}

// Submit resolves a part id, mints a request and queues it.
func (f *Fleet) Submit(partID string, qty int) (request.Request, error) {
	return f.SubmitFrom(partID, qty, "api")
}

// SubmitFrom is Submit with an explicit source tag for the queued event.
func (f *Fleet) SubmitFrom(partID string, qty int, source string) (request.Request, error) {
	part, ok := f.inv.FindByID(partID)
	if !ok {
		return request.Request{}, fmt.Errorf("%w: %s", ErrUnknownPart, partID)
	}
	req, err := request.New(part, qty)
	if err != nil {
		return request.Request{}, err
	}
	f.queue.Offer(req)
	if f.emitter != nil {
		f.emitter.EmitRequestQueued(req, source)
	}
	return req, nil
}

// --- Accessors and snapshots for the dashboard ---

func (f *Fleet) Queue() *request.Queue           { return f.queue }
func (f *Fleet) Inventory() *inventory.Inventory { return f.inv }
func (f *Fleet) Ledger() *request.Ledger         { return f.ledger }
func (f *Fleet) Pool() *charging.Pool            { return f.pool }

// Robots returns a snapshot of every robot.
func (f *Fleet) Robots() []robot.Snapshot {
	out := make([]robot.Snapshot, 0, len(f.robots))
	for _, r := range f.robots {
		out = append(out, r.Snapshot())
	}
	return out
}

// Robot returns the live robot with the given id, for control operations.
func (f *Fleet) Robot(id string) (*robot.Robot, bool) {
	for _, r := range f.robots {
		if r.ID() == id {
			return r, true
		}
	}
	return nil, false
}

// Stations returns the occupancy snapshot of every charging station.
func (f *Fleet) Stations() []charging.StationSnapshot {
	return f.pool.Snapshot()
}

// InventoryLevels returns stock keyed by part id for JSON consumers.
func (f *Fleet) InventoryLevels() map[string]int {
	snap := f.inv.Snapshot()
	out := make(map[string]int, len(snap))
	for part, qty := range snap {
		out[part.ID] = qty
	}
	return out
}

// Parts returns the catalog entries known to the inventory.
func (f *Fleet) Parts() []catalog.Part {
	return f.inv.Parts()
}
