package robot

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"warebot/charging"
	"warebot/inventory"
	"warebot/request"
)

// Status is the robot lifecycle state. String values are the names shown on
// the dashboard and written to the journal.
type Status int32

const (
	StatusIdle Status = iota
	StatusWorking
	StatusLowBattery
	StatusWaitingForCharge
	StatusCharging
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusWorking:
		return "WORKING"
	case StatusLowBattery:
		return "LOW_BATTERY"
	case StatusWaitingForCharge:
		return "WAITING_FOR_CHARGE"
	case StatusCharging:
		return "CHARGING"
	default:
		return "UNKNOWN"
	}
}

// Config carries the tunables governing a robot's dynamics.
type Config struct {
	MaxBattery      int
	LowThreshold    int
	AvgDrain        int
	TaskDuration    time.Duration
	IdlePoll        time.Duration
	ChargingTimeout time.Duration
}

// Emitter receives robot lifecycle events.
type Emitter interface {
	EmitRobotStatusChanged(robotID string, oldStatus, newStatus Status, battery int)
	EmitRequestStarted(robotID string, req request.Request)
	EmitRequestCompleted(robotID string, req request.Request, battery int)
	EmitRequestFailed(robotID string, req request.Request, reason string)
}

// Deps is the capability record handed to each robot at construction: the
// shared resources it coordinates through, and nothing else.
type Deps struct {
	Queue     *request.Queue
	Inventory *inventory.Inventory
	Pool      *charging.Pool
	Ledger    *request.Ledger
	Emitter   Emitter

	// AcquireMu serializes task acquisition across the fleet so that two
	// robots never race on the same poll.
	AcquireMu *sync.Mutex
}

// Snapshot is a read-only view of a robot for external readers.
type Snapshot struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Battery int    `json:"battery"`
	TaskID  string `json:"task_id,omitempty"`
}

// Robot is a worker agent cycling IDLE -> WORKING -> charging states. Status
// and battery are atomics so dashboard reads never tear; the current task is
// guarded by its own mutex and is non-nil exactly while WORKING.
type Robot struct {
	id   string
	cfg  Config
	deps Deps

	status  atomic.Int32
	battery atomic.Int64

	taskMu sync.Mutex
	task   *request.Request
}

// New creates an idle robot with a full battery.
func New(id string, cfg Config, deps Deps) *Robot {
	r := &Robot{id: id, cfg: cfg, deps: deps}
	r.battery.Store(int64(cfg.MaxBattery))
	r.status.Store(int32(StatusIdle))
	return r
}

func (r *Robot) ID() string     { return r.id }
func (r *Robot) Status() Status { return Status(r.status.Load()) }
func (r *Robot) Battery() int   { return int(r.battery.Load()) }

// CurrentTask returns a copy of the in-flight request, if any.
func (r *Robot) CurrentTask() (request.Request, bool) {
	r.taskMu.Lock()
	defer r.taskMu.Unlock()
	if r.task == nil {
		return request.Request{}, false
	}
	return *r.task, true
}

// SetBattery forces the battery level, clamped to [0, max]. Used by the
// control API and tests to provoke charging behavior.
func (r *Robot) SetBattery(level int) {
	if level < 0 {
		level = 0
	}
	if level > r.cfg.MaxBattery {
		level = r.cfg.MaxBattery
	}
	r.battery.Store(int64(level))
}

// Snapshot returns a self-consistent view for the dashboard.
func (r *Robot) Snapshot() Snapshot {
	snap := Snapshot{
		ID:      r.id,
		Status:  r.Status().String(),
		Battery: r.Battery(),
	}
	if task, ok := r.CurrentTask(); ok {
		snap.TaskID = task.ID
	}
	return snap
}

func (r *Robot) setStatus(s Status) {
	old := Status(r.status.Swap(int32(s)))
	if old != s && r.deps.Emitter != nil {
		r.deps.Emitter.EmitRobotStatusChanged(r.id, old, s, r.Battery())
	}
}

// Run is the robot's main loop. It exits when ctx is cancelled; an in-flight
// task is recorded as FAILED on the way out.
func (r *Robot) Run(ctx context.Context) {
	for ctx.Err() == nil {
		switch r.Status() {
		case StatusIdle:
			r.handleIdle(ctx)
		case StatusWorking:
			r.handleWorking(ctx)
		case StatusLowBattery:
			r.handleChargeRequest(ctx)
		case StatusWaitingForCharge, StatusCharging:
			sleep(ctx, r.cfg.IdlePoll)
		}
	}
	r.failInFlight()
}

// handleIdle checks the battery, then tries to acquire and secure a task.
func (r *Robot) handleIdle(ctx context.Context) {
	if r.Battery() <= r.cfg.LowThreshold {
		r.setStatus(StatusLowBattery)
		return
	}

	req, ok := r.acquire(ctx)
	if !ok {
		return
	}

	r.taskMu.Lock()
	r.task = &req
	r.taskMu.Unlock()
	r.setStatus(StatusWorking)
}

// acquire polls one request under the fleet-wide acquisition lock; if the
// queue is empty it releases the lock and waits up to IdlePoll for one with
// AwaitOrPoll. It then reserves stock for the request it got.
// Poll-then-reserve: polling first keeps two robots
// off the same request, reserving second keeps two robots off the same
// stock. A request that fails reservation is consumed, not retried.
func (r *Robot) acquire(ctx context.Context) (request.Request, bool) {
	r.deps.AcquireMu.Lock()
	req, ok := r.deps.Queue.Poll()
	r.deps.AcquireMu.Unlock()
	if !ok {
		req, ok = r.deps.Queue.AwaitOrPoll(ctx, r.cfg.IdlePoll)
		if !ok {
			return request.Request{}, false
		}
	}

	reserved, err := r.deps.Inventory.Reserve(req.Part, req.Qty)
	if err != nil {
		failed := req.WithStatus(request.StatusFailed)
		r.deps.Ledger.Record(failed)
		if r.deps.Emitter != nil {
			r.deps.Emitter.EmitRequestFailed(r.id, failed, err.Error())
		}
		return request.Request{}, false
	}
	if !reserved {
		return request.Request{}, false
	}

	started := req.WithStatus(request.StatusInProgress)
	r.deps.Ledger.Record(started)
	if r.deps.Emitter != nil {
		r.deps.Emitter.EmitRequestStarted(r.id, started)
	}
	return started, true
}

// handleWorking simulates the pick, drains the battery and records the
// completed request.
func (r *Robot) handleWorking(ctx context.Context) {
	r.taskMu.Lock()
	task := r.task
	r.taskMu.Unlock()
	if task == nil {
		r.setStatus(StatusIdle)
		return
	}

	if !sleep(ctx, r.cfg.TaskDuration) {
		// Cancelled mid-task; failInFlight records the FAILED outcome.
		return
	}

	drain := r.cfg.AvgDrain + rand.Intn(10) - 5
	level := r.Battery() - drain
	if level < 0 {
		level = 0
	}
	r.battery.Store(int64(level))

	done := task.WithStatus(request.StatusCompleted)
	r.deps.Ledger.Record(done)
	if r.deps.Emitter != nil {
		r.deps.Emitter.EmitRequestCompleted(r.id, done, level)
	}

	r.taskMu.Lock()
	r.task = nil
	r.taskMu.Unlock()

	if level <= r.cfg.LowThreshold {
		r.setStatus(StatusLowBattery)
	} else {
		r.setStatus(StatusIdle)
	}
}

// handleChargeRequest queues the robot for a station. On timeout it falls
// back to LOW_BATTERY and retries on the next loop pass.
func (r *Robot) handleChargeRequest(ctx context.Context) {
	r.setStatus(StatusWaitingForCharge)

	accepted := r.deps.Pool.Enqueue(ctx, r, r.cfg.ChargingTimeout)
	if accepted {
		// A station has taken us; it now owns status and battery until
		// it releases us back to IDLE.
		return
	}
	if ctx.Err() != nil {
		return
	}
	if r.Battery() <= r.cfg.LowThreshold {
		r.setStatus(StatusLowBattery)
	} else {
		r.setStatus(StatusIdle)
	}
}

// failInFlight records a FAILED outcome for a task interrupted by shutdown.
func (r *Robot) failInFlight() {
	r.taskMu.Lock()
	task := r.task
	r.task = nil
	r.taskMu.Unlock()
	if task == nil {
		return
	}
	failed := task.WithStatus(request.StatusFailed)
	r.deps.Ledger.Record(failed)
	if r.deps.Emitter != nil {
		r.deps.Emitter.EmitRequestFailed(r.id, failed, "shutdown")
	}
}

// --- charging.Chargeable ---

// BeginCharging is called by the station that docked this robot.
func (r *Robot) BeginCharging() {
	r.setStatus(StatusCharging)
}

// AddCharge adds battery units, clamped at max, and reports fullness.
func (r *Robot) AddCharge(units int) bool {
	level := r.Battery() + units
	if level > r.cfg.MaxBattery {
		level = r.cfg.MaxBattery
	}
	r.battery.Store(int64(level))
	return level >= r.cfg.MaxBattery
}

// Release returns the robot to IDLE when the station is done with it.
func (r *Robot) Release() {
	r.taskMu.Lock()
	r.task = nil
	r.taskMu.Unlock()
	r.setStatus(StatusIdle)
}

var _ charging.Chargeable = (*Robot)(nil)

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
