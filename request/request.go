package request

import (
	"fmt"
	"sync/atomic"

	"warebot/catalog"
)

// Status is the lifecycle tag of a request. The string values double as the
// serialized enum names in the binary report, so they must not change.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Terminal reports whether a status can no longer transition.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ValidationError rejects a malformed request at creation time.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// counter mints process-wide unique request ids. Monotonic, not gapless.
var counter atomic.Int64

// Request is an immutable unit of work: pick Qty units of Part. Status
// transitions produce new values sharing the same ID.
type Request struct {
	ID     string       `json:"id"`
	Part   catalog.Part `json:"part"`
	Qty    int          `json:"qty"`
	Status Status       `json:"status"`
}

// New validates and mints a PENDING request with a fresh "Task-N" id.
// Two concurrent calls always receive distinct ids.
func New(part catalog.Part, qty int) (Request, error) {
	if part.ID == "" {
		return Request{}, &ValidationError{Reason: "part cannot be empty"}
	}
	if qty <= 0 {
		return Request{}, &ValidationError{Reason: "quantity must be positive"}
	}
	n := counter.Add(1)
	return Request{
		ID:     fmt.Sprintf("Task-%d", n),
		Part:   part,
		Qty:    qty,
		Status: StatusPending,
	}, nil
}

// WithStatus returns a copy of the request carrying the new status.
func (r Request) WithStatus(s Status) Request {
	r.Status = s
	return r
}

func (r Request) String() string {
	return fmt.Sprintf("%s: %dx %s [%s]", r.ID, r.Qty, r.Part.ID, r.Status)
}
