package request

import (
	"errors"
	"sync"
	"testing"

	"warebot/catalog"
)

func testPart() catalog.Part {
	return catalog.Part{ID: "P1001", Name: "Oil Filter", Description: "Standard oil filter"}
}

func TestNew_Valid(t *testing.T) {
	req, err := New(testPart(), 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if req.ID == "" {
		t.Error("id is empty")
	}
	if req.Status != StatusPending {
		t.Errorf("status = %q, want %q", req.Status, StatusPending)
	}
	if req.Qty != 5 {
		t.Errorf("qty = %d, want 5", req.Qty)
	}
	if req.Part != testPart() {
		t.Errorf("part = %+v, want %+v", req.Part, testPart())
	}
}

func TestNew_EmptyPart(t *testing.T) {
	_, err := New(catalog.Part{}, 1)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if verr.Reason != "part cannot be empty" {
		t.Errorf("reason = %q, want %q", verr.Reason, "part cannot be empty")
	}
}

func TestNew_NonPositiveQty(t *testing.T) {
	for _, qty := range []int{0, -5} {
		_, err := New(testPart(), qty)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("qty %d: err = %v, want *ValidationError", qty, err)
		}
		if verr.Reason != "quantity must be positive" {
			t.Errorf("qty %d: reason = %q, want %q", qty, verr.Reason, "quantity must be positive")
		}
	}
}

func TestNew_UniqueConcurrentIDs(t *testing.T) {
	const n = 200
	var wg sync.WaitGroup
	ids := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, err := New(testPart(), 1)
			if err != nil {
				t.Errorf("New: %v", err)
				return
			}
			ids <- req.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, n)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Errorf("unique ids = %d, want %d", len(seen), n)
	}
}

func TestWithStatus(t *testing.T) {
	req, err := New(testPart(), 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := req.WithStatus(StatusCompleted)
	if done.Status != StatusCompleted {
		t.Errorf("status = %q, want %q", done.Status, StatusCompleted)
	}
	if done.ID != req.ID || done.Part != req.Part || done.Qty != req.Qty {
		t.Errorf("WithStatus changed identity: got %+v, want id/part/qty of %+v", done, req)
	}
	if req.Status != StatusPending {
		t.Errorf("original mutated: status = %q", req.Status)
	}

	// Applying the same status twice is a no-op.
	if again := done.WithStatus(StatusCompleted); again != done {
		t.Errorf("WithStatus not idempotent: %+v != %+v", again, done)
	}
}

func TestStatusTerminal(t *testing.T) {
	cases := []struct {
		status Status
		want   bool
	}{
		{StatusPending, false},
		{StatusInProgress, false},
		{StatusCompleted, true},
		{StatusFailed, true},
	}
	for _, c := range cases {
		if got := c.status.Terminal(); got != c.want {
			t.Errorf("%s.Terminal() = %v, want %v", c.status, got, c.want)
		}
	}
}
