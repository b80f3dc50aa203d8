package inventory

import (
	"fmt"
	"log"
	"sync"

	"warebot/catalog"
)

// InsufficientStockError is returned by Reserve when the requested quantity
// exceeds the available stock (or the part is unknown).
type InsufficientStockError struct {
	Part      catalog.Part
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock of %s: requested %d, available %d",
		e.Part.Name, e.Requested, e.Available)
}

// Inventory holds the part catalog and current stock levels. Reserve is the
// single linearization point: one mutator at a time, no I/O under the lock.
type Inventory struct {
	capacity int

	mu    sync.RWMutex
	stock map[catalog.Part]int
	byID  map[string]catalog.Part
}

// New builds an inventory from the initial stock map. Exceeding capacity is
// logged at init, not enforced afterwards.
func New(capacity int, initial map[catalog.Part]int) *Inventory {
	inv := &Inventory{
		capacity: capacity,
		stock:    make(map[catalog.Part]int, len(initial)),
		byID:     make(map[string]catalog.Part, len(initial)),
	}
	total := 0
	for part, qty := range initial {
		inv.stock[part] = qty
		inv.byID[part.ID] = part
		total += qty
	}
	if total > capacity {
		log.Printf("inventory: initial stock %d exceeds capacity %d", total, capacity)
	}
	return inv
}

// FindByID resolves a part id to its catalog entry.
func (inv *Inventory) FindByID(id string) (catalog.Part, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	part, ok := inv.byID[id]
	return part, ok
}

// Reserve atomically decrements stock for a part. Exactly one of two
// concurrent reservations competing for the last units succeeds.
//
//   - qty <= 0: returns false with no error and no state change.
//   - qty > available (or part unknown): returns false with an
//     *InsufficientStockError, no state change.
//   - otherwise: decrements and returns true.
func (inv *Inventory) Reserve(part catalog.Part, qty int) (bool, error) {
	if qty <= 0 {
		return false, nil
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	available := inv.stock[part]
	if qty > available {
		return false, &InsufficientStockError{Part: part, Requested: qty, Available: available}
	}
	inv.stock[part] = available - qty
	return true, nil
}

// Level returns the current stock of a part, 0 when absent.
func (inv *Inventory) Level(part catalog.Part) int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.stock[part]
}

// Capacity returns the configured capacity hint.
func (inv *Inventory) Capacity() int { return inv.capacity }

// Parts returns the known catalog entries.
func (inv *Inventory) Parts() []catalog.Part {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]catalog.Part, 0, len(inv.byID))
	for _, p := range inv.byID {
		out = append(out, p)
	}
	return out
}

// Snapshot returns a copy of the stock map for external readers.
func (inv *Inventory) Snapshot() map[catalog.Part]int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make(map[catalog.Part]int, len(inv.stock))
	for part, qty := range inv.stock {
		out[part] = qty
	}
	return out
}
