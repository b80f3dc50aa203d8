package inventory

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"warebot/catalog"
)

var (
	oilFilter = catalog.Part{ID: "P1001", Name: "Oil Filter", Description: "Standard oil filter"}
	airFilter = catalog.Part{ID: "P1002", Name: "Air Filter", Description: "Engine air filter"}
)

func testInventory(qty int) *Inventory {
	return New(100, map[catalog.Part]int{oilFilter: qty})
}

func TestReserve_Boundaries(t *testing.T) {
	cases := []struct {
		name      string
		qty       int
		wantOK    bool
		wantErr   bool
		wantLevel int
	}{
		{"zero", 0, false, false, 10},
		{"negative", -3, false, false, 10},
		{"partial", 4, true, false, 6},
		{"exact", 10, true, false, 0},
		{"over", 11, false, true, 10},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			inv := testInventory(10)
			ok, err := inv.Reserve(oilFilter, c.qty)
			if ok != c.wantOK {
				t.Errorf("ok = %v, want %v", ok, c.wantOK)
			}
			if (err != nil) != c.wantErr {
				t.Errorf("err = %v, wantErr %v", err, c.wantErr)
			}
			if err != nil {
				var iserr *InsufficientStockError
				if !errors.As(err, &iserr) {
					t.Errorf("err = %T, want *InsufficientStockError", err)
				}
			}
			if level := inv.Level(oilFilter); level != c.wantLevel {
				t.Errorf("level = %d, want %d", level, c.wantLevel)
			}
		})
	}
}

func TestReserve_UnknownPart(t *testing.T) {
	inv := testInventory(10)
	ok, err := inv.Reserve(airFilter, 1)
	if ok {
		t.Error("reserve of unknown part succeeded")
	}
	var iserr *InsufficientStockError
	if !errors.As(err, &iserr) {
		t.Fatalf("err = %v, want *InsufficientStockError", err)
	}
	if iserr.Available != 0 {
		t.Errorf("available = %d, want 0", iserr.Available)
	}
}

func TestReserve_ConcurrentExactlyOneWins(t *testing.T) {
	// Two reservations summing over stock: exactly one succeeds.
	for i := 0; i < 50; i++ {
		inv := testInventory(10)
		var wg sync.WaitGroup
		results := make([]bool, 2)
		for j, qty := range []int{7, 6} {
			wg.Add(1)
			go func(j, qty int) {
				defer wg.Done()
				ok, _ := inv.Reserve(oilFilter, qty)
				results[j] = ok
			}(j, qty)
		}
		wg.Wait()

		if results[0] == results[1] {
			t.Fatalf("iteration %d: results = %v, want exactly one success", i, results)
		}
		if level := inv.Level(oilFilter); level < 0 {
			t.Fatalf("iteration %d: level = %d, oversold", i, level)
		}
	}
}

func TestReserve_NeverNegative(t *testing.T) {
	inv := testInventory(20)
	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inv.Reserve(oilFilter, 3)
		}()
	}
	wg.Wait()
	if level := inv.Level(oilFilter); level < 0 {
		t.Errorf("level = %d, want >= 0", level)
	}
}

func TestFindByID(t *testing.T) {
	inv := testInventory(10)
	part, ok := inv.FindByID("P1001")
	if !ok {
		t.Fatal("P1001 not found")
	}
	if part != oilFilter {
		t.Errorf("part = %+v, want %+v", part, oilFilter)
	}
	if _, ok := inv.FindByID("NOPE"); ok {
		t.Error("unknown id resolved")
	}
}

func TestSnapshot_PureRead(t *testing.T) {
	inv := testInventory(10)
	first := inv.Snapshot()
	second := inv.Snapshot()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("consecutive snapshots differ: %v vs %v", first, second)
	}

	// Mutating the snapshot must not touch the inventory.
	first[oilFilter] = 0
	if level := inv.Level(oilFilter); level != 10 {
		t.Errorf("level = %d after snapshot mutation, want 10", level)
	}
}

func TestNew_CapacityWarningOnly(t *testing.T) {
	// Over-capacity stock is logged, not rejected.
	inv := New(5, map[catalog.Part]int{oilFilter: 10})
	if level := inv.Level(oilFilter); level != 10 {
		t.Errorf("level = %d, want 10", level)
	}
	if inv.Capacity() != 5 {
		t.Errorf("capacity = %d, want 5", inv.Capacity())
	}
}
