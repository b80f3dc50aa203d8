package catalog

import "testing"

func TestSampleParts(t *testing.T) {
	parts := SampleParts()
	if len(parts) != 20 {
		t.Fatalf("parts = %d, want 20", len(parts))
	}

	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		if p.ID == "" || p.Name == "" {
			t.Errorf("incomplete part: %+v", p)
		}
		if seen[p.ID] {
			t.Errorf("duplicate part id %s", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestInitialStock(t *testing.T) {
	parts := SampleParts()
	stock := InitialStock(parts)
	if len(stock) != 10 {
		t.Fatalf("stocked parts = %d, want 10", len(stock))
	}
	if qty := stock[parts[0]]; qty != 25 {
		t.Errorf("stock[P1001] = %d, want 25", qty)
	}
	total := 0
	for _, qty := range stock {
		if qty <= 0 {
			t.Error("non-positive seed quantity")
		}
		total += qty
	}
	if total != 340 {
		t.Errorf("total seed stock = %d, want 340", total)
	}
}

func TestInitialStock_ShortCatalog(t *testing.T) {
	stock := InitialStock(SampleParts()[:3])
	if len(stock) != 3 {
		t.Errorf("stocked parts = %d, want 3", len(stock))
	}
}
