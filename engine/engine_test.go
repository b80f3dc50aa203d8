package engine

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"warebot/catalog"
	"warebot/config"
	"warebot/inventory"
	"warebot/journal"
	"warebot/report"
	"warebot/request"
)

func testEngine(t *testing.T, jdb *journal.DB) *Engine {
	t.Helper()
	cfg := config.Defaults()
	cfg.Fleet.RobotCount = 2
	cfg.Fleet.StationCount = 1
	cfg.Fleet.TaskDuration = 10 * time.Millisecond
	cfg.Fleet.IdlePoll = 5 * time.Millisecond
	cfg.Battery.ChargeTick = 2 * time.Millisecond
	cfg.Battery.ChargingTimeout = 50 * time.Millisecond
	cfg.Ingest.Enabled = false
	cfg.Journal.Enabled = jdb != nil

	parts := catalog.SampleParts()
	inv := inventory.New(cfg.Inventory.Capacity, catalog.InitialStock(parts))

	eng := New(Config{
		AppConfig: cfg,
		Inventory: inv,
		Journal:   jdb,
	})
	t.Cleanup(eng.Stop)
	return eng
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestEngine_RunsRequestsThroughTheBus(t *testing.T) {
	eng := testEngine(t, nil)

	var mu sync.Mutex
	var completed []string
	eng.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(RequestCompletedEvent)
		mu.Lock()
		completed = append(completed, ev.RequestID)
		mu.Unlock()
	}, EventRequestCompleted)

	if err := eng.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	req, err := eng.Fleet().Submit("P1001", 5)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	waitFor(t, 5*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, id := range completed {
			if id == req.ID {
				return true
			}
		}
		return false
	}, "completed event never reached the bus")
}

func TestEngine_JournalRecordsEvents(t *testing.T) {
	jdb, err := journal.Open(&config.JournalConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "journal.db")},
	})
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { jdb.Close() })

	eng := testEngine(t, jdb)
	if err := eng.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	req, err := eng.Fleet().Submit("P1003", 2)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	waitFor(t, 5*time.Second, func() bool {
		rec, ok := eng.Fleet().Ledger().Get(req.ID)
		return ok && rec.Status == request.StatusCompleted
	}, "request never completed")

	waitFor(t, 2*time.Second, func() bool {
		counts, err := jdb.CountByType()
		if err != nil {
			return false
		}
		return counts["request_queued"] >= 1 && counts["request_completed"] >= 1
	}, "journal missing request events")
}

func TestEngine_WriteReportRoundTrip(t *testing.T) {
	eng := testEngine(t, nil)
	if err := eng.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	req, err := eng.Fleet().Submit("P1002", 3)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitFor(t, 5*time.Second, func() bool {
		rec, ok := eng.Fleet().Ledger().Get(req.ID)
		return ok && rec.Status.Terminal()
	}, "request never reached a terminal state")

	eng.Stop()

	path := filepath.Join(t.TempDir(), "report.dat")
	count, err := eng.WriteReport(path)
	if err != nil {
		t.Fatalf("write report: %v", err)
	}
	if count < 1 {
		t.Fatalf("count = %d, want >= 1", count)
	}

	records, err := report.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if len(records) != count {
		t.Errorf("decoded %d records, want %d", len(records), count)
	}
	found := false
	for _, rec := range records {
		if rec.RequestID == req.ID && rec.Status == string(request.StatusCompleted) {
			found = true
		}
	}
	if !found {
		t.Errorf("report missing completed record for %s", req.ID)
	}
}
