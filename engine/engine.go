package engine

import (
	"context"
	"encoding/json"
	"log"

	"warebot/config"
	"warebot/fleet"
	"warebot/ingest"
	"warebot/inventory"
	"warebot/journal"
	"warebot/logfile"
	"warebot/messaging"
	"warebot/report"
	"warebot/request"
)

// Config carries the collaborators the engine wires together. Journal,
// MsgClient and the loggers are optional; the simulation runs without them.
type Config struct {
	AppConfig  *config.Config
	ConfigPath string
	Inventory  *inventory.Inventory
	Journal    *journal.DB
	MsgClient  *messaging.Client
	EventLog   *logfile.Logger
	IngestLog  *logfile.Logger
}

// Engine owns the fleet and the surrounding plumbing: event fan-out to the
// journal, log files and the messaging bridge, plus the file ingester.
type Engine struct {
	cfg        *config.Config
	configPath string
	fleet      *fleet.Fleet
	inv        *inventory.Inventory
	journal    *journal.DB
	msgClient  *messaging.Client
	bridge     *messaging.Bridge
	ingester   *ingest.Ingester
	eventLog   *logfile.Logger

	Events *EventBus

	ingestCancel context.CancelFunc
}

func New(c Config) *Engine {
	e := &Engine{
		cfg:        c.AppConfig,
		configPath: c.ConfigPath,
		inv:        c.Inventory,
		journal:    c.Journal,
		msgClient:  c.MsgClient,
		eventLog:   c.EventLog,
		Events:     NewEventBus(),
	}

	e.fleet = fleet.New(c.AppConfig, c.Inventory,
		&robotEmitter{bus: e.Events},
		&chargingEmitter{bus: e.Events},
		&fleetEmitter{bus: e.Events},
	)

	if c.AppConfig.Ingest.Enabled {
		e.ingester = ingest.New(
			c.AppConfig.Ingest.Path,
			c.AppConfig.Ingest.PollInterval,
			c.Inventory,
			e.fleet.Queue(),
			c.IngestLog,
			&ingestEmitter{bus: e.Events},
		)
	}

	if c.MsgClient != nil {
		mcfg := &c.AppConfig.Messaging
		e.bridge = messaging.NewBridge(c.MsgClient, mcfg.StationID, mcfg.RequestTopic, mcfg.TerminalTopic,
			func(partID string, qty int) (request.Request, error) {
				return e.fleet.SubmitFrom(partID, qty, "messaging")
			})
	}

	e.wireSinks()
	return e
}

// wireSinks attaches the journal, event log and messaging bridge to the bus.
func (e *Engine) wireSinks() {
	if e.journal != nil {
		e.Events.Subscribe(func(evt Event) {
			if err := e.journal.Append(evt.Type.Name(), evt.Timestamp, evt.Payload); err != nil {
				log.Printf("engine: journal append: %v", err)
			}
		})
	}

	if e.eventLog != nil {
		e.Events.Subscribe(func(evt Event) {
			data, err := json.Marshal(evt.Payload)
			if err != nil {
				return
			}
			e.eventLog.Printf("%s %s", evt.Type.Name(), data)
		})
	}

	if e.bridge != nil {
		e.Events.SubscribeTypes(func(evt Event) {
			switch ev := evt.Payload.(type) {
			case RequestCompletedEvent:
				e.bridge.PublishTerminal(messaging.TerminalRecordMessage{
					RequestID: ev.RequestID,
					PartID:    ev.PartID,
					Qty:       ev.Qty,
					Status:    string(request.StatusCompleted),
					RobotID:   ev.RobotID,
				})
			case RequestFailedEvent:
				e.bridge.PublishTerminal(messaging.TerminalRecordMessage{
					RequestID: ev.RequestID,
					PartID:    ev.PartID,
					Qty:       ev.Qty,
					Status:    string(request.StatusFailed),
					RobotID:   ev.RobotID,
				})
			}
		}, EventRequestCompleted, EventRequestFailed)
	}
}

// Start brings up the fleet, the ingester and the messaging bridge.
func (e *Engine) Start() error {
	if err := e.fleet.Start(); err != nil {
		return err
	}

	if e.ingester != nil {
		ctx, cancel := context.WithCancel(context.Background())
		e.ingestCancel = cancel
		go e.ingester.Run(ctx)
		log.Printf("engine: ingester polling %s every %s", e.cfg.Ingest.Path, e.cfg.Ingest.PollInterval)
	}

	if e.bridge != nil {
		if err := e.bridge.Start(); err != nil {
			log.Printf("engine: messaging bridge subscribe: %v", err)
		} else {
			log.Printf("engine: messaging bridge listening on %s", e.cfg.Messaging.RequestTopic)
		}
	}

	log.Printf("engine: started")
	return nil
}

// Stop shuts down the ingester, then the fleet. After it returns every
// ledger id carries a terminal status.
func (e *Engine) Stop() {
	if e.ingestCancel != nil {
		e.ingestCancel()
		e.ingestCancel = nil
	}
	if err := e.fleet.Stop(); err != nil && err != fleet.ErrNotRunning {
		log.Printf("engine: fleet stop: %v", err)
	}
	log.Printf("engine: stopped")
}

// WriteReport serializes the ledger to the binary report file.
func (e *Engine) WriteReport(path string) (int, error) {
	records := e.fleet.Ledger().Snapshot()
	if err := report.WriteFile(path, records); err != nil {
		return 0, err
	}
	e.Events.Publish(EventReportWritten, ReportWrittenEvent{Path: path, Count: len(records)})
	return len(records), nil
}

// Accessors
func (e *Engine) Fleet() *fleet.Fleet          { return e.fleet }
func (e *Engine) AppConfig() *config.Config    { return e.cfg }
func (e *Engine) ConfigPath() string           { return e.configPath }
func (e *Engine) Journal() *journal.DB         { return e.journal }
func (e *Engine) MsgClient() *messaging.Client { return e.msgClient }
