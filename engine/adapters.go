package engine

import (
	"warebot/request"
	"warebot/robot"
)

// robotEmitter bridges robot lifecycle events onto the bus.
type robotEmitter struct {
	bus *EventBus
}

func (e *robotEmitter) EmitRobotStatusChanged(robotID string, oldStatus, newStatus robot.Status, battery int) {
	e.bus.Publish(EventRobotStatusChanged, RobotStatusChangedEvent{
		RobotID:   robotID,
		OldStatus: oldStatus.String(),
		NewStatus: newStatus.String(),
		Battery:   battery,
	})
}

func (e *robotEmitter) EmitRequestStarted(robotID string, req request.Request) {
	e.bus.Publish(EventRequestStarted, RequestStartedEvent{
		RequestID: req.ID,
		PartID:    req.Part.ID,
		Qty:       req.Qty,
		RobotID:   robotID,
	})
}

func (e *robotEmitter) EmitRequestCompleted(robotID string, req request.Request, battery int) {
	e.bus.Publish(EventRequestCompleted, RequestCompletedEvent{
		RequestID: req.ID,
		PartID:    req.Part.ID,
		Qty:       req.Qty,
		RobotID:   robotID,
		Battery:   battery,
	})
}

func (e *robotEmitter) EmitRequestFailed(robotID string, req request.Request, reason string) {
	e.bus.Publish(EventRequestFailed, RequestFailedEvent{
		RequestID: req.ID,
		PartID:    req.Part.ID,
		Qty:       req.Qty,
		RobotID:   robotID,
		Reason:    reason,
	})
}

// chargingEmitter bridges station events onto the bus.
type chargingEmitter struct {
	bus *EventBus
}

func (e *chargingEmitter) EmitChargingStarted(stationID, robotID string) {
	e.bus.Publish(EventChargingStarted, ChargingStartedEvent{
		StationID: stationID,
		RobotID:   robotID,
	})
}

func (e *chargingEmitter) EmitChargingFinished(stationID, robotID string, full bool) {
	e.bus.Publish(EventChargingFinished, ChargingFinishedEvent{
		StationID: stationID,
		RobotID:   robotID,
		Full:      full,
	})
}

// fleetEmitter bridges orchestrator events onto the bus.
type fleetEmitter struct {
	bus *EventBus
}

func (e *fleetEmitter) EmitFleetStarted(robots, stations int) {
	e.bus.Publish(EventFleetStarted, FleetStartedEvent{Robots: robots, Stations: stations})
}

func (e *fleetEmitter) EmitFleetStopped() {
	e.bus.Publish(EventFleetStopped, FleetStoppedEvent{})
}

func (e *fleetEmitter) EmitRequestQueued(req request.Request, source string) {
	e.bus.Publish(EventRequestQueued, RequestQueuedEvent{
		RequestID: req.ID,
		PartID:    req.Part.ID,
		Qty:       req.Qty,
		Source:    source,
	})
}

// ingestEmitter bridges the file ingester's events onto the bus.
type ingestEmitter struct {
	bus *EventBus
}

func (e *ingestEmitter) EmitRequestQueued(req request.Request, source string) {
	e.bus.Publish(EventRequestQueued, RequestQueuedEvent{
		RequestID: req.ID,
		PartID:    req.Part.ID,
		Qty:       req.Qty,
		Source:    source,
	})
}

func (e *ingestEmitter) EmitBatchLoaded(batchID string, count int) {
	e.bus.Publish(EventIngestBatchLoaded, IngestBatchLoadedEvent{BatchID: batchID, Count: count})
}
