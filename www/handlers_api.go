package www

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"warebot/fleet"
	"warebot/request"
)

func (h *Handlers) apiHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, map[string]any{
		"status":      "ok",
		"running":     h.engine.Fleet().Running(),
		"sse_clients": h.eventHub.ClientCount(),
	})
}

func (h *Handlers) apiRobots(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, h.engine.Fleet().Robots())
}

func (h *Handlers) apiStations(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, h.engine.Fleet().Stations())
}

func (h *Handlers) apiInventory(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, h.engine.Fleet().InventoryLevels())
}

func (h *Handlers) apiParts(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, h.engine.Fleet().Parts())
}

func (h *Handlers) apiQueuedRequests(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, h.engine.Fleet().Queue().Snapshot())
}

func (h *Handlers) apiLedger(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, h.engine.Fleet().Ledger().Snapshot())
}

func (h *Handlers) apiJournal(w http.ResponseWriter, r *http.Request) {
	db := h.engine.Journal()
	if db == nil {
		h.jsonOK(w, []any{})
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	entries, err := db.Recent(limit)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, entries)
}

type submitRequestBody struct {
	PartID string `json:"part_id"`
	Qty    int    `json:"qty"`
}

func (h *Handlers) apiSubmitRequest(w http.ResponseWriter, r *http.Request) {
	var body submitRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req, err := h.engine.Fleet().Submit(body.PartID, body.Qty)
	if err != nil {
		var verr *request.ValidationError
		switch {
		case errors.Is(err, fleet.ErrUnknownPart):
			h.jsonError(w, err.Error(), http.StatusNotFound)
		case errors.As(err, &verr):
			h.jsonError(w, err.Error(), http.StatusBadRequest)
		default:
			h.jsonError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	h.jsonOK(w, req)
}

func (h *Handlers) apiFleetStart(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Fleet().Start(); err != nil {
		h.jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	h.jsonOK(w, map[string]bool{"running": true})
}

func (h *Handlers) apiFleetStop(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Fleet().Stop(); err != nil {
		h.jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	h.jsonOK(w, map[string]bool{"running": false})
}

type setBatteryBody struct {
	RobotID string `json:"robot_id"`
	Level   int    `json:"level"`
}

func (h *Handlers) apiSetRobotBattery(w http.ResponseWriter, r *http.Request) {
	var body setBatteryBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	rb, ok := h.engine.Fleet().Robot(body.RobotID)
	if !ok {
		h.jsonError(w, "robot not found", http.StatusNotFound)
		return
	}
	rb.SetBattery(body.Level)
	h.jsonOK(w, rb.Snapshot())
}

func (h *Handlers) apiWriteReport(w http.ResponseWriter, r *http.Request) {
	path := h.engine.AppConfig().Report.Path
	count, err := h.engine.WriteReport(path)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, map[string]any{"path": path, "count": count})
}

func (h *Handlers) jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
