package www

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"warebot/engine"
)

type Handlers struct {
	engine   *engine.Engine
	sessions *sessions.CookieStore
	eventHub *EventHub
}

// NewRouter builds the dashboard/control API. The returned stop function
// shuts down the SSE hub.
func NewRouter(eng *engine.Engine) (http.Handler, func()) {
	hub := NewEventHub()
	hub.Start()
	hub.SetupEngineListeners(eng)

	h := &Handlers{
		engine:   eng,
		sessions: newSessionStore(eng.AppConfig().Web.SessionSecret),
		eventHub: hub,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// SSE
	r.Get("/events", hub.SSEHandler)

	// Session
	r.Post("/login", h.handleLogin)
	r.Get("/logout", h.handleLogout)

	// Read-only snapshots
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.apiHealthCheck)
		r.Get("/robots", h.apiRobots)
		r.Get("/stations", h.apiStations)
		r.Get("/inventory", h.apiInventory)
		r.Get("/parts", h.apiParts)
		r.Get("/requests", h.apiQueuedRequests)
		r.Get("/ledger", h.apiLedger)
		r.Get("/journal", h.apiJournal)
	})

	// Control (session required)
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/api/requests", h.apiSubmitRequest)
		r.Post("/api/fleet/start", h.apiFleetStart)
		r.Post("/api/fleet/stop", h.apiFleetStop)
		r.Post("/api/robots/battery", h.apiSetRobotBattery)
		r.Post("/api/report", h.apiWriteReport)
	})

	stopFn := func() {
		hub.Stop()
	}
	return r, stopFn
}
