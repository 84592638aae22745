// Package web provides the dashboard for the schedule assistant: a
// fiber server exposing the current calendar view, manual schedule
// edits, snapshot export and prometheus metrics, plus a websocket feed
// mirroring every calendar update the fulfillment engine produces.
package web

import (
	"log/slog"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kotoba-labs/shiftvoice/internal/log"
	"github.com/kotoba-labs/shiftvoice/pkg/agent"
	"github.com/kotoba-labs/shiftvoice/pkg/dispatch"
	"github.com/kotoba-labs/shiftvoice/pkg/hub"
	"github.com/kotoba-labs/shiftvoice/pkg/schedule"
	"github.com/kotoba-labs/shiftvoice/pkg/store"
)

// State is the UI-visible slice of the assistant: the projected
// calendar plus the name and date it was projected for. Each slot is
// last-write-wins.
type State struct {
	DisplayName  string         `json:"display_name"`
	SelectedDate string         `json:"selected_date"`
	Calendar     *schedule.View `json:"calendar"`
}

// Server is the dashboard server. It implements dispatch.UISink so the
// dispatcher can push calendar updates straight into it.
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger

	store store.Store

	state   State
	stateMu sync.RWMutex

	calendarHub *hub.Hub

	// OnToolCall routes a synthetic tool call through the same
	// dispatcher path the agent uses. Wired by the command layer.
	OnToolCall func(call agent.ToolCall) []agent.ToolResponse
}

// NewServer creates the dashboard server.
func NewServer(addr string, st store.Store) *Server {
	s := &Server{
		addr:        addr,
		logger:      log.Component("web"),
		store:       st,
		calendarHub: hub.New("calendar"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "shiftvoice dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/calendar", s.handleCalendar)
	api.Get("/people", s.handlePeople)
	api.Post("/schedule", s.handleUpdateSchedule)
	api.Post("/export", s.handleExport)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/calendar", websocket.New(s.handleCalendarWS))

	s.app = app
	return s
}

// Start runs the server. It blocks; use StartAsync for background use.
func (s *Server) Start() error {
	go s.calendarHub.Run()
	s.logger.Info("dashboard listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("dashboard server stopped", "error", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// --- dispatch.UISink ---

// SetCalendar stores and broadcasts a new calendar view.
func (s *Server) SetCalendar(view schedule.View) {
	s.updateState(func(st *State) {
		st.Calendar = &view
	})
}

// ClearCalendar removes the calendar view, e.g. after a lookup for an
// unknown person.
func (s *Server) ClearCalendar() {
	s.updateState(func(st *State) {
		st.Calendar = nil
	})
}

// SetDisplayName updates the name shown above the calendar.
func (s *Server) SetDisplayName(name string) {
	s.updateState(func(st *State) {
		st.DisplayName = name
	})
}

// SetSelectedDate updates the highlighted date.
func (s *Server) SetSelectedDate(date string) {
	s.updateState(func(st *State) {
		st.SelectedDate = date
	})
}

// updateState applies a mutation and broadcasts the resulting state.
func (s *Server) updateState(fn func(*State)) {
	s.stateMu.Lock()
	fn(&s.state)
	state := s.state
	s.stateMu.Unlock()

	s.calendarHub.BroadcastJSON(state)
}

var _ dispatch.UISink = (*Server)(nil)
