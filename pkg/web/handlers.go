package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/kotoba-labs/shiftvoice/pkg/agent"
	"github.com/kotoba-labs/shiftvoice/pkg/hub"
)

// UpdateScheduleRequest is the body for POST /api/schedule. It mirrors
// the update_schedule tool arguments so dashboard edits travel the
// exact same dispatcher path as agent calls.
type UpdateScheduleRequest struct {
	Name      string `json:"name"`
	Date      string `json:"date"`
	WorkType  string `json:"workType"`
	Content   string `json:"content"`
	Operation string `json:"operation"`
}

// handleCalendar returns the current UI state.
func (s *Server) handleCalendar(c *fiber.Ctx) error {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return c.JSON(s.state)
}

// handlePeople lists the known people in the dataset.
func (s *Server) handlePeople(c *fiber.Ctx) error {
	dataset, source, err := s.store.Load(c.Context())
	if err != nil {
		// Rendered as a static instructional message, not retried.
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Schedule dataset is unavailable. Check the dataset.remoteURL " +
				"setting or make an update so the local cache is populated.",
		})
	}

	names := make([]string, 0, len(dataset.Users))
	for _, u := range dataset.Users {
		names = append(names, u.Name)
	}
	return c.JSON(fiber.Map{
		"people": names,
		"source": string(source),
	})
}

// handleUpdateSchedule forwards a dashboard edit as a synthetic
// update_schedule tool call.
func (s *Server) handleUpdateSchedule(c *fiber.Ctx) error {
	if s.OnToolCall == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Dispatcher not configured.",
		})
	}

	var req UpdateScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Malformed request body.",
		})
	}

	call := agent.ToolCall{
		ID:   "ui-" + uuid.New().String(),
		Name: agent.FuncUpdateSchedule,
		Args: map[string]any{
			"name":      req.Name,
			"date":      req.Date,
			"workType":  req.WorkType,
			"content":   req.Content,
			"operation": req.Operation,
		},
	}

	responses := s.OnToolCall(call)
	if len(responses) == 0 {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No response from dispatcher.",
		})
	}

	out := responses[0].Output
	if ok, _ := out["success"].(bool); !ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(out)
	}
	return c.JSON(out)
}

// handleExport writes a snapshot of the current dataset and reports
// where it landed.
func (s *Server) handleExport(c *fiber.Ctx) error {
	dataset, _, err := s.store.Load(c.Context())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Schedule dataset is unavailable; nothing to export.",
		})
	}

	path, err := s.store.Export(dataset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"path": path})
}

// handleCalendarWS streams UI state updates. The current state is sent
// on connect so late joiners render immediately.
func (s *Server) handleCalendarWS(c *websocket.Conn) {
	s.stateMu.RLock()
	state := s.state
	s.stateMu.RUnlock()
	c.WriteJSON(state)

	client := hub.NewClient(s.calendarHub, c)
	client.Run()
}
