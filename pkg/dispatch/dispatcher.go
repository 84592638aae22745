// Package dispatch is the tool-call fulfillment engine: the single
// entry point turning a batch of function-call requests from the agent
// into lookups and mutations on the schedule dataset, calendar
// projections for the UI, and structured responses back to the agent.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kotoba-labs/shiftvoice/internal/log"
	"github.com/kotoba-labs/shiftvoice/pkg/agent"
	"github.com/kotoba-labs/shiftvoice/pkg/schedule"
	"github.com/kotoba-labs/shiftvoice/pkg/store"
)

// ErrMissingDate marks an update_schedule call without its mandatory
// date argument. Per the batch failure policy it fails the whole
// batch, read calls included.
var ErrMissingDate = errors.New("dispatch: update_schedule requires a date")

// UISink receives fire-and-forget presentation updates. Calls carry no
// ordering guarantee beyond last-write-wins per slot; implementations
// must not block.
type UISink interface {
	SetCalendar(view schedule.View)
	ClearCalendar()
	SetDisplayName(name string)
	SetSelectedDate(date string)
}

// NopUI discards all UI updates. Useful for headless commands and
// tests that only care about responses.
type NopUI struct{}

func (NopUI) SetCalendar(schedule.View) {}
func (NopUI) ClearCalendar()            {}
func (NopUI) SetDisplayName(string)     {}
func (NopUI) SetSelectedDate(string)    {}

// Dispatcher orchestrates the store, resolver, filter and projector.
// It is driven by one inbound event at a time; batches are expected to
// run to completion before the next one arrives, and overlapping
// batches are not serialized (a lost update between them is an
// accepted constraint, not something the engine guards against).
type Dispatcher struct {
	store     store.Store
	resolver  *schedule.Resolver
	projector *schedule.Projector
	ui        UISink
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a dispatcher. A nil ui falls back to NopUI.
func New(st store.Store, res *schedule.Resolver, ui UISink) *Dispatcher {
	if ui == nil {
		ui = NopUI{}
	}
	return &Dispatcher{
		store:     st,
		resolver:  res,
		projector: schedule.NewProjector(),
		ui:        ui,
		logger:    log.Component("dispatch"),
		now:       time.Now,
	}
}

// Handle fulfills one tool-call batch and returns one response per
// call. It never returns an error: failures are encoded into the
// responses. Any error during processing fails the batch uniformly —
// every call, read or write, reports {success:false, error}.
func (d *Dispatcher) Handle(ctx context.Context, batch []agent.ToolCall) []agent.ToolResponse {
	if len(batch) == 0 {
		return nil
	}

	start := time.Now()
	metricBatches.Inc()

	responses, err := d.process(ctx, batch)
	metricBatchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metricBatchFailures.Inc()
		d.logger.Error("batch failed", "calls", len(batch), "error", err)
		return failAll(batch, err)
	}

	d.logger.Debug("batch fulfilled", "calls", len(batch), "duration", time.Since(start))
	return responses
}

// process loads the dataset once and routes each call. All calls in
// the batch share the loaded working copy: writes mutate it in place
// and persist it before their response is assembled, so an earlier
// write survives even if a later call in the same batch fails.
func (d *Dispatcher) process(ctx context.Context, batch []agent.ToolCall) ([]agent.ToolResponse, error) {
	dataset, source, err := d.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	metricDatasetLoads.WithLabelValues(string(source)).Inc()

	responses := make([]agent.ToolResponse, 0, len(batch))
	for _, call := range batch {
		var output map[string]any

		switch call.Name {
		case agent.FuncGetScheduleDetails:
			output, err = d.readCall(dataset, call)
		case agent.FuncUpdateSchedule:
			output, err = d.writeCall(ctx, dataset, call)
		default:
			err = fmt.Errorf("dispatch: unknown function %q", call.Name)
		}
		if err != nil {
			return nil, err
		}

		metricCalls.WithLabelValues(call.Name).Inc()
		output["source"] = string(source)
		responses = append(responses, agent.ToolResponse{
			ID:     call.ID,
			Name:   call.Name,
			Output: output,
		})
	}
	return responses, nil
}

// readCall handles get_schedule_details. A person nobody matches is a
// successful empty result with a cleared calendar, never an error.
func (d *Dispatcher) readCall(dataset *schedule.Dataset, call agent.ToolCall) (map[string]any, error) {
	name := stringArg(call.Args, "name")
	date := stringArg(call.Args, "date")
	start := stringArg(call.Args, "start_date")
	end := stringArg(call.Args, "end_date")

	person, found := d.resolver.Resolve(dataset, name)
	entries := schedule.Filter(person, date, start, end)

	if !found {
		d.ui.ClearCalendar()
		d.logger.Debug("person not found", "requested", name)
		return map[string]any{
			"success": true,
			"name":    name,
			"count":   0,
			"entries": []schedule.Entry{},
		}, nil
	}

	anchor := readAnchor(date, start, entries, d.now)
	view, err := d.projector.Project(person.Schedule, anchor)
	if err != nil {
		return nil, err
	}

	d.ui.SetCalendar(view)
	d.ui.SetDisplayName(person.Name)
	d.ui.SetSelectedDate(anchor)

	return map[string]any{
		"success": true,
		"name":    person.Name,
		"count":   len(entries),
		"entries": entries,
	}, nil
}

// readAnchor picks the date the calendar is projected around: the
// explicit date, else the range start, else the first result's date,
// else today.
func readAnchor(date, start string, entries []schedule.Entry, now func() time.Time) string {
	switch {
	case date != "":
		return date
	case start != "":
		return start
	case len(entries) > 0:
		return entries[0].Date
	default:
		return now().Format(schedule.DateLayout)
	}
}

// writeCall handles update_schedule. The mutated dataset is persisted
// before the response is assembled so the write is durable even when a
// later call in the batch fails.
func (d *Dispatcher) writeCall(ctx context.Context, dataset *schedule.Dataset, call agent.ToolCall) (map[string]any, error) {
	date := stringArg(call.Args, "date")
	if date == "" {
		return nil, ErrMissingDate
	}

	name := stringArg(call.Args, "name")
	workType := stringArg(call.Args, "workType")
	content := stringArg(call.Args, "content")
	operation := stringArg(call.Args, "operation")
	if operation == "" {
		operation = "set"
	}

	person, created := d.resolver.ResolveOrCreate(dataset, name)
	if operation == "clear" {
		person.Clear(date)
	} else {
		person.Set(date, workType, content)
	}

	if err := d.store.Persist(ctx, dataset); err != nil {
		return nil, err
	}
	metricPersists.Inc()

	view, err := d.projector.Project(person.Schedule, date)
	if err != nil {
		return nil, err
	}

	d.ui.SetCalendar(view)
	d.ui.SetDisplayName(person.Name)
	d.ui.SetSelectedDate(date)

	d.logger.Info("schedule updated",
		"person", person.Name, "date", date, "operation", operation, "created", created)

	return map[string]any{
		"success":   true,
		"name":      person.Name,
		"date":      date,
		"operation": operation,
		"created":   created,
	}, nil
}

// failAll builds the uniform failure response: every call in the
// batch, read or write, reports the same error.
func failAll(batch []agent.ToolCall, err error) []agent.ToolResponse {
	responses := make([]agent.ToolResponse, 0, len(batch))
	for _, call := range batch {
		responses = append(responses, agent.ToolResponse{
			ID:   call.ID,
			Name: call.Name,
			Output: map[string]any{
				"success": false,
				"error":   err.Error(),
			},
		})
	}
	return responses
}

// stringArg reads an optional string argument, tolerating absent keys
// and non-string values.
func stringArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	s, _ := args[key].(string)
	return s
}
