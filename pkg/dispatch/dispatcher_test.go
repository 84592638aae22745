package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotoba-labs/shiftvoice/pkg/agent"
	"github.com/kotoba-labs/shiftvoice/pkg/schedule"
	"github.com/kotoba-labs/shiftvoice/pkg/store"
)

// fakeStore keeps the dataset in memory and hands out working copies
// the way the real store does.
type fakeStore struct {
	dataset  *schedule.Dataset
	source   store.Source
	loadErr  error
	persists int
}

func (f *fakeStore) Load(context.Context) (*schedule.Dataset, store.Source, error) {
	if f.loadErr != nil {
		return nil, "", f.loadErr
	}
	return clone(f.dataset), f.source, nil
}

func (f *fakeStore) Persist(_ context.Context, d *schedule.Dataset) error {
	f.dataset = clone(d)
	f.persists++
	return nil
}

func (f *fakeStore) Export(*schedule.Dataset) (string, error) { return "", nil }
func (f *fakeStore) Close() error                             { return nil }

func clone(d *schedule.Dataset) *schedule.Dataset {
	raw, _ := json.Marshal(d)
	var out schedule.Dataset
	_ = json.Unmarshal(raw, &out)
	return &out
}

// recordingUI captures fire-and-forget presentation updates.
type recordingUI struct {
	calendars []schedule.View
	cleared   int
	names     []string
	dates     []string
}

func (u *recordingUI) SetCalendar(v schedule.View) { u.calendars = append(u.calendars, v) }
func (u *recordingUI) ClearCalendar()              { u.cleared++ }
func (u *recordingUI) SetDisplayName(n string)     { u.names = append(u.names, n) }
func (u *recordingUI) SetSelectedDate(d string)    { u.dates = append(u.dates, d) }

func newTestDispatcher(fs *fakeStore, ui UISink) *Dispatcher {
	d := New(fs, schedule.NewResolver("チュン"), ui)
	fixed := func() time.Time {
		t, _ := time.ParseInLocation(schedule.DateLayout, "2024-03-20", time.Local)
		return t
	}
	d.now = fixed
	d.projector = schedule.NewProjectorAt(fixed)
	return d
}

func seededStore() *fakeStore {
	return &fakeStore{
		source: store.SourceCache,
		dataset: &schedule.Dataset{
			Users: []schedule.Person{
				{Name: "チュン", Schedule: map[string]schedule.Entry{}},
			},
		},
	}
}

func readCall(id, name, date, start, end string) agent.ToolCall {
	args := map[string]any{"name": name}
	if date != "" {
		args["date"] = date
	}
	if start != "" {
		args["start_date"] = start
	}
	if end != "" {
		args["end_date"] = end
	}
	return agent.ToolCall{ID: id, Name: agent.FuncGetScheduleDetails, Args: args}
}

func TestWriteThenRead(t *testing.T) {
	fs := seededStore()
	d := newTestDispatcher(fs, nil)

	resps := d.Handle(context.Background(), []agent.ToolCall{{
		ID:   "w1",
		Name: agent.FuncUpdateSchedule,
		Args: map[string]any{
			"date":     "2024-03-15",
			"name":     "チュン",
			"workType": "late",
			"content":  "closing shift",
		},
	}})
	require.Len(t, resps, 1)
	assert.Equal(t, true, resps[0].Output["success"])
	assert.Equal(t, "set", resps[0].Output["operation"])
	assert.Equal(t, false, resps[0].Output["created"])
	assert.Equal(t, 1, fs.persists)

	resps = d.Handle(context.Background(), []agent.ToolCall{
		readCall("r1", "チュン", "2024-03-15", "", ""),
	})
	require.Len(t, resps, 1)
	out := resps[0].Output
	assert.Equal(t, true, out["success"])
	assert.Equal(t, 1, out["count"])

	entries := out["entries"].([]schedule.Entry)
	require.Len(t, entries, 1)
	assert.Equal(t, schedule.Entry{Date: "2024-03-15", WorkType: "late", Content: "closing shift"}, entries[0])
}

func TestWriteThenClear(t *testing.T) {
	fs := seededStore()
	d := newTestDispatcher(fs, nil)

	d.Handle(context.Background(), []agent.ToolCall{{
		ID:   "w1",
		Name: agent.FuncUpdateSchedule,
		Args: map[string]any{"date": "2024-03-15", "workType": "late"},
	}})

	resps := d.Handle(context.Background(), []agent.ToolCall{{
		ID:   "w2",
		Name: agent.FuncUpdateSchedule,
		Args: map[string]any{"date": "2024-03-15", "operation": "clear"},
	}})
	require.Len(t, resps, 1)
	assert.Equal(t, true, resps[0].Output["success"])
	assert.Equal(t, "clear", resps[0].Output["operation"])

	resps = d.Handle(context.Background(), []agent.ToolCall{
		readCall("r1", "", "2024-03-15", "", ""),
	})
	assert.Equal(t, 0, resps[0].Output["count"])
}

func TestWriteCreatesPerson(t *testing.T) {
	fs := seededStore()
	d := newTestDispatcher(fs, nil)

	resps := d.Handle(context.Background(), []agent.ToolCall{{
		ID:   "w1",
		Name: agent.FuncUpdateSchedule,
		Args: map[string]any{"date": "2024-03-15", "name": "Suzuki", "workType": "early"},
	}})
	assert.Equal(t, true, resps[0].Output["created"])

	resps = d.Handle(context.Background(), []agent.ToolCall{{
		ID:   "w2",
		Name: agent.FuncUpdateSchedule,
		Args: map[string]any{"date": "2024-03-16", "name": "Suzuki", "workType": "late"},
	}})
	assert.Equal(t, false, resps[0].Output["created"], "second write must update, not create")
	require.Len(t, fs.dataset.Users, 2)
	assert.Len(t, fs.dataset.Users[1].Schedule, 2)
}

func TestReadUnknownPersonIsSuccess(t *testing.T) {
	fs := seededStore()
	ui := &recordingUI{}
	d := newTestDispatcher(fs, ui)

	// "Jun" is not a substring of "チュン"; the miss is a successful
	// empty result with a cleared calendar, not an error.
	resps := d.Handle(context.Background(), []agent.ToolCall{
		readCall("r1", "Jun", "", "", ""),
	})
	require.Len(t, resps, 1)
	out := resps[0].Output
	assert.Equal(t, true, out["success"])
	assert.Equal(t, 0, out["count"])
	assert.Empty(t, out["entries"])
	assert.Equal(t, 1, ui.cleared)
	assert.Empty(t, ui.calendars)
}

func TestReadProjectsCalendar(t *testing.T) {
	fs := seededStore()
	fs.dataset.Users[0].Set("2024-03-10", "early", "opening")
	fs.dataset.Users[0].Set("2024-03-12", "late", "closing")
	ui := &recordingUI{}
	d := newTestDispatcher(fs, ui)

	resps := d.Handle(context.Background(), []agent.ToolCall{
		readCall("r1", "チュン", "", "2024-03-01", "2024-03-31"),
	})
	require.Len(t, resps, 1)
	assert.Equal(t, 2, resps[0].Output["count"])

	// Calendar anchors at the range start when no explicit date is given.
	require.Len(t, ui.calendars, 1)
	assert.Equal(t, "2024-03", ui.calendars[0].Title)
	assert.Equal(t, []string{"2024-03-01"}, ui.dates)
	assert.Equal(t, []string{"チュン"}, ui.names)
}

func TestReadAnchorFallbacks(t *testing.T) {
	entries := []schedule.Entry{{Date: "2024-05-02"}}
	now := func() time.Time {
		t, _ := time.ParseInLocation(schedule.DateLayout, "2024-03-20", time.Local)
		return t
	}

	tests := []struct {
		name        string
		date, start string
		entries     []schedule.Entry
		want        string
	}{
		{"explicit date wins", "2024-01-05", "2024-02-01", entries, "2024-01-05"},
		{"range start next", "", "2024-02-01", entries, "2024-02-01"},
		{"first result next", "", "", entries, "2024-05-02"},
		{"today last", "", "", nil, "2024-03-20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readAnchor(tt.date, tt.start, tt.entries, now))
		})
	}
}

func TestMissingDateFailsWholeBatch(t *testing.T) {
	fs := seededStore()
	fs.dataset.Users[0].Set("2024-03-10", "early", "opening")
	d := newTestDispatcher(fs, nil)

	// A well-formed read rides in the same batch as a write missing its
	// mandatory date; per the batch failure policy both report failure.
	resps := d.Handle(context.Background(), []agent.ToolCall{
		readCall("r1", "チュン", "2024-03-10", "", ""),
		{ID: "w1", Name: agent.FuncUpdateSchedule, Args: map[string]any{"workType": "late"}},
	})
	require.Len(t, resps, 2)
	for _, r := range resps {
		assert.Equal(t, false, r.Output["success"])
		assert.Contains(t, r.Output["error"], "requires a date")
	}
	assert.Equal(t, 0, fs.persists)
}

func TestLoadFailureFailsAllCalls(t *testing.T) {
	fs := &fakeStore{loadErr: errors.New("remote fetch failed")}
	d := newTestDispatcher(fs, nil)

	resps := d.Handle(context.Background(), []agent.ToolCall{
		readCall("r1", "チュン", "", "", ""),
		{ID: "w1", Name: agent.FuncUpdateSchedule, Args: map[string]any{"date": "2024-03-15"}},
	})
	require.Len(t, resps, 2)
	for i, r := range resps {
		assert.Equal(t, false, r.Output["success"], "call %d", i)
		assert.Contains(t, r.Output["error"], "remote fetch failed")
	}
}

func TestUnknownFunctionFailsBatch(t *testing.T) {
	d := newTestDispatcher(seededStore(), nil)

	resps := d.Handle(context.Background(), []agent.ToolCall{
		{ID: "x1", Name: "reticulate_splines", Args: map[string]any{}},
	})
	require.Len(t, resps, 1)
	assert.Equal(t, false, resps[0].Output["success"])
}

func TestPersistPerMutatingCall(t *testing.T) {
	fs := seededStore()
	d := newTestDispatcher(fs, nil)

	resps := d.Handle(context.Background(), []agent.ToolCall{
		{ID: "w1", Name: agent.FuncUpdateSchedule, Args: map[string]any{"date": "2024-03-15", "workType": "early"}},
		{ID: "w2", Name: agent.FuncUpdateSchedule, Args: map[string]any{"date": "2024-03-16", "workType": "late"}},
	})
	require.Len(t, resps, 2)
	assert.Equal(t, 2, fs.persists, "each mutating call persists before its response")
	assert.Len(t, fs.dataset.Users[0].Schedule, 2)
}

func TestResponseEnvelope(t *testing.T) {
	fs := seededStore()
	fs.source = store.SourceRemote
	d := newTestDispatcher(fs, nil)

	resps := d.Handle(context.Background(), []agent.ToolCall{
		readCall("call-9", "チュン", "", "", ""),
	})
	require.Len(t, resps, 1)
	assert.Equal(t, "call-9", resps[0].ID)
	assert.Equal(t, agent.FuncGetScheduleDetails, resps[0].Name)
	assert.Equal(t, "remote", resps[0].Output["source"])
}

func TestEmptyBatch(t *testing.T) {
	d := newTestDispatcher(seededStore(), nil)
	assert.Nil(t, d.Handle(context.Background(), nil))
}
