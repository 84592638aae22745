package agent

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid config",
			config:  DefaultConfig().WithAPIKey("test-key"),
			wantErr: false,
		},
		{
			name:    "missing api key",
			config:  DefaultConfig(),
			wantErr: true,
		},
		{
			name:    "missing model",
			config:  Config{APIKey: "test-key"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigWithMethods(t *testing.T) {
	cfg := DefaultConfig()

	cfg = cfg.WithAPIKey("k")
	if cfg.APIKey != "k" {
		t.Error("WithAPIKey did not set key")
	}

	cfg = cfg.WithModel("models/gemini-2.5-flash")
	if cfg.Model != "models/gemini-2.5-flash" {
		t.Errorf("WithModel did not set model, got %s", cfg.Model)
	}

	cfg = cfg.WithVoice("Kore")
	if cfg.Voice != "Kore" {
		t.Errorf("WithVoice did not set voice, got %s", cfg.Voice)
	}

	cfg = cfg.WithSystemPrompt("You are a test bot")
	if cfg.SystemPrompt != "You are a test bot" {
		t.Error("WithSystemPrompt did not set prompt")
	}
}

func TestDeclarations(t *testing.T) {
	decls := Declarations()
	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(decls))
	}

	byName := map[string]map[string]any{}
	for _, d := range decls {
		name, _ := d["name"].(string)
		byName[name] = d
	}

	get, ok := byName[FuncGetScheduleDetails]
	if !ok {
		t.Fatalf("missing %s declaration", FuncGetScheduleDetails)
	}
	if required := requiredFields(t, get); len(required) != 1 || required[0] != "name" {
		t.Errorf("%s required = %v, want [name]", FuncGetScheduleDetails, required)
	}

	upd, ok := byName[FuncUpdateSchedule]
	if !ok {
		t.Fatalf("missing %s declaration", FuncUpdateSchedule)
	}
	if required := requiredFields(t, upd); len(required) != 1 || required[0] != "date" {
		t.Errorf("%s required = %v, want [date]", FuncUpdateSchedule, required)
	}

	// Declarations go over the wire as part of the setup message; they
	// must be JSON-encodable.
	if _, err := json.Marshal(decls); err != nil {
		t.Errorf("declarations not JSON-encodable: %v", err)
	}
}

func requiredFields(t *testing.T, decl map[string]any) []string {
	t.Helper()
	params, _ := decl["parameters"].(map[string]any)
	required, _ := params["required"].([]string)
	return required
}

func TestParseToolCalls(t *testing.T) {
	// Shape as delivered by the Live API after JSON decoding.
	raw := `{
		"functionCalls": [
			{"id": "call-1", "name": "get_schedule_details", "args": {"name": "チュン"}},
			{"id": "call-2", "name": "update_schedule", "args": {"date": "2024-03-15", "workType": "late"}},
			{"id": "call-3", "args": {"date": "2024-03-16"}},
			"not a map"
		]
	}`
	var msg map[string]any
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatal(err)
	}

	batch := parseToolCalls(msg)
	if len(batch) != 2 {
		t.Fatalf("expected 2 parsed calls (nameless and malformed dropped), got %d", len(batch))
	}

	if batch[0].ID != "call-1" || batch[0].Name != FuncGetScheduleDetails {
		t.Errorf("first call mismatch: %+v", batch[0])
	}
	if got, _ := batch[0].Args["name"].(string); got != "チュン" {
		t.Errorf("first call args mismatch: %v", batch[0].Args)
	}
	if batch[1].ID != "call-2" || batch[1].Name != FuncUpdateSchedule {
		t.Errorf("second call mismatch: %+v", batch[1])
	}
}

func TestParseToolCallsEmpty(t *testing.T) {
	if got := parseToolCalls(map[string]any{}); got != nil {
		t.Errorf("expected nil for message without functionCalls, got %v", got)
	}
}

func TestSystemPrompt(t *testing.T) {
	p := SystemPrompt("Japanese", "チュン")

	for _, want := range []string{FuncGetScheduleDetails, FuncUpdateSchedule, "Japanese", "チュン"} {
		if !strings.Contains(p, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}

	if !strings.Contains(SystemPrompt("", "チュン"), "Japanese") {
		t.Error("empty language should default to Japanese")
	}
}
